package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

func TestCreateStudentAssignsIdentifier(t *testing.T) {
	f := newFixture()
	cs := f.department("CS", "Computer Science")

	first := f.student(&cs.ID, "Ada", "Lovelace")
	second := f.student(&cs.ID, "Alan", "Turing")
	undeclared := f.student(nil, "Grace", "Hopper")

	assert.Equal(t, "2025CS001", first.StudentID)
	assert.Equal(t, "2025CS002", second.StudentID)
	assert.Equal(t, "2025GEN001", undeclared.StudentID)
	assert.Equal(t, 1, first.CurrentSemester)
}

func TestCreateStudentDefaultsAdmissionDate(t *testing.T) {
	f := newFixture()
	s := &models.Student{
		FirstName:   " Linus ",
		LastName:    "Torvalds",
		Email:       "Linus@Example.EDU",
		DateOfBirth: time.Date(2003, time.December, 28, 0, 0, 0, 0, time.UTC),
		Gender:      models.GenderMale,
	}
	require.NoError(t, f.studentSvc.CreateStudent(context.Background(), s))

	assert.Equal(t, time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), s.AdmissionDate)
	assert.Equal(t, "linus@example.edu", s.Email)
	assert.Equal(t, "Linus", s.FirstName)
	assert.Equal(t, "2025GEN001", s.StudentID)
}

func TestCreateStudentRejectsInvalid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	future := &models.Student{
		FirstName:   "Future",
		LastName:    "Kid",
		Email:       "future@example.edu",
		DateOfBirth: fixedNow.AddDate(0, 0, 2),
		Gender:      models.GenderOther,
	}
	err := f.studentSvc.CreateStudent(ctx, future)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, future.StudentID)

	missingDept := int64(999)
	orphan := &models.Student{
		FirstName:    "No",
		LastName:     "Dept",
		Email:        "nodept@example.edu",
		DateOfBirth:  time.Date(2004, time.January, 1, 0, 0, 0, 0, time.UTC),
		Gender:       models.GenderOther,
		DepartmentID: &missingDept,
	}
	assert.ErrorIs(t, f.studentSvc.CreateStudent(ctx, orphan), apperrors.ErrDepartmentNotFound)

	f.student(nil, "Dup", "Mail")
	dup := &models.Student{
		FirstName:   "Other",
		LastName:    "Person",
		Email:       "dup.mail@example.edu",
		DateOfBirth: time.Date(2004, time.January, 1, 0, 0, 0, 0, time.UTC),
		Gender:      models.GenderOther,
	}
	assert.ErrorIs(t, f.studentSvc.CreateStudent(ctx, dup), apperrors.ErrEmailAlreadyExists)
}

func TestUpdateStudentKeepsIdentifier(t *testing.T) {
	f := newFixture()
	s := f.student(nil, "Ada", "Lovelace")

	changed := *s
	changed.StudentID = "HACKED"
	changed.LastName = "King"
	changed.AdmissionDate = time.Time{}
	require.NoError(t, f.studentSvc.UpdateStudent(context.Background(), &changed))

	stored, err := f.studentSvc.GetStudentByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.StudentID, stored.StudentID)
	assert.Equal(t, "King", stored.LastName)
	assert.Equal(t, s.AdmissionDate, stored.AdmissionDate)
}

func TestGetStudentDetail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	course := f.course(cs.ID, "CS101", 4)
	s := f.student(&cs.ID, "Ada", "Lovelace")

	_, err := f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
	require.NoError(t, err)
	for i, status := range []models.AttendanceStatus{models.AttendancePresent, models.AttendancePresent, models.AttendanceAbsent, models.AttendancePresent} {
		_, err := f.attendanceSvc.Record(ctx, &models.Attendance{
			StudentID: s.ID, CourseID: course.ID, Date: fixedNow.AddDate(0, 0, -i), Status: status,
		}, nil)
		require.NoError(t, err)
	}
	require.NoError(t, f.feeSvc.CreateFee(ctx, &models.Fee{
		StudentID: s.ID, FeeType: models.FeeTuition, Amount: 1200, DueDate: fixedNow.AddDate(0, 0, -5),
	}))

	detail, err := f.studentSvc.GetStudentDetail(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 21, detail.Age)
	assert.Len(t, detail.Enrollments, 1)
	assert.Equal(t, int64(4), detail.Attendance.Total)
	assert.Equal(t, 75.0, detail.Attendance.Percentage)
	assert.Len(t, detail.RecentFees, 1)
	assert.Equal(t, 1200.0, detail.FeeSummary.TotalOverdue)

	_, err = f.studentSvc.GetStudentDetail(ctx, 12345)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}

func TestDeleteStudentCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	course := f.course(cs.ID, "CS101", 3)
	gone := f.student(&cs.ID, "Gone", "Soon")
	kept := f.student(&cs.ID, "Stays", "Here")

	for _, s := range []*models.Student{gone, kept} {
		_, err := f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
		require.NoError(t, err)
		_, err = f.attendanceSvc.Record(ctx, &models.Attendance{StudentID: s.ID, CourseID: course.ID, Date: fixedNow, Status: models.AttendancePresent}, nil)
		require.NoError(t, err)
		require.NoError(t, f.feeSvc.CreateFee(ctx, &models.Fee{StudentID: s.ID, FeeType: models.FeeLab, Amount: 50, DueDate: fixedNow}))
	}

	require.NoError(t, f.studentSvc.DeleteStudent(ctx, gone.ID))

	_, err := f.studentSvc.GetStudentByID(ctx, gone.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	assert.Len(t, f.store.enrollments, 1)
	assert.Len(t, f.store.attendance, 1)
	assert.Len(t, f.store.fees, 1)
	for _, fee := range f.store.fees {
		assert.Equal(t, kept.ID, fee.StudentID)
	}

	assert.ErrorIs(t, f.studentSvc.DeleteStudent(ctx, 0), apperrors.ErrValidationFailed)
}

func TestListStudentsTrimsQuery(t *testing.T) {
	f := newFixture()
	f.student(nil, "Ada", "Lovelace")
	f.student(nil, "Alan", "Turing")

	students, total, err := f.studentSvc.ListStudents(context.Background(), models.StudentFilter{Query: "  turing "})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Alan", students[0].FirstName)
}

// staleStudentRepo misses existing identifiers for its first stale lookups,
// as a concurrent insert not yet visible to this transaction would
type staleStudentRepo struct {
	*fakeStudentRepo
	stale int
}

func (r *staleStudentRepo) LastStudentID(ctx context.Context, prefix string) (string, error) {
	if r.stale > 0 {
		r.stale--
		return "", nil
	}
	return r.fakeStudentRepo.LastStudentID(ctx, prefix)
}

func newStaleStudentService(f *fixture, stale int) StudentService {
	repo := &staleStudentRepo{fakeStudentRepo: f.students, stale: stale}
	return NewStudentService(StudentServiceDeps{
		Students:    f.students,
		Departments: f.departments,
		Enrollments: f.enrollments,
		Attendance:  f.attendance,
		Fees:        f.fees,
		Identifiers: NewIdentifierService(repo, f.sequences, "GEN"),
		Tx:          fakeTx{f.store},
		Clock:       fixedClock,
	})
}

func newCSStudent(departmentID int64) *models.Student {
	return &models.Student{
		FirstName:     "Margaret",
		LastName:      "Hamilton",
		Email:         "margaret.hamilton@example.edu",
		DateOfBirth:   time.Date(2004, time.March, 1, 0, 0, 0, 0, time.UTC),
		Gender:        models.GenderFemale,
		DepartmentID:  &departmentID,
		AdmissionDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

func TestCreateStudentRetriesAfterIdentifierCollision(t *testing.T) {
	f := newFixture()
	cs := f.department("CS", "Computer Science")
	f.students.put(models.Student{StudentID: "2025CS001", Email: "imported@example.edu"})
	svc := newStaleStudentService(f, 1)

	s := newCSStudent(cs.ID)
	require.NoError(t, svc.CreateStudent(context.Background(), s))

	assert.Equal(t, "2025CS002", s.StudentID)
	assert.Equal(t, 2, f.store.sequences["2025CS"])
}

func TestCreateStudentGivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture()
	cs := f.department("CS", "Computer Science")
	f.students.put(models.Student{StudentID: "2025CS001", Email: "imported@example.edu"})
	svc := newStaleStudentService(f, createAttempts)

	s := newCSStudent(cs.ID)
	err := svc.CreateStudent(context.Background(), s)

	require.ErrorIs(t, err, apperrors.ErrStudentIDAlreadyExists)
	assert.Empty(t, s.StudentID)
	_, advanced := f.store.sequences["2025CS"]
	assert.False(t, advanced, "failed attempts must not leave the counter advanced")
	assert.Len(t, f.store.students, 1)
}
