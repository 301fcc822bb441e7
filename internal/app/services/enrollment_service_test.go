package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

func marks(v float64) *float64 { return &v }

func TestEnroll(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	course := f.course(cs.ID, "CS101", 3)
	s := f.student(&cs.ID, "Ada", "Lovelace")

	e, err := f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, e.IsActive)
	assert.False(t, e.Completed)
	assert.Equal(t, "2025-06-10", e.EnrollmentDate.Format("2006-01-02"))
	assert.Equal(t, "CS101", e.Course.Code)

	_, err = f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEnrollment)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateKey)
}

func TestEnrollRejectsInactive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	active := f.course(cs.ID, "CS101", 3)
	closed := f.course(cs.ID, "CS999", 3)
	closed.IsActive = false
	require.NoError(t, f.courses.Update(ctx, closed))

	s := f.student(&cs.ID, "Ada", "Lovelace")
	left := f.student(&cs.ID, "Left", "Already")
	left.IsActive = false
	require.NoError(t, f.students.Update(ctx, left))

	_, err := f.enrollmentSvc.Enroll(ctx, left.ID, active.ID)
	assert.ErrorIs(t, err, apperrors.ErrStudentInactive)
	assert.ErrorIs(t, err, apperrors.ErrInactiveEntity)

	_, err = f.enrollmentSvc.Enroll(ctx, s.ID, closed.ID)
	assert.ErrorIs(t, err, apperrors.ErrCourseInactive)

	_, err = f.enrollmentSvc.Enroll(ctx, s.ID, 777)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)

	_, err = f.enrollmentSvc.Enroll(ctx, 0, active.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRecordGrade(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	course := f.course(cs.ID, "CS101", 3)
	s := f.student(&cs.ID, "Ada", "Lovelace")
	e, err := f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
	require.NoError(t, err)

	graded, err := f.enrollmentSvc.RecordGrade(ctx, e.ID, models.GradeAMinus, marks(35), marks(52))
	require.NoError(t, err)
	assert.True(t, graded.Completed)
	assert.Equal(t, 87.0, graded.TotalMarks())

	_, err = f.enrollmentSvc.RecordGrade(ctx, e.ID, models.GradeA, marks(41), nil)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "internal_marks", apperrors.Field(err))

	_, err = f.enrollmentSvc.RecordGrade(ctx, e.ID, "Z", nil, nil)
	assert.Equal(t, "grade", apperrors.Field(err))

	stored, err := f.enrollmentSvc.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GradeAMinus, stored.Grade)

	incomplete, err := f.enrollmentSvc.RecordGrade(ctx, e.ID, models.GradeIncomplete, nil, nil)
	require.NoError(t, err)
	assert.False(t, incomplete.Completed)
}

func TestUpdateAndWithdraw(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	course := f.course(cs.ID, "CS101", 3)
	s := f.student(&cs.ID, "Ada", "Lovelace")
	e, err := f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
	require.NoError(t, err)

	inactive := false
	updated, err := f.enrollmentSvc.UpdateEnrollment(ctx, e.ID, models.EnrollmentChanges{Grade: models.GradeB, IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.True(t, updated.Completed)

	withdrawn, err := f.enrollmentSvc.Withdraw(ctx, e.ID)
	require.NoError(t, err)
	assert.False(t, withdrawn.IsActive)
	assert.Equal(t, models.GradeB, withdrawn.Grade)

	active, err := f.enrollmentSvc.ListForCourse(ctx, course.ID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := f.enrollmentSvc.ListForCourse(ctx, course.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.enrollmentSvc.Withdraw(ctx, 4242)
	assert.ErrorIs(t, err, apperrors.ErrEnrollmentNotFound)
}

func TestGPAAndRecompute(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	s := f.student(&cs.ID, "Ada", "Lovelace")

	grades := []struct {
		code    string
		credits int
		grade   models.Grade
	}{
		{"CS101", 4, models.GradeA},
		{"CS201", 3, models.GradeB},
		{"CS301", 3, models.GradeWithdrawn},
		{"CS401", 2, ""},
	}
	for _, g := range grades {
		course := f.course(cs.ID, g.code, g.credits)
		e, err := f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
		require.NoError(t, err)
		if g.grade != "" {
			_, err = f.enrollmentSvc.RecordGrade(ctx, e.ID, g.grade, nil, nil)
			require.NoError(t, err)
		}
	}

	gpa, credits, err := f.enrollmentSvc.GPAFor(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.57, gpa)
	assert.Equal(t, 7, credits)

	before, err := f.studentSvc.GetStudentByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Zero(t, before.GPA)

	after, err := f.enrollmentSvc.RecomputeAcademicRecord(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3.57, after.GPA)
	assert.Equal(t, 7, after.TotalCredits)
}

func TestGPAWithoutCompletedCourses(t *testing.T) {
	f := newFixture()
	s := f.student(nil, "New", "Comer")

	gpa, credits, err := f.enrollmentSvc.GPAFor(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Zero(t, gpa)
	assert.Zero(t, credits)

	_, _, err = f.enrollmentSvc.GPAFor(context.Background(), 999)
	assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
}
