package services

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
)

var fixedNow = time.Date(2025, time.June, 10, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type attendanceKey struct {
	student, course int64
	date            string
}

// store is an in-memory database shared by the fake repositories below
type store struct {
	mu            sync.Mutex
	nextID        int64
	departments   map[int64]*models.Department
	courses       map[int64]*models.Course
	students      map[int64]*models.Student
	enrollments   map[int64]*models.Enrollment
	attendance    map[attendanceKey]*models.Attendance
	fees          map[int64]*models.Fee
	announcements map[int64]*models.Announcement
	operators     map[int64]*models.Operator
	sequences     map[string]int
}

func newStore() *store {
	return &store{
		departments:   map[int64]*models.Department{},
		courses:       map[int64]*models.Course{},
		students:      map[int64]*models.Student{},
		enrollments:   map[int64]*models.Enrollment{},
		attendance:    map[attendanceKey]*models.Attendance{},
		fees:          map[int64]*models.Fee{},
		announcements: map[int64]*models.Announcement{},
		operators:     map[int64]*models.Operator{},
		sequences:     map[string]int{},
	}
}

func (s *store) id() int64 {
	s.nextID++
	return s.nextID
}

// fakeTx rolls back the student and sequence tables when fn fails
type fakeTx struct{ *store }

func (t fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	students := make(map[int64]*models.Student, len(t.students))
	for id, s := range t.students {
		cp := *s
		students[id] = &cp
	}
	sequences := make(map[string]int, len(t.sequences))
	for k, v := range t.sequences {
		sequences[k] = v
	}
	t.mu.Unlock()

	err := fn(ctx)
	if err != nil {
		t.mu.Lock()
		t.students, t.sequences = students, sequences
		t.mu.Unlock()
	}
	return err
}

// fixture bundles a store, its repositories and the services built on them
type fixture struct {
	store         *store
	departments   *fakeDepartmentRepo
	courses       *fakeCourseRepo
	students      *fakeStudentRepo
	sequences     *fakeSequenceRepo
	enrollments   *fakeEnrollmentRepo
	attendance    *fakeAttendanceRepo
	fees          *fakeFeeRepo
	announcements *fakeAnnouncementRepo
	operators     *fakeOperatorRepo

	courseSvc       CourseService
	departmentSvc   DepartmentService
	identifierSvc   IdentifierService
	studentSvc      StudentService
	enrollmentSvc   EnrollmentService
	attendanceSvc   AttendanceService
	feeSvc          FeeService
	announcementSvc AnnouncementService
}

func newFixture() *fixture {
	st := newStore()
	f := &fixture{
		store:         st,
		departments:   &fakeDepartmentRepo{st},
		courses:       &fakeCourseRepo{st},
		students:      &fakeStudentRepo{st},
		sequences:     &fakeSequenceRepo{st},
		enrollments:   &fakeEnrollmentRepo{st},
		attendance:    &fakeAttendanceRepo{st},
		fees:          &fakeFeeRepo{st},
		announcements: &fakeAnnouncementRepo{st},
		operators:     &fakeOperatorRepo{st},
	}
	clock := Clock(fixedClock)
	f.courseSvc = NewCourseService(f.courses, f.departments, f.enrollments, f.attendance, nil)
	f.departmentSvc = NewDepartmentService(f.departments, f.students, f.announcements, f.courseSvc, nil)
	f.identifierSvc = NewIdentifierService(f.students, f.sequences, "GEN")
	f.studentSvc = NewStudentService(StudentServiceDeps{
		Students:    f.students,
		Departments: f.departments,
		Enrollments: f.enrollments,
		Attendance:  f.attendance,
		Fees:        f.fees,
		Identifiers: f.identifierSvc,
		Tx:          fakeTx{st},
		Clock:       clock,
	})
	f.enrollmentSvc = NewEnrollmentService(f.enrollments, f.students, f.courses, clock)
	f.attendanceSvc = NewAttendanceService(f.attendance, f.enrollments, f.courses, 7, clock)
	f.feeSvc = NewFeeService(f.fees, f.students, nil, clock)
	f.announcementSvc = NewAnnouncementService(f.announcements, f.departments, clock)
	return f
}

func (f *fixture) department(code, name string) *models.Department {
	d := &models.Department{Code: code, Name: name}
	if err := f.departments.Create(context.Background(), d); err != nil {
		panic(err)
	}
	return d
}

func (f *fixture) course(departmentID int64, code string, credits int) *models.Course {
	c := &models.Course{Code: code, Name: code + " course", DepartmentID: departmentID, Credits: credits, IsActive: true}
	c.ApplyDefaults()
	if err := f.courses.Create(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func (f *fixture) student(departmentID *int64, first, last string) *models.Student {
	s := &models.Student{
		FirstName:     first,
		LastName:      last,
		Email:         strings.ToLower(first+"."+last) + "@example.edu",
		DateOfBirth:   time.Date(2004, time.March, 1, 0, 0, 0, 0, time.UTC),
		Gender:        models.GenderOther,
		DepartmentID:  departmentID,
		AdmissionDate: time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
	if err := f.studentSvc.CreateStudent(context.Background(), s); err != nil {
		panic(err)
	}
	return s
}

type fakeDepartmentRepo struct{ *store }

func (r *fakeDepartmentRepo) Create(_ context.Context, d *models.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.departments {
		if existing.Code == d.Code || existing.Name == d.Name {
			return apperrors.ErrDepartmentAlreadyExists
		}
	}
	d.ID = r.id()
	cp := *d
	r.departments[d.ID] = &cp
	return nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id int64) (*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.departments[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDepartmentRepo) GetAll(_ context.Context) ([]models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Department, 0, len(r.departments))
	for _, d := range r.departments {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, d *models.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[d.ID]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	cp := *d
	r.departments[d.ID] = &cp
	return nil
}

func (r *fakeDepartmentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[id]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	delete(r.departments, id)
	return nil
}

type fakeCourseRepo struct{ *store }

func (r *fakeCourseRepo) Create(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.courses {
		if existing.Code == c.Code {
			return apperrors.ErrCourseAlreadyExists
		}
	}
	c.ID = r.id()
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) GetByID(_ context.Context, id int64) (*models.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCourseRepo) List(_ context.Context, filter models.CourseFilter) ([]models.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Course
	for _, c := range r.courses {
		if filter.DepartmentID != nil && c.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, int64(len(out)), nil
}

func (r *fakeCourseRepo) Update(_ context.Context, c *models.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[c.ID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	cp := *c
	r.courses[c.ID] = &cp
	return nil
}

func (r *fakeCourseRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) GradeDistribution(_ context.Context, courseID int64) ([]models.GradeCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.Grade]int64{}
	for _, e := range r.enrollments {
		if e.CourseID == courseID && e.Grade != "" {
			counts[e.Grade]++
		}
	}
	var out []models.GradeCount
	for _, g := range models.Grades {
		if n := counts[g]; n > 0 {
			out = append(out, models.GradeCount{Grade: g, Count: n})
		}
	}
	return out, nil
}

type fakeStudentRepo struct{ *store }

func (r *fakeStudentRepo) Create(_ context.Context, s *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.students {
		if existing.StudentID == s.StudentID {
			return apperrors.ErrStudentIDAlreadyExists
		}
		if existing.Email == s.Email {
			return apperrors.ErrEmailAlreadyExists
		}
	}
	s.ID = r.id()
	cp := *s
	r.students[s.ID] = &cp
	return nil
}

func (r *fakeStudentRepo) GetByID(_ context.Context, id int64) (*models.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeStudentRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Student
	for _, s := range r.students {
		if filter.DepartmentID != nil && (s.DepartmentID == nil || *s.DepartmentID != *filter.DepartmentID) {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(s.FirstName+" "+s.LastName), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, int64(len(out)), nil
}

func (r *fakeStudentRepo) Update(_ context.Context, s *models.Student) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[s.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	cp := *s
	r.students[s.ID] = &cp
	return nil
}

func (r *fakeStudentRepo) UpdateAcademicRecord(_ context.Context, id int64, gpa float64, totalCredits int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.students[id]
	if !ok {
		return apperrors.ErrStudentNotFound
	}
	s.GPA, s.TotalCredits = gpa, totalCredits
	return nil
}

func (r *fakeStudentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(r.students, id)
	return nil
}

func (r *fakeStudentRepo) ClearDepartment(_ context.Context, departmentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.students {
		if s.DepartmentID != nil && *s.DepartmentID == departmentID {
			s.DepartmentID = nil
			n++
		}
	}
	return n, nil
}

// LastStudentID matches prefix followed by digits only, longest first, like the SQL query
func (r *fakeStudentRepo) LastStudentID(_ context.Context, prefix string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + "[0-9]+$")
	var last string
	for _, s := range r.students {
		id := s.StudentID
		if !pattern.MatchString(id) {
			continue
		}
		if len(id) > len(last) || (len(id) == len(last) && id > last) {
			last = id
		}
	}
	return last, nil
}

// put stores a student verbatim, bypassing identifier generation
func (r *fakeStudentRepo) put(s models.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = r.id()
	r.students[s.ID] = &s
}

type fakeSequenceRepo struct{ *store }

func (r *fakeSequenceRepo) Advance(_ context.Context, year int, scope string, seed int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := StudentIDPrefix(year, scope)
	n := r.sequences[key]
	if n < seed {
		n = seed
	}
	n++
	r.sequences[key] = n
	return n, nil
}

type fakeEnrollmentRepo struct{ *store }

func (r *fakeEnrollmentRepo) Create(_ context.Context, e *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.enrollments {
		if existing.StudentID == e.StudentID && existing.CourseID == e.CourseID {
			return apperrors.ErrDuplicateEnrollment
		}
	}
	e.ID = r.id()
	cp := *e
	cp.Student, cp.Course = nil, nil
	r.enrollments[e.ID] = &cp
	return nil
}

func (r *fakeEnrollmentRepo) GetByID(_ context.Context, id int64) (*models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.enrollments[id]
	if !ok {
		return nil, apperrors.ErrEnrollmentNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEnrollmentRepo) Update(_ context.Context, e *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.enrollments[e.ID]; !ok {
		return apperrors.ErrEnrollmentNotFound
	}
	cp := *e
	cp.Student, cp.Course = nil, nil
	r.enrollments[e.ID] = &cp
	return nil
}

func (r *fakeEnrollmentRepo) list(match func(*models.Enrollment) bool) []models.Enrollment {
	var out []models.Enrollment
	for _, e := range r.enrollments {
		if !match(e) {
			continue
		}
		cp := *e
		if c, ok := r.courses[e.CourseID]; ok {
			course := *c
			cp.Course = &course
		}
		if s, ok := r.students[e.StudentID]; ok {
			student := *s
			cp.Student = &student
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeEnrollmentRepo) ListByStudent(_ context.Context, studentID int64) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(e *models.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (r *fakeEnrollmentRepo) ListByCourse(_ context.Context, courseID int64, activeOnly bool) ([]models.Enrollment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(e *models.Enrollment) bool {
		return e.CourseID == courseID && (!activeOnly || e.IsActive)
	}), nil
}

func (r *fakeEnrollmentRepo) IsActivelyEnrolled(_ context.Context, studentID, courseID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && e.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEnrollmentRepo) deleteWhere(match func(*models.Enrollment) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.enrollments {
		if match(e) {
			delete(r.enrollments, id)
			n++
		}
	}
	return n
}

func (r *fakeEnrollmentRepo) DeleteByStudent(_ context.Context, studentID int64) (int64, error) {
	return r.deleteWhere(func(e *models.Enrollment) bool { return e.StudentID == studentID }), nil
}

func (r *fakeEnrollmentRepo) DeleteByCourse(_ context.Context, courseID int64) (int64, error) {
	return r.deleteWhere(func(e *models.Enrollment) bool { return e.CourseID == courseID }), nil
}

type fakeAttendanceRepo struct{ *store }

func (r *fakeAttendanceRepo) Upsert(_ context.Context, a *models.Attendance) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := attendanceKey{a.StudentID, a.CourseID, a.Date.Format(helpers.DateLayout)}
	if existing, ok := r.attendance[key]; ok {
		existing.Status = a.Status
		existing.Remarks = a.Remarks
		existing.RecordedBy = a.RecordedBy
		a.ID = existing.ID
		return false, nil
	}
	a.ID = r.id()
	cp := *a
	r.attendance[key] = &cp
	return true, nil
}

func (r *fakeAttendanceRepo) List(_ context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Attendance
	for _, a := range r.attendance {
		if filter.Date != nil && !a.Date.Equal(*filter.Date) {
			continue
		}
		if filter.CourseID != nil && a.CourseID != *filter.CourseID {
			continue
		}
		cp := *a
		if s, ok := r.students[a.StudentID]; ok {
			student := *s
			cp.Student = &student
		}
		if c, ok := r.courses[a.CourseID]; ok {
			course := *c
			cp.Course = &course
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeAttendanceRepo) CountByStatus(_ context.Context, studentID int64, courseID *int64) (map[models.AttendanceStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[models.AttendanceStatus]int64{}
	for _, a := range r.attendance {
		if a.StudentID != studentID || (courseID != nil && a.CourseID != *courseID) {
			continue
		}
		counts[a.Status]++
	}
	return counts, nil
}

func (r *fakeAttendanceRepo) Chart(_ context.Context, courseID *int64, from, to time.Time) ([]models.ChartPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDay := map[string]*models.ChartPoint{}
	for _, a := range r.attendance {
		if a.Date.Before(from) || a.Date.After(to) || (courseID != nil && a.CourseID != *courseID) {
			continue
		}
		day := a.Date.Format(helpers.DateLayout)
		p, ok := byDay[day]
		if !ok {
			p = &models.ChartPoint{Date: day}
			byDay[day] = p
		}
		switch a.Status {
		case models.AttendancePresent:
			p.Present++
		case models.AttendanceAbsent:
			p.Absent++
		case models.AttendanceLate:
			p.Late++
		}
	}
	out := make([]models.ChartPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeAttendanceRepo) deleteWhere(match func(*models.Attendance) bool) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, a := range r.attendance {
		if match(a) {
			delete(r.attendance, k)
			n++
		}
	}
	return n
}

func (r *fakeAttendanceRepo) DeleteByStudent(_ context.Context, studentID int64) (int64, error) {
	return r.deleteWhere(func(a *models.Attendance) bool { return a.StudentID == studentID }), nil
}

func (r *fakeAttendanceRepo) DeleteByCourse(_ context.Context, courseID int64) (int64, error) {
	return r.deleteWhere(func(a *models.Attendance) bool { return a.CourseID == courseID }), nil
}

type fakeFeeRepo struct{ *store }

func (r *fakeFeeRepo) Create(_ context.Context, f *models.Fee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f.ID = r.id()
	cp := *f
	r.fees[f.ID] = &cp
	return nil
}

func (r *fakeFeeRepo) GetByID(_ context.Context, id int64) (*models.Fee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fees[id]
	if !ok {
		return nil, apperrors.ErrFeeNotFound
	}
	cp := *f
	return &cp, nil
}

func (r *fakeFeeRepo) LockByID(ctx context.Context, id int64) (*models.Fee, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeFeeRepo) List(_ context.Context, filter models.FeeFilter, today time.Time) ([]models.Fee, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Fee
	for _, f := range r.fees {
		if filter.StudentID != nil && f.StudentID != *filter.StudentID {
			continue
		}
		if filter.Status != "" && f.EffectiveStatus(today) != filter.Status {
			continue
		}
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeFeeRepo) Update(_ context.Context, f *models.Fee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fees[f.ID]; !ok {
		return apperrors.ErrFeeNotFound
	}
	cp := *f
	r.fees[f.ID] = &cp
	return nil
}

func (r *fakeFeeRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.fees[id]; !ok {
		return apperrors.ErrFeeNotFound
	}
	delete(r.fees, id)
	return nil
}

func (r *fakeFeeRepo) RecentByStudent(ctx context.Context, studentID int64, limit uint64) ([]models.Fee, error) {
	fees, _, err := r.List(ctx, models.FeeFilter{StudentID: &studentID}, fixedNow)
	if err != nil {
		return nil, err
	}
	sort.Slice(fees, func(i, j int) bool { return fees[i].ID > fees[j].ID })
	if uint64(len(fees)) > limit {
		fees = fees[:limit]
	}
	return fees, nil
}

func (r *fakeFeeRepo) DeleteByStudent(_ context.Context, studentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, f := range r.fees {
		if f.StudentID == studentID {
			delete(r.fees, id)
			n++
		}
	}
	return n, nil
}

type fakeAnnouncementRepo struct{ *store }

func (r *fakeAnnouncementRepo) Create(_ context.Context, a *models.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.id()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = fixedNow.Add(time.Duration(a.ID) * time.Minute)
	}
	cp := *a
	r.announcements[a.ID] = &cp
	return nil
}

func (r *fakeAnnouncementRepo) GetByID(_ context.Context, id int64) (*models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.announcements[id]
	if !ok {
		return nil, apperrors.ErrAnnouncementNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeAnnouncementRepo) List(_ context.Context, liveAt *time.Time, limit uint64) ([]models.Announcement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Announcement
	for _, a := range r.announcements {
		if liveAt != nil && !a.IsLive(*liveAt) {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority.Rank() != out[j].Priority.Rank() {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && uint64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeAnnouncementRepo) Update(_ context.Context, a *models.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.announcements[a.ID]
	if !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	cp := *a
	cp.CreatedBy, cp.CreatedAt = existing.CreatedBy, existing.CreatedAt
	r.announcements[a.ID] = &cp
	return nil
}

func (r *fakeAnnouncementRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.announcements[id]; !ok {
		return apperrors.ErrAnnouncementNotFound
	}
	delete(r.announcements, id)
	return nil
}

func (r *fakeAnnouncementRepo) DeleteByDepartment(_ context.Context, departmentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, a := range r.announcements {
		if a.DepartmentID != nil && *a.DepartmentID == departmentID {
			delete(r.announcements, id)
			n++
		}
	}
	return n, nil
}

type fakeOperatorRepo struct{ *store }

func (r *fakeOperatorRepo) Create(_ context.Context, o *models.Operator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = r.id()
	o.CreatedAt = fixedNow
	cp := *o
	r.operators[o.ID] = &cp
	return nil
}

func (r *fakeOperatorRepo) GetByID(_ context.Context, id int64) (*models.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.operators[id]
	if !ok {
		return nil, apperrors.ErrOperatorNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOperatorRepo) GetByUsername(_ context.Context, username string) (*models.Operator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.operators {
		if o.Username == username {
			cp := *o
			return &cp, nil
		}
	}
	return nil, apperrors.ErrOperatorNotFound
}

func (r *fakeOperatorRepo) Exists(_ context.Context, username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.operators {
		if o.Username == username || o.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOperatorRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.operators[id]
	if !ok {
		return apperrors.ErrOperatorNotFound
	}
	o.LastLoginAt = &at
	return nil
}
