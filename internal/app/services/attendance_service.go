package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// DefaultChartDays is the attendance chart window when none is given
const DefaultChartDays = 7

// AttendanceService defines daily attendance operations
type AttendanceService interface {
	// Record creates or overwrites the (student, course, date) record and reports whether it was created
	Record(ctx context.Context, attendance *models.Attendance, actor *int64) (bool, error)
	// BulkRecord records entries for actively enrolled students. A failing entry does not stop the others.
	BulkRecord(ctx context.Context, courseID int64, date time.Time, entries []models.AttendanceEntry, actor *int64) (*models.BulkAttendanceResult, error)
	Ratio(ctx context.Context, studentID int64, courseID *int64) (float64, error)
	Summary(ctx context.Context, studentID int64, courseID *int64) (models.AttendanceSummary, error)
	// Chart groups records by day over [today-days, today]
	Chart(ctx context.Context, courseID *int64, days int) ([]models.ChartPoint, error)
	// List returns records of a day, today when filter.Date is nil
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	// Sheet lists the course's active students with their status on date, Present when unrecorded
	Sheet(ctx context.Context, courseID int64, date time.Time) ([]models.SheetRow, error)
}

type attendanceServiceImpl struct {
	attendanceRepo repositories.IAttendanceRepository
	enrollmentRepo repositories.IEnrollmentRepository
	courseRepo     repositories.ICourseRepository
	defaultDays    int
	clock          Clock
}

// NewAttendanceService creates a new attendance service instance
func NewAttendanceService(
	attendanceRepo repositories.IAttendanceRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	courseRepo repositories.ICourseRepository,
	defaultDays int,
	clock Clock,
) AttendanceService {
	if defaultDays <= 0 {
		defaultDays = DefaultChartDays
	}
	return &attendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		defaultDays:    defaultDays,
		clock:          clock,
	}
}

func validateAttendance(a *models.Attendance) error {
	if a == nil {
		return fmt.Errorf("%w: attendance is nil", apperrors.ErrValidationFailed)
	}
	if a.StudentID <= 0 {
		return apperrors.NewValidationError("student_id", "student_id is required")
	}
	if a.CourseID <= 0 {
		return apperrors.NewValidationError("course_id", "course_id is required")
	}
	if a.Date.IsZero() {
		return apperrors.NewValidationError("date", "date is required")
	}
	if !a.Status.Valid() {
		return apperrors.NewValidationError("status", fmt.Sprintf("unknown attendance status %q", a.Status))
	}
	if len(a.Remarks) > 200 {
		return apperrors.NewValidationError("remarks", "remarks must be at most 200 characters")
	}
	return nil
}

// Record upserts one attendance record
func (s *attendanceServiceImpl) Record(ctx context.Context, attendance *models.Attendance, actor *int64) (bool, error) {
	if err := validateAttendance(attendance); err != nil {
		return false, err
	}
	attendance.Date = helpers.DateOf(attendance.Date)
	attendance.RecordedBy = actor

	created, err := s.attendanceRepo.Upsert(ctx, attendance)
	if err != nil {
		return false, err
	}
	return created, nil
}

// BulkRecord marks attendance for a course on one day
func (s *attendanceServiceImpl) BulkRecord(ctx context.Context, courseID int64, date time.Time, entries []models.AttendanceEntry, actor *int64) (*models.BulkAttendanceResult, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = s.clock.today()
	}

	result := &models.BulkAttendanceResult{Outcomes: make([]models.AttendanceOutcome, 0, len(entries))}
	for _, entry := range entries {
		outcome := models.AttendanceOutcome{StudentID: entry.StudentID}
		created, err := s.recordEntry(ctx, courseID, date, entry, actor)
		if err != nil {
			outcome.Error = err.Error()
			result.Failed++
		} else {
			outcome.Created = created
			result.Recorded++
			if created {
				result.Created++
			} else {
				result.Updated++
			}
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	logger.Info().
		Int64("courseID", courseID).
		Str("date", date.Format(helpers.DateLayout)).
		Int("recorded", result.Recorded).
		Int("failed", result.Failed).
		Msg("Bulk attendance recorded")
	return result, nil
}

func (s *attendanceServiceImpl) recordEntry(ctx context.Context, courseID int64, date time.Time, entry models.AttendanceEntry, actor *int64) (bool, error) {
	enrolled, err := s.enrollmentRepo.IsActivelyEnrolled(ctx, entry.StudentID, courseID)
	if err != nil {
		return false, err
	}
	if !enrolled {
		return false, apperrors.ErrNotEnrolled
	}
	return s.Record(ctx, &models.Attendance{
		StudentID: entry.StudentID,
		CourseID:  courseID,
		Date:      date,
		Status:    entry.Status,
		Remarks:   entry.Remarks,
	}, actor)
}

// Summary counts a student's records by status
func (s *attendanceServiceImpl) Summary(ctx context.Context, studentID int64, courseID *int64) (models.AttendanceSummary, error) {
	var summary models.AttendanceSummary
	if err := validateID(studentID, "student"); err != nil {
		return summary, err
	}
	counts, err := s.attendanceRepo.CountByStatus(ctx, studentID, courseID)
	if err != nil {
		return summary, fmt.Errorf("error counting attendance: %w", err)
	}
	for _, status := range models.AttendanceStatuses {
		summary.Add(status, counts[status])
	}
	return summary, nil
}

// Ratio is the present share of a student's records, 0 when there are none
func (s *attendanceServiceImpl) Ratio(ctx context.Context, studentID int64, courseID *int64) (float64, error) {
	summary, err := s.Summary(ctx, studentID, courseID)
	if err != nil {
		return 0, err
	}
	return summary.Percentage, nil
}

// Chart returns per-day present, absent and late counts
func (s *attendanceServiceImpl) Chart(ctx context.Context, courseID *int64, days int) ([]models.ChartPoint, error) {
	if days <= 0 {
		days = s.defaultDays
	}
	to := s.clock.today()
	from := to.AddDate(0, 0, -days)
	points, err := s.attendanceRepo.Chart(ctx, courseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error building attendance chart: %w", err)
	}
	return points, nil
}

// List returns the attendance records of one day
func (s *attendanceServiceImpl) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	if filter.Date == nil {
		today := s.clock.today()
		filter.Date = &today
	}
	records, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}
	return records, nil
}

// Sheet prepares the marking sheet for a course and day
func (s *attendanceServiceImpl) Sheet(ctx context.Context, courseID int64, date time.Time) ([]models.SheetRow, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = s.clock.today()
	}
	date = helpers.DateOf(date)

	enrollments, err := s.enrollmentRepo.ListByCourse(ctx, courseID, true)
	if err != nil {
		return nil, fmt.Errorf("error listing enrolled students: %w", err)
	}
	records, err := s.attendanceRepo.List(ctx, models.AttendanceFilter{Date: &date, CourseID: &courseID})
	if err != nil {
		return nil, fmt.Errorf("error listing attendance: %w", err)
	}
	byStudent := make(map[int64]models.Attendance, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
	}

	rows := make([]models.SheetRow, 0, len(enrollments))
	for _, e := range enrollments {
		row := models.SheetRow{StudentID: e.StudentID, Status: models.AttendancePresent}
		if e.Student != nil {
			row.StudentCode = e.Student.StudentID
			row.FullName = e.Student.FullName()
		}
		if r, ok := byStudent[e.StudentID]; ok {
			row.Status = r.Status
			row.Remarks = r.Remarks
			row.Recorded = true
		}
		rows = append(rows, row)
	}
	return rows, nil
}
