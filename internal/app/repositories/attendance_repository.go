package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/dberrors"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// AttendanceRepository handles database operations for attendance records
type AttendanceRepository struct {
	baseRepository
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *pgxpool.Pool) *AttendanceRepository {
	return &AttendanceRepository{baseRepository: newBaseRepository(db)}
}

// Upsert writes the record for (student, course, date) in one statement. xmax is zero only
// for a freshly inserted row, which tells a create from an overwrite.
func (r *AttendanceRepository) Upsert(ctx context.Context, a *models.Attendance) (bool, error) {
	sql, args, err := r.sb.Insert("attendance").
		Columns("student_id", "course_id", "date", "status", "remarks", "recorded_by").
		Values(a.StudentID, a.CourseID, a.Date, a.Status, a.Remarks, a.RecordedBy).
		Suffix("ON CONFLICT (student_id, course_id, date) DO UPDATE " +
			"SET status = EXCLUDED.status, remarks = EXCLUDED.remarks, recorded_by = EXCLUDED.recorded_by " +
			"RETURNING id, created_at, (xmax = 0) AS inserted").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building upsert attendance SQL")
		return false, fmt.Errorf("failed to build upsert attendance query: %w", err)
	}

	var inserted bool
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt, &inserted); err != nil {
		if dberrors.IsForeignKeyError(err, "") {
			return false, apperrors.NewResourceNotFoundError("student, course or operator not found")
		}
		if constraint, ok := dberrors.IsCheckViolation(err); ok {
			return false, apperrors.NewValidationError(constraint, "attendance violates "+constraint)
		}
		logger.Error().Err(err).
			Int64("studentID", a.StudentID).
			Int64("courseID", a.CourseID).
			Str("date", a.Date.Format(helpers.DateLayout)).
			Msg("Error executing upsert attendance query")
		return false, fmt.Errorf("error recording attendance: %w", err)
	}
	return inserted, nil
}

// List returns attendance records with student and course joined, newest first
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error) {
	q := r.sb.Select(
		"a.id", "a.student_id", "a.course_id", "a.date", "a.status", "a.remarks", "a.recorded_by", "a.created_at",
		"s.student_id", "s.first_name", "s.last_name", "c.code", "c.name",
	).
		From("attendance a").
		Join("students s ON s.id = a.student_id").
		Join("courses c ON c.id = a.course_id").
		OrderBy("a.date DESC", "c.code ASC", "s.student_id ASC")
	if filter.Date != nil {
		q = q.Where(squirrel.Eq{"a.date": helpers.DateOf(*filter.Date)})
	}
	if filter.CourseID != nil {
		q = q.Where(squirrel.Eq{"a.course_id": *filter.CourseID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list attendance SQL")
		return nil, fmt.Errorf("failed to build list attendance query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list attendance query")
		return nil, fmt.Errorf("error querying attendance: %w", err)
	}
	defer rows.Close()

	records := []models.Attendance{}
	for rows.Next() {
		var a models.Attendance
		s := &models.Student{}
		c := &models.Course{}
		if err := rows.Scan(
			&a.ID, &a.StudentID, &a.CourseID, &a.Date, &a.Status, &a.Remarks, &a.RecordedBy, &a.CreatedAt,
			&s.StudentID, &s.FirstName, &s.LastName, &c.Code, &c.Name,
		); err != nil {
			logger.Error().Err(err).Msg("Error scanning attendance row")
			return nil, fmt.Errorf("error scanning attendance row: %w", err)
		}
		s.ID, c.ID = a.StudentID, a.CourseID
		a.Student, a.Course = s, c
		records = append(records, a)
	}
	return records, rows.Err()
}

// CountByStatus counts a student's records per status, optionally within one course
func (r *AttendanceRepository) CountByStatus(ctx context.Context, studentID int64, courseID *int64) (map[models.AttendanceStatus]int64, error) {
	q := r.sb.Select("status", "COUNT(*)").
		From("attendance").
		Where(squirrel.Eq{"student_id": studentID}).
		GroupBy("status")
	if courseID != nil {
		q = q.Where(squirrel.Eq{"course_id": *courseID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building attendance count SQL")
		return nil, fmt.Errorf("failed to build attendance count query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing attendance count query")
		return nil, fmt.Errorf("error counting attendance: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.AttendanceStatus]int64)
	for rows.Next() {
		var status models.AttendanceStatus
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("error scanning attendance count row: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// Chart groups records by date within [from, to], optionally for one course
func (r *AttendanceRepository) Chart(ctx context.Context, courseID *int64, from, to time.Time) ([]models.ChartPoint, error) {
	q := r.sb.Select(
		"date",
		"COUNT(*) FILTER (WHERE status = 'P')",
		"COUNT(*) FILTER (WHERE status = 'A')",
		"COUNT(*) FILTER (WHERE status = 'L')",
	).
		From("attendance").
		Where(squirrel.GtOrEq{"date": helpers.DateOf(from)}).
		Where(squirrel.LtOrEq{"date": helpers.DateOf(to)}).
		GroupBy("date").
		OrderBy("date ASC")
	if courseID != nil {
		q = q.Where(squirrel.Eq{"course_id": *courseID})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building attendance chart SQL")
		return nil, fmt.Errorf("failed to build attendance chart query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing attendance chart query")
		return nil, fmt.Errorf("error querying attendance chart: %w", err)
	}
	defer rows.Close()

	points := []models.ChartPoint{}
	for rows.Next() {
		var day time.Time
		var p models.ChartPoint
		if err := rows.Scan(&day, &p.Present, &p.Absent, &p.Late); err != nil {
			return nil, fmt.Errorf("error scanning attendance chart row: %w", err)
		}
		p.Date = day.Format(helpers.DateLayout)
		points = append(points, p)
	}
	return points, rows.Err()
}

// DeleteByStudent removes every attendance record of a student
func (r *AttendanceRepository) DeleteByStudent(ctx context.Context, studentID int64) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"student_id": studentID})
}

// DeleteByCourse removes every attendance record of a course
func (r *AttendanceRepository) DeleteByCourse(ctx context.Context, courseID int64) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"course_id": courseID})
}

func (r *AttendanceRepository) deleteWhere(ctx context.Context, where squirrel.Eq) (int64, error) {
	sql, args, err := r.sb.Delete("attendance").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete attendance SQL")
		return 0, fmt.Errorf("failed to build delete attendance query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Interface("where", where).Msg("Error deleting attendance")
		return 0, fmt.Errorf("error deleting attendance: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
