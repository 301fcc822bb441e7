package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// ReportRepository runs the read-only aggregate queries behind the dashboard
type ReportRepository struct {
	baseRepository
	students *StudentRepository
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{baseRepository: newBaseRepository(db), students: NewStudentRepository(db)}
}

// Stats counts students, active students, active courses and departments in one round trip
func (r *ReportRepository) Stats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	sql, args, err := r.sb.Select(
		"(SELECT COUNT(*) FROM students)",
		"(SELECT COUNT(*) FROM students WHERE is_active)",
		"(SELECT COUNT(*) FROM courses WHERE is_active)",
		"(SELECT COUNT(*) FROM departments)",
	).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building dashboard stats SQL")
		return stats, fmt.Errorf("failed to build dashboard stats query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(
		&stats.TotalStudents, &stats.ActiveStudents, &stats.TotalCourses, &stats.TotalDepartments,
	); err != nil {
		logger.Error().Err(err).Msg("Error executing dashboard stats query")
		return stats, fmt.Errorf("error querying dashboard stats: %w", err)
	}
	return stats, nil
}

// DepartmentDistribution counts students per department, ordered by name
func (r *ReportRepository) DepartmentDistribution(ctx context.Context) ([]models.DepartmentCount, error) {
	sql, args, err := r.sb.Select("d.id", "d.name", "d.code", "COUNT(s.id)").
		From("departments d").
		LeftJoin("students s ON s.department_id = d.id").
		GroupBy("d.id", "d.name", "d.code").
		OrderBy("d.name ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building department distribution SQL")
		return nil, fmt.Errorf("failed to build department distribution query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing department distribution query")
		return nil, fmt.Errorf("error querying department distribution: %w", err)
	}
	defer rows.Close()

	list := []models.DepartmentCount{}
	for rows.Next() {
		var dc models.DepartmentCount
		if err := rows.Scan(&dc.DepartmentID, &dc.Name, &dc.Code, &dc.Count); err != nil {
			return nil, fmt.Errorf("error scanning department distribution row: %w", err)
		}
		list = append(list, dc)
	}
	return list, rows.Err()
}

// MonthlyAdmissions counts admissions per month from since onwards
func (r *ReportRepository) MonthlyAdmissions(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	sql, args, err := r.sb.Select("to_char(date_trunc('month', admission_date), 'YYYY-MM') AS month", "COUNT(*)").
		From("students").
		Where(squirrel.GtOrEq{"admission_date": helpers.DateOf(since)}).
		GroupBy("month").
		OrderBy("month ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building monthly admissions SQL")
		return nil, fmt.Errorf("failed to build monthly admissions query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing monthly admissions query")
		return nil, fmt.Errorf("error querying monthly admissions: %w", err)
	}
	defer rows.Close()

	list := []models.MonthlyCount{}
	for rows.Next() {
		var mc models.MonthlyCount
		if err := rows.Scan(&mc.Month, &mc.Count); err != nil {
			return nil, fmt.Errorf("error scanning monthly admissions row: %w", err)
		}
		list = append(list, mc)
	}
	return list, rows.Err()
}

// StudentGPAs returns the GPA of every student
func (r *ReportRepository) StudentGPAs(ctx context.Context) ([]float64, error) {
	sql, args, err := r.sb.Select("gpa").From("students").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building student GPAs SQL")
		return nil, fmt.Errorf("failed to build student GPAs query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing student GPAs query")
		return nil, fmt.Errorf("error querying student GPAs: %w", err)
	}
	defer rows.Close()

	gpas := []float64{}
	for rows.Next() {
		var g float64
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("error scanning GPA row: %w", err)
		}
		gpas = append(gpas, g)
	}
	return gpas, rows.Err()
}

// AttendanceOn counts present and absent records on a date
func (r *ReportRepository) AttendanceOn(ctx context.Context, date time.Time) (models.TodayAttendance, error) {
	var t models.TodayAttendance
	sql, args, err := r.sb.Select(
		"COUNT(*) FILTER (WHERE status = 'P')",
		"COUNT(*) FILTER (WHERE status = 'A')",
	).
		From("attendance").
		Where(squirrel.Eq{"date": helpers.DateOf(date)}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building daily attendance SQL")
		return t, fmt.Errorf("failed to build daily attendance query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&t.Present, &t.Absent); err != nil {
		logger.Error().Err(err).Msg("Error executing daily attendance query")
		return t, fmt.Errorf("error querying daily attendance: %w", err)
	}
	return t, nil
}

// PendingFees sums the amount and counts fees whose stored status is Pending
func (r *ReportRepository) PendingFees(ctx context.Context) (models.PendingFees, error) {
	var p models.PendingFees
	sql, args, err := r.sb.Select("COALESCE(SUM(amount), 0)", "COUNT(*)").
		From("fees").
		Where(squirrel.Eq{"status": models.FeePending}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building pending fees SQL")
		return p, fmt.Errorf("failed to build pending fees query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&p.Total, &p.Count); err != nil {
		logger.Error().Err(err).Msg("Error executing pending fees query")
		return p, fmt.Errorf("error querying pending fees: %w", err)
	}
	return p, nil
}

// RecentStudents returns the most recently created students
func (r *ReportRepository) RecentStudents(ctx context.Context, limit uint64) ([]models.Student, error) {
	sql, args, err := r.students.studentSelect().
		OrderBy("s.created_at DESC", "s.id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building recent students SQL")
		return nil, fmt.Errorf("failed to build recent students query: %w", err)
	}
	return r.students.queryStudents(ctx, sql, args)
}
