package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/dberrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

const enrollmentPairConstraint = "enrollments_student_course_key"

// EnrollmentRepository handles database operations for enrollments
type EnrollmentRepository struct {
	baseRepository
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{baseRepository: newBaseRepository(db)}
}

var enrollmentColumns = []string{
	"e.id", "e.student_id", "e.course_id", "e.enrollment_date", "e.grade",
	"e.internal_marks", "e.external_marks", "e.is_active", "e.completed", "e.created_at", "e.updated_at",
}

func enrollmentDest(e *models.Enrollment) []interface{} {
	return []interface{}{
		&e.ID, &e.StudentID, &e.CourseID, &e.EnrollmentDate, &e.Grade,
		&e.InternalMarks, &e.ExternalMarks, &e.IsActive, &e.Completed, &e.CreatedAt, &e.UpdatedAt,
	}
}

// Create inserts an enrollment. The (student, course) unique constraint rejects a second enrollment.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	sql, args, err := r.sb.Insert("enrollments").
		Columns("student_id", "course_id", "enrollment_date", "grade", "internal_marks", "external_marks", "is_active", "completed").
		Values(enrollment.StudentID, enrollment.CourseID, enrollment.EnrollmentDate, enrollment.Grade,
			enrollment.InternalMarks, enrollment.ExternalMarks, enrollment.IsActive, enrollment.Completed).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create enrollment SQL")
		return fmt.Errorf("failed to build create enrollment query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&enrollment.ID, &enrollment.CreatedAt, &enrollment.UpdatedAt)
	if err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, enrollmentPairConstraint), dberrors.IsDuplicateKeyError(err):
			return apperrors.ErrDuplicateEnrollment
		case dberrors.IsForeignKeyError(err, ""):
			return apperrors.NewResourceNotFoundError("student or course not found")
		}
		logger.Error().Err(err).
			Int64("studentID", enrollment.StudentID).
			Int64("courseID", enrollment.CourseID).
			Msg("Error executing create enrollment query")
		return fmt.Errorf("error creating enrollment: %w", err)
	}
	return nil
}

// GetByID retrieves an enrollment by ID
func (r *EnrollmentRepository) GetByID(ctx context.Context, id int64) (*models.Enrollment, error) {
	sql, args, err := r.sb.Select(enrollmentColumns...).
		From("enrollments e").
		Where(squirrel.Eq{"e.id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get enrollment SQL")
		return nil, fmt.Errorf("failed to build get enrollment query: %w", err)
	}

	var e models.Enrollment
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(enrollmentDest(&e)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEnrollmentNotFound
		}
		logger.Error().Err(err).Int64("enrollmentID", id).Msg("Error scanning enrollment row")
		return nil, fmt.Errorf("error retrieving enrollment: %w", err)
	}
	return &e, nil
}

// Update writes grade, marks and flags of an enrollment
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	sql, args, err := r.sb.Update("enrollments").
		SetMap(map[string]interface{}{
			"grade":          enrollment.Grade,
			"internal_marks": enrollment.InternalMarks,
			"external_marks": enrollment.ExternalMarks,
			"is_active":      enrollment.IsActive,
			"completed":      enrollment.Completed,
			"updated_at":     squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": enrollment.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update enrollment SQL")
		return fmt.Errorf("failed to build update enrollment query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&enrollment.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrEnrollmentNotFound
		}
		if constraint, ok := dberrors.IsCheckViolation(err); ok {
			return apperrors.NewValidationError(constraint, "enrollment violates "+constraint)
		}
		logger.Error().Err(err).Int64("enrollmentID", enrollment.ID).Msg("Error executing update enrollment query")
		return fmt.Errorf("error updating enrollment: %w", err)
	}
	return nil
}

// ListByStudent returns a student's enrollments with their courses, newest first
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	cols := append(append([]string{}, enrollmentColumns...),
		"c.code", "c.name", "c.credits", "c.semester", "c.max_internal_marks", "c.max_external_marks", "c.is_active")
	sql, args, err := r.sb.Select(cols...).
		From("enrollments e").
		Join("courses c ON c.id = e.course_id").
		Where(squirrel.Eq{"e.student_id": studentID}).
		OrderBy("e.enrollment_date DESC", "e.id DESC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list student enrollments SQL")
		return nil, fmt.Errorf("failed to build list student enrollments query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error executing list student enrollments query")
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	list := []models.Enrollment{}
	for rows.Next() {
		var e models.Enrollment
		c := &models.Course{}
		dest := append(enrollmentDest(&e),
			&c.Code, &c.Name, &c.Credits, &c.Semester, &c.MaxInternalMarks, &c.MaxExternalMarks, &c.IsActive)
		if err := rows.Scan(dest...); err != nil {
			logger.Error().Err(err).Msg("Error scanning enrollment row")
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		c.ID = e.CourseID
		e.Course = c
		list = append(list, e)
	}
	return list, rows.Err()
}

// ListByCourse returns a course's enrollments with their students ordered by student id
func (r *EnrollmentRepository) ListByCourse(ctx context.Context, courseID int64, activeOnly bool) ([]models.Enrollment, error) {
	cols := append(append([]string{}, enrollmentColumns...),
		"s.student_id", "s.first_name", "s.last_name", "s.email", "s.is_active")
	q := r.sb.Select(cols...).
		From("enrollments e").
		Join("students s ON s.id = e.student_id").
		Where(squirrel.Eq{"e.course_id": courseID}).
		OrderBy("s.student_id ASC")
	if activeOnly {
		q = q.Where(squirrel.Eq{"e.is_active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list course enrollments SQL")
		return nil, fmt.Errorf("failed to build list course enrollments query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing list course enrollments query")
		return nil, fmt.Errorf("error querying enrollments: %w", err)
	}
	defer rows.Close()

	list := []models.Enrollment{}
	for rows.Next() {
		var e models.Enrollment
		s := &models.Student{}
		dest := append(enrollmentDest(&e), &s.StudentID, &s.FirstName, &s.LastName, &s.Email, &s.IsActive)
		if err := rows.Scan(dest...); err != nil {
			logger.Error().Err(err).Msg("Error scanning enrollment row")
			return nil, fmt.Errorf("error scanning enrollment row: %w", err)
		}
		s.ID = e.StudentID
		e.Student = s
		list = append(list, e)
	}
	return list, rows.Err()
}

// IsActivelyEnrolled reports whether the student holds an active enrollment in the course
func (r *EnrollmentRepository) IsActivelyEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("enrollments").
		Where(squirrel.Eq{"student_id": studentID, "course_id": courseID, "is_active": true}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building enrollment check SQL")
		return false, fmt.Errorf("failed to build enrollment check query: %w", err)
	}

	var exists bool
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Int64("courseID", courseID).Msg("Error checking enrollment")
		return false, fmt.Errorf("error checking enrollment: %w", err)
	}
	return exists, nil
}

// DeleteByStudent removes every enrollment of a student
func (r *EnrollmentRepository) DeleteByStudent(ctx context.Context, studentID int64) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"student_id": studentID})
}

// DeleteByCourse removes every enrollment in a course
func (r *EnrollmentRepository) DeleteByCourse(ctx context.Context, courseID int64) (int64, error) {
	return r.deleteWhere(ctx, squirrel.Eq{"course_id": courseID})
}

func (r *EnrollmentRepository) deleteWhere(ctx context.Context, where squirrel.Eq) (int64, error) {
	sql, args, err := r.sb.Delete("enrollments").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete enrollments SQL")
		return 0, fmt.Errorf("failed to build delete enrollments query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Interface("where", where).Msg("Error deleting enrollments")
		return 0, fmt.Errorf("error deleting enrollments: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
