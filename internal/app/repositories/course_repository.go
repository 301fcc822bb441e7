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
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// CourseRepository handles database operations for courses
type CourseRepository struct {
	baseRepository
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{baseRepository: newBaseRepository(db)}
}

// courseSelect joins the department and counts active enrollments
func (r *CourseRepository) courseSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"c.id", "c.code", "c.name", "c.department_id", "c.description", "c.credits", "c.semester",
		"c.instructor", "c.max_students", "c.max_internal_marks", "c.max_external_marks",
		"c.is_active", "c.created_at", "c.updated_at",
		"(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = c.id AND e.is_active)",
		"d.code", "d.name",
	).From("courses c").Join("departments d ON d.id = c.department_id")
}

func scanCourse(row pgx.Row, c *models.Course) error {
	c.Department = &models.Department{}
	err := row.Scan(
		&c.ID, &c.Code, &c.Name, &c.DepartmentID, &c.Description, &c.Credits, &c.Semester,
		&c.Instructor, &c.MaxStudents, &c.MaxInternalMarks, &c.MaxExternalMarks,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
		&c.EnrolledCount,
		&c.Department.Code, &c.Department.Name,
	)
	c.Department.ID = c.DepartmentID
	return err
}

// Create creates a new course
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Insert("courses").
		Columns("code", "name", "department_id", "description", "credits", "semester",
			"instructor", "max_students", "max_internal_marks", "max_external_marks", "is_active").
		Values(course.Code, course.Name, course.DepartmentID, course.Description, course.Credits, course.Semester,
			course.Instructor, course.MaxStudents, course.MaxInternalMarks, course.MaxExternalMarks, course.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create course SQL")
		return fmt.Errorf("failed to build create course query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return r.mapWriteError(err, course)
	}
	return nil
}

func (r *CourseRepository) mapWriteError(err error, course *models.Course) error {
	switch {
	case dberrors.IsDuplicateKeyError(err):
		return apperrors.ErrCourseAlreadyExists
	case dberrors.IsForeignKeyError(err, ""):
		return apperrors.ErrDepartmentNotFound
	}
	if constraint, ok := dberrors.IsCheckViolation(err); ok {
		return apperrors.NewValidationError(constraint, "course violates "+constraint)
	}
	logger.Error().Err(err).Str("code", course.Code).Msg("Error writing course")
	return fmt.Errorf("error writing course: %w", err)
}

// GetByID retrieves a course by ID with its department and enrolled count
func (r *CourseRepository) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	sql, args, err := r.courseSelect().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get course SQL")
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	var course models.Course
	if err := scanCourse(r.conn(ctx).QueryRow(ctx, sql, args...), &course); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Int64("courseID", id).Msg("Error scanning course row")
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return &course, nil
}

func applyCourseFilter(q squirrel.SelectBuilder, filter models.CourseFilter) squirrel.SelectBuilder {
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"c.name": like},
			squirrel.ILike{"c.code": like},
			squirrel.ILike{"c.instructor": like},
		})
	}
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"c.department_id": *filter.DepartmentID})
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"c.is_active": true})
	}
	return q
}

// List returns one page of courses and the total number of matches. PageSize <= 0 returns every match.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int64, error) {
	countSQL, countArgs, err := applyCourseFilter(r.sb.Select("COUNT(*)").From("courses c"), filter).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count courses SQL")
		return nil, 0, fmt.Errorf("failed to build count courses query: %w", err)
	}

	var total int64
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting courses")
		return nil, 0, fmt.Errorf("error counting courses: %w", err)
	}

	q := applyCourseFilter(r.courseSelect(), filter).OrderBy("c.code ASC")
	if filter.PageSize > 0 {
		page := helpers.ClampPage(filter.Page, filter.PageSize, total)
		offset, limit := helpers.CalculateOffsetLimit(page, filter.PageSize)
		q = q.Offset(offset).Limit(limit)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list courses SQL")
		return nil, 0, fmt.Errorf("failed to build list courses query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list courses query")
		return nil, 0, fmt.Errorf("error querying courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		var c models.Course
		if err := scanCourse(rows, &c); err != nil {
			logger.Error().Err(err).Msg("Error scanning course row during list")
			return nil, 0, fmt.Errorf("error scanning course row: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating course rows")
		return nil, 0, fmt.Errorf("error iterating course rows: %w", err)
	}

	return courses, total, nil
}

// Update updates an existing course
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	sql, args, err := r.sb.Update("courses").
		SetMap(map[string]interface{}{
			"code":               course.Code,
			"name":               course.Name,
			"department_id":      course.DepartmentID,
			"description":        course.Description,
			"credits":            course.Credits,
			"semester":           course.Semester,
			"instructor":         course.Instructor,
			"max_students":       course.MaxStudents,
			"max_internal_marks": course.MaxInternalMarks,
			"max_external_marks": course.MaxExternalMarks,
			"is_active":          course.IsActive,
			"updated_at":         squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": course.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update course SQL")
		return fmt.Errorf("failed to build update course query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&course.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrCourseNotFound
		}
		return r.mapWriteError(err, course)
	}
	return nil
}

// Delete deletes a course by ID
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("courses").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete course SQL")
		return fmt.Errorf("failed to build delete course query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", id).Msg("Error executing delete course query")
		return fmt.Errorf("error deleting course: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrCourseNotFound
	}
	return nil
}

// GradeDistribution counts graded enrollments of a course by grade
func (r *CourseRepository) GradeDistribution(ctx context.Context, courseID int64) ([]models.GradeCount, error) {
	sql, args, err := r.sb.Select("grade", "COUNT(*)").
		From("enrollments").
		Where(squirrel.Eq{"course_id": courseID}).
		Where(squirrel.NotEq{"grade": ""}).
		GroupBy("grade").
		OrderBy("grade ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building grade distribution SQL")
		return nil, fmt.Errorf("failed to build grade distribution query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("courseID", courseID).Msg("Error executing grade distribution query")
		return nil, fmt.Errorf("error querying grade distribution: %w", err)
	}
	defer rows.Close()

	counts := []models.GradeCount{}
	for rows.Next() {
		var gc models.GradeCount
		if err := rows.Scan(&gc.Grade, &gc.Count); err != nil {
			return nil, fmt.Errorf("error scanning grade distribution row: %w", err)
		}
		counts = append(counts, gc)
	}
	return counts, rows.Err()
}
