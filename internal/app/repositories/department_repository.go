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

// DepartmentRepository handles database operations for departments
type DepartmentRepository struct {
	baseRepository
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *pgxpool.Pool) *DepartmentRepository {
	return &DepartmentRepository{baseRepository: newBaseRepository(db)}
}

// Create creates a new department
func (r *DepartmentRepository) Create(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Insert("departments").
		Columns("code", "name", "head", "description").
		Values(department.Code, department.Name, department.Head, department.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create department SQL")
		return fmt.Errorf("failed to build create department query: %w", err)
	}

	err = r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&department.ID, &department.CreatedAt)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		logger.Error().Err(err).Str("code", department.Code).Msg("Error executing create department query")
		return fmt.Errorf("error creating department: %w", err)
	}

	return nil
}

// departmentSelect selects departments with their student and course counts
func (r *DepartmentRepository) departmentSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"d.id", "d.code", "d.name", "d.head", "d.description", "d.created_at",
		"(SELECT COUNT(*) FROM students s WHERE s.department_id = d.id)",
		"(SELECT COUNT(*) FROM courses c WHERE c.department_id = d.id)",
	).From("departments d")
}

func scanDepartment(row pgx.Row, d *models.Department) error {
	return row.Scan(&d.ID, &d.Code, &d.Name, &d.Head, &d.Description, &d.CreatedAt, &d.StudentCount, &d.CourseCount)
}

// GetByID retrieves a department by ID
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	sql, args, err := r.departmentSelect().Where(squirrel.Eq{"d.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get department SQL")
		return nil, fmt.Errorf("failed to build get department query: %w", err)
	}

	var department models.Department
	if err := scanDepartment(r.conn(ctx).QueryRow(ctx, sql, args...), &department); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		logger.Error().Err(err).Int64("departmentID", id).Msg("Error scanning department row")
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}

	return &department, nil
}

// GetAll retrieves all departments ordered by name
func (r *DepartmentRepository) GetAll(ctx context.Context) ([]models.Department, error) {
	sql, args, err := r.departmentSelect().OrderBy("d.name ASC").ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get all departments SQL")
		return nil, fmt.Errorf("failed to build get all departments query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing get all departments query")
		return nil, fmt.Errorf("error querying departments: %w", err)
	}
	defer rows.Close()

	departments := []models.Department{}
	for rows.Next() {
		var d models.Department
		if err := scanDepartment(rows, &d); err != nil {
			logger.Error().Err(err).Msg("Error scanning department row during get all")
			return nil, fmt.Errorf("error scanning department row: %w", err)
		}
		departments = append(departments, d)
	}

	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating department rows")
		return nil, fmt.Errorf("error iterating department rows: %w", err)
	}

	return departments, nil
}

// Update updates an existing department
func (r *DepartmentRepository) Update(ctx context.Context, department *models.Department) error {
	sql, args, err := r.sb.Update("departments").
		SetMap(map[string]interface{}{
			"code":        department.Code,
			"name":        department.Name,
			"head":        department.Head,
			"description": department.Description,
		}).
		Where(squirrel.Eq{"id": department.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update department SQL")
		return fmt.Errorf("failed to build update department query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		logger.Error().Err(err).Int64("departmentID", department.ID).Msg("Error executing update department query")
		return fmt.Errorf("error updating department: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}

// Delete deletes a department by ID. Students are detached and courses removed by the foreign keys.
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("departments").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete department SQL")
		return fmt.Errorf("failed to build delete department query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("departmentID", id).Msg("Error executing delete department query")
		return fmt.Errorf("error deleting department: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDepartmentNotFound
	}

	return nil
}
