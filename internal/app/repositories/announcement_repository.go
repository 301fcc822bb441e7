package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/dberrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// AnnouncementRepository handles database operations for announcements
type AnnouncementRepository struct {
	baseRepository
}

// NewAnnouncementRepository creates a new announcement repository
func NewAnnouncementRepository(db *pgxpool.Pool) *AnnouncementRepository {
	return &AnnouncementRepository{baseRepository: newBaseRepository(db)}
}

const priorityRankExpr = "CASE a.priority WHEN 'U' THEN 4 WHEN 'H' THEN 3 WHEN 'M' THEN 2 WHEN 'L' THEN 1 ELSE 0 END DESC"

func (r *AnnouncementRepository) announcementSelect() squirrel.SelectBuilder {
	return r.sb.Select(
		"a.id", "a.title", "a.content", "a.priority", "a.department_id", "a.is_active",
		"a.created_by", "a.created_at", "a.expires_at", "d.code", "d.name",
	).
		From("announcements a").
		LeftJoin("departments d ON d.id = a.department_id")
}

func scanAnnouncement(row pgx.Row, a *models.Announcement) error {
	var deptCode, deptName *string
	if err := row.Scan(
		&a.ID, &a.Title, &a.Content, &a.Priority, &a.DepartmentID, &a.IsActive,
		&a.CreatedBy, &a.CreatedAt, &a.ExpiresAt, &deptCode, &deptName,
	); err != nil {
		return err
	}
	if a.DepartmentID != nil && deptCode != nil {
		a.Department = &models.Department{ID: *a.DepartmentID, Code: *deptCode, Name: *deptName}
	}
	return nil
}

func (r *AnnouncementRepository) mapWriteError(err error, a *models.Announcement) error {
	if dberrors.IsForeignKeyError(err, "") {
		return apperrors.NewResourceNotFoundError("department or operator not found")
	}
	if constraint, ok := dberrors.IsCheckViolation(err); ok {
		return apperrors.NewValidationError(constraint, "announcement violates "+constraint)
	}
	logger.Error().Err(err).Int64("announcementID", a.ID).Msg("Error writing announcement")
	return fmt.Errorf("error writing announcement: %w", err)
}

// Create inserts an announcement
func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	sql, args, err := r.sb.Insert("announcements").
		Columns("title", "content", "priority", "department_id", "is_active", "created_by", "expires_at").
		Values(a.Title, a.Content, a.Priority, a.DepartmentID, a.IsActive, a.CreatedBy, a.ExpiresAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create announcement SQL")
		return fmt.Errorf("failed to build create announcement query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return r.mapWriteError(err, a)
	}
	return nil
}

// GetByID retrieves an announcement by ID
func (r *AnnouncementRepository) GetByID(ctx context.Context, id int64) (*models.Announcement, error) {
	sql, args, err := r.announcementSelect().Where(squirrel.Eq{"a.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get announcement SQL")
		return nil, fmt.Errorf("failed to build get announcement query: %w", err)
	}

	var a models.Announcement
	if err := scanAnnouncement(r.conn(ctx).QueryRow(ctx, sql, args...), &a); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnnouncementNotFound
		}
		logger.Error().Err(err).Int64("announcementID", id).Msg("Error scanning announcement row")
		return nil, fmt.Errorf("error retrieving announcement: %w", err)
	}
	return &a, nil
}

// List returns announcements by priority then recency. limit 0 means no limit.
func (r *AnnouncementRepository) List(ctx context.Context, liveAt *time.Time, limit uint64) ([]models.Announcement, error) {
	q := r.announcementSelect().OrderBy(priorityRankExpr, "a.created_at DESC", "a.id DESC")
	if liveAt != nil {
		q = q.Where(squirrel.Eq{"a.is_active": true}).
			Where(squirrel.Or{
				squirrel.Eq{"a.expires_at": nil},
				squirrel.Gt{"a.expires_at": *liveAt},
			})
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list announcements SQL")
		return nil, fmt.Errorf("failed to build list announcements query: %w", err)
	}

	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list announcements query")
		return nil, fmt.Errorf("error querying announcements: %w", err)
	}
	defer rows.Close()

	list := []models.Announcement{}
	for rows.Next() {
		var a models.Announcement
		if err := scanAnnouncement(rows, &a); err != nil {
			logger.Error().Err(err).Msg("Error scanning announcement row")
			return nil, fmt.Errorf("error scanning announcement row: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update writes the editable announcement fields
func (r *AnnouncementRepository) Update(ctx context.Context, a *models.Announcement) error {
	sql, args, err := r.sb.Update("announcements").
		SetMap(map[string]interface{}{
			"title":         a.Title,
			"content":       a.Content,
			"priority":      a.Priority,
			"department_id": a.DepartmentID,
			"is_active":     a.IsActive,
			"expires_at":    a.ExpiresAt,
		}).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update announcement SQL")
		return fmt.Errorf("failed to build update announcement query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return r.mapWriteError(err, a)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}

// Delete deletes an announcement by ID
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("announcements").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete announcement SQL")
		return fmt.Errorf("failed to build delete announcement query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("announcementID", id).Msg("Error executing delete announcement query")
		return fmt.Errorf("error deleting announcement: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrAnnouncementNotFound
	}
	return nil
}

// DeleteByDepartment removes the announcements scoped to a department
func (r *AnnouncementRepository) DeleteByDepartment(ctx context.Context, departmentID int64) (int64, error) {
	sql, args, err := r.sb.Delete("announcements").Where(squirrel.Eq{"department_id": departmentID}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete department announcements SQL")
		return 0, fmt.Errorf("failed to build delete department announcements query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("departmentID", departmentID).Msg("Error deleting department announcements")
		return 0, fmt.Errorf("error deleting department announcements: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
