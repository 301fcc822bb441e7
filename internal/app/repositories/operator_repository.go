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

// OperatorRepository handles database operations for operator accounts
type OperatorRepository struct {
	baseRepository
}

// NewOperatorRepository creates a new operator repository
func NewOperatorRepository(db *pgxpool.Pool) *OperatorRepository {
	return &OperatorRepository{baseRepository: newBaseRepository(db)}
}

var operatorColumns = []string{
	"id", "email", "username", "password_hash", "full_name", "is_active", "last_login_at", "created_at",
}

func scanOperator(row pgx.Row, o *models.Operator) error {
	return row.Scan(&o.ID, &o.Email, &o.Username, &o.PasswordHash, &o.FullName, &o.IsActive, &o.LastLoginAt, &o.CreatedAt)
}

// Create creates a new operator
func (r *OperatorRepository) Create(ctx context.Context, operator *models.Operator) error {
	sql, args, err := r.sb.Insert("operators").
		Columns("email", "username", "password_hash", "full_name", "is_active").
		Values(operator.Email, operator.Username, operator.PasswordHash, operator.FullName, operator.IsActive).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create operator SQL")
		return fmt.Errorf("failed to build create operator query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&operator.ID, &operator.CreatedAt); err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.ErrOperatorAlreadyExists
		}
		logger.Error().Err(err).Str("username", operator.Username).Msg("Error executing create operator query")
		return fmt.Errorf("error creating operator: %w", err)
	}
	return nil
}

// GetByID retrieves an operator by ID
func (r *OperatorRepository) GetByID(ctx context.Context, id int64) (*models.Operator, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByUsername retrieves an operator by username
func (r *OperatorRepository) GetByUsername(ctx context.Context, username string) (*models.Operator, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username})
}

func (r *OperatorRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.Operator, error) {
	sql, args, err := r.sb.Select(operatorColumns...).From("operators").Where(where).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get operator SQL")
		return nil, fmt.Errorf("failed to build get operator query: %w", err)
	}

	var o models.Operator
	if err := scanOperator(r.conn(ctx).QueryRow(ctx, sql, args...), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOperatorNotFound
		}
		logger.Error().Err(err).Interface("where", where).Msg("Error scanning operator row")
		return nil, fmt.Errorf("error retrieving operator: %w", err)
	}
	return &o, nil
}

// Exists reports whether an operator with the username or email exists
func (r *OperatorRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	sql, args, err := r.sb.Select("1").
		From("operators").
		Where(squirrel.Or{squirrel.Eq{"username": username}, squirrel.Eq{"email": email}}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building operator exists SQL")
		return false, fmt.Errorf("failed to build operator exists query: %w", err)
	}

	var exists bool
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		logger.Error().Err(err).Str("username", username).Msg("Error checking operator existence")
		return false, fmt.Errorf("error checking operator: %w", err)
	}
	return exists, nil
}

// TouchLastLogin records a successful login
func (r *OperatorRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	sql, args, err := r.sb.Update("operators").
		Set("last_login_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building touch login SQL")
		return fmt.Errorf("failed to build touch login query: %w", err)
	}

	if _, err := r.conn(ctx).Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Int64("operatorID", id).Msg("Error updating last login")
		return fmt.Errorf("error updating last login: %w", err)
	}
	return nil
}
