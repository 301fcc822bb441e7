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
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// FeeRepository handles database operations for fees
type FeeRepository struct {
	baseRepository
}

// NewFeeRepository creates a new fee repository
func NewFeeRepository(db *pgxpool.Pool) *FeeRepository {
	return &FeeRepository{baseRepository: newBaseRepository(db)}
}

var feeColumns = []string{
	"f.id", "f.student_id", "f.fee_type", "f.amount", "f.due_date", "f.paid_date", "f.status",
	"f.paid_amount", "f.payment_mode", "f.transaction_id", "f.receipt_number", "f.semester",
	"f.academic_year", "f.remarks", "f.created_at", "f.updated_at",
	"s.student_id", "s.first_name", "s.last_name",
}

func (r *FeeRepository) feeSelect() squirrel.SelectBuilder {
	return r.sb.Select(feeColumns...).
		From("fees f").
		Join("students s ON s.id = f.student_id")
}

func scanFee(row pgx.Row, f *models.Fee) error {
	s := &models.Student{}
	err := row.Scan(
		&f.ID, &f.StudentID, &f.FeeType, &f.Amount, &f.DueDate, &f.PaidDate, &f.Status,
		&f.PaidAmount, &f.PaymentMode, &f.TransactionID, &f.ReceiptNumber, &f.Semester,
		&f.AcademicYear, &f.Remarks, &f.CreatedAt, &f.UpdatedAt,
		&s.StudentID, &s.FirstName, &s.LastName,
	)
	s.ID = f.StudentID
	f.Student = s
	return err
}

func (r *FeeRepository) mapWriteError(err error, fee *models.Fee) error {
	if dberrors.IsForeignKeyError(err, "") {
		return apperrors.ErrStudentNotFound
	}
	if constraint, ok := dberrors.IsCheckViolation(err); ok {
		return apperrors.NewValidationError(constraint, "fee violates "+constraint)
	}
	logger.Error().Err(err).Int64("feeID", fee.ID).Int64("studentID", fee.StudentID).Msg("Error writing fee")
	return fmt.Errorf("error writing fee: %w", err)
}

// Create inserts a fee
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	sql, args, err := r.sb.Insert("fees").
		Columns("student_id", "fee_type", "amount", "due_date", "paid_date", "status", "paid_amount",
			"payment_mode", "transaction_id", "receipt_number", "semester", "academic_year", "remarks").
		Values(fee.StudentID, fee.FeeType, fee.Amount, fee.DueDate, fee.PaidDate, fee.Status, fee.PaidAmount,
			fee.PaymentMode, fee.TransactionID, fee.ReceiptNumber, fee.Semester, fee.AcademicYear, fee.Remarks).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create fee SQL")
		return fmt.Errorf("failed to build create fee query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&fee.ID, &fee.CreatedAt, &fee.UpdatedAt); err != nil {
		return r.mapWriteError(err, fee)
	}
	return nil
}

// GetByID retrieves a fee with its student
func (r *FeeRepository) GetByID(ctx context.Context, id int64) (*models.Fee, error) {
	return r.getOne(ctx, r.feeSelect().Where(squirrel.Eq{"f.id": id}), id)
}

// LockByID retrieves a fee and holds a row lock on it for the current transaction
func (r *FeeRepository) LockByID(ctx context.Context, id int64) (*models.Fee, error) {
	return r.getOne(ctx, r.feeSelect().Where(squirrel.Eq{"f.id": id}).Suffix("FOR UPDATE OF f"), id)
}

func (r *FeeRepository) getOne(ctx context.Context, q squirrel.SelectBuilder, id int64) (*models.Fee, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get fee SQL")
		return nil, fmt.Errorf("failed to build get fee query: %w", err)
	}

	var fee models.Fee
	if err := scanFee(r.conn(ctx).QueryRow(ctx, sql, args...), &fee); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrFeeNotFound
		}
		logger.Error().Err(err).Int64("feeID", id).Msg("Error scanning fee row")
		return nil, fmt.Errorf("error retrieving fee: %w", err)
	}
	return &fee, nil
}

// overdueCond matches fees whose effective status is Overdue on today
func overdueCond(today time.Time) squirrel.Sqlizer {
	return squirrel.Or{
		squirrel.Eq{"f.status": models.FeeOverdue},
		squirrel.And{
			squirrel.Eq{"f.status": models.FeePending},
			squirrel.Eq{"f.paid_amount": 0},
			squirrel.Lt{"f.due_date": helpers.DateOf(today)},
		},
	}
}

func applyFeeFilter(q squirrel.SelectBuilder, filter models.FeeFilter, today time.Time) squirrel.SelectBuilder {
	if filter.StudentID != nil {
		q = q.Where(squirrel.Eq{"f.student_id": *filter.StudentID})
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"s.first_name": like},
			squirrel.ILike{"s.last_name": like},
			squirrel.ILike{"s.student_id": like},
		})
	}
	switch filter.Status {
	case "":
	case models.FeeOverdue:
		q = q.Where(overdueCond(today))
	case models.FeePending:
		q = q.Where(squirrel.Eq{"f.status": models.FeePending}).
			Where(squirrel.Or{
				squirrel.Gt{"f.paid_amount": 0},
				squirrel.GtOrEq{"f.due_date": helpers.DateOf(today)},
			})
	default:
		q = q.Where(squirrel.Eq{"f.status": filter.Status})
	}
	return q
}

// List returns fees matching filter, latest due date first, and the total number of matches
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter, today time.Time) ([]models.Fee, int64, error) {
	countQ := applyFeeFilter(r.sb.Select("COUNT(*)").From("fees f").Join("students s ON s.id = f.student_id"), filter, today)
	countSQL, countArgs, err := countQ.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count fees SQL")
		return nil, 0, fmt.Errorf("failed to build count fees query: %w", err)
	}

	var total int64
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting fees")
		return nil, 0, fmt.Errorf("error counting fees: %w", err)
	}

	q := applyFeeFilter(r.feeSelect(), filter, today).OrderBy("f.due_date DESC", "f.id DESC")
	if filter.PageSize > 0 {
		page := helpers.ClampPage(filter.Page, filter.PageSize, total)
		offset, limit := helpers.CalculateOffsetLimit(page, filter.PageSize)
		q = q.Offset(offset).Limit(limit)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list fees SQL")
		return nil, 0, fmt.Errorf("failed to build list fees query: %w", err)
	}

	fees, err := r.queryFees(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}
	return fees, total, nil
}

func (r *FeeRepository) queryFees(ctx context.Context, sql string, args []interface{}) ([]models.Fee, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing fee query")
		return nil, fmt.Errorf("error querying fees: %w", err)
	}
	defer rows.Close()

	fees := []models.Fee{}
	for rows.Next() {
		var f models.Fee
		if err := scanFee(rows, &f); err != nil {
			logger.Error().Err(err).Msg("Error scanning fee row")
			return nil, fmt.Errorf("error scanning fee row: %w", err)
		}
		fees = append(fees, f)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating fee rows")
		return nil, fmt.Errorf("error iterating fee rows: %w", err)
	}
	return fees, nil
}

// Update writes every mutable fee field
func (r *FeeRepository) Update(ctx context.Context, fee *models.Fee) error {
	sql, args, err := r.sb.Update("fees").
		SetMap(map[string]interface{}{
			"student_id":     fee.StudentID,
			"fee_type":       fee.FeeType,
			"amount":         fee.Amount,
			"due_date":       fee.DueDate,
			"paid_date":      fee.PaidDate,
			"status":         fee.Status,
			"paid_amount":    fee.PaidAmount,
			"payment_mode":   fee.PaymentMode,
			"transaction_id": fee.TransactionID,
			"receipt_number": fee.ReceiptNumber,
			"semester":       fee.Semester,
			"academic_year":  fee.AcademicYear,
			"remarks":        fee.Remarks,
			"updated_at":     squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": fee.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update fee SQL")
		return fmt.Errorf("failed to build update fee query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&fee.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrFeeNotFound
		}
		return r.mapWriteError(err, fee)
	}
	return nil
}

// Delete deletes a fee by ID
func (r *FeeRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("fees").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete fee SQL")
		return fmt.Errorf("failed to build delete fee query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("feeID", id).Msg("Error executing delete fee query")
		return fmt.Errorf("error deleting fee: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrFeeNotFound
	}
	return nil
}

// RecentByStudent returns a student's fees with the latest due dates
func (r *FeeRepository) RecentByStudent(ctx context.Context, studentID int64, limit uint64) ([]models.Fee, error) {
	sql, args, err := r.feeSelect().
		Where(squirrel.Eq{"f.student_id": studentID}).
		OrderBy("f.due_date DESC", "f.id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building recent fees SQL")
		return nil, fmt.Errorf("failed to build recent fees query: %w", err)
	}
	return r.queryFees(ctx, sql, args)
}

// DeleteByStudent removes every fee of a student
func (r *FeeRepository) DeleteByStudent(ctx context.Context, studentID int64) (int64, error) {
	sql, args, err := r.sb.Delete("fees").Where(squirrel.Eq{"student_id": studentID}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete student fees SQL")
		return 0, fmt.Errorf("failed to build delete student fees query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", studentID).Msg("Error deleting student fees")
		return 0, fmt.Errorf("error deleting student fees: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}
