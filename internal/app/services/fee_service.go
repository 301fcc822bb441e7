package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/db"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// FeeService defines the fee ledger
type FeeService interface {
	CreateFee(ctx context.Context, fee *models.Fee) error
	GetFee(ctx context.Context, id int64) (*models.Fee, error)
	ListFees(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int64, error)
	UpdateFee(ctx context.Context, fee *models.Fee) error
	DeleteFee(ctx context.Context, id int64) error
	// RecordPayment sets the cumulative paid amount and derives the status from it
	RecordPayment(ctx context.Context, feeID int64, payment models.Payment) (*models.Fee, error)
	Waive(ctx context.Context, feeID int64, remarks string) (*models.Fee, error)
	Balance(ctx context.Context, feeID int64) (float64, error)
	// Summary totals pending, paid and overdue amounts over the fees matching filter
	Summary(ctx context.Context, filter models.FeeFilter) (models.FeeTotals, error)
	StudentSummary(ctx context.Context, studentID int64) (models.FeeTotals, error)
}

type feeServiceImpl struct {
	feeRepo     repositories.IFeeRepository
	studentRepo repositories.IStudentRepository
	tx          db.Transactor
	clock       Clock
}

// NewFeeService creates a new fee service instance
func NewFeeService(feeRepo repositories.IFeeRepository, studentRepo repositories.IStudentRepository, tx db.Transactor, clock Clock) FeeService {
	if tx == nil {
		tx = noTx{}
	}
	return &feeServiceImpl{
		feeRepo:     feeRepo,
		studentRepo: studentRepo,
		tx:          tx,
		clock:       clock,
	}
}

func (s *feeServiceImpl) prepare(ctx context.Context, fee *models.Fee) error {
	if fee == nil {
		return fmt.Errorf("%w: fee is nil", apperrors.ErrValidationFailed)
	}
	fee.ApplyDefaults()
	fee.AcademicYear = strings.TrimSpace(fee.AcademicYear)
	if fee.Status != models.FeeWaived && fee.Status != models.FeeOverdue {
		fee.Status = models.StatusAfterPayment(fee.Status, fee.Amount, fee.PaidAmount)
	}
	if err := fee.Validate(); err != nil {
		return err
	}
	if _, err := s.studentRepo.GetByID(ctx, fee.StudentID); err != nil {
		return err
	}
	return nil
}

// CreateFee creates a new fee
func (s *feeServiceImpl) CreateFee(ctx context.Context, fee *models.Fee) error {
	if err := s.prepare(ctx, fee); err != nil {
		return err
	}
	if err := s.feeRepo.Create(ctx, fee); err != nil {
		return err
	}
	logger.Info().Int64("feeID", fee.ID).Int64("studentID", fee.StudentID).Float64("amount", fee.Amount).Msg("Fee created")
	return nil
}

// GetFee retrieves a fee by ID
func (s *feeServiceImpl) GetFee(ctx context.Context, id int64) (*models.Fee, error) {
	if err := validateID(id, "fee"); err != nil {
		return nil, err
	}
	fee, err := s.feeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrFeeNotFound) {
			return nil, apperrors.ErrFeeNotFound
		}
		return nil, fmt.Errorf("error retrieving fee: %w", err)
	}
	return fee, nil
}

// ListFees lists fees filtered by effective status and student search
func (s *feeServiceImpl) ListFees(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, apperrors.NewValidationError("status", fmt.Sprintf("unknown fee status %q", filter.Status))
	}
	filter.Query = strings.TrimSpace(filter.Query)
	fees, total, err := s.feeRepo.List(ctx, filter, s.clock.today())
	if err != nil {
		return nil, 0, fmt.Errorf("error listing fees: %w", err)
	}
	return fees, total, nil
}

// UpdateFee updates an existing fee
func (s *feeServiceImpl) UpdateFee(ctx context.Context, fee *models.Fee) error {
	if fee == nil {
		return fmt.Errorf("%w: fee is nil", apperrors.ErrValidationFailed)
	}
	if err := validateID(fee.ID, "fee"); err != nil {
		return err
	}
	if err := s.prepare(ctx, fee); err != nil {
		return err
	}
	return s.feeRepo.Update(ctx, fee)
}

// DeleteFee deletes a fee by ID
func (s *feeServiceImpl) DeleteFee(ctx context.Context, id int64) error {
	if err := validateID(id, "fee"); err != nil {
		return err
	}
	return s.feeRepo.Delete(ctx, id)
}

// RecordPayment applies a payment under a row lock on the fee
func (s *feeServiceImpl) RecordPayment(ctx context.Context, feeID int64, payment models.Payment) (*models.Fee, error) {
	if err := validateID(feeID, "fee"); err != nil {
		return nil, err
	}

	var fee *models.Fee
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		fee, err = s.feeRepo.LockByID(ctx, feeID)
		if err != nil {
			return err
		}
		if err := payment.Apply(fee, s.clock.today()); err != nil {
			return err
		}
		return s.feeRepo.Update(ctx, fee)
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("feeID", fee.ID).
		Float64("paidAmount", fee.PaidAmount).
		Str("status", string(fee.Status)).
		Msg("Payment recorded")
	return fee, nil
}

// Waive marks a fee as waived
func (s *feeServiceImpl) Waive(ctx context.Context, feeID int64, remarks string) (*models.Fee, error) {
	if err := validateID(feeID, "fee"); err != nil {
		return nil, err
	}

	var fee *models.Fee
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		fee, err = s.feeRepo.LockByID(ctx, feeID)
		if err != nil {
			return err
		}
		fee.Status = models.FeeWaived
		if remarks = strings.TrimSpace(remarks); remarks != "" {
			fee.Remarks = remarks
		}
		return s.feeRepo.Update(ctx, fee)
	})
	if err != nil {
		return nil, err
	}
	logger.Info().Int64("feeID", fee.ID).Msg("Fee waived")
	return fee, nil
}

// Balance returns amount minus paid amount
func (s *feeServiceImpl) Balance(ctx context.Context, feeID int64) (float64, error) {
	fee, err := s.GetFee(ctx, feeID)
	if err != nil {
		return 0, err
	}
	return fee.Balance(), nil
}

// Summary aggregates every fee matching filter, ignoring paging
func (s *feeServiceImpl) Summary(ctx context.Context, filter models.FeeFilter) (models.FeeTotals, error) {
	filter.Page, filter.PageSize = 0, 0
	fees, _, err := s.ListFees(ctx, filter)
	if err != nil {
		return models.FeeTotals{}, err
	}
	return models.SummarizeFees(fees, s.clock.today()), nil
}

// StudentSummary aggregates the fees of one student
func (s *feeServiceImpl) StudentSummary(ctx context.Context, studentID int64) (models.FeeTotals, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return models.FeeTotals{}, err
	}
	return s.Summary(ctx, models.FeeFilter{StudentID: &studentID})
}
