package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

func tuitionFee(amount float64, due time.Time) *Fee {
	f := &Fee{StudentID: 1, FeeType: FeeTuition, Amount: amount, DueDate: due}
	f.ApplyDefaults()
	return f
}

func TestFeeDefaults(t *testing.T) {
	f := tuitionFee(500, date(2025, time.July, 1))
	assert.Equal(t, FeePending, f.Status)
	assert.Equal(t, 1, f.Semester)
	assert.Equal(t, DefaultAcademicYear, f.AcademicYear)
	require.NoError(t, f.Validate())
}

func TestFeeEffectiveStatus(t *testing.T) {
	f := tuitionFee(500, date(2025, time.July, 1))

	assert.Equal(t, FeePending, f.EffectiveStatus(date(2025, time.July, 1)))
	assert.Equal(t, FeeOverdue, f.EffectiveStatus(date(2025, time.July, 2)))

	f.PaidAmount = 100
	f.Status = FeePartiallyPaid
	assert.Equal(t, FeePartiallyPaid, f.EffectiveStatus(date(2025, time.August, 1)))
}

func TestStatusAfterPayment(t *testing.T) {
	tests := []struct {
		name    string
		current FeeStatus
		paid    float64
		want    FeeStatus
	}{
		{"full", FeePending, 500, FeePaid},
		{"over", FeePending, 600, FeePaid},
		{"partial", FeePending, 200, FeePartiallyPaid},
		{"reset after refund", FeePaid, 0, FeePending},
		{"nothing paid", FeeOverdue, 0, FeeOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusAfterPayment(tt.current, 500, tt.paid))
		})
	}
}

func TestPaymentApply(t *testing.T) {
	today := date(2025, time.June, 10)

	t.Run("partial then full", func(t *testing.T) {
		f := tuitionFee(500, date(2025, time.July, 1))

		require.NoError(t, Payment{PaidAmount: 200, Mode: PaymentUPI}.Apply(f, today))
		assert.Equal(t, FeePartiallyPaid, f.Status)
		assert.Equal(t, 300.0, f.Balance())
		require.NotNil(t, f.PaidDate)
		assert.Equal(t, today, *f.PaidDate)
		assert.Equal(t, PaymentUPI, f.PaymentMode)

		require.NoError(t, Payment{PaidAmount: 500, ReceiptNumber: "R-1"}.Apply(f, today))
		assert.Equal(t, FeePaid, f.Status)
		assert.Zero(t, f.Balance())
		assert.Equal(t, PaymentUPI, f.PaymentMode)
		assert.Equal(t, "R-1", f.ReceiptNumber)
	})

	t.Run("waived", func(t *testing.T) {
		f := tuitionFee(500, date(2025, time.July, 1))
		f.Status = FeeWaived
		assert.ErrorIs(t, Payment{PaidAmount: 100}.Apply(f, today), apperrors.ErrFeeWaived)
	})

	t.Run("negative", func(t *testing.T) {
		f := tuitionFee(500, date(2025, time.July, 1))
		err := Payment{PaidAmount: -1}.Apply(f, today)
		assert.Equal(t, "paid_amount", apperrors.Field(err))
	})
}

func TestSummarizeFees(t *testing.T) {
	today := date(2025, time.June, 10)
	pending := tuitionFee(500, date(2025, time.July, 1))
	overdue := tuitionFee(250, date(2025, time.May, 1))
	partial := tuitionFee(400, date(2025, time.May, 1))
	partial.PaidAmount, partial.Status = 100, FeePartiallyPaid
	paid := tuitionFee(300, date(2025, time.May, 1))
	paid.PaidAmount, paid.Status = 300, FeePaid
	waived := tuitionFee(1000, date(2025, time.May, 1))
	waived.Status = FeeWaived

	totals := SummarizeFees([]Fee{*pending, *overdue, *partial, *paid, *waived}, today)
	assert.Equal(t, FeeTotals{TotalPending: 800, TotalPaid: 400, TotalOverdue: 250}, totals)
}
