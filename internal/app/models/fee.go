package models

import (
	"time"

	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/validation"
)

// DefaultAcademicYear is used when a fee is created without one.
const DefaultAcademicYear = "2025-2026"

// FeeType classifies what a fee is charged for.
type FeeType string

const (
	FeeTuition     FeeType = "TUI"
	FeeLab         FeeType = "LAB"
	FeeLibrary     FeeType = "LIB"
	FeeExamination FeeType = "EXM"
	FeeOther       FeeType = "OTH"
)

// Label returns the display name for the fee type.
func (t FeeType) Label() string {
	switch t {
	case FeeTuition:
		return "Tuition Fee"
	case FeeLab:
		return "Lab Fee"
	case FeeLibrary:
		return "Library Fee"
	case FeeExamination:
		return "Examination Fee"
	case FeeOther:
		return "Other"
	}
	return string(t)
}

// FeeStatus is the stored or effective state of a fee.
type FeeStatus string

const (
	FeePending       FeeStatus = "PEN"
	FeePaid          FeeStatus = "PAI"
	FeeOverdue       FeeStatus = "OVD"
	FeeWaived        FeeStatus = "WAI"
	FeePartiallyPaid FeeStatus = "PAR"
)

// Valid reports whether s is a known status.
func (s FeeStatus) Valid() bool {
	switch s {
	case FeePending, FeePaid, FeeOverdue, FeeWaived, FeePartiallyPaid:
		return true
	}
	return false
}

// PaymentMode records how a payment was made.
type PaymentMode string

const (
	PaymentCash   PaymentMode = "CASH"
	PaymentCard   PaymentMode = "CARD"
	PaymentUPI    PaymentMode = "UPI"
	PaymentBank   PaymentMode = "BANK"
	PaymentCheque PaymentMode = "CHQ"
)

// Fee is one billable obligation for a student.
type Fee struct {
	ID            int64       `json:"id"`
	StudentID     int64       `json:"student_id" validate:"required,gt=0"`
	FeeType       FeeType     `json:"fee_type" validate:"required,oneof=TUI LAB LIB EXM OTH"`
	Amount        float64     `json:"amount" validate:"gte=0"`
	DueDate       time.Time   `json:"due_date" validate:"required"`
	PaidDate      *time.Time  `json:"paid_date"`
	Status        FeeStatus   `json:"status" validate:"required,oneof=PEN PAI OVD WAI PAR"`
	PaidAmount    float64     `json:"paid_amount" validate:"gte=0"`
	PaymentMode   PaymentMode `json:"payment_mode" validate:"omitempty,oneof=CASH CARD UPI BANK CHQ"`
	TransactionID string      `json:"transaction_id" validate:"max=100"`
	ReceiptNumber string      `json:"receipt_number" validate:"max=50"`
	Semester      int         `json:"semester" validate:"min=1,max=8"`
	AcademicYear  string      `json:"academic_year" validate:"required,academicyear"`
	Remarks       string      `json:"remarks"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Student *Student `json:"student,omitempty"`
}

// ApplyDefaults fills status, semester and academic year when left empty.
func (f *Fee) ApplyDefaults() {
	if f.Status == "" {
		f.Status = FeePending
	}
	if f.Semester == 0 {
		f.Semester = 1
	}
	if f.AcademicYear == "" {
		f.AcademicYear = DefaultAcademicYear
	}
}

// Validate checks the declared field constraints.
func (f *Fee) Validate() error {
	return validation.Struct(f)
}

// Balance is the amount still owed. Negative means overpaid.
func (f *Fee) Balance() float64 {
	return round(f.Amount-f.PaidAmount, 2)
}

// EffectiveStatus derives Overdue at read time for unpaid pending fees past their due date.
func (f *Fee) EffectiveStatus(today time.Time) FeeStatus {
	if f.Status == FeePending && f.PaidAmount == 0 && dateOf(f.DueDate).Before(dateOf(today)) {
		return FeeOverdue
	}
	return f.Status
}

// StatusAfterPayment returns the status for a cumulative paid amount.
func StatusAfterPayment(current FeeStatus, amount, paid float64) FeeStatus {
	switch {
	case paid >= amount && paid > 0:
		return FeePaid
	case paid > 0 && paid < amount:
		return FeePartiallyPaid
	case current == FeePaid || current == FeePartiallyPaid:
		// payment reversed to zero
		return FeePending
	}
	return current
}

// Payment is a request to record the cumulative amount paid against a fee.
type Payment struct {
	PaidAmount    float64     `json:"paid_amount"`
	PaidDate      *time.Time  `json:"paid_date"`
	Mode          PaymentMode `json:"payment_mode"`
	TransactionID string      `json:"transaction_id"`
	ReceiptNumber string      `json:"receipt_number"`
}

// Apply validates p and updates f's payment fields and status.
func (p Payment) Apply(f *Fee, today time.Time) error {
	if f.Status == FeeWaived {
		return apperrors.ErrFeeWaived
	}
	if p.PaidAmount < 0 {
		return apperrors.NewValidationError("paid_amount", "paid_amount must be at least 0")
	}
	f.PaidAmount = p.PaidAmount
	f.Status = StatusAfterPayment(f.Status, f.Amount, p.PaidAmount)
	switch {
	case p.PaidDate != nil:
		d := dateOf(*p.PaidDate)
		f.PaidDate = &d
	case p.PaidAmount > 0:
		d := dateOf(today)
		f.PaidDate = &d
	}
	if p.Mode != "" {
		f.PaymentMode = p.Mode
	}
	if p.TransactionID != "" {
		f.TransactionID = p.TransactionID
	}
	if p.ReceiptNumber != "" {
		f.ReceiptNumber = p.ReceiptNumber
	}
	return validation.Struct(f)
}

// FeeTotals aggregates a set of fees.
type FeeTotals struct {
	TotalPending float64 `json:"total_pending"`
	TotalPaid    float64 `json:"total_paid"`
	TotalOverdue float64 `json:"total_overdue"`
}

// SummarizeFees totals fees by their effective status on today.
func SummarizeFees(fees []Fee, today time.Time) FeeTotals {
	var t FeeTotals
	for i := range fees {
		f := &fees[i]
		t.TotalPaid += f.PaidAmount
		switch f.EffectiveStatus(today) {
		case FeePending, FeePartiallyPaid:
			t.TotalPending += f.Balance()
		case FeeOverdue:
			t.TotalOverdue += f.Balance()
		}
	}
	t.TotalPending = round(t.TotalPending, 2)
	t.TotalPaid = round(t.TotalPaid, 2)
	t.TotalOverdue = round(t.TotalOverdue, 2)
	return t
}

// FeeFilter narrows fee lists and summaries.
type FeeFilter struct {
	StudentID *int64
	// Status filters on the effective status
	Status   FeeStatus
	Query    string
	Page     int
	PageSize int
}
