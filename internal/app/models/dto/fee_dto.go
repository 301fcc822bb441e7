package dto

import (
	"time"

	"github.com/yigit/studentrecords/internal/app/models"
)

// FeeRequest represents fee create and update data
type FeeRequest struct {
	StudentID    int64   `json:"student_id" binding:"required,gt=0" example:"1"`
	FeeType      string  `json:"fee_type" binding:"required,oneof=TUI LAB LIB EXM OTH" example:"TUI"`
	Amount       float64 `json:"amount" binding:"gte=0" example:"1000"`
	DueDate      string  `json:"due_date" binding:"required,datetime=2006-01-02" example:"2025-09-30"`
	Semester     int     `json:"semester" binding:"omitempty,min=1,max=8" example:"1"`
	AcademicYear string  `json:"academic_year" example:"2025-2026"`
	Remarks      string  `json:"remarks"`
}

// ToModel converts the request into a pending fee
func (r FeeRequest) ToModel() *models.Fee {
	f := &models.Fee{
		StudentID:    r.StudentID,
		FeeType:      models.FeeType(r.FeeType),
		Amount:       r.Amount,
		Semester:     r.Semester,
		AcademicYear: r.AcademicYear,
		Remarks:      r.Remarks,
	}
	f.DueDate, _ = time.Parse(dateLayout, r.DueDate)
	f.ApplyDefaults()
	return f
}

// ApplyTo copies the editable fields onto an existing fee, keeping its payment state
func (r FeeRequest) ApplyTo(f *models.Fee) {
	f.StudentID = r.StudentID
	f.FeeType = models.FeeType(r.FeeType)
	f.Amount = r.Amount
	f.DueDate, _ = time.Parse(dateLayout, r.DueDate)
	f.Semester = r.Semester
	f.AcademicYear = r.AcademicYear
	f.Remarks = r.Remarks
	f.ApplyDefaults()
}

// WaiveRequest waives a fee with an optional reason
type WaiveRequest struct {
	Remarks string `json:"remarks" example:"Scholarship"`
}

// FeeBalanceResponse reports what is still owed on a fee
type FeeBalanceResponse struct {
	FeeID   int64   `json:"fee_id" example:"7"`
	Balance float64 `json:"balance" example:"600"`
}

// PaymentRequest records the cumulative amount paid against a fee
type PaymentRequest struct {
	PaidAmount    float64 `json:"paid_amount" binding:"gte=0" example:"400"`
	PaidDate      string  `json:"paid_date" binding:"omitempty,datetime=2006-01-02" example:"2025-09-10"`
	PaymentMode   string  `json:"payment_mode" binding:"omitempty,oneof=CASH CARD UPI BANK CHQ" example:"UPI"`
	TransactionID string  `json:"transaction_id"`
	ReceiptNumber string  `json:"receipt_number"`
}

// ToModel converts the request into a payment
func (r PaymentRequest) ToModel() models.Payment {
	p := models.Payment{
		PaidAmount:    r.PaidAmount,
		Mode:          models.PaymentMode(r.PaymentMode),
		TransactionID: r.TransactionID,
		ReceiptNumber: r.ReceiptNumber,
	}
	if r.PaidDate != "" {
		if d, err := time.Parse(dateLayout, r.PaidDate); err == nil {
			p.PaidDate = &d
		}
	}
	return p
}

// FeeResponse adds balance and effective status to a fee
type FeeResponse struct {
	models.Fee
	BalanceAmount   float64          `json:"balance_amount" example:"600"`
	EffectiveStatus models.FeeStatus `json:"effective_status" example:"OVD"`
}

// NewFeeResponse builds the response for a fee as of today
func NewFeeResponse(f *models.Fee, today time.Time) FeeResponse {
	return FeeResponse{
		Fee:             *f,
		BalanceAmount:   f.Balance(),
		EffectiveStatus: f.EffectiveStatus(today),
	}
}

// NewFeeResponses builds responses for a list of fees
func NewFeeResponses(fees []models.Fee, today time.Time) []FeeResponse {
	out := make([]FeeResponse, 0, len(fees))
	for i := range fees {
		out = append(out, NewFeeResponse(&fees[i], today))
	}
	return out
}
