package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
)

// FeeController handles fees and payments
type FeeController struct {
	feeService services.FeeService
	pageSize   int
}

// NewFeeController creates a new FeeController
func NewFeeController(feeService services.FeeService, pageSize int) *FeeController {
	return &FeeController{feeService: feeService, pageSize: pageSize}
}

func feeFilter(ctx *gin.Context) (models.FeeFilter, bool) {
	studentID, valid := queryID(ctx, "student")
	if !valid {
		return models.FeeFilter{}, false
	}
	return models.FeeFilter{
		StudentID: studentID,
		Status:    models.FeeStatus(strings.ToUpper(ctx.Query("status"))),
		Query:     strings.TrimSpace(ctx.Query("q")),
	}, true
}

// CreateFee creates a fee
// @Summary Create fee
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FeeRequest true "Fee information"
// @Success 201 {object} dto.APIResponse{data=dto.FeeResponse} "Fee created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /fees [post]
func (c *FeeController) CreateFee(ctx *gin.Context) {
	var req dto.FeeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fee := req.ToModel()
	if err := c.feeService.CreateFee(ctx, fee); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewFeeResponse(fee, today()))
}

// GetFee retrieves a fee
// @Summary Get fee
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeeResponse} "Fee"
// @Failure 404 {object} dto.ErrorResponse "Fee not found"
// @Router /fees/{id} [get]
func (c *FeeController) GetFee(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Fee")
	if !valid {
		return
	}

	fee, err := c.feeService.GetFee(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewFeeResponse(fee, today()))
}

// ListFees lists fees
// @Summary List fees
// @Description Lists fees newest due date first. status filters on the effective status, so OVD includes unpaid pending fees past due.
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param student query int false "Student ID"
// @Param status query string false "PEN, PAI, OVD, WAI or PAR"
// @Param q query string false "Student name or ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(15)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.FeeResponse}} "Fees"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Router /fees [get]
func (c *FeeController) ListFees(ctx *gin.Context) {
	filter, valid := feeFilter(ctx)
	if !valid {
		return
	}
	filter.Page, filter.PageSize = helpers.ParsePaginationParams(ctx, c.pageSize)

	fees, total, err := c.feeService.ListFees(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	paginated(ctx, dto.NewFeeResponses(fees, today()), total, filter.Page, filter.PageSize)
}

// FeeSummary totals fees
// @Summary Fee totals
// @Description Pending, paid and overdue totals over every fee matching the filters
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param student query int false "Student ID"
// @Param status query string false "Effective status"
// @Param q query string false "Student name or ID"
// @Success 200 {object} dto.APIResponse{data=models.FeeTotals} "Totals"
// @Router /fees/summary [get]
func (c *FeeController) FeeSummary(ctx *gin.Context) {
	filter, valid := feeFilter(ctx)
	if !valid {
		return
	}

	totals, err := c.feeService.Summary(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, totals)
}

// UpdateFee edits a fee. Payment fields are only changed through payments.
// @Summary Update fee
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee ID"
// @Param request body dto.FeeRequest true "Fee information"
// @Success 200 {object} dto.APIResponse{data=dto.FeeResponse} "Fee updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Fee or student not found"
// @Router /fees/{id} [put]
func (c *FeeController) UpdateFee(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Fee")
	if !valid {
		return
	}

	var req dto.FeeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fee, err := c.feeService.GetFee(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	req.ApplyTo(fee)
	if err := c.feeService.UpdateFee(ctx, fee); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewFeeResponse(fee, today()))
}

// DeleteFee deletes a fee
// @Summary Delete fee
// @Tags fees
// @Security BearerAuth
// @Param id path int true "Fee ID"
// @Success 204 "Fee deleted"
// @Failure 404 {object} dto.ErrorResponse "Fee not found"
// @Router /fees/{id} [delete]
func (c *FeeController) DeleteFee(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Fee")
	if !valid {
		return
	}

	if err := c.feeService.DeleteFee(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// RecordPayment records the cumulative amount paid
// @Summary Record payment
// @Description paid_amount is the total paid so far, not an increment. The status follows: paid in full, partially paid or pending.
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee ID"
// @Param request body dto.PaymentRequest true "Payment"
// @Success 200 {object} dto.APIResponse{data=dto.FeeResponse} "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid payment or fee waived"
// @Failure 404 {object} dto.ErrorResponse "Fee not found"
// @Router /fees/{id}/payments [post]
func (c *FeeController) RecordPayment(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Fee")
	if !valid {
		return
	}

	var req dto.PaymentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fee, err := c.feeService.RecordPayment(ctx, id, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewFeeResponse(fee, today()))
}

// WaiveFee waives a fee
// @Summary Waive fee
// @Tags fees
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee ID"
// @Param request body dto.WaiveRequest false "Reason"
// @Success 200 {object} dto.APIResponse{data=dto.FeeResponse} "Fee waived"
// @Failure 404 {object} dto.ErrorResponse "Fee not found"
// @Router /fees/{id}/waive [post]
func (c *FeeController) WaiveFee(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Fee")
	if !valid {
		return
	}

	var req dto.WaiveRequest
	if ctx.Request.ContentLength > 0 && !middleware.BindJSON(ctx, &req) {
		return
	}

	fee, err := c.feeService.Waive(ctx, id, req.Remarks)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewFeeResponse(fee, today()))
}

// FeeBalance reports what is still owed
// @Summary Fee balance
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee ID"
// @Success 200 {object} dto.APIResponse{data=dto.FeeBalanceResponse} "Balance"
// @Failure 404 {object} dto.ErrorResponse "Fee not found"
// @Router /fees/{id}/balance [get]
func (c *FeeController) FeeBalance(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Fee")
	if !valid {
		return
	}

	balance, err := c.feeService.Balance(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.FeeBalanceResponse{FeeID: id, Balance: balance})
}

// StudentFeeSummary totals one student's fees
// @Summary Student fee totals
// @Tags fees
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=models.FeeTotals} "Totals"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/fees/summary [get]
func (c *FeeController) StudentFeeSummary(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}

	totals, err := c.feeService.StudentSummary(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, totals)
}
