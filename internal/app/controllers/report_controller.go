package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
)

// ReportController serves the dashboard and chart endpoints
type ReportController struct {
	reportService services.ReportService
}

// NewReportController creates a new ReportController
func NewReportController(reportService services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// Dashboard returns every dashboard widget
// @Summary Dashboard
// @Description Counts, recent students, department distribution, monthly admissions, GPA distribution, today's attendance, pending fees and live announcements
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.Dashboard} "Dashboard"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /dashboard [get]
func (c *ReportController) Dashboard(ctx *gin.Context) {
	dashboard, err := c.reportService.Dashboard(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dashboard)
}

// DashboardStats returns the headline counts
// @Summary Dashboard counts
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardStats "Counts"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /api/dashboard-stats [get]
func (c *ReportController) DashboardStats(ctx *gin.Context) {
	stats, err := c.reportService.DashboardStats(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// AttendanceChart returns the daily attendance series
// @Summary Attendance chart
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param course query int false "Course ID"
// @Param days query int false "Trailing window in days" default(7)
// @Success 200 {array} models.ChartPoint "Chart points"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Router /api/attendance-chart [get]
func (c *ReportController) AttendanceChart(ctx *gin.Context) {
	courseID, valid := queryID(ctx, "course")
	if !valid {
		return
	}
	days, err := strconv.Atoi(ctx.DefaultQuery("days", "0"))
	if err != nil || days < 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "days must be a non-negative number").WithField("days")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	points, err := c.reportService.AttendanceChart(ctx, courseID, days)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, points)
}

// GPADistribution buckets student GPAs
// @Summary GPA distribution
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]models.GPABucket} "Buckets"
// @Router /reports/gpa-distribution [get]
func (c *ReportController) GPADistribution(ctx *gin.Context) {
	buckets, err := c.reportService.GPADistribution(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, buckets)
}
