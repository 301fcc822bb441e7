package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
)

// AttendanceController handles attendance marking and queries
type AttendanceController struct {
	attendanceService services.AttendanceService
}

// NewAttendanceController creates a new AttendanceController
func NewAttendanceController(attendanceService services.AttendanceService) *AttendanceController {
	return &AttendanceController{attendanceService: attendanceService}
}

// attendanceFilter reads the date and course query parameters
func attendanceFilter(ctx *gin.Context) (models.AttendanceFilter, bool) {
	date, valid := queryDate(ctx, "date")
	if !valid {
		return models.AttendanceFilter{}, false
	}
	courseID, valid := queryID(ctx, "course")
	if !valid {
		return models.AttendanceFilter{}, false
	}
	return models.AttendanceFilter{Date: date, CourseID: courseID}, true
}

// RecordAttendance records one student's status
// @Summary Record attendance
// @Description Creates the record for the student, course and date, or overwrites its status and remarks
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.AttendanceRequest true "Attendance"
// @Success 201 {object} dto.APIResponse{data=dto.AttendanceRecordResponse} "Created"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceRecordResponse} "Updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Router /attendance [post]
func (c *AttendanceController) RecordAttendance(ctx *gin.Context) {
	var req dto.AttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid date, expected YYYY-MM-DD").WithField("date")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	attendance := &models.Attendance{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Date:      date,
		Status:    models.AttendanceStatus(req.Status),
		Remarks:   req.Remarks,
	}
	created, err := c.attendanceService.Record(ctx, attendance, middleware.ActorID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	respond(ctx, status, dto.AttendanceRecordResponse{Attendance: *attendance, Created: created})
}

// BulkRecordAttendance records a whole class
// @Summary Record attendance in bulk
// @Description Records each entry independently. Entries for students not actively enrolled fail without affecting the rest.
// @Tags attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkAttendanceRequest true "Course, date and entries"
// @Success 200 {object} dto.APIResponse{data=models.BulkAttendanceResult} "Per-entry outcomes"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /attendance/bulk [post]
func (c *AttendanceController) BulkRecordAttendance(ctx *gin.Context) {
	var req dto.BulkAttendanceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	date, err := helpers.ParseDate(req.Date)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid date, expected YYYY-MM-DD").WithField("date")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	result, err := c.attendanceService.BulkRecord(ctx, req.CourseID, date, req.Entries, middleware.ActorID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, result)
}

// ListAttendance lists the records of a day
// @Summary List attendance
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param course query int false "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Attendance} "Attendance records"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Router /attendance [get]
func (c *AttendanceController) ListAttendance(ctx *gin.Context) {
	filter, valid := attendanceFilter(ctx)
	if !valid {
		return
	}

	records, err := c.attendanceService.List(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, records)
}

// AttendanceSheet lists a course's active students with their status for a date
// @Summary Attendance sheet
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param course query int true "Course ID"
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.APIResponse{data=[]models.SheetRow} "Sheet rows"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /attendance/sheet [get]
func (c *AttendanceController) AttendanceSheet(ctx *gin.Context) {
	filter, valid := attendanceFilter(ctx)
	if !valid {
		return
	}
	if filter.CourseID == nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "course is required").WithField("course")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}
	date := today()
	if filter.Date != nil {
		date = *filter.Date
	}

	rows, err := c.attendanceService.Sheet(ctx, *filter.CourseID, date)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, rows)
}

// AttendanceRatio reports a student's attendance percentage
// @Summary Attendance percentage
// @Tags attendance
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param course query int false "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.AttendanceRatioResponse} "Attendance percentage"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/attendance [get]
func (c *AttendanceController) AttendanceRatio(ctx *gin.Context) {
	studentID, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}
	courseID, valid := queryID(ctx, "course")
	if !valid {
		return
	}

	percentage, err := c.attendanceService.Ratio(ctx, studentID, courseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.AttendanceRatioResponse{
		StudentID:  studentID,
		CourseID:   courseID,
		Percentage: percentage,
	})
}
