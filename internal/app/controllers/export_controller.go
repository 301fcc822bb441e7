package controllers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/export"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
)

// ExportController streams spreadsheet exports
type ExportController struct {
	exportService services.ExportService
}

// NewExportController creates a new ExportController
func NewExportController(exportService services.ExportService) *ExportController {
	return &ExportController{exportService: exportService}
}

// sendWorkbook writes a buffered workbook as an attachment. Buffering lets a failed export still answer with JSON.
func sendWorkbook(ctx *gin.Context, filename string, buf *bytes.Buffer) {
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

// ExportStudents downloads the student list
// @Summary Export students
// @Description Same filters as the student list, without paging
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param department query int false "Department ID"
// @Param status query string false "active or inactive"
// @Param semester query int false "Current semester"
// @Success 200 {file} file "students.xlsx"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Router /export/students [get]
func (c *ExportController) ExportStudents(ctx *gin.Context) {
	filter, valid := studentFilter(ctx)
	if !valid {
		return
	}

	var buf bytes.Buffer
	if err := c.exportService.StudentsWorkbook(ctx, &buf, filter); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	sendWorkbook(ctx, "students.xlsx", &buf)
}

// ExportAttendance downloads the attendance of a day
// @Summary Export attendance
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param date query string false "Date (YYYY-MM-DD), defaults to today"
// @Param course query int false "Course ID"
// @Success 200 {file} file "attendance_YYYY-MM-DD.xlsx"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Router /export/attendance [get]
func (c *ExportController) ExportAttendance(ctx *gin.Context) {
	filter, valid := attendanceFilter(ctx)
	if !valid {
		return
	}
	date := today()
	if filter.Date != nil {
		date = *filter.Date
	}
	filter.Date = &date

	var buf bytes.Buffer
	if err := c.exportService.AttendanceWorkbook(ctx, &buf, filter); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	sendWorkbook(ctx, fmt.Sprintf("attendance_%s.xlsx", date.Format(helpers.DateLayout)), &buf)
}
