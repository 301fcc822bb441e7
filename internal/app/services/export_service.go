package services

import (
	"context"
	"io"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/export"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
)

// Export header contracts
var (
	StudentExportHeaders = []string{
		"Student ID", "First Name", "Last Name", "Email", "Phone",
		"Department", "Semester", "GPA", "Status", "Admission Date",
	}
	AttendanceExportHeaders = []string{
		"Date", "Student ID", "Student Name", "Course", "Status", "Remarks",
	}
)

const (
	studentHeaderFill    = "4F46E5"
	attendanceHeaderFill = "10B981"
)

// ExportService writes student and attendance lists as spreadsheets
type ExportService interface {
	// StudentsWorkbook exports every student matching filter, ignoring paging
	StudentsWorkbook(ctx context.Context, w io.Writer, filter models.StudentFilter) error
	// AttendanceWorkbook exports the attendance of a day, today when filter.Date is nil
	AttendanceWorkbook(ctx context.Context, w io.Writer, filter models.AttendanceFilter) error
}

type exportServiceImpl struct {
	students   StudentService
	attendance AttendanceService
}

// NewExportService creates a new export service instance
func NewExportService(students StudentService, attendance AttendanceService) ExportService {
	return &exportServiceImpl{students: students, attendance: attendance}
}

// StudentRow renders one student in export column order
func StudentRow(s *models.Student) []interface{} {
	status := "Inactive"
	if s.IsActive {
		status = "Active"
	}
	return []interface{}{
		s.StudentID,
		s.FirstName,
		s.LastName,
		s.Email,
		s.Phone,
		s.DepartmentName(),
		s.CurrentSemester,
		s.GPA,
		status,
		s.AdmissionDate.Format(helpers.DateLayout),
	}
}

// AttendanceRow renders one attendance record in export column order
func AttendanceRow(a *models.Attendance) []interface{} {
	var code, name, course string
	if a.Student != nil {
		code = a.Student.StudentID
		name = a.Student.FullName()
	}
	if a.Course != nil {
		course = a.Course.Code
	}
	return []interface{}{
		a.Date.Format(helpers.DateLayout),
		code,
		name,
		course,
		a.Status.Label(),
		a.Remarks,
	}
}

// StudentsWorkbook writes the student export
func (s *exportServiceImpl) StudentsWorkbook(ctx context.Context, w io.Writer, filter models.StudentFilter) error {
	filter.Page, filter.PageSize = 0, 0
	students, _, err := s.students.ListStudents(ctx, filter)
	if err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(students))
	for i := range students {
		rows = append(rows, StudentRow(&students[i]))
	}
	return export.Write(w, export.Table{
		Sheet:       "Students",
		Headers:     StudentExportHeaders,
		HeaderFill:  studentHeaderFill,
		Rows:        rows,
		ColumnWidth: 18,
	})
}

// AttendanceWorkbook writes the attendance export
func (s *exportServiceImpl) AttendanceWorkbook(ctx context.Context, w io.Writer, filter models.AttendanceFilter) error {
	records, err := s.attendance.List(ctx, filter)
	if err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(records))
	for i := range records {
		rows = append(rows, AttendanceRow(&records[i]))
	}
	return export.Write(w, export.Table{
		Sheet:       "Attendance",
		Headers:     AttendanceExportHeaders,
		HeaderFill:  attendanceHeaderFill,
		Rows:        rows,
		ColumnWidth: 18,
	})
}
