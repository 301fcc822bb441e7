package dto

import "github.com/yigit/studentrecords/internal/app/models"

// AttendanceRequest records one student's status for a course and date
type AttendanceRequest struct {
	StudentID int64  `json:"student_id" binding:"required,gt=0" example:"1"`
	CourseID  int64  `json:"course_id" binding:"required,gt=0" example:"3"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02" example:"2025-09-01"`
	Status    string `json:"status" binding:"required,oneof=P A L E" example:"P"`
	Remarks   string `json:"remarks"`
}

// BulkAttendanceRequest records a whole class for a course and date
type BulkAttendanceRequest struct {
	CourseID int64                    `json:"course_id" binding:"required,gt=0" example:"3"`
	Date     string                   `json:"date" binding:"required,datetime=2006-01-02" example:"2025-09-01"`
	Entries  []models.AttendanceEntry `json:"entries" binding:"required,min=1,dive"`
}

// AttendanceRecordResponse reports a single upsert
type AttendanceRecordResponse struct {
	Attendance models.Attendance `json:"attendance"`
	Created    bool              `json:"created"`
}

// AttendanceRatioResponse reports a student's attendance percentage
type AttendanceRatioResponse struct {
	StudentID  int64   `json:"student_id" example:"1"`
	CourseID   *int64  `json:"course_id,omitempty"`
	Percentage float64 `json:"percentage" example:"75"`
}
