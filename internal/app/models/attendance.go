package models

import (
	"time"
)

// AttendanceStatus is the recorded presence of a student in one session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "P"
	AttendanceAbsent  AttendanceStatus = "A"
	AttendanceLate    AttendanceStatus = "L"
	AttendanceExcused AttendanceStatus = "E"
)

// AttendanceStatuses lists the statuses in display order.
var AttendanceStatuses = []AttendanceStatus{
	AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused,
}

// Valid reports whether s is a known status.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceExcused:
		return true
	}
	return false
}

// Label returns the display name used in exports.
func (s AttendanceStatus) Label() string {
	switch s {
	case AttendancePresent:
		return "Present"
	case AttendanceAbsent:
		return "Absent"
	case AttendanceLate:
		return "Late"
	case AttendanceExcused:
		return "Excused"
	}
	return string(s)
}

// Attendance is one status for a student in a course on a date.
type Attendance struct {
	ID         int64            `json:"id"`
	StudentID  int64            `json:"student_id"`
	CourseID   int64            `json:"course_id"`
	Date       time.Time        `json:"date"`
	Status     AttendanceStatus `json:"status"`
	Remarks    string           `json:"remarks"`
	RecordedBy *int64           `json:"recorded_by"`
	CreatedAt  time.Time        `json:"created_at"`

	Student *Student `json:"student,omitempty"`
	Course  *Course  `json:"course,omitempty"`
}

// AttendanceRatio returns present/total as a percentage rounded to one decimal, 0 when total is 0.
func AttendanceRatio(present, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return round(float64(present)*100/float64(total), 1)
}

// AttendanceSummary counts a student's records by status.
type AttendanceSummary struct {
	Present    int64   `json:"present"`
	Absent     int64   `json:"absent"`
	Late       int64   `json:"late"`
	Excused    int64   `json:"excused"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Add counts n records with the given status.
func (s *AttendanceSummary) Add(status AttendanceStatus, n int64) {
	switch status {
	case AttendancePresent:
		s.Present += n
	case AttendanceAbsent:
		s.Absent += n
	case AttendanceLate:
		s.Late += n
	case AttendanceExcused:
		s.Excused += n
	}
	s.Total += n
	s.Percentage = AttendanceRatio(s.Present, s.Total)
}

// ChartPoint is one day of the attendance chart.
type ChartPoint struct {
	Date    string `json:"date"`
	Present int64  `json:"present"`
	Absent  int64  `json:"absent"`
	Late    int64  `json:"late"`
}

// AttendanceEntry is one line of a bulk attendance request.
type AttendanceEntry struct {
	StudentID int64            `json:"student_id"`
	Status    AttendanceStatus `json:"status"`
	Remarks   string           `json:"remarks"`
}

// AttendanceOutcome reports what happened to one bulk entry.
type AttendanceOutcome struct {
	StudentID int64  `json:"student_id"`
	Created   bool   `json:"created"`
	Error     string `json:"error,omitempty"`
}

// BulkAttendanceResult aggregates a bulk run.
type BulkAttendanceResult struct {
	Recorded int                 `json:"recorded"`
	Created  int                 `json:"created"`
	Updated  int                 `json:"updated"`
	Failed   int                 `json:"failed"`
	Outcomes []AttendanceOutcome `json:"outcomes"`
}

// SheetRow is one enrolled student on an attendance sheet.
type SheetRow struct {
	StudentID   int64            `json:"student_id"`
	StudentCode string           `json:"student_code"`
	FullName    string           `json:"full_name"`
	Status      AttendanceStatus `json:"status"`
	Remarks     string           `json:"remarks"`
	Recorded    bool             `json:"recorded"`
}

// AttendanceFilter narrows attendance lists and exports.
type AttendanceFilter struct {
	Date     *time.Time
	CourseID *int64
}
