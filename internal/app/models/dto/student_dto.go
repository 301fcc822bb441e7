package dto

import (
	"time"

	"github.com/yigit/studentrecords/internal/app/models"
)

const dateLayout = "2006-01-02"

// StudentRequest represents student create and update data.
// student_id is not accepted: it is assigned at creation and never changes.
type StudentRequest struct {
	FirstName        string  `json:"first_name" binding:"required,max=100" example:"Jane"`
	LastName         string  `json:"last_name" binding:"required,max=100" example:"Doe"`
	Email            string  `json:"email" binding:"required,email" example:"jane.doe@example.edu"`
	Phone            string  `json:"phone" example:"+15551234567"`
	DateOfBirth      string  `json:"date_of_birth" binding:"required,datetime=2006-01-02" example:"2004-05-17"`
	Gender           string  `json:"gender" binding:"required,oneof=M F O" example:"F"`
	BloodGroup       string  `json:"blood_group" example:"O+"`
	Address          string  `json:"address"`
	City             string  `json:"city"`
	State            string  `json:"state"`
	PostalCode       string  `json:"postal_code"`
	GuardianName     string  `json:"guardian_name"`
	GuardianPhone    string  `json:"guardian_phone"`
	GuardianEmail    string  `json:"guardian_email"`
	GuardianRelation string  `json:"guardian_relation"`
	DepartmentID     *int64  `json:"department_id" example:"1"`
	AdmissionDate    string  `json:"admission_date" binding:"omitempty,datetime=2006-01-02" example:"2025-08-01"`
	CurrentSemester  int     `json:"current_semester" binding:"omitempty,min=1,max=8" example:"1"`
	GPA              float64 `json:"gpa" binding:"gte=0,lte=4" example:"3.45"`
	TotalCredits     int     `json:"total_credits" binding:"gte=0"`
	IsActive         *bool   `json:"is_active"`
}

// ToModel converts the request into a student. Dates were checked by binding.
func (r StudentRequest) ToModel() *models.Student {
	s := &models.Student{
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		Email:            r.Email,
		Phone:            r.Phone,
		Gender:           models.Gender(r.Gender),
		BloodGroup:       models.BloodGroup(r.BloodGroup),
		Address:          r.Address,
		City:             r.City,
		State:            r.State,
		PostalCode:       r.PostalCode,
		GuardianName:     r.GuardianName,
		GuardianPhone:    r.GuardianPhone,
		GuardianEmail:    r.GuardianEmail,
		GuardianRelation: r.GuardianRelation,
		DepartmentID:     r.DepartmentID,
		CurrentSemester:  r.CurrentSemester,
		GPA:              r.GPA,
		TotalCredits:     r.TotalCredits,
		IsActive:         true,
	}
	s.DateOfBirth, _ = time.Parse(dateLayout, r.DateOfBirth)
	if r.AdmissionDate != "" {
		s.AdmissionDate, _ = time.Parse(dateLayout, r.AdmissionDate)
	}
	if s.CurrentSemester == 0 {
		s.CurrentSemester = models.MinSemester
	}
	if r.IsActive != nil {
		s.IsActive = *r.IsActive
	}
	return s
}

// StudentResponse adds the derived fields to a student
type StudentResponse struct {
	models.Student
	FullName       string `json:"full_name" example:"Jane Doe"`
	Age            int    `json:"age" example:"21"`
	DepartmentName string `json:"department_name" example:"Computer Science"`
}

// NewStudentResponse builds the response for a student as of today
func NewStudentResponse(s *models.Student, today time.Time) StudentResponse {
	return StudentResponse{
		Student:        *s,
		FullName:       s.FullName(),
		Age:            s.AgeOn(today),
		DepartmentName: s.DepartmentName(),
	}
}

// NewStudentResponses builds responses for a list of students
func NewStudentResponses(students []models.Student, today time.Time) []StudentResponse {
	out := make([]StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, NewStudentResponse(&students[i], today))
	}
	return out
}

// StudentDetailResponse is the student page payload
type StudentDetailResponse struct {
	Student     StudentResponse          `json:"student"`
	Enrollments []EnrollmentResponse     `json:"enrollments"`
	Attendance  models.AttendanceSummary `json:"attendance"`
	RecentFees  []FeeResponse            `json:"recent_fees"`
	FeeSummary  models.FeeTotals         `json:"fee_summary"`
}

// NewStudentDetailResponse builds the detail payload
func NewStudentDetailResponse(d *models.StudentDetail, today time.Time) StudentDetailResponse {
	return StudentDetailResponse{
		Student:     NewStudentResponse(&d.Student, today),
		Enrollments: NewEnrollmentResponses(d.Enrollments),
		Attendance:  d.Attendance,
		RecentFees:  NewFeeResponses(d.RecentFees, today),
		FeeSummary:  d.FeeSummary,
	}
}

// GPAResponse reports a computed grade point average
type GPAResponse struct {
	StudentID int64   `json:"student_id" example:"1"`
	GPA       float64 `json:"gpa" example:"3.42"`
	Credits   int     `json:"credits" example:"18"`
}
