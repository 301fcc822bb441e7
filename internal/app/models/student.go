package models

import (
	"fmt"
	"time"

	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/validation"
)

// GPA bounds on the 4.0 scale.
const (
	MinGPA = 0.0
	MaxGPA = 4.0
)

// Student is an enrolled person. StudentID is assigned once at creation and never changes.
type Student struct {
	ID               int64      `json:"id"`
	StudentID        string     `json:"student_id"`
	FirstName        string     `json:"first_name" validate:"required,max=100"`
	LastName         string     `json:"last_name" validate:"required,max=100"`
	Email            string     `json:"email" validate:"required,email,max=254"`
	Phone            string     `json:"phone" validate:"omitempty,phone"`
	DateOfBirth      time.Time  `json:"date_of_birth" validate:"required"`
	Gender           Gender     `json:"gender" validate:"required,oneof=M F O"`
	BloodGroup       BloodGroup `json:"blood_group"`
	Address          string     `json:"address"`
	City             string     `json:"city" validate:"max=100"`
	State            string     `json:"state" validate:"max=100"`
	PostalCode       string     `json:"postal_code" validate:"max=20"`
	GuardianName     string     `json:"guardian_name" validate:"max=100"`
	GuardianPhone    string     `json:"guardian_phone" validate:"omitempty,phone"`
	GuardianEmail    string     `json:"guardian_email" validate:"omitempty,email"`
	GuardianRelation string     `json:"guardian_relation" validate:"max=50"`
	DepartmentID     *int64     `json:"department_id"`
	AdmissionDate    time.Time  `json:"admission_date"`
	CurrentSemester  int        `json:"current_semester" validate:"min=1,max=8"`
	GPA              float64    `json:"gpa"`
	TotalCredits     int        `json:"total_credits" validate:"gte=0"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Department *Department `json:"department,omitempty"`
}

// FullName joins first and last name.
func (s *Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// AgeOn returns completed years of age on the given day.
func (s *Student) AgeOn(today time.Time) int {
	if s.DateOfBirth.IsZero() {
		return 0
	}
	ty, tm, td := today.Date()
	by, bm, bd := s.DateOfBirth.Date()
	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age
}

// DepartmentName returns the joined department name or an empty string.
func (s *Student) DepartmentName() string {
	if s.Department == nil {
		return ""
	}
	return s.Department.Name
}

// Validate checks field constraints. today bounds the date of birth and admission date.
func (s *Student) Validate(today time.Time) error {
	if err := validation.Struct(s); err != nil {
		return err
	}
	if !s.BloodGroup.Valid() {
		return apperrors.NewValidationError("blood_group", fmt.Sprintf("blood_group %q is not a known blood group", s.BloodGroup))
	}
	if s.GPA < MinGPA || s.GPA > MaxGPA {
		return apperrors.NewValidationError("gpa", fmt.Sprintf("gpa must be between %.1f and %.1f", MinGPA, MaxGPA))
	}
	if dateOf(s.DateOfBirth).After(dateOf(today)) {
		return apperrors.NewValidationError("date_of_birth", "date_of_birth cannot be in the future")
	}
	if !s.AdmissionDate.IsZero() && dateOf(s.AdmissionDate).Before(dateOf(s.DateOfBirth)) {
		return apperrors.NewValidationError("admission_date", "admission_date cannot precede date_of_birth")
	}
	return nil
}

// StudentFilter holds list-view filters.
type StudentFilter struct {
	Query        string
	DepartmentID *int64
	// Status is "active", "inactive" or empty for all
	Status   string
	Semester int
	// Sort is one of StudentSortFields, optionally prefixed with "-"
	Sort     string
	Page     int
	PageSize int
}

// StudentSortFields are the columns a list may be ordered by.
var StudentSortFields = map[string]bool{
	"student_id": true,
	"first_name": true,
	"gpa":        true,
	"created_at": true,
}
