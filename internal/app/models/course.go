package models

import (
	"time"

	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/validation"
)

// Default marks weighting used when a course does not declare one.
const (
	DefaultMaxInternalMarks = 40
	DefaultMaxExternalMarks = 60
	MaxTotalMarks           = 100
)

// Course is a unit of study offered by a department.
type Course struct {
	ID               int64     `json:"id"`
	Code             string    `json:"code" validate:"required,coursecode"`
	Name             string    `json:"name" validate:"required,max=200"`
	DepartmentID     int64     `json:"department_id" validate:"required,gt=0"`
	Description      string    `json:"description"`
	Credits          int       `json:"credits" validate:"min=1,max=6"`
	Semester         int       `json:"semester" validate:"min=1,max=8"`
	Instructor       string    `json:"instructor" validate:"max=100"`
	MaxStudents      int       `json:"max_students" validate:"min=1"`
	MaxInternalMarks float64   `json:"max_internal_marks" validate:"gte=0"`
	MaxExternalMarks float64   `json:"max_external_marks" validate:"gte=0"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Active enrollments, populated by read queries.
	EnrolledCount int64       `json:"enrolled_count"`
	Department    *Department `json:"department,omitempty"`
}

// ApplyDefaults fills the weighting bounds and capacity when they were left zero.
func (c *Course) ApplyDefaults() {
	if c.MaxInternalMarks == 0 && c.MaxExternalMarks == 0 {
		c.MaxInternalMarks = DefaultMaxInternalMarks
		c.MaxExternalMarks = DefaultMaxExternalMarks
	}
	if c.MaxStudents == 0 {
		c.MaxStudents = 50
	}
	if c.Credits == 0 {
		c.Credits = 3
	}
	if c.Semester == 0 {
		c.Semester = 1
	}
}

// Validate checks the declared field constraints and the marks weighting.
func (c *Course) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	total := c.MaxInternalMarks + c.MaxExternalMarks
	if total <= 0 || total > MaxTotalMarks {
		return apperrors.NewValidationError("max_external_marks", "internal and external marks must add up to between 1 and 100")
	}
	return nil
}

// AvailableSeats is capacity minus active enrollments. Over-enrolment makes it negative.
func (c *Course) AvailableSeats() int64 {
	return int64(c.MaxStudents) - c.EnrolledCount
}

// CourseFilter holds list-view filters.
type CourseFilter struct {
	// Query matches name, code or instructor
	Query        string
	DepartmentID *int64
	ActiveOnly   bool
	Page         int
	PageSize     int
}
