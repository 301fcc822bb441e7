package models

import (
	"time"

	"github.com/yigit/studentrecords/internal/pkg/validation"
)

// Department represents an academic department. Courses and students refer to it by ID.
type Department struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code" validate:"required,deptcode"`
	Name        string    `json:"name" validate:"required,max=100"`
	Head        string    `json:"head" validate:"max=100"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	// Populated by list queries
	StudentCount int64 `json:"student_count"`
	CourseCount  int64 `json:"course_count"`
}

// Validate checks the declared field constraints.
func (d *Department) Validate() error {
	return validation.Struct(d)
}
