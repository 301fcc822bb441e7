package models

import (
	"time"

	"github.com/yigit/studentrecords/internal/pkg/validation"
)

// Priority orders announcements, Low < Medium < High < Urgent.
type Priority string

const (
	PriorityLow    Priority = "L"
	PriorityMedium Priority = "M"
	PriorityHigh   Priority = "H"
	PriorityUrgent Priority = "U"
)

// Rank returns the ordering weight of p. Unknown priorities rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

// Announcement is a notice, global when DepartmentID is nil.
type Announcement struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title" validate:"required,max=200"`
	Content      string     `json:"content" validate:"required"`
	Priority     Priority   `json:"priority" validate:"required,oneof=L M H U"`
	DepartmentID *int64     `json:"department_id"`
	IsActive     bool       `json:"is_active"`
	CreatedBy    *int64     `json:"created_by"`
	CreatedAt    time.Time  `json:"created_at"`
	ExpiresAt    *time.Time `json:"expires_at"`

	Department *Department `json:"department,omitempty"`
}

// Validate checks the declared field constraints.
func (a *Announcement) Validate() error {
	return validation.Struct(a)
}

// IsLive reports whether the announcement is active and not expired at now.
func (a *Announcement) IsLive(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}
