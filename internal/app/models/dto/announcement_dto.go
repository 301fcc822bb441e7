package dto

import (
	"time"

	"github.com/yigit/studentrecords/internal/app/models"
)

// AnnouncementRequest represents announcement create and update data
type AnnouncementRequest struct {
	Title        string     `json:"title" binding:"required,max=200" example:"Mid-term schedule"`
	Content      string     `json:"content" binding:"required"`
	Priority     string     `json:"priority" binding:"required,oneof=L M H U" example:"H"`
	DepartmentID *int64     `json:"department_id"`
	IsActive     *bool      `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// ToModel converts the request into an announcement
func (r AnnouncementRequest) ToModel() *models.Announcement {
	a := &models.Announcement{
		Title:        r.Title,
		Content:      r.Content,
		Priority:     models.Priority(r.Priority),
		DepartmentID: r.DepartmentID,
		IsActive:     true,
		ExpiresAt:    r.ExpiresAt,
	}
	if r.IsActive != nil {
		a.IsActive = *r.IsActive
	}
	return a
}
