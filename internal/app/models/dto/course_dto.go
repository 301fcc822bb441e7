package dto

import "github.com/yigit/studentrecords/internal/app/models"

// CourseRequest represents course create and update data
type CourseRequest struct {
	Code             string   `json:"code" binding:"required,max=20" example:"CS101"`
	Name             string   `json:"name" binding:"required,max=200" example:"Introduction to Programming"`
	DepartmentID     int64    `json:"department_id" binding:"required,gt=0" example:"1"`
	Description      string   `json:"description"`
	Credits          int      `json:"credits" binding:"omitempty,min=1,max=6" example:"3"`
	Semester         int      `json:"semester" binding:"omitempty,min=1,max=8" example:"1"`
	Instructor       string   `json:"instructor" binding:"max=100"`
	MaxStudents      int      `json:"max_students" binding:"omitempty,min=1" example:"50"`
	MaxInternalMarks *float64 `json:"max_internal_marks" binding:"omitempty,gte=0" example:"40"`
	MaxExternalMarks *float64 `json:"max_external_marks" binding:"omitempty,gte=0" example:"60"`
	IsActive         *bool    `json:"is_active"`
}

// ToModel converts the request into a course. Omitted fields take the course defaults.
func (r CourseRequest) ToModel() *models.Course {
	c := &models.Course{
		Code:         r.Code,
		Name:         r.Name,
		DepartmentID: r.DepartmentID,
		Description:  r.Description,
		Credits:      r.Credits,
		Semester:     r.Semester,
		Instructor:   r.Instructor,
		MaxStudents:  r.MaxStudents,
		IsActive:     true,
	}
	if r.MaxInternalMarks != nil {
		c.MaxInternalMarks = *r.MaxInternalMarks
	}
	if r.MaxExternalMarks != nil {
		c.MaxExternalMarks = *r.MaxExternalMarks
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
	c.ApplyDefaults()
	return c
}

// CourseResponse adds the seat count to a course
type CourseResponse struct {
	models.Course
	AvailableSeats int64 `json:"available_seats" example:"12"`
}

// NewCourseResponse builds the response for a course
func NewCourseResponse(c *models.Course) CourseResponse {
	return CourseResponse{Course: *c, AvailableSeats: c.AvailableSeats()}
}

// NewCourseResponses builds responses for a list of courses
func NewCourseResponses(courses []models.Course) []CourseResponse {
	out := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, NewCourseResponse(&courses[i]))
	}
	return out
}
