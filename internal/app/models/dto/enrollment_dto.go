package dto

import "github.com/yigit/studentrecords/internal/app/models"

// EnrollRequest enrolls a student in a course
type EnrollRequest struct {
	StudentID int64 `json:"student_id" binding:"required,gt=0" example:"1"`
	CourseID  int64 `json:"course_id" binding:"required,gt=0" example:"3"`
}

// GradeRequest records a grade and marks on an enrollment
type GradeRequest struct {
	Grade         models.Grade `json:"grade" example:"B+"`
	InternalMarks *float64     `json:"internal_marks" example:"32"`
	ExternalMarks *float64     `json:"external_marks" example:"48"`
}

// UpdateEnrollmentRequest edits an enrollment
type UpdateEnrollmentRequest struct {
	Grade         models.Grade `json:"grade" example:"A-"`
	InternalMarks *float64     `json:"internal_marks"`
	ExternalMarks *float64     `json:"external_marks"`
	IsActive      *bool        `json:"is_active"`
}

// EnrollmentResponse adds grade point and total marks to an enrollment
type EnrollmentResponse struct {
	models.Enrollment
	GradePoint float64 `json:"grade_point" example:"3.33"`
	TotalMarks float64 `json:"total_marks" example:"80"`
}

// NewEnrollmentResponse builds the response for an enrollment
func NewEnrollmentResponse(e *models.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		Enrollment: *e,
		GradePoint: e.GradePoint(),
		TotalMarks: e.TotalMarks(),
	}
}

// NewEnrollmentResponses builds responses for a list of enrollments
func NewEnrollmentResponses(list []models.Enrollment) []EnrollmentResponse {
	out := make([]EnrollmentResponse, 0, len(list))
	for i := range list {
		out = append(out, NewEnrollmentResponse(&list[i]))
	}
	return out
}

// ToModel converts the request to enrollment changes
func (r *UpdateEnrollmentRequest) ToModel() models.EnrollmentChanges {
	return models.EnrollmentChanges{
		Grade:         r.Grade,
		InternalMarks: r.InternalMarks,
		ExternalMarks: r.ExternalMarks,
		IsActive:      r.IsActive,
	}
}
