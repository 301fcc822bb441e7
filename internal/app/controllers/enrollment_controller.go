package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
)

// EnrollmentController handles enrollments and grading
type EnrollmentController struct {
	enrollmentService services.EnrollmentService
}

// NewEnrollmentController creates a new EnrollmentController
func NewEnrollmentController(enrollmentService services.EnrollmentService) *EnrollmentController {
	return &EnrollmentController{enrollmentService: enrollmentService}
}

// Enroll enrolls a student in a course
// @Summary Enroll student
// @Description Enrolls an active student in an active course. A pair can only be enrolled once.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.EnrollRequest true "Student and course"
// @Success 201 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrolled"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student or course not found"
// @Failure 409 {object} dto.ErrorResponse "Already enrolled"
// @Failure 422 {object} dto.ErrorResponse "Student or course inactive"
// @Router /enrollments [post]
func (c *EnrollmentController) Enroll(ctx *gin.Context) {
	var req dto.EnrollRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.Enroll(ctx, req.StudentID, req.CourseID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewEnrollmentResponse(enrollment))
}

// GetEnrollment retrieves an enrollment
// @Summary Get enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrollment"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [get]
func (c *EnrollmentController) GetEnrollment(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Enrollment")
	if !valid {
		return
	}

	enrollment, err := c.enrollmentService.GetEnrollment(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewEnrollmentResponse(enrollment))
}

// RecordGrade records a grade and marks
// @Summary Record grade
// @Description Sets grade and marks. Marks are bounded by the course maxima. A passing or failing grade completes the enrollment.
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body dto.GradeRequest true "Grade and marks"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Grade recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid grade or marks"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id}/grade [put]
func (c *EnrollmentController) RecordGrade(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Enrollment")
	if !valid {
		return
	}

	var req dto.GradeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.RecordGrade(ctx, id, req.Grade, req.InternalMarks, req.ExternalMarks)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewEnrollmentResponse(enrollment))
}

// UpdateEnrollment edits an enrollment
// @Summary Update enrollment
// @Tags enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Param request body dto.UpdateEnrollmentRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Enrollment updated"
// @Failure 400 {object} dto.ErrorResponse "Invalid grade or marks"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id} [patch]
func (c *EnrollmentController) UpdateEnrollment(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Enrollment")
	if !valid {
		return
	}

	var req dto.UpdateEnrollmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.enrollmentService.UpdateEnrollment(ctx, id, req.ToModel())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewEnrollmentResponse(enrollment))
}

// Withdraw deactivates an enrollment
// @Summary Withdraw enrollment
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Enrollment ID"
// @Success 200 {object} dto.APIResponse{data=dto.EnrollmentResponse} "Withdrawn"
// @Failure 404 {object} dto.ErrorResponse "Enrollment not found"
// @Router /enrollments/{id}/withdraw [post]
func (c *EnrollmentController) Withdraw(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Enrollment")
	if !valid {
		return
	}

	enrollment, err := c.enrollmentService.Withdraw(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewEnrollmentResponse(enrollment))
}

// ListCourseEnrollments lists the enrollments of a course
// @Summary Course roster
// @Tags enrollments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param active query bool false "Only active enrollments"
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse} "Enrollments"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/enrollments [get]
func (c *EnrollmentController) ListCourseEnrollments(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Course")
	if !valid {
		return
	}

	enrollments, err := c.enrollmentService.ListForCourse(ctx, id, ctx.Query("active") == "true")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewEnrollmentResponses(enrollments))
}
