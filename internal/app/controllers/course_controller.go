package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
)

// CourseController handles course-related operations
type CourseController struct {
	courseService services.CourseService
}

// NewCourseController creates a new CourseController
func NewCourseController(courseService services.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

// CreateCourse handles course creation
// @Summary Create a new course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CourseRequest true "Course information"
// @Success 201 {object} dto.APIResponse{data=dto.CourseResponse} "Course created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /courses [post]
func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course := req.ToModel()
	if err := c.courseService.CreateCourse(ctx, course); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewCourseResponse(course))
}

// GetCourseByID retrieves a course by ID
// @Summary Get course by ID
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (c *CourseController) GetCourseByID(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Course")
	if !valid {
		return
	}

	course, err := c.courseService.GetCourseByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewCourseResponse(course))
}

// ListCourses lists courses
// @Summary List courses
// @Description Lists courses ordered by code. q matches name, code or instructor.
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param department query int false "Department ID"
// @Param active query bool false "Only active courses"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.CourseResponse}} "Courses retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Router /courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	departmentID, valid := queryID(ctx, "department")
	if !valid {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx, helpers.DefaultPageSize)

	filter := models.CourseFilter{
		Query:        strings.TrimSpace(ctx.Query("q")),
		DepartmentID: departmentID,
		ActiveOnly:   ctx.Query("active") == "true",
		Page:         page,
		PageSize:     size,
	}
	courses, total, err := c.courseService.ListCourses(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	paginated(ctx, dto.NewCourseResponses(courses), total, page, size)
}

// UpdateCourse updates a course
// @Summary Update course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Param request body dto.CourseRequest true "Course information"
// @Success 200 {object} dto.APIResponse{data=dto.CourseResponse} "Course updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Course or department not found"
// @Failure 409 {object} dto.ErrorResponse "Course code already exists"
// @Router /courses/{id} [put]
func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Course")
	if !valid {
		return
	}

	var req dto.CourseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	course := req.ToModel()
	course.ID = id
	if err := c.courseService.UpdateCourse(ctx, course); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewCourseResponse(course))
}

// DeleteCourse deletes a course
// @Summary Delete course
// @Description Deletes the course together with its enrollments and attendance
// @Tags courses
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 204 "Course deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Course")
	if !valid {
		return
	}

	if err := c.courseService.DeleteCourse(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GradeDistribution counts the grades awarded in a course
// @Summary Course grade distribution
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 200 {object} dto.APIResponse{data=[]models.GradeCount} "Grade distribution"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/grades [get]
func (c *CourseController) GradeDistribution(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Course")
	if !valid {
		return
	}

	counts, err := c.courseService.GradeDistribution(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, counts)
}
