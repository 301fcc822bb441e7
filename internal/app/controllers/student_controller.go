package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/app/services"
	"github.com/yigit/studentrecords/internal/middleware"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
)

// StudentController handles student-related operations
type StudentController struct {
	studentService    services.StudentService
	enrollmentService services.EnrollmentService
	pageSize          int
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService, enrollmentService services.EnrollmentService, pageSize int) *StudentController {
	return &StudentController{
		studentService:    studentService,
		enrollmentService: enrollmentService,
		pageSize:          pageSize,
	}
}

// studentFilter reads the list filters shared by the list and export endpoints
func studentFilter(ctx *gin.Context) (models.StudentFilter, bool) {
	departmentID, valid := queryID(ctx, "department")
	if !valid {
		return models.StudentFilter{}, false
	}
	semester, _ := strconv.Atoi(ctx.Query("semester"))
	return models.StudentFilter{
		Query:        strings.TrimSpace(ctx.Query("q")),
		DepartmentID: departmentID,
		Status:       ctx.Query("status"),
		Semester:     semester,
		Sort:         ctx.Query("sort"),
	}, true
}

// CreateStudent handles student admission
// @Summary Admit a new student
// @Description Creates a student and assigns the next student ID of the admission year and department
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.StudentRequest true "Student information"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse} "Student created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Department not found"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student := req.ToModel()
	if err := c.studentService.CreateStudent(ctx, student); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, dto.NewStudentResponse(student, today()))
}

// GetStudentByID retrieves a student by ID
// @Summary Get student by ID
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid student ID"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudentByID(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}

	student, err := c.studentService.GetStudentByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewStudentResponse(student, today()))
}

// GetStudentDetail returns the student page
// @Summary Student detail
// @Description Returns the student with enrollments, attendance summary, recent fees and fee totals
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentDetailResponse} "Student detail"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/detail [get]
func (c *StudentController) GetStudentDetail(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}

	detail, err := c.studentService.GetStudentDetail(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewStudentDetailResponse(detail, today()))
}

// ListStudents lists students
// @Summary List students
// @Description q matches first name, last name, student ID or email
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param department query int false "Department ID"
// @Param status query string false "active or inactive"
// @Param semester query int false "Current semester"
// @Param sort query string false "student_id, first_name, gpa or created_at, prefix - for descending"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.StudentResponse}} "Students retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request parameters"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	filter, valid := studentFilter(ctx)
	if !valid {
		return
	}
	filter.Page, filter.PageSize = helpers.ParsePaginationParams(ctx, c.pageSize)

	students, total, err := c.studentService.ListStudents(ctx, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	paginated(ctx, dto.NewStudentResponses(students, today()), total, filter.Page, filter.PageSize)
}

// UpdateStudent updates a student
// @Summary Update student
// @Description Updates the student profile. The student ID never changes.
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Param request body dto.StudentRequest true "Student information"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student updated successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Email already exists"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}

	var req dto.StudentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	student := req.ToModel()
	student.ID = id
	if err := c.studentService.UpdateStudent(ctx, student); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewStudentResponse(student, today()))
}

// DeleteStudent deletes a student
// @Summary Delete student
// @Description Deletes the student with their enrollments, attendance and fees
// @Tags students
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 204 "Student deleted successfully"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}

	if err := c.studentService.DeleteStudent(ctx, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// GetStudentEnrollments lists a student's enrollments
// @Summary Student enrollments
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EnrollmentResponse} "Enrollments"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/enrollments [get]
func (c *StudentController) GetStudentEnrollments(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}

	enrollments, err := c.enrollmentService.ListForStudent(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewEnrollmentResponses(enrollments))
}

// GetStudentGPA computes the GPA from completed enrollments
// @Summary Computed GPA
// @Description Credit-weighted grade point average over completed enrollments. The stored GPA is not changed.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.GPAResponse} "Computed GPA"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/gpa [get]
func (c *StudentController) GetStudentGPA(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}

	gpa, credits, err := c.enrollmentService.GPAFor(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.GPAResponse{StudentID: id, GPA: gpa, Credits: credits})
}

// RecomputeAcademicRecord stores the computed GPA and credits on the student
// @Summary Recompute GPA
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path int true "Student ID"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse} "Student updated"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /students/{id}/recompute [post]
func (c *StudentController) RecomputeAcademicRecord(ctx *gin.Context) {
	id, valid := pathID(ctx, "id", "Student")
	if !valid {
		return
	}

	student, err := c.enrollmentService.RecomputeAcademicRecord(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, dto.NewStudentResponse(student, today()))
}
