package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/studentrecords/internal/app/controllers"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/middleware"
)

// Controllers groups the handlers mounted by SetupRouter
type Controllers struct {
	Auth         *controllers.AuthController
	Department   *controllers.DepartmentController
	Course       *controllers.CourseController
	Student      *controllers.StudentController
	Enrollment   *controllers.EnrollmentController
	Attendance   *controllers.AttendanceController
	Fee          *controllers.FeeController
	Announcement *controllers.AnnouncementController
	Report       *controllers.ReportController
	Export       *controllers.ExportController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", c.Auth.Signup)
		auth.POST("/login", c.Auth.Login)
	}

	v1.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, dto.APIResponse{
			Success:   true,
			Data:      gin.H{"status": "ok"},
			Timestamp: time.Now(),
		})
	})

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	departments := authenticated.Group("/departments")
	{
		departments.GET("", c.Department.GetAllDepartments)
		departments.POST("", c.Department.CreateDepartment)
		departments.GET("/:id", c.Department.GetDepartmentByID)
		departments.PUT("/:id", c.Department.UpdateDepartment)
		departments.DELETE("/:id", c.Department.DeleteDepartment)
	}

	courses := authenticated.Group("/courses")
	{
		courses.GET("", c.Course.ListCourses)
		courses.POST("", c.Course.CreateCourse)
		courses.GET("/:id", c.Course.GetCourseByID)
		courses.PUT("/:id", c.Course.UpdateCourse)
		courses.DELETE("/:id", c.Course.DeleteCourse)
		courses.GET("/:id/grades", c.Course.GradeDistribution)
		courses.GET("/:id/enrollments", c.Enrollment.ListCourseEnrollments)
	}

	students := authenticated.Group("/students")
	{
		students.GET("", c.Student.ListStudents)
		students.POST("", c.Student.CreateStudent)
		students.GET("/:id", c.Student.GetStudentByID)
		students.PUT("/:id", c.Student.UpdateStudent)
		students.DELETE("/:id", c.Student.DeleteStudent)
		students.GET("/:id/detail", c.Student.GetStudentDetail)
		students.GET("/:id/enrollments", c.Student.GetStudentEnrollments)
		students.GET("/:id/gpa", c.Student.GetStudentGPA)
		students.POST("/:id/recompute", c.Student.RecomputeAcademicRecord)
		students.GET("/:id/attendance", c.Attendance.AttendanceRatio)
		students.GET("/:id/fees/summary", c.Fee.StudentFeeSummary)
	}

	enrollments := authenticated.Group("/enrollments")
	{
		enrollments.POST("", c.Enrollment.Enroll)
		enrollments.GET("/:id", c.Enrollment.GetEnrollment)
		enrollments.PATCH("/:id", c.Enrollment.UpdateEnrollment)
		enrollments.PUT("/:id/grade", c.Enrollment.RecordGrade)
		enrollments.POST("/:id/withdraw", c.Enrollment.Withdraw)
	}

	attendance := authenticated.Group("/attendance")
	{
		attendance.GET("", c.Attendance.ListAttendance)
		attendance.POST("", c.Attendance.RecordAttendance)
		attendance.POST("/bulk", c.Attendance.BulkRecordAttendance)
		attendance.GET("/sheet", c.Attendance.AttendanceSheet)
	}

	fees := authenticated.Group("/fees")
	{
		fees.GET("", c.Fee.ListFees)
		fees.POST("", c.Fee.CreateFee)
		fees.GET("/summary", c.Fee.FeeSummary)
		fees.GET("/:id", c.Fee.GetFee)
		fees.PUT("/:id", c.Fee.UpdateFee)
		fees.DELETE("/:id", c.Fee.DeleteFee)
		fees.GET("/:id/balance", c.Fee.FeeBalance)
		fees.POST("/:id/payments", c.Fee.RecordPayment)
		fees.POST("/:id/waive", c.Fee.WaiveFee)
	}

	announcements := authenticated.Group("/announcements")
	{
		announcements.GET("", c.Announcement.ListAnnouncements)
		announcements.POST("", c.Announcement.CreateAnnouncement)
		announcements.GET("/:id", c.Announcement.GetAnnouncement)
		announcements.PUT("/:id", c.Announcement.UpdateAnnouncement)
		announcements.DELETE("/:id", c.Announcement.DeleteAnnouncement)
	}

	authenticated.GET("/dashboard", c.Report.Dashboard)
	authenticated.GET("/reports/gpa-distribution", c.Report.GPADistribution)

	export := authenticated.Group("/export")
	{
		export.GET("/students", c.Export.ExportStudents)
		export.GET("/attendance", c.Export.ExportAttendance)
	}

	// Chart endpoints polled by the dashboard, answered as bare JSON
	charts := router.Group("/api")
	charts.Use(authMiddleware.JWTAuth())
	{
		charts.GET("/dashboard-stats", c.Report.DashboardStats)
		charts.GET("/attendance-chart", c.Report.AttendanceChart)
	}
}
