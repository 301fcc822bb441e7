package repositories

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/db"
)

// IDepartmentRepository defines department persistence
type IDepartmentRepository interface {
	Create(ctx context.Context, department *models.Department) error
	GetByID(ctx context.Context, id int64) (*models.Department, error)
	GetAll(ctx context.Context) ([]models.Department, error)
	Update(ctx context.Context, department *models.Department) error
	Delete(ctx context.Context, id int64) error
}

// ICourseRepository defines course persistence
type ICourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id int64) (*models.Course, error)
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int64, error)
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id int64) error
	GradeDistribution(ctx context.Context, courseID int64) ([]models.GradeCount, error)
}

// IStudentRepository defines student persistence
type IStudentRepository interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int64, error)
	Update(ctx context.Context, student *models.Student) error
	UpdateAcademicRecord(ctx context.Context, id int64, gpa float64, totalCredits int) error
	Delete(ctx context.Context, id int64) error
	ClearDepartment(ctx context.Context, departmentID int64) (int64, error)
	// LastStudentID returns the highest student_id starting with prefix, or "" when there is none
	LastStudentID(ctx context.Context, prefix string) (string, error)
}

// ISequenceRepository defines the scoped student id counters
type ISequenceRepository interface {
	// Advance increments the (year, scope) counter and returns the new value,
	// never less than seed+1. A missing counter starts at seed+1.
	Advance(ctx context.Context, year int, scope string, seed int) (int, error)
}

// IEnrollmentRepository defines enrollment persistence
type IEnrollmentRepository interface {
	Create(ctx context.Context, enrollment *models.Enrollment) error
	GetByID(ctx context.Context, id int64) (*models.Enrollment, error)
	Update(ctx context.Context, enrollment *models.Enrollment) error
	ListByStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, courseID int64, activeOnly bool) ([]models.Enrollment, error)
	IsActivelyEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
	DeleteByStudent(ctx context.Context, studentID int64) (int64, error)
	DeleteByCourse(ctx context.Context, courseID int64) (int64, error)
}

// IAttendanceRepository defines attendance persistence
type IAttendanceRepository interface {
	// Upsert inserts or overwrites the (student, course, date) record and reports whether it was new
	Upsert(ctx context.Context, attendance *models.Attendance) (bool, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, error)
	CountByStatus(ctx context.Context, studentID int64, courseID *int64) (map[models.AttendanceStatus]int64, error)
	Chart(ctx context.Context, courseID *int64, from, to time.Time) ([]models.ChartPoint, error)
	DeleteByStudent(ctx context.Context, studentID int64) (int64, error)
	DeleteByCourse(ctx context.Context, courseID int64) (int64, error)
}

// IFeeRepository defines fee persistence
type IFeeRepository interface {
	Create(ctx context.Context, fee *models.Fee) error
	GetByID(ctx context.Context, id int64) (*models.Fee, error)
	// LockByID reads a fee and locks its row until the surrounding transaction ends
	LockByID(ctx context.Context, id int64) (*models.Fee, error)
	// List applies filter.Status as an effective status as of today. PageSize <= 0 returns every match.
	List(ctx context.Context, filter models.FeeFilter, today time.Time) ([]models.Fee, int64, error)
	Update(ctx context.Context, fee *models.Fee) error
	Delete(ctx context.Context, id int64) error
	RecentByStudent(ctx context.Context, studentID int64, limit uint64) ([]models.Fee, error)
	DeleteByStudent(ctx context.Context, studentID int64) (int64, error)
}

// IAnnouncementRepository defines announcement persistence
type IAnnouncementRepository interface {
	Create(ctx context.Context, announcement *models.Announcement) error
	GetByID(ctx context.Context, id int64) (*models.Announcement, error)
	// List orders by priority then recency. liveAt, when set, keeps only active unexpired rows.
	List(ctx context.Context, liveAt *time.Time, limit uint64) ([]models.Announcement, error)
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id int64) error
	DeleteByDepartment(ctx context.Context, departmentID int64) (int64, error)
}

// IOperatorRepository defines operator account persistence
type IOperatorRepository interface {
	Create(ctx context.Context, operator *models.Operator) error
	GetByID(ctx context.Context, id int64) (*models.Operator, error)
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

// IReportRepository defines the read-only dashboard queries
type IReportRepository interface {
	Stats(ctx context.Context) (models.DashboardStats, error)
	DepartmentDistribution(ctx context.Context) ([]models.DepartmentCount, error)
	MonthlyAdmissions(ctx context.Context, since time.Time) ([]models.MonthlyCount, error)
	StudentGPAs(ctx context.Context) ([]float64, error)
	AttendanceOn(ctx context.Context, date time.Time) (models.TodayAttendance, error)
	PendingFees(ctx context.Context) (models.PendingFees, error)
	RecentStudents(ctx context.Context, limit uint64) ([]models.Student, error)
}

// baseRepository carries the pool and the statement builder shared by every repository
type baseRepository struct {
	db *pgxpool.Pool
	// Use squirrel instance with placeholder format
	sb squirrel.StatementBuilderType
}

func newBaseRepository(pool *pgxpool.Pool) baseRepository {
	return baseRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// conn returns the transaction carried by ctx, or the pool
func (r *baseRepository) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.db)
}

// Repositories holds all the repository instances
type Repositories struct {
	DepartmentRepository   *DepartmentRepository
	CourseRepository       *CourseRepository
	StudentRepository      *StudentRepository
	SequenceRepository     *SequenceRepository
	EnrollmentRepository   *EnrollmentRepository
	AttendanceRepository   *AttendanceRepository
	FeeRepository          *FeeRepository
	AnnouncementRepository *AnnouncementRepository
	OperatorRepository     *OperatorRepository
	ReportRepository       *ReportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		DepartmentRepository:   NewDepartmentRepository(pool),
		CourseRepository:       NewCourseRepository(pool),
		StudentRepository:      NewStudentRepository(pool),
		SequenceRepository:     NewSequenceRepository(pool),
		EnrollmentRepository:   NewEnrollmentRepository(pool),
		AttendanceRepository:   NewAttendanceRepository(pool),
		FeeRepository:          NewFeeRepository(pool),
		AnnouncementRepository: NewAnnouncementRepository(pool),
		OperatorRepository:     NewOperatorRepository(pool),
		ReportRepository:       NewReportRepository(pool),
	}
}
