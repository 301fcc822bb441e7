package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/db"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// createAttempts bounds retries when a generated student_id collides with an existing row
const createAttempts = 3

// recentFeeCount is the number of fees shown on the student detail
const recentFeeCount = 5

// StudentService defines the interface for student-related operations
type StudentService interface {
	// CreateStudent assigns a fresh student_id and inserts the student in one transaction
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudentByID(ctx context.Context, id int64) (*models.Student, error)
	GetStudentDetail(ctx context.Context, id int64) (*models.StudentDetail, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.Student, int64, error)
	// UpdateStudent never changes student_id
	UpdateStudent(ctx context.Context, student *models.Student) error
	// DeleteStudent removes the student with its enrollments, attendance and fees
	DeleteStudent(ctx context.Context, id int64) error
}

type studentServiceImpl struct {
	studentRepo    repositories.IStudentRepository
	departmentRepo repositories.IDepartmentRepository
	enrollmentRepo repositories.IEnrollmentRepository
	attendanceRepo repositories.IAttendanceRepository
	feeRepo        repositories.IFeeRepository
	identifiers    IdentifierService
	tx             db.Transactor
	clock          Clock
}

// StudentServiceDeps groups the collaborators of the student service
type StudentServiceDeps struct {
	Students    repositories.IStudentRepository
	Departments repositories.IDepartmentRepository
	Enrollments repositories.IEnrollmentRepository
	Attendance  repositories.IAttendanceRepository
	Fees        repositories.IFeeRepository
	Identifiers IdentifierService
	Tx          db.Transactor
	Clock       Clock
}

// NewStudentService creates a new student service instance
func NewStudentService(deps StudentServiceDeps) StudentService {
	tx := deps.Tx
	if tx == nil {
		tx = noTx{}
	}
	return &studentServiceImpl{
		studentRepo:    deps.Students,
		departmentRepo: deps.Departments,
		enrollmentRepo: deps.Enrollments,
		attendanceRepo: deps.Attendance,
		feeRepo:        deps.Fees,
		identifiers:    deps.Identifiers,
		tx:             tx,
		clock:          deps.Clock,
	}
}

func normalizeStudent(st *models.Student) {
	st.FirstName = strings.TrimSpace(st.FirstName)
	st.LastName = strings.TrimSpace(st.LastName)
	st.Email = strings.ToLower(strings.TrimSpace(st.Email))
	if st.CurrentSemester == 0 {
		st.CurrentSemester = 1
	}
}

// departmentCode resolves the scope code of the student's department, "" when it has none
func (s *studentServiceImpl) departmentCode(ctx context.Context, departmentID *int64) (string, error) {
	if departmentID == nil {
		return "", nil
	}
	department, err := s.departmentRepo.GetByID(ctx, *departmentID)
	if err != nil {
		return "", err
	}
	return department.Code, nil
}

// CreateStudent creates a new student
func (s *studentServiceImpl) CreateStudent(ctx context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("%w: student is nil", apperrors.ErrValidationFailed)
	}
	today := s.clock.today()
	normalizeStudent(student)
	if student.AdmissionDate.IsZero() {
		student.AdmissionDate = today
	}
	if err := student.Validate(today); err != nil {
		return err
	}

	var err error
	for attempt := 1; attempt <= createAttempts; attempt++ {
		err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
			code, err := s.departmentCode(ctx, student.DepartmentID)
			if err != nil {
				return err
			}
			studentID, err := s.identifiers.NextStudentID(ctx, code, student.AdmissionDate.Year())
			if err != nil {
				return err
			}
			student.StudentID = studentID
			return s.studentRepo.Create(ctx, student)
		})
		if !errors.Is(err, apperrors.ErrStudentIDAlreadyExists) {
			break
		}
		logger.Warn().Int("attempt", attempt).Str("studentID", student.StudentID).Msg("Generated student ID already taken, retrying")
	}
	if err != nil {
		student.StudentID = ""
		return err
	}

	logger.Info().Int64("id", student.ID).Str("studentID", student.StudentID).Msg("Student created")
	return nil
}

// GetStudentByID retrieves a student by ID
func (s *studentServiceImpl) GetStudentByID(ctx context.Context, id int64) (*models.Student, error) {
	if err := validateID(id, "student"); err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrStudentNotFound) {
			return nil, apperrors.ErrStudentNotFound
		}
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return student, nil
}

// GetStudentDetail gathers the student's enrollments, attendance counts and fees
func (s *studentServiceImpl) GetStudentDetail(ctx context.Context, id int64) (*models.StudentDetail, error) {
	student, err := s.GetStudentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	today := s.clock.today()

	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error retrieving enrollments: %w", err)
	}

	counts, err := s.attendanceRepo.CountByStatus(ctx, id, nil)
	if err != nil {
		return nil, fmt.Errorf("error retrieving attendance: %w", err)
	}
	var summary models.AttendanceSummary
	for _, status := range models.AttendanceStatuses {
		summary.Add(status, counts[status])
	}

	recent, err := s.feeRepo.RecentByStudent(ctx, id, recentFeeCount)
	if err != nil {
		return nil, fmt.Errorf("error retrieving fees: %w", err)
	}
	fees, _, err := s.feeRepo.List(ctx, models.FeeFilter{StudentID: &id}, today)
	if err != nil {
		return nil, fmt.Errorf("error retrieving fees: %w", err)
	}

	return &models.StudentDetail{
		Student:     *student,
		Age:         student.AgeOn(today),
		Enrollments: enrollments,
		Attendance:  summary,
		RecentFees:  recent,
		FeeSummary:  models.SummarizeFees(fees, today),
	}, nil
}

// ListStudents lists students matching filter
func (s *studentServiceImpl) ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.Student, int64, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	students, total, err := s.studentRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing students: %w", err)
	}
	return students, total, nil
}

// UpdateStudent updates the editable fields of a student
func (s *studentServiceImpl) UpdateStudent(ctx context.Context, student *models.Student) error {
	if student == nil {
		return fmt.Errorf("%w: student is nil", apperrors.ErrValidationFailed)
	}
	existing, err := s.GetStudentByID(ctx, student.ID)
	if err != nil {
		return err
	}
	normalizeStudent(student)
	student.StudentID = existing.StudentID
	if student.AdmissionDate.IsZero() {
		student.AdmissionDate = existing.AdmissionDate
	}
	if err := student.Validate(s.clock.today()); err != nil {
		return err
	}
	if student.DepartmentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, *student.DepartmentID); err != nil {
			return err
		}
	}

	if err := s.studentRepo.Update(ctx, student); err != nil {
		if apperrors.Is(err, apperrors.ErrStudentNotFound, apperrors.ErrDuplicateKey, apperrors.ErrValidationFailed, apperrors.ErrDepartmentNotFound) {
			return err
		}
		return fmt.Errorf("error updating student: %w", err)
	}
	return nil
}

// DeleteStudent deletes a student and everything attached to it in one transaction
func (s *studentServiceImpl) DeleteStudent(ctx context.Context, id int64) error {
	if err := validateID(id, "student"); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		enrollments, err := s.enrollmentRepo.DeleteByStudent(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting student enrollments: %w", err)
		}
		attendance, err := s.attendanceRepo.DeleteByStudent(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting student attendance: %w", err)
		}
		fees, err := s.feeRepo.DeleteByStudent(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting student fees: %w", err)
		}
		if err := s.studentRepo.Delete(ctx, id); err != nil {
			return err
		}

		logger.Info().
			Int64("id", id).
			Int64("enrollments", enrollments).
			Int64("attendance", attendance).
			Int64("fees", fees).
			Msg("Student deleted")
		return nil
	})
}
