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

// DepartmentService defines the interface for department-related operations
type DepartmentService interface {
	CreateDepartment(ctx context.Context, department *models.Department) error
	GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error)
	GetAllDepartments(ctx context.Context) ([]models.Department, error)
	UpdateDepartment(ctx context.Context, department *models.Department) error
	// DeleteDepartment detaches its students and removes its courses and announcements
	DeleteDepartment(ctx context.Context, id int64) error
}

type departmentServiceImpl struct {
	departmentRepo   repositories.IDepartmentRepository
	studentRepo      repositories.IStudentRepository
	announcementRepo repositories.IAnnouncementRepository
	courses          CourseService
	tx               db.Transactor
}

// NewDepartmentService creates a new department service instance
func NewDepartmentService(
	departmentRepo repositories.IDepartmentRepository,
	studentRepo repositories.IStudentRepository,
	announcementRepo repositories.IAnnouncementRepository,
	courses CourseService,
	tx db.Transactor,
) DepartmentService {
	if tx == nil {
		tx = noTx{}
	}
	return &departmentServiceImpl{
		departmentRepo:   departmentRepo,
		studentRepo:      studentRepo,
		announcementRepo: announcementRepo,
		courses:          courses,
		tx:               tx,
	}
}

func normalizeDepartment(d *models.Department) {
	d.Code = strings.ToUpper(strings.TrimSpace(d.Code))
	d.Name = strings.TrimSpace(d.Name)
	d.Head = strings.TrimSpace(d.Head)
}

// CreateDepartment creates a new department
func (s *departmentServiceImpl) CreateDepartment(ctx context.Context, department *models.Department) error {
	if department == nil {
		return fmt.Errorf("%w: department is nil", apperrors.ErrValidationFailed)
	}
	normalizeDepartment(department)
	if err := department.Validate(); err != nil {
		return err
	}

	if err := s.departmentRepo.Create(ctx, department); err != nil {
		if errors.Is(err, apperrors.ErrDepartmentAlreadyExists) {
			return apperrors.ErrDepartmentAlreadyExists
		}
		return fmt.Errorf("error creating department: %w", err)
	}
	logger.Info().Int64("departmentID", department.ID).Str("code", department.Code).Msg("Department created")
	return nil
}

// GetDepartmentByID retrieves a department by ID
func (s *departmentServiceImpl) GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error) {
	if err := validateID(id, "department"); err != nil {
		return nil, err
	}

	department, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrDepartmentNotFound) {
			return nil, apperrors.ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}
	return department, nil
}

// GetAllDepartments retrieves all departments with their student and course counts
func (s *departmentServiceImpl) GetAllDepartments(ctx context.Context) ([]models.Department, error) {
	departments, err := s.departmentRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving departments: %w", err)
	}
	return departments, nil
}

// UpdateDepartment updates an existing department
func (s *departmentServiceImpl) UpdateDepartment(ctx context.Context, department *models.Department) error {
	if department == nil {
		return fmt.Errorf("%w: department is nil", apperrors.ErrValidationFailed)
	}
	if err := validateID(department.ID, "department"); err != nil {
		return err
	}
	normalizeDepartment(department)
	if err := department.Validate(); err != nil {
		return err
	}

	if err := s.departmentRepo.Update(ctx, department); err != nil {
		if apperrors.Is(err, apperrors.ErrDepartmentNotFound, apperrors.ErrDepartmentAlreadyExists) {
			return err
		}
		return fmt.Errorf("error updating department: %w", err)
	}
	return nil
}

// DeleteDepartment nulls the department of its students, then deletes its courses
// (with their enrollments and attendance), its announcements and the department itself.
func (s *departmentServiceImpl) DeleteDepartment(ctx context.Context, id int64) error {
	if err := validateID(id, "department"); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.departmentRepo.GetByID(ctx, id); err != nil {
			return err
		}

		detached, err := s.studentRepo.ClearDepartment(ctx, id)
		if err != nil {
			return fmt.Errorf("error detaching students: %w", err)
		}

		courses, _, err := s.courses.ListCourses(ctx, models.CourseFilter{DepartmentID: &id})
		if err != nil {
			return fmt.Errorf("error listing department courses: %w", err)
		}
		for _, c := range courses {
			if err := s.courses.DeleteCourse(ctx, c.ID); err != nil {
				return fmt.Errorf("error deleting course %s: %w", c.Code, err)
			}
		}

		if _, err := s.announcementRepo.DeleteByDepartment(ctx, id); err != nil {
			return fmt.Errorf("error deleting department announcements: %w", err)
		}

		if err := s.departmentRepo.Delete(ctx, id); err != nil {
			return err
		}

		logger.Info().
			Int64("departmentID", id).
			Int64("detachedStudents", detached).
			Int("deletedCourses", len(courses)).
			Msg("Department deleted")
		return nil
	})
}
