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

// CourseService defines the interface for course-related operations
type CourseService interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	// ListCourses returns one page of courses and the total match count. PageSize <= 0 returns all.
	ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, int64, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	// DeleteCourse removes the course with its enrollments and attendance
	DeleteCourse(ctx context.Context, id int64) error
	GradeDistribution(ctx context.Context, courseID int64) ([]models.GradeCount, error)
}

type courseServiceImpl struct {
	courseRepo     repositories.ICourseRepository
	departmentRepo repositories.IDepartmentRepository
	enrollmentRepo repositories.IEnrollmentRepository
	attendanceRepo repositories.IAttendanceRepository
	tx             db.Transactor
}

// NewCourseService creates a new course service instance
func NewCourseService(
	courseRepo repositories.ICourseRepository,
	departmentRepo repositories.IDepartmentRepository,
	enrollmentRepo repositories.IEnrollmentRepository,
	attendanceRepo repositories.IAttendanceRepository,
	tx db.Transactor,
) CourseService {
	if tx == nil {
		tx = noTx{}
	}
	return &courseServiceImpl{
		courseRepo:     courseRepo,
		departmentRepo: departmentRepo,
		enrollmentRepo: enrollmentRepo,
		attendanceRepo: attendanceRepo,
		tx:             tx,
	}
}

func (s *courseServiceImpl) validateCourse(ctx context.Context, course *models.Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", apperrors.ErrValidationFailed)
	}
	course.Code = strings.ToUpper(strings.TrimSpace(course.Code))
	course.Name = strings.TrimSpace(course.Name)
	course.ApplyDefaults()
	if err := course.Validate(); err != nil {
		return err
	}
	if _, err := s.departmentRepo.GetByID(ctx, course.DepartmentID); err != nil {
		return err
	}
	return nil
}

// CreateCourse creates a new course
func (s *courseServiceImpl) CreateCourse(ctx context.Context, course *models.Course) error {
	if err := s.validateCourse(ctx, course); err != nil {
		return err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		if apperrors.Is(err, apperrors.ErrCourseAlreadyExists, apperrors.ErrValidationFailed, apperrors.ErrDepartmentNotFound) {
			return err
		}
		return fmt.Errorf("error creating course: %w", err)
	}
	logger.Info().Int64("courseID", course.ID).Str("code", course.Code).Msg("Course created")
	return nil
}

// GetCourseByID retrieves a course with its enrolled count
func (s *courseServiceImpl) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	if err := validateID(id, "course"); err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrCourseNotFound) {
			return nil, apperrors.ErrCourseNotFound
		}
		return nil, fmt.Errorf("error retrieving course: %w", err)
	}
	return course, nil
}

// ListCourses lists courses ordered by code
func (s *courseServiceImpl) ListCourses(ctx context.Context, filter models.CourseFilter) ([]models.Course, int64, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	courses, total, err := s.courseRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing courses: %w", err)
	}
	return courses, total, nil
}

// UpdateCourse updates an existing course
func (s *courseServiceImpl) UpdateCourse(ctx context.Context, course *models.Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", apperrors.ErrValidationFailed)
	}
	if err := validateID(course.ID, "course"); err != nil {
		return err
	}
	if err := s.validateCourse(ctx, course); err != nil {
		return err
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		if apperrors.Is(err, apperrors.ErrCourseNotFound, apperrors.ErrCourseAlreadyExists, apperrors.ErrValidationFailed, apperrors.ErrDepartmentNotFound) {
			return err
		}
		return fmt.Errorf("error updating course: %w", err)
	}
	return nil
}

// DeleteCourse deletes a course, its enrollments and its attendance in one transaction
func (s *courseServiceImpl) DeleteCourse(ctx context.Context, id int64) error {
	if err := validateID(id, "course"); err != nil {
		return err
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		enrollments, err := s.enrollmentRepo.DeleteByCourse(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting course enrollments: %w", err)
		}
		attendance, err := s.attendanceRepo.DeleteByCourse(ctx, id)
		if err != nil {
			return fmt.Errorf("error deleting course attendance: %w", err)
		}
		if err := s.courseRepo.Delete(ctx, id); err != nil {
			return err
		}

		logger.Info().
			Int64("courseID", id).
			Int64("enrollments", enrollments).
			Int64("attendance", attendance).
			Msg("Course deleted")
		return nil
	})
}

// GradeDistribution counts graded enrollments of a course by grade
func (s *courseServiceImpl) GradeDistribution(ctx context.Context, courseID int64) ([]models.GradeCount, error) {
	if _, err := s.GetCourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	counts, err := s.courseRepo.GradeDistribution(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("error retrieving grade distribution: %w", err)
	}
	return counts, nil
}
