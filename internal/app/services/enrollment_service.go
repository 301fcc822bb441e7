package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// EnrollmentService defines enrollment, grading and GPA operations
type EnrollmentService interface {
	// Enroll rejects inactive students or courses and a second enrollment of the same pair
	Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error)
	GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error)
	// RecordGrade validates marks against the course bounds and sets completed
	RecordGrade(ctx context.Context, enrollmentID int64, grade models.Grade, internal, external *float64) (*models.Enrollment, error)
	UpdateEnrollment(ctx context.Context, enrollmentID int64, changes models.EnrollmentChanges) (*models.Enrollment, error)
	Withdraw(ctx context.Context, enrollmentID int64) (*models.Enrollment, error)
	ListForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error)
	ListForCourse(ctx context.Context, courseID int64, activeOnly bool) ([]models.Enrollment, error)
	// GPAFor is the credit-weighted grade point mean over completed enrollments
	GPAFor(ctx context.Context, studentID int64) (float64, int, error)
	// RecomputeAcademicRecord stores GPAFor on the student as gpa and total_credits
	RecomputeAcademicRecord(ctx context.Context, studentID int64) (*models.Student, error)
}

type enrollmentServiceImpl struct {
	enrollmentRepo repositories.IEnrollmentRepository
	studentRepo    repositories.IStudentRepository
	courseRepo     repositories.ICourseRepository
	clock          Clock
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(
	enrollmentRepo repositories.IEnrollmentRepository,
	studentRepo repositories.IStudentRepository,
	courseRepo repositories.ICourseRepository,
	clock Clock,
) EnrollmentService {
	return &enrollmentServiceImpl{
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
		courseRepo:     courseRepo,
		clock:          clock,
	}
}

// Enroll creates an active enrollment dated today
func (s *enrollmentServiceImpl) Enroll(ctx context.Context, studentID, courseID int64) (*models.Enrollment, error) {
	if err := validateID(studentID, "student"); err != nil {
		return nil, err
	}
	if err := validateID(courseID, "course"); err != nil {
		return nil, err
	}

	student, err := s.studentRepo.GetByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsActive {
		return nil, apperrors.ErrStudentInactive
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.IsActive {
		return nil, apperrors.ErrCourseInactive
	}

	enrollment := &models.Enrollment{
		StudentID:      studentID,
		CourseID:       courseID,
		EnrollmentDate: s.clock.today(),
		IsActive:       true,
	}
	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEnrollment) {
			return nil, apperrors.ErrDuplicateEnrollment
		}
		return nil, fmt.Errorf("error creating enrollment: %w", err)
	}
	enrollment.Student = student
	enrollment.Course = course

	logger.Info().
		Int64("enrollmentID", enrollment.ID).
		Str("studentID", student.StudentID).
		Str("course", course.Code).
		Msg("Student enrolled")
	return enrollment, nil
}

// GetEnrollment retrieves an enrollment by ID
func (s *enrollmentServiceImpl) GetEnrollment(ctx context.Context, id int64) (*models.Enrollment, error) {
	if err := validateID(id, "enrollment"); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.GetByID(ctx, id)
}

func (s *enrollmentServiceImpl) applyGrade(ctx context.Context, e *models.Enrollment, grade models.Grade, internal, external *float64) error {
	course, err := s.courseRepo.GetByID(ctx, e.CourseID)
	if err != nil {
		return err
	}
	if err := models.ValidateMarks(course, grade, internal, external); err != nil {
		return err
	}
	e.ApplyGrade(grade, internal, external)
	e.Course = course
	return nil
}

// RecordGrade records a grade with optional internal and external marks
func (s *enrollmentServiceImpl) RecordGrade(ctx context.Context, enrollmentID int64, grade models.Grade, internal, external *float64) (*models.Enrollment, error) {
	e, err := s.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := s.applyGrade(ctx, e, grade, internal, external); err != nil {
		return nil, err
	}
	if err := s.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	logger.Info().Int64("enrollmentID", e.ID).Str("grade", string(grade)).Bool("completed", e.Completed).Msg("Grade recorded")
	return e, nil
}

// UpdateEnrollment replaces grade and marks and applies the active flag when given
func (s *enrollmentServiceImpl) UpdateEnrollment(ctx context.Context, enrollmentID int64, changes models.EnrollmentChanges) (*models.Enrollment, error) {
	e, err := s.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if err := s.applyGrade(ctx, e, changes.Grade, changes.InternalMarks, changes.ExternalMarks); err != nil {
		return nil, err
	}
	if changes.IsActive != nil {
		e.IsActive = *changes.IsActive
	}
	if err := s.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// Withdraw deactivates an enrollment, keeping its grade history
func (s *enrollmentServiceImpl) Withdraw(ctx context.Context, enrollmentID int64) (*models.Enrollment, error) {
	e, err := s.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	e.IsActive = false
	if err := s.enrollmentRepo.Update(ctx, e); err != nil {
		return nil, err
	}
	logger.Info().Int64("enrollmentID", e.ID).Msg("Enrollment withdrawn")
	return e, nil
}

// ListForStudent lists a student's enrollments with their courses
func (s *enrollmentServiceImpl) ListForStudent(ctx context.Context, studentID int64) ([]models.Enrollment, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}

// ListForCourse lists a course's enrollments with their students
func (s *enrollmentServiceImpl) ListForCourse(ctx context.Context, courseID int64, activeOnly bool) ([]models.Enrollment, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.enrollmentRepo.ListByCourse(ctx, courseID, activeOnly)
}

// GPAFor computes the GPA and credits of a student's completed enrollments
func (s *enrollmentServiceImpl) GPAFor(ctx context.Context, studentID int64) (float64, int, error) {
	enrollments, err := s.ListForStudent(ctx, studentID)
	if err != nil {
		return 0, 0, err
	}

	entries := make([]models.GradedCredit, 0, len(enrollments))
	for _, e := range enrollments {
		if !e.Completed || e.Course == nil {
			continue
		}
		entries = append(entries, models.GradedCredit{Grade: e.Grade, Credits: e.Course.Credits})
	}
	gpa, credits := models.WeightedGPA(entries)
	return gpa, credits, nil
}

// RecomputeAcademicRecord persists the computed GPA and credits on the student
func (s *enrollmentServiceImpl) RecomputeAcademicRecord(ctx context.Context, studentID int64) (*models.Student, error) {
	gpa, credits, err := s.GPAFor(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := s.studentRepo.UpdateAcademicRecord(ctx, studentID, gpa, credits); err != nil {
		return nil, err
	}

	logger.Info().Int64("id", studentID).Float64("gpa", gpa).Int("credits", credits).Msg("Academic record recomputed")
	return s.studentRepo.GetByID(ctx, studentID)
}
