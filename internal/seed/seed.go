// Package seed creates the default operator and reference data on startup.
package seed

import (
	"context"
	"errors"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/auth"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// Options controls what Run creates
type Options struct {
	AdminUsername string
	AdminEmail    string
	// AdminPassword empty skips the admin account
	AdminPassword string
	SampleData    bool
}

// Departments are the sample departments
var Departments = []models.Department{
	{Code: "CS", Name: "Computer Science", Head: "Dr. John Smith", Description: "Department of Computer Science and Engineering"},
	{Code: "EE", Name: "Electrical Engineering", Head: "Dr. Sarah Johnson", Description: "Department of Electrical and Electronics Engineering"},
	{Code: "ME", Name: "Mechanical Engineering", Head: "Dr. Michael Brown", Description: "Department of Mechanical Engineering"},
	{Code: "CE", Name: "Civil Engineering", Head: "Dr. Emily Davis", Description: "Department of Civil Engineering"},
	{Code: "BA", Name: "Business Administration", Head: "Dr. Robert Wilson", Description: "School of Business Administration"},
}

type sampleCourse struct {
	code, name, department, instructor string
	credits, semester                  int
}

var courses = []sampleCourse{
	{"CS101", "Introduction to Programming", "CS", "Prof. Alan Turing", 3, 1},
	{"CS201", "Data Structures", "CS", "Prof. Ada Lovelace", 4, 2},
	{"CS301", "Database Systems", "CS", "Prof. Edgar Codd", 3, 3},
	{"CS401", "Machine Learning", "CS", "Prof. Andrew Ng", 4, 5},
	{"EE101", "Circuit Analysis", "EE", "Prof. Nikola Tesla", 4, 1},
	{"EE201", "Digital Electronics", "EE", "Prof. Claude Shannon", 3, 2},
	{"ME101", "Engineering Mechanics", "ME", "Prof. Isaac Newton", 4, 1},
	{"BA101", "Principles of Management", "BA", "Prof. Peter Drucker", 3, 1},
}

// Seeder creates default data. Every step tolerates rows that already exist.
type Seeder struct {
	departments repositories.IDepartmentRepository
	courses     repositories.ICourseRepository
	operators   repositories.IOperatorRepository
	opts        Options
}

// New creates a Seeder
func New(departments repositories.IDepartmentRepository, courses repositories.ICourseRepository, operators repositories.IOperatorRepository, opts Options) *Seeder {
	return &Seeder{departments: departments, courses: courses, operators: operators, opts: opts}
}

// Run creates whatever default data is missing. Failures are collected, not fatal.
func (s *Seeder) Run(ctx context.Context) error {
	logger.Info().Msg("Checking/Creating default data...")
	var finalErr error

	if err := s.admin(ctx); err != nil {
		logger.Error().Err(err).Msg("Error creating admin operator")
		finalErr = errors.Join(finalErr, err)
	}

	if s.opts.SampleData {
		if err := s.sampleData(ctx); err != nil {
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}

func (s *Seeder) admin(ctx context.Context) error {
	if s.opts.AdminPassword == "" {
		logger.Warn().Msg("No admin password configured, skipping admin operator")
		return nil
	}
	exists, err := s.operators.Exists(ctx, s.opts.AdminUsername, s.opts.AdminEmail)
	if err != nil || exists {
		return err
	}

	hash, err := auth.HashPassword(s.opts.AdminPassword)
	if err != nil {
		return err
	}
	err = s.operators.Create(ctx, &models.Operator{
		Username:     s.opts.AdminUsername,
		Email:        s.opts.AdminEmail,
		PasswordHash: hash,
		FullName:     "Administrator",
		IsActive:     true,
	})
	if errors.Is(err, apperrors.ErrOperatorAlreadyExists) {
		return nil
	}
	if err == nil {
		logger.Info().Str("username", s.opts.AdminUsername).Msg("Admin operator created")
	}
	return err
}

func (s *Seeder) sampleData(ctx context.Context) error {
	var finalErr error

	for i := range Departments {
		dept := Departments[i]
		err := s.departments.Create(ctx, &dept)
		if err != nil && !errors.Is(err, apperrors.ErrDepartmentAlreadyExists) {
			logger.Error().Err(err).Str("code", dept.Code).Msg("Error creating department")
			finalErr = errors.Join(finalErr, err)
		}
	}

	existing, err := s.departments.GetAll(ctx)
	if err != nil {
		return errors.Join(finalErr, err)
	}
	deptIDs := make(map[string]int64, len(existing))
	for _, d := range existing {
		deptIDs[d.Code] = d.ID
	}

	for _, c := range courses {
		deptID, ok := deptIDs[c.department]
		if !ok {
			continue
		}
		course := &models.Course{
			Code:         c.code,
			Name:         c.name,
			DepartmentID: deptID,
			Credits:      c.credits,
			Semester:     c.semester,
			Instructor:   c.instructor,
			IsActive:     true,
		}
		course.ApplyDefaults()
		err := s.courses.Create(ctx, course)
		if err != nil && !errors.Is(err, apperrors.ErrCourseAlreadyExists) {
			logger.Error().Err(err).Str("code", c.code).Msg("Error creating course")
			finalErr = errors.Join(finalErr, err)
		}
	}
	return finalErr
}
