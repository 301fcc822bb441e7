package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/auth"
)

type memDepartments struct {
	repositories.IDepartmentRepository
	byCode map[string]models.Department
	nextID int64
}

func (m *memDepartments) Create(_ context.Context, d *models.Department) error {
	if _, ok := m.byCode[d.Code]; ok {
		return apperrors.ErrDepartmentAlreadyExists
	}
	m.nextID++
	d.ID = m.nextID
	m.byCode[d.Code] = *d
	return nil
}

func (m *memDepartments) GetAll(_ context.Context) ([]models.Department, error) {
	out := make([]models.Department, 0, len(m.byCode))
	for _, d := range m.byCode {
		out = append(out, d)
	}
	return out, nil
}

type memCourses struct {
	repositories.ICourseRepository
	byCode map[string]models.Course
}

func (m *memCourses) Create(_ context.Context, c *models.Course) error {
	if _, ok := m.byCode[c.Code]; ok {
		return apperrors.ErrCourseAlreadyExists
	}
	m.byCode[c.Code] = *c
	return nil
}

type memOperators struct {
	repositories.IOperatorRepository
	created []models.Operator
	failing error
}

func (m *memOperators) Exists(_ context.Context, username, email string) (bool, error) {
	if m.failing != nil {
		return false, m.failing
	}
	for _, op := range m.created {
		if op.Username == username || op.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memOperators) Create(_ context.Context, op *models.Operator) error {
	m.created = append(m.created, *op)
	return nil
}

func newSeeder(opts Options) (*Seeder, *memDepartments, *memCourses, *memOperators) {
	depts := &memDepartments{byCode: map[string]models.Department{}}
	crs := &memCourses{byCode: map[string]models.Course{}}
	ops := &memOperators{}
	return New(depts, crs, ops, opts), depts, crs, ops
}

func TestRunCreatesAdminAndSampleData(t *testing.T) {
	s, depts, crs, ops := newSeeder(Options{
		AdminUsername: "admin",
		AdminEmail:    "admin@example.edu",
		AdminPassword: "changeme123",
		SampleData:    true,
	})

	require.NoError(t, s.Run(context.Background()))

	require.Len(t, ops.created, 1)
	assert.Equal(t, "admin", ops.created[0].Username)
	assert.True(t, ops.created[0].IsActive)
	assert.True(t, auth.CheckPassword(ops.created[0].PasswordHash, "changeme123"))

	assert.Len(t, depts.byCode, len(Departments))
	assert.Len(t, crs.byCode, len(courses))
	cs101 := crs.byCode["CS101"]
	assert.Equal(t, depts.byCode["CS"].ID, cs101.DepartmentID)
	assert.Equal(t, 3, cs101.Credits)
	assert.True(t, cs101.IsActive)
}

func TestRunIsIdempotent(t *testing.T) {
	s, depts, crs, ops := newSeeder(Options{
		AdminUsername: "admin",
		AdminEmail:    "admin@example.edu",
		AdminPassword: "changeme123",
		SampleData:    true,
	})

	require.NoError(t, s.Run(context.Background()))
	require.NoError(t, s.Run(context.Background()))

	assert.Len(t, ops.created, 1)
	assert.Len(t, depts.byCode, len(Departments))
	assert.Len(t, crs.byCode, len(courses))
}

func TestRunSkipsAdminWithoutPassword(t *testing.T) {
	s, depts, _, ops := newSeeder(Options{AdminUsername: "admin", AdminEmail: "admin@example.edu"})

	require.NoError(t, s.Run(context.Background()))

	assert.Empty(t, ops.created)
	assert.Empty(t, depts.byCode)
}

func TestRunCollectsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	s, depts, _, ops := newSeeder(Options{
		AdminUsername: "admin",
		AdminEmail:    "admin@example.edu",
		AdminPassword: "changeme123",
		SampleData:    true,
	})
	ops.failing = boom

	err := s.Run(context.Background())

	require.ErrorIs(t, err, boom)
	assert.Len(t, depts.byCode, len(Departments))
}
