package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

func TestFormatStudentID(t *testing.T) {
	assert.Equal(t, "2025CS", StudentIDPrefix(2025, "cs"))
	assert.Equal(t, "2025CS007", FormatStudentID("2025CS", 7))
	assert.Equal(t, "2025CS1234", FormatStudentID("2025CS", 1234))
}

func TestSuffixSeed(t *testing.T) {
	assert.Equal(t, 0, suffixSeed("2025CS", ""))
	assert.Equal(t, 41, suffixSeed("2025CS", "2025CS041"))
	assert.Equal(t, 0, suffixSeed("2025CS", "2025CSX1"))
	assert.Equal(t, 0, suffixSeed("2025CS", "2024CS009"))
}

func TestNextStudentIDSequential(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.identifierSvc.NextStudentID(ctx, "cs", 2025)
	require.NoError(t, err)
	second, err := f.identifierSvc.NextStudentID(ctx, "CS", 2025)
	require.NoError(t, err)
	other, err := f.identifierSvc.NextStudentID(ctx, "EE", 2025)
	require.NoError(t, err)
	nextYear, err := f.identifierSvc.NextStudentID(ctx, "CS", 2026)
	require.NoError(t, err)

	assert.Equal(t, "2025CS001", first)
	assert.Equal(t, "2025CS002", second)
	assert.Equal(t, "2025EE001", other)
	assert.Equal(t, "2026CS001", nextYear)
}

func TestNextStudentIDFallbackScope(t *testing.T) {
	f := newFixture()
	id, err := f.identifierSvc.NextStudentID(context.Background(), "  ", 2025)
	require.NoError(t, err)
	assert.Equal(t, "2025GEN001", id)

	_, err = f.identifierSvc.NextStudentID(context.Background(), "CS", 0)
	assert.Error(t, err)
}

func TestNextStudentIDContinuesFromExisting(t *testing.T) {
	f := newFixture()
	f.students.put(models.Student{StudentID: "2025CS041", Email: "old@example.edu"})

	id, err := f.identifierSvc.NextStudentID(context.Background(), "CS", 2025)
	require.NoError(t, err)
	assert.Equal(t, "2025CS042", id)
}

func TestNextStudentIDMalformedSuffix(t *testing.T) {
	f := newFixture()
	f.students.put(models.Student{StudentID: "2025CSXYZ", Email: "odd@example.edu"})

	id, err := f.identifierSvc.NextStudentID(context.Background(), "CS", 2025)
	require.NoError(t, err)
	assert.Equal(t, "2025CS001", id)
}

func TestNextStudentIDConcurrent(t *testing.T) {
	f := newFixture()
	const n = 50

	var wg sync.WaitGroup
	ids := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i], errs[i] = f.identifierSvc.NextStudentID(context.Background(), "ME", 2025)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := range ids {
		require.NoError(t, errs[i])
		assert.False(t, seen[ids[i]], "duplicate %s", ids[i])
		seen[ids[i]] = true
	}
	assert.Len(t, seen, n)
	assert.True(t, seen["2025ME001"])
	assert.True(t, seen["2025ME050"])
}

func TestNextStudentIDPrefixSharingDepartments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cs := &models.Department{Code: "CS", Name: "Computer Science"}
	cse := &models.Department{Code: "CSE", Name: "Computer Science and Engineering"}
	require.NoError(t, f.departmentSvc.CreateDepartment(ctx, cse))
	require.NoError(t, f.departmentSvc.CreateDepartment(ctx, cs))

	firstCSE := f.student(&cse.ID, "Edsger", "Dijkstra")
	firstCS := f.student(&cs.ID, "Barbara", "Liskov")
	secondCSE := f.student(&cse.ID, "Tony", "Hoare")

	assert.Equal(t, "2025CSE001", firstCSE.StudentID)
	assert.Equal(t, "2025CS001", firstCS.StudentID)
	assert.Equal(t, "2025CSE002", secondCSE.StudentID)
}

func TestDepartmentCodeWithTrailingDigitRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	err := f.departmentSvc.CreateDepartment(ctx, &models.Department{Code: "CS2", Name: "Computer Science II"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "code", apperrors.Field(err))

	_, err = f.identifierSvc.NextStudentID(ctx, "CS2", 2025)
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, f.store.sequences)
}

func TestNextStudentIDOrdersByNumericSuffix(t *testing.T) {
	f := newFixture()
	f.students.put(models.Student{StudentID: "2025CS999", Email: "a@example.edu"})
	f.students.put(models.Student{StudentID: "2025CS1000", Email: "b@example.edu"})

	id, err := f.identifierSvc.NextStudentID(context.Background(), "CS", 2025)
	require.NoError(t, err)
	assert.Equal(t, "2025CS1001", id)
}

func TestNextStudentIDCatchesUpStaleCounter(t *testing.T) {
	f := newFixture()
	f.store.sequences["2025CS"] = 1
	f.students.put(models.Student{StudentID: "2025CS001", Email: "a@example.edu"})
	f.students.put(models.Student{StudentID: "2025CS002", Email: "b@example.edu"})

	id, err := f.identifierSvc.NextStudentID(context.Background(), "CS", 2025)
	require.NoError(t, err)
	assert.Equal(t, "2025CS003", id)
}
