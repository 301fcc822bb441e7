package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

type sample struct {
	Code  string `json:"code" validate:"required,deptcode"`
	Year  string `json:"academic_year" validate:"omitempty,academicyear"`
	Phone string `json:"phone" validate:"omitempty,phone"`
}

func TestIsAcademicYear(t *testing.T) {
	assert.True(t, IsAcademicYear("2025-2026"))
	assert.False(t, IsAcademicYear("2025-2027"))
	assert.False(t, IsAcademicYear("2025/2026"))
	assert.False(t, IsAcademicYear(""))
}

func TestPatterns(t *testing.T) {
	assert.True(t, CompiledPatterns.DepartmentCode.MatchString("CS"))
	assert.True(t, IsDepartmentCode("MECH"))
	assert.False(t, IsDepartmentCode("MECH2"))
	assert.False(t, IsDepartmentCode("CS2"))
	assert.False(t, CompiledPatterns.DepartmentCode.MatchString("cs"))
	assert.False(t, CompiledPatterns.DepartmentCode.MatchString("C"))

	assert.True(t, CompiledPatterns.CourseCode.MatchString("EE-201"))
	assert.False(t, CompiledPatterns.CourseCode.MatchString("ee 201"))

	assert.True(t, CompiledPatterns.Phone.MatchString("+905551234567"))
	assert.False(t, CompiledPatterns.Phone.MatchString("12345"))
}

func TestStructReportsJSONField(t *testing.T) {
	require.NoError(t, Struct(sample{Code: "CS", Year: "2024-2025"}))

	err := Struct(sample{Code: "CS", Year: "2024-2030"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, "academic_year", apperrors.Field(err))
	assert.Equal(t, "academic_year must look like 2025-2026", err.Error())

	err = Struct(sample{})
	assert.Equal(t, "code", apperrors.Field(err))
	assert.Equal(t, "code is required", err.Error())

	err = Struct(sample{Code: "CS", Phone: "abc"})
	assert.Equal(t, "phone", apperrors.Field(err))
}
