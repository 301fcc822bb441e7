package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttendanceRatio(t *testing.T) {
	assert.Equal(t, 75.0, AttendanceRatio(3, 4))
	assert.Equal(t, 66.7, AttendanceRatio(2, 3))
	assert.Equal(t, 0.0, AttendanceRatio(0, 0))
}

func TestAttendanceSummaryAdd(t *testing.T) {
	var s AttendanceSummary
	s.Add(AttendancePresent, 3)
	s.Add(AttendanceAbsent, 1)

	assert.Equal(t, int64(4), s.Total)
	assert.Equal(t, 75.0, s.Percentage)

	// late does not count as present
	s.Add(AttendanceLate, 1)
	assert.Equal(t, int64(1), s.Late)
	assert.Equal(t, 60.0, s.Percentage)
}

func TestAttendanceStatus(t *testing.T) {
	for _, s := range AttendanceStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, AttendanceStatus("X").Valid())
	assert.Equal(t, "Excused", AttendanceExcused.Label())
}
