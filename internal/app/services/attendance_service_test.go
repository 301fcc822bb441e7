package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

func TestRecordOverwritesSameDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	course := f.course(cs.ID, "CS101", 3)
	s := f.student(&cs.ID, "Ada", "Lovelace")

	statuses := []models.AttendanceStatus{
		models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate,
		models.AttendancePresent, models.AttendanceExcused,
	}
	for i, status := range statuses {
		// same calendar day, different times
		at := fixedNow.Add(-time.Duration(i) * time.Hour)
		created, err := f.attendanceSvc.Record(ctx, &models.Attendance{
			StudentID: s.ID, CourseID: course.ID, Date: at, Status: status,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, i == 0, created)
	}

	records, err := f.attendanceSvc.List(ctx, models.AttendanceFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AttendanceExcused, records[0].Status)
}

func TestRecordValidation(t *testing.T) {
	f := newFixture()
	tests := []struct {
		name  string
		a     *models.Attendance
		field string
	}{
		{"student", &models.Attendance{CourseID: 1, Date: fixedNow, Status: models.AttendancePresent}, "student_id"},
		{"course", &models.Attendance{StudentID: 1, Date: fixedNow, Status: models.AttendancePresent}, "course_id"},
		{"date", &models.Attendance{StudentID: 1, CourseID: 1, Status: models.AttendancePresent}, "date"},
		{"status", &models.Attendance{StudentID: 1, CourseID: 1, Date: fixedNow, Status: "X"}, "status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.attendanceSvc.Record(context.Background(), tt.a, nil)
			require.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Equal(t, tt.field, apperrors.Field(err))
		})
	}
}

func TestBulkRecordPartialFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	course := f.course(cs.ID, "CS101", 3)
	ada := f.student(&cs.ID, "Ada", "Lovelace")
	alan := f.student(&cs.ID, "Alan", "Turing")
	outsider := f.student(&cs.ID, "Not", "Enrolled")
	for _, s := range []*models.Student{ada, alan} {
		_, err := f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
		require.NoError(t, err)
	}
	_, err := f.attendanceSvc.Record(ctx, &models.Attendance{StudentID: alan.ID, CourseID: course.ID, Date: fixedNow, Status: models.AttendancePresent}, nil)
	require.NoError(t, err)

	actor := int64(3)
	result, err := f.attendanceSvc.BulkRecord(ctx, course.ID, fixedNow, []models.AttendanceEntry{
		{StudentID: ada.ID, Status: models.AttendancePresent},
		{StudentID: outsider.ID, Status: models.AttendancePresent},
		{StudentID: alan.ID, Status: models.AttendanceAbsent, Remarks: "sick"},
		{StudentID: ada.ID, Status: "Q"},
	}, &actor)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Recorded)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Outcomes, 4)
	assert.Equal(t, apperrors.ErrNotEnrolled.Error(), result.Outcomes[1].Error)
	assert.NotEmpty(t, result.Outcomes[3].Error)

	records, err := f.attendanceSvc.List(ctx, models.AttendanceFilter{CourseID: &course.ID})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	for _, r := range records {
		if r.StudentID == alan.ID {
			assert.Equal(t, models.AttendanceAbsent, r.Status)
			assert.Equal(t, "sick", r.Remarks)
			require.NotNil(t, r.RecordedBy)
			assert.Equal(t, actor, *r.RecordedBy)
		}
	}

	_, err = f.attendanceSvc.BulkRecord(ctx, 999, fixedNow, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrCourseNotFound)
}

func TestAttendanceRatio(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	c1 := f.course(cs.ID, "CS101", 3)
	c2 := f.course(cs.ID, "CS201", 3)
	s := f.student(&cs.ID, "Ada", "Lovelace")

	ratio, err := f.attendanceSvc.Ratio(ctx, s.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, ratio)

	days := []models.AttendanceStatus{models.AttendancePresent, models.AttendancePresent, models.AttendancePresent, models.AttendanceAbsent}
	for i, status := range days {
		_, err := f.attendanceSvc.Record(ctx, &models.Attendance{StudentID: s.ID, CourseID: c1.ID, Date: fixedNow.AddDate(0, 0, -i), Status: status}, nil)
		require.NoError(t, err)
	}
	_, err = f.attendanceSvc.Record(ctx, &models.Attendance{StudentID: s.ID, CourseID: c2.ID, Date: fixedNow, Status: models.AttendanceAbsent}, nil)
	require.NoError(t, err)

	ratio, err = f.attendanceSvc.Ratio(ctx, s.ID, &c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 75.0, ratio)

	ratio, err = f.attendanceSvc.Ratio(ctx, s.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 60.0, ratio)

	summary, err := f.attendanceSvc.Summary(ctx, s.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Absent)
}

func TestAttendanceSheetAndChart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	cs := f.department("CS", "Computer Science")
	course := f.course(cs.ID, "CS101", 3)
	ada := f.student(&cs.ID, "Ada", "Lovelace")
	alan := f.student(&cs.ID, "Alan", "Turing")
	for _, s := range []*models.Student{ada, alan} {
		_, err := f.enrollmentSvc.Enroll(ctx, s.ID, course.ID)
		require.NoError(t, err)
	}
	_, err := f.attendanceSvc.Record(ctx, &models.Attendance{StudentID: alan.ID, CourseID: course.ID, Date: fixedNow, Status: models.AttendanceLate, Remarks: "bus"}, nil)
	require.NoError(t, err)
	_, err = f.attendanceSvc.Record(ctx, &models.Attendance{StudentID: ada.ID, CourseID: course.ID, Date: fixedNow.AddDate(0, 0, -30), Status: models.AttendanceAbsent}, nil)
	require.NoError(t, err)

	rows, err := f.attendanceSvc.Sheet(ctx, course.ID, fixedNow)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.SheetRow{StudentID: ada.ID, StudentCode: ada.StudentID, FullName: "Ada Lovelace", Status: models.AttendancePresent}, rows[0])
	assert.Equal(t, models.AttendanceLate, rows[1].Status)
	assert.True(t, rows[1].Recorded)
	assert.Equal(t, "bus", rows[1].Remarks)

	points, err := f.attendanceSvc.Chart(ctx, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, []models.ChartPoint{{Date: "2025-06-10", Late: 1}}, points)

	points, err = f.attendanceSvc.Chart(ctx, &course.ID, 60)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}
