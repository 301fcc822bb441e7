package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models"
)

type stubReportRepo struct {
	gpas       []float64
	since      time.Time
	attendedOn time.Time
	failStats  bool
}

func (r *stubReportRepo) Stats(context.Context) (models.DashboardStats, error) {
	if r.failStats {
		return models.DashboardStats{}, errors.New("connection reset")
	}
	return models.DashboardStats{TotalStudents: 4, ActiveStudents: 3, TotalCourses: 2, TotalDepartments: 1}, nil
}

func (r *stubReportRepo) DepartmentDistribution(context.Context) ([]models.DepartmentCount, error) {
	return []models.DepartmentCount{{DepartmentID: 1, Name: "Computer Science", Code: "CS", Count: 4}}, nil
}

func (r *stubReportRepo) MonthlyAdmissions(_ context.Context, since time.Time) ([]models.MonthlyCount, error) {
	r.since = since
	return []models.MonthlyCount{{Month: "2025-05", Count: 4}}, nil
}

func (r *stubReportRepo) StudentGPAs(context.Context) ([]float64, error) {
	return r.gpas, nil
}

func (r *stubReportRepo) AttendanceOn(_ context.Context, date time.Time) (models.TodayAttendance, error) {
	r.attendedOn = date
	return models.TodayAttendance{Present: 10, Absent: 2}, nil
}

func (r *stubReportRepo) PendingFees(context.Context) (models.PendingFees, error) {
	return models.PendingFees{Total: 1500, Count: 3}, nil
}

func (r *stubReportRepo) RecentStudents(_ context.Context, limit uint64) ([]models.Student, error) {
	return make([]models.Student, limit), nil
}

func TestDashboard(t *testing.T) {
	f := newFixture()
	repo := &stubReportRepo{gpas: []float64{3.6, 3.2, 2.8, 1.9}}
	svc := NewReportService(repo, f.attendanceSvc, f.announcementSvc, ReportOptions{}, Clock(fixedClock))
	require.NoError(t, f.announcementSvc.CreateAnnouncement(context.Background(), &models.Announcement{Title: "Welcome", Content: "x", IsActive: true}, nil))

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), d.Stats.TotalStudents)
	assert.Len(t, d.RecentStudents, recentStudentCount)
	assert.Equal(t, models.TodayAttendance{Present: 10, Absent: 2}, d.TodayAttendance)
	assert.Equal(t, 1500.0, d.PendingFees.Total)
	assert.Len(t, d.RecentAnnouncements, 1)
	assert.Equal(t, []int64{1, 1, 1, 0, 1}, bucketCounts(d.GPADistribution))

	today := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, today, repo.attendedOn)
	assert.Equal(t, today.AddDate(0, 0, -180), repo.since)
}

func TestDashboardFailsWhenAWidgetFails(t *testing.T) {
	f := newFixture()
	svc := NewReportService(&stubReportRepo{failStats: true}, f.attendanceSvc, f.announcementSvc, ReportOptions{Announcements: 5}, Clock(fixedClock))

	_, err := svc.Dashboard(context.Background())
	assert.ErrorContains(t, err, "connection reset")
}

func TestGPADistributionAlwaysHasFiveBuckets(t *testing.T) {
	f := newFixture()
	svc := NewReportService(&stubReportRepo{}, f.attendanceSvc, f.announcementSvc, ReportOptions{}, Clock(fixedClock))

	buckets, err := svc.GPADistribution(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0, 0, 0, 0}, bucketCounts(buckets))
	assert.Equal(t, models.BucketTop, buckets[0].Label)
}

func bucketCounts(buckets []models.GPABucket) []int64 {
	out := make([]int64, len(buckets))
	for i, b := range buckets {
		out[i] = b.Count
	}
	return out
}
