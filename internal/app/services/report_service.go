package services

import (
	"context"
	"fmt"

	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/repositories"
	"golang.org/x/sync/errgroup"
)

// recentStudentCount is the number of newest students on the dashboard
const recentStudentCount = 5

// ReportOptions tunes the dashboard windows
type ReportOptions struct {
	// Announcements is the number of live announcements on the dashboard
	Announcements int
	// AdmissionTrendDays is the trailing window of the monthly admissions chart
	AdmissionTrendDays int
}

// ReportService composes read-only aggregates across entities
type ReportService interface {
	DashboardStats(ctx context.Context) (models.DashboardStats, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)
	AttendanceChart(ctx context.Context, courseID *int64, days int) ([]models.ChartPoint, error)
	GPADistribution(ctx context.Context) ([]models.GPABucket, error)
}

type reportServiceImpl struct {
	reportRepo    repositories.IReportRepository
	attendance    AttendanceService
	announcements AnnouncementService
	options       ReportOptions
	clock         Clock
}

// NewReportService creates a new report service instance
func NewReportService(
	reportRepo repositories.IReportRepository,
	attendance AttendanceService,
	announcements AnnouncementService,
	options ReportOptions,
	clock Clock,
) ReportService {
	if options.Announcements <= 0 {
		options.Announcements = 3
	}
	if options.AdmissionTrendDays <= 0 {
		options.AdmissionTrendDays = 180
	}
	return &reportServiceImpl{
		reportRepo:    reportRepo,
		attendance:    attendance,
		announcements: announcements,
		options:       options,
		clock:         clock,
	}
}

// DashboardStats counts students, active students, active courses and departments
func (s *reportServiceImpl) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	stats, err := s.reportRepo.Stats(ctx)
	if err != nil {
		return stats, fmt.Errorf("error retrieving dashboard stats: %w", err)
	}
	return stats, nil
}

// GPADistribution buckets every student's GPA
func (s *reportServiceImpl) GPADistribution(ctx context.Context) ([]models.GPABucket, error) {
	gpas, err := s.reportRepo.StudentGPAs(ctx)
	if err != nil {
		return nil, fmt.Errorf("error retrieving GPAs: %w", err)
	}
	return models.BucketGPAs(gpas), nil
}

// Dashboard runs every widget query concurrently
func (s *reportServiceImpl) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	today := s.clock.today()
	d := &models.Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.Stats, err = s.DashboardStats(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentStudents, err = s.reportRepo.RecentStudents(ctx, recentStudentCount)
		return err
	})
	g.Go(func() (err error) {
		d.DepartmentDistribution, err = s.reportRepo.DepartmentDistribution(ctx)
		return err
	})
	g.Go(func() (err error) {
		since := today.AddDate(0, 0, -s.options.AdmissionTrendDays)
		d.MonthlyAdmissions, err = s.reportRepo.MonthlyAdmissions(ctx, since)
		return err
	})
	g.Go(func() (err error) {
		d.GPADistribution, err = s.GPADistribution(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.TodayAttendance, err = s.reportRepo.AttendanceOn(ctx, today)
		return err
	})
	g.Go(func() (err error) {
		d.PendingFees, err = s.reportRepo.PendingFees(ctx)
		return err
	})
	g.Go(func() (err error) {
		d.RecentAnnouncements, err = s.announcements.Active(ctx, s.options.Announcements)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("error building dashboard: %w", err)
	}
	return d, nil
}

// AttendanceChart returns the daily attendance series
func (s *reportServiceImpl) AttendanceChart(ctx context.Context, courseID *int64, days int) ([]models.ChartPoint, error) {
	return s.attendance.Chart(ctx, courseID, days)
}
