package models

// DashboardStats is the payload of the dashboard statistics endpoint.
type DashboardStats struct {
	TotalStudents    int64 `json:"total_students"`
	ActiveStudents   int64 `json:"active_students"`
	TotalCourses     int64 `json:"total_courses"`
	TotalDepartments int64 `json:"total_departments"`
}

// DepartmentCount is the number of students in one department.
type DepartmentCount struct {
	DepartmentID int64  `json:"department_id"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Count        int64  `json:"count"`
}

// MonthlyCount is the number of admissions in one month, keyed YYYY-MM.
type MonthlyCount struct {
	Month string `json:"month"`
	Count int64  `json:"count"`
}

// GPABucket is one bar of the GPA histogram.
type GPABucket struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// GPA bucket labels, highest first.
const (
	BucketTop      = "3.5 - 4.0"
	BucketHigh     = "3.0 - 3.49"
	BucketMid      = "2.5 - 2.99"
	BucketLow      = "2.0 - 2.49"
	BucketBelowTwo = "Below 2.0"
)

// BucketLabel returns the histogram bucket for a GPA.
func BucketLabel(gpa float64) string {
	switch {
	case gpa >= 3.5:
		return BucketTop
	case gpa >= 3.0:
		return BucketHigh
	case gpa >= 2.5:
		return BucketMid
	case gpa >= 2.0:
		return BucketLow
	}
	return BucketBelowTwo
}

// BucketGPAs builds the histogram for the given GPAs. Every bucket is present, zero or not.
func BucketGPAs(gpas []float64) []GPABucket {
	buckets := []GPABucket{
		{Label: BucketTop},
		{Label: BucketHigh},
		{Label: BucketMid},
		{Label: BucketLow},
		{Label: BucketBelowTwo},
	}
	index := make(map[string]int, len(buckets))
	for i, b := range buckets {
		index[b.Label] = i
	}
	for _, g := range gpas {
		buckets[index[BucketLabel(g)]].Count++
	}
	return buckets
}

// PendingFees totals fees with an outstanding stored Pending status.
type PendingFees struct {
	Total float64 `json:"total"`
	Count int64   `json:"count"`
}

// TodayAttendance counts today's present and absent records.
type TodayAttendance struct {
	Present int64 `json:"present"`
	Absent  int64 `json:"absent"`
}

// Dashboard gathers every dashboard widget.
type Dashboard struct {
	Stats                  DashboardStats    `json:"stats"`
	RecentStudents         []Student         `json:"recent_students"`
	DepartmentDistribution []DepartmentCount `json:"department_distribution"`
	MonthlyAdmissions      []MonthlyCount    `json:"monthly_admissions"`
	GPADistribution        []GPABucket       `json:"gpa_distribution"`
	TodayAttendance        TodayAttendance   `json:"today_attendance"`
	PendingFees            PendingFees       `json:"pending_fees"`
	RecentAnnouncements    []Announcement    `json:"recent_announcements"`
}

// StudentDetail is the student page: record, enrollments, attendance and fees.
type StudentDetail struct {
	Student     Student           `json:"student"`
	Age         int               `json:"age"`
	Enrollments []Enrollment      `json:"enrollments"`
	Attendance  AttendanceSummary `json:"attendance"`
	RecentFees  []Fee             `json:"recent_fees"`
	FeeSummary  FeeTotals         `json:"fee_summary"`
}
