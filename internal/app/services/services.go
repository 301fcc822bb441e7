package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
)

// Services defined in this package:
// - DepartmentService: departments and the department delete cascade
// - CourseService: courses, seats and grade distribution
// - IdentifierService: student_id generation per (admission year, department) scope
// - StudentService: students, detail view and the student delete cascade
// - EnrollmentService: enrollments, grading and GPA
// - AttendanceService: daily attendance, bulk marking, ratios and charts
// - FeeService: fee ledger, payments and summaries
// - AnnouncementService: notices ordered by priority
// - ReportService: dashboard aggregates
// - ExportService: spreadsheet exports
// - AuthService: operator signup and login

// Clock returns the current time. Services take one so tests can pin "today".
type Clock func() time.Time

func (c Clock) today() time.Time {
	if c == nil {
		return helpers.DateOf(time.Now())
	}
	return helpers.DateOf(c())
}

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// noTx runs fn directly; used when a service is built without a transactor.
type noTx struct{}

func (noTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func validateID(id int64, what string) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid %s ID", apperrors.ErrValidationFailed, what)
	}
	return nil
}
