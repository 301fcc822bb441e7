package models

import (
	"fmt"
	"time"

	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// Grade is a letter grade on the 4.0 scale. The empty grade means not graded yet.
type Grade string

const (
	GradeAPlus      Grade = "A+"
	GradeA          Grade = "A"
	GradeAMinus     Grade = "A-"
	GradeBPlus      Grade = "B+"
	GradeB          Grade = "B"
	GradeBMinus     Grade = "B-"
	GradeCPlus      Grade = "C+"
	GradeC          Grade = "C"
	GradeCMinus     Grade = "C-"
	GradeDPlus      Grade = "D+"
	GradeD          Grade = "D"
	GradeF          Grade = "F"
	GradeWithdrawn  Grade = "W"
	GradeIncomplete Grade = "I"
)

// GradePoints maps every grade to its point value.
var GradePoints = map[Grade]float64{
	GradeAPlus:      4.00,
	GradeA:          4.00,
	GradeAMinus:     3.67,
	GradeBPlus:      3.33,
	GradeB:          3.00,
	GradeBMinus:     2.67,
	GradeCPlus:      2.33,
	GradeC:          2.00,
	GradeCMinus:     1.67,
	GradeDPlus:      1.33,
	GradeD:          1.00,
	GradeF:          0.00,
	GradeWithdrawn:  0.00,
	GradeIncomplete: 0.00,
}

// Grades lists the grade set in display order.
var Grades = []Grade{
	GradeAPlus, GradeA, GradeAMinus,
	GradeBPlus, GradeB, GradeBMinus,
	GradeCPlus, GradeC, GradeCMinus,
	GradeDPlus, GradeD, GradeF,
	GradeWithdrawn, GradeIncomplete,
}

// Valid reports whether g belongs to the grade set. Blank is valid.
func (g Grade) Valid() bool {
	if g == "" {
		return true
	}
	_, ok := GradePoints[g]
	return ok
}

// Completes reports whether a course graded with g counts as completed.
func (g Grade) Completes() bool {
	if g == "" || g == GradeWithdrawn || g == GradeIncomplete {
		return false
	}
	_, ok := GradePoints[g]
	return ok
}

// GradePoint returns the point value for g. Unknown or blank grades are worth 0.
func GradePoint(g Grade) float64 {
	return GradePoints[g]
}

// Enrollment links one student to one course.
type Enrollment struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	CourseID       int64     `json:"course_id"`
	EnrollmentDate time.Time `json:"enrollment_date"`
	Grade          Grade     `json:"grade"`
	InternalMarks  *float64  `json:"internal_marks"`
	ExternalMarks  *float64  `json:"external_marks"`
	IsActive       bool      `json:"is_active"`
	Completed      bool      `json:"completed"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Joined for list and detail views
	Student *Student `json:"student,omitempty"`
	Course  *Course  `json:"course,omitempty"`
}

// GradePoint returns the point value of the enrollment's grade.
func (e *Enrollment) GradePoint() float64 {
	return GradePoint(e.Grade)
}

// TotalMarks sums the recorded components. Missing components count as zero.
func (e *Enrollment) TotalMarks() float64 {
	var total float64
	if e.InternalMarks != nil {
		total += *e.InternalMarks
	}
	if e.ExternalMarks != nil {
		total += *e.ExternalMarks
	}
	return total
}

// ApplyGrade sets grade and marks and recomputes the completion flag.
func (e *Enrollment) ApplyGrade(g Grade, internal, external *float64) {
	e.Grade = g
	e.InternalMarks = internal
	e.ExternalMarks = external
	e.Completed = g.Completes()
}

// ValidateMarks checks the grade and marks against the course's weighting.
func ValidateMarks(course *Course, g Grade, internal, external *float64) error {
	if !g.Valid() {
		return apperrors.NewValidationError("grade", fmt.Sprintf("unknown grade %q", g))
	}
	if internal != nil && (*internal < 0 || *internal > course.MaxInternalMarks) {
		return apperrors.NewValidationError("internal_marks",
			fmt.Sprintf("internal_marks must be between 0 and %g", course.MaxInternalMarks))
	}
	if external != nil && (*external < 0 || *external > course.MaxExternalMarks) {
		return apperrors.NewValidationError("external_marks",
			fmt.Sprintf("external_marks must be between 0 and %g", course.MaxExternalMarks))
	}
	return nil
}

// GradedCredit is one completed course contributing to a GPA.
type GradedCredit struct {
	Grade   Grade
	Credits int
}

// WeightedGPA returns the credit-weighted mean grade point and the credits counted.
// Entries with non-completing grades or no credits are skipped.
func WeightedGPA(entries []GradedCredit) (float64, int) {
	var points float64
	var credits int
	for _, e := range entries {
		if !e.Grade.Completes() || e.Credits <= 0 {
			continue
		}
		points += GradePoint(e.Grade) * float64(e.Credits)
		credits += e.Credits
	}
	if credits == 0 {
		return 0, 0
	}
	return round(points/float64(credits), 2), credits
}

// GradeCount is one row of a course's grade distribution.
type GradeCount struct {
	Grade Grade `json:"grade"`
	Count int64 `json:"count"`
}

// EnrollmentChanges replaces the grade and marks of an enrollment and optionally toggles it.
type EnrollmentChanges struct {
	Grade         Grade
	InternalMarks *float64
	ExternalMarks *float64
	IsActive      *bool
}
