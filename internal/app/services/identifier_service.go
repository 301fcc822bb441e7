package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/yigit/studentrecords/internal/app/repositories"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/logger"
	"github.com/yigit/studentrecords/internal/pkg/validation"
)

// IdentifierService generates student identifiers of the form {year}{DEPT}{n:03d}
type IdentifierService interface {
	// NextStudentID reserves the next identifier of the (year, department) scope.
	// An empty departmentCode uses the fallback scope. Scopes are letters only, so the
	// counter suffix of one scope can never read as part of another scope's code.
	NextStudentID(ctx context.Context, departmentCode string, admissionYear int) (string, error)
}

type identifierServiceImpl struct {
	studentRepo   repositories.IStudentRepository
	sequenceRepo  repositories.ISequenceRepository
	fallbackScope string
}

// NewIdentifierService creates a new identifier service
func NewIdentifierService(studentRepo repositories.IStudentRepository, sequenceRepo repositories.ISequenceRepository, fallbackScope string) IdentifierService {
	if fallbackScope == "" {
		fallbackScope = "GEN"
	}
	return &identifierServiceImpl{
		studentRepo:   studentRepo,
		sequenceRepo:  sequenceRepo,
		fallbackScope: fallbackScope,
	}
}

// StudentIDPrefix is the year and scope part of a student identifier
func StudentIDPrefix(admissionYear int, scope string) string {
	return fmt.Sprintf("%d%s", admissionYear, strings.ToUpper(scope))
}

// FormatStudentID renders the n-th identifier of a prefix, zero padded to three digits
func FormatStudentID(prefix string, n int) string {
	return fmt.Sprintf("%s%03d", prefix, n)
}

// suffixSeed parses the counter from the highest existing identifier. A malformed suffix seeds 0.
func suffixSeed(prefix, last string) int {
	if last == "" || !strings.HasPrefix(last, prefix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
	if err != nil || n < 0 {
		logger.Warn().Str("prefix", prefix).Str("last", last).Msg("Unparseable student ID suffix, restarting scope at 001")
		return 0
	}
	return n
}

// NextStudentID must be called with the ctx of the transaction that inserts the student
func (s *identifierServiceImpl) NextStudentID(ctx context.Context, departmentCode string, admissionYear int) (string, error) {
	if admissionYear <= 0 {
		return "", fmt.Errorf("invalid admission year %d", admissionYear)
	}
	scope := strings.ToUpper(strings.TrimSpace(departmentCode))
	if scope == "" {
		scope = s.fallbackScope
	}
	if !validation.IsDepartmentCode(scope) {
		return "", apperrors.NewValidationError("department_code", fmt.Sprintf("%q cannot scope student IDs", scope))
	}
	prefix := StudentIDPrefix(admissionYear, scope)

	last, err := s.studentRepo.LastStudentID(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("error reading last student ID: %w", err)
	}

	n, err := s.sequenceRepo.Advance(ctx, admissionYear, scope, suffixSeed(prefix, last))
	if err != nil {
		return "", fmt.Errorf("error advancing student ID sequence: %w", err)
	}
	return FormatStudentID(prefix, n), nil
}
