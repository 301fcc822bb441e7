package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
)

// Validation rule patterns
var (
	// Department codes: 2-10 uppercase letters (CS, ECE, MECH). Student ids append a
	// numeric counter to the code, so a trailing digit would make ids ambiguous.
	DepartmentCodePattern = `^[A-Z]{2,10}$`

	// Course codes: up to 20 uppercase letters/digits/hyphens (CS101, EE-201)
	CourseCodePattern = `^[A-Z0-9][A-Z0-9\-]{1,19}$`

	// Academic year: consecutive years, 2025-2026
	AcademicYearPattern = `^(\d{4})-(\d{4})$`

	// Phone: optional leading +, 7-15 digits
	PhonePattern = `^\+?[0-9]{7,15}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	DepartmentCode *regexp.Regexp
	CourseCode     *regexp.Regexp
	AcademicYear   *regexp.Regexp
	Phone          *regexp.Regexp
}{
	DepartmentCode: regexp.MustCompile(DepartmentCodePattern),
	CourseCode:     regexp.MustCompile(CourseCodePattern),
	AcademicYear:   regexp.MustCompile(AcademicYearPattern),
	Phone:          regexp.MustCompile(PhonePattern),
}

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom tags registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so field errors match request payloads.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = v.RegisterValidation("deptcode", func(fl validator.FieldLevel) bool {
			return CompiledPatterns.DepartmentCode.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("coursecode", func(fl validator.FieldLevel) bool {
			return CompiledPatterns.CourseCode.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return CompiledPatterns.Phone.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("academicyear", func(fl validator.FieldLevel) bool {
			return IsAcademicYear(fl.Field().String())
		})
		instance = v
	})
	return instance
}

// Struct validates s and converts the first failing field into an apperrors validation error.
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperrors.NewValidationError(fe.Field(), FormatFieldError(fe))
	}
	return fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err)
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min", "gte":
		return e.Field() + " must be at least " + e.Param()
	case "max", "lte":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "deptcode":
		return e.Field() + " must be 2-10 uppercase letters"
	case "coursecode":
		return e.Field() + " must be uppercase letters, digits or hyphens"
	case "phone":
		return e.Field() + " must be a valid phone number"
	case "academicyear":
		return e.Field() + " must look like 2025-2026"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}

// IsDepartmentCode reports whether s can scope student identifiers
func IsDepartmentCode(s string) bool {
	return CompiledPatterns.DepartmentCode.MatchString(s)
}

// IsAcademicYear checks the YYYY-YYYY format with consecutive years.
func IsAcademicYear(s string) bool {
	m := CompiledPatterns.AcademicYear.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	return end == start+1
}
