package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/pkg/apperrors"
	"github.com/yigit/studentrecords/internal/pkg/dberrors"
	"github.com/yigit/studentrecords/internal/pkg/helpers"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// Unique constraint names from the schema
const (
	studentIDConstraint    = "students_student_id_key"
	studentEmailConstraint = "students_email_key"
)

// StudentRepository handles database operations for students
type StudentRepository struct {
	baseRepository
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{baseRepository: newBaseRepository(db)}
}

var studentColumns = []string{
	"s.id", "s.student_id", "s.first_name", "s.last_name", "s.email", "s.phone", "s.date_of_birth",
	"s.gender", "s.blood_group", "s.address", "s.city", "s.state", "s.postal_code",
	"s.guardian_name", "s.guardian_phone", "s.guardian_email", "s.guardian_relation",
	"s.department_id", "s.admission_date", "s.current_semester", "s.gpa", "s.total_credits",
	"s.is_active", "s.created_at", "s.updated_at",
	"d.code", "d.name",
}

// studentSelect left-joins the department, which may be null
func (r *StudentRepository) studentSelect() squirrel.SelectBuilder {
	return r.sb.Select(studentColumns...).
		From("students s").
		LeftJoin("departments d ON d.id = s.department_id")
}

func scanStudent(row pgx.Row, s *models.Student) error {
	var deptCode, deptName *string
	err := row.Scan(
		&s.ID, &s.StudentID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.DateOfBirth,
		&s.Gender, &s.BloodGroup, &s.Address, &s.City, &s.State, &s.PostalCode,
		&s.GuardianName, &s.GuardianPhone, &s.GuardianEmail, &s.GuardianRelation,
		&s.DepartmentID, &s.AdmissionDate, &s.CurrentSemester, &s.GPA, &s.TotalCredits,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
		&deptCode, &deptName,
	)
	if err != nil {
		return err
	}
	if s.DepartmentID != nil && deptCode != nil {
		s.Department = &models.Department{ID: *s.DepartmentID, Code: *deptCode, Name: *deptName}
	}
	return nil
}

func (r *StudentRepository) mapWriteError(err error, student *models.Student) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, studentIDConstraint):
		return apperrors.ErrStudentIDAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, studentEmailConstraint):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateKeyError(err):
		return apperrors.NewDuplicateKeyError("student already exists")
	case dberrors.IsForeignKeyError(err, ""):
		return apperrors.ErrDepartmentNotFound
	}
	if constraint, ok := dberrors.IsCheckViolation(err); ok {
		return apperrors.NewValidationError(constraint, "student violates "+constraint)
	}
	logger.Error().Err(err).Str("studentID", student.StudentID).Msg("Error writing student")
	return fmt.Errorf("error writing student: %w", err)
}

// Create inserts a student. StudentID must already be assigned.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Insert("students").
		Columns("student_id", "first_name", "last_name", "email", "phone", "date_of_birth",
			"gender", "blood_group", "address", "city", "state", "postal_code",
			"guardian_name", "guardian_phone", "guardian_email", "guardian_relation",
			"department_id", "admission_date", "current_semester", "gpa", "total_credits", "is_active").
		Values(student.StudentID, student.FirstName, student.LastName, student.Email, student.Phone, student.DateOfBirth,
			student.Gender, student.BloodGroup, student.Address, student.City, student.State, student.PostalCode,
			student.GuardianName, student.GuardianPhone, student.GuardianEmail, student.GuardianRelation,
			student.DepartmentID, student.AdmissionDate, student.CurrentSemester, student.GPA, student.TotalCredits, student.IsActive).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create student SQL")
		return fmt.Errorf("failed to build create student query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&student.ID, &student.CreatedAt, &student.UpdatedAt); err != nil {
		return r.mapWriteError(err, student)
	}
	return nil
}

// GetByID retrieves a student with the department joined
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	sql, args, err := r.studentSelect().Where(squirrel.Eq{"s.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get student SQL")
		return nil, fmt.Errorf("failed to build get student query: %w", err)
	}

	var student models.Student
	if err := scanStudent(r.conn(ctx).QueryRow(ctx, sql, args...), &student); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrStudentNotFound
		}
		logger.Error().Err(err).Int64("studentID", id).Msg("Error scanning student row")
		return nil, fmt.Errorf("error retrieving student: %w", err)
	}
	return &student, nil
}

func applyStudentFilter(q squirrel.SelectBuilder, filter models.StudentFilter) squirrel.SelectBuilder {
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"s.first_name": like},
			squirrel.ILike{"s.last_name": like},
			squirrel.ILike{"s.email": like},
			squirrel.ILike{"s.student_id": like},
		})
	}
	if filter.DepartmentID != nil {
		q = q.Where(squirrel.Eq{"s.department_id": *filter.DepartmentID})
	}
	switch filter.Status {
	case "active":
		q = q.Where(squirrel.Eq{"s.is_active": true})
	case "inactive":
		q = q.Where(squirrel.Eq{"s.is_active": false})
	}
	if filter.Semester > 0 {
		q = q.Where(squirrel.Eq{"s.current_semester": filter.Semester})
	}
	return q
}

// studentOrder maps a whitelisted sort key to an ORDER BY clause. Unknown keys sort newest first.
func studentOrder(sort string) string {
	field := strings.TrimPrefix(sort, "-")
	if !models.StudentSortFields[field] {
		return "s.created_at DESC"
	}
	if strings.HasPrefix(sort, "-") {
		return "s." + field + " DESC"
	}
	return "s." + field + " ASC"
}

// List returns one page of students and the total number of matches. PageSize <= 0 returns every match.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int64, error) {
	countSQL, countArgs, err := applyStudentFilter(r.sb.Select("COUNT(*)").From("students s"), filter).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count students SQL")
		return nil, 0, fmt.Errorf("failed to build count students query: %w", err)
	}

	var total int64
	if err := r.conn(ctx).QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting students")
		return nil, 0, fmt.Errorf("error counting students: %w", err)
	}

	q := applyStudentFilter(r.studentSelect(), filter).OrderBy(studentOrder(filter.Sort), "s.id ASC")
	if filter.PageSize > 0 {
		page := helpers.ClampPage(filter.Page, filter.PageSize, total)
		offset, limit := helpers.CalculateOffsetLimit(page, filter.PageSize)
		q = q.Offset(offset).Limit(limit)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list students SQL")
		return nil, 0, fmt.Errorf("failed to build list students query: %w", err)
	}

	students, err := r.queryStudents(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

func (r *StudentRepository) queryStudents(ctx context.Context, sql string, args []interface{}) ([]models.Student, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing student query")
		return nil, fmt.Errorf("error querying students: %w", err)
	}
	defer rows.Close()

	students := []models.Student{}
	for rows.Next() {
		var s models.Student
		if err := scanStudent(rows, &s); err != nil {
			logger.Error().Err(err).Msg("Error scanning student row")
			return nil, fmt.Errorf("error scanning student row: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating student rows")
		return nil, fmt.Errorf("error iterating student rows: %w", err)
	}
	return students, nil
}

// Update writes every editable field. student_id is never updated.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	sql, args, err := r.sb.Update("students").
		SetMap(map[string]interface{}{
			"first_name":        student.FirstName,
			"last_name":         student.LastName,
			"email":             student.Email,
			"phone":             student.Phone,
			"date_of_birth":     student.DateOfBirth,
			"gender":            student.Gender,
			"blood_group":       student.BloodGroup,
			"address":           student.Address,
			"city":              student.City,
			"state":             student.State,
			"postal_code":       student.PostalCode,
			"guardian_name":     student.GuardianName,
			"guardian_phone":    student.GuardianPhone,
			"guardian_email":    student.GuardianEmail,
			"guardian_relation": student.GuardianRelation,
			"department_id":     student.DepartmentID,
			"admission_date":    student.AdmissionDate,
			"current_semester":  student.CurrentSemester,
			"gpa":               student.GPA,
			"total_credits":     student.TotalCredits,
			"is_active":         student.IsActive,
			"updated_at":        squirrel.Expr("NOW()"),
		}).
		Where(squirrel.Eq{"id": student.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update student SQL")
		return fmt.Errorf("failed to build update student query: %w", err)
	}

	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&student.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrStudentNotFound
		}
		return r.mapWriteError(err, student)
	}
	return nil
}

// UpdateAcademicRecord stores a recomputed GPA and credit total
func (r *StudentRepository) UpdateAcademicRecord(ctx context.Context, id int64, gpa float64, totalCredits int) error {
	sql, args, err := r.sb.Update("students").
		Set("gpa", gpa).
		Set("total_credits", totalCredits).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update academic record SQL")
		return fmt.Errorf("failed to build update academic record query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error updating academic record")
		return fmt.Errorf("error updating academic record: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// Delete deletes a student by ID
func (r *StudentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := r.sb.Delete("students").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building delete student SQL")
		return fmt.Errorf("failed to build delete student query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("studentID", id).Msg("Error executing delete student query")
		return fmt.Errorf("error deleting student: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrStudentNotFound
	}
	return nil
}

// ClearDepartment detaches every student of a department and returns how many were updated
func (r *StudentRepository) ClearDepartment(ctx context.Context, departmentID int64) (int64, error) {
	sql, args, err := r.sb.Update("students").
		Set("department_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"department_id": departmentID}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building clear department SQL")
		return 0, fmt.Errorf("failed to build clear department query: %w", err)
	}

	cmdTag, err := r.conn(ctx).Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("departmentID", departmentID).Msg("Error clearing student departments")
		return 0, fmt.Errorf("error clearing student departments: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

// LastStudentID returns the highest student_id made of prefix and a numeric suffix.
// Longer suffixes sort first so 1000 ranks above 999.
func (r *StudentRepository) LastStudentID(ctx context.Context, prefix string) (string, error) {
	sql, args, err := r.sb.Select("student_id").
		From("students").
		Where(squirrel.Expr("student_id ~ ?", "^"+regexp.QuoteMeta(prefix)+"[0-9]+$")).
		OrderBy("LENGTH(student_id) DESC", "student_id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building last student id SQL")
		return "", fmt.Errorf("failed to build last student id query: %w", err)
	}

	var studentID string
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&studentID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		logger.Error().Err(err).Str("prefix", prefix).Msg("Error reading last student id")
		return "", fmt.Errorf("error reading last student id: %w", err)
	}
	return studentID, nil
}
