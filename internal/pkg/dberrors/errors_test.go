package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "students_email_key"})
	fk := &pgconn.PgError{Code: "23503", ConstraintName: "enrollments_course_id_fkey"}
	check := &pgconn.PgError{Code: "23514", ConstraintName: "fees_amount_check"}

	assert.True(t, IsDuplicateKeyError(unique))
	assert.True(t, IsDuplicateConstraintError(unique, "students_email_key"))
	assert.False(t, IsDuplicateConstraintError(unique, "students_student_id_key"))

	assert.True(t, IsForeignKeyError(fk, ""))
	assert.True(t, IsForeignKeyError(fk, "enrollments_course_id_fkey"))
	assert.False(t, IsForeignKeyError(fk, "other"))

	name, ok := IsCheckViolation(check)
	assert.True(t, ok)
	assert.Equal(t, "fees_amount_check", name)

	plain := errors.New("boom")
	assert.False(t, IsDuplicateKeyError(plain))
	_, ok = IsCheckViolation(plain)
	assert.False(t, ok)
}
