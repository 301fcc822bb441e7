package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/studentrecords/internal/pkg/logger"
)

// SequenceRepository advances the per (admission year, department) student id counters
type SequenceRepository struct {
	baseRepository
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *pgxpool.Pool) *SequenceRepository {
	return &SequenceRepository{baseRepository: newBaseRepository(db)}
}

// Advance increments the counter in a single statement. Concurrent callers on the same scope
// serialize on the counter row, so each receives a distinct value. The row lock is held until
// the surrounding transaction ends. A counter behind seed (rows inserted with explicit ids, or
// an advance lost to a rolled back insert) jumps past seed instead of reissuing a taken value.
func (r *SequenceRepository) Advance(ctx context.Context, year int, scope string, seed int) (int, error) {
	sql, args, err := r.sb.Insert("student_id_sequences").
		Columns("admission_year", "department_code", "last_value").
		Values(year, scope, seed+1).
		Suffix("ON CONFLICT (admission_year, department_code) DO UPDATE " +
			"SET last_value = GREATEST(student_id_sequences.last_value, EXCLUDED.last_value - 1) + 1 " +
			"RETURNING last_value").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building advance sequence SQL")
		return 0, fmt.Errorf("failed to build advance sequence query: %w", err)
	}

	var value int
	if err := r.conn(ctx).QueryRow(ctx, sql, args...).Scan(&value); err != nil {
		logger.Error().Err(err).Int("year", year).Str("scope", scope).Msg("Error advancing student id sequence")
		return 0, fmt.Errorf("error advancing student id sequence: %w", err)
	}
	return value, nil
}
