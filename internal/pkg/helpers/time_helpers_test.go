package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateHelpers(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	ts := time.Date(2025, time.June, 14, 23, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC), DateOf(ts))
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), MonthStart(ts))

	d, err := ParseDate("2025-02-28")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	_, err = ParseDate("28/02/2025")
	assert.Error(t, err)
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 90*time.Minute, ParseDuration("1h30m", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("soon", time.Hour))
}
