package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecAcceptsStandardForms(t *testing.T) {
	exprs := []string{
		"* * * * *",
		"0 9 * * *",
		"*/15 * * * *",
		"0 0 1,15 * *",
		"30 8-17 * * 1-5",
		"0 12 * JAN,jul *",
		"0 6 * * mon",
		"@hourly",
		"@daily",
		"@midnight",
		"@weekly",
		"@monthly",
		"@yearly",
		"@annually",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseSpec(expr)
			assert.NoError(t, err)
		})
	}
}

func TestParseSpecRejectsMalformedExpressions(t *testing.T) {
	exprs := []string{
		"",
		"* * * *",
		"* * * * * *",
		"61 * * * *",
		"* 25 * * *",
		"0 9 * * MONDAYS",
		"@fortnightly",
	}
	for _, expr := range exprs {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseSpec(expr)
			assert.Error(t, err)
		})
	}
}

func TestNextIsStrictlyAfter(t *testing.T) {
	spec, err := ParseSpec("0 9 * * *")
	require.NoError(t, err)

	// Exactly 09:00: the next run is tomorrow, never the same instant.
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)
	next, err := spec.Next(at)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local), next)

	before := time.Date(2026, 3, 10, 8, 59, 0, 0, time.Local)
	next, err = spec.Next(before)
	require.NoError(t, err)
	assert.Equal(t, at, next)
}

func TestNextHonorsSteps(t *testing.T) {
	spec, err := ParseSpec("*/15 * * * *")
	require.NoError(t, err)

	next, err := spec.Next(time.Date(2026, 3, 10, 9, 7, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 15, 0, 0, time.Local), next)
}

func TestNextDayFieldsUnion(t *testing.T) {
	// Both day fields restricted: the 13th OR a Friday fires, whichever
	// comes first.
	spec, err := ParseSpec("0 0 13 * 5")
	require.NoError(t, err)

	// From Tuesday the 10th the first match is Friday 2026-03-13; from the
	// 14th it is Friday the 20th, not April's 13th.
	next, err := spec.Next(time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 13, 0, 0, 0, 0, time.Local), next)

	next, err = spec.Next(time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.Local), next)
}

func TestNextMonthNames(t *testing.T) {
	spec, err := ParseSpec("0 12 1 feb *")
	require.NoError(t, err)

	next, err := spec.Next(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, 2, 1, 12, 0, 0, 0, time.Local), next)
}

func TestNextUnsatisfiableExpression(t *testing.T) {
	// February 30th never exists.
	spec, err := ParseSpec("0 0 30 2 *")
	require.NoError(t, err)

	_, err = spec.Next(time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run within four years")
}

func TestSpecStringKeepsExpression(t *testing.T) {
	spec, err := ParseSpec("@daily")
	require.NoError(t, err)
	assert.Equal(t, "@daily", spec.String())
}
