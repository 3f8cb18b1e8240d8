package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_YearPredicate(t *testing.T) {
	b := NewBuilder(DialectSQLite)
	b.AddTemporal(TemporalFilter{Kind: TemporalYear, Year: 1857})

	where, args := b.Where()
	assert.Equal(t,
		" WHERE ((event_type = 'point' AND year = ?) OR (event_type = 'period' AND start_year <= ? AND end_year >= ?))",
		where)
	assert.Equal(t, []any{1857, 1857, 1857}, args)
}

func TestBuilder_YearPredicatePostgres(t *testing.T) {
	b := NewBuilder(DialectPostgres)
	b.AddTemporal(TemporalFilter{Kind: TemporalYear, Year: 1857})

	where, args := b.Where()
	assert.Equal(t,
		" WHERE ((event_type = 'point' AND year = $1) OR (event_type = 'period' AND start_year <= $2 AND end_year >= $3))",
		where)
	assert.Len(t, args, 3)
}

func TestBuilder_RangePredicate(t *testing.T) {
	start, end := 1200, 1500
	b := NewBuilder(DialectSQLite)
	b.AddTemporal(TemporalFilter{Kind: TemporalRange, StartYear: &start, EndYear: &end})

	where, args := b.Where()
	// Interval events match on overlap, not containment.
	assert.Equal(t,
		" WHERE ((event_type = 'point' AND year >= ? AND year <= ?) OR (event_type = 'period' AND end_year >= ? AND start_year <= ?))",
		where)
	assert.Equal(t, []any{1200, 1500, 1200, 1500}, args)
}

func TestBuilder_OpenRangePredicate(t *testing.T) {
	start := 1947
	b := NewBuilder(DialectSQLite)
	b.AddTemporal(TemporalFilter{Kind: TemporalRange, StartYear: &start})

	where, args := b.Where()
	assert.Equal(t,
		" WHERE ((event_type = 'point' AND year >= ?) OR (event_type = 'period' AND end_year >= ?))",
		where)
	assert.Equal(t, []any{1947, 1947}, args)
}

func TestBuilder_DatePredicateHalfOpenDay(t *testing.T) {
	day := time.Date(1947, 8, 15, 0, 0, 0, 0, time.UTC)
	b := NewBuilder(DialectSQLite)
	b.AddTemporal(TemporalFilter{Kind: TemporalDate, Date: day})

	where, args := b.Where()
	assert.Equal(t,
		" WHERE ((event_type = 'point' AND date >= ? AND date < ?) OR (event_type = 'period' AND start_date <= ? AND end_date >= ?))",
		where)
	require.Len(t, args, 4)
	assert.Equal(t, day, args[0])
	assert.Equal(t, day.Add(24*time.Hour), args[1])
}

func TestBuilder_Periods(t *testing.T) {
	b := NewBuilder(DialectSQLite)
	b.AddPeriods([]string{"a", "b"})

	where, args := b.Where()
	assert.Equal(t, " WHERE period_id IN (?, ?)", where)
	assert.Equal(t, []any{"a", "b"}, args)
}

func TestBuilder_EmptyPeriodsMatchesNothing(t *testing.T) {
	b := NewBuilder(DialectSQLite)
	b.AddPeriods(nil)

	where, args := b.Where()
	assert.Equal(t, " WHERE 1 = 0", where)
	assert.Empty(t, args)
}

func TestBuilder_EqualsAllowlist(t *testing.T) {
	b := NewBuilder(DialectSQLite)
	require.NoError(t, b.AddEquals("event_type", "point"))

	err := b.AddEquals("title; DROP TABLE events", "x")
	requireInvalidFilter(t, err)

	where, args := b.Where()
	assert.Equal(t, " WHERE event_type = ?", where)
	assert.Equal(t, []any{"point"}, args)
}

func TestBuilder_ApplyComposesWithAND(t *testing.T) {
	b := NewBuilder(DialectSQLite)
	require.NoError(t, b.Apply(Spec{
		Temporal:  TemporalFilter{Kind: TemporalYear, Year: 1947},
		PeriodIDs: []string{"p1"},
		EventKind: "point",
		Scope:     "state",
	}))

	where, args := b.Where()
	assert.Contains(t, where, ") AND period_id IN (?) AND event_type = ? AND geographic_scope = ?")
	assert.Len(t, args, 6)
}

func TestBuilder_NoPredicates(t *testing.T) {
	b := NewBuilder(DialectSQLite)
	where, args := b.Where()
	assert.Empty(t, where)
	assert.Nil(t, args)
}
