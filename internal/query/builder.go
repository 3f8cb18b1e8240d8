package query

import (
	"fmt"
	"strings"
	"time"
)

// Spec is the store-executable part of a request: the predicates that belong
// in SQL so the temporal bounds hit the year/date indexes instead of scanning
// the whole collection.
type Spec struct {
	Temporal     TemporalFilter
	PeriodIDs    []string
	EventKind    string
	LocationKind string
	Scope        string
}

// Dialect selects the SQL placeholder style.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// validColumns is an allowlist of column names that may appear in generated
// predicates. This prevents filter parameters from smuggling SQL fragments.
var validColumns = map[string]bool{
	"event_type":       true,
	"location_type":    true,
	"geographic_scope": true,
	"period_id":        true,
}

// Builder composes named predicates into a WHERE clause. Each Add* method
// contributes one self-contained predicate; predicates are ANDed together and
// the point/interval union inside a temporal predicate is an explicit OR.
type Builder struct {
	dialect Dialect
	conds   []string
	args    []any
}

// NewBuilder returns a builder for the given dialect.
func NewBuilder(d Dialect) *Builder {
	return &Builder{dialect: d}
}

func (b *Builder) bind(v any) string {
	b.args = append(b.args, v)
	if b.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", len(b.args))
	}
	return "?"
}

// AddTemporal contributes the temporal predicate. Point and interval events
// are matched by different comparisons and merged with OR: an interval has no
// single year to compare against a point query.
func (b *Builder) AddTemporal(f TemporalFilter) {
	switch f.Kind {
	case TemporalYear:
		b.conds = append(b.conds, fmt.Sprintf(
			"((event_type = 'point' AND year = %s) OR (event_type = 'period' AND start_year <= %s AND end_year >= %s))",
			b.bind(f.Year), b.bind(f.Year), b.bind(f.Year),
		))

	case TemporalRange:
		var point, interval []string
		// Point events fall inside the range; interval events overlap it
		// (end >= A and start <= B), which also admits partial overlap.
		if f.StartYear != nil {
			point = append(point, fmt.Sprintf("year >= %s", b.bind(*f.StartYear)))
			interval = append(interval, fmt.Sprintf("end_year >= %s", b.bind(*f.StartYear)))
		}
		if f.EndYear != nil {
			point = append(point, fmt.Sprintf("year <= %s", b.bind(*f.EndYear)))
			interval = append(interval, fmt.Sprintf("start_year <= %s", b.bind(*f.EndYear)))
		}
		if len(point) == 0 {
			return
		}
		b.conds = append(b.conds, fmt.Sprintf(
			"((event_type = 'point' AND %s) OR (event_type = 'period' AND %s))",
			strings.Join(point, " AND "), strings.Join(interval, " AND "),
		))

	case TemporalDate:
		day := f.Date
		next := day.Add(24 * time.Hour)
		b.conds = append(b.conds, fmt.Sprintf(
			"((event_type = 'point' AND date >= %s AND date < %s) OR (event_type = 'period' AND start_date <= %s AND end_date >= %s))",
			b.bind(day), b.bind(next), b.bind(day), b.bind(day),
		))
	}
}

// AddPeriods restricts rows to the entitled period set.
func (b *Builder) AddPeriods(ids []string) {
	if len(ids) == 0 {
		// Nothing entitled: a predicate that matches no rows, so a caller
		// that skips the resolver short-circuit still leaks nothing.
		b.conds = append(b.conds, "1 = 0")
		return
	}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = b.bind(id)
	}
	b.conds = append(b.conds, fmt.Sprintf("period_id IN (%s)", strings.Join(placeholders, ", ")))
}

// AddEquals contributes a simple equality predicate on an allowlisted column.
func (b *Builder) AddEquals(column, value string) error {
	if !validColumns[column] {
		return invalidFilter("unknown filter column %q", column)
	}
	b.conds = append(b.conds, fmt.Sprintf("%s = %s", column, b.bind(value)))
	return nil
}

// Apply contributes every predicate of a spec.
func (b *Builder) Apply(s Spec) error {
	b.AddTemporal(s.Temporal)
	b.AddPeriods(s.PeriodIDs)
	if s.EventKind != "" {
		if err := b.AddEquals("event_type", s.EventKind); err != nil {
			return err
		}
	}
	if s.LocationKind != "" {
		if err := b.AddEquals("location_type", s.LocationKind); err != nil {
			return err
		}
	}
	if s.Scope != "" {
		if err := b.AddEquals("geographic_scope", s.Scope); err != nil {
			return err
		}
	}
	return nil
}

// Where renders the composed predicates as a WHERE clause with bind args.
// Returns an empty clause when no predicate was added.
func (b *Builder) Where() (string, []any) {
	if len(b.conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(b.conds, " AND "), b.args
}
