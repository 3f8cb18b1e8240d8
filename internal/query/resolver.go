package query

import (
	"context"
	"sort"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"

	"github.com/itihaas-labs/timeline-server/internal/model"
)

// EventSource is the slice of the store the resolver reads: already-validated
// events matching a spec, in no particular order.
type EventSource interface {
	ListEvents(ctx context.Context, spec Spec) ([]model.Event, error)
}

// Request is one read query after access gating: the temporal/tag/spatial
// filters plus the set of periods the requester is entitled to see.
type Request struct {
	Temporal     TemporalFilter
	Tags         []string
	Spatial      *SpatialFilter
	PeriodIDs    []string // entitled periods, already gate-filtered
	EventKind    string
	LocationKind string
	Scope        string
	Page         Page
}

// Resolver executes read queries against an event source.
type Resolver struct {
	src          EventSource
	defaultLimit int
}

// NewResolver returns a resolver using defaultLimit when a request does not
// set its own window size.
func NewResolver(src EventSource, defaultLimit int) *Resolver {
	return &Resolver{src: src, defaultLimit: defaultLimit}
}

// Query runs the full pipeline: store-side temporal/entitlement matching,
// tag and spatial post-filters, deterministic ordering, then pagination.
// The window is applied strictly last so it can never truncate the
// point/interval union mid-merge.
func (r *Resolver) Query(ctx context.Context, req Request) ([]model.Event, error) {
	if len(req.PeriodIDs) == 0 {
		return []model.Event{}, nil
	}

	events, err := r.src.ListEvents(ctx, Spec{
		Temporal:     req.Temporal,
		PeriodIDs:    req.PeriodIDs,
		EventKind:    req.EventKind,
		LocationKind: req.LocationKind,
		Scope:        req.Scope,
	})
	if err != nil {
		return nil, err
	}

	// Entitlement is enforced per row, not only in the spec: a store that
	// ignored the period predicate must still not leak gated events.
	entitled := make(map[string]struct{}, len(req.PeriodIDs))
	for _, id := range req.PeriodIDs {
		entitled[id] = struct{}{}
	}

	var tagSet map[string]struct{}
	if len(req.Tags) > 0 {
		tagSet = model.TagSet(req.Tags)
	}

	matched := events[:0]
	for i := range events {
		e := &events[i]
		if _, ok := entitled[e.PeriodID]; !ok {
			continue
		}
		if tagSet != nil && !e.HasAnyTag(tagSet) {
			continue
		}
		if req.Spatial != nil && !withinRadius(e, req.Spatial) {
			continue
		}
		matched = append(matched, *e)
	}

	sortEvents(matched)
	return window(matched, req.Page, r.defaultLimit), nil
}

// withinRadius applies the bounding-circle proximity check. Events without a
// plottable coordinate are excluded, never silently included.
func withinRadius(e *model.Event, f *SpatialFilter) bool {
	lat, lng, ok := e.Location.Coordinates()
	if !ok {
		return false
	}
	d := xy.Distance(geom.Coord{lng, lat}, geom.Coord{f.Lng, f.Lat})
	return d <= f.RadiusDeg
}

// sortEvents orders ascending by effective year (interval events by start
// year), exact date descending as tiebreak, then ID for full determinism.
func sortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		yi, yj := events[i].Temporal.EffectiveYear(), events[j].Temporal.EffectiveYear()
		if yi != yj {
			return yi < yj
		}
		di, dj := events[i].Temporal.EffectiveDate(), events[j].Temporal.EffectiveDate()
		switch {
		case di != nil && dj != nil && !di.Equal(*dj):
			return di.After(*dj)
		case di != nil && dj == nil:
			return true
		case di == nil && dj != nil:
			return false
		}
		return events[i].ID < events[j].ID
	})
}

func window(events []model.Event, p Page, defaultLimit int) []model.Event {
	skip := p.Skip
	if skip < 0 {
		skip = 0
	}
	if skip >= len(events) {
		return []model.Event{}
	}
	events = events[skip:]

	limit := p.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > 0 && limit < len(events) {
		events = events[:limit]
	}
	return events
}
