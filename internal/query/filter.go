// Package query resolves read requests into ordered event sets. Temporal
// matching is pushed into the store as index-friendly range predicates; tag
// and spatial filtering, ordering and pagination happen on the matched rows.
package query

import (
	"fmt"
	"strconv"
	"time"
)

// TemporalKind selects which temporal predicate a request carries.
type TemporalKind int

const (
	TemporalNone TemporalKind = iota
	TemporalYear
	TemporalRange
	TemporalDate
)

// TemporalFilter is the parsed temporal constraint of a request. For
// TemporalRange either bound may be nil, giving an open-ended range.
type TemporalFilter struct {
	Kind      TemporalKind
	Year      int
	StartYear *int
	EndYear   *int
	Date      time.Time
}

// SpatialFilter keeps events within RadiusDeg degrees (plain Euclidean
// distance, a bounding-circle approximation good enough at city scale) of a
// reference coordinate. Events without a plottable coordinate never match.
type SpatialFilter struct {
	Lat       float64
	Lng       float64
	RadiusDeg float64
}

// Page is a result window applied after filtering and sorting.
type Page struct {
	Skip  int
	Limit int
}

// ParseTemporal builds a TemporalFilter from raw query parameters. A single
// year takes precedence over a range, which takes precedence over a date.
// Malformed input is an *Error with KindInvalidFilter, never an empty result:
// callers must be able to tell "no data" from "bad request".
func ParseTemporal(year, startYear, endYear, date string) (TemporalFilter, error) {
	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return TemporalFilter{}, invalidFilter("year must be an integer, got %q", year)
		}
		return TemporalFilter{Kind: TemporalYear, Year: y}, nil
	}

	if startYear != "" || endYear != "" {
		f := TemporalFilter{Kind: TemporalRange}
		if startYear != "" {
			y, err := strconv.Atoi(startYear)
			if err != nil {
				return TemporalFilter{}, invalidFilter("start_year must be an integer, got %q", startYear)
			}
			f.StartYear = &y
		}
		if endYear != "" {
			y, err := strconv.Atoi(endYear)
			if err != nil {
				return TemporalFilter{}, invalidFilter("end_year must be an integer, got %q", endYear)
			}
			f.EndYear = &y
		}
		if f.StartYear != nil && f.EndYear != nil && *f.EndYear < *f.StartYear {
			return TemporalFilter{}, invalidFilter("end_year %d precedes start_year %d", *f.EndYear, *f.StartYear)
		}
		return f, nil
	}

	if date != "" {
		d, err := parseDay(date)
		if err != nil {
			return TemporalFilter{}, invalidFilter("date must be YYYY-MM-DD or RFC 3339, got %q", date)
		}
		return TemporalFilter{Kind: TemporalDate, Date: d}, nil
	}

	return TemporalFilter{Kind: TemporalNone}, nil
}

// parseDay accepts a calendar day or a full timestamp and truncates to the
// UTC day, so date matching works on the half-open window [D, D+24h).
func parseDay(s string) (time.Time, error) {
	if d, err := time.Parse("2006-01-02", s); err == nil {
		return d.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC().Truncate(24 * time.Hour), nil
}

// ParseSpatial builds a SpatialFilter from "lat,lng" form parameters.
func ParseSpatial(near string, radiusDeg float64) (*SpatialFilter, error) {
	if near == "" {
		return nil, nil
	}
	var lat, lng float64
	if _, err := fmt.Sscanf(near, "%f,%f", &lat, &lng); err != nil {
		return nil, invalidFilter("near must be lat,lng, got %q", near)
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, invalidFilter("near coordinate %q out of bounds", near)
	}
	return &SpatialFilter{Lat: lat, Lng: lng, RadiusDeg: radiusDeg}, nil
}
