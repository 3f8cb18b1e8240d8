// Package validate normalizes candidate event payloads into invariant-holding
// model.Event records. Checks run in a fixed order and the first failure wins,
// so callers (and tests) see a deterministic error for any given payload.
package validate

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itihaas-labs/timeline-server/internal/model"
)

// Rules carries the domain constants the validator applies.
type Rules struct {
	// ModernEraYear is the first year for which events must carry an exact
	// calendar date. Applies independently to point years and to each bound
	// of an interval.
	ModernEraYear int
}

// EventInput is a candidate event as it arrives from a create or update
// request. All variant fields are pointers: nil means "not supplied", which
// keeps zero (year 0, latitude 0) distinct from absent.
type EventInput struct {
	Title               string     `json:"title"`
	Summary             string     `json:"summary"`
	Description         string     `json:"description"`
	DescriptionHindi    string     `json:"description_hindi"`
	DescriptionHinglish string     `json:"description_hinglish"`
	EventType           string     `json:"event_type"`
	Year                *int       `json:"year"`
	Date                *time.Time `json:"date"`
	StartYear           *int       `json:"start_year"`
	EndYear             *int       `json:"end_year"`
	StartDate           *time.Time `json:"start_date"`
	EndDate             *time.Time `json:"end_date"`
	LocationType        string     `json:"location_type"`
	Latitude            *float64   `json:"latitude"`
	Longitude           *float64   `json:"longitude"`
	PlaceName           string     `json:"place_name"`
	GeographicScope     string     `json:"geographic_scope"`
	AreaName            string     `json:"area_name"`
	PeriodID            string     `json:"period_id"`
	Tags                []string   `json:"tags"`
	MediaIDs            []string   `json:"media_ids"`
}

// Validate checks in against the event invariants and returns a normalized
// event, or the single *ValidationError describing the first violation.
//
// Building the temporal and location variants from scratch is what implements
// the purge rule: fields belonging to the other variant are never copied, so
// switching event_type or location_type on update cannot leave stale values
// behind.
func Validate(in EventInput, rules Rules) (*model.Event, error) {
	temporal, err := validateTemporal(in, rules)
	if err != nil {
		return nil, err
	}

	location, err := validateLocation(in)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, missingField("title", "events require a title")
	}
	if strings.TrimSpace(in.Summary) == "" {
		return nil, missingField("summary", "events require a summary")
	}
	if in.PeriodID == "" {
		return nil, missingField("period_id", "events require a period_id")
	}
	if _, err := uuid.Parse(in.PeriodID); err != nil {
		return nil, missingField("period_id", "period_id must be a valid identifier")
	}

	return &model.Event{
		Title:               strings.TrimSpace(in.Title),
		Summary:             strings.TrimSpace(in.Summary),
		Description:         strings.TrimSpace(in.Description),
		DescriptionHindi:    strings.TrimSpace(in.DescriptionHindi),
		DescriptionHinglish: strings.TrimSpace(in.DescriptionHinglish),
		Temporal:            *temporal,
		Location:            *location,
		PeriodID:            in.PeriodID,
		Tags:                model.DedupTags(in.Tags),
		MediaIDs:            in.MediaIDs,
	}, nil
}

func validateTemporal(in EventInput, rules Rules) (*model.Temporal, error) {
	kind := model.EventKind(in.EventType)
	if kind == "" {
		kind = model.EventPoint
	}

	switch kind {
	case model.EventPoint:
		if in.Year == nil {
			return nil, missingField("year", "point events require a year")
		}
		if *in.Year >= rules.ModernEraYear && in.Date == nil {
			return nil, &ValidationError{
				Kind:    MissingRequiredDate,
				Field:   "date",
				Message: "point events in the modern era require a specific date",
			}
		}
		return &model.Temporal{
			Kind:  model.EventPoint,
			Point: &model.PointTime{Year: *in.Year, Date: in.Date},
		}, nil

	case model.EventInterval:
		if in.StartYear == nil {
			return nil, missingField("start_year", "period events require a start_year")
		}
		if in.EndYear == nil {
			return nil, missingField("end_year", "period events require an end_year")
		}
		if *in.EndYear < *in.StartYear {
			return nil, &ValidationError{
				Kind:    InvalidRange,
				Field:   "end_year",
				Message: "end_year must be greater than or equal to start_year",
			}
		}
		if *in.StartYear >= rules.ModernEraYear && in.StartDate == nil {
			return nil, &ValidationError{
				Kind:    MissingRequiredDate,
				Field:   "start_date",
				Message: "period events starting in the modern era require a start_date",
			}
		}
		if *in.EndYear >= rules.ModernEraYear && in.EndDate == nil {
			return nil, &ValidationError{
				Kind:    MissingRequiredDate,
				Field:   "end_date",
				Message: "period events ending in the modern era require an end_date",
			}
		}
		if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
			return nil, &ValidationError{
				Kind:    InvalidDateRange,
				Field:   "end_date",
				Message: "end_date must be greater than or equal to start_date",
			}
		}
		return &model.Temporal{
			Kind: model.EventInterval,
			Interval: &model.IntervalTime{
				StartYear: *in.StartYear,
				EndYear:   *in.EndYear,
				StartDate: in.StartDate,
				EndDate:   in.EndDate,
			},
		}, nil
	}

	return nil, missingField("event_type", "event_type must be point or period")
}

func validateLocation(in EventInput) (*model.Location, error) {
	kind := model.LocationKind(in.LocationType)
	if kind == "" {
		kind = model.LocationPoint
	}

	switch kind {
	case model.LocationPoint:
		if in.Latitude == nil || in.Longitude == nil {
			return nil, missingField("latitude", "point locations require latitude and longitude")
		}
		if *in.Latitude < -90 || *in.Latitude > 90 {
			return nil, &ValidationError{
				Kind:    InvalidCoordinate,
				Field:   "latitude",
				Message: "latitude must be between -90 and 90",
			}
		}
		if *in.Longitude < -180 || *in.Longitude > 180 {
			return nil, &ValidationError{
				Kind:    InvalidCoordinate,
				Field:   "longitude",
				Message: "longitude must be between -180 and 180",
			}
		}
		return &model.Location{
			Kind: model.LocationPoint,
			Point: &model.PointLocation{
				Latitude:  *in.Latitude,
				Longitude: *in.Longitude,
				PlaceName: strings.TrimSpace(in.PlaceName),
			},
		}, nil

	case model.LocationArea:
		if in.GeographicScope == "" {
			return nil, missingField("geographic_scope", "area locations require a geographic_scope")
		}
		scope := model.GeographicScope(in.GeographicScope)
		if !model.ValidScope(scope) {
			return nil, &ValidationError{
				Kind:    InvalidScope,
				Field:   "geographic_scope",
				Message: "geographic_scope must be one of country, state, district, region",
			}
		}
		if strings.TrimSpace(in.AreaName) == "" {
			return nil, missingField("area_name", "area locations require an area_name")
		}
		area := &model.AreaLocation{
			Scope: scope,
			Name:  strings.TrimSpace(in.AreaName),
		}
		// Representative coordinates survive the variant switch; they are
		// optional for areas but must still be plausible when supplied.
		if in.Latitude != nil && in.Longitude != nil {
			if *in.Latitude < -90 || *in.Latitude > 90 {
				return nil, &ValidationError{
					Kind:    InvalidCoordinate,
					Field:   "latitude",
					Message: "latitude must be between -90 and 90",
				}
			}
			if *in.Longitude < -180 || *in.Longitude > 180 {
				return nil, &ValidationError{
					Kind:    InvalidCoordinate,
					Field:   "longitude",
					Message: "longitude must be between -180 and 180",
				}
			}
			area.Latitude = in.Latitude
			area.Longitude = in.Longitude
		}
		return &model.Location{Kind: model.LocationArea, Area: area}, nil
	}

	return nil, missingField("location_type", "location_type must be point or area")
}

func missingField(field, msg string) *ValidationError {
	return &ValidationError{Kind: MissingRequiredField, Field: field, Message: msg}
}
