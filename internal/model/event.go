package model

import "time"

// EventKind distinguishes instantaneous events from events spanning years.
type EventKind string

const (
	EventPoint    EventKind = "point"
	EventInterval EventKind = "period"
)

// LocationKind distinguishes coordinate locations from named areas.
type LocationKind string

const (
	LocationPoint LocationKind = "point"
	LocationArea  LocationKind = "area"
)

// GeographicScope is the administrative level of an area location.
type GeographicScope string

const (
	ScopeCountry  GeographicScope = "country"
	ScopeState    GeographicScope = "state"
	ScopeDistrict GeographicScope = "district"
	ScopeRegion   GeographicScope = "region"
)

// ValidScope reports whether s is one of the recognized scope levels.
func ValidScope(s GeographicScope) bool {
	switch s {
	case ScopeCountry, ScopeState, ScopeDistrict, ScopeRegion:
		return true
	}
	return false
}

// PointTime dates an instantaneous event. Year is signed; negative means BCE.
// Date is required for modern-era events (see validate.Rules).
type PointTime struct {
	Year int        `json:"year"`
	Date *time.Time `json:"date,omitempty"`
}

// IntervalTime dates an event spanning a year range. EndYear >= StartYear;
// a single-year interval (EndYear == StartYear) is valid.
type IntervalTime struct {
	StartYear int        `json:"start_year"`
	EndYear   int        `json:"end_year"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// Temporal is the dating variant of an event. Exactly one of Point/Interval is
// non-nil, matching Kind. Constructing the active variant rather than clearing
// the inactive one is what keeps stale cross-variant fields impossible.
type Temporal struct {
	Kind     EventKind     `json:"kind"`
	Point    *PointTime    `json:"point,omitempty"`
	Interval *IntervalTime `json:"interval,omitempty"`
}

// EffectiveYear is the year an event sorts and matches by: the year itself for
// point events, the start year for interval events.
func (t Temporal) EffectiveYear() int {
	if t.Kind == EventInterval && t.Interval != nil {
		return t.Interval.StartYear
	}
	if t.Point != nil {
		return t.Point.Year
	}
	return 0
}

// EffectiveDate is the calendar date used as a sort tiebreak: the exact date
// for point events, the start date for interval events. Nil when undated.
func (t Temporal) EffectiveDate() *time.Time {
	if t.Kind == EventInterval && t.Interval != nil {
		return t.Interval.StartDate
	}
	if t.Point != nil {
		return t.Point.Date
	}
	return nil
}

// PointLocation is a lat/long location.
type PointLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PlaceName string  `json:"place_name,omitempty"`
}

// AreaLocation is a named region at an administrative scope. Latitude and
// Longitude, when present, are a representative point for map centering only.
type AreaLocation struct {
	Scope     GeographicScope `json:"geographic_scope"`
	Name      string          `json:"area_name"`
	Latitude  *float64        `json:"latitude,omitempty"`
	Longitude *float64        `json:"longitude,omitempty"`
}

// Location is the spatial variant of an event. Exactly one of Point/Area is
// non-nil, matching Kind.
type Location struct {
	Kind  LocationKind   `json:"kind"`
	Point *PointLocation `json:"point,omitempty"`
	Area  *AreaLocation  `json:"area,omitempty"`
}

// Coordinates returns the event's plottable coordinate, if it has one: the
// location itself for point locations, the representative point (when set)
// for area locations.
func (l Location) Coordinates() (lat, lng float64, ok bool) {
	switch l.Kind {
	case LocationPoint:
		if l.Point != nil {
			return l.Point.Latitude, l.Point.Longitude, true
		}
	case LocationArea:
		if l.Area != nil && l.Area.Latitude != nil && l.Area.Longitude != nil {
			return *l.Area.Latitude, *l.Area.Longitude, true
		}
	}
	return 0, 0, false
}

// Event is a validated timeline event. Instances are produced by the validate
// package on the write path; the query resolver only ever sees records that
// already satisfy the variant invariants.
type Event struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Summary             string    `json:"summary"`
	Description         string    `json:"description,omitempty"`
	DescriptionHindi    string    `json:"description_hindi,omitempty"`
	DescriptionHinglish string    `json:"description_hinglish,omitempty"`
	Temporal            Temporal  `json:"temporal"`
	Location            Location  `json:"location"`
	PeriodID            string    `json:"period_id"`
	Tags                []string  `json:"tags,omitempty"`
	MediaIDs            []string  `json:"media_ids,omitempty"`
	CreatedBy           string    `json:"created_by,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// HasAnyTag reports whether the event carries at least one of the requested
// tags. Matching is case-insensitive to mirror tag dedup on the write path.
func (e *Event) HasAnyTag(requested map[string]struct{}) bool {
	for _, t := range e.Tags {
		if _, ok := requested[foldTag(t)]; ok {
			return true
		}
	}
	return false
}

// Period is a historical era owned by the CRUD layer. The core reads it for
// its year bounds and gating flag only.
type Period struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	StartYear            int    `json:"start_year"`
	EndYear              int    `json:"end_year"`
	RequiresSubscription bool   `json:"requires_subscription"`
}

// Subscription is an entitlement record granting access to gated periods.
type Subscription struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	PlanID        string    `json:"plan_id"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	IsActive      bool      `json:"is_active"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	PaymentAmount float64   `json:"payment_amount,omitempty"`
	PaymentID     string    `json:"payment_id,omitempty"`
	OrderID       string    `json:"order_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ActiveAt reports whether the subscription entitles its holder at the given
// instant: the active flag is set and the end date is strictly in the future.
func (s *Subscription) ActiveAt(now time.Time) bool {
	return s != nil && s.IsActive && s.EndDate.After(now)
}

// Role is the requester's privilege level as resolved by the auth layer.
type Role string

const (
	RoleAnonymous Role = ""
	RoleUser      Role = "user"
	RoleAdmin     Role = "admin"
)

// Requester is the per-request identity handed to the access gate and the
// admin-only handlers.
type Requester struct {
	UserID string `json:"user_id,omitempty"`
	Role   Role   `json:"role,omitempty"`
}
