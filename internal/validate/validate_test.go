package validate

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itihaas-labs/timeline-server/internal/model"
)

var testRules = Rules{ModernEraYear: 1947}

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

func datep(y, m, d int) *time.Time {
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return &t
}

// validPointInput is a baseline payload that passes every check; tests
// mutate one field at a time.
func validPointInput() EventInput {
	return EventInput{
		Title:        "Battle of Plassey",
		Summary:      "Company victory in Bengal",
		EventType:    "point",
		Year:         intp(1757),
		LocationType: "point",
		Latitude:     floatp(23.8),
		Longitude:    floatp(88.25),
		PeriodID:     uuid.New().String(),
		Tags:         []string{"military", "political"},
	}
}

func requireKind(t *testing.T, err error, kind ErrorKind, field string) {
	t.Helper()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, kind, vErr.Kind)
	assert.Equal(t, field, vErr.Field)
}

func TestValidate_PointEvent(t *testing.T) {
	event, err := Validate(validPointInput(), testRules)
	require.NoError(t, err)

	assert.Equal(t, model.EventPoint, event.Temporal.Kind)
	require.NotNil(t, event.Temporal.Point)
	assert.Equal(t, 1757, event.Temporal.Point.Year)
	assert.Nil(t, event.Temporal.Interval)
}

func TestValidate_YearZeroIsPresent(t *testing.T) {
	// Year 0 is a defined value, not an absent one.
	in := validPointInput()
	in.Year = intp(0)

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Equal(t, 0, event.Temporal.Point.Year)
}

func TestValidate_PointMissingYear(t *testing.T) {
	in := validPointInput()
	in.Year = nil

	_, err := Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "year")
}

func TestValidate_ModernEraRequiresDate(t *testing.T) {
	in := validPointInput()
	in.Year = intp(2020)
	in.Date = nil

	_, err := Validate(in, testRules)
	requireKind(t, err, MissingRequiredDate, "date")

	// With a date it passes.
	in.Date = datep(2020, 6, 1)
	_, err = Validate(in, testRules)
	require.NoError(t, err)
}

func TestValidate_ModernEraBoundary(t *testing.T) {
	// 1946 needs no date; 1947 does.
	in := validPointInput()
	in.Year = intp(1946)
	_, err := Validate(in, testRules)
	require.NoError(t, err)

	in.Year = intp(1947)
	_, err = Validate(in, testRules)
	requireKind(t, err, MissingRequiredDate, "date")
}

func TestValidate_PointPurgesIntervalFields(t *testing.T) {
	// A payload carrying both variants keeps only the declared one.
	in := validPointInput()
	in.StartYear = intp(1700)
	in.EndYear = intp(1800)
	in.StartDate = datep(1700, 1, 1)

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Nil(t, event.Temporal.Interval)
	require.NotNil(t, event.Temporal.Point)
	assert.Equal(t, 1757, event.Temporal.Point.Year)
}

func TestValidate_IntervalEvent(t *testing.T) {
	in := validPointInput()
	in.EventType = "period"
	in.Year = intp(1200) // stale point field, must be purged
	in.StartYear = intp(1336)
	in.EndYear = intp(1565)

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Equal(t, model.EventInterval, event.Temporal.Kind)
	assert.Nil(t, event.Temporal.Point)
	require.NotNil(t, event.Temporal.Interval)
	assert.Equal(t, 1336, event.Temporal.Interval.StartYear)
	assert.Equal(t, 1565, event.Temporal.Interval.EndYear)
}

func TestValidate_IntervalMissingBounds(t *testing.T) {
	in := validPointInput()
	in.EventType = "period"
	in.StartYear = nil
	in.EndYear = intp(1500)
	_, err := Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "start_year")

	in.StartYear = intp(1400)
	in.EndYear = nil
	_, err = Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "end_year")
}

func TestValidate_IntervalZeroBoundsValid(t *testing.T) {
	in := validPointInput()
	in.EventType = "period"
	in.StartYear = intp(-100)
	in.EndYear = intp(0)

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Equal(t, 0, event.Temporal.Interval.EndYear)
}

func TestValidate_IntervalInvalidRange(t *testing.T) {
	in := validPointInput()
	in.EventType = "period"
	in.StartYear = intp(1500)
	in.EndYear = intp(1400)

	_, err := Validate(in, testRules)
	requireKind(t, err, InvalidRange, "end_year")
}

func TestValidate_IntervalSingleYearValid(t *testing.T) {
	in := validPointInput()
	in.EventType = "period"
	in.StartYear = intp(1300)
	in.EndYear = intp(1300)

	_, err := Validate(in, testRules)
	require.NoError(t, err)
}

func TestValidate_IntervalModernEraPerBound(t *testing.T) {
	// Start before 1947, end after: only end_date is required.
	in := validPointInput()
	in.EventType = "period"
	in.StartYear = intp(1940)
	in.EndYear = intp(1950)

	_, err := Validate(in, testRules)
	requireKind(t, err, MissingRequiredDate, "end_date")

	in.EndDate = datep(1950, 12, 31)
	_, err = Validate(in, testRules)
	require.NoError(t, err)

	// Both bounds modern: both dates required, start first.
	in2 := validPointInput()
	in2.EventType = "period"
	in2.StartYear = intp(1965)
	in2.EndYear = intp(1980)
	_, err = Validate(in2, testRules)
	requireKind(t, err, MissingRequiredDate, "start_date")
}

func TestValidate_IntervalInvalidDateRange(t *testing.T) {
	in := validPointInput()
	in.EventType = "period"
	in.StartYear = intp(1900)
	in.EndYear = intp(1910)
	in.StartDate = datep(1905, 1, 1)
	in.EndDate = datep(1902, 1, 1)

	_, err := Validate(in, testRules)
	requireKind(t, err, InvalidDateRange, "end_date")
}

func TestValidate_PointLocationZeroCoordinatesValid(t *testing.T) {
	in := validPointInput()
	in.Latitude = floatp(0)
	in.Longitude = floatp(0)

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Equal(t, 0.0, event.Location.Point.Latitude)
	assert.Equal(t, 0.0, event.Location.Point.Longitude)
}

func TestValidate_PointLocationMissingCoordinates(t *testing.T) {
	in := validPointInput()
	in.Longitude = nil

	_, err := Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "latitude")
}

func TestValidate_CoordinateBounds(t *testing.T) {
	in := validPointInput()
	in.Latitude = floatp(91)
	_, err := Validate(in, testRules)
	requireKind(t, err, InvalidCoordinate, "latitude")

	in = validPointInput()
	in.Longitude = floatp(-181)
	_, err = Validate(in, testRules)
	requireKind(t, err, InvalidCoordinate, "longitude")
}

func TestValidate_AreaLocation(t *testing.T) {
	in := validPointInput()
	in.LocationType = "area"
	in.GeographicScope = "state"
	in.AreaName = "Punjab"
	// Representative coordinates are optional but preserved.
	in.Latitude = floatp(30.9)
	in.Longitude = floatp(75.85)

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Equal(t, model.LocationArea, event.Location.Kind)
	assert.Nil(t, event.Location.Point)
	require.NotNil(t, event.Location.Area)
	assert.Equal(t, model.ScopeState, event.Location.Area.Scope)
	assert.Equal(t, "Punjab", event.Location.Area.Name)
	require.NotNil(t, event.Location.Area.Latitude)
	assert.InDelta(t, 30.9, *event.Location.Area.Latitude, 0.001)
}

func TestValidate_AreaWithoutCoordinates(t *testing.T) {
	in := validPointInput()
	in.LocationType = "area"
	in.GeographicScope = "country"
	in.AreaName = "India"
	in.Latitude = nil
	in.Longitude = nil

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Nil(t, event.Location.Area.Latitude)
	assert.Nil(t, event.Location.Area.Longitude)
}

func TestValidate_AreaInvalidScope(t *testing.T) {
	in := validPointInput()
	in.LocationType = "area"
	in.GeographicScope = "continent"
	in.AreaName = "Asia"

	_, err := Validate(in, testRules)
	requireKind(t, err, InvalidScope, "geographic_scope")
}

func TestValidate_AreaMissingName(t *testing.T) {
	in := validPointInput()
	in.LocationType = "area"
	in.GeographicScope = "region"
	in.AreaName = "  "

	_, err := Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "area_name")
}

func TestValidate_DescriptiveFields(t *testing.T) {
	in := validPointInput()
	in.Title = ""
	_, err := Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "title")

	in = validPointInput()
	in.Summary = "   "
	_, err = Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "summary")

	in = validPointInput()
	in.PeriodID = ""
	_, err = Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "period_id")

	in = validPointInput()
	in.PeriodID = "not-a-uuid"
	_, err = Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "period_id")
}

func TestValidate_TemporalCheckedBeforeLocation(t *testing.T) {
	// First failure wins: a payload broken in both dimensions reports the
	// temporal failure.
	in := validPointInput()
	in.Year = nil
	in.Latitude = nil

	_, err := Validate(in, testRules)
	requireKind(t, err, MissingRequiredField, "year")
}

func TestValidate_TagDedup(t *testing.T) {
	in := validPointInput()
	in.Tags = []string{"Battle", "religion", "battle", " BATTLE ", "religion"}

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Equal(t, []string{"Battle", "religion"}, event.Tags)
}

func TestValidate_HindiAndHinglishIndependent(t *testing.T) {
	in := validPointInput()
	in.DescriptionHindi = "hindi text"

	event, err := Validate(in, testRules)
	require.NoError(t, err)
	assert.Equal(t, "hindi text", event.DescriptionHindi)
	assert.Empty(t, event.DescriptionHinglish)
}
