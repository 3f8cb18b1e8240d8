package store

import (
	"database/sql"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/itihaas-labs/timeline-server/internal/model"
)

// eventColumns is the canonical column order shared by both drivers. Keep in
// sync with eventRow scan order and the insert statements.
const eventColumns = `id, title, summary, description, description_hindi, description_hinglish,
	event_type, year, date, start_year, end_year, start_date, end_date,
	location_type, latitude, longitude, place_name, geographic_scope, area_name,
	period_id, tags, media_ids, created_by, created_at, updated_at`

// eventRow is the flat storage shape of an event: one nullable column per
// variant field. The tagged model is rebuilt on read, so only the active
// variant's columns are ever populated on write.
type eventRow struct {
	id                  string
	title               string
	summary             string
	description         sql.NullString
	descriptionHindi    sql.NullString
	descriptionHinglish sql.NullString
	eventType           string
	year                sql.NullInt64
	date                sql.NullTime
	startYear           sql.NullInt64
	endYear             sql.NullInt64
	startDate           sql.NullTime
	endDate             sql.NullTime
	locationType        string
	latitude            sql.NullFloat64
	longitude           sql.NullFloat64
	placeName           sql.NullString
	geographicScope     sql.NullString
	areaName            sql.NullString
	periodID            string
	tags                sql.NullString
	mediaIDs            sql.NullString
	createdBy           sql.NullString
	createdAt           sql.NullTime
	updatedAt           sql.NullTime
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func rowFromEvent(e *model.Event) (*eventRow, error) {
	r := &eventRow{
		id:                  e.ID,
		title:               e.Title,
		summary:             e.Summary,
		description:         nullStr(e.Description),
		descriptionHindi:    nullStr(e.DescriptionHindi),
		descriptionHinglish: nullStr(e.DescriptionHinglish),
		eventType:           string(e.Temporal.Kind),
		locationType:        string(e.Location.Kind),
		periodID:            e.PeriodID,
		createdBy:           nullStr(e.CreatedBy),
		createdAt:           sql.NullTime{Time: e.CreatedAt, Valid: !e.CreatedAt.IsZero()},
		updatedAt:           sql.NullTime{Time: e.UpdatedAt, Valid: !e.UpdatedAt.IsZero()},
	}

	switch e.Temporal.Kind {
	case model.EventPoint:
		if e.Temporal.Point == nil {
			return nil, eris.New("store: point event without point temporal")
		}
		r.year = sql.NullInt64{Int64: int64(e.Temporal.Point.Year), Valid: true}
		if d := e.Temporal.Point.Date; d != nil {
			r.date = sql.NullTime{Time: *d, Valid: true}
		}
	case model.EventInterval:
		if e.Temporal.Interval == nil {
			return nil, eris.New("store: period event without interval temporal")
		}
		iv := e.Temporal.Interval
		r.startYear = sql.NullInt64{Int64: int64(iv.StartYear), Valid: true}
		r.endYear = sql.NullInt64{Int64: int64(iv.EndYear), Valid: true}
		if iv.StartDate != nil {
			r.startDate = sql.NullTime{Time: *iv.StartDate, Valid: true}
		}
		if iv.EndDate != nil {
			r.endDate = sql.NullTime{Time: *iv.EndDate, Valid: true}
		}
	default:
		return nil, eris.Errorf("store: unknown event kind %q", e.Temporal.Kind)
	}

	switch e.Location.Kind {
	case model.LocationPoint:
		if e.Location.Point == nil {
			return nil, eris.New("store: point location without coordinates")
		}
		r.latitude = sql.NullFloat64{Float64: e.Location.Point.Latitude, Valid: true}
		r.longitude = sql.NullFloat64{Float64: e.Location.Point.Longitude, Valid: true}
		r.placeName = nullStr(e.Location.Point.PlaceName)
	case model.LocationArea:
		if e.Location.Area == nil {
			return nil, eris.New("store: area location without area")
		}
		a := e.Location.Area
		r.geographicScope = nullStr(string(a.Scope))
		r.areaName = nullStr(a.Name)
		if a.Latitude != nil && a.Longitude != nil {
			r.latitude = sql.NullFloat64{Float64: *a.Latitude, Valid: true}
			r.longitude = sql.NullFloat64{Float64: *a.Longitude, Valid: true}
		}
	default:
		return nil, eris.Errorf("store: unknown location kind %q", e.Location.Kind)
	}

	if len(e.Tags) > 0 {
		tagsJSON, err := json.Marshal(e.Tags)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal tags")
		}
		r.tags = nullStr(string(tagsJSON))
	}
	if len(e.MediaIDs) > 0 {
		mediaJSON, err := json.Marshal(e.MediaIDs)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal media ids")
		}
		r.mediaIDs = nullStr(string(mediaJSON))
	}

	return r, nil
}

func (r *eventRow) args() []any {
	return []any{
		r.id, r.title, r.summary, r.description, r.descriptionHindi, r.descriptionHinglish,
		r.eventType, r.year, r.date, r.startYear, r.endYear, r.startDate, r.endDate,
		r.locationType, r.latitude, r.longitude, r.placeName, r.geographicScope, r.areaName,
		r.periodID, r.tags, r.mediaIDs, r.createdBy, r.createdAt, r.updatedAt,
	}
}

type scannable interface {
	Scan(dest ...any) error
}

func scanEventRow(row scannable) (*eventRow, error) {
	var r eventRow
	err := row.Scan(
		&r.id, &r.title, &r.summary, &r.description, &r.descriptionHindi, &r.descriptionHinglish,
		&r.eventType, &r.year, &r.date, &r.startYear, &r.endYear, &r.startDate, &r.endDate,
		&r.locationType, &r.latitude, &r.longitude, &r.placeName, &r.geographicScope, &r.areaName,
		&r.periodID, &r.tags, &r.mediaIDs, &r.createdBy, &r.createdAt, &r.updatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *eventRow) toEvent() (*model.Event, error) {
	e := &model.Event{
		ID:                  r.id,
		Title:               r.title,
		Summary:             r.summary,
		Description:         r.description.String,
		DescriptionHindi:    r.descriptionHindi.String,
		DescriptionHinglish: r.descriptionHinglish.String,
		PeriodID:            r.periodID,
		CreatedBy:           r.createdBy.String,
		CreatedAt:           r.createdAt.Time,
		UpdatedAt:           r.updatedAt.Time,
	}

	switch model.EventKind(r.eventType) {
	case model.EventInterval:
		iv := &model.IntervalTime{
			StartYear: int(r.startYear.Int64),
			EndYear:   int(r.endYear.Int64),
		}
		if r.startDate.Valid {
			t := r.startDate.Time.UTC()
			iv.StartDate = &t
		}
		if r.endDate.Valid {
			t := r.endDate.Time.UTC()
			iv.EndDate = &t
		}
		e.Temporal = model.Temporal{Kind: model.EventInterval, Interval: iv}
	default:
		pt := &model.PointTime{Year: int(r.year.Int64)}
		if r.date.Valid {
			t := r.date.Time.UTC()
			pt.Date = &t
		}
		e.Temporal = model.Temporal{Kind: model.EventPoint, Point: pt}
	}

	switch model.LocationKind(r.locationType) {
	case model.LocationArea:
		area := &model.AreaLocation{
			Scope: model.GeographicScope(r.geographicScope.String),
			Name:  r.areaName.String,
		}
		if r.latitude.Valid && r.longitude.Valid {
			lat, lng := r.latitude.Float64, r.longitude.Float64
			area.Latitude, area.Longitude = &lat, &lng
		}
		e.Location = model.Location{Kind: model.LocationArea, Area: area}
	default:
		e.Location = model.Location{
			Kind: model.LocationPoint,
			Point: &model.PointLocation{
				Latitude:  r.latitude.Float64,
				Longitude: r.longitude.Float64,
				PlaceName: r.placeName.String,
			},
		}
	}

	if r.tags.Valid {
		if err := json.Unmarshal([]byte(r.tags.String), &e.Tags); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal tags")
		}
	}
	if r.mediaIDs.Valid {
		if err := json.Unmarshal([]byte(r.mediaIDs.String), &e.MediaIDs); err != nil {
			return nil, eris.Wrap(err, "store: unmarshal media ids")
		}
	}

	return e, nil
}
