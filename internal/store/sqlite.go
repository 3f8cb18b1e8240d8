package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/query"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS periods (
	id                    TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	description           TEXT,
	start_year            INTEGER NOT NULL,
	end_year              INTEGER NOT NULL,
	requires_subscription INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS events (
	id                   TEXT PRIMARY KEY,
	title                TEXT NOT NULL,
	summary              TEXT NOT NULL,
	description          TEXT,
	description_hindi    TEXT,
	description_hinglish TEXT,
	event_type           TEXT NOT NULL,
	year                 INTEGER,
	date                 DATETIME,
	start_year           INTEGER,
	end_year             INTEGER,
	start_date           DATETIME,
	end_date             DATETIME,
	location_type        TEXT NOT NULL,
	latitude             REAL,
	longitude            REAL,
	place_name           TEXT,
	geographic_scope     TEXT,
	area_name            TEXT,
	period_id            TEXT NOT NULL REFERENCES periods(id),
	tags                 TEXT,
	media_ids            TEXT,
	created_by           TEXT,
	created_at           DATETIME NOT NULL,
	updated_at           DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	plan_id        TEXT NOT NULL,
	start_date     DATETIME NOT NULL,
	end_date       DATETIME NOT NULL,
	is_active      INTEGER NOT NULL DEFAULT 1,
	payment_method TEXT,
	payment_amount REAL,
	payment_id     TEXT,
	order_id       TEXT,
	created_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_year       ON events(year);
CREATE INDEX IF NOT EXISTS idx_events_start_year ON events(start_year);
CREATE INDEX IF NOT EXISTS idx_events_end_year   ON events(end_year);
CREATE INDEX IF NOT EXISTS idx_events_date       ON events(date);
CREATE INDEX IF NOT EXISTS idx_events_start_date ON events(start_date);
CREATE INDEX IF NOT EXISTS idx_events_end_date   ON events(end_date);
CREATE INDEX IF NOT EXISTS idx_events_period_id  ON events(period_id);
CREATE INDEX IF NOT EXISTS idx_events_event_type ON events(event_type);
CREATE INDEX IF NOT EXISTS idx_subscriptions_user_id ON subscriptions(user_id);
CREATE INDEX IF NOT EXISTS idx_subscriptions_end_date ON subscriptions(end_date);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Events ---

func (s *SQLiteStore) CreateEvent(ctx context.Context, e *model.Event) (*model.Event, error) {
	stored := *e
	stored.ID = uuid.New().String()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r, err := rowFromEvent(&stored)
	if err != nil {
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.args())), ", ")
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO events (%s) VALUES (%s)`, eventColumns, placeholders),
		r.args()...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert event")
	}
	return &stored, nil
}

// UpdateEvent rewrites the whole row from the replacement record. Columns of
// the previously active variant are overwritten with NULLs in the same
// statement, so a kind switch cannot leave stale fields behind.
func (s *SQLiteStore) UpdateEvent(ctx context.Context, id string, e *model.Event) (*model.Event, error) {
	existing, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	stored := *e
	stored.ID = id
	stored.CreatedAt = existing.CreatedAt
	if stored.CreatedBy == "" {
		stored.CreatedBy = existing.CreatedBy
	}
	stored.UpdatedAt = time.Now().UTC()

	r, err := rowFromEvent(&stored)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `UPDATE events SET
		title = ?, summary = ?, description = ?, description_hindi = ?, description_hinglish = ?,
		event_type = ?, year = ?, date = ?, start_year = ?, end_year = ?, start_date = ?, end_date = ?,
		location_type = ?, latitude = ?, longitude = ?, place_name = ?, geographic_scope = ?, area_name = ?,
		period_id = ?, tags = ?, media_ids = ?, created_by = ?, updated_at = ?
		WHERE id = ?`,
		r.title, r.summary, r.description, r.descriptionHindi, r.descriptionHinglish,
		r.eventType, r.year, r.date, r.startYear, r.endYear, r.startDate, r.endDate,
		r.locationType, r.latitude, r.longitude, r.placeName, r.geographicScope, r.areaName,
		r.periodID, r.tags, r.mediaIDs, r.createdBy, r.updatedAt,
		id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update event %s", id)
	}
	if err := checkRowsAffected(res, "event", id); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *SQLiteStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM events WHERE id = ?`, eventColumns), id,
	)
	r, err := scanEventRow(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get event")
	}
	return r.toEvent()
}

func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete event %s", id)
	}
	return checkRowsAffected(res, "event", id)
}

func (s *SQLiteStore) ListEvents(ctx context.Context, spec query.Spec) ([]model.Event, error) {
	b := query.NewBuilder(query.DialectSQLite)
	if err := b.Apply(spec); err != nil {
		return nil, err
	}
	where, args := b.Where()

	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM events%s`, eventColumns, where), args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		r, err := scanEventRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		e, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: list events iterate")
}

// --- Periods ---

func (s *SQLiteStore) CreatePeriod(ctx context.Context, p *model.Period) (*model.Period, error) {
	stored := *p
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO periods (id, name, description, start_year, end_year, requires_subscription)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.Name, stored.Description, stored.StartYear, stored.EndYear, stored.RequiresSubscription,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert period")
	}
	return &stored, nil
}

func (s *SQLiteStore) UpdatePeriod(ctx context.Context, id string, p *model.Period) (*model.Period, error) {
	stored := *p
	stored.ID = id
	res, err := s.db.ExecContext(ctx,
		`UPDATE periods SET name = ?, description = ?, start_year = ?, end_year = ?, requires_subscription = ?
		 WHERE id = ?`,
		stored.Name, stored.Description, stored.StartYear, stored.EndYear, stored.RequiresSubscription, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: update period %s", id)
	}
	if err := checkRowsAffected(res, "period", id); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *SQLiteStore) GetPeriod(ctx context.Context, id string) (*model.Period, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, start_year, end_year, requires_subscription FROM periods WHERE id = ?`, id,
	)
	return scanPeriod(row)
}

func (s *SQLiteStore) ListPeriods(ctx context.Context) ([]model.Period, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, start_year, end_year, requires_subscription
		 FROM periods ORDER BY start_year`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list periods")
	}
	defer rows.Close()

	var periods []model.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *p)
	}
	return periods, eris.Wrap(rows.Err(), "sqlite: list periods iterate")
}

func (s *SQLiteStore) DeletePeriod(ctx context.Context, id string) error {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE period_id = ?`, id).Scan(&n)
	if err != nil {
		return eris.Wrap(err, "sqlite: count period events")
	}
	if n > 0 {
		return ErrPeriodHasEvents
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM periods WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete period %s", id)
	}
	return checkRowsAffected(res, "period", id)
}

// --- Subscriptions ---

func (s *SQLiteStore) CreateSubscription(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	stored := *sub
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO subscriptions (id, user_id, plan_id, start_date, end_date, is_active,
		 payment_method, payment_amount, payment_id, order_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stored.ID, stored.UserID, stored.PlanID, stored.StartDate, stored.EndDate, stored.IsActive,
		stored.PaymentMethod, stored.PaymentAmount, stored.PaymentID, stored.OrderID, stored.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert subscription")
	}
	return &stored, nil
}

func (s *SQLiteStore) ActiveSubscription(ctx context.Context, userID string, now time.Time) (*model.Subscription, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, plan_id, start_date, end_date, is_active,
		        payment_method, payment_amount, payment_id, order_id, created_at
		 FROM subscriptions
		 WHERE user_id = ? AND is_active = 1 AND end_date > ?
		 ORDER BY end_date DESC LIMIT 1`,
		userID, now.UTC(),
	)
	sub, err := scanSubscription(row)
	if eris.Is(err, ErrNotFound) {
		return nil, nil
	}
	return sub, err
}

func (s *SQLiteStore) ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, plan_id, start_date, end_date, is_active,
		        payment_method, payment_amount, payment_id, order_id, created_at
		 FROM subscriptions WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list subscriptions")
	}
	defer rows.Close()

	var subs []model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *sub)
	}
	return subs, eris.Wrap(rows.Err(), "sqlite: list subscriptions iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "%s %s", entity, id)
	}
	return nil
}

func scanPeriod(row scannable) (*model.Period, error) {
	var p model.Period
	var desc sql.NullString
	err := row.Scan(&p.ID, &p.Name, &desc, &p.StartYear, &p.EndYear, &p.RequiresSubscription)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan period")
	}
	p.Description = desc.String
	return &p, nil
}

func scanSubscription(row scannable) (*model.Subscription, error) {
	var sub model.Subscription
	var method, paymentID, orderID sql.NullString
	var amount sql.NullFloat64
	err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.StartDate, &sub.EndDate, &sub.IsActive,
		&method, &amount, &paymentID, &orderID, &sub.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan subscription")
	}
	sub.PaymentMethod = method.String
	sub.PaymentAmount = amount.Float64
	sub.PaymentID = paymentID.String
	sub.OrderID = orderID.String
	sub.StartDate = sub.StartDate.UTC()
	sub.EndDate = sub.EndDate.UTC()
	sub.CreatedAt = sub.CreatedAt.UTC()
	return &sub, nil
}
