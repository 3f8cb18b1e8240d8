package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/query"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// which is what makes the postgres store unit-testable without a database.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS periods (
	id                    TEXT PRIMARY KEY,
	name                  TEXT NOT NULL,
	description           TEXT,
	start_year            INTEGER NOT NULL,
	end_year              INTEGER NOT NULL,
	requires_subscription BOOLEAN NOT NULL DEFAULT FALSE
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
	date                 TIMESTAMPTZ,
	start_year           INTEGER,
	end_year             INTEGER,
	start_date           TIMESTAMPTZ,
	end_date             TIMESTAMPTZ,
	location_type        TEXT NOT NULL,
	latitude             DOUBLE PRECISION,
	longitude            DOUBLE PRECISION,
	place_name           TEXT,
	geographic_scope     TEXT,
	area_name            TEXT,
	period_id            TEXT NOT NULL REFERENCES periods(id),
	tags                 TEXT,
	media_ids            TEXT,
	created_by           TEXT,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL,
	plan_id        TEXT NOT NULL,
	start_date     TIMESTAMPTZ NOT NULL,
	end_date       TIMESTAMPTZ NOT NULL,
	is_active      BOOLEAN NOT NULL DEFAULT TRUE,
	payment_method TEXT,
	payment_amount DOUBLE PRECISION,
	payment_id     TEXT,
	order_id       TEXT,
	created_at     TIMESTAMPTZ NOT NULL
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

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func pgPlaceholders(n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(ph, ", ")
}

// --- Events ---

func (s *PostgresStore) CreateEvent(ctx context.Context, e *model.Event) (*model.Event, error) {
	stored := *e
	stored.ID = uuid.New().String()
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	r, err := rowFromEvent(&stored)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		fmt.Sprintf(`INSERT INTO events (%s) VALUES (%s)`, eventColumns, pgPlaceholders(len(r.args()))),
		r.args()...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert event")
	}
	return &stored, nil
}

func (s *PostgresStore) UpdateEvent(ctx context.Context, id string, e *model.Event) (*model.Event, error) {
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

	tag, err := s.pool.Exec(ctx, `UPDATE events SET
		title = $1, summary = $2, description = $3, description_hindi = $4, description_hinglish = $5,
		event_type = $6, year = $7, date = $8, start_year = $9, end_year = $10, start_date = $11, end_date = $12,
		location_type = $13, latitude = $14, longitude = $15, place_name = $16, geographic_scope = $17, area_name = $18,
		period_id = $19, tags = $20, media_ids = $21, created_by = $22, updated_at = $23
		WHERE id = $24`,
		r.title, r.summary, r.description, r.descriptionHindi, r.descriptionHinglish,
		r.eventType, r.year, r.date, r.startYear, r.endYear, r.startDate, r.endDate,
		r.locationType, r.latitude, r.longitude, r.placeName, r.geographicScope, r.areaName,
		r.periodID, r.tags, r.mediaIDs, r.createdBy, r.updatedAt,
		id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update event %s", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Wrapf(ErrNotFound, "event %s", id)
	}
	return &stored, nil
}

func (s *PostgresStore) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns), id,
	)
	r, err := scanEventRow(row)
	if eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get event")
	}
	return r.toEvent()
}

func (s *PostgresStore) DeleteEvent(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete event %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "event %s", id)
	}
	return nil
}

func (s *PostgresStore) ListEvents(ctx context.Context, spec query.Spec) ([]model.Event, error) {
	b := query.NewBuilder(query.DialectPostgres)
	if err := b.Apply(spec); err != nil {
		return nil, err
	}
	where, args := b.Where()

	rows, err := s.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM events%s`, eventColumns, where), args...,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list events")
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		r, err := scanEventRow(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan event")
		}
		e, err := r.toEvent()
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, eris.Wrap(rows.Err(), "postgres: list events iterate")
}

// --- Periods ---

func (s *PostgresStore) CreatePeriod(ctx context.Context, p *model.Period) (*model.Period, error) {
	stored := *p
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO periods (id, name, description, start_year, end_year, requires_subscription)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		stored.ID, stored.Name, stored.Description, stored.StartYear, stored.EndYear, stored.RequiresSubscription,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert period")
	}
	return &stored, nil
}

func (s *PostgresStore) UpdatePeriod(ctx context.Context, id string, p *model.Period) (*model.Period, error) {
	stored := *p
	stored.ID = id
	tag, err := s.pool.Exec(ctx,
		`UPDATE periods SET name = $1, description = $2, start_year = $3, end_year = $4, requires_subscription = $5
		 WHERE id = $6`,
		stored.Name, stored.Description, stored.StartYear, stored.EndYear, stored.RequiresSubscription, id,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: update period %s", id)
	}
	if tag.RowsAffected() == 0 {
		return nil, eris.Wrapf(ErrNotFound, "period %s", id)
	}
	return &stored, nil
}

func (s *PostgresStore) GetPeriod(ctx context.Context, id string) (*model.Period, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, description, start_year, end_year, requires_subscription FROM periods WHERE id = $1`, id,
	)
	p, err := scanPeriod(row)
	if err != nil && eris.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) ListPeriods(ctx context.Context) ([]model.Period, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, start_year, end_year, requires_subscription
		 FROM periods ORDER BY start_year`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list periods")
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
	return periods, eris.Wrap(rows.Err(), "postgres: list periods iterate")
}

func (s *PostgresStore) DeletePeriod(ctx context.Context, id string) error {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events WHERE period_id = $1`, id).Scan(&n)
	if err != nil {
		return eris.Wrap(err, "postgres: count period events")
	}
	if n > 0 {
		return ErrPeriodHasEvents
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM periods WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete period %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "period %s", id)
	}
	return nil
}

// --- Subscriptions ---

func (s *PostgresStore) CreateSubscription(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	stored := *sub
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO subscriptions (id, user_id, plan_id, start_date, end_date, is_active,
		 payment_method, payment_amount, payment_id, order_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		stored.ID, stored.UserID, stored.PlanID, stored.StartDate, stored.EndDate, stored.IsActive,
		stored.PaymentMethod, stored.PaymentAmount, stored.PaymentID, stored.OrderID, stored.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert subscription")
	}
	return &stored, nil
}

func (s *PostgresStore) ActiveSubscription(ctx context.Context, userID string, now time.Time) (*model.Subscription, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, plan_id, start_date, end_date, is_active,
		        payment_method, payment_amount, payment_id, order_id, created_at
		 FROM subscriptions
		 WHERE user_id = $1 AND is_active = TRUE AND end_date > $2
		 ORDER BY end_date DESC LIMIT 1`,
		userID, now.UTC(),
	)
	sub, err := scanSubscription(row)
	if err != nil && (eris.Is(err, pgx.ErrNoRows) || eris.Is(err, ErrNotFound)) {
		return nil, nil
	}
	return sub, err
}

func (s *PostgresStore) ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, plan_id, start_date, end_date, is_active,
		        payment_method, payment_amount, payment_id, order_id, created_at
		 FROM subscriptions WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list subscriptions")
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
	return subs, eris.Wrap(rows.Err(), "postgres: list subscriptions iterate")
}
