package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/query"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = eris.New("store: not found")

// ErrPeriodHasEvents blocks deletion of a period that events still reference.
var ErrPeriodHasEvents = eris.New("store: period has existing events")

// Store defines persistence for the timeline service. Events handed to the
// write methods must already have passed validation; the store does not
// re-check invariants.
type Store interface {
	// Events. UpdateEvent is a full replacement: the stored row is rewritten
	// from the new record, so a variant switch atomically drops the old
	// variant's columns.
	CreateEvent(ctx context.Context, e *model.Event) (*model.Event, error)
	UpdateEvent(ctx context.Context, id string, e *model.Event) (*model.Event, error)
	GetEvent(ctx context.Context, id string) (*model.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListEvents(ctx context.Context, spec query.Spec) ([]model.Event, error)

	// Periods
	CreatePeriod(ctx context.Context, p *model.Period) (*model.Period, error)
	UpdatePeriod(ctx context.Context, id string, p *model.Period) (*model.Period, error)
	GetPeriod(ctx context.Context, id string) (*model.Period, error)
	ListPeriods(ctx context.Context) ([]model.Period, error)
	DeletePeriod(ctx context.Context, id string) error

	// Subscriptions
	CreateSubscription(ctx context.Context, s *model.Subscription) (*model.Subscription, error)
	ActiveSubscription(ctx context.Context, userID string, now time.Time) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context, userID string) ([]model.Subscription, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
