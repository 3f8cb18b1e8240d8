// Package access decides whether a requester may read a gated period. It is a
// pure function over its inputs: entitlement and role resolution belong to the
// auth layer, and decisions are recomputed per request because entitlements
// expire and get cancelled between requests.
package access

import (
	"fmt"
	"time"

	"github.com/itihaas-labs/timeline-server/internal/model"
)

// Requester is the gate's view of the caller: a role plus whatever
// entitlement record the auth layer found for them (nil for anonymous users
// and users with no subscription on file).
type Requester struct {
	Role        model.Role
	Entitlement *model.Subscription
}

// Decision is the outcome of a gate check.
type Decision int

const (
	Deny Decision = iota
	Allow
)

// ErrSubscriptionRequired is returned alongside Deny so callers can map the
// refusal to a payment-required response.
var ErrSubscriptionRequired = &Error{Reason: "subscription_required"}

// Error is an access refusal.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("access: %s", e.Reason)
}

// Decide evaluates the gate for one period at one instant.
//
// Ungated periods are always readable. Admins bypass gating entirely,
// including on gated periods. Otherwise the requester needs an entitlement
// that is active and ends strictly after now.
func Decide(period model.Period, req Requester, now time.Time) (Decision, error) {
	if !period.RequiresSubscription {
		return Allow, nil
	}
	if req.Role == model.RoleAdmin {
		return Allow, nil
	}
	if req.Entitlement.ActiveAt(now) {
		return Allow, nil
	}
	return Deny, ErrSubscriptionRequired
}

// EntitledPeriods returns the IDs of every period the requester may read at
// the given instant. This is the set the query resolver enforces row-by-row.
func EntitledPeriods(periods []model.Period, req Requester, now time.Time) []string {
	ids := make([]string, 0, len(periods))
	for _, p := range periods {
		if d, _ := Decide(p, req, now); d == Allow {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
