package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/itihaas-labs/timeline-server/internal/access"
	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/query"
	"github.com/itihaas-labs/timeline-server/internal/store"
	"github.com/itihaas-labs/timeline-server/internal/validate"
)

// accessRequester resolves the caller and looks up their entitlement record.
// The lookup runs on every request; entitlements expire and get cancelled
// between requests, so gate decisions are never cached.
func (s *Server) accessRequester(r *http.Request, now time.Time) (model.Requester, access.Requester, error) {
	req := s.requester(r)
	areq := access.Requester{Role: req.Role}
	if req.UserID != "" {
		sub, err := s.store.ActiveSubscription(r.Context(), req.UserID, now)
		if err != nil {
			return req, areq, err
		}
		areq.Entitlement = sub
	}
	return req, areq, nil
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()
	q := r.URL.Query()

	_, areq, err := s.accessRequester(r, now)
	if err != nil {
		writeError(w, r, err)
		return
	}

	periods, err := s.store.ListPeriods(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entitled := access.EntitledPeriods(periods, areq, now)

	// An explicit period filter narrows the entitled set to that period and
	// turns a refusal into a visible 402 instead of a silent empty result.
	if pid := q.Get("period_id"); pid != "" {
		period, err := s.store.GetPeriod(ctx, pid)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if _, err := access.Decide(*period, areq, now); err != nil {
			writeError(w, r, err)
			return
		}
		entitled = []string{period.ID}
	}

	temporal, err := query.ParseTemporal(q.Get("year"), q.Get("start_year"), q.Get("end_year"), q.Get("date"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	spatial, err := query.ParseSpatial(q.Get("near"), s.domain.SpatialRadiusDeg)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := parsePage(q.Get("skip"), q.Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	events, err := s.resolver.Query(ctx, query.Request{
		Temporal:     temporal,
		Tags:         parseTags(q["tags"]),
		Spatial:      spatial,
		PeriodIDs:    entitled,
		EventKind:    q.Get("event_type"),
		LocationKind: q.Get("location_type"),
		Scope:        q.Get("geographic_scope"),
		Page:         page,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := time.Now().UTC()

	event, err := s.store.GetEvent(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	_, areq, err := s.accessRequester(r, now)
	if err != nil {
		writeError(w, r, err)
		return
	}
	period, err := s.store.GetPeriod(ctx, event.PeriodID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := access.Decide(*period, areq, now); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.validateEventBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	event.CreatedBy = s.requester(r).UserID

	created, err := s.store.CreateEvent(r.Context(), event)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.validateEventBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.store.UpdateEvent(r.Context(), chi.URLParam(r, "id"), event)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateEventBody decodes and validates a create/update payload. Validation
// completes before any store call, so a rejected payload never partially
// writes, and a variant switch is re-validated as a whole.
func (s *Server) validateEventBody(r *http.Request) (*model.Event, error) {
	var in validate.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return nil, &query.Error{Kind: query.KindInvalidFilter, Message: "invalid request body"}
	}

	event, err := validate.Validate(in, s.rules)
	if err != nil {
		return nil, err
	}

	// Referential check on the period is a CRUD-layer concern, done here at
	// the handler rather than inside the validator.
	if _, err := s.store.GetPeriod(r.Context(), event.PeriodID); err != nil {
		if eris.Is(err, store.ErrNotFound) {
			return nil, &validate.ValidationError{
				Kind:    validate.MissingRequiredField,
				Field:   "period_id",
				Message: "period does not exist",
			}
		}
		return nil, err
	}
	return event, nil
}

func parseTags(raw []string) []string {
	var tags []string
	for _, v := range raw {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}
	return tags
}

func parsePage(skip, limit string) (query.Page, error) {
	var p query.Page
	if skip != "" {
		n, err := strconv.Atoi(skip)
		if err != nil || n < 0 {
			return p, &query.Error{Kind: query.KindInvalidFilter, Message: "skip must be a non-negative integer"}
		}
		p.Skip = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return p, &query.Error{Kind: query.KindInvalidFilter, Message: "limit must be a non-negative integer"}
		}
		p.Limit = n
	}
	return p, nil
}
