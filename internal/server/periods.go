package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/itihaas-labs/timeline-server/internal/model"
)

func (s *Server) handleListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := s.store.ListPeriods(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

type periodInput struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	StartYear            *int   `json:"start_year"`
	EndYear              *int   `json:"end_year"`
	RequiresSubscription bool   `json:"requires_subscription"`
}

func (in *periodInput) toPeriod() (*model.Period, string) {
	if in.Name == "" {
		return nil, "periods require a name"
	}
	if in.StartYear == nil || in.EndYear == nil {
		return nil, "periods require start_year and end_year"
	}
	if *in.EndYear < *in.StartYear {
		return nil, "end_year must be greater than or equal to start_year"
	}
	return &model.Period{
		Name:                 in.Name,
		Description:          in.Description,
		StartYear:            *in.StartYear,
		EndYear:              *in.EndYear,
		RequiresSubscription: in.RequiresSubscription,
	}, ""
}

func (s *Server) handleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	var in periodInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	period, msg := in.toPeriod()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return
	}

	created, err := s.store.CreatePeriod(r.Context(), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdatePeriod(w http.ResponseWriter, r *http.Request) {
	var in periodInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	period, msg := in.toPeriod()
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return
	}

	updated, err := s.store.UpdatePeriod(r.Context(), chi.URLParam(r, "id"), period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeletePeriod(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePeriod(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
