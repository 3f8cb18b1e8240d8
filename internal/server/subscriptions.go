package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/itihaas-labs/timeline-server/internal/model"
)

func (s *Server) handleMySubscriptions(w http.ResponseWriter, r *http.Request) {
	req := s.requester(r)
	if req.UserID == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Authentication required"})
		return
	}

	subs, err := s.store.ListSubscriptions(r.Context(), req.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

type subscriptionInput struct {
	UserID        string     `json:"user_id"`
	PlanID        string     `json:"plan_id"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	PaymentMethod string     `json:"payment_method"`
	PaymentAmount float64    `json:"payment_amount"`
	PaymentID     string     `json:"payment_id"`
	OrderID       string     `json:"order_id"`
}

// handleCreateSubscription records an entitlement. Payment capture happens at
// the payment provider; this endpoint is for the admin panel and for the
// provider webhook handler upstream of this service.
func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var in subscriptionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	if in.UserID == "" || in.PlanID == "" || in.StartDate == nil || in.EndDate == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "user_id, plan_id, start_date and end_date are required"})
		return
	}
	if in.EndDate.Before(*in.StartDate) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "end_date must be after start_date"})
		return
	}

	created, err := s.store.CreateSubscription(r.Context(), &model.Subscription{
		UserID:        in.UserID,
		PlanID:        in.PlanID,
		StartDate:     in.StartDate.UTC(),
		EndDate:       in.EndDate.UTC(),
		IsActive:      true,
		PaymentMethod: in.PaymentMethod,
		PaymentAmount: in.PaymentAmount,
		PaymentID:     in.PaymentID,
		OrderID:       in.OrderID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
