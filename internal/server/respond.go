package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/itihaas-labs/timeline-server/internal/access"
	"github.com/itihaas-labs/timeline-server/internal/query"
	"github.com/itihaas-labs/timeline-server/internal/store"
	"github.com/itihaas-labs/timeline-server/internal/validate"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeError maps core errors to HTTP statuses in one place. The core never
// logs; anything unexpected is logged here before the 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validate.ValidationError
	if eris.As(err, &vErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: vErr.Message, Field: vErr.Field})
		return
	}

	var qErr *query.Error
	if eris.As(err, &qErr) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: qErr.Message})
		return
	}

	var aErr *access.Error
	if eris.As(err, &aErr) {
		writeJSON(w, http.StatusPaymentRequired, errorBody{Error: "Subscription required"})
		return
	}

	if eris.Is(err, store.ErrPeriodHasEvents) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Cannot delete period with existing events"})
		return
	}

	if eris.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Not found"})
		return
	}

	zap.L().Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Server error"})
}

// requestLogger logs one line per request at debug level.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
