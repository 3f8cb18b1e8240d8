package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itihaas-labs/timeline-server/internal/config"
	"github.com/itihaas-labs/timeline-server/internal/model"
	"github.com/itihaas-labs/timeline-server/internal/store"
)

const testSecret = "test-secret"

type testServer struct {
	*httptest.Server
	store *store.SQLiteStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(t.Context()))

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
		Auth:   config.AuthConfig{JWTSecret: testSecret, TokenTTLHrs: 1},
		Domain: config.DomainConfig{ModernEraYear: 1947, SpatialRadiusDeg: 3.0, DefaultLimit: 500},
	}

	ts := httptest.NewServer(New(st, cfg).Handler())
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, store: st}
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() }) //nolint:errcheck
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func token(t *testing.T, userID string, role model.Role) string {
	t.Helper()
	tok, err := IssueToken(testSecret, userID, role, time.Hour)
	require.NoError(t, err)
	return tok
}

func seedPeriod(t *testing.T, ts *testServer, name string, gated bool) *model.Period {
	t.Helper()
	p, err := ts.store.CreatePeriod(t.Context(), &model.Period{
		Name: name, StartYear: 1500, EndYear: 1900, RequiresSubscription: gated,
	})
	require.NoError(t, err)
	return p
}

func seedEvent(t *testing.T, ts *testServer, periodID string, year int, tags ...string) *model.Event {
	t.Helper()
	e, err := ts.store.CreateEvent(t.Context(), &model.Event{
		Title:    fmt.Sprintf("event %d", year),
		Summary:  "summary",
		PeriodID: periodID,
		Tags:     tags,
		Temporal: model.Temporal{Kind: model.EventPoint, Point: &model.PointTime{Year: year}},
		Location: model.Location{Kind: model.LocationPoint, Point: &model.PointLocation{
			Latitude: 28.6, Longitude: 77.2,
		}},
	})
	require.NoError(t, err)
	return e
}

func seedSubscription(t *testing.T, ts *testServer, userID string) {
	t.Helper()
	now := time.Now().UTC()
	_, err := ts.store.CreateSubscription(t.Context(), &model.Subscription{
		UserID: userID, PlanID: "annual", IsActive: true,
		StartDate: now.Add(-time.Hour), EndDate: now.Add(30 * 24 * time.Hour),
	})
	require.NoError(t, err)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListEvents_AnonymousSeesOnlyFreePeriods(t *testing.T) {
	ts := newTestServer(t)
	free := seedPeriod(t, ts, "Ancient India", false)
	gated := seedPeriod(t, ts, "Modern India", true)
	seedEvent(t, ts, free.ID, 1600)
	seedEvent(t, ts, gated.ID, 1950)

	resp := ts.do(t, http.MethodGet, "/api/events", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	events := decodeBody[[]model.Event](t, resp)
	require.Len(t, events, 1)
	assert.Equal(t, free.ID, events[0].PeriodID)
}

func TestListEvents_ExplicitGatedPeriodIs402(t *testing.T) {
	ts := newTestServer(t)
	gated := seedPeriod(t, ts, "Modern India", true)
	seedEvent(t, ts, gated.ID, 1950)

	// Asking for the gated period by name surfaces the refusal instead of an
	// empty result.
	resp := ts.do(t, http.MethodGet, "/api/events?period_id="+gated.ID, "", nil)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Subscription required", body["error"])
}

func TestListEvents_SubscriberSeesGatedPeriod(t *testing.T) {
	ts := newTestServer(t)
	gated := seedPeriod(t, ts, "Modern India", true)
	seedEvent(t, ts, gated.ID, 1950)
	seedSubscription(t, ts, "u1")

	resp := ts.do(t, http.MethodGet, "/api/events?period_id="+gated.ID, token(t, "u1", model.RoleUser), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]model.Event](t, resp), 1)
}

func TestListEvents_AdminBypassesGate(t *testing.T) {
	ts := newTestServer(t)
	gated := seedPeriod(t, ts, "Modern India", true)
	seedEvent(t, ts, gated.ID, 1950)

	resp := ts.do(t, http.MethodGet, "/api/events?period_id="+gated.ID, token(t, "admin-1", model.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]model.Event](t, resp), 1)
}

func TestListEvents_UnknownPeriodIs404(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/api/events?period_id=missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListEvents_MalformedYearIs400(t *testing.T) {
	ts := newTestServer(t)
	free := seedPeriod(t, ts, "Ancient India", false)
	seedEvent(t, ts, free.ID, 1600)

	resp := ts.do(t, http.MethodGet, "/api/events?year=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/events?skip=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListEvents_TagAndYearFilters(t *testing.T) {
	ts := newTestServer(t)
	free := seedPeriod(t, ts, "Ancient India", false)
	seedEvent(t, ts, free.ID, 1600, "battle")
	seedEvent(t, ts, free.ID, 1700, "culture")

	resp := ts.do(t, http.MethodGet, "/api/events?tags=battle", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	events := decodeBody[[]model.Event](t, resp)
	require.Len(t, events, 1)
	assert.Equal(t, 1600, events[0].Temporal.Point.Year)

	resp = ts.do(t, http.MethodGet, "/api/events?year=1700", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]model.Event](t, resp), 1)
}

func TestGetEvent_GateApplies(t *testing.T) {
	ts := newTestServer(t)
	gated := seedPeriod(t, ts, "Modern India", true)
	e := seedEvent(t, ts, gated.ID, 1950)

	resp := ts.do(t, http.MethodGet, "/api/events/"+e.ID, "", nil)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/events/"+e.ID, token(t, "admin-1", model.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.do(t, http.MethodGet, "/api/events/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/api/admin/events", "", map[string]any{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/api/admin/events", token(t, "u1", model.RoleUser), map[string]any{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestCreateEvent(t *testing.T) {
	ts := newTestServer(t)
	free := seedPeriod(t, ts, "Modern India", false)
	admin := token(t, "admin-1", model.RoleAdmin)

	payload := map[string]any{
		"title":         "Independence",
		"summary":       "End of British rule",
		"event_type":    "point",
		"year":          1947,
		"date":          "1947-08-15T00:00:00Z",
		"location_type": "point",
		"latitude":      28.6,
		"longitude":     77.2,
		"period_id":     free.ID,
	}
	resp := ts.do(t, http.MethodPost, "/api/admin/events", admin, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody[model.Event](t, resp)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "admin-1", created.CreatedBy)
}

func TestCreateEvent_ValidationFailureIs400(t *testing.T) {
	ts := newTestServer(t)
	free := seedPeriod(t, ts, "Modern India", false)
	admin := token(t, "admin-1", model.RoleAdmin)

	// Modern-era event without an exact date.
	payload := map[string]any{
		"title":         "Independence",
		"summary":       "End of British rule",
		"event_type":    "point",
		"year":          1947,
		"location_type": "point",
		"latitude":      28.6,
		"longitude":     77.2,
		"period_id":     free.ID,
	}
	resp := ts.do(t, http.MethodPost, "/api/admin/events", admin, payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "date", body["field"])
}

func TestCreateEvent_UnknownPeriodIs400(t *testing.T) {
	ts := newTestServer(t)
	admin := token(t, "admin-1", model.RoleAdmin)

	payload := map[string]any{
		"title":         "Independence",
		"summary":       "summary",
		"event_type":    "point",
		"year":          1600,
		"location_type": "point",
		"latitude":      28.6,
		"longitude":     77.2,
		"period_id":     "11111111-1111-1111-1111-111111111111",
	}
	resp := ts.do(t, http.MethodPost, "/api/admin/events", admin, payload)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeletePeriod_WithEventsIs400(t *testing.T) {
	ts := newTestServer(t)
	free := seedPeriod(t, ts, "Ancient India", false)
	seedEvent(t, ts, free.ID, 1600)
	admin := token(t, "admin-1", model.RoleAdmin)

	resp := ts.do(t, http.MethodDelete, "/api/admin/periods/"+free.ID, admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "Cannot delete period with existing events", body["error"])
}

func TestMySubscriptions(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/api/subscriptions/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	seedSubscription(t, ts, "u1")
	resp = ts.do(t, http.MethodGet, "/api/subscriptions/me", token(t, "u1", model.RoleUser), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]model.Subscription](t, resp), 1)
}

func TestInvalidTokenDegradesToAnonymous(t *testing.T) {
	ts := newTestServer(t)
	free := seedPeriod(t, ts, "Ancient India", false)
	seedEvent(t, ts, free.ID, 1600)

	resp := ts.do(t, http.MethodGet, "/api/events", "garbage-token", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeBody[[]model.Event](t, resp), 1)
}
