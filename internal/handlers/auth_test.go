package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authapi/apiserver/internal/auth"
	"github.com/authapi/apiserver/internal/handlers"
	"github.com/authapi/apiserver/internal/metrics"
	"github.com/authapi/apiserver/internal/middleware"
	"github.com/authapi/apiserver/internal/services"
	"github.com/authapi/apiserver/internal/store"
	"github.com/authapi/apiserver/types"
)

// newTestRouter mirrors the server wiring on the in-memory store.
func newTestRouter(t *testing.T) (*chi.Mux, *auth.TokenManager) {
	t.Helper()

	repo := store.NewMemoryUserRepository()
	tokens := auth.NewTokenManager("test-secret", "authapi", "authapi-clients")
	authService := services.NewAuthService(repo, tokens)
	counter := metrics.NewCounter()
	log := zerolog.New(io.Discard)

	router := chi.NewRouter()
	router.Use(middleware.Monitoring(counter, log))

	requireAuth := handlers.RequireAuth(tokens)
	metricsHandler := handlers.NewMetricsHandler(counter, repo, router)

	router.Get("/health", handlers.Health)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, authService)
	})
	router.With(requireAuth).Get("/me", handlers.Me)
	router.With(requireAuth).Get("/metrics/summary", metricsHandler.Summary)

	return router, tokens
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndLogin(t *testing.T, router http.Handler, email, password string) string {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", map[string]string{
		"email":    "u@test.com",
		"password": "Aa1!test",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "registration succeeded")
}

func TestRegisterEndpoint_Failures(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	tests := []struct {
		name       string
		email      string
		password   string
		wantStatus int
		wantError  string
	}{
		{"invalid email", "not-an-email", "Aa1!test", http.StatusBadRequest, "invalid email"},
		{"weak password", "u@test.com", "weak", http.StatusBadRequest, "weak password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/auth/register", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			}, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantError)
		})
	}
}

func TestRegisterEndpoint_MalformedBody(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request")
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	body := map[string]string{"email": "u@test.com", "password": "Aa1!test"}
	rec := doJSON(t, router, http.MethodPost, "/auth/register", body, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/auth/register", body, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")
}

func TestLoginEndpoint(t *testing.T) {
	t.Parallel()

	router, tokens := newTestRouter(t)
	token := registerAndLogin(t, router, "u@test.com", "Aa1!test")

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u@test.com", claims.Subject)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/auth/register", map[string]string{
		"email":    "u@test.com",
		"password": "Aa1!test",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	wrongPassword := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "u@test.com",
		"password": "WrongPw1!",
	}, nil)
	unknownEmail := doJSON(t, router, http.MethodPost, "/auth/login", map[string]string{
		"email":    "never-registered@test.com",
		"password": "Aa1!test",
	}, nil)

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	// Same body for both, so responses cannot reveal which emails exist.
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router, "u@test.com", "Aa1!test")

	rec := doJSON(t, router, http.MethodGet, "/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u@test.com", resp.Email)
}

func TestMeEndpoint_Unauthorized(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwdw=="},
		{"garbage token", "Bearer not.a.jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			rec := doJSON(t, router, http.MethodGet, "/me", nil, headers)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestMeEndpoint_WrongKeyToken(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	forged := auth.NewTokenManager("other-secret", "authapi", "authapi-clients")

	token, err := forged.Issue(types.User{ID: "id-1", Email: "u@test.com"})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/me", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		OK bool      `json:"ok"`
		At time.Time `json:"at"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.False(t, resp.At.IsZero())
}

func TestMetricsSummaryEndpoint_Unauthorized(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/metrics/summary", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMetricsSummaryEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	token := registerAndLogin(t, router, "u@test.com", "Aa1!test")

	// Generate some traffic first.
	for i := 0; i < 3; i++ {
		rec := doJSON(t, router, http.MethodGet, "/health", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doJSON(t, router, http.MethodGet, "/metrics/summary", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Endpoints      int     `json:"endpoints"`
		Users          int     `json:"users"`
		RequestsTotal  int64   `json:"requestsTotal"`
		ErrorRate      float64 `json:"errorRate"`
		Uptime         string  `json:"uptime"`
		ActiveSessions int     `json:"activeSessions"`
		TrafficSpark   []int   `json:"trafficSpark"`
		ByEndpoint     []struct {
			Name  string `json:"name"`
			Count int64  `json:"count"`
		} `json:"byEndpoint"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 5, resp.Endpoints)
	assert.Equal(t, 1, resp.Users)
	// register + login + 3 health checks; the summary request itself is
	// recorded after the handler reads the snapshot.
	assert.Equal(t, int64(5), resp.RequestsTotal)
	assert.Equal(t, 0.0, resp.ErrorRate)
	assert.Equal(t, 0, resp.ActiveSessions)
	assert.NotEmpty(t, resp.Uptime)
	assert.LessOrEqual(t, len(resp.TrafficSpark), 12)
	require.NotEmpty(t, resp.ByEndpoint)

	found := make(map[string]int64)
	for _, e := range resp.ByEndpoint {
		found[e.Name] = e.Count
	}
	assert.Equal(t, int64(3), found["/health"])
}
