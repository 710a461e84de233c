package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/frontline-fury-backend/internal/database"
)

type fakeState struct {
	state database.State
}

func (f fakeState) State() database.State { return f.state }
func (f fakeState) DatabaseName() string  { return "frontline-fury" }

func newSystemRouter(state database.State) (http.Handler, *System) {
	sys := NewSystem(fakeState{state: state}, "development")
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sys.started = started
	sys.now = func() time.Time { return started.Add(90 * time.Second) }

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Get("/ping", sys.Ping)
	r.Get("/health", sys.Health)
	r.Get("/api/test", sys.Test)
	r.Get("/", sys.Index)
	return r, sys
}

func TestPing(t *testing.T) {
	h, _ := newSystemRouter(database.StateDisconnected)

	rec := do(t, h, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHealth(t *testing.T) {
	h, _ := newSystemRouter(database.StateConnected)

	rec := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"status": "ok",
		"database": "Connected",
		"uptime": 90,
		"timestamp": "2025-06-01T12:01:30Z"
	}`, rec.Body.String())
}

func TestDiagnostic(t *testing.T) {
	h, _ := newSystemRouter(database.StateConnecting)

	rec := do(t, h, http.MethodGet, "/api/test", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"message": "Backend is working!",
		"timestamp": "2025-06-01T12:01:30Z",
		"database": "Connecting",
		"databaseState": 2,
		"environment": "development",
		"databaseName": "frontline-fury"
	}`, rec.Body.String())
}

func TestIndex(t *testing.T) {
	h, _ := newSystemRouter(database.StateConnected)

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[IndexResponse](t, rec)
	assert.Equal(t, "Frontline Fury Backend API", body.Message)
	assert.Equal(t, "/api/feedback", body.Endpoints["feedback"])
	assert.Equal(t, "/api/prebooking", body.Endpoints["prebooking"])
}

func TestUnmatchedRoutes(t *testing.T) {
	h, _ := newSystemRouter(database.StateConnected)

	rec := do(t, h, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Route not found","path":"/api/unknown"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/health", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.JSONEq(t, `{"error":"Method not allowed"}`, rec.Body.String())
}
