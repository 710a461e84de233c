package handlers

import (
	"net/http"
	"time"

	"github.com/AnshRaj112/frontline-fury-backend/internal/database"
)

// StateReporter exposes the database connection state to the diagnostic
// endpoints.
type StateReporter interface {
	State() database.State
	DatabaseName() string
}

// System serves the liveness, health, diagnostic and index endpoints.
type System struct {
	db          StateReporter
	environment string
	started     time.Time
	now         func() time.Time
}

func NewSystem(db StateReporter, environment string) *System {
	return &System{
		db:          db,
		environment: environment,
		started:     time.Now(),
		now:         time.Now,
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Uptime    float64   `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// DiagnosticResponse is the body of GET /api/test.
type DiagnosticResponse struct {
	Message       string    `json:"message"`
	Timestamp     time.Time `json:"timestamp"`
	Database      string    `json:"database"`
	DatabaseState int       `json:"databaseState"`
	Environment   string    `json:"environment"`
	DatabaseName  string    `json:"databaseName"`
}

// IndexResponse is the body of GET /.
type IndexResponse struct {
	Message   string            `json:"message"`
	Endpoints map[string]string `json:"endpoints"`
}

// Ping answers liveness probes without touching the database.
func (s *System) Ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *System) Health(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Database:  s.db.State().String(),
		Uptime:    now.Sub(s.started).Seconds(),
		Timestamp: now.UTC(),
	})
}

// Test reports the connection state and deployment details.
func (s *System) Test(w http.ResponseWriter, r *http.Request) {
	state := s.db.State()
	writeJSON(w, http.StatusOK, DiagnosticResponse{
		Message:       "Backend is working!",
		Timestamp:     s.now().UTC(),
		Database:      state.String(),
		DatabaseState: int(state),
		Environment:   s.environment,
		DatabaseName:  s.db.DatabaseName(),
	})
}

func (s *System) Index(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, IndexResponse{
		Message: "Frontline Fury Backend API",
		Endpoints: map[string]string{
			"test":       "/api/test",
			"feedback":   "/api/feedback",
			"prebooking": "/api/prebooking",
			"health":     "/health",
			"ping":       "/ping",
			"metrics":    "/metrics",
		},
	})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error: "Route not found",
		Path:  r.URL.Path,
	})
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
