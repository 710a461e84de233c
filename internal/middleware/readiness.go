package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/AnshRaj112/frontline-fury-backend/internal/database"
)

// Readiness reports whether the database can serve requests.
type Readiness interface {
	Ready() bool
	State() database.State
}

type unavailableResponse struct {
	Error    string `json:"error"`
	Database string `json:"database"`
}

// RequireDatabase answers 503 while the database is not connected, before
// the wrapped handler can touch it.
func RequireDatabase(db Readiness) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !db.Ready() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "5")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(unavailableResponse{
					Error:    "Service unavailable",
					Database: db.State().String(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
