package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type panicResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Recover turns a handler panic into a 500 response. Outside production the
// panic value is returned as details. A handler that already sent its status
// line keeps it; the panic is only logged.
func Recover(log zerolog.Logger, production bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("request_id", RequestIDFromContext(r.Context())).
					Interface("panic", rec).
					Bool("headers_sent", ww.Status() != 0).
					Bytes("stack", debug.Stack()).
					Msg("handler panicked")

				if ww.Status() != 0 {
					return
				}

				body := panicResponse{Error: "Internal server error"}
				if !production {
					body.Details = fmt.Sprint(rec)
				}
				ww.Header().Set("Content-Type", "application/json")
				ww.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(ww).Encode(body)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
