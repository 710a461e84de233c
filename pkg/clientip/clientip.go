package clientip

import (
	"net"
	"net/http"
	"strings"
)

// RealClientIP returns the client IP from the request socket.
// Proxy headers are ignored; use Resolver when the service runs behind a
// trusted reverse proxy.
func RealClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}

// Resolver picks the address used to key per-client rate limits.
type Resolver struct {
	// TrustProxy takes the left-most X-Forwarded-For entry when present.
	TrustProxy bool
}

func (res Resolver) IP(r *http.Request) string {
	if res.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
				return ip.String()
			}
		}
	}
	return RealClientIP(r)
}
