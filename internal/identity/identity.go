// Package identity extracts per-request caller hints: the client IP used
// for rate limiting and an optional session id header.
package identity

import (
	"context"
	"net"
	"net/http"
	"strings"
)

const (
	// SessionHeaderName lets clients name their conversation without a body field.
	SessionHeaderName = "X-Session-ID"
	maxSessionIDLen   = 256
)

type contextKey int

const (
	clientIPKey contextKey = iota
	sessionIDKey
)

// ClientIPFromContext extracts the client IP from the request context.
func ClientIPFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIPKey).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext returns the header-supplied session id, or "" when
// the caller did not send one.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

func sessionIDFromRequest(r *http.Request) string {
	sid := strings.TrimSpace(r.Header.Get(SessionHeaderName))
	if len(sid) > maxSessionIDLen {
		return ""
	}
	return sid
}

// Middleware injects the client IP and header session id into the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, IPFromRequest(r))
		if sid := sessionIDFromRequest(r); sid != "" {
			ctx = context.WithValue(ctx, sessionIDKey, sid)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IPFromRequest returns a normalized remote IP. Run chi's RealIP first when
// the service sits behind a proxy.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
