package identity

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMiddlewareInjectsHints(t *testing.T) {
	var gotIP, gotSession string
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotIP = ClientIPFromContext(r.Context())
		gotSession = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/assistant/chat", nil)
	req.RemoteAddr = "203.0.113.9:5555"
	req.Header.Set(SessionHeaderName, "  tab-42 ")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "203.0.113.9", gotIP)
	assert.Equal(t, "tab-42", gotSession)
}

func TestSessionIDAbsentOrOversized(t *testing.T) {
	var gotSession string
	h := Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotSession = SessionIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, gotSession)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(SessionHeaderName, strings.Repeat("x", maxSessionIDLen+1))
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Empty(t, gotSession)
}

func TestIPFromRequestWithoutPort(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7"
	assert.Equal(t, "198.51.100.7", IPFromRequest(req))
}
