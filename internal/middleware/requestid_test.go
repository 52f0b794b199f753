package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	/* Generated when absent */
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated request ID is not a UUID: %q", seen)
	}
	if w.Header().Get("X-Request-Id") != seen {
		t.Error("request ID should be echoed in the response header")
	}

	/* A valid inbound ID is honored */
	inbound := uuid.New().String()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", inbound)
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if seen != inbound {
		t.Errorf("inbound UUID not honored: got %q, want %q", seen, inbound)
	}

	/* A non-UUID inbound value is replaced */
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "spoofed-value")
	handler.ServeHTTP(httptest.NewRecorder(), r)
	if seen == "spoofed-value" {
		t.Error("non-UUID inbound request ID should be replaced")
	}
}
