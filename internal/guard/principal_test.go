package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHasAnyRole(t *testing.T) {
	p := &Principal{ID: "u1", Roles: []string{"member", "operator"}}

	if !p.HasAnyRole("operator") {
		t.Error("should hold operator")
	}
	// Role checks are any-of: one match out of many requested is enough.
	if !p.HasAnyRole("admin", "operator") {
		t.Error("one matching role out of several should pass")
	}
	if p.HasAnyRole("admin") {
		t.Error("should not hold admin")
	}

	var nilPrincipal *Principal
	if nilPrincipal.HasAnyRole("member") {
		t.Error("nil principal holds no roles")
	}
}

func TestHasAllPermissions(t *testing.T) {
	p := &Principal{ID: "u1", Permissions: []string{"saved:read", "saved:write"}}

	if !p.HasAllPermissions("saved:read") {
		t.Error("should hold saved:read")
	}
	if !p.HasAllPermissions("saved:read", "saved:write") {
		t.Error("should hold both permissions")
	}
	// Permission checks are all-of: one missing permission fails the check.
	if p.HasAllPermissions("saved:read", "admin:delete") {
		t.Error("missing permission should fail an all-of check")
	}

	var nilPrincipal *Principal
	if nilPrincipal.HasAllPermissions("saved:read") {
		t.Error("nil principal holds no permissions")
	}
	if !nilPrincipal.HasAllPermissions() {
		t.Error("empty requirement is vacuously satisfied")
	}
}

func TestIsAdmin(t *testing.T) {
	admin := &Principal{ID: "a1", Roles: []string{"admin"}}
	member := &Principal{ID: "u1", Roles: []string{"member"}}

	if !admin.IsAdmin() {
		t.Error("admin role should grant admin status")
	}
	if member.IsAdmin() {
		t.Error("member should not be admin")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.7", "", "10.0.0.1:1234", "203.0.113.7"},
		{"forwarded chain takes first", "203.0.113.7, 10.0.0.2, 10.0.0.3", "", "10.0.0.1:1234", "203.0.113.7"},
		{"real ip fallback", "", "203.0.113.9", "10.0.0.1:1234", "203.0.113.9"},
		{"remote addr host", "", "", "10.0.0.1:1234", "10.0.0.1"},
		{"remote addr without port", "", "", "10.0.0.1", "10.0.0.1"},
		{"nothing known", "", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-Ip", tt.realIP)
			}

			if got := clientIP(r); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
