package guard

import (
	"context"
	"net"
	"net/http"
	"strings"
)

/* AdminRole is the reserved role granting admin status */
const AdminRole = "admin"

/* Principal is the resolved identity for a request. A nil *Principal means
   the request is anonymous. Principals are built per-request by a Resolver
   and never persisted by the guard. */
type Principal struct {
	ID          string
	Roles       []string
	Permissions []string
}

/* IsAdmin reports whether the principal holds the reserved admin role */
func (p *Principal) IsAdmin() bool {
	return p.HasAnyRole(AdminRole)
}

/* HasAnyRole reports whether the principal holds at least one of the given
   roles.

   Note the deliberate asymmetry with HasAllPermissions: role checks are
   any-of, permission checks are all-of. Callers depend on the lenient role
   semantics, so do not tighten this to all-of. */
func (p *Principal) HasAnyRole(roles ...string) bool {
	if p == nil {
		return false
	}
	for _, want := range roles {
		for _, have := range p.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

/* HasAllPermissions reports whether the principal holds every given
   permission */
func (p *Principal) HasAllPermissions(permissions ...string) bool {
	if p == nil {
		return len(permissions) == 0
	}
	for _, want := range permissions {
		found := false
		for _, have := range p.Permissions {
			if have == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

/* Resolver extracts the authenticated principal from a request. A (nil, nil)
   return means the request is anonymous; an error means credentials were
   presented but are invalid or expired. */
type Resolver interface {
	Resolve(r *http.Request) (*Principal, error)
}

/* Context key types for type-safe context values */
type contextKey string

const (
	principalKey contextKey = "principal"
	clientIPKey  contextKey = "client_ip"
)

/* PrincipalFromContext returns the principal attached by the guard, or nil
   for anonymous requests. */
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}

/* ClientIPFromContext returns the client IP attached by the guard, or
   "unknown" when it could not be determined. */
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return "unknown"
}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func withClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

/* clientIP extracts the client address, preferring proxy-set headers over
   the raw peer address. */
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			fwd = fwd[:idx]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
