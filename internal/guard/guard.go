package guard

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/logging"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/metrics"
)

/* Guard wraps route handlers with the ordered security pipeline:

   HTTPS -> CORS -> IP rate limit -> auth -> admin/role/permission -> user rate limit

   The order is fixed. The IP limit runs before authentication so anonymous
   flooding is throttled before the identity lookup; the user limit runs after
   so it is scoped to the real identity rather than the address. */
type Guard struct {
	resolver   Resolver
	ipLimits   *CounterStore
	userLimits *CounterStore
	logger     *logging.Logger
}

/* New creates a guard with its own IP and user counter stores */
func New(resolver Resolver, logger *logging.Logger) *Guard {
	return &Guard{
		resolver:   resolver,
		ipLimits:   NewCounterStore(),
		userLimits: NewCounterStore(),
		logger:     logger,
	}
}

/* Protect returns middleware enforcing cfg on the wrapped handler. Policy
   violations become JSON error responses; anything else the handler does,
   including panics, passes through to the outer middleware untouched.

   On Auth=Required routes an empty or HTML response is rewritten to a JSON
   401 even when a principal was resolved: a login-page fallthrough must never
   reach an API caller, whoever triggered it. */
func (g *Guard) Protect(cfg SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			ip := clientIP(r)

			principal, serr := g.check(cfg, r, ip)
			if serr != nil {
				g.deny(w, r, cfg, origin, ip, serr)
				return
			}

			if remaining, ok := g.remaining(cfg, ip, principal); ok {
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			}

			ctx := withClientIP(r.Context(), ip)
			if principal != nil {
				ctx = withPrincipal(ctx, principal)
			}
			r = r.WithContext(ctx)

			// WebSocket upgrades need the raw connection (Hijacker), so they
			// skip response buffering and post-processing.
			if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, r)
				return
			}

			rec := &responseRecorder{header: make(http.Header)}
			next.ServeHTTP(rec, r)

			// A handler that fell through to nothing, or to an HTML login
			// page, must not reach an API caller on a route that requires
			// auth. Rewrite to a JSON 401.
			if cfg.Auth == AuthRequired && rec.looksLikeLoginFallthrough() {
				g.deny(w, r, cfg, origin, ip, errAuthRequired())
				return
			}

			rec.flush(w, cfg, origin)
		})
	}
}

/* check runs the gates in order and returns the resolved principal, or the
   first policy violation. */
func (g *Guard) check(cfg SecurityConfig, r *http.Request, ip string) (*Principal, *SecurityError) {
	if cfg.HTTPSOnly && !isHTTPS(r) {
		return nil, errHTTPSRequired()
	}

	origin := r.Header.Get("Origin")
	if len(cfg.AllowedOrigins) > 0 && origin != "" && !originAllowed(origin, cfg.AllowedOrigins) {
		return nil, errCORSViolation(origin)
	}

	if cfg.IPRateLimit != nil && g.ipLimits.Check(ip, *cfg.IPRateLimit) {
		return nil, errRateLimitExceeded()
	}

	var principal *Principal
	if cfg.Auth != AuthNone {
		p, err := g.resolver.Resolve(r)
		if err != nil {
			// Invalid or expired credentials resolve to anonymous; the
			// auth gate below decides whether that is fatal.
			if g.logger != nil {
				g.logger.Debug("Credential resolution failed", map[string]interface{}{
					"error": err.Error(),
					"path":  r.URL.Path,
				})
			}
		} else {
			principal = p
		}
	}

	if cfg.Auth == AuthRequired && principal == nil {
		return nil, errAuthRequired()
	}

	if cfg.AdminOnly && principal != nil && !principal.IsAdmin() {
		return nil, errInsufficientPermissions("Admin access required")
	}

	if len(cfg.RequiredRoles) > 0 && principal != nil && !principal.HasAnyRole(cfg.RequiredRoles...) {
		return nil, errInsufficientPermissions("One of roles required: " + strings.Join(cfg.RequiredRoles, ", "))
	}

	if len(cfg.RequiredPermissions) > 0 && principal != nil && !principal.HasAllPermissions(cfg.RequiredPermissions...) {
		return nil, errInsufficientPermissions("Missing required permissions")
	}

	if cfg.UserRateLimit != nil && principal != nil && g.userLimits.Check(principal.ID, *cfg.UserRateLimit) {
		return nil, errRateLimitExceeded()
	}

	return principal, nil
}

/* remaining reports how many requests are left in the window of the limit
   that applies to this request: the user limit once a principal is resolved,
   otherwise the IP limit. */
func (g *Guard) remaining(cfg SecurityConfig, ip string, principal *Principal) (int, bool) {
	if cfg.UserRateLimit != nil && principal != nil {
		return g.userLimits.Remaining(principal.ID, *cfg.UserRateLimit), true
	}
	if cfg.IPRateLimit != nil {
		return g.ipLimits.Remaining(ip, *cfg.IPRateLimit), true
	}
	return 0, false
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, cfg SecurityConfig, origin, ip string, serr *SecurityError) {
	metrics.RecordGuardDenial(serr.Code)
	if g.logger != nil {
		g.logger.Info("Request blocked", map[string]interface{}{
			"code":      serr.Code,
			"status":    serr.Status,
			"path":      r.URL.Path,
			"method":    r.Method,
			"client_ip": ip,
		})
	}
	writeSecurityError(w, cfg, origin, serr)
}

/* isHTTPS reports whether the request arrived over TLS, directly or via a
   terminating proxy. */
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

/* responseRecorder buffers the wrapped handler's response so the guard can
   inspect and, if needed, replace it before anything reaches the client. */
type responseRecorder struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(data)
}

/* looksLikeLoginFallthrough reports whether the handler produced no response
   at all, or an HTML one - the signature of falling through to a login-page
   redirect instead of returning a JSON error. */
func (r *responseRecorder) looksLikeLoginFallthrough() bool {
	if !r.wroteHeader && r.body.Len() == 0 {
		return true
	}
	return strings.Contains(r.header.Get("Content-Type"), "text/html")
}

/* flush copies the recorded response to the real writer, applying CORS
   headers before the status line. */
func (r *responseRecorder) flush(w http.ResponseWriter, cfg SecurityConfig, origin string) {
	for key, values := range r.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	ApplyCORSHeaders(w, cfg, origin)

	status := r.status
	if !r.wroteHeader {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	w.Write(r.body.Bytes())
}
