package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/config"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/guard"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/logging"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/metrics"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/middleware"
)

/* NewRouter builds the full route tree with per-group security policies. The
   same constructor serves production and the test harness so the policies
   under test are the ones deployed. */
func NewRouter(queries *db.Queries, g *guard.Guard, sec config.SecurityConfig, logger *logging.Logger, oidcHandlers *OIDCHandlers) *mux.Router {
	authHandlers := NewAuthHandlers(queries, guard.NewRefreshThrottle())
	opportunityHandlers := NewOpportunityHandlers(queries)
	dashboardHandlers := NewDashboardHandlers(queries)
	savedHandlers := NewSavedHandlers(queries)
	adminHandlers := NewAdminHandlers(queries, logger)
	systemHandlers := NewSystemHandlers(queries, logger)

	base := guard.SecurityConfig{
		HTTPSOnly:      sec.HTTPSOnly,
		AllowedOrigins: sec.AllowedOrigins,
	}

	// Credential endpoints get the tight IP limit and no auth gate.
	credentialCfg := base
	credentialCfg.IPRateLimit = ratePolicy(sec.AuthIPLimit)

	// Browse endpoints work anonymously but pick up the principal when one
	// is presented, so responses can be personalized later.
	publicCfg := base
	publicCfg.Auth = guard.AuthOptional
	publicCfg.IPRateLimit = ratePolicy(sec.PublicIPLimit)

	sessionCfg := base
	sessionCfg.Auth = guard.AuthRequired

	dashboardCfg := base
	dashboardCfg.Auth = guard.AuthRequired
	dashboardCfg.UserRateLimit = ratePolicy(sec.UserLimit)

	savedReadCfg := base
	savedReadCfg.Auth = guard.AuthRequired
	savedReadCfg.RequiredPermissions = []string{"saved:read"}

	savedWriteCfg := base
	savedWriteCfg.Auth = guard.AuthRequired
	savedWriteCfg.RequiredPermissions = []string{"saved:read", "saved:write"}

	adminCfg := base
	adminCfg.Auth = guard.AuthRequired
	adminCfg.AdminOnly = true

	operatorCfg := base
	operatorCfg.Auth = guard.AuthRequired
	operatorCfg.RequiredRoles = []string{guard.AdminRole, "operator"}

	router := mux.NewRouter()
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/health", Health).Methods("GET")
	router.HandleFunc("/ready", systemHandlers.Readiness).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	// Browser preflights never carry credentials, so they bypass the gates
	// and get CORS headers directly.
	api.PathPrefix("/").Methods("OPTIONS").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guard.ApplyCORSHeaders(w, base, r.Header.Get("Origin"))
		w.WriteHeader(http.StatusNoContent)
	})

	authRoutes := api.PathPrefix("/auth").Subrouter()
	authRoutes.Handle("/register", g.Protect(credentialCfg)(http.HandlerFunc(authHandlers.Register))).Methods("POST")
	authRoutes.Handle("/login", g.Protect(credentialCfg)(http.HandlerFunc(authHandlers.Login))).Methods("POST")
	authRoutes.Handle("/me", g.Protect(sessionCfg)(http.HandlerFunc(authHandlers.GetCurrentUser))).Methods("GET")
	authRoutes.Handle("/refresh", g.Protect(sessionCfg)(http.HandlerFunc(authHandlers.RefreshToken))).Methods("POST")

	// Present only when AUTH_MODE=oidc; the external identity service owns
	// sign-in, so these replace the local register/login pair for browsers.
	if oidcHandlers != nil {
		authRoutes.Handle("/oidc/start", g.Protect(credentialCfg)(http.HandlerFunc(oidcHandlers.StartFlow))).Methods("GET")
		authRoutes.Handle("/oidc/callback", g.Protect(credentialCfg)(http.HandlerFunc(oidcHandlers.Callback))).Methods("GET")
		authRoutes.Handle("/oidc/refresh", g.Protect(credentialCfg)(http.HandlerFunc(oidcHandlers.Refresh))).Methods("POST")
	}

	api.Handle("/opportunities", g.Protect(publicCfg)(http.HandlerFunc(opportunityHandlers.List))).Methods("GET")
	api.Handle("/opportunities/stats", g.Protect(publicCfg)(http.HandlerFunc(opportunityHandlers.Stats))).Methods("GET")
	api.Handle("/opportunities/{id}", g.Protect(publicCfg)(http.HandlerFunc(opportunityHandlers.Get))).Methods("GET")
	api.Handle("/subreddits", g.Protect(publicCfg)(http.HandlerFunc(opportunityHandlers.ListSubreddits))).Methods("GET")

	api.Handle("/dashboard/summary", g.Protect(dashboardCfg)(http.HandlerFunc(dashboardHandlers.Summary))).Methods("GET")
	api.Handle("/dashboard/trends", g.Protect(dashboardCfg)(http.HandlerFunc(dashboardHandlers.Trends))).Methods("GET")

	api.Handle("/saved", g.Protect(savedReadCfg)(http.HandlerFunc(savedHandlers.List))).Methods("GET")
	api.Handle("/saved", g.Protect(savedWriteCfg)(http.HandlerFunc(savedHandlers.Create))).Methods("POST")
	api.Handle("/saved/{id}", g.Protect(savedWriteCfg)(http.HandlerFunc(savedHandlers.Delete))).Methods("DELETE")

	api.Handle("/admin/users", g.Protect(adminCfg)(http.HandlerFunc(adminHandlers.ListUsers))).Methods("GET")
	api.Handle("/admin/opportunities/{id}", g.Protect(adminCfg)(http.HandlerFunc(adminHandlers.DeleteOpportunity))).Methods("DELETE")

	api.Handle("/system/status", g.Protect(operatorCfg)(http.HandlerFunc(systemHandlers.Status))).Methods("GET")
	api.Handle("/system/ws", g.Protect(operatorCfg)(http.HandlerFunc(systemHandlers.StatusStream))).Methods("GET")

	return router
}

func ratePolicy(p config.RatePolicy) *guard.RateLimitPolicy {
	if p.Requests <= 0 {
		return nil
	}
	return &guard.RateLimitPolicy{Requests: p.Requests, Window: p.Window}
}
