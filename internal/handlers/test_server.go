package handlers

import (
	"net/http/httptest"
	"os"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/config"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/guard"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/identity"
)

/* SetupTestServer creates a test HTTP server with all routes configured. Rate
   limits are set high so handler tests never trip them; guard policy tests
   build their own server with tight limits. */
func SetupTestServer(queries *db.Queries) *httptest.Server {
	/* Set JWT secret for testing */
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")

	sec := config.SecurityConfig{
		AllowedOrigins: []string{"*"},
		PublicIPLimit:  config.RatePolicy{Requests: 10000, Window: "1m"},
		AuthIPLimit:    config.RatePolicy{Requests: 10000, Window: "1m"},
		UserLimit:      config.RatePolicy{Requests: 10000, Window: "1m"},
	}

	g := guard.New(identity.NewJWTResolver(), nil)
	return httptest.NewServer(NewRouter(queries, g, sec, nil, nil))
}
