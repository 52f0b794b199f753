package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/config"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/guard"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/handlers"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/identity"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/identity/oidc"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/logging"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger := logging.NewLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	logger.Info("Starting ideas explorer API server", nil)

	if cfg.Security.PolicyFile != "" {
		if err := cfg.ApplyPolicyFile(cfg.Security.PolicyFile); err != nil {
			logger.Fatal("Failed to load security policy file", err, map[string]interface{}{
				"path": cfg.Security.PolicyFile,
			})
		}
		logger.Info("Security policy file applied", map[string]interface{}{
			"path": cfg.Security.PolicyFile,
		})
	}

	// Connect to database
	database, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("Failed to open database", err, nil)
	}
	defer database.Close()

	// Configure connection pool
	database.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	database.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	database.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := database.PingContext(ctx); err != nil {
		logger.Fatal("Failed to ping database", err, nil)
	}

	logger.Info("Connected to database", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
		"name": cfg.Database.Name,
	})

	queries := db.NewQueries(database)

	// Pick the credential resolver for the configured auth mode
	var resolver guard.Resolver
	var oidcHandlers *handlers.OIDCHandlers
	switch cfg.Auth.Mode {
	case "oidc":
		if cfg.Auth.OIDC.IssuerURL == "" {
			logger.Fatal("OIDC_ISSUER_URL is required when AUTH_MODE=oidc", fmt.Errorf("missing issuer URL"), nil)
		}
		provider, err := oidc.NewProvider(
			ctx,
			cfg.Auth.OIDC.IssuerURL,
			cfg.Auth.OIDC.ClientID,
			cfg.Auth.OIDC.ClientSecret,
			cfg.Auth.OIDC.RedirectURL,
			cfg.Auth.OIDC.Scopes,
		)
		if err != nil {
			logger.Fatal("Failed to initialize OIDC provider", err, nil)
		}
		resolver = identity.NewOIDCResolver(provider)
		oidcHandlers = handlers.NewOIDCHandlers(provider)
		logger.Info("OIDC provider initialized", map[string]interface{}{
			"issuer": cfg.Auth.OIDC.IssuerURL,
		})
	default:
		if cfg.Auth.JWTSecret == "" {
			logger.Fatal("JWT_SECRET is required when using JWT authentication", fmt.Errorf("JWT_SECRET environment variable not set"), nil)
		}
		resolver = identity.NewJWTResolver()
	}

	g := guard.New(resolver, logger)
	router := handlers.NewRouter(queries, g, cfg.Security, logger, oidcHandlers)

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", map[string]interface{}{
			"address":    addr,
			"https_only": cfg.Security.HTTPSOnly,
			"origins":    cfg.Security.AllowedOrigins,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", err, nil)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server", nil)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", err, nil)
	}

	logger.Info("Server stopped", nil)
}
