package testing

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
)

/* TestDB holds test database connection */
type TestDB struct {
	DB      *sql.DB
	Queries *db.Queries
}

/* SetupTestDB creates a test database connection. Tests are skipped when no
   postgres instance is reachable, so the rest of the suite runs standalone. */
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	testDBName := os.Getenv("TEST_DB_NAME")
	if testDBName == "" {
		testDBName = "ideas_test"
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5432"),
		getEnv("TEST_DB_USER", "ideas"),
		getEnv("TEST_DB_PASSWORD", "ideas"),
		testDBName,
	)

	/* Connect to postgres database first to create test database */
	postgresDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5432"),
		getEnv("TEST_DB_USER", "ideas"),
		getEnv("TEST_DB_PASSWORD", "ideas"),
	)

	postgresDB, err := sql.Open("pgx", postgresDSN)
	if err != nil {
		t.Skipf("Skipping database test: %v", err)
	}
	defer postgresDB.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer pingCancel()
	if err := postgresDB.PingContext(pingCtx); err != nil {
		t.Skipf("Skipping database test, postgres unreachable: %v", err)
	}

	/* Create test database if it doesn't exist */
	var exists int
	err = postgresDB.QueryRow(fmt.Sprintf("SELECT 1 FROM pg_database WHERE datname = '%s'", testDBName)).Scan(&exists)
	if err != nil {
		if _, err := postgresDB.Exec(fmt.Sprintf("CREATE DATABASE %s", testDBName)); err != nil {
			t.Fatalf("Failed to create test database: %v", err)
		}
	}

	testDB, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := testDB.PingContext(ctx); err != nil {
		testDB.Close()
		t.Fatalf("Failed to ping test database: %v", err)
	}

	if err := runMigrations(testDB); err != nil {
		testDB.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDB{
		DB:      testDB,
		Queries: db.NewQueries(testDB),
	}
}

/* CleanupTestDB truncates all tables and closes the connection */
func (tdb *TestDB) CleanupTestDB(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tables := []string{
		"saved_opportunities",
		"opportunities",
		"subreddits",
		"users",
	}

	for _, table := range tables {
		_, err := tdb.DB.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			t.Logf("Warning: Failed to truncate %s: %v", table, err)
		}
	}

	tdb.DB.Close()
}

/* CreateTestUser creates a test user with the given roles and permissions */
func CreateTestUser(ctx context.Context, queries *db.Queries, username, password string, roles, permissions []string) (*db.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &db.User{
		Username:     username,
		PasswordHash: string(passwordHash),
		Roles:        roles,
		Permissions:  permissions,
	}

	if err := queries.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

/* CreateTestAdmin creates a test user carrying the admin role */
func CreateTestAdmin(ctx context.Context, queries *db.Queries, username, password string) (*db.User, error) {
	return CreateTestUser(ctx, queries, username, password,
		[]string{"admin"}, []string{"saved:read", "saved:write"})
}

/* SeedOpportunity inserts one opportunity row and returns its ID */
func SeedOpportunity(ctx context.Context, tdb *TestDB, title, category, subreddit string, score float64) (string, error) {
	id := uuid.New().String()
	now := time.Now()

	_, err := tdb.DB.ExecContext(ctx, `
		INSERT INTO opportunities (id, title, description, category, subreddit, score, mentions, sentiment, keywords, first_seen, last_seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, 0.5, '["test"]', $7, $7, $7, $7)
	`, id, title, "seeded for testing", category, subreddit, score, now)
	if err != nil {
		return "", err
	}

	return id, nil
}

/* SeedSubreddit inserts one subreddit row */
func SeedSubreddit(ctx context.Context, tdb *TestDB, name string, subscribers int64) error {
	_, err := tdb.DB.ExecContext(ctx, `
		INSERT INTO subreddits (name, subscribers)
		VALUES ($1, $2)
		ON CONFLICT (name) DO NOTHING
	`, name, subscribers)
	return err
}

/* runMigrations runs database migrations */
func runMigrations(conn *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			roles JSONB NOT NULL DEFAULT '[]',
			permissions JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS subreddits (
			name TEXT PRIMARY KEY,
			subscribers BIGINT NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS opportunities (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT,
			category TEXT NOT NULL,
			subreddit TEXT NOT NULL,
			score DOUBLE PRECISION NOT NULL DEFAULT 0,
			mentions INTEGER NOT NULL DEFAULT 0,
			sentiment DOUBLE PRECISION NOT NULL DEFAULT 0,
			keywords JSONB NOT NULL DEFAULT '[]',
			first_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_seen TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_category ON opportunities(category);`,
		`CREATE INDEX IF NOT EXISTS idx_opportunities_subreddit ON opportunities(subreddit);`,
		`CREATE TABLE IF NOT EXISTS saved_opportunities (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			opportunity_id TEXT NOT NULL REFERENCES opportunities(id) ON DELETE CASCADE,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_saved_opportunities_user_id ON saved_opportunities(user_id);`,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, migration := range migrations {
		if _, err := conn.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
