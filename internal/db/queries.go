package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Queries provides database operations
type Queries struct {
	db *sql.DB
}

// NewQueries creates a new Queries instance
func NewQueries(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// GetDB returns the underlying database connection
func (q *Queries) GetDB() *sql.DB {
	return q.db
}

// User operations

// CreateUser creates a new user
func (q *Queries) CreateUser(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.UpdatedAt = time.Now()

	rolesJSON, _ := json.Marshal(user.Roles)
	permissionsJSON, _ := json.Marshal(user.Permissions)

	query := `
		INSERT INTO users (id, username, password_hash, roles, permissions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.db.ExecContext(ctx, query,
		user.ID, user.Username, user.PasswordHash, rolesJSON, permissionsJSON,
		user.CreatedAt, user.UpdatedAt)
	return err
}

// GetUser gets a user by ID
func (q *Queries) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, username, password_hash, roles, permissions, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return q.scanUser(q.db.QueryRowContext(ctx, query, id))
}

// GetUserByUsername gets a user by username
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	query := `
		SELECT id, username, password_hash, roles, permissions, created_at, updated_at
		FROM users
		WHERE username = $1
	`
	return q.scanUser(q.db.QueryRowContext(ctx, query, username))
}

// ListUsers lists all users (admin only)
func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	query := `
		SELECT id, username, password_hash, roles, permissions, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		var rolesJSON, permissionsJSON []byte
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash,
			&rolesJSON, &permissionsJSON, &user.CreatedAt, &user.UpdatedAt); err != nil {
			continue
		}
		json.Unmarshal(rolesJSON, &user.Roles)
		json.Unmarshal(permissionsJSON, &user.Permissions)
		users = append(users, user)
	}

	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (q *Queries) scanUser(row rowScanner) (*User, error) {
	var user User
	var rolesJSON, permissionsJSON []byte

	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash,
		&rolesJSON, &permissionsJSON, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(rolesJSON) > 0 {
		json.Unmarshal(rolesJSON, &user.Roles)
	}
	if len(permissionsJSON) > 0 {
		json.Unmarshal(permissionsJSON, &user.Permissions)
	}

	return &user, nil
}

// Opportunity operations

// ListOpportunities lists opportunities matching the filter
func (q *Queries) ListOpportunities(ctx context.Context, filter OpportunityFilter) ([]Opportunity, error) {
	query := `
		SELECT id, title, description, category, subreddit, score, mentions, sentiment, keywords, first_seen, last_seen, created_at, updated_at
		FROM opportunities
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Subreddit != "" {
		args = append(args, filter.Subreddit)
		query += fmt.Sprintf(" AND subreddit = $%d", len(args))
	}
	if filter.MinScore > 0 {
		args = append(args, filter.MinScore)
		query += fmt.Sprintf(" AND score >= $%d", len(args))
	}

	switch filter.Sort {
	case "mentions":
		query += " ORDER BY mentions DESC"
	case "recent":
		query += " ORDER BY last_seen DESC"
	default:
		query += " ORDER BY score DESC"
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var opportunities []Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			continue
		}
		opportunities = append(opportunities, *opp)
	}

	return opportunities, rows.Err()
}

// GetOpportunity gets an opportunity by ID
func (q *Queries) GetOpportunity(ctx context.Context, id string) (*Opportunity, error) {
	query := `
		SELECT id, title, description, category, subreddit, score, mentions, sentiment, keywords, first_seen, last_seen, created_at, updated_at
		FROM opportunities
		WHERE id = $1
	`
	return scanOpportunity(q.db.QueryRowContext(ctx, query, id))
}

// DeleteOpportunity deletes an opportunity (admin only)
func (q *Queries) DeleteOpportunity(ctx context.Context, id string) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountOpportunities returns the total number of opportunities
func (q *Queries) CountOpportunities(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM opportunities`).Scan(&count)
	return count, err
}

// CategoryStats returns per-category aggregates
func (q *Queries) CategoryStats(ctx context.Context) ([]CategoryStat, error) {
	query := `
		SELECT category, COUNT(*), COALESCE(AVG(score), 0), COALESCE(SUM(mentions), 0)
		FROM opportunities
		GROUP BY category
		ORDER BY COUNT(*) DESC
	`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []CategoryStat
	for rows.Next() {
		var stat CategoryStat
		if err := rows.Scan(&stat.Category, &stat.Count, &stat.AvgScore, &stat.TotalMentions); err != nil {
			continue
		}
		stats = append(stats, stat)
	}

	return stats, rows.Err()
}

// DailyCounts returns opportunity counts per day for the trends chart
func (q *Queries) DailyCounts(ctx context.Context, days int) ([]DailyCount, error) {
	if days <= 0 || days > 90 {
		days = 30
	}
	query := `
		SELECT date_trunc('day', last_seen) AS day, COUNT(*)
		FROM opportunities
		WHERE last_seen >= NOW() - ($1 || ' days')::interval
		GROUP BY day
		ORDER BY day
	`
	rows, err := q.db.QueryContext(ctx, query, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []DailyCount
	for rows.Next() {
		var count DailyCount
		if err := rows.Scan(&count.Day, &count.Count); err != nil {
			continue
		}
		counts = append(counts, count)
	}

	return counts, rows.Err()
}

// ListSubreddits returns aggregated source community stats
func (q *Queries) ListSubreddits(ctx context.Context) ([]Subreddit, error) {
	query := `
		SELECT s.name, s.subscribers, COUNT(o.id), COALESCE(AVG(o.score), 0)
		FROM subreddits s
		LEFT JOIN opportunities o ON o.subreddit = s.name
		GROUP BY s.name, s.subscribers
		ORDER BY COUNT(o.id) DESC
	`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subreddits []Subreddit
	for rows.Next() {
		var sub Subreddit
		if err := rows.Scan(&sub.Name, &sub.Subscribers, &sub.OpportunityCount, &sub.AvgScore); err != nil {
			continue
		}
		subreddits = append(subreddits, sub)
	}

	return subreddits, rows.Err()
}

func scanOpportunity(row rowScanner) (*Opportunity, error) {
	var opp Opportunity
	var keywordsJSON []byte
	var description sql.NullString

	err := row.Scan(&opp.ID, &opp.Title, &description, &opp.Category, &opp.Subreddit,
		&opp.Score, &opp.Mentions, &opp.Sentiment, &keywordsJSON,
		&opp.FirstSeen, &opp.LastSeen, &opp.CreatedAt, &opp.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		opp.Description = description.String
	}
	if len(keywordsJSON) > 0 {
		json.Unmarshal(keywordsJSON, &opp.Keywords)
	}

	return &opp, nil
}

// Saved opportunity operations

// CreateSavedOpportunity bookmarks an opportunity for a user
func (q *Queries) CreateSavedOpportunity(ctx context.Context, saved *SavedOpportunity) error {
	if saved.ID == "" {
		saved.ID = uuid.New().String()
	}
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO saved_opportunities (id, user_id, opportunity_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := q.db.ExecContext(ctx, query,
		saved.ID, saved.UserID, saved.OpportunityID, saved.Note, saved.CreatedAt)
	return err
}

// ListSavedOpportunities lists a user's bookmarks
func (q *Queries) ListSavedOpportunities(ctx context.Context, userID string) ([]SavedOpportunity, error) {
	query := `
		SELECT id, user_id, opportunity_id, note, created_at
		FROM saved_opportunities
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := q.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saved []SavedOpportunity
	for rows.Next() {
		var s SavedOpportunity
		var note sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.OpportunityID, &note, &s.CreatedAt); err != nil {
			continue
		}
		if note.Valid {
			s.Note = note.String
		}
		saved = append(saved, s)
	}

	return saved, rows.Err()
}

// DeleteSavedOpportunity removes a user's bookmark
func (q *Queries) DeleteSavedOpportunity(ctx context.Context, userID, id string) error {
	result, err := q.db.ExecContext(ctx,
		`DELETE FROM saved_opportunities WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
