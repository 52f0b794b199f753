package db

import (
	"time"
)

/* Opportunity represents a precomputed business opportunity derived from
   Reddit discussions. Rows are written by the external scoring pipeline; the
   API only reads them (admins may delete). */
type Opportunity struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Subreddit   string    `json:"subreddit"`
	Score       float64   `json:"score"`
	Mentions    int       `json:"mentions"`
	Sentiment   float64   `json:"sentiment"`
	Keywords    []string  `json:"keywords,omitempty"`
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

/* Subreddit represents an aggregated view of one source community */
type Subreddit struct {
	Name             string  `json:"name"`
	Subscribers      int64   `json:"subscribers"`
	OpportunityCount int64   `json:"opportunity_count"`
	AvgScore         float64 `json:"avg_score"`
}

/* User represents a user account */
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Never serialize password hash
	Roles        []string  `json:"roles"`
	Permissions  []string  `json:"permissions"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

/* SavedOpportunity represents an opportunity a user bookmarked */
type SavedOpportunity struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	OpportunityID string    `json:"opportunity_id"`
	Note          string    `json:"note,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

/* CategoryStat is a per-category aggregate for the stats endpoint */
type CategoryStat struct {
	Category      string  `json:"category"`
	Count         int64   `json:"count"`
	AvgScore      float64 `json:"avg_score"`
	TotalMentions int64   `json:"total_mentions"`
}

/* DailyCount is one day's opportunity count for the trends endpoint */
type DailyCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

/* OpportunityFilter narrows ListOpportunities results */
type OpportunityFilter struct {
	Category  string
	Subreddit string
	MinScore  float64
	Sort      string // "score", "mentions", "recent"
	Limit     int
	Offset    int
}
