package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
)

/* DashboardHandlers serves the per-user dashboard aggregates */
type DashboardHandlers struct {
	queries *db.Queries
}

/* NewDashboardHandlers creates new dashboard handlers */
func NewDashboardHandlers(queries *db.Queries) *DashboardHandlers {
	return &DashboardHandlers{queries: queries}
}

/* Summary returns the dashboard overview: totals plus the top categories */
func (h *DashboardHandlers) Summary(w http.ResponseWriter, r *http.Request) {
	total, err := h.queries.CountOpportunities(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to count opportunities"), nil)
		return
	}

	stats, err := h.queries.CategoryStats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to compute category stats"), nil)
		return
	}

	subreddits, err := h.queries.ListSubreddits(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to list subreddits"), nil)
		return
	}

	if len(stats) > 5 {
		stats = stats[:5]
	}

	WriteSuccess(w, map[string]interface{}{
		"total_opportunities": total,
		"top_categories":      stats,
		"subreddit_count":     len(subreddits),
	}, http.StatusOK)
}

/* Trends returns daily opportunity counts for the trends chart */
func (h *DashboardHandlers) Trends(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			days = parsed
		}
	}

	counts, err := h.queries.DailyCounts(r.Context(), days)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to compute trends"), nil)
		return
	}

	if counts == nil {
		counts = []db.DailyCount{}
	}

	WriteSuccess(w, map[string]interface{}{
		"days":   days,
		"counts": counts,
	}, http.StatusOK)
}
