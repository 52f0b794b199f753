package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/validation"
)

/* OpportunityHandlers serves the precomputed business-opportunity records */
type OpportunityHandlers struct {
	queries *db.Queries
}

/* NewOpportunityHandlers creates new opportunity handlers */
func NewOpportunityHandlers(queries *db.Queries) *OpportunityHandlers {
	return &OpportunityHandlers{queries: queries}
}

/* List returns opportunities matching the query filters */
func (h *OpportunityHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pagination := validation.ParsePagination(query)

	filter := db.OpportunityFilter{
		Category:  query.Get("category"),
		Subreddit: query.Get("subreddit"),
		MinScore:  validation.ParseFloat(query, "min_score"),
		Sort:      query.Get("sort"),
		Limit:     pagination.Limit,
		Offset:    pagination.Offset,
	}

	opportunities, err := h.queries.ListOpportunities(r.Context(), filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to list opportunities"), nil)
		return
	}

	if opportunities == nil {
		opportunities = []db.Opportunity{}
	}

	WriteSuccess(w, map[string]interface{}{
		"opportunities": opportunities,
		"count":         len(opportunities),
		"limit":         filter.Limit,
		"offset":        filter.Offset,
	}, http.StatusOK)
}

/* Get returns a single opportunity by ID */
func (h *OpportunityHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := validation.ValidateUUID("id", id); err != nil {
		WriteError(w, http.StatusBadRequest, err, nil)
		return
	}

	opportunity, err := h.queries.GetOpportunity(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, fmt.Errorf("opportunity not found"), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to get opportunity"), nil)
		return
	}

	WriteSuccess(w, opportunity, http.StatusOK)
}

/* Stats returns per-category aggregates */
func (h *OpportunityHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.CategoryStats(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to compute stats"), nil)
		return
	}

	total, err := h.queries.CountOpportunities(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to count opportunities"), nil)
		return
	}

	if stats == nil {
		stats = []db.CategoryStat{}
	}

	WriteSuccess(w, map[string]interface{}{
		"total":      total,
		"categories": stats,
	}, http.StatusOK)
}

/* ListSubreddits returns the aggregated source communities */
func (h *OpportunityHandlers) ListSubreddits(w http.ResponseWriter, r *http.Request) {
	subreddits, err := h.queries.ListSubreddits(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to list subreddits"), nil)
		return
	}

	if subreddits == nil {
		subreddits = []db.Subreddit{}
	}

	WriteSuccess(w, map[string]interface{}{
		"subreddits": subreddits,
		"count":      len(subreddits),
	}, http.StatusOK)
}
