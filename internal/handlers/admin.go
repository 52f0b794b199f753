package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/logging"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/validation"
)

/* AdminHandlers serves admin-only management endpoints. Access control is
   enforced by the route middleware, not here. */
type AdminHandlers struct {
	queries *db.Queries
	logger  *logging.Logger
}

/* NewAdminHandlers creates new admin handlers */
func NewAdminHandlers(queries *db.Queries, logger *logging.Logger) *AdminHandlers {
	return &AdminHandlers{queries: queries, logger: logger}
}

/* ListUsers returns all registered users */
func (h *AdminHandlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to list users"), nil)
		return
	}

	if users == nil {
		users = []db.User{}
	}

	WriteSuccess(w, map[string]interface{}{
		"users": users,
		"count": len(users),
	}, http.StatusOK)
}

/* DeleteOpportunity removes an opportunity record */
func (h *AdminHandlers) DeleteOpportunity(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := validation.ValidateUUID("id", id); err != nil {
		WriteError(w, http.StatusBadRequest, err, nil)
		return
	}

	if err := h.queries.DeleteOpportunity(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, fmt.Errorf("opportunity not found"), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to delete opportunity"), nil)
		return
	}

	if h.logger != nil {
		h.logger.Info("Opportunity deleted", map[string]interface{}{
			"opportunity_id": id,
		})
	}

	WriteSuccess(w, map[string]interface{}{"deleted": id}, http.StatusOK)
}
