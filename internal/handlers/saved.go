package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/guard"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/validation"
)

/* SavedHandlers manages per-user opportunity bookmarks */
type SavedHandlers struct {
	queries *db.Queries
}

/* NewSavedHandlers creates new saved-opportunity handlers */
func NewSavedHandlers(queries *db.Queries) *SavedHandlers {
	return &SavedHandlers{queries: queries}
}

/* List returns the caller's bookmarks */
func (h *SavedHandlers) List(w http.ResponseWriter, r *http.Request) {
	principal := guard.PrincipalFromContext(r.Context())
	if principal == nil {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"), nil)
		return
	}

	saved, err := h.queries.ListSavedOpportunities(r.Context(), principal.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to list saved opportunities"), nil)
		return
	}

	if saved == nil {
		saved = []db.SavedOpportunity{}
	}

	WriteSuccess(w, map[string]interface{}{
		"saved": saved,
		"count": len(saved),
	}, http.StatusOK)
}

type saveRequest struct {
	OpportunityID string `json:"opportunity_id"`
	Note          string `json:"note"`
}

/* Create bookmarks an opportunity for the caller */
func (h *SavedHandlers) Create(w http.ResponseWriter, r *http.Request) {
	principal := guard.PrincipalFromContext(r.Context())
	if principal == nil {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"), nil)
		return
	}

	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"), nil)
		return
	}
	if err := validation.ValidateUUID("opportunity_id", req.OpportunityID); err != nil {
		WriteError(w, http.StatusBadRequest, err, nil)
		return
	}

	if _, err := h.queries.GetOpportunity(r.Context(), req.OpportunityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, fmt.Errorf("opportunity not found"), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to get opportunity"), nil)
		return
	}

	saved := &db.SavedOpportunity{
		UserID:        principal.ID,
		OpportunityID: req.OpportunityID,
		Note:          req.Note,
	}
	if err := h.queries.CreateSavedOpportunity(r.Context(), saved); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to save opportunity"), nil)
		return
	}

	WriteSuccess(w, saved, http.StatusCreated)
}

/* Delete removes one of the caller's bookmarks. Scoped to the caller so one
   user cannot delete another's bookmark by guessing IDs. */
func (h *SavedHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	principal := guard.PrincipalFromContext(r.Context())
	if principal == nil {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"), nil)
		return
	}

	id := mux.Vars(r)["id"]
	if err := validation.ValidateUUID("id", id); err != nil {
		WriteError(w, http.StatusBadRequest, err, nil)
		return
	}

	if err := h.queries.DeleteSavedOpportunity(r.Context(), principal.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, fmt.Errorf("saved opportunity not found"), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to delete saved opportunity"), nil)
		return
	}

	WriteSuccess(w, map[string]interface{}{"deleted": id}, http.StatusOK)
}
