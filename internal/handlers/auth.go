package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/db"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/guard"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/identity"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/metrics"
)

/* Default grants for self-registered accounts. Admin accounts are provisioned
   out of band. */
var (
	defaultRoles       = []string{"member"}
	defaultPermissions = []string{"saved:read", "saved:write"}
)

/* AuthHandlers handles authentication endpoints */
type AuthHandlers struct {
	queries  *db.Queries
	throttle *guard.RefreshThrottle
}

/* NewAuthHandlers creates new auth handlers */
func NewAuthHandlers(queries *db.Queries, throttle *guard.RefreshThrottle) *AuthHandlers {
	return &AuthHandlers{queries: queries, throttle: throttle}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/* Register creates a local account and returns a token */
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"), nil)
		return
	}

	if req.Username == "" {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("username is required"), nil)
		return
	}
	if len(req.Password) < 8 {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("password must be at least 8 characters"), nil)
		return
	}

	if _, err := h.queries.GetUserByUsername(r.Context(), req.Username); err == nil {
		WriteError(w, http.StatusConflict, fmt.Errorf("username already taken"), nil)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to hash password"), nil)
		return
	}

	user := &db.User{
		Username:     req.Username,
		PasswordHash: string(passwordHash),
		Roles:        defaultRoles,
		Permissions:  defaultPermissions,
	}
	if err := h.queries.CreateUser(r.Context(), user); err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to create user"), nil)
		return
	}

	h.writeTokenResponse(w, user)
}

/* Login authenticates a local account and returns a token */
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid request body"), nil)
		return
	}

	if req.Username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("username and password are required"), nil)
		return
	}

	user, err := h.queries.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusUnauthorized, fmt.Errorf("invalid credentials"), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to look up user"), nil)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("invalid credentials"), nil)
		return
	}

	h.writeTokenResponse(w, user)
}

/* GetCurrentUser returns the authenticated principal */
func (h *AuthHandlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal := guard.PrincipalFromContext(r.Context())
	if principal == nil {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"), nil)
		return
	}

	user, err := h.queries.GetUser(r.Context(), principal.ID)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Errorf("user not found"), nil)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"user_id":     user.ID,
		"username":    user.Username,
		"roles":       user.Roles,
		"permissions": user.Permissions,
	}, http.StatusOK)
}

/* RefreshToken issues a fresh token for the authenticated principal. Refresh
   attempts are throttled per principal, independently of the request rate
   limits. */
func (h *AuthHandlers) RefreshToken(w http.ResponseWriter, r *http.Request) {
	principal := guard.PrincipalFromContext(r.Context())
	if principal == nil {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("not authenticated"), nil)
		return
	}

	if !h.throttle.MayRefresh(principal.ID) {
		metrics.RecordRefreshThrottled()
		WriteError(w, http.StatusTooManyRequests, fmt.Errorf("too many refresh attempts, retry later"), nil)
		return
	}

	user, err := h.queries.GetUser(r.Context(), principal.ID)
	if err != nil {
		WriteError(w, http.StatusNotFound, fmt.Errorf("user not found"), nil)
		return
	}

	h.writeTokenResponse(w, user)
}

func (h *AuthHandlers) writeTokenResponse(w http.ResponseWriter, user *db.User) {
	token, err := identity.GenerateToken(user.ID, user.Username, user.Roles, user.Permissions)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to generate token"), nil)
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"token":    token,
		"user_id":  user.ID,
		"username": user.Username,
		"roles":    user.Roles,
	}, http.StatusOK)
}
