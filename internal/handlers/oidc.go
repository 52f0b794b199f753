package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/identity/oidc"
)

const loginAttemptTTL = 10 * time.Minute

/* OIDCHandlers handles the OIDC login flow when the external identity
   service is configured. The callback hands the verified tokens back to the
   client; from then on the ID token is the bearer credential the guard's
   resolver verifies per request. */
type OIDCHandlers struct {
	provider *oidc.Provider

	mu            sync.Mutex
	loginAttempts map[string]*oidc.LoginAttempt
}

/* NewOIDCHandlers creates new OIDC handlers */
func NewOIDCHandlers(provider *oidc.Provider) *OIDCHandlers {
	return &OIDCHandlers{
		provider:      provider,
		loginAttempts: make(map[string]*oidc.LoginAttempt),
	}
}

/* StartFlow initiates an OIDC login. Browsers are redirected straight to the
   identity service; API clients get the authorization URL as JSON. */
func (h *OIDCHandlers) StartFlow(w http.ResponseWriter, r *http.Request) {
	attempt, err := oidc.NewLoginAttempt(loginAttemptTTL)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, fmt.Errorf("failed to create login attempt"), nil)
		return
	}
	attempt.RedirectURI = r.URL.Query().Get("redirect_uri")

	h.storeAttempt(attempt)

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		h.provider.RedirectToSignIn(w, r, attempt)
		return
	}

	authURL := h.provider.AuthCodeURL(attempt.State, attempt.Nonce, attempt.CodeVerifier)
	WriteSuccess(w, map[string]interface{}{
		"auth_url": authURL,
		"state":    attempt.State,
	}, http.StatusOK)
}

/* Callback completes the login: it exchanges the authorization code, verifies
   the ID token against the stored nonce, and returns the token pair. */
func (h *OIDCHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	if code == "" || state == "" {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("missing code or state"), nil)
		return
	}

	attempt := h.consumeAttempt(state)
	if attempt == nil {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid or expired state"), nil)
		return
	}

	oauth2Token, err := h.provider.ExchangeCode(r.Context(), code, attempt.CodeVerifier)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Errorf("failed to exchange code"), nil)
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		WriteError(w, http.StatusBadGateway, fmt.Errorf("identity service returned no id_token"), nil)
		return
	}

	idToken, rawClaims, err := h.provider.VerifyIDToken(r.Context(), rawIDToken)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("failed to verify ID token"), nil)
		return
	}
	if idToken.Nonce != attempt.Nonce {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("nonce mismatch"), nil)
		return
	}

	claims := oidc.ExtractClaims(rawClaims)

	response := map[string]interface{}{
		"token":         rawIDToken,
		"refresh_token": oauth2Token.RefreshToken,
		"user_id":       claims.Subject,
		"username":      claims.PreferredUsername,
		"roles":         claims.Roles,
	}

	if attempt.RedirectURI != "" && strings.Contains(r.Header.Get("Accept"), "text/html") {
		http.Redirect(w, r, attempt.RedirectURI, http.StatusFound)
		return
	}

	WriteSuccess(w, response, http.StatusOK)
}

type oidcRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

/* Refresh exchanges a refresh token for a fresh token pair */
func (h *OIDCHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req oidcRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		WriteError(w, http.StatusBadRequest, fmt.Errorf("refresh_token is required"), nil)
		return
	}

	token, err := h.provider.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, fmt.Errorf("failed to refresh token"), nil)
		return
	}

	rawIDToken, _ := token.Extra("id_token").(string)
	WriteSuccess(w, map[string]interface{}{
		"token":         rawIDToken,
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
	}, http.StatusOK)
}

/* storeAttempt records a pending login and drops any that have expired, so
   abandoned logins do not accumulate. */
func (h *OIDCHandlers) storeAttempt(attempt *oidc.LoginAttempt) {
	now := time.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	for state, a := range h.loginAttempts {
		if now.After(a.ExpiresAt) {
			delete(h.loginAttempts, state)
		}
	}
	h.loginAttempts[attempt.State] = attempt
}

/* consumeAttempt removes and returns the pending login for state. States are
   single-use; expired or unknown states return nil. */
func (h *OIDCHandlers) consumeAttempt(state string) *oidc.LoginAttempt {
	h.mu.Lock()
	defer h.mu.Unlock()

	attempt, ok := h.loginAttempts[state]
	if !ok {
		return nil
	}
	delete(h.loginAttempts, state)

	if time.Now().After(attempt.ExpiresAt) {
		return nil
	}
	return attempt
}
