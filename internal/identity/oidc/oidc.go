package oidc

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

/* Provider wraps the OIDC provider and OAuth2 config for the external
   identity service */
type Provider struct {
	provider   *oidc.Provider
	oauth2Conf *oauth2.Config
	verifier   *oidc.IDTokenVerifier
}

/* NewProvider creates a new OIDC provider */
func NewProvider(ctx context.Context, issuerURL, clientID, clientSecret, redirectURL string, scopes []string) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	oauth2Conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       scopes,
		Endpoint:     provider.Endpoint(),
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	return &Provider{
		provider:   provider,
		oauth2Conf: oauth2Conf,
		verifier:   verifier,
	}, nil
}

/* AuthCodeURL generates the OAuth2 authorization URL with PKCE */
func (p *Provider) AuthCodeURL(state, nonce, codeVerifier string) string {
	codeChallenge := base64.RawURLEncoding.EncodeToString(sha256Hash(codeVerifier))

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
		oauth2.SetAuthURLParam("nonce", nonce),
	}

	return p.oauth2Conf.AuthCodeURL(state, opts...)
}

/* RedirectToSignIn starts a sign-in flow by redirecting the browser to the
   identity service's authorization endpoint. */
func (p *Provider) RedirectToSignIn(w http.ResponseWriter, r *http.Request, attempt *LoginAttempt) {
	url := p.AuthCodeURL(attempt.State, attempt.Nonce, attempt.CodeVerifier)
	http.Redirect(w, r, url, http.StatusFound)
}

/* ExchangeCode exchanges an authorization code for tokens */
func (p *Provider) ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	}

	token, err := p.oauth2Conf.Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	return token, nil
}

/* RefreshToken exchanges a refresh token for a fresh token pair */
func (p *Provider) RefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	source := p.oauth2Conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	return token, nil
}

/* VerifyIDToken verifies and extracts claims from an ID token */
func (p *Provider) VerifyIDToken(ctx context.Context, rawIDToken string) (*oidc.IDToken, map[string]interface{}, error) {
	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, nil, fmt.Errorf("failed to extract claims: %w", err)
	}

	return idToken, claims, nil
}

/* Claims represents the user claims we read from the identity service */
type Claims struct {
	Subject           string   `json:"sub"`
	Email             string   `json:"email"`
	Name              string   `json:"name"`
	PreferredUsername string   `json:"preferred_username"`
	Roles             []string `json:"roles"`
	Permissions       []string `json:"permissions"`
}

/* ExtractClaims extracts structured claims from the raw claims map. Roles
   and permissions live under the public metadata claim when the identity
   service nests them. */
func ExtractClaims(rawClaims map[string]interface{}) *Claims {
	claims := &Claims{}

	if sub, ok := rawClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	if email, ok := rawClaims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := rawClaims["name"].(string); ok {
		claims.Name = name
	}
	if preferredUsername, ok := rawClaims["preferred_username"].(string); ok {
		claims.PreferredUsername = preferredUsername
	}

	meta := rawClaims
	if pm, ok := rawClaims["public_metadata"].(map[string]interface{}); ok {
		meta = pm
	}
	claims.Roles = stringSlice(meta["roles"])
	claims.Permissions = stringSlice(meta["permissions"])

	return claims
}

func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

/* LoginAttempt represents a stored login attempt with state/nonce */
type LoginAttempt struct {
	ID           string
	State        string
	Nonce        string
	CodeVerifier string
	RedirectURI  string
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

/* NewLoginAttempt creates a new login attempt */
func NewLoginAttempt(ttl time.Duration) (*LoginAttempt, error) {
	state, err := generateRandomString(32)
	if err != nil {
		return nil, err
	}

	nonce, err := generateRandomString(32)
	if err != nil {
		return nil, err
	}

	codeVerifier, err := generateRandomString(43)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &LoginAttempt{
		ID:           uuid.New().String(),
		State:        state,
		Nonce:        nonce,
		CodeVerifier: codeVerifier,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}, nil
}

func generateRandomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes)[:length], nil
}

func sha256Hash(data string) []byte {
	h := sha256.Sum256([]byte(data))
	return h[:]
}
