package identity

import (
	"fmt"
	"net/http"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/guard"
)

/* JWTResolver resolves the request principal from a bearer token. It
   implements guard.Resolver: requests without an Authorization header are
   anonymous, requests with a bad token are an error. */
type JWTResolver struct{}

/* NewJWTResolver creates a JWT-backed resolver */
func NewJWTResolver() *JWTResolver {
	return &JWTResolver{}
}

/* Resolve extracts and validates the bearer token. Browser WebSockets cannot
   set custom headers, so websocket endpoints may pass the token via the
   ?token= query parameter instead. */
func (r *JWTResolver) Resolve(req *http.Request) (*guard.Principal, error) {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		if token := req.URL.Query().Get("token"); token != "" {
			authHeader = "Bearer " + token
		}
	}
	if authHeader == "" {
		return nil, nil
	}

	tokenString, err := ExtractToken(authHeader)
	if err != nil {
		return nil, err
	}

	claims, err := ValidateToken(tokenString)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	return &guard.Principal{
		ID:          claims.UserID,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}, nil
}
