package identity

import (
	"fmt"
	"net/http"

	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/guard"
	"github.com/RuseCristian/reddit-business-ideas-explorer/internal/identity/oidc"
)

/* OIDCResolver resolves the request principal by verifying an ID token
   against the external identity service. Same anonymous/error contract as
   JWTResolver. */
type OIDCResolver struct {
	provider *oidc.Provider
}

/* NewOIDCResolver creates an OIDC-backed resolver */
func NewOIDCResolver(provider *oidc.Provider) *OIDCResolver {
	return &OIDCResolver{provider: provider}
}

func (r *OIDCResolver) Resolve(req *http.Request) (*guard.Principal, error) {
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

	_, rawClaims, err := r.provider.VerifyIDToken(req.Context(), tokenString)
	if err != nil {
		return nil, fmt.Errorf("ID token verification failed: %w", err)
	}

	claims := oidc.ExtractClaims(rawClaims)
	return &guard.Principal{
		ID:          claims.Subject,
		Roles:       claims.Roles,
		Permissions: claims.Permissions,
	}, nil
}
