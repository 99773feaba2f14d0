package authenticator

import (
	"context"
	"time"
)

type OAuth2User struct {
	ID        string
	Username  string
	Name      string
	AvatarURL string
}

type IOAuth2Service interface {
	Service() string

	// GetUserID looks up the remote profile behind an access token issued
	// by the service.
	GetUserID(ctx context.Context, accessToken string) (OAuth2User, error)

	// VerifyIDToken verifies a raw OIDC id token and extracts the profile
	// from its claims.
	VerifyIDToken(ctx context.Context, rawIDToken string) (OAuth2User, error)

	// AuthCodeURL builds the authorization url the browser is redirected
	// to. The code verifier is bound to the request as an S256 challenge.
	AuthCodeURL(state, codeVerifier string) (string, error)

	// ExchangeAccessToken trades an authorization code for an access
	// token.
	ExchangeAccessToken(ctx context.Context, code, codeVerifier string) (string, error)
}

type TokenEngine interface {
	Generate(expiration time.Duration, obj any) (string, error)
	Verify(token string, obj any) error
}
