package model

import (
	"context"
	"net/http"
	"time"

	"github.com/xbooster/backend/pkg/xcontext"
)

// Access Token and Refresh Token
type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RefreshToken struct {
	Family  string `json:"family"`
	Counter uint64 `json:"counter"`
}

type OAuth2LoginRequest struct {
	Type string `json:"type"`
}

type OAuth2LoginResponse struct {
	RedirectURL string `json:"redirect_url"`
}

type OAuth2VerifyRequest struct {
	Type         string `json:"type"`
	IDToken      string `json:"id_token"`
	AccessToken  string `json:"access_token"`
	Code         string `json:"code"`
	CodeVerifier string `json:"code_verifier"`
	State        string `json:"state"`
}

type OAuth2VerifyResponse struct {
	User         User   `json:"user"`
	Degraded     bool   `json:"degraded"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (r OAuth2VerifyResponse) CookieInfo(ctx context.Context) []http.Cookie {
	cfg := xcontext.Configs(ctx).Auth
	return []http.Cookie{
		{
			Name:     cfg.AccessToken.Name,
			Value:    r.AccessToken,
			Path:     "/",
			Expires:  time.Now().Add(cfg.AccessToken.Expiration.Duration),
			Secure:   true,
			HttpOnly: false,
		},
		{
			Name:     cfg.RefreshToken.Name,
			Value:    r.RefreshToken,
			Path:     "/",
			Expires:  time.Now().Add(cfg.RefreshToken.Expiration.Duration),
			Secure:   true,
			HttpOnly: true,
		},
	}
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshTokenResponse) CookieInfo(ctx context.Context) []http.Cookie {
	return OAuth2VerifyResponse{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}.CookieInfo(ctx)
}

type LogoutRequest struct{}

type LogoutResponse struct{}
