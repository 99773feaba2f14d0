package middleware

import (
	"context"
	"strings"

	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/router"
	"github.com/xbooster/backend/pkg/xcontext"
)

type AuthVerifier struct {
	useAccessToken bool
}

func NewAuthVerifier() *AuthVerifier {
	return &AuthVerifier{}
}

func (a *AuthVerifier) WithAccessToken() *AuthVerifier {
	a.useAccessToken = true
	return a
}

func (a *AuthVerifier) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		if !a.useAccessToken {
			return ctx, nil
		}

		token := getAccessToken(ctx)
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
		}

		var accessToken model.AccessToken
		if err := xcontext.TokenEngine(ctx).Verify(token, &accessToken); err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify access token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid access token")
		}

		return xcontext.WithRequestUserID(ctx, accessToken.ID), nil
	}
}

func getAccessToken(ctx context.Context) string {
	req := xcontext.HTTPRequest(ctx)

	if authorization := req.Header.Get("Authorization"); authorization != "" {
		token, found := strings.CutPrefix(authorization, "Bearer ")
		if found {
			return token
		}
	}

	cookie, err := req.Cookie(xcontext.Configs(ctx).Auth.AccessToken.Name)
	if err != nil {
		return ""
	}

	return cookie.Value
}
