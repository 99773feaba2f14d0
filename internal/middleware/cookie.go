package middleware

import (
	"context"
	"net/http"

	"github.com/xbooster/backend/pkg/router"
	"github.com/xbooster/backend/pkg/xcontext"
)

type CookieResponse interface {
	CookieInfo(ctx context.Context) []http.Cookie
}

// HandleSetAccessToken copies token cookies from responses that carry
// them onto the wire.
func HandleSetAccessToken() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		tokenResp, ok := xcontext.Response(ctx).(CookieResponse)
		if ok {
			for _, cookie := range tokenResp.CookieInfo(ctx) {
				cookie := cookie
				http.SetCookie(xcontext.HTTPWriter(ctx), &cookie)
			}
		}

		return ctx, nil
	}
}
