package middleware

import (
	"context"
	"time"

	"github.com/xbooster/backend/pkg/router"
	"github.com/xbooster/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		latency := time.Since(xcontext.StartTime(ctx))

		if err := xcontext.Error(ctx); err != nil {
			xcontext.Logger(ctx).Warnf("%s %s (%s): %v", req.Method, req.URL.Path, latency, err)
			return
		}

		xcontext.Logger(ctx).Infof("%s %s (%s)", req.Method, req.URL.Path, latency)
	}
}
