package common

import (
	"context"

	"github.com/xbooster/backend/pkg/xcontext"
)

// Outbox receives the results of best-effort writes that happen after the
// user-visible part of an operation finished. Failures reported here never
// fail the request.
type Outbox interface {
	Done(ctx context.Context, op string, err error)
}

type logOutbox struct{}

func NewLogOutbox() *logOutbox {
	return &logOutbox{}
}

func (logOutbox) Done(ctx context.Context, op string, err error) {
	if err != nil {
		xcontext.Logger(ctx).Warnf("deferred write %s failed: %v", op, err)
		return
	}

	xcontext.Logger(ctx).Debugf("deferred write %s ok", op)
}
