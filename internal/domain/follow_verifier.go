package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/puzpuzpuz/xsync"
	"github.com/xbooster/backend/pkg/xcontext"
)

// FollowVerifier delays follow completion until the external follow had a
// chance to happen. Pending verifications can be cancelled, and a
// cancelled one never fires.
type FollowVerifier interface {
	Schedule(ctx context.Context, userID, taskID string, fire func(ctx context.Context)) bool
	Cancel(userID, taskID string) bool
	CancelUser(userID string)
}

type timerFollowVerifier struct {
	timers *xsync.MapOf[string, *time.Timer]
}

func NewTimerFollowVerifier() *timerFollowVerifier {
	return &timerFollowVerifier{timers: xsync.NewMapOf[*time.Timer]()}
}

func verifierKey(userID, taskID string) string {
	return fmt.Sprintf("%s/%s", userID, taskID)
}

// Schedule registers a one-shot timer keyed by user and task. A second
// schedule for the same pair is rejected while the first is pending. The
// fire callback only runs if the entry is still registered when the timer
// expires.
func (v *timerFollowVerifier) Schedule(
	ctx context.Context, userID, taskID string, fire func(ctx context.Context),
) bool {
	key := verifierKey(userID, taskID)
	delay := xcontext.Configs(ctx).Game.FollowVerifyDelay.Duration

	timer := time.AfterFunc(delay, func() {
		if _, ok := v.timers.LoadAndDelete(key); ok {
			fire(ctx)
		}
	})

	if _, loaded := v.timers.LoadOrStore(key, timer); loaded {
		timer.Stop()
		return false
	}

	return true
}

func (v *timerFollowVerifier) Cancel(userID, taskID string) bool {
	timer, ok := v.timers.LoadAndDelete(verifierKey(userID, taskID))
	if ok {
		timer.Stop()
	}

	return ok
}

func (v *timerFollowVerifier) CancelUser(userID string) {
	prefix := userID + "/"
	v.timers.Range(func(key string, timer *time.Timer) bool {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			if t, ok := v.timers.LoadAndDelete(key); ok {
				t.Stop()
			}
		}
		return true
	})
}
