package testutil

import "context"

// MockFollowVerifier fires the verification callback synchronously, so
// tests observe follow completion without waiting for timers.
type MockFollowVerifier struct {
	Scheduled []string
	Cancelled []string
}

func (v *MockFollowVerifier) Schedule(
	ctx context.Context, userID, taskID string, fire func(ctx context.Context),
) bool {
	v.Scheduled = append(v.Scheduled, userID+"/"+taskID)
	fire(ctx)
	return true
}

func (v *MockFollowVerifier) Cancel(userID, taskID string) bool {
	v.Cancelled = append(v.Cancelled, userID+"/"+taskID)
	return false
}

func (v *MockFollowVerifier) CancelUser(userID string) {
	v.Cancelled = append(v.Cancelled, userID)
}
