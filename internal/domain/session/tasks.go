package session

import (
	"context"
	"errors"

	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type TaskDeriver struct {
	userRepo repository.UserRepository
}

func NewTaskDeriver(userRepo repository.UserRepository) *TaskDeriver {
	return &TaskDeriver{userRepo: userRepo}
}

// Derive turns a candidate batch into follow tasks. Per candidate the
// filters run in a fixed order: the user themself, accounts they already
// follow, then completed tasks. Followers missing from the batch are
// backfilled with individual lookups, each at most once. An empty batch or
// a degraded session falls back to the sample list.
func (d *TaskDeriver) Derive(
	ctx context.Context, sess *Session, batch []entity.User,
) []model.Task {
	price := xcontext.Configs(ctx).Game.FollowReward

	if sess.Degraded || len(batch) == 0 {
		return d.sampleFallback(sess, price)
	}

	tasks := []model.Task{}
	seen := map[string]bool{}
	for _, candidate := range batch {
		seen[candidate.ID] = true

		if candidate.ID == sess.User.ID {
			continue
		}
		if sess.IsFollowing(candidate.ID) {
			continue
		}
		if sess.IsCompleted(candidate.ID) {
			continue
		}

		tasks = append(tasks, model.Task{
			ID:           candidate.ID,
			Name:         candidate.Name,
			Handle:       candidate.Handle,
			AvatarURL:    NormalizeAvatarURL(candidate.AvatarURL),
			IsOnline:     candidate.IsOnline,
			Price:        price,
			IsFollowBack: sess.IsFollower(candidate.ID),
		})
	}

	// Followers deserve a follow-back task even when the batch misses
	// them.
	for _, followerID := range sess.FollowerIDs {
		if seen[followerID] {
			continue
		}
		seen[followerID] = true

		if followerID == sess.User.ID || sess.IsFollowing(followerID) || sess.IsCompleted(followerID) {
			continue
		}

		follower, err := d.userRepo.GetByID(ctx, followerID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Warnf("cannot backfill follower %s: %v", followerID, err)
			}
			continue
		}

		tasks = append(tasks, model.Task{
			ID:           follower.ID,
			Name:         follower.Name,
			Handle:       follower.Handle,
			AvatarURL:    NormalizeAvatarURL(follower.AvatarURL),
			IsOnline:     follower.IsOnline,
			Price:        price,
			IsFollowBack: true,
		})
	}

	return tasks
}

func (d *TaskDeriver) sampleFallback(sess *Session, price int64) []model.Task {
	tasks := []model.Task{}
	for _, sample := range SampleTasks {
		if sess.IsFollowing(sample.ID) || sess.IsCompleted(sample.ID) {
			continue
		}

		task := sample
		task.Price = price
		tasks = append(tasks, task)
	}

	return tasks
}
