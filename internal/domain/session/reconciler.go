package session

import (
	"context"
	"errors"
	"time"

	"github.com/xbooster/backend/internal/common"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/xcontext"
	"github.com/xbooster/backend/pkg/xredis"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Session is the reconciled per-login state every gameplay operation
// starts from.
type Session struct {
	User entity.User

	FollowerIDs      []string
	FollowingIDs     []string
	CompletedTaskIDs []string

	// Degraded marks a session built without relationship data. Task
	// derivation falls back to the sample list.
	Degraded bool
}

func (s *Session) IsFollowing(id string) bool {
	return slices.Contains(s.FollowingIDs, id)
}

func (s *Session) IsFollower(id string) bool {
	return slices.Contains(s.FollowerIDs, id)
}

func (s *Session) IsCompleted(id string) bool {
	return slices.Contains(s.CompletedTaskIDs, id)
}

type Reconciler struct {
	userRepo         repository.UserRepository
	relationshipRepo repository.RelationshipRepository
	redisClient      xredis.Client
	outbox           common.Outbox
}

func NewReconciler(
	userRepo repository.UserRepository,
	relationshipRepo repository.RelationshipRepository,
	redisClient xredis.Client,
	outbox common.Outbox,
) *Reconciler {
	return &Reconciler{
		userRepo:         userRepo,
		relationshipRepo: relationshipRepo,
		redisClient:      redisClient,
		outbox:           outbox,
	}
}

// Reconcile merges every profile source into one session, overwrites the
// follower and following cardinalities from the relationship store, and
// writes the result back. Only the relationship fetch gates the login; the
// write-backs are best effort and report to the outbox.
func (r *Reconciler) Reconcile(ctx context.Context, identity Identity) (*Session, error) {
	remote, err := r.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		remote = nil
	}

	var cached *CachedProfile
	var snapshot CachedProfile
	err = r.redisClient.GetObj(ctx, common.RedisKeyProfile(identity.UserID), &snapshot)
	if err == nil {
		cached = &snapshot
	} else if !xredis.IsNil(err) {
		xcontext.Logger(ctx).Warnf("cannot load cached profile: %v", err)
	}

	user := Merge(identity, remote, cached, xcontext.Configs(ctx).Game)
	user.IsOnline = true
	user.LastSeen = time.Now()

	sess := &Session{User: user}

	var followerIDs, followingIDs []string
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		followerIDs, err = r.relationshipRepo.GetFollowerIDs(groupCtx, identity.UserID)
		return err
	})
	group.Go(func() error {
		var err error
		followingIDs, err = r.relationshipRepo.GetFollowingIDs(groupCtx, identity.UserID)
		return err
	})

	if err := group.Wait(); err != nil {
		xcontext.Logger(ctx).Errorf("cannot fetch relationships: %v", err)
		sess.Degraded = true
		sess.User.Followers = 0
		sess.User.Following = 0

		// Only the relationship fetch failed; the completed-task record
		// is still reachable and must keep filtering the fallback tasks.
		sess.CompletedTaskIDs = r.mergeCompletedTasks(ctx, &sess.User)
		return sess, nil
	}

	sess.FollowerIDs = followerIDs
	sess.FollowingIDs = followingIDs

	// The relationship store is the source of truth for both counts, no
	// matter what any profile source claimed.
	sess.User.Followers = len(followerIDs)
	sess.User.Following = len(followingIDs)

	sess.CompletedTaskIDs = r.mergeCompletedTasks(ctx, &sess.User)

	r.outbox.Done(ctx, "reconcile-upsert", r.upsert(ctx, remote, &sess.User))
	r.outbox.Done(ctx, "reconcile-snapshot", r.redisClient.SetObj(
		ctx, common.RedisKeyProfile(identity.UserID), snapshotOf(&sess.User), 0))

	return sess, nil
}

// mergeCompletedTasks unions the durable completed-task column with the
// session cache, keeping the durable order and appending cache-only ids.
func (r *Reconciler) mergeCompletedTasks(ctx context.Context, user *entity.User) []string {
	merged := append([]string{}, user.CompletedTasks...)

	cachedIDs, err := r.redisClient.SMembers(ctx, common.RedisKeyCompletedTasks(user.ID))
	if err != nil && !xredis.IsNil(err) {
		xcontext.Logger(ctx).Warnf("cannot load cached completed tasks: %v", err)
		return merged
	}

	extra := []string{}
	for _, id := range cachedIDs {
		if !slices.Contains(merged, id) {
			extra = append(extra, id)
		}
	}
	slices.Sort(extra)
	merged = append(merged, extra...)

	user.CompletedTasks = merged

	if len(merged) > 0 {
		r.outbox.Done(ctx, "reconcile-completed-cache",
			r.redisClient.SAdd(ctx, common.RedisKeyCompletedTasks(user.ID), merged...))
	}

	return merged
}

// upsert writes back only the fields this reconciler owns, plus the
// freshly merged completed-task union. History has its own write path and
// must not be clobbered here.
func (r *Reconciler) upsert(ctx context.Context, remote *entity.User, user *entity.User) error {
	if remote == nil {
		return r.userRepo.Create(ctx, user)
	}

	return r.userRepo.Update(ctx, user.ID, map[string]any{
		"name":            user.Name,
		"handle":          user.Handle,
		"avatar_url":      user.AvatarURL,
		"is_online":       user.IsOnline,
		"last_seen":       user.LastSeen,
		"followers":       user.Followers,
		"following":       user.Following,
		"score":           user.Score,
		"streak":          user.Streak,
		"last_check_in":   user.LastCheckIn,
		"completed_tasks": user.CompletedTasks,
	})
}
