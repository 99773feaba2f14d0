package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/xbooster/backend/internal/common"
	"github.com/xbooster/backend/internal/domain/session"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/dateutil"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/xcontext"
	"github.com/xbooster/backend/pkg/xredis"
	"gorm.io/gorm"
)

type FollowDomain interface {
	Follow(ctx context.Context, req *model.FollowRequest) (*model.FollowResponse, error)
}

type followDomain struct {
	userRepo         repository.UserRepository
	relationshipRepo repository.RelationshipRepository
	redisClient      xredis.Client
	verifier         FollowVerifier
	outbox           common.Outbox
	idGenerator      *snowflake.Node
}

func NewFollowDomain(
	userRepo repository.UserRepository,
	relationshipRepo repository.RelationshipRepository,
	redisClient xredis.Client,
	verifier FollowVerifier,
	outbox common.Outbox,
	idGenerator *snowflake.Node,
) *followDomain {
	return &followDomain{
		userRepo:         userRepo,
		relationshipRepo: relationshipRepo,
		redisClient:      redisClient,
		verifier:         verifier,
		outbox:           outbox,
		idGenerator:      idGenerator,
	}
}

// Follow validates the task and registers the delayed verification. The
// reward lands when the timer fires, not here.
func (d *followDomain) Follow(
	ctx context.Context, req *model.FollowRequest,
) (*model.FollowResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	taskID := req.TaskID

	if taskID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty task id")
	}

	if taskID == userID {
		return nil, errorx.New(errorx.BadRequest, "You cannot follow yourself")
	}

	following, err := d.relationshipRepo.Exists(ctx, userID, taskID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check relationship: %v", err)
		return nil, errorx.Unknown
	}
	if following {
		return nil, errorx.New(errorx.AlreadyExists, "You already follow this account")
	}

	completed, err := d.redisClient.SIsMember(ctx, common.RedisKeyCompletedTasks(userID), taskID)
	if err != nil && !xredis.IsNil(err) {
		xcontext.Logger(ctx).Errorf("Cannot check completed tasks: %v", err)
		return nil, errorx.Unknown
	}
	if completed {
		return nil, errorx.New(errorx.AlreadyExists, "You already completed this task")
	}

	ok := d.verifier.Schedule(ctx, userID, taskID, func(ctx context.Context) {
		d.outbox.Done(ctx, "follow-complete", d.completeFollow(ctx, userID, taskID))
	})
	if !ok {
		return nil, errorx.New(errorx.AlreadyExists, "This follow is already being verified")
	}

	return &model.FollowResponse{Pending: true}, nil
}

// completeFollow runs when the verification timer fires. Everything on the
// relational side commits in one transaction; redis bookkeeping follows
// after the commit.
func (d *followDomain) completeFollow(ctx context.Context, userID, taskID string) error {
	completed, err := d.redisClient.SIsMember(ctx, common.RedisKeyCompletedTasks(userID), taskID)
	if err != nil && !xredis.IsNil(err) {
		return err
	}
	if completed {
		return nil
	}

	handle := d.taskHandle(ctx, taskID)
	game := xcontext.Configs(ctx).Game

	counter := common.DailyFollowCounter{Date: dateutil.Today()}
	err = d.redisClient.GetObj(ctx, common.RedisKeyDailyFollows(userID), &counter)
	if err != nil && !xredis.IsNil(err) {
		return err
	}
	if counter.Date != dateutil.Today() {
		counter = common.DailyFollowCounter{Date: dateutil.Today()}
	}

	// Past the daily limit the follow still completes, only the reward
	// drops to zero.
	var reward int64
	if counter.Count < game.DailyFollowLimit {
		reward = game.FollowReward
	}

	err = xcontext.WithDBTransaction(ctx, func(ctx context.Context) error {
		err := d.relationshipRepo.Create(ctx, &entity.Relationship{
			FollowerID: userID,
			FollowedID: taskID,
		})
		if err != nil {
			return err
		}

		if err := d.userRepo.IncreaseFollowing(ctx, userID, 1); err != nil {
			return err
		}

		user, err := d.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		completedTasks := append(user.CompletedTasks, taskID)
		updateMap := map[string]any{"completed_tasks": completedTasks}

		if reward > 0 {
			if err := d.userRepo.AddScore(ctx, userID, reward); err != nil {
				return err
			}

			entry := common.NewHistoryEntry(
				d.idGenerator, entity.HistoryTypeEarn,
				fmt.Sprintf("Followed @%s", handle), reward,
				fmt.Sprintf("https://x.com/%s", handle),
			)
			updateMap["history"] = common.PushHistory(user.History, entry, game.HistoryLimit)
		}

		return d.userRepo.Update(ctx, userID, updateMap)
	})
	if err != nil {
		// The timer already fired; replaying a completed edge is the
		// only benign failure here.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	d.outbox.Done(ctx, "follow-completed-cache",
		d.redisClient.SAdd(ctx, common.RedisKeyCompletedTasks(userID), taskID))

	// Only rewarded follows consume the daily budget; a zero-reward
	// completion past the limit leaves the counter where it is.
	if reward > 0 {
		counter.Count++
		d.outbox.Done(ctx, "follow-daily-counter",
			d.redisClient.SetObj(ctx, common.RedisKeyDailyFollows(userID), counter, 0))
		d.outbox.Done(ctx, "follow-leaderboard",
			d.redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard(), reward, userID))
	}

	return nil
}

func (d *followDomain) taskHandle(ctx context.Context, taskID string) string {
	target, err := d.userRepo.GetByID(ctx, taskID)
	if err == nil {
		return target.Handle
	}

	if sample, ok := session.SampleTaskByID(taskID); ok {
		return sample.Handle
	}

	return taskID
}
