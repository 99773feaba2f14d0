package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/math"
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

type UserDomain interface {
	GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error)
	GetTasks(ctx context.Context, req *model.GetTasksRequest) (*model.GetTasksResponse, error)
	GetHistory(ctx context.Context, req *model.GetHistoryRequest) (*model.GetHistoryResponse, error)
	CheckIn(ctx context.Context, req *model.CheckInRequest) (*model.CheckInResponse, error)
	LinkWallet(ctx context.Context, req *model.LinkWalletRequest) (*model.LinkWalletResponse, error)
	UnlinkWallet(ctx context.Context, req *model.UnlinkWalletRequest) (*model.UnlinkWalletResponse, error)
}

type userDomain struct {
	userRepo    repository.UserRepository
	reconciler  *session.Reconciler
	deriver     *session.TaskDeriver
	redisClient xredis.Client
	outbox      common.Outbox
	idGenerator *snowflake.Node
}

func NewUserDomain(
	userRepo repository.UserRepository,
	reconciler *session.Reconciler,
	deriver *session.TaskDeriver,
	redisClient xredis.Client,
	outbox common.Outbox,
	idGenerator *snowflake.Node,
) *userDomain {
	return &userDomain{
		userRepo:    userRepo,
		reconciler:  reconciler,
		deriver:     deriver,
		redisClient: redisClient,
		outbox:      outbox,
		idGenerator: idGenerator,
	}
}

func (d *userDomain) GetMe(
	ctx context.Context, req *model.GetMeRequest,
) (*model.GetMeResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMeResponse{User: model.ConvertUser(user)}, nil
}

func (d *userDomain) GetTasks(
	ctx context.Context, req *model.GetTasksRequest,
) (*model.GetTasksResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	// The row already exists mid-session, so this reconcile only
	// refreshes relationship data.
	sess, err := d.reconciler.Reconcile(ctx, session.Identity{UserID: userID})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reconcile session: %v", err)
		return nil, errorx.Unknown
	}

	batch, err := d.userRepo.GetBatch(ctx, userID, xcontext.Configs(ctx).Game.TaskBatchLimit)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot fetch candidate batch: %v", err)
		batch = nil
	}

	tasks := d.deriver.Derive(ctx, sess, batch)

	resp := &model.GetTasksResponse{FollowBack: []model.Task{}, Explore: []model.Task{}}
	for _, task := range tasks {
		if task.IsFollowBack {
			resp.FollowBack = append(resp.FollowBack, task)
		} else {
			resp.Explore = append(resp.Explore, task)
		}
	}

	return resp, nil
}

func (d *userDomain) GetHistory(
	ctx context.Context, req *model.GetHistoryRequest,
) (*model.GetHistoryResponse, error) {
	user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetHistoryResponse{History: model.ConvertHistory(user.History)}, nil
}

// CheckIn claims the daily bonus. Consecutive days extend the streak, a
// gap resets it to one, and the bonus is capped so the total reward never
// exceeds the configured maximum.
func (d *userDomain) CheckIn(
	ctx context.Context, req *model.CheckInRequest,
) (*model.CheckInResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	game := xcontext.Configs(ctx).Game

	// Everything reads and writes inside one transaction; the day stamp is
	// additionally guarded in SQL so two racing check-ins can never both
	// pass the today check, and the history push never uses a stale list.
	var resp *model.CheckInResponse
	err := xcontext.WithDBTransaction(ctx, func(ctx context.Context) error {
		user, err := d.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.LastCheckIn.Valid && dateutil.IsToday(user.LastCheckIn.String) {
			return errorx.New(errorx.Unavailable, "You already checked in today")
		}

		newStreak := 1
		if user.LastCheckIn.Valid && dateutil.IsYesterday(user.LastCheckIn.String) {
			newStreak = user.Streak + 1
		}

		reward := game.BaseCheckInReward +
			math.MinInt64(int64(newStreak)*game.StreakBonus, game.MaxCheckInReward-game.BaseCheckInReward)

		entry := common.NewHistoryEntry(
			d.idGenerator, entity.HistoryTypeCheckIn,
			fmt.Sprintf("Daily check-in (streak %d)", newStreak), reward, "")

		if err := d.userRepo.AddScore(ctx, userID, reward); err != nil {
			return err
		}

		err = d.userRepo.RecordCheckIn(ctx, userID, dateutil.Today(), map[string]any{
			"streak":  newStreak,
			"history": common.PushHistory(user.History, entry, game.HistoryLimit),
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.Unavailable, "You already checked in today")
			}
			return err
		}

		resp = &model.CheckInResponse{
			Streak: newStreak,
			Reward: reward,
			Score:  user.Score + reward,
		}
		return nil
	})
	if err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) {
			return nil, errx
		}

		xcontext.Logger(ctx).Errorf("Cannot apply check-in: %v", err)
		return nil, errorx.Unknown
	}

	d.outbox.Done(ctx, "checkin-leaderboard",
		d.redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard(), resp.Reward, userID))

	return resp, nil
}

func (d *userDomain) LinkWallet(
	ctx context.Context, req *model.LinkWalletRequest,
) (*model.LinkWalletResponse, error) {
	if req.Address == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty address")
	}

	err := d.userRepo.Update(ctx, xcontext.RequestUserID(ctx), map[string]any{
		"wallet_address": sql.NullString{Valid: true, String: req.Address},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot link wallet: %v", err)
		return nil, errorx.Unknown
	}

	return &model.LinkWalletResponse{}, nil
}

func (d *userDomain) UnlinkWallet(
	ctx context.Context, req *model.UnlinkWalletRequest,
) (*model.UnlinkWalletResponse, error) {
	err := d.userRepo.Update(ctx, xcontext.RequestUserID(ctx), map[string]any{
		"wallet_address": sql.NullString{},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unlink wallet: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UnlinkWalletResponse{}, nil
}
