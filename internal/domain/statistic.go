package domain

import (
	"context"

	"github.com/xbooster/backend/internal/common"
	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/xcontext"
	"github.com/xbooster/backend/pkg/xredis"
)

type StatisticDomain interface {
	GetLeaderboard(ctx context.Context, req *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
}

type statisticDomain struct {
	userRepo    repository.UserRepository
	redisClient xredis.Client
}

func NewStatisticDomain(
	userRepo repository.UserRepository,
	redisClient xredis.Client,
) *statisticDomain {
	return &statisticDomain{userRepo: userRepo, redisClient: redisClient}
}

func (d *statisticDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	records, err := d.redisClient.ZRevRangeWithScores(
		ctx, common.RedisKeyLeaderboard(), req.Offset, req.Limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard: %v", err)
		return nil, errorx.Unknown
	}

	ids := []string{}
	for _, record := range records {
		if id, ok := record.Member.(string); ok {
			ids = append(ids, id)
		}
	}

	users, err := d.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get leaderboard users: %v", err)
		return nil, errorx.Unknown
	}

	userMap := map[string]int{}
	for i := range users {
		userMap[users[i].ID] = i
	}

	leaderboard := []model.LeaderboardEntry{}
	for i, record := range records {
		id, ok := record.Member.(string)
		if !ok {
			continue
		}

		entry := model.LeaderboardEntry{
			UserID:   id,
			Score:    int64(record.Score),
			Position: req.Offset + i + 1,
		}

		if idx, ok := userMap[id]; ok {
			entry.Name = users[idx].Name
			entry.Handle = users[idx].Handle
			entry.AvatarURL = users[idx].AvatarURL
		}

		leaderboard = append(leaderboard, entry)
	}

	myPosition := 0
	rank, err := d.redisClient.ZRevRank(ctx, common.RedisKeyLeaderboard(), xcontext.RequestUserID(ctx))
	if err == nil {
		myPosition = int(rank) + 1
	} else if !xredis.IsNil(err) {
		xcontext.Logger(ctx).Warnf("Cannot get own rank: %v", err)
	}

	return &model.GetLeaderboardResponse{
		Leaderboard: leaderboard,
		MyPosition:  myPosition,
	}, nil
}
