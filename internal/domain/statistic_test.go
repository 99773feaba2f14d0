package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xbooster/backend/internal/common"
	"github.com/xbooster/backend/internal/domain"
	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/testutil"
)

func TestGetLeaderboard(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user2")
	testutil.CreateFixtureDb(ctx)
	redisClient := testutil.NewMockRedisClient()

	require.NoError(t, redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard(), 30, "user1"))
	require.NoError(t, redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard(), 20, "user2"))
	require.NoError(t, redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard(), 10, "user3"))

	statisticDomain := domain.NewStatisticDomain(repository.NewUserRepository(), redisClient)
	resp, err := statisticDomain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Leaderboard, 3)
	require.Equal(t, 2, resp.MyPosition)

	require.Equal(t, "user1", resp.Leaderboard[0].UserID)
	require.Equal(t, int64(30), resp.Leaderboard[0].Score)
	require.Equal(t, 1, resp.Leaderboard[0].Position)
	require.Equal(t, "User One", resp.Leaderboard[0].Name)
	require.Equal(t, "user_one", resp.Leaderboard[0].Handle)

	require.Equal(t, "user3", resp.Leaderboard[2].UserID)
	require.Equal(t, 3, resp.Leaderboard[2].Position)
}

func TestGetLeaderboardPagination(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	testutil.CreateFixtureDb(ctx)
	redisClient := testutil.NewMockRedisClient()

	require.NoError(t, redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard(), 30, "user1"))
	require.NoError(t, redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard(), 20, "user2"))
	require.NoError(t, redisClient.ZIncrBy(ctx, common.RedisKeyLeaderboard(), 10, "user3"))

	statisticDomain := domain.NewStatisticDomain(repository.NewUserRepository(), redisClient)
	resp, err := statisticDomain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, resp.Leaderboard, 2)
	require.Equal(t, "user2", resp.Leaderboard[0].UserID)
	require.Equal(t, 2, resp.Leaderboard[0].Position)
	require.Equal(t, "user3", resp.Leaderboard[1].UserID)
	require.Equal(t, 3, resp.Leaderboard[1].Position)
}

func TestGetLeaderboardLimitValidation(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	testutil.CreateFixtureDb(ctx)

	statisticDomain := domain.NewStatisticDomain(
		repository.NewUserRepository(), testutil.NewMockRedisClient())

	_, err := statisticDomain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{Limit: 51})
	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
	require.Equal(t, "Exceed the maximum of limit (50)", errx.Message)

	_, err = statisticDomain.GetLeaderboard(ctx, &model.GetLeaderboardRequest{Limit: -1})
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
}
