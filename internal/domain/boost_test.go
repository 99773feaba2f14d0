package domain_test

import (
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"github.com/xbooster/backend/internal/domain"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/testutil"
)

func newBoostDomain() domain.BoostDomain {
	node, err := snowflake.NewNode(3)
	if err != nil {
		panic(err)
	}

	return domain.NewBoostDomain(
		repository.NewUserRepository(), repository.NewBoostRepository(), node)
}

func TestBuyBoostDebitsAndCreates(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user2")
	testutil.CreateFixtureDb(ctx)

	boostDomain := newBoostDomain()
	resp, err := boostDomain.BuyBoost(ctx, &model.BuyBoostRequest{Followers: 10})
	require.NoError(t, err)
	require.Equal(t, int64(200), resp.Score)
	require.Equal(t, 10, resp.Boost.TargetCount)
	require.Equal(t, string(entity.BoostActive), resp.Boost.Status)

	user, err := repository.NewUserRepository().GetByID(ctx, "user2")
	require.NoError(t, err)
	require.Equal(t, int64(200), user.Score)
	require.Len(t, user.History, 1)
	require.Equal(t, entity.HistoryTypeBoost, user.History[0].Type)
	require.Equal(t, int64(-1000), user.History[0].Points)

	boosts, err := repository.NewBoostRepository().GetByUserID(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, boosts, 1)
	require.Equal(t, 10, boosts[0].TargetCount)
	require.Equal(t, entity.BoostActive, boosts[0].Status)
}

func TestBuyBoostInsufficientScore(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user1")
	testutil.CreateFixtureDb(ctx)

	boostDomain := newBoostDomain()
	_, err := boostDomain.BuyBoost(ctx, &model.BuyBoostRequest{Followers: 10})

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unavailable, errx.Code)

	// The rejection leaves everything untouched.
	user, err := repository.NewUserRepository().GetByID(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, int64(500), user.Score)
	require.Empty(t, user.History)

	boosts, err := repository.NewBoostRepository().GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Empty(t, boosts)
}

func TestBuyBoostKeepsEveryHistoryEntry(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user9")
	err := repository.NewUserRepository().Create(ctx, &entity.User{
		Base:   entity.Base{ID: "user9"},
		Handle: "user_nine",
		Score:  10000,
	})
	require.NoError(t, err)

	boostDomain := newBoostDomain()
	_, err = boostDomain.BuyBoost(ctx, &model.BuyBoostRequest{Followers: 10})
	require.NoError(t, err)
	_, err = boostDomain.BuyBoost(ctx, &model.BuyBoostRequest{Followers: 50})
	require.NoError(t, err)

	user, err := repository.NewUserRepository().GetByID(ctx, "user9")
	require.NoError(t, err)
	require.Equal(t, int64(4500), user.Score)
	require.Len(t, user.History, 2)
	require.Equal(t, int64(-4500), user.History[0].Points)
	require.Equal(t, int64(-1000), user.History[1].Points)
}

func TestBuyBoostSecondPurchaseBeyondBalance(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user2")
	testutil.CreateFixtureDb(ctx)

	// user2 starts with 1200, enough for exactly one 1000-point boost.
	boostDomain := newBoostDomain()
	_, err := boostDomain.BuyBoost(ctx, &model.BuyBoostRequest{Followers: 10})
	require.NoError(t, err)

	_, err = boostDomain.BuyBoost(ctx, &model.BuyBoostRequest{Followers: 10})
	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unavailable, errx.Code)

	user, err := repository.NewUserRepository().GetByID(ctx, "user2")
	require.NoError(t, err)
	require.Equal(t, int64(200), user.Score)
	require.Len(t, user.History, 1)

	boosts, err := repository.NewBoostRepository().GetByUserID(ctx, "user2")
	require.NoError(t, err)
	require.Len(t, boosts, 1)
}

func TestBuyBoostUnknownOption(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user2")
	testutil.CreateFixtureDb(ctx)

	boostDomain := newBoostDomain()
	_, err := boostDomain.BuyBoost(ctx, &model.BuyBoostRequest{Followers: 7})

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func TestGetBoosts(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user2")
	testutil.CreateFixtureDb(ctx)

	boostDomain := newBoostDomain()
	_, err := boostDomain.BuyBoost(ctx, &model.BuyBoostRequest{Followers: 50})
	require.NoError(t, err)

	resp, err := boostDomain.GetBoosts(ctx, &model.GetBoostsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Boosts, 1)
	require.Equal(t, 50, resp.Boosts[0].TargetCount)

	require.Len(t, resp.Options, 3)
	require.True(t, resp.Options[1].Best)
	require.Equal(t, int64(4500), resp.Options[1].Price)
}
