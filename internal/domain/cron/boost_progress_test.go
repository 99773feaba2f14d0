package cron_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xbooster/backend/internal/domain/cron"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/testutil"
)

func TestBoostProgressAdvancesOnHit(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	boostRepo := repository.NewBoostRepository()
	err := boostRepo.Create(ctx, &entity.Boost{
		ID:          "boost1",
		UserID:      "user1",
		TargetCount: 3,
		Status:      entity.BoostActive,
	})
	require.NoError(t, err)

	// 0.1 < 0.3 hits, 0.9 misses.
	job := cron.NewBoostProgressCronJob(boostRepo, &testutil.MockRand{Values: []float64{0.1, 0.9}}, time.Second)

	job.Do(ctx)
	job.Do(ctx)

	boosts, err := boostRepo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 1, boosts[0].CurrentCount)
	require.Equal(t, entity.BoostActive, boosts[0].Status)
}

func TestBoostProgressClampsAndCompletes(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	boostRepo := repository.NewBoostRepository()
	err := boostRepo.Create(ctx, &entity.Boost{
		ID:           "boost1",
		UserID:       "user1",
		TargetCount:  2,
		CurrentCount: 1,
		Status:       entity.BoostActive,
	})
	require.NoError(t, err)

	job := cron.NewBoostProgressCronJob(boostRepo, &testutil.MockRand{Values: []float64{0.0}}, time.Second)
	job.Do(ctx)

	boosts, err := boostRepo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 2, boosts[0].CurrentCount)
	require.Equal(t, entity.BoostCompleted, boosts[0].Status)

	// Completed is terminal; further ticks never touch the row again.
	job.Do(ctx)
	boosts, err = boostRepo.GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Equal(t, 2, boosts[0].CurrentCount)
	require.Equal(t, entity.BoostCompleted, boosts[0].Status)
}

func TestBoostProgressNoActiveBoosts(t *testing.T) {
	ctx := testutil.MockContext()

	job := cron.NewBoostProgressCronJob(repository.NewBoostRepository(), &testutil.MockRand{Values: []float64{0.0}}, time.Second)
	job.Do(ctx)
}
