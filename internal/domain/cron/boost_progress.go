package cron

import (
	"context"
	"errors"
	"time"

	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Rand abstracts the randomness source so tests can replay a fixed
// sequence.
type Rand interface {
	Float64() float64
}

type BoostProgressCronJob struct {
	boostRepo repository.BoostRepository
	rand      Rand
	interval  time.Duration
}

func NewBoostProgressCronJob(
	boostRepo repository.BoostRepository, rand Rand, interval time.Duration,
) *BoostProgressCronJob {
	return &BoostProgressCronJob{boostRepo: boostRepo, rand: rand, interval: interval}
}

// Do rolls an independent chance per active boost. On a hit the progress
// advances by one, clamps at the target, and at the clamp the boost flips
// to completed for good. An empty active list makes the tick a no-op.
func (job *BoostProgressCronJob) Do(ctx context.Context) {
	boosts, err := job.boostRepo.GetActiveList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active boosts: %v", err)
		return
	}

	chance := xcontext.Configs(ctx).Game.BoostTickChance
	for _, boost := range boosts {
		if job.rand.Float64() >= chance {
			continue
		}

		current := boost.CurrentCount + 1
		status := entity.BoostActive
		if current >= boost.TargetCount {
			current = boost.TargetCount
			status = entity.BoostCompleted
		}

		err := job.boostRepo.UpdateProgress(ctx, boost.ID, current, status)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot update boost %s: %v", boost.ID, err)
		}
	}
}

func (job *BoostProgressCronJob) RunNow() bool {
	return false
}

func (job *BoostProgressCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
