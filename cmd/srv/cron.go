package main

import (
	"math/rand"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/xbooster/backend/internal/domain/cron"
	"github.com/xbooster/backend/pkg/xcontext"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRedisClient()
	s.loadRepos()

	game := xcontext.Configs(s.ctx).Game
	source := rand.New(rand.NewSource(time.Now().UnixNano()))

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(
		s.ctx,
		cron.NewBoostProgressCronJob(s.boostRepo, source, game.BoostTickInterval.Duration),
	)

	return nil
}
