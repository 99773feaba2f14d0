package testutil

import (
	"context"
	"time"

	"github.com/gorilla/sessions"
	"github.com/xbooster/backend/config"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/pkg/authenticator"
	"github.com/xbooster/backend/pkg/logger"
	"github.com/xbooster/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: config.Duration{Duration: time.Minute},
			},
			RefreshToken: config.TokenConfigs{
				Name:       "refresh_token",
				Expiration: config.Duration{Duration: time.Minute},
			},
		},
		Session: config.SessionConfigs{
			Secret: "session-secret",
			Name:   "xbooster_session",
		},
		Game: config.GameConfigs{
			DefaultScore:      500,
			FollowReward:      10,
			BaseCheckInReward: 50,
			StreakBonus:       10,
			MaxCheckInReward:  150,
			DailyFollowLimit:  10,
			TaskBatchLimit:    50,
			HistoryLimit:      20,
			FollowVerifyDelay: config.Duration{Duration: time.Millisecond},
			BoostTickInterval: config.Duration{Duration: 2 * time.Second},
			BoostTickChance:   0.3,
			BoostOptions: []config.BoostOption{
				{Followers: 10, Price: 1000},
				{Followers: 50, Price: 4500, Best: true},
				{Followers: 100, Price: 8000},
			},
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger())
	ctx = xcontext.WithTokenEngine(ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithSessionStore(ctx, sessions.NewCookieStore([]byte(cfg.Session.Secret)))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}
