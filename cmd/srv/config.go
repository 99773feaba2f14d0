package main

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/xbooster/backend/config"
)

func loadConfigs() config.Configs {
	// A missing .env is fine, the environment may already be set up.
	godotenv.Load()

	configs := defaultConfigs()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &configs); err != nil {
			panic(err)
		}
	}

	applyEnv(&configs)
	return configs
}

func defaultConfigs() config.Configs {
	return config.Configs{
		Env: "local",
		ApiServer: config.APIServerConfigs{
			Host:           "localhost",
			Port:           "8080",
			AllowedOrigins: []string{"*"},
			DefaultLimit:   10,
			MaxLimit:       50,
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: config.Duration{Duration: time.Hour},
			},
			RefreshToken: config.TokenConfigs{
				Name:       "refresh_token",
				Expiration: config.Duration{Duration: 30 * 24 * time.Hour},
			},
			Google: config.OAuth2Config{
				Name:    "google",
				Issuer:  "https://accounts.google.com",
				IDField: "sub",
			},
			Twitter: config.OAuth2Config{
				Name:      "twitter",
				VerifyURL: "https://api.twitter.com/2/users/me?user.fields=profile_image_url",
				AuthURL:   "https://twitter.com/i/oauth2/authorize",
				TokenURL:  "https://api.twitter.com/2/oauth2/token",
				IDField:   "id",
				Scopes:    []string{"users.read", "tweet.read", "follows.read", "follows.write"},
			},
		},
		Session: config.SessionConfigs{Name: "xbooster_session"},
		Redis: config.RedisConfigs{Addr: "localhost:6379"},
		Game: config.GameConfigs{
			DefaultScore:      500,
			FollowReward:      10,
			BaseCheckInReward: 50,
			StreakBonus:       10,
			MaxCheckInReward:  150,
			DailyFollowLimit:  10,
			TaskBatchLimit:    50,
			HistoryLimit:      20,
			FollowVerifyDelay: config.Duration{Duration: 4500 * time.Millisecond},
			BoostTickInterval: config.Duration{Duration: 2 * time.Second},
			BoostTickChance:   0.3,
			BoostOptions: []config.BoostOption{
				{Followers: 10, Price: 1000},
				{Followers: 50, Price: 4500, Best: true},
				{Followers: 100, Price: 8000},
			},
		},
	}
}

func applyEnv(configs *config.Configs) {
	setEnv := func(target *string, key string) {
		if value := os.Getenv(key); value != "" {
			*target = value
		}
	}

	setEnv(&configs.Env, "ENV")
	setEnv(&configs.ApiServer.Host, "HOST")
	setEnv(&configs.ApiServer.Port, "PORT")
	setEnv(&configs.Database.Host, "MYSQL_HOST")
	setEnv(&configs.Database.Port, "MYSQL_PORT")
	setEnv(&configs.Database.Database, "MYSQL_DATABASE")
	setEnv(&configs.Database.User, "MYSQL_USER")
	setEnv(&configs.Database.Password, "MYSQL_PASSWORD")
	setEnv(&configs.Redis.Addr, "REDIS_ADDR")
	setEnv(&configs.Auth.TokenSecret, "TOKEN_SECRET")
	setEnv(&configs.Session.Secret, "SESSION_SECRET")
	setEnv(&configs.Auth.Google.ClientID, "GOOGLE_CLIENT_ID")
	setEnv(&configs.Auth.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setEnv(&configs.Auth.Google.RedirectURL, "GOOGLE_REDIRECT_URL")
	setEnv(&configs.Auth.Twitter.ClientID, "TWITTER_CLIENT_ID")
	setEnv(&configs.Auth.Twitter.ClientSecret, "TWITTER_CLIENT_SECRET")
	setEnv(&configs.Auth.Twitter.RedirectURL, "TWITTER_REDIRECT_URL")
}
