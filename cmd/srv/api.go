package main

import (
	"github.com/urfave/cli/v2"
	"github.com/xbooster/backend/internal/middleware"
	"github.com/xbooster/backend/pkg/router"
	"github.com/xbooster/backend/pkg/xcontext"

	"net/http"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadConfig()
	s.loadLogger()
	s.loadDatabase()
	s.loadRedisClient()
	s.loadAuth()
	s.loadRepos()
	s.loadDomains()
	s.loadRouter()

	cfg := xcontext.Configs(s.ctx).ApiServer
	s.server = &http.Server{
		Addr:    cfg.Address(),
		Handler: s.router.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting api server on %s", cfg.Address())
	if err := s.server.ListenAndServe(); err != nil {
		panic(err)
	}

	return nil
}

func (s *srv) loadRouter() {
	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())

	// Auth API
	authRouter := s.router.Branch()
	authRouter.After(middleware.HandleSetAccessToken())
	{
		router.GET(authRouter, "/oauth2/login", s.authDomain.OAuth2Login)
		router.GET(authRouter, "/oauth2/verify", s.authDomain.OAuth2Verify)
		router.POST(authRouter, "/refresh", s.authDomain.Refresh)
	}

	// These following APIs need authentication with only Access Token.
	onlyTokenAuthRouter := s.router.Branch()
	authVerifier := middleware.NewAuthVerifier().WithAccessToken()
	onlyTokenAuthRouter.Before(authVerifier.Middleware())
	{
		// User API
		router.GET(onlyTokenAuthRouter, "/getMe", s.userDomain.GetMe)
		router.GET(onlyTokenAuthRouter, "/getTasks", s.userDomain.GetTasks)
		router.GET(onlyTokenAuthRouter, "/getHistory", s.userDomain.GetHistory)
		router.POST(onlyTokenAuthRouter, "/checkIn", s.userDomain.CheckIn)
		router.POST(onlyTokenAuthRouter, "/linkWallet", s.userDomain.LinkWallet)
		router.POST(onlyTokenAuthRouter, "/unlinkWallet", s.userDomain.UnlinkWallet)
		router.POST(onlyTokenAuthRouter, "/logout", s.authDomain.Logout)

		// Follow API
		router.POST(onlyTokenAuthRouter, "/follow", s.followDomain.Follow)

		// Boost API
		router.GET(onlyTokenAuthRouter, "/getBoosts", s.boostDomain.GetBoosts)
		router.POST(onlyTokenAuthRouter, "/buyBoost", s.boostDomain.BuyBoost)

		// Statistic API
		router.GET(onlyTokenAuthRouter, "/getLeaderboard", s.statisticDomain.GetLeaderboard)
	}
}
