package main

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gorilla/sessions"
	"github.com/xbooster/backend/config"
	"github.com/xbooster/backend/internal/common"
	"github.com/xbooster/backend/internal/domain"
	"github.com/xbooster/backend/internal/domain/session"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/authenticator"
	"github.com/xbooster/backend/pkg/logger"
	"github.com/xbooster/backend/pkg/router"
	"github.com/xbooster/backend/pkg/xcontext"
	"github.com/xbooster/backend/pkg/xredis"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context

	userRepo         repository.UserRepository
	oauth2Repo       repository.OAuth2Repository
	relationshipRepo repository.RelationshipRepository
	boostRepo        repository.BoostRepository
	refreshTokenRepo repository.RefreshTokenRepository

	redisClient    xredis.Client
	oauth2Services []authenticator.IOAuth2Service
	reconciler     *session.Reconciler
	deriver        *session.TaskDeriver
	verifier       domain.FollowVerifier
	outbox         common.Outbox
	idGenerator    *snowflake.Node

	authDomain      domain.AuthDomain
	userDomain      domain.UserDomain
	followDomain    domain.FollowDomain
	boostDomain     domain.BoostDomain
	statisticDomain domain.StatisticDomain

	router *router.Router
	server *http.Server
}

func (s *srv) loadConfig() {
	s.ctx = xcontext.WithConfigs(context.Background(), loadConfigs())
}

func (s *srv) loadLogger() {
	level := logger.INFO
	if xcontext.Configs(s.ctx).Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLoggerWithLevel(level))
}

func (s *srv) loadDatabase() {
	databaseCfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                      databaseCfg.ConnectionString(),
		DefaultStringSize:        256,
		DisableDatetimePrecision: true,
	}), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithDB(s.ctx, db)

	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadAuth() {
	cfg := xcontext.Configs(s.ctx)
	s.ctx = xcontext.WithTokenEngine(s.ctx, authenticator.NewTokenEngine(cfg.Auth.TokenSecret))
	s.ctx = xcontext.WithSessionStore(s.ctx, sessions.NewCookieStore([]byte(cfg.Session.Secret)))

	s.oauth2Services = nil
	for _, oauth2Cfg := range []config.OAuth2Config{cfg.Auth.Google, cfg.Auth.Twitter} {
		if oauth2Cfg.Name == "" {
			continue
		}

		service, err := authenticator.NewOAuth2Service(s.ctx, oauth2Cfg)
		if err != nil {
			xcontext.Logger(s.ctx).Errorf("Cannot setup %s oauth2 service: %v", oauth2Cfg.Name, err)
			continue
		}

		s.oauth2Services = append(s.oauth2Services, service)
	}
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.oauth2Repo = repository.NewOAuth2Repository()
	s.relationshipRepo = repository.NewRelationshipRepository()
	s.boostRepo = repository.NewBoostRepository()
	s.refreshTokenRepo = repository.NewRefreshTokenRepository()
}

func (s *srv) loadDomains() {
	node, err := snowflake.NewNode(rand.Int63n(1024))
	if err != nil {
		panic(err)
	}

	s.idGenerator = node
	s.outbox = common.NewLogOutbox()
	s.verifier = domain.NewTimerFollowVerifier()
	s.reconciler = session.NewReconciler(s.userRepo, s.relationshipRepo, s.redisClient, s.outbox)
	s.deriver = session.NewTaskDeriver(s.userRepo)

	s.authDomain = domain.NewAuthDomain(
		s.userRepo, s.oauth2Repo, s.refreshTokenRepo,
		s.oauth2Services, s.reconciler, s.verifier, s.redisClient)
	s.userDomain = domain.NewUserDomain(
		s.userRepo, s.reconciler, s.deriver, s.redisClient, s.outbox, s.idGenerator)
	s.followDomain = domain.NewFollowDomain(
		s.userRepo, s.relationshipRepo, s.redisClient, s.verifier, s.outbox, s.idGenerator)
	s.boostDomain = domain.NewBoostDomain(s.userRepo, s.boostRepo, s.idGenerator)
	s.statisticDomain = domain.NewStatisticDomain(s.userRepo, s.redisClient)
}

func init() {
	rand.Seed(time.Now().UnixNano())
}
