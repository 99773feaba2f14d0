package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/xbooster/backend/internal/common"
	"github.com/xbooster/backend/internal/domain/session"
	"github.com/xbooster/backend/internal/entity"
	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/authenticator"
	"github.com/xbooster/backend/pkg/crypto"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/xcontext"
	"github.com/xbooster/backend/pkg/xredis"
	"gorm.io/gorm"
)

const (
	sessionStateKey        = "state"
	sessionCodeVerifierKey = "code_verifier"
)

type AuthDomain interface {
	OAuth2Login(ctx context.Context, req *model.OAuth2LoginRequest) (*model.OAuth2LoginResponse, error)
	OAuth2Verify(ctx context.Context, req *model.OAuth2VerifyRequest) (*model.OAuth2VerifyResponse, error)
	Refresh(ctx context.Context, req *model.RefreshTokenRequest) (*model.RefreshTokenResponse, error)
	Logout(ctx context.Context, req *model.LogoutRequest) (*model.LogoutResponse, error)
}

type authDomain struct {
	userRepo         repository.UserRepository
	oauth2Repo       repository.OAuth2Repository
	refreshTokenRepo repository.RefreshTokenRepository
	oauth2Services   []authenticator.IOAuth2Service
	reconciler       *session.Reconciler
	verifier         FollowVerifier
	redisClient      xredis.Client
}

func NewAuthDomain(
	userRepo repository.UserRepository,
	oauth2Repo repository.OAuth2Repository,
	refreshTokenRepo repository.RefreshTokenRepository,
	oauth2Services []authenticator.IOAuth2Service,
	reconciler *session.Reconciler,
	verifier FollowVerifier,
	redisClient xredis.Client,
) *authDomain {
	return &authDomain{
		userRepo:         userRepo,
		oauth2Repo:       oauth2Repo,
		refreshTokenRepo: refreshTokenRepo,
		oauth2Services:   oauth2Services,
		reconciler:       reconciler,
		verifier:         verifier,
		redisClient:      redisClient,
	}
}

// OAuth2Login starts the browser flow. The state and PKCE code verifier
// go into the cookie session so OAuth2Verify can restore them when the
// provider redirects back with an authorization code.
func (d *authDomain) OAuth2Login(
	ctx context.Context, req *model.OAuth2LoginRequest,
) (*model.OAuth2LoginResponse, error) {
	service, ok := d.serviceByName(req.Type)
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Unsupported oauth2 service %s", req.Type)
	}

	state, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate state: %v", err)
		return nil, errorx.Unknown
	}

	codeVerifier, err := crypto.GenerateRandomString()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate code verifier: %v", err)
		return nil, errorx.Unknown
	}

	redirectURL, err := service.AuthCodeURL(state, codeVerifier)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot build authorization url: %v", err)
		return nil, errorx.Unknown
	}

	r := xcontext.HTTPRequest(ctx)
	webSession, err := xcontext.SessionStore(ctx).Get(r, xcontext.Configs(ctx).Session.Name)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot open cookie session: %v", err)
		return nil, errorx.Unknown
	}

	webSession.Values[sessionStateKey] = state
	webSession.Values[sessionCodeVerifierKey] = codeVerifier
	if err := webSession.Save(r, xcontext.HTTPWriter(ctx)); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save cookie session: %v", err)
		return nil, errorx.Unknown
	}

	return &model.OAuth2LoginResponse{RedirectURL: redirectURL}, nil
}

func (d *authDomain) OAuth2Verify(
	ctx context.Context, req *model.OAuth2VerifyRequest,
) (*model.OAuth2VerifyResponse, error) {
	service, ok := d.serviceByName(req.Type)
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Unsupported oauth2 service %s", req.Type)
	}

	var serviceUser authenticator.OAuth2User
	var err error
	switch {
	case req.IDToken != "":
		serviceUser, err = service.VerifyIDToken(ctx, req.IDToken)
	case req.Code != "":
		codeVerifier := req.CodeVerifier
		if codeVerifier == "" {
			// Browser flow. The verifier was stashed by OAuth2Login and
			// the returned state must match the stashed one.
			codeVerifier, err = d.popSessionVerifier(ctx, req.State)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Cannot restore login session: %v", err)
				return nil, errorx.New(errorx.Unauthenticated, "Cannot verify the credential")
			}
		}

		var accessToken string
		accessToken, err = service.ExchangeAccessToken(ctx, req.Code, codeVerifier)
		if err == nil {
			serviceUser, err = service.GetUserID(ctx, accessToken)
		}
	default:
		serviceUser, err = service.GetUserID(ctx, req.AccessToken)
	}
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot verify %s credential: %v", req.Type, err)
		return nil, errorx.New(errorx.Unauthenticated, "Cannot verify the credential")
	}

	user, err := d.findOrCreateUser(ctx, service.Service(), serviceUser)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot find or create user: %v", err)
		return nil, errorx.Unknown
	}

	sess, err := d.reconciler.Reconcile(ctx, session.Identity{
		UserID:    user.ID,
		Name:      serviceUser.Name,
		Handle:    serviceUser.Username,
		AvatarURL: serviceUser.AvatarURL,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reconcile session: %v", err)
		return nil, errorx.Unknown
	}

	accessToken, refreshToken, err := d.issueTokens(ctx, &sess.User)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot issue tokens: %v", err)
		return nil, errorx.Unknown
	}

	return &model.OAuth2VerifyResponse{
		User:         model.ConvertUser(&sess.User),
		Degraded:     sess.Degraded,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (d *authDomain) Refresh(
	ctx context.Context, req *model.RefreshTokenRequest,
) (*model.RefreshTokenResponse, error) {
	var token model.RefreshToken
	if err := xcontext.TokenEngine(ctx).Verify(req.RefreshToken, &token); err != nil {
		return nil, errorx.New(errorx.Unauthenticated, "Invalid refresh token")
	}

	stored, err := d.refreshTokenRepo.Get(ctx, token.Family)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.Unauthenticated, "Invalid refresh token")
		}

		xcontext.Logger(ctx).Errorf("Cannot get refresh token: %v", err)
		return nil, errorx.Unknown
	}

	if stored.Expiration.Before(time.Now()) {
		return nil, errorx.New(errorx.TokenExpired, "Your session is expired")
	}

	if stored.Counter != token.Counter {
		// Someone replayed an old token of this family. Kill the whole
		// family so neither side keeps access.
		if err := d.refreshTokenRepo.Delete(ctx, token.Family); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot delete stolen token family: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.StolenDetected, "Your refresh token will be revoked")
	}

	user, err := d.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get user of refresh token: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.refreshTokenRepo.Rotate(ctx, token.Family); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot rotate refresh token: %v", err)
		return nil, errorx.Unknown
	}

	cfg := xcontext.Configs(ctx).Auth
	accessToken, err := xcontext.TokenEngine(ctx).Generate(
		cfg.AccessToken.Expiration.Duration,
		model.AccessToken{ID: user.ID, Name: user.Name})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate access token: %v", err)
		return nil, errorx.Unknown
	}

	refreshToken, err := xcontext.TokenEngine(ctx).Generate(
		cfg.RefreshToken.Expiration.Duration,
		model.RefreshToken{Family: token.Family, Counter: stored.Counter + 1})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate refresh token: %v", err)
		return nil, errorx.Unknown
	}

	return &model.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (d *authDomain) Logout(
	ctx context.Context, req *model.LogoutRequest,
) (*model.LogoutResponse, error) {
	userID := xcontext.RequestUserID(ctx)

	// Pending follow verifications die with the session.
	d.verifier.CancelUser(userID)

	if err := d.refreshTokenRepo.DeleteByUserID(ctx, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete refresh tokens: %v", err)
		return nil, errorx.Unknown
	}

	err := d.userRepo.Update(ctx, userID, map[string]any{
		"is_online": false,
		"last_seen": time.Now(),
	})
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot mark user offline: %v", err)
		return nil, errorx.Unknown
	}

	// The completed-task cache stays; it survives sessions by design of
	// the reconcile union. The ephemeral keys go away.
	err = d.redisClient.Del(ctx,
		common.RedisKeyProfile(userID),
		common.RedisKeyDailyFollows(userID),
	)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot clear session keys: %v", err)
	}

	return &model.LogoutResponse{}, nil
}

// popSessionVerifier returns the code verifier stashed by OAuth2Login and
// tears the cookie session down. The session is one-shot; a state mismatch
// or a missing verifier rejects the login.
func (d *authDomain) popSessionVerifier(ctx context.Context, state string) (string, error) {
	r := xcontext.HTTPRequest(ctx)
	if r == nil {
		return "", errors.New("no http request in context")
	}

	webSession, err := xcontext.SessionStore(ctx).Get(r, xcontext.Configs(ctx).Session.Name)
	if err != nil {
		return "", err
	}

	storedState, ok := webSession.Values[sessionStateKey].(string)
	if !ok || storedState == "" || storedState != state {
		return "", errors.New("mismatched oauth2 state")
	}

	codeVerifier, ok := webSession.Values[sessionCodeVerifierKey].(string)
	if !ok || codeVerifier == "" {
		return "", errors.New("no code verifier in session")
	}

	webSession.Options.MaxAge = -1
	if err := webSession.Save(r, xcontext.HTTPWriter(ctx)); err != nil {
		return "", err
	}

	return codeVerifier, nil
}

func (d *authDomain) serviceByName(name string) (authenticator.IOAuth2Service, bool) {
	for _, service := range d.oauth2Services {
		if service.Service() == name {
			return service, true
		}
	}

	return nil, false
}

func (d *authDomain) findOrCreateUser(
	ctx context.Context, serviceName string, serviceUser authenticator.OAuth2User,
) (*entity.User, error) {
	serviceUserID := serviceName + "_" + serviceUser.ID
	user, err := d.userRepo.GetByServiceUserID(ctx, serviceName, serviceUserID)
	if err == nil {
		return user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	newUser := &entity.User{
		Base:      entity.Base{ID: uuid.NewString()},
		Name:      serviceUser.Name,
		Handle:    serviceUser.Username,
		AvatarURL: session.NormalizeAvatarURL(serviceUser.AvatarURL),
		Score:     xcontext.Configs(ctx).Game.DefaultScore,
	}

	err = xcontext.WithDBTransaction(ctx, func(ctx context.Context) error {
		if err := d.userRepo.Create(ctx, newUser); err != nil {
			return err
		}

		return d.oauth2Repo.Create(ctx, &entity.OAuth2{
			UserID:        newUser.ID,
			Service:       serviceName,
			ServiceUserID: serviceUserID,
		})
	})
	if err != nil {
		return nil, err
	}

	return newUser, nil
}

func (d *authDomain) issueTokens(ctx context.Context, user *entity.User) (string, string, error) {
	cfg := xcontext.Configs(ctx).Auth

	accessToken, err := xcontext.TokenEngine(ctx).Generate(
		cfg.AccessToken.Expiration.Duration,
		model.AccessToken{ID: user.ID, Name: user.Name})
	if err != nil {
		return "", "", err
	}

	family, err := crypto.GenerateRandomString()
	if err != nil {
		return "", "", err
	}

	refreshToken, err := xcontext.TokenEngine(ctx).Generate(
		cfg.RefreshToken.Expiration.Duration,
		model.RefreshToken{Family: family, Counter: 0})
	if err != nil {
		return "", "", err
	}

	err = d.refreshTokenRepo.Create(ctx, &entity.RefreshToken{
		UserID:     user.ID,
		Family:     family,
		Counter:    0,
		Expiration: time.Now().Add(cfg.RefreshToken.Expiration.Duration),
	})
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}
