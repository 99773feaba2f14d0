package domain_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xbooster/backend/internal/common"
	"github.com/xbooster/backend/internal/domain"
	"github.com/xbooster/backend/internal/domain/session"
	"github.com/xbooster/backend/internal/model"
	"github.com/xbooster/backend/internal/repository"
	"github.com/xbooster/backend/pkg/authenticator"
	"github.com/xbooster/backend/pkg/errorx"
	"github.com/xbooster/backend/pkg/testutil"
	"github.com/xbooster/backend/pkg/xcontext"
)

func newAuthDomain(
	redisClient *testutil.MockRedisClient,
	verifier *testutil.MockFollowVerifier,
	oauth2Services ...authenticator.IOAuth2Service,
) domain.AuthDomain {
	userRepo := repository.NewUserRepository()
	reconciler := session.NewReconciler(
		userRepo, repository.NewRelationshipRepository(), redisClient, common.NewLogOutbox())

	return domain.NewAuthDomain(
		userRepo,
		repository.NewOAuth2Repository(),
		repository.NewRefreshTokenRepository(),
		oauth2Services,
		reconciler,
		verifier,
		redisClient,
	)
}

func TestOAuth2VerifyCreatesUser(t *testing.T) {
	ctx := testutil.MockContext()

	service := &testutil.MockOAuth2Service{
		ServiceName: "twitter",
		GetUserIDFunc: func(ctx context.Context, accessToken string) (authenticator.OAuth2User, error) {
			require.Equal(t, "remote-token", accessToken)
			return authenticator.OAuth2User{
				ID:        "12345",
				Username:  "new_user",
				Name:      "New User",
				AvatarURL: "https://pbs.twimg.com/profile_images/1/x_normal.jpg",
			}, nil
		},
	}

	authDomain := newAuthDomain(
		testutil.NewMockRedisClient(), &testutil.MockFollowVerifier{}, service)
	resp, err := authDomain.OAuth2Verify(ctx, &model.OAuth2VerifyRequest{
		Type:        "twitter",
		AccessToken: "remote-token",
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, "New User", resp.User.Name)
	require.Equal(t, "new_user", resp.User.Handle)
	require.Equal(t, "https://pbs.twimg.com/profile_images/1/x.jpg", resp.User.AvatarURL)
	require.Equal(t, int64(500), resp.User.Score)
	require.False(t, resp.Degraded)

	var token model.AccessToken
	require.NoError(t, xcontext.TokenEngine(ctx).Verify(resp.AccessToken, &token))
	require.Equal(t, resp.User.ID, token.ID)

	// A second login with the same provider account resolves to the same
	// user instead of creating a new one.
	again, err := authDomain.OAuth2Verify(ctx, &model.OAuth2VerifyRequest{
		Type:        "twitter",
		AccessToken: "remote-token",
	})
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, again.User.ID)
}

func TestOAuth2VerifyWithAuthorizationCode(t *testing.T) {
	ctx := testutil.MockContext()

	service := &testutil.MockOAuth2Service{
		ServiceName: "twitter",
		ExchangeAccessTokenFunc: func(ctx context.Context, code, codeVerifier string) (string, error) {
			require.Equal(t, "auth-code", code)
			require.Equal(t, "challenge", codeVerifier)
			return "exchanged-token", nil
		},
		GetUserIDFunc: func(ctx context.Context, accessToken string) (authenticator.OAuth2User, error) {
			require.Equal(t, "exchanged-token", accessToken)
			return authenticator.OAuth2User{ID: "12345", Username: "new_user"}, nil
		},
	}

	authDomain := newAuthDomain(
		testutil.NewMockRedisClient(), &testutil.MockFollowVerifier{}, service)
	resp, err := authDomain.OAuth2Verify(ctx, &model.OAuth2VerifyRequest{
		Type:         "twitter",
		Code:         "auth-code",
		CodeVerifier: "challenge",
	})
	require.NoError(t, err)
	require.Equal(t, "new_user", resp.User.Handle)
}

func TestOAuth2BrowserLoginRoundTrip(t *testing.T) {
	ctx := testutil.MockContext()

	var issuedState, issuedVerifier string
	service := &testutil.MockOAuth2Service{
		ServiceName: "twitter",
		AuthCodeURLFunc: func(state, codeVerifier string) (string, error) {
			issuedState, issuedVerifier = state, codeVerifier
			return "https://twitter.com/i/oauth2/authorize?state=" + state, nil
		},
		ExchangeAccessTokenFunc: func(ctx context.Context, code, codeVerifier string) (string, error) {
			require.Equal(t, "auth-code", code)
			require.Equal(t, issuedVerifier, codeVerifier)
			return "exchanged-token", nil
		},
		GetUserIDFunc: func(ctx context.Context, accessToken string) (authenticator.OAuth2User, error) {
			require.Equal(t, "exchanged-token", accessToken)
			return authenticator.OAuth2User{ID: "12345", Username: "new_user"}, nil
		},
	}

	authDomain := newAuthDomain(
		testutil.NewMockRedisClient(), &testutil.MockFollowVerifier{}, service)

	loginRecorder := httptest.NewRecorder()
	loginCtx := xcontext.WithHTTPRequest(ctx,
		httptest.NewRequest(http.MethodGet, "/oauth2/login", nil))
	loginCtx = xcontext.WithHTTPWriter(loginCtx, loginRecorder)

	loginResp, err := authDomain.OAuth2Login(loginCtx, &model.OAuth2LoginRequest{Type: "twitter"})
	require.NoError(t, err)
	require.NotEmpty(t, issuedState)
	require.NotEmpty(t, issuedVerifier)
	require.Contains(t, loginResp.RedirectURL, issuedState)
	require.NotEmpty(t, loginRecorder.Result().Cookies())

	// The provider redirects back with the code; the verifier comes from
	// the cookie session, not from the request.
	verifyReq := httptest.NewRequest(http.MethodGet, "/oauth2/verify", nil)
	for _, cookie := range loginRecorder.Result().Cookies() {
		verifyReq.AddCookie(cookie)
	}
	verifyCtx := xcontext.WithHTTPRequest(ctx, verifyReq)
	verifyCtx = xcontext.WithHTTPWriter(verifyCtx, httptest.NewRecorder())

	resp, err := authDomain.OAuth2Verify(verifyCtx, &model.OAuth2VerifyRequest{
		Type:  "twitter",
		Code:  "auth-code",
		State: issuedState,
	})
	require.NoError(t, err)
	require.Equal(t, "new_user", resp.User.Handle)
}

func TestOAuth2BrowserLoginRejectsWrongState(t *testing.T) {
	ctx := testutil.MockContext()

	service := &testutil.MockOAuth2Service{
		ServiceName: "twitter",
		ExchangeAccessTokenFunc: func(ctx context.Context, code, codeVerifier string) (string, error) {
			require.Fail(t, "must not exchange the code on a state mismatch")
			return "", nil
		},
	}

	authDomain := newAuthDomain(
		testutil.NewMockRedisClient(), &testutil.MockFollowVerifier{}, service)

	loginRecorder := httptest.NewRecorder()
	loginCtx := xcontext.WithHTTPRequest(ctx,
		httptest.NewRequest(http.MethodGet, "/oauth2/login", nil))
	loginCtx = xcontext.WithHTTPWriter(loginCtx, loginRecorder)

	_, err := authDomain.OAuth2Login(loginCtx, &model.OAuth2LoginRequest{Type: "twitter"})
	require.NoError(t, err)

	verifyReq := httptest.NewRequest(http.MethodGet, "/oauth2/verify", nil)
	for _, cookie := range loginRecorder.Result().Cookies() {
		verifyReq.AddCookie(cookie)
	}
	verifyCtx := xcontext.WithHTTPRequest(ctx, verifyReq)
	verifyCtx = xcontext.WithHTTPWriter(verifyCtx, httptest.NewRecorder())

	_, err = authDomain.OAuth2Verify(verifyCtx, &model.OAuth2VerifyRequest{
		Type:  "twitter",
		Code:  "auth-code",
		State: "forged-state",
	})

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unauthenticated, errx.Code)
}

func TestOAuth2VerifyProviderFailure(t *testing.T) {
	ctx := testutil.MockContext()

	service := &testutil.MockOAuth2Service{
		ServiceName: "twitter",
		GetUserIDFunc: func(ctx context.Context, accessToken string) (authenticator.OAuth2User, error) {
			return authenticator.OAuth2User{}, errors.New("provider is down")
		},
	}

	authDomain := newAuthDomain(
		testutil.NewMockRedisClient(), &testutil.MockFollowVerifier{}, service)
	_, err := authDomain.OAuth2Verify(ctx, &model.OAuth2VerifyRequest{
		Type:        "twitter",
		AccessToken: "remote-token",
	})

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unauthenticated, errx.Code)

	users, dbErr := repository.NewUserRepository().GetBatch(ctx, "", 10)
	require.NoError(t, dbErr)
	require.Empty(t, users)
}

func TestOAuth2VerifyUnknownService(t *testing.T) {
	ctx := testutil.MockContext()

	authDomain := newAuthDomain(testutil.NewMockRedisClient(), &testutil.MockFollowVerifier{})
	_, err := authDomain.OAuth2Verify(ctx, &model.OAuth2VerifyRequest{Type: "myspace"})

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.BadRequest, errx.Code)
}

func TestRefreshRotation(t *testing.T) {
	ctx := testutil.MockContext()

	service := &testutil.MockOAuth2Service{
		ServiceName: "twitter",
		GetUserIDFunc: func(ctx context.Context, accessToken string) (authenticator.OAuth2User, error) {
			return authenticator.OAuth2User{ID: "12345", Username: "new_user"}, nil
		},
	}

	authDomain := newAuthDomain(
		testutil.NewMockRedisClient(), &testutil.MockFollowVerifier{}, service)
	verifyResp, err := authDomain.OAuth2Verify(ctx, &model.OAuth2VerifyRequest{
		Type:        "twitter",
		AccessToken: "remote-token",
	})
	require.NoError(t, err)

	refreshResp, err := authDomain.Refresh(ctx, &model.RefreshTokenRequest{
		RefreshToken: verifyResp.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEmpty(t, refreshResp.AccessToken)
	require.NotEmpty(t, refreshResp.RefreshToken)

	// Replaying the pre-rotation token revokes the whole family.
	_, err = authDomain.Refresh(ctx, &model.RefreshTokenRequest{
		RefreshToken: verifyResp.RefreshToken,
	})
	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.StolenDetected, errx.Code)

	// Even the fresh token is dead now.
	_, err = authDomain.Refresh(ctx, &model.RefreshTokenRequest{
		RefreshToken: refreshResp.RefreshToken,
	})
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unauthenticated, errx.Code)
}

func TestRefreshInvalidToken(t *testing.T) {
	ctx := testutil.MockContext()

	authDomain := newAuthDomain(testutil.NewMockRedisClient(), &testutil.MockFollowVerifier{})
	_, err := authDomain.Refresh(ctx, &model.RefreshTokenRequest{RefreshToken: "garbage"})

	var errx errorx.Error
	require.True(t, errors.As(err, &errx))
	require.Equal(t, errorx.Unauthenticated, errx.Code)
}

func TestLogout(t *testing.T) {
	ctx := testutil.MockContextWithUserID("user2")
	testutil.CreateFixtureDb(ctx)
	redisClient := testutil.NewMockRedisClient()
	verifier := &testutil.MockFollowVerifier{}

	require.NoError(t, redisClient.Set(ctx, common.RedisKeyProfile("user2"), "{}"))
	require.NoError(t, redisClient.SAdd(ctx, common.RedisKeyCompletedTasks("user2"), "real1"))

	authDomain := newAuthDomain(redisClient, verifier)
	_, err := authDomain.Logout(ctx, &model.LogoutRequest{})
	require.NoError(t, err)
	require.Contains(t, verifier.Cancelled, "user2")

	user, err := repository.NewUserRepository().GetByID(ctx, "user2")
	require.NoError(t, err)
	require.False(t, user.IsOnline)

	_, err = redisClient.Get(ctx, common.RedisKeyProfile("user2"))
	require.Error(t, err)

	// The completed-task cache outlives the session.
	completed, err := redisClient.SIsMember(ctx, common.RedisKeyCompletedTasks("user2"), "real1")
	require.NoError(t, err)
	require.True(t, completed)
}
