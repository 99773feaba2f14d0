package testutil

import (
	"context"
	"errors"

	"github.com/xbooster/backend/pkg/authenticator"
)

type MockOAuth2Service struct {
	ServiceName             string
	GetUserIDFunc           func(ctx context.Context, accessToken string) (authenticator.OAuth2User, error)
	VerifyIDTokenFunc       func(ctx context.Context, rawIDToken string) (authenticator.OAuth2User, error)
	AuthCodeURLFunc         func(state, codeVerifier string) (string, error)
	ExchangeAccessTokenFunc func(ctx context.Context, code, codeVerifier string) (string, error)
}

func (m *MockOAuth2Service) Service() string {
	if m.ServiceName != "" {
		return m.ServiceName
	}

	return "mock"
}

func (m *MockOAuth2Service) GetUserID(ctx context.Context, accessToken string) (authenticator.OAuth2User, error) {
	if m.GetUserIDFunc != nil {
		return m.GetUserIDFunc(ctx, accessToken)
	}

	return authenticator.OAuth2User{}, errors.New("not implemented")
}

func (m *MockOAuth2Service) AuthCodeURL(state, codeVerifier string) (string, error) {
	if m.AuthCodeURLFunc != nil {
		return m.AuthCodeURLFunc(state, codeVerifier)
	}

	return "https://example.com/authorize?state=" + state, nil
}

func (m *MockOAuth2Service) ExchangeAccessToken(ctx context.Context, code, codeVerifier string) (string, error) {
	if m.ExchangeAccessTokenFunc != nil {
		return m.ExchangeAccessTokenFunc(ctx, code, codeVerifier)
	}

	return "", errors.New("not implemented")
}

func (m *MockOAuth2Service) VerifyIDToken(ctx context.Context, rawIDToken string) (authenticator.OAuth2User, error) {
	if m.VerifyIDTokenFunc != nil {
		return m.VerifyIDTokenFunc(ctx, rawIDToken)
	}

	return authenticator.OAuth2User{}, errors.New("not implemented")
}
