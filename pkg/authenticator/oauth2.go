package authenticator

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/xbooster/backend/config"
	"golang.org/x/oauth2"
)

type oauth2Service struct {
	name         string
	clientID     string
	clientSecret string
	verifyURL    string
	authURL      string
	tokenURL     string
	redirectURL  string
	idField      string
	scopes       []string

	provider *oidc.Provider
}

// NewOAuth2Service builds a service from its configuration. The issuer is
// optional; services without one cannot verify id tokens and only support
// access-token lookups against VerifyURL.
func NewOAuth2Service(ctx context.Context, cfg config.OAuth2Config) (IOAuth2Service, error) {
	service := &oauth2Service{
		name:         cfg.Name,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		verifyURL:    cfg.VerifyURL,
		authURL:      cfg.AuthURL,
		tokenURL:     cfg.TokenURL,
		redirectURL:  cfg.RedirectURL,
		idField:      cfg.IDField,
		scopes:       cfg.Scopes,
	}

	if cfg.Issuer != "" {
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, err
		}
		service.provider = provider
	}

	return service, nil
}

func (s *oauth2Service) Service() string {
	return s.name
}

// AuthCodeURL builds the authorization url for the browser-based login.
// The code verifier is attached as an S256 PKCE challenge.
func (s *oauth2Service) AuthCodeURL(state, codeVerifier string) (string, error) {
	if s.authURL == "" && s.provider == nil {
		return "", fmt.Errorf("service %s doesn't support browser login", s.name)
	}

	sum := sha256.Sum256([]byte(codeVerifier))
	challenge := base64.RawURLEncoding.EncodeToString(sum[:])

	oauth2Cfg := s.oauth2Config()
	return oauth2Cfg.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	), nil
}

// ExchangeAccessToken trades an authorization code for an access token.
// PKCE clients pass the code verifier along.
func (s *oauth2Service) ExchangeAccessToken(ctx context.Context, code, codeVerifier string) (string, error) {
	if s.tokenURL == "" && s.provider == nil {
		return "", fmt.Errorf("service %s doesn't support code exchange", s.name)
	}

	oauth2Cfg := s.oauth2Config()

	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.SetAuthURLParam("code_verifier", codeVerifier))
	}

	token, err := oauth2Cfg.Exchange(ctx, code, opts...)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

func (s *oauth2Service) oauth2Config() oauth2.Config {
	endpoint := oauth2.Endpoint{AuthURL: s.authURL, TokenURL: s.tokenURL}
	if s.provider != nil {
		endpoint = s.provider.Endpoint()
	}

	return oauth2.Config{
		ClientID:     s.clientID,
		ClientSecret: s.clientSecret,
		Endpoint:     endpoint,
		RedirectURL:  s.redirectURL,
		Scopes:       s.scopes,
	}
}

func (s *oauth2Service) GetUserID(ctx context.Context, accessToken string) (OAuth2User, error) {
	if s.verifyURL == "" {
		return OAuth2User{}, fmt.Errorf("service %s doesn't support getting user id", s.name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.verifyURL, nil)
	if err != nil {
		return OAuth2User{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return OAuth2User{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return OAuth2User{}, fmt.Errorf("service %s rejects the access token", s.name)
	}

	var profile map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return OAuth2User{}, err
	}

	// Some services wrap the profile in a data envelope.
	if data, ok := profile["data"].(map[string]any); ok {
		profile = data
	}

	return s.extractUser(profile)
}

func (s *oauth2Service) VerifyIDToken(ctx context.Context, rawIDToken string) (OAuth2User, error) {
	if s.provider == nil {
		return OAuth2User{}, fmt.Errorf("service %s doesn't support verifying id token", s.name)
	}

	idToken, err := s.provider.Verifier(&oidc.Config{ClientID: s.clientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return OAuth2User{}, err
	}

	var profile map[string]any
	if err := idToken.Claims(&profile); err != nil {
		return OAuth2User{}, errors.New("invalid id token")
	}

	return s.extractUser(profile)
}

func (s *oauth2Service) extractUser(profile map[string]any) (OAuth2User, error) {
	id, ok := profile[s.idField].(string)
	if !ok {
		return OAuth2User{}, fmt.Errorf("invalid id field %s", s.idField)
	}

	user := OAuth2User{ID: id}
	if username, ok := profile["username"].(string); ok {
		user.Username = username
	} else if username, ok := profile["email"].(string); ok {
		user.Username = username
	}

	if name, ok := profile["name"].(string); ok {
		user.Name = name
	}

	if avatar, ok := profile["profile_image_url"].(string); ok {
		user.AvatarURL = avatar
	} else if avatar, ok := profile["picture"].(string); ok {
		user.AvatarURL = avatar
	}

	return user, nil
}
