package client

import (
	"context"
	"net/http"

	"github.com/adanyl0v/go-tasks/internal/models"
)

const (
	registerPath = "/api/auth/register"
	loginPath    = "/api/auth/login"
	logoutPath   = "/api/auth/logout"
	mePath       = "/api/auth/me"
)

type AuthService struct {
	client *Client
}

func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

func (s *AuthService) Register(ctx context.Context, data models.UserRegister) (*models.User, error) {
	var user models.User
	err := s.client.doPublic(ctx, http.MethodPost, registerPath, data, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token pair and stores it.
func (s *AuthService) Login(ctx context.Context, data models.UserLogin) (*models.AuthTokens, error) {
	var tokens models.AuthTokens
	err := s.client.doPublic(ctx, http.MethodPost, loginPath, data, &tokens)
	if err != nil {
		return nil, err
	}
	err = s.client.tokens.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Refresh exchanges refreshToken for a new pair and stores it. It does not
// go through the 401 retry flow.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	return s.client.exchangeRefreshToken(ctx, refreshToken)
}

// Logout revokes the stored refresh token on the server. The stored tokens
// are cleared even when the call fails.
func (s *AuthService) Logout(ctx context.Context) error {
	defer func() { _ = s.client.tokens.Clear() }()

	if s.client.tokens.Tokens().RefreshToken == "" {
		return nil
	}
	// The refresh token is read per attempt: renewing an expired access
	// token rotates it.
	return s.client.do(ctx, http.MethodPost, logoutPath, nil, func() any {
		return refreshRequest{RefreshToken: s.client.tokens.Tokens().RefreshToken}
	}, nil)
}

func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	err := s.client.Do(ctx, http.MethodGet, mePath, nil, nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, data models.ProfileUpdate) (*models.User, error) {
	var user models.User
	err := s.client.Do(ctx, http.MethodPut, mePath, nil, data, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
