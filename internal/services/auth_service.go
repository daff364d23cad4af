package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

type authServiceImpl struct {
	logger zerolog.Logger
	repo   storage.Repository
	tokens *TokenIssuer
}

func NewAuthService(
	logger zerolog.Logger,
	repo storage.Repository,
	tokens *TokenIssuer,
) AuthService {
	return &authServiceImpl{
		logger: logger,
		repo:   repo,
		tokens: tokens,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, params RegisterParams) (*models.User, error) {
	now := time.Now()
	user := models.User{
		Email:     strings.TrimSpace(params.Email),
		Username:  params.Username,
		CreatedAt: now,
		UpdatedAt: now,
	}

	userUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate user uuid")
		return nil, err
	}
	user.ID = userUUID.String()

	passwordHash, err := argon2id.CreateHash(params.Password, argon2id.DefaultParams)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to hash password")
		return nil, err
	}
	user.Password = passwordHash

	err = s.repo.CreateUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			s.logger.Error().
				Str("email", user.Email).
				Msg("email already registered")
			return nil, ErrEmailAlreadyRegistered
		case errors.Is(err, storage.ErrUsernameTaken):
			s.logger.Error().
				Str("username", user.Username).
				Msg("username already taken")
			return nil, ErrUsernameTaken
		}
		s.logger.Error().
			Err(err).
			Msg("failed to create user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Msg("registered user")
	return &user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, params LoginParams) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.TrimSpace(params.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("email", params.Email).
				Msg("user not found")
			return nil, ErrInvalidCredentials
		}

		s.logger.Error().
			Err(err).
			Str("email", params.Email).
			Msg("failed to select user by email")
		return nil, err
	}

	match, err := argon2id.ComparePasswordAndHash(params.Password, user.Password)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to compare password")
		return nil, err
	} else if !match {
		s.logger.Error().Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	session := models.Session{
		UserID:    user.ID,
		ExpiresAt: now.Add(s.tokens.refreshTokenTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	sessionUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate session uuid")
		return nil, err
	}
	session.ID = sessionUUID.String()

	session.RefreshToken, err = s.tokens.generateRefreshToken()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate refresh token")
		return nil, err
	}

	err = s.repo.CreateSession(ctx, session)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to create session")
		return nil, err
	}

	accessToken, accessTokenExpiresAt, err := s.tokens.generateAccessToken(session.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("session_id", session.ID).
		Msg("logged in")
	return &LoginResult{
		UserID:                user.ID,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          session.RefreshToken,
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	session, err := s.repo.GetSessionByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().Msg("session not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to select session by refresh token")
		return nil, err
	}

	if session.Revoked {
		s.logger.Error().
			Str("session_id", session.ID).
			Msg("session revoked")
		return nil, ErrSessionNotFound
	}
	if !session.IsActive(time.Now()) {
		s.logger.Error().
			Str("session_id", session.ID).
			Time("expires_at", session.ExpiresAt).
			Msg("session expired")
		return nil, ErrSessionExpired
	}

	now := time.Now()
	next := models.Session{
		ExpiresAt: now.Add(s.tokens.refreshTokenTTL),
		UpdatedAt: now,
	}
	next.RefreshToken, err = s.tokens.generateRefreshToken()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate refresh token")
		return nil, err
	}

	err = s.repo.RotateSession(ctx, session.ID, refreshToken, next)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("session_id", session.ID).
				Msg("refresh token already rotated")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Msg("failed to rotate session")
		return nil, err
	}

	accessToken, accessTokenExpiresAt, err := s.tokens.generateAccessToken(session.ID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate access token")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", session.UserID).
		Str("session_id", session.ID).
		Msg("refreshed session")
	return &LoginResult{
		UserID:                session.UserID,
		SessionID:             session.ID,
		AccessToken:           accessToken,
		AccessTokenExpiresAt:  accessTokenExpiresAt,
		RefreshToken:          next.RefreshToken,
		RefreshTokenExpiresAt: next.ExpiresAt,
	}, nil
}

func (s *authServiceImpl) Logout(ctx context.Context, userID, refreshToken string) error {
	err := s.repo.RevokeSession(ctx, userID, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("refresh token not found")
			return ErrInvalidRefreshToken
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to revoke session")
		return err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("logged out")
	return nil
}

func (s *authServiceImpl) ParseJWTToken(token string) (*jwt.RegisteredClaims, error) {
	return s.tokens.ParseJWTToken(token)
}
