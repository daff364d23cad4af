package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

type sessionServiceImpl struct {
	logger zerolog.Logger
	repo   storage.Repository
}

func NewSessionService(
	logger zerolog.Logger,
	repo storage.Repository,
) SessionService {
	return &sessionServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *sessionServiceImpl) GetActiveSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("session_id", sessionID).
				Msg("session not found")
			return nil, ErrSessionNotFound
		}

		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to select session by id")
		return nil, err
	}

	if session.Revoked {
		s.logger.Warn().
			Str("session_id", session.ID).
			Msg("session revoked")
		return nil, ErrSessionNotFound
	}
	if !session.IsActive(time.Now()) {
		s.logger.Warn().
			Str("session_id", session.ID).
			Time("expires_at", session.ExpiresAt).
			Msg("session expired")
		return nil, ErrSessionExpired
	}

	s.logger.Debug().
		Str("session_id", session.ID).
		Msg("session found")
	return &session, nil
}
