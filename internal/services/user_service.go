package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

type userServiceImpl struct {
	logger zerolog.Logger
	repo   storage.Repository
}

func NewUserService(
	logger zerolog.Logger,
	repo storage.Repository,
) UserService {
	return &userServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *userServiceImpl) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("user_id", userID).
				Msg("user not found")
			return nil, ErrUserNotFound
		}

		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to select user by id")
		return nil, err
	}
	return &user, nil
}

func (s *userServiceImpl) UpdateProfile(
	ctx context.Context,
	userID string,
	update models.ProfileUpdate,
) (*models.User, error) {
	if update.IsEmpty() {
		return nil, ErrNoFieldsToUpdate
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Username != nil {
		user.Username = *update.Username
	}
	if update.Email != nil {
		user.Email = strings.TrimSpace(*update.Email)
	}
	if update.NewPassword != nil {
		if update.CurrentPassword == nil || *update.CurrentPassword == "" {
			return nil, ErrCurrentPasswordRequired
		}

		match, compareErr := argon2id.ComparePasswordAndHash(*update.CurrentPassword, user.Password)
		if compareErr != nil {
			s.logger.Error().
				Err(compareErr).
				Msg("failed to compare password")
			return nil, compareErr
		} else if !match {
			s.logger.Error().
				Str("user_id", userID).
				Msg("current password is incorrect")
			return nil, ErrCurrentPasswordIncorrect
		}

		user.Password, err = argon2id.CreateHash(*update.NewPassword, argon2id.DefaultParams)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to hash password")
			return nil, err
		}
	}
	user.UpdatedAt = time.Now()

	err = s.repo.UpdateUser(ctx, *user)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			return nil, ErrEmailAlreadyRegistered
		case errors.Is(err, storage.ErrUsernameTaken):
			return nil, ErrUsernameTaken
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrUserNotFound
		}
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to update user")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", userID).
		Msg("updated profile")
	return user, nil
}
