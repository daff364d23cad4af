package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
	"github.com/adanyl0v/go-tasks/internal/storage"
)

type labelServiceImpl struct {
	logger zerolog.Logger
	repo   storage.Repository
}

func NewLabelService(
	logger zerolog.Logger,
	repo storage.Repository,
) LabelService {
	return &labelServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

func (s *labelServiceImpl) ListLabels(ctx context.Context, userID string) ([]models.Label, error) {
	labels, err := s.repo.ListLabels(ctx, userID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list labels")
		return nil, err
	}

	s.logger.Info().
		Int("count", len(labels)).
		Str("user_id", userID).
		Msg("listed labels")
	return labels, nil
}

func (s *labelServiceImpl) GetLabel(ctx context.Context, userID, labelID string) (*models.Label, error) {
	label, err := s.repo.GetLabel(ctx, userID, labelID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("label_id", labelID).
				Str("user_id", userID).
				Msg("label not found")
			return nil, ErrLabelNotFound
		}

		s.logger.Error().
			Err(err).
			Str("label_id", labelID).
			Msg("failed to select label")
		return nil, err
	}
	return &label, nil
}

func (s *labelServiceImpl) CreateLabel(ctx context.Context, userID string, data models.LabelCreate) (*models.Label, error) {
	label := models.Label{
		UserID:    userID,
		Name:      data.Name,
		Color:     normalizeColor(data.Color),
		CreatedAt: time.Now(),
	}

	labelUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate label uuid")
		return nil, err
	}
	label.ID = labelUUID.String()

	err = s.repo.CreateLabel(ctx, label)
	if err != nil {
		if errors.Is(err, storage.ErrLabelNameTaken) {
			s.logger.Error().
				Str("name", label.Name).
				Msg("label with this name already exists")
			return nil, ErrLabelAlreadyExists
		}

		s.logger.Error().
			Err(err).
			Msg("failed to create label")
		return nil, err
	}

	s.logger.Info().
		Str("label_id", label.ID).
		Str("user_id", userID).
		Msg("created label")
	return &label, nil
}

func (s *labelServiceImpl) UpdateLabel(
	ctx context.Context,
	userID, labelID string,
	data models.LabelUpdate,
) (*models.Label, error) {
	label, err := s.GetLabel(ctx, userID, labelID)
	if err != nil {
		return nil, err
	}
	if data.Name == nil && data.Color == nil {
		return nil, ErrNoFieldsToUpdate
	}

	if data.Name != nil {
		label.Name = *data.Name
	}
	if data.Color != nil {
		label.Color = normalizeColor(*data.Color)
	}

	err = s.repo.UpdateLabel(ctx, *label)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrLabelNameTaken):
			return nil, ErrLabelAlreadyExists
		case errors.Is(err, storage.ErrNotFound):
			return nil, ErrLabelNotFound
		}
		s.logger.Error().
			Err(err).
			Str("label_id", labelID).
			Msg("failed to update label")
		return nil, err
	}

	s.logger.Info().
		Str("label_id", labelID).
		Str("user_id", userID).
		Msg("updated label")
	return label, nil
}

func (s *labelServiceImpl) DeleteLabel(ctx context.Context, userID, labelID string) error {
	err := s.repo.DeleteLabel(ctx, userID, labelID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error().
				Str("label_id", labelID).
				Str("user_id", userID).
				Msg("label not found")
			return ErrLabelNotFound
		}

		s.logger.Error().
			Err(err).
			Str("label_id", labelID).
			Msg("failed to delete label")
		return err
	}

	s.logger.Info().
		Str("label_id", labelID).
		Str("user_id", userID).
		Msg("deleted label")
	return nil
}

func normalizeColor(color string) string {
	return strings.ToUpper(color)
}
