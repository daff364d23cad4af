package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/adanyl0v/go-tasks/internal/models"
)

const labelsPath = "/api/labels"

type LabelService struct {
	client *Client
}

func NewLabelService(client *Client) *LabelService {
	return &LabelService{client: client}
}

func (s *LabelService) List(ctx context.Context) ([]models.Label, error) {
	var labels []models.Label
	err := s.client.Do(ctx, http.MethodGet, labelsPath, nil, nil, &labels)
	if err != nil {
		return nil, err
	}
	return labels, nil
}

func (s *LabelService) Get(ctx context.Context, id string) (*models.Label, error) {
	var label models.Label
	err := s.client.Do(ctx, http.MethodGet, labelPath(id), nil, nil, &label)
	if err != nil {
		return nil, err
	}
	return &label, nil
}

func (s *LabelService) Create(ctx context.Context, data models.LabelCreate) (*models.Label, error) {
	var label models.Label
	err := s.client.Do(ctx, http.MethodPost, labelsPath, nil, data, &label)
	if err != nil {
		return nil, err
	}
	return &label, nil
}

func (s *LabelService) Update(ctx context.Context, id string, data models.LabelUpdate) (*models.Label, error) {
	var label models.Label
	err := s.client.Do(ctx, http.MethodPut, labelPath(id), nil, data, &label)
	if err != nil {
		return nil, err
	}
	return &label, nil
}

// Delete removes the label. The backend also detaches it from every task.
func (s *LabelService) Delete(ctx context.Context, id string) error {
	return s.client.Do(ctx, http.MethodDelete, labelPath(id), nil, nil, nil)
}

func labelPath(id string) string {
	return labelsPath + "/" + url.PathEscape(id)
}
