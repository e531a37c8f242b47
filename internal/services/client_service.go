package services

import (
	"context"
	"fmt"
	"strings"

	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

type ClientService interface {
	Create(ctx context.Context, callerID string, req models.ClientCreateRequest) (*models.Client, error)
	GetByID(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
	Update(ctx context.Context, id string, req models.ClientUpdateRequest) (*models.Client, error)
}

type clientService struct {
	repo     repositories.ClientRepository
	contacts repositories.ContactRepository
	tasks    repositories.TaskRepository
	feeds    repositories.FeedRepository
}

func NewClientService(
	repo repositories.ClientRepository,
	contacts repositories.ContactRepository,
	tasks repositories.TaskRepository,
	feeds repositories.FeedRepository,
) ClientService {
	return &clientService{repo: repo, contacts: contacts, tasks: tasks, feeds: feeds}
}

func (s *clientService) Create(ctx context.Context, callerID string, req models.ClientCreateRequest) (*models.Client, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	client := &models.Client{
		Name:        strings.TrimSpace(req.Name),
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		CreatedByID: &callerID,
	}
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// GetByID returns the client with its contacts, tasks and feed items.
func (s *clientService) GetByID(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client.Contacts, err = s.contacts.FindByClient(ctx, id); err != nil {
		return nil, err
	}
	if client.Tasks, err = s.tasks.FindByClient(ctx, id); err != nil {
		return nil, err
	}
	if client.Feeds, err = s.feeds.FindByClient(ctx, id); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *clientService) List(ctx context.Context) ([]models.Client, error) {
	return s.repo.List(ctx)
}

func (s *clientService) Update(ctx context.Context, id string, req models.ClientUpdateRequest) (*models.Client, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(client)
	if strings.TrimSpace(client.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}
