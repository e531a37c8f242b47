package services

import (
	"context"
	"fmt"
	"strings"

	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

type ContactService interface {
	Create(ctx context.Context, callerID string, req models.ContactCreateRequest) (*models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	List(ctx context.Context) ([]models.Contact, error)
	Update(ctx context.Context, id string, req models.ContactUpdateRequest) (*models.Contact, error)
}

type contactService struct {
	repo repositories.ContactRepository
}

func NewContactService(repo repositories.ContactRepository) ContactService {
	return &contactService{repo: repo}
}

func (s *contactService) Create(ctx context.Context, callerID string, req models.ContactCreateRequest) (*models.Contact, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	contact := &models.Contact{
		Name:        strings.TrimSpace(req.Name),
		Phone:       req.Phone,
		Email:       req.Email,
		Position:    req.Position,
		ClientID:    req.ClientID,
		CreatedByID: &callerID,
	}
	if err := s.repo.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *contactService) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *contactService) List(ctx context.Context) ([]models.Contact, error) {
	return s.repo.List(ctx)
}

func (s *contactService) Update(ctx context.Context, id string, req models.ContactUpdateRequest) (*models.Contact, error) {
	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	req.Apply(contact)
	if err := s.repo.Update(ctx, contact); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
