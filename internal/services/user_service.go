package services

import (
	"context"
	"fmt"

	"crmmvp/internal/authz"
	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

type UserService interface {
	List(ctx context.Context) ([]models.UserRef, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateRole(ctx context.Context, id, role string) error
}

type userService struct {
	repo repositories.UserRepository
}

func NewUserService(repo repositories.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) List(ctx context.Context) ([]models.UserRef, error) {
	return s.repo.List(ctx)
}

func (s *userService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) UpdateRole(ctx context.Context, id, role string) error {
	if !authz.IsValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	return s.repo.UpdateRole(ctx, id, role)
}
