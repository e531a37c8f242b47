package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"crmmvp/internal/authz"
	"crmmvp/internal/logging"
	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

// AuthService is the in-process identity provider: bcrypt password hashes
// and signed session tokens.
type AuthService interface {
	HashPassword(plain string) (string, error)
	SignUp(ctx context.Context, req models.SignUpRequest) (*models.TokenResponse, error)
	SignIn(ctx context.Context, req models.SignInRequest) (*models.TokenResponse, error)
	Session(ctx context.Context, userID string) (*models.Session, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *authz.Tokens
	email  EmailService
}

func NewAuthService(users repositories.UserRepository, tokens *authz.Tokens, email EmailService) AuthService {
	return &authService{users: users, tokens: tokens, email: email}
}

func (s *authService) HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *authService) SignUp(ctx context.Context, req models.SignUpRequest) (*models.TokenResponse, error) {
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Role:         authz.RoleUser,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
			// warn but do not fail sign-up
			logging.Logger.WithError(err).Warnf("[auth][sign-up] welcome email to %s failed", user.Email)
		}
	}
	return s.issue(user)
}

func (s *authService) SignIn(ctx context.Context, req models.SignInRequest) (*models.TokenResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}
	ph := strings.TrimSpace(user.PasswordHash)
	if ph == "" {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ph), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return s.issue(user)
}

func (s *authService) Session(ctx context.Context, userID string) (*models.Session, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sess := sessionOf(user)
	return &sess, nil
}

func (s *authService) issue(user *models.User) (*models.TokenResponse, error) {
	token, exp, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &models.TokenResponse{AccessToken: token, ExpiresAt: exp, User: sessionOf(user)}, nil
}

func sessionOf(u *models.User) models.Session {
	return models.Session{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
	}
}
