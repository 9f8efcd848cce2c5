package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/reachway/reachway/internal/models"
	"github.com/reachway/reachway/internal/repository"
)

type UserService interface {
	Create(ctx context.Context, email, name string) (int64, error)
	Info(ctx context.Context, userID int64) (*models.User, error)
}

type userService struct {
	ur repository.UserRepository
}

func NewUserService(ur repository.UserRepository) UserService {
	return &userService{ur: ur}
}

func (s *userService) Create(ctx context.Context, email, name string) (int64, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return 0, fmt.Errorf("%w: email is not valid", ErrInvalidInput)
	}

	existing, err := s.ur.GetByEmail(ctx, email)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, fmt.Errorf("%w: email is already registered", ErrDuplicate)
	}

	return s.ur.Create(ctx, &models.User{Email: email, Name: name})
}

func (s *userService) Info(ctx context.Context, userID int64) (*models.User, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: user is not valid", ErrInvalidInput)
	}

	user, err := s.ur.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user", ErrNotFound)
	}
	return user, nil
}
