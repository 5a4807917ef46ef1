package adapter

import (
	"context"
	"errors"

	userapp "github.com/minshop/commerce/internal/user/app"
)

// UserServiceStore adapts the user service to the order workflow's existence
// check.
type UserServiceStore struct {
	svc *userapp.Service
}

func NewUserServiceStore(svc *userapp.Service) *UserServiceStore {
	return &UserServiceStore{svc: svc}
}

func (s *UserServiceStore) Exists(ctx context.Context, userID string) (bool, error) {
	_, err := s.svc.GetUser(ctx, userID)
	if errors.Is(err, userapp.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
