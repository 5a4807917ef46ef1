package app

import (
	"context"
	"errors"
	"strings"

	"github.com/minshop/commerce/internal/user/domain"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

type Service struct {
	repo UserRepo
}

func NewService(repo UserRepo) *Service {
	return &Service{repo: repo}
}

// RegisterUser records an account identity. Credentials live in the upstream
// auth service; this store only holds the profile the rest of the system
// references.
func (s *Service) RegisterUser(ctx context.Context, email, name string, role domain.Role) (domain.User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)

	if email == "" || name == "" || !strings.Contains(email, "@") {
		return domain.User{}, ErrInvalidInput
	}
	if role == "" {
		role = domain.RoleViewer
	}

	return s.repo.Create(ctx, domain.User{
		Email: email,
		Name:  name,
		Role:  role,
	})
}

func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return domain.User{}, ErrInvalidInput
	}
	return s.repo.Get(ctx, id)
}
