package application

import (
	"context"
	"errors"

	"github.com/dmehra2102/storefront/internal/catalog/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

// Get returns ErrProductNotFound for unknown or non-positive ids.
func (s *Service) Get(ctx context.Context, id int64) (domain.Product, error) {
	if id <= 0 {
		return domain.Product{}, ErrProductNotFound
	}
	return s.repo.Get(ctx, id)
}
