package accounts

import (
	"context"
	"errors"

	"github.com/quotedesk/quotedesk/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Account, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Account, error) {
	if id <= 0 {
		return Account{}, errors.New("invalid account ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, account Account) (Account, error) {
	if err := s.validate(account); err != nil {
		return Account{}, err
	}
	return s.repo.Create(ctx, account)
}

func (s *Service) Update(ctx context.Context, id int64, account Account) error {
	if id <= 0 {
		return errors.New("invalid account ID")
	}
	if err := s.validate(account); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, account)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid account ID")
	}
	return s.repo.Delete(ctx, id)
}
