package contacts

import (
	"context"
	"errors"
	"strings"

	"github.com/quotedesk/quotedesk/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Contact, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Contact, error) {
	if id <= 0 {
		return Contact{}, errors.New("invalid contact ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, contact Contact) (Contact, error) {
	if err := s.validate(contact); err != nil {
		return Contact{}, err
	}
	return s.repo.Create(ctx, contact)
}

func (s *Service) Update(ctx context.Context, id int64, contact Contact) error {
	if id <= 0 {
		return errors.New("invalid contact ID")
	}
	if err := s.validate(contact); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, contact)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid contact ID")
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(c Contact) error {
	if c.AccountID <= 0 {
		return errors.New("contact account is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("contact name is required")
	}
	if c.Email != "" && !strings.Contains(c.Email, "@") {
		return errors.New("contact email is invalid")
	}
	return nil
}
