package products

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, errors.New("invalid product ID")
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	product = normalize(product)
	if err := validate(product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, id int64, product Product) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	product = normalize(product)
	if err := validate(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, product)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errors.New("invalid product ID")
	}
	return s.repo.Delete(ctx, id)
}

// normalize trims the identifying fields and upper-cases the code so the
// unique constraint on code cannot be sidestepped by casing or whitespace.
func normalize(p Product) Product {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	p.Name = strings.TrimSpace(p.Name)
	return p
}

// validate guards the pricing fields that seed quotation lines. The unit
// price and tax percentage stored here become line defaults, so bad
// values would surface as bad quotations.
func validate(p Product) error {
	if p.Code == "" {
		return errors.New("product code is required")
	}
	if p.Name == "" {
		return errors.New("product name is required")
	}
	if p.CategoryID <= 0 {
		return errors.New("product category is required")
	}
	if p.UnitPrice < 0 {
		return errors.New("product unit price cannot be negative")
	}
	if p.TaxPct < 0 || p.TaxPct > 100 {
		return errors.New("product tax percentage must be between 0 and 100")
	}
	return nil
}
