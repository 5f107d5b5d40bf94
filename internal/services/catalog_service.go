package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopfront/internal/domain"
	"shopfront/internal/repos"
)

var ErrInvalidProduct = errors.New("invalid product")

type CatalogService struct {
	Prods *repos.ProductRepo
}

func NewCatalogService(prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Prods: prods}
}

func (s *CatalogService) Featured() ([]domain.Product, error) {
	return s.Prods.ListFeatured()
}

func (s *CatalogService) List(page, pageSize int) ([]domain.Product, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 12
	}
	offset := (page - 1) * pageSize
	return s.Prods.List(pageSize, offset)
}

func (s *CatalogService) Get(id string) (domain.Product, error) {
	return s.Prods.Get(id)
}

func (s *CatalogService) Create(p domain.Product) (domain.Product, error) {
	if err := checkProduct(p); err != nil {
		return domain.Product{}, err
	}
	p.ID = uuid.NewString()
	if err := s.Prods.Create(p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (s *CatalogService) Update(p domain.Product) error {
	if err := checkProduct(p); err != nil {
		return err
	}
	return s.Prods.Update(p)
}

// Delete removes a product; the store refuses while order lines still
// reference it (ErrProductInUse). Cart lines may be left dangling.
func (s *CatalogService) Delete(id string) error {
	return s.Prods.Delete(id)
}

func checkProduct(p domain.Product) error {
	name := strings.TrimSpace(p.Name)
	if name == "" || len(name) > 100 {
		return ErrInvalidProduct
	}
	if !p.Price.GreaterThan(decimal.Zero) {
		return ErrInvalidProduct
	}
	return nil
}
