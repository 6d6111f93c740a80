package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"farmacia/internal/domain"
	"farmacia/internal/repository"
)

// ProductService административные операции над товарами: валидация перед вызовом API
type ProductService struct {
	repo repository.ProductCatalog
	log  *zap.Logger
}

func NewProductService(repo repository.ProductCatalog, log *zap.Logger) *ProductService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProductService{repo: repo, log: log}
}

var ErrInvalidInput = errors.New("invalid input")

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == "" || p.Name == "" || p.Price.IsNegative() || p.Stock < 0 {
		return nil, ErrInvalidInput
	}
	id, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return nil, err
	}
	s.log.Info("admin: product created", zap.String("product_id", id))
	cp := p
	cp.ID = id
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetProduct(ctx, id)
}

func (s *ProductService) Update(ctx context.Context, id string, u domain.ProductUpdate) (*domain.Product, error) {
	if id == "" || u.IsEmpty() {
		return nil, ErrInvalidInput
	}
	if u.Name != nil && *u.Name == "" {
		return nil, ErrInvalidInput
	}
	if (u.Price != nil && u.Price.IsNegative()) || (u.Stock != nil && *u.Stock < 0) {
		return nil, ErrInvalidInput
	}
	p, err := s.repo.UpdateProduct(ctx, id, u)
	if err != nil {
		return nil, err
	}
	s.log.Info("admin: product updated", zap.String("product_id", id))
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalidInput
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.log.Info("admin: product deleted", zap.String("product_id", id))
	return nil
}
