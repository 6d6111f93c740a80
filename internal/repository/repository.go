package repository

import (
	"context"

	"farmacia/internal/domain"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ProductCatalog интерфейс источника товаров: удалённый API или офлайн-каталог.
// Ошибки возвращаются как *domain.RequestError.
type ProductCatalog interface {
	ListProducts(ctx context.Context, limit int, token string) (domain.ProductPage, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (string, error)
	UpdateProduct(ctx context.Context, id string, u domain.ProductUpdate) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

// ClampLimit applies the listing endpoint's bounds.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func notFound() error {
	return &domain.RequestError{StatusCode: 404, Message: "Produto não encontrado"}
}
