package repository

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"farmacia/internal/domain"
)

// MemoryCatalog офлайн-каталог в памяти. Используется, когда адрес API не задан.
type MemoryCatalog struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]domain.Product
}

func NewMemoryCatalog(seed ...domain.Product) *MemoryCatalog {
	m := &MemoryCatalog{byID: make(map[string]domain.Product)}
	for _, p := range seed {
		m.put(p)
	}
	return m
}

// DemoProducts набор товаров для работы без API
func DemoProducts() []domain.Product {
	return []domain.Product{
		{
			ID:          "1",
			Name:        "Vitamina C 1000mg",
			Description: "Vitamina C pura com 60 cápsulas",
			Price:       decimal.RequireFromString("45.90"),
			Stock:       50,
			Category:    "suplementos",
			SKU:         "VIT-C-1000",
		},
		{
			ID:          "2",
			Name:        "Dipirona 500mg",
			Description: "Analgésico e antitérmico - 20 comprimidos",
			Price:       decimal.RequireFromString("8.50"),
			Stock:       100,
			Category:    "medicamentos",
			SKU:         "DIPI-500",
		},
		{
			ID:          "3",
			Name:        "Sabonete Liquido",
			Description: "Sabonete líquido neutro 250ml",
			Price:       decimal.RequireFromString("12.00"),
			Stock:       75,
			Category:    "higiene",
			SKU:         "SOAP-LIQUID",
		},
	}
}

// Ensure interfaces
var _ ProductCatalog = (*MemoryCatalog)(nil)

// put overwrites an existing id in place, otherwise appends. Caller holds the write lock.
func (m *MemoryCatalog) put(p domain.Product) {
	if _, ok := m.byID[p.ID]; !ok {
		m.order = append(m.order, p.ID)
	}
	m.byID[p.ID] = p
}

// ListProducts отдаёт страницу в порядке добавления. Курсор: id последнего товара предыдущей страницы.
func (m *MemoryCatalog) ListProducts(ctx context.Context, limit int, token string) (domain.ProductPage, error) {
	if err := ctx.Err(); err != nil {
		return domain.ProductPage{}, &domain.RequestError{Message: err.Error()}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	limit = ClampLimit(limit)
	start := 0
	if token != "" {
		start = -1
		for i, id := range m.order {
			if id == token {
				start = i + 1
				break
			}
		}
		if start < 0 {
			return domain.ProductPage{}, &domain.RequestError{StatusCode: 400, Message: "lastKey inválido"}
		}
	}

	end := start + limit
	if end > len(m.order) {
		end = len(m.order)
	}
	out := make([]domain.Product, 0, end-start)
	for _, id := range m.order[start:end] {
		out = append(out, m.byID[id])
	}
	page := domain.ProductPage{Products: out}
	if end < len(m.order) && len(out) > 0 {
		page.NextToken = out[len(out)-1].ID
	}
	return page, nil
}

func (m *MemoryCatalog) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, notFound()
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryCatalog) CreateProduct(ctx context.Context, p domain.Product) (string, error) {
	if p.ID == "" {
		return "", &domain.RequestError{StatusCode: 400, Message: "produto_id é obrigatório"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(p)
	return p.ID, nil
}

func (m *MemoryCatalog) UpdateProduct(ctx context.Context, id string, u domain.ProductUpdate) (*domain.Product, error) {
	if u.IsEmpty() {
		return nil, &domain.RequestError{StatusCode: 400, Message: "Nenhum campo para atualizar"}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, notFound()
	}
	p = u.Apply(p)
	m.byID[id] = p
	return &p, nil
}

func (m *MemoryCatalog) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return notFound()
	}
	delete(m.byID, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
