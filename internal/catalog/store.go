// Package catalog holds the client-side catalog snapshot and its filtered projection.
package catalog

import (
	"farmacia/internal/domain"
)

// Store держит последний загруженный снимок каталога, курсор пагинации и активный фильтр.
// Store не защищён мьютексом: доступ сериализует диспетчер команд.
type Store struct {
	products  []domain.Product
	nextToken string
	filter    domain.Filter

	// memoized projection for filter; nil when invalidated
	visible []domain.Product
}

func NewStore() *Store {
	return &Store{}
}

// Load заменяет снимок и курсор целиком, без слияния с прежними данными.
func (s *Store) Load(products []domain.Product, token string) {
	s.products = append([]domain.Product(nil), products...)
	s.nextToken = token
	s.visible = nil
}

// ApplyFilter returns the products of the snapshot that satisfy f, in snapshot order.
func (s *Store) ApplyFilter(f domain.Filter) []domain.Product {
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// SetFilter makes f the active filter and returns its projection.
func (s *Store) SetFilter(f domain.Filter) []domain.Product {
	s.filter = f
	s.visible = nil
	return s.Visible()
}

// ResetFilter restores the pass-through filter.
func (s *Store) ResetFilter() []domain.Product {
	return s.SetFilter(domain.Filter{})
}

// Visible returns the projection for the active filter.
func (s *Store) Visible() []domain.Product {
	if s.visible == nil {
		s.visible = s.ApplyFilter(s.filter)
	}
	return append([]domain.Product(nil), s.visible...)
}

func (s *Store) Snapshot() []domain.Product {
	return append([]domain.Product(nil), s.products...)
}

func (s *Store) NextToken() string { return s.nextToken }

func (s *Store) Filter() domain.Filter { return s.filter }

// Categories lists distinct non-empty categories in first-seen order.
func (s *Store) Categories() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range s.products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
