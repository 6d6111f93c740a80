package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product представляет товар аптеки. Клиент держит только снимок, изменять его может лишь сервер.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Stock       int64           `json:"stock"`
	Category    string          `json:"category"`
	SKU         string          `json:"sku"`
}

// ProductPage одна страница каталога и курсор продолжения
type ProductPage struct {
	Products  []Product `json:"products"`
	NextToken string    `json:"next_token,omitempty"`
}

// Filter параметры клиентского фильтра каталога. MaxPrice == nil означает «без ограничения».
type Filter struct {
	Search   string           `json:"search"`
	Category string           `json:"category"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
}

// IsZero reports whether the filter lets every product through.
func (f Filter) IsZero() bool {
	return f.Search == "" && f.Category == "" && f.MaxPrice == nil
}

// Matches checks the three predicates conjunctively.
func (f Filter) Matches(p Product) bool {
	if f.Search != "" &&
		!containsIgnoreCase(p.Name, f.Search) &&
		!containsIgnoreCase(p.Description, f.Search) {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// CartLine позиция корзины. Имя и цена фиксируются в момент добавления.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int64           `json:"quantity"`
}

// Subtotal returns unit price times quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// CheckoutSummary итог подтверждённой покупки (до очистки корзины)
type CheckoutSummary struct {
	ItemCount int64           `json:"item_count"`
	Lines     int             `json:"lines"`
	Total     decimal.Decimal `json:"total"`
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ProductUpdate частичное обновление товара: nil-поля не меняются
type ProductUpdate struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Stock       *int64           `json:"stock,omitempty"`
	Category    *string          `json:"category,omitempty"`
}

// IsEmpty reports whether the update carries no field.
func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil && u.Stock == nil && u.Category == nil
}

// Apply returns p with the non-nil fields of u applied.
func (u ProductUpdate) Apply(p Product) Product {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	return p
}
