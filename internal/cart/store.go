// Package cart implements the in-memory shopping cart.
package cart

import (
	"github.com/shopspring/decimal"

	"farmacia/internal/domain"
)

// Store корзина покупателя: упорядоченные позиции, не более одной на товар.
// Не потокобезопасна, вызовы сериализует диспетчер.
type Store struct {
	lines []domain.CartLine
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) indexOf(productID string) int {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// AddItem увеличивает количество существующей позиции или добавляет новую с количеством 1.
// Имя и цена берутся как есть, каталог не сверяется.
func (s *Store) AddItem(productID, name string, unitPrice decimal.Decimal) domain.CartLine {
	if i := s.indexOf(productID); i >= 0 {
		s.lines[i].Quantity++
		return s.lines[i]
	}
	line := domain.CartLine{ProductID: productID, Name: name, UnitPrice: unitPrice, Quantity: 1}
	s.lines = append(s.lines, line)
	return line
}

// RemoveItem deletes the line for productID; absent ids are ignored.
func (s *Store) RemoveItem(productID string) bool {
	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return true
}

// SetQuantity replaces the quantity of an existing line. Non-positive
// quantities and unknown ids leave the cart untouched.
func (s *Store) SetQuantity(productID string, quantity int64) bool {
	if quantity < 1 {
		return false
	}
	i := s.indexOf(productID)
	if i < 0 {
		return false
	}
	s.lines[i].Quantity = quantity
	return true
}

func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *Store) ItemCount() int64 {
	var n int64
	for _, l := range s.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy in insertion order.
func (s *Store) Lines() []domain.CartLine {
	return append([]domain.CartLine(nil), s.lines...)
}

func (s *Store) Len() int { return len(s.lines) }

// Checkout подтверждает покупку локально: возвращает итог и очищает корзину.
// Заказ никуда не отправляется.
func (s *Store) Checkout() (domain.CheckoutSummary, error) {
	if len(s.lines) == 0 {
		return domain.CheckoutSummary{}, domain.ErrEmptyCart
	}
	sum := domain.CheckoutSummary{
		ItemCount: s.ItemCount(),
		Lines:     len(s.lines),
		Total:     s.Total(),
	}
	s.lines = nil
	return sum, nil
}
