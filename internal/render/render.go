// Package render turns catalog and cart projections into something a person can read.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"farmacia/internal/domain"
)

// CatalogView отфильтрованный каталог для показа
type CatalogView struct {
	Products  []domain.Product `json:"products"`
	NextToken string           `json:"next_token,omitempty"`
}

// CartView позиции корзины вместе с итогами
type CartView struct {
	Lines     []domain.CartLine `json:"lines"`
	Total     decimal.Decimal   `json:"total"`
	ItemCount int64             `json:"item_count"`
}

type NoticeKind string

const (
	NoticeError NoticeKind = "error"
	NoticeInfo  NoticeKind = "info"
)

// Notice сообщение пользователю. Неблокирующие исчезают в ExpiresAt.
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	Blocking  bool       `json:"blocking"`
	ExpiresAt time.Time  `json:"expires_at,omitempty"`
}

// Renderer is a pure presentation sink.
type Renderer interface {
	RenderCatalog(CatalogView)
	RenderCart(CartView)
	RenderNotice(Notice)
}

// Money formats a price with two decimals, the way the storefront shows it.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Text пишет представления в io.Writer простым текстом.
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

var _ Renderer = (*Text)(nil)

func (t *Text) RenderCatalog(v CatalogView) {
	var b strings.Builder
	if len(v.Products) == 0 {
		b.WriteString("Nenhum produto encontrado\n")
	}
	for _, p := range v.Products {
		fmt.Fprintf(&b, "[%s] %s  R$ %s\n", p.ID, p.Name, Money(p.Price))
		if p.Description != "" {
			fmt.Fprintf(&b, "    %s\n", p.Description)
		}
	}
	t.write(b.String())
}

func (t *Text) RenderCart(v CartView) {
	var b strings.Builder
	if len(v.Lines) == 0 {
		b.WriteString("Carrinho vazio\n")
	}
	for _, l := range v.Lines {
		fmt.Fprintf(&b, "%s  R$ %s un.  x%d\n", l.Name, Money(l.UnitPrice), l.Quantity)
	}
	fmt.Fprintf(&b, "Itens: %d  Total: R$ %s\n", v.ItemCount, Money(v.Total))
	t.write(b.String())
}

func (t *Text) RenderNotice(n Notice) {
	prefix := "!"
	if n.Kind == NoticeInfo {
		prefix = "*"
	}
	t.write(fmt.Sprintf("%s %s\n", prefix, n.Message))
}

func (t *Text) write(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, s)
}

// Nop discards everything.
type Nop struct{}

func (Nop) RenderCatalog(CatalogView) {}
func (Nop) RenderCart(CartView)       {}
func (Nop) RenderNotice(Notice)       {}
