package app

import (
	"github.com/shopspring/decimal"

	"farmacia/internal/domain"
	"farmacia/internal/render"
)

// Command действие пользователя, которое диспетчер применяет к хранилищам
type Command interface {
	commandName() string
}

// LoadCatalog fetches one page and replaces the catalog snapshot.
// Limit <= 0 uses the configured page size.
type LoadCatalog struct {
	Limit int
	Token string
}

type ViewCatalog struct{}

type ApplyFilter struct {
	Filter domain.Filter
}

type ResetFilter struct{}

type AddItem struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
}

type RemoveItem struct {
	ProductID string
}

type SetQuantity struct {
	ProductID string
	Quantity  int64
}

type ViewCart struct{}

type Checkout struct{}

// catalogFetched is posted back to the loop by the fetch goroutine.
type catalogFetched struct {
	page  domain.ProductPage
	err   error
	reply chan<- reply
}

func (LoadCatalog) commandName() string    { return "LoadCatalog" }
func (ViewCatalog) commandName() string    { return "ViewCatalog" }
func (ApplyFilter) commandName() string    { return "ApplyFilter" }
func (ResetFilter) commandName() string    { return "ResetFilter" }
func (AddItem) commandName() string        { return "AddItem" }
func (RemoveItem) commandName() string     { return "RemoveItem" }
func (SetQuantity) commandName() string    { return "SetQuantity" }
func (ViewCart) commandName() string       { return "ViewCart" }
func (Checkout) commandName() string       { return "Checkout" }
func (catalogFetched) commandName() string { return "catalogFetched" }

// Result проекции, пересчитанные после команды. Заполняются только относящиеся к команде поля.
type Result struct {
	Catalog    *render.CatalogView     `json:"catalog,omitempty"`
	Categories []string                `json:"categories,omitempty"`
	Cart       *render.CartView        `json:"cart,omitempty"`
	Checkout   *domain.CheckoutSummary `json:"checkout,omitempty"`
	// Changed is false when a cart command was a no-op.
	Changed bool `json:"changed"`
}
