// Package app runs the storefront state machine: one event loop owns the
// catalog and cart stores and applies user commands to them in order.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"farmacia/internal/cart"
	"farmacia/internal/catalog"
	"farmacia/internal/domain"
	"farmacia/internal/render"
)

const DefaultPageSize = 12

var ErrStopped = errors.New("dispatcher stopped")

// Lister is the part of the product API the catalog is populated from.
type Lister interface {
	ListProducts(ctx context.Context, limit int, token string) (domain.ProductPage, error)
}

type reply struct {
	res Result
	err error
}

type envelope struct {
	cmd   Command
	reply chan<- reply
}

// Dispatcher единственный владелец хранилищ. Все изменения и чтения выполняются
// в цикле Run по одной команде за раз.
type Dispatcher struct {
	catalog  *catalog.Store
	cart     *cart.Store
	source   Lister
	renderer render.Renderer
	banner   *Banner
	log      *zap.Logger
	pageSize int

	cmds chan envelope
	done chan struct{}
}

type Options struct {
	PageSize int
	Renderer render.Renderer
	Banner   *Banner
	Logger   *zap.Logger
}

func NewDispatcher(cat *catalog.Store, c *cart.Store, source Lister, opts Options) *Dispatcher {
	d := &Dispatcher{
		catalog:  cat,
		cart:     c,
		source:   source,
		renderer: opts.Renderer,
		banner:   opts.Banner,
		log:      opts.Logger,
		pageSize: opts.PageSize,
		cmds:     make(chan envelope),
		done:     make(chan struct{}),
	}
	if d.renderer == nil {
		d.renderer = render.Nop{}
	}
	if d.banner == nil {
		d.banner = NewBanner(DefaultNoticeTTL)
	}
	if d.log == nil {
		d.log = zap.NewNop()
	}
	if d.pageSize <= 0 {
		d.pageSize = DefaultPageSize
	}
	return d
}

func (d *Dispatcher) Banner() *Banner { return d.banner }

// Run processes commands until ctx is done. It must be called exactly once.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.done)
	d.log.Info("dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info("dispatcher stopped")
			return nil
		case env := <-d.cmds:
			d.handle(ctx, env)
		}
	}
}

// Dispatch submits cmd to the loop and waits for its result.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	ch := make(chan reply, 1)
	if err := d.post(ctx, envelope{cmd: cmd, reply: ch}); err != nil {
		return Result{}, err
	}
	select {
	case r := <-ch:
		return r.res, r.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-d.done:
		return Result{}, ErrStopped
	}
}

func (d *Dispatcher) post(ctx context.Context, env envelope) error {
	select {
	case d.cmds <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.done:
		return ErrStopped
	}
}

func (d *Dispatcher) handle(ctx context.Context, env envelope) {
	if c, ok := env.cmd.(LoadCatalog); ok {
		d.startFetch(ctx, c, env.reply)
		return
	}
	res, err := d.apply(env.cmd)
	env.reply <- reply{res: res, err: err}
}

// startFetch запускает загрузку в отдельной горутине, цикл продолжает обрабатывать команды.
// Результат возвращается в цикл как catalogFetched. Кто ответил последним, тот и побеждает.
func (d *Dispatcher) startFetch(ctx context.Context, c LoadCatalog, out chan<- reply) {
	limit := c.Limit
	if limit <= 0 {
		limit = d.pageSize
	}
	d.log.Info("loading catalog", zap.Int("limit", limit), zap.String("token", c.Token))
	go func() {
		page, err := d.source.ListProducts(ctx, limit, c.Token)
		ch := make(chan reply, 1)
		if perr := d.post(ctx, envelope{cmd: catalogFetched{page: page, err: err, reply: out}, reply: ch}); perr != nil {
			out <- reply{err: perr}
		}
	}()
}

func (d *Dispatcher) apply(cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case catalogFetched:
		res, err := d.applyFetched(c)
		c.reply <- reply{res: res, err: err}
		return res, err

	case ViewCatalog:
		return d.catalogResult(d.catalog.Visible()), nil

	case ApplyFilter:
		d.log.Debug("applying filter",
			zap.String("search", c.Filter.Search),
			zap.String("category", c.Filter.Category),
			zap.Bool("max_price", c.Filter.MaxPrice != nil))
		visible := d.catalog.SetFilter(c.Filter)
		d.renderer.RenderCatalog(render.CatalogView{Products: visible, NextToken: d.catalog.NextToken()})
		return d.catalogResult(visible), nil

	case ResetFilter:
		visible := d.catalog.ResetFilter()
		d.renderer.RenderCatalog(render.CatalogView{Products: visible, NextToken: d.catalog.NextToken()})
		return d.catalogResult(visible), nil

	case AddItem:
		d.log.Info("adding item", zap.String("product_id", c.ProductID), zap.String("unit_price", c.UnitPrice.String()))
		d.cart.AddItem(c.ProductID, c.Name, c.UnitPrice)
		return d.cartResult(true), nil

	case RemoveItem:
		d.log.Info("removing item", zap.String("product_id", c.ProductID))
		return d.cartResult(d.cart.RemoveItem(c.ProductID)), nil

	case SetQuantity:
		changed := d.cart.SetQuantity(c.ProductID, c.Quantity)
		if !changed {
			d.log.Debug("quantity update ignored", zap.String("product_id", c.ProductID), zap.Int64("quantity", c.Quantity))
		}
		return d.cartResult(changed), nil

	case ViewCart:
		view := d.cartView()
		return Result{Cart: &view}, nil

	case Checkout:
		return d.checkout()

	default:
		return Result{}, fmt.Errorf("unknown command %T", cmd)
	}
}

// applyFetched: при ошибке снимок не трогаем, показываем баннер и возвращаем ошибку.
func (d *Dispatcher) applyFetched(c catalogFetched) (Result, error) {
	if c.err != nil {
		d.log.Warn("catalog load failed", zap.Error(c.err))
		d.renderer.RenderNotice(d.banner.Flash("Erro ao carregar produtos"))
		return Result{}, fmt.Errorf("load catalog: %w", c.err)
	}
	d.catalog.Load(c.page.Products, c.page.NextToken)
	visible := d.catalog.Visible()
	d.log.Info("catalog loaded", zap.Int("products", len(c.page.Products)), zap.Bool("has_more", c.page.NextToken != ""))
	d.renderer.RenderCatalog(render.CatalogView{Products: visible, NextToken: d.catalog.NextToken()})
	return d.catalogResult(visible), nil
}

func (d *Dispatcher) checkout() (Result, error) {
	sum, err := d.cart.Checkout()
	if err != nil {
		d.log.Info("checkout rejected", zap.Error(err))
		d.renderer.RenderNotice(d.banner.Block(render.NoticeError, "Carrinho vazio!"))
		return Result{}, err
	}
	d.log.Info("checkout confirmed",
		zap.Int64("item_count", sum.ItemCount),
		zap.Int("lines", sum.Lines),
		zap.String("total", render.Money(sum.Total)))
	msg := fmt.Sprintf("Pedido confirmado! Itens: %d Total: R$ %s", sum.ItemCount, render.Money(sum.Total))
	d.renderer.RenderNotice(d.banner.Block(render.NoticeInfo, msg))
	view := d.cartView()
	d.renderer.RenderCart(view)
	return Result{Cart: &view, Checkout: &sum, Changed: true}, nil
}

func (d *Dispatcher) catalogResult(visible []domain.Product) Result {
	return Result{
		Catalog:    &render.CatalogView{Products: visible, NextToken: d.catalog.NextToken()},
		Categories: d.catalog.Categories(),
	}
}

// cartResult renders the cart when it changed.
func (d *Dispatcher) cartResult(changed bool) Result {
	view := d.cartView()
	if changed {
		d.renderer.RenderCart(view)
	}
	return Result{Cart: &view, Changed: changed}
}

func (d *Dispatcher) cartView() render.CartView {
	return render.CartView{
		Lines:     d.cart.Lines(),
		Total:     d.cart.Total(),
		ItemCount: d.cart.ItemCount(),
	}
}
