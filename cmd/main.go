package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"farmacia/internal/apiclient"
	"farmacia/internal/app"
	"farmacia/internal/cart"
	"farmacia/internal/catalog"
	"farmacia/internal/config"
	httpapi "farmacia/internal/http"
	"farmacia/internal/logging"
	"farmacia/internal/render"
	"farmacia/internal/repository"
	"farmacia/internal/service"
	"farmacia/internal/session"

	_ "farmacia/docs"
)

//go:generate swag init -g main.go -d ./,../internal/http,../internal/app,../internal/domain,../internal/render -o ../docs

// @title Farmácia storefront API
// @version 1.0
// @description Catalog browsing, cart and checkout over the pharmacy product API.
// @host localhost:9091
// @BasePath /api/v1
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var products repository.ProductCatalog
	if cfg.Offline() {
		log.Warn("API_BASE_URL not set, serving the demo catalog")
		products = repository.NewMemoryCatalog(repository.DemoProducts()...)
	} else {
		products = apiclient.New(cfg.APIBaseURL, cfg.APITimeout, session.NewFileStore(cfg.SessionFile), log)
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		cached := repository.NewCachedCatalog(products, rdb, cfg.RedisPrefix, cfg.RedisTTL, log)
		if err := cached.Ping(ctx); err != nil {
			// без кеша работаем дальше
			log.Warn("redis unavailable, product cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			products = cached
		}
	}

	var out io.Writer = io.Discard
	if cfg.Console {
		out = os.Stdout
	}
	d := app.NewDispatcher(catalog.NewStore(), cart.NewStore(), products, app.Options{
		PageSize: cfg.PageSize,
		Renderer: render.NewText(out),
		Banner:   app.NewBanner(cfg.NoticeTTL),
		Logger:   log,
	})

	srv := httpapi.NewServer(d, products, service.NewProductService(products, log), log)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.Run(gctx) })
	g.Go(func() error {
		// первая страница каталога при старте, ошибка уже показана баннером
		if _, err := d.Dispatch(gctx, app.LoadCatalog{}); err != nil {
			log.Warn("initial catalog load failed", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("stopped")
	return nil
}
