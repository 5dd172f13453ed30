package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/deisishop/internal/cart"
	"github.com/fjod/deisishop/internal/catalog"
	"github.com/fjod/deisishop/internal/checkout"
	"github.com/fjod/deisishop/internal/config"
	"github.com/fjod/deisishop/internal/events"
	"github.com/fjod/deisishop/internal/fetch"
	"github.com/fjod/deisishop/internal/health"
	h "github.com/fjod/deisishop/internal/http"
	"github.com/fjod/deisishop/internal/storage"
	"github.com/fjod/deisishop/internal/view"
	"github.com/fjod/deisishop/internal/viewmodel"
	"github.com/fjod/deisishop/pkg/circuitbreaker"
	"github.com/fjod/deisishop/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.New("storefront", cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("storefront stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	backend, err := storage.Open(startCtx, cfg)
	cancel()
	if err != nil {
		return fmt.Errorf("open cart store: %w", err)
	}
	log.Info("cart store ready", "backend", backend.Name)

	breakerCfg := circuitbreaker.DefaultConfig("catalog")
	breakerCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}
	client := catalog.NewClient(cfg.CatalogBaseURL,
		catalog.WithRateLimit(cfg.CatalogRateLimit),
		catalog.WithBreaker(breakerCfg),
		catalog.WithLogger(log),
	)

	publisher := events.New(cfg.OrdersTopic, cfg.KafkaBrokers, log)
	carts := cart.NewRegistry(backend.KV, log)
	checkouts := checkout.NewRegistry(carts, client, publisher, log)

	router := h.NewRouter(h.RouterConfig{
		Catalog:        client,
		Loader:         fetch.NewLoader(fetch.WithLoadTimeout(cfg.RequestTimeout)),
		Carts:          carts,
		Checkouts:      checkouts,
		Renderer:       view.NewRenderer(cfg.ImageBaseURL),
		Projector:      viewmodel.NewProjector(cfg.CollationLocale),
		RequestTimeout: cfg.RequestTimeout,
		MaxBodySize:    cfg.MaxRequestBodySize,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lis, err := net.Listen("tcp", ":"+cfg.GRPCHealthPort)
	if err != nil {
		return fmt.Errorf("listen on health port: %w", err)
	}
	healthSrv := health.NewServer(client, 5*time.Second, log)
	go healthSrv.Watch(ctx)

	errCh := make(chan error, 2)
	go func() {
		log.Info("health server listening", "port", cfg.GRPCHealthPort)
		if err := healthSrv.Serve(lis); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()
	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort, "catalog", client.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	// Graceful shutdown
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	healthSrv.GracefulStop()
	if err := publisher.Close(); err != nil {
		log.Error("failed to close event publisher", "error", err)
	}
	if err := backend.Close(shutdownCtx); err != nil {
		log.Error("failed to close cart store", "error", err)
	}

	log.Info("server exited")
	return runErr
}
