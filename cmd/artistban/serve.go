package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/artistban/internal/adapter/driven/listsource"
	redisadapter "github.com/ericfisherdev/artistban/internal/adapter/driven/redis"
	"github.com/ericfisherdev/artistban/internal/adapter/driven/spotify"
	sqliteadapter "github.com/ericfisherdev/artistban/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/artistban/internal/adapter/driving/http"
	"github.com/ericfisherdev/artistban/internal/adapter/driving/observer"
	"github.com/ericfisherdev/artistban/internal/application"
	"github.com/ericfisherdev/artistban/internal/config"
	"github.com/ericfisherdev/artistban/internal/domain/port/driven"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the observing proxy, the control API and the daily sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a.cfg, a.logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"proxy_addr", cfg.ProxyAddr,
		"proxy_target", cfg.ProxyTarget,
		"store", cfg.Store,
		"list_source", cfg.ListSource,
		"write_rate", cfg.WriteRate,
	)

	// 1. Open the state store (runs migrations for SQLite).
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// 2. Wire driven adapters.
	fetcher, err := newListFetcher(cfg)
	if err != nil {
		return err
	}
	spotifyClient := spotify.NewClient(cfg.WriteURL, cfg.APIURL, cfg.HTTPTimeout)
	limiter := rate.NewLimiter(rate.Limit(cfg.WriteRate), 1)

	// 3. Create the application services.
	ledger := application.NewLedger(store)
	if size, err := ledger.Size(ctx); err == nil {
		logger.Info("ledger loaded", "blocked", size)
	}
	executor := application.NewBlockExecutor(spotifyClient, limiter)
	ctrl := application.NewRunController(fetcher, ledger, executor, spotifyClient, application.RunControllerOptions{
		Account: cfg.Account,
	})

	// 4. The observer feeds captured credentials into the controller, which
	// re-arms it whenever a credential is discarded.
	target, err := url.Parse(cfg.ProxyTarget)
	if err != nil {
		return fmt.Errorf("parse proxy target %q: %w", cfg.ProxyTarget, err)
	}
	base := http.DefaultTransport.(*http.Transport).Clone()
	transport := observer.NewTransport(base, ctrl)
	ctrl.SetRecapturer(transport)

	go ctrl.Start(ctx)

	// 5. Start the observing proxy and the control API.
	proxySrv := &http.Server{
		Addr:              cfg.ProxyAddr,
		Handler:           observer.NewProxy(target, transport, logger),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	apiSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(httphandler.NewHandler(ctrl, ledger, logger), logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// A manual block waits behind any running pass.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 2)
	for name, srv := range map[string]*http.Server{"proxy": proxySrv, "api": apiSrv} {
		go func() {
			logger.Info("http server starting", "server", name, "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("%s server: %w", name, err)
			}
		}()
	}

	logger.Info("artistban started", "version", Version)

	// 6. Wait for a shutdown signal or a server failure.
	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
		logger.Error("http server error", "error", runErr)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for name, srv := range map[string]*http.Server{"proxy": proxySrv, "api": apiSrv} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "server", name, "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

// openStore opens the configured StateStore backend. The returned func
// releases it.
func openStore(ctx context.Context, cfg *config.Config) (driven.StateStore, func(), error) {
	switch cfg.Store {
	case config.StoreRedis:
		store, err := redisadapter.NewStateStore(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		slog.Info("redis store connected", "prefix", cfg.RedisPrefix)
		return store, func() {
			if err := store.Close(); err != nil {
				slog.Error("error closing redis client", "error", err)
			}
		}, nil

	default:
		db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		slog.Info("database opened", "path", db.Path())
		return sqliteadapter.NewStateRepo(db), func() {
			if err := db.Close(); err != nil {
				slog.Error("error closing database", "error", err)
			}
		}, nil
	}
}

func newListFetcher(cfg *config.Config) (driven.ListFetcher, error) {
	if cfg.ListSource == config.ListSourceGitHub {
		return listsource.NewGitHubFetcher(cfg.ListRepo, cfg.ListPath, cfg.ListRef, cfg.GitHubToken, cfg.HTTPTimeout)
	}
	return listsource.NewHTTPFetcher(cfg.ListURL, cfg.HTTPTimeout), nil
}
