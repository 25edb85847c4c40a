package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/david/sochx/internal/api"
	"github.com/david/sochx/internal/auth"
	"github.com/david/sochx/internal/blog"
	"github.com/david/sochx/internal/catalog"
	"github.com/david/sochx/internal/config"
	"github.com/david/sochx/internal/logging"
)

func main() {
	configPath := flag.String("config", "sochx.yaml", "path to the optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := catalog.Open(cfg.OpportunitiesPath, logger.Named("catalog"))
	if err != nil {
		return err
	}

	gate, err := auth.NewService(cfg.AdminPasscodeHash, cfg.JWTSecret, logger.Named("auth"))
	if err != nil {
		return err
	}

	srv := api.NewServer(store, blog.NewService(cfg.BlogDir, logger.Named("blog")), gate, api.Options{
		CORSOrigins:  cfg.CORSOrigins,
		UrgentWindow: cfg.UrgentWindow(),
	}, logger.Named("http"))

	g, ctx := errgroup.WithContext(ctx)

	if cfg.WatchData {
		watcher, err := catalog.NewWatcher(store, cfg.OpportunitiesPath, logger.Named("watcher"))
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	g.Go(func() error {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.Start(cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Echo.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
