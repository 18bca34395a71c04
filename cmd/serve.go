package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"tinbr-service/internal/cascade"
	"tinbr-service/internal/handler"
	"tinbr-service/internal/middleware"
	"tinbr-service/internal/model"
	"tinbr-service/internal/repository"
	"tinbr-service/internal/service"
	"tinbr-service/pkg/logger"
	"tinbr-service/prometheus"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()
	log.Info("Starting service...", zap.String("environment", cfg.Server.Env))

	s, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Close(closeCtx); err != nil {
			log.Error("Failed to close store", zap.Error(err))
		}
	}()

	var repos []*repository.Repository
	for _, col := range model.All() {
		repo := repository.New(col, s, log, repository.WithLimit(cfg.ListDefaultLimit))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return err
		}
		repos = append(repos, repo)
	}
	log.Info("Unique indexes ensured", zap.Int("collections", len(repos)))

	quotes, closeQuotes, err := openQuoteSink(ctx, cfg, s, log)
	if err != nil {
		return err
	}
	defer closeQuotes()

	prometheus.InitMetrics(prom.DefaultRegisterer)
	log.Info("Prometheus metrics initialized")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(middleware.MetricsMiddleware)

	h := &handler.Handler{
		ServiceName: cfg.ServiceName,
		Store:       s,
		Repos:       repos,
		Cascade:     cascade.NewUpdater(s, log),
		Auth:        service.NewAuthService(s, log),
		Quotes:      quotes,
	}
	h.Register(e)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
