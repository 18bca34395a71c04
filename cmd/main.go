package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tinbr-service/internal/quote"
	"tinbr-service/internal/store"
	"tinbr-service/pkg/config"
	"tinbr-service/pkg/database"
	"tinbr-service/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "tinbr",
	Short:         "Multi-tenant collection API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, rehashCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initializes the global logger
func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.InitLogger(cfg); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.Info("Configuration loaded", cfg.LogConfig()...)
	return cfg, log, nil
}

// openStore connects the configured document store backend
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		log.Warn("Using in-memory store, data is lost on exit")
		return store.Instrument(store.NewMemory()), nil
	default:
		client, err := database.ConnectMongo(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return store.Instrument(store.NewMongo(client, cfg.Mongo.Database, cfg.Mongo.Transactions, log)), nil
	}
}

// openQuoteSink returns the quote backend and a cleanup func for its resources
func openQuoteSink(ctx context.Context, cfg *config.Config, s store.Store, log *zap.Logger) (quote.Sink, func(), error) {
	if cfg.QuoteBackend == config.QuoteStore {
		sink := quote.NewDocumentSink(s, log)
		if err := sink.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return sink, func() {}, nil
	}

	db, err := database.OpenSQL(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	sink, err := quote.NewGormSink(db, log)
	if err != nil {
		_ = database.CloseSQL(db)
		return nil, nil, err
	}
	return sink, func() {
		if err := database.CloseSQL(db); err != nil {
			log.Error("Failed to close database", zap.Error(err))
		}
	}, nil
}
