package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yourorg/transitload/internal/config"
	"github.com/yourorg/transitload/internal/fetch"
	"github.com/yourorg/transitload/internal/handlers"
	"github.com/yourorg/transitload/internal/metrics"
	"github.com/yourorg/transitload/internal/pipeline"
	"github.com/yourorg/transitload/internal/routes"
	"github.com/yourorg/transitload/internal/store"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to config file (default ./transitload.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl := newZap(cfg.LogLevel)
	defer zl.Sync()

	metrics.Init()

	st, closeStore, err := openStore(cfg.StoreDriver)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer closeStore()

	tasks, err := pipeline.ExpandTasks(cfg.Agencies)
	if err != nil {
		// descriptor problems abort before anything is enqueued
		log.Fatalf("agencies: %v", err)
	}

	runner := &pipeline.Runner{
		Store:   st,
		Fetcher: fetch.NewFetcher(nil),
		WorkDir: cfg.WorkDir,
		Log:     zl,
	}
	q := pipeline.NewQueue(runner, zl)
	for _, t := range tasks {
		q.Push(t)
	}

	if cfg.StatusAddr != "" {
		app := fiber.New(fiber.Config{DisableStartupMessage: true})
		handlers.Setup(q)
		routes.Register(app)
		go func() {
			if err := app.Listen(cfg.StatusAddr); err != nil {
				zl.Warn("status server stopped", zap.Error(err))
			}
		}()
		defer app.Shutdown()
		zl.Info("status server listening", zap.String("addr", cfg.StatusAddr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sum := q.Run(ctx)
	fmt.Printf("All agencies completed (%d total): %d ok, %d failed\n",
		sum.Attempted, sum.Completed, sum.Failed)
	if sum.Failed > 0 {
		os.Exit(1)
	}
}

func openStore(driver string) (store.Store, func(), error) {
	switch strings.ToLower(driver) {
	case "memory":
		return store.NewMemory(), func() {}, nil
	case "mysql", "":
		s, err := store.ConnectMySQL()
		if err != nil {
			return nil, nil, err
		}
		if err := s.Ping(context.Background()); err != nil {
			s.Close()
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func newZap(level string) *zap.Logger {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(level) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
