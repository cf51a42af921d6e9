package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ruslanbay/codedrill/internal/config"
	"github.com/ruslanbay/codedrill/internal/delivery/httpapi"
	"github.com/ruslanbay/codedrill/internal/infra/postgres"
	"github.com/ruslanbay/codedrill/internal/infra/postgres/repository"
	"github.com/ruslanbay/codedrill/internal/logger"
	"github.com/ruslanbay/codedrill/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.DB.DSN()
	if err != nil {
		zl.Fatal("database config", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zl.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()

	if err := postgres.InitSchema(ctx, pool); err != nil {
		zl.Fatal("init schema", zap.Error(err))
	}

	// Wire repositories and services.
	store := repository.NewStore(pool)
	items := repository.NewSchedulingItemRepository(pool)
	history := repository.NewReviewHistoryRepository(pool)
	problems := repository.NewProblemRepository(pool)

	scheduler := service.NewScheduler(store, problems)
	dueQuery := service.NewDueQuery(items, history)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(httpapi.RequestLogger(zl))
	httpapi.NewHandler(zl, scheduler, dueQuery).Register(e)

	go func() {
		zl.Info("http server started", zap.String("addr", cfg.HTTP.Addr))
		if err := e.Start(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("http shutdown", zap.Error(err))
	}
}
