package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/sweet_shop/internal/config"
	"github.com/Skotchmaster/sweet_shop/internal/es"
	"github.com/Skotchmaster/sweet_shop/internal/httpserver"
	"github.com/Skotchmaster/sweet_shop/internal/metrics"
	"github.com/Skotchmaster/sweet_shop/internal/mykafka"
	"github.com/Skotchmaster/sweet_shop/internal/repo"
	"github.com/Skotchmaster/sweet_shop/internal/seed"
	"github.com/Skotchmaster/sweet_shop/internal/service"
	pkgdb "github.com/Skotchmaster/sweet_shop/pkg/db"
	"github.com/Skotchmaster/sweet_shop/pkg/logging"
	loggingmw "github.com/Skotchmaster/sweet_shop/pkg/middleware/logging"
)

type eventSink interface {
	service.EventPublisher
	Close() error
}

func main() {
	config.LoadEnv(".env")

	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(cfg.LogLevel).With("service", "sweet_shop")
	slog.SetDefault(logger)
	ctx := logging.IntoContext(context.Background(), logger)

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := pkgdb.Open(openCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	var events eventSink = mykafka.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		prod, err := mykafka.NewProducer(cfg.KafkaBrokers, []string{mykafka.TopicSweetEvents, mykafka.TopicUserEvents})
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		events = prod
	}

	r := &repo.GormRepo{DB: db}
	sweets := service.NewSweetService(r, events, nil)
	if cfg.ESURL != "" {
		if index, err := openIndex(ctx, cfg, logger); err != nil {
			logger.Warn("search_index_disabled", "error", err)
		} else {
			sweets.Index = index
		}
	}
	inventory := &service.InventoryService{Repo: r, Sweets: sweets, Events: events, Index: sweets.Index}
	auth := &service.AuthService{
		Repo:       r,
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		AdminEmail: cfg.AdminEmail,
		Events:     events,
	}

	if cfg.SeedFile != "" {
		catalog, err := seed.LoadFile(cfg.SeedFile)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		if _, err := seed.Apply(ctx, sweets, catalog); err != nil {
			log.Fatalf("seed: %v", err)
		}
	}
	if n, err := sweets.Reindex(ctx); err != nil {
		logger.Warn("search_reindex_failed", "error", err)
	} else if n > 0 {
		logger.Info("search_reindexed", "sweets", n)
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler:  &httpserver.AuthHTTP{Svc: auth},
		SweetHandler: &httpserver.SweetHTTP{Sweets: sweets, Inventory: inventory},
		JWTSecret:    cfg.JWTSecret,
		DB:           db,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting_down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}
	if err := events.Close(); err != nil {
		logger.Error("kafka_close_error", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_error", "error", err)
	}
	logger.Info("shutdown_complete")
}

func openIndex(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) (*es.SweetIndex, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := es.NewClient(ctx, es.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword}, logger)
	if err != nil {
		return nil, err
	}
	index := es.NewSweetIndex(client, es.DefaultIndex)
	if err := index.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return index, nil
}
