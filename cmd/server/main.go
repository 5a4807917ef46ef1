package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minshop/commerce/internal/auth"
	catalogapp "github.com/minshop/commerce/internal/catalog/app"
	cataloghttp "github.com/minshop/commerce/internal/catalog/http"
	catalogpg "github.com/minshop/commerce/internal/catalog/infra/postgres"
	"github.com/minshop/commerce/internal/catalog/infra/rediscache"
	orderapp "github.com/minshop/commerce/internal/order/app"
	orderhttp "github.com/minshop/commerce/internal/order/http"
	"github.com/minshop/commerce/internal/order/infra/adapter"
	orderpg "github.com/minshop/commerce/internal/order/infra/postgres"
	"github.com/minshop/commerce/internal/order/infra/rabbitmq"
	userapp "github.com/minshop/commerce/internal/user/app"
	userhttp "github.com/minshop/commerce/internal/user/http"
	userpg "github.com/minshop/commerce/internal/user/infra/postgres"
	"github.com/minshop/commerce/pkg/config"
	"github.com/minshop/commerce/pkg/logger"
	"github.com/minshop/commerce/pkg/postgres"
	"github.com/minshop/commerce/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "commerce", Env: cfg.AppEnv, Level: cfg.LogLevel, AddSource: true})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	db := mustDB(cfg, log)
	defer db.Close()

	// Users
	userRepo := userpg.NewUserRepo(db)
	userSvc := userapp.NewService(userRepo)

	// Catalog. The HTTP read path optionally goes through the Redis cache;
	// the order workflow always reads the uncached repo so the stock floor
	// check stays on fresh rows.
	productRepo := catalogpg.NewProductRepo(db)

	var catalogRepo catalogapp.ProductRepo = productRepo
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		catalogRepo = rediscache.NewProductCache(productRepo, rdb, rediscache.DefaultTTL, log)
		log.Info("product cache enabled", slog.String("addr", cfg.Redis.Addr))
	}
	catalogSvc := catalogapp.NewService(catalogRepo)
	orderCatalogSvc := catalogapp.NewService(productRepo)

	// Order events
	var events orderapp.EventPublisher = rabbitmq.NopPublisher{}
	if cfg.RabbitMQ.URL != "" {
		conn, ch, err := rabbitmq.SetupConn(cfg.RabbitMQ.URL)
		if err != nil {
			log.Error("rabbitmq setup failed", slog.Any("err", err))
			os.Exit(1)
		}
		defer conn.Close()
		defer ch.Close()
		events = rabbitmq.NewPublisher(ch)
		log.Info("order events enabled")
	}

	// Order workflow
	orderRepo := orderpg.NewOrderRepo(db)
	orderSvc := orderapp.NewService(
		orderRepo,
		adapter.NewCatalogServiceReader(orderCatalogSvc),
		adapter.NewUserServiceStore(userSvc),
		events,
		log,
	)

	api := http.NewServeMux()
	cataloghttp.NewHandler(catalogSvc).Register(api)
	orderhttp.NewHandler(orderSvc).Register(api)
	userhttp.NewHandler(userSvc).Register(api)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/", auth.Middleware(api))

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("http server starting", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", slog.Any("err", err))
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown error", slog.Any("err", err))
	}

	wg.Wait()
	log.Info("bye")
}

func mustDB(cfg config.Config, log *slog.Logger) *sql.DB {
	db, err := postgres.Open(postgres.Config{
		Host: cfg.Postgres.Host,
		Port: cfg.Postgres.Port,
		User: cfg.Postgres.User,
		Pass: cfg.Postgres.Pass,
		DB:   cfg.Postgres.DB,
	})
	if err != nil {
		log.Error("db open failed", slog.Any("err", err))
		os.Exit(1)
	}
	return db
}
