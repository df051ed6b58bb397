package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	cartredis "github.com/dmehra2102/storefront/internal/cart/infrastructure/redis"
	cataloghttp "github.com/dmehra2102/storefront/internal/catalog/infrastructure/http"
	"github.com/dmehra2102/storefront/internal/checkout/infrastructure/orderclient"
	"github.com/dmehra2102/storefront/internal/storefront/application"
	storefronthttp "github.com/dmehra2102/storefront/internal/storefront/infrastructure/http"
	"github.com/dmehra2102/storefront/pkg/logging"
	"github.com/dmehra2102/storefront/pkg/metrics"
	"github.com/dmehra2102/storefront/pkg/shutdown"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

func main() {
	log := logging.New()

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	httpAddr := env("HTTP_ADDR", ":8081")
	apiURL := env("API_URL", "http://localhost:8080")
	redisAddr := env("REDIS_ADDR", "localhost:6379")
	otlp := env("OTLP_ENDPOINT", "localhost:4318")
	cartTTL, err := time.ParseDuration(env("CART_TTL", "168h"))
	if err != nil {
		log.Error("invalid CART_TTL", "err", err)
		os.Exit(1)
	}
	// No authentication: every shopper orders as this user.
	userID, err := strconv.ParseInt(env("USER_ID", "1"), 10, 64)
	if err != nil {
		log.Error("invalid USER_ID", "err", err)
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "storefront", otlp, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer rdb.Close()

	products := cataloghttp.NewClient(log, apiURL, 5*time.Second)
	orders := orderclient.New(log, apiURL, 10*time.Second)
	sessions := application.NewRegistry(log, cartredis.NewStore(rdb, cartTTL), orders, userID,
		application.WithIdleTimeout(cartTTL))
	go sessions.Run(ctx, time.Minute)
	handler := storefronthttp.NewHandler(log, products, sessions)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, metrics.Middleware("storefront"))
	r.Handle("/metrics", promhttp.Handler())
	r.Mount("/", handler.Routes())
	srv := &http.Server{
		Addr:         httpAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	shutdown.Serve(ctx, log, srv, 10*time.Second, cancel)
	log.Info("storefront shutdown complete")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
