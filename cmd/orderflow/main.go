package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/config"
	"github.com/nikolayk812/orderflow/internal/events"
	"github.com/nikolayk812/orderflow/internal/gateway"
	"github.com/nikolayk812/orderflow/internal/httpapi"
	"github.com/nikolayk812/orderflow/internal/logging"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/migrations"
	"github.com/nikolayk812/orderflow/internal/port"
	"github.com/nikolayk812/orderflow/internal/queue"
	"github.com/nikolayk812/orderflow/internal/reconciler"
	"github.com/nikolayk812/orderflow/internal/repository"
	"github.com/nikolayk812/orderflow/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 15 * time.Second
	memoryQueueSize = 1024
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config.Load: %v", err)
	}

	logger, err := logging.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logging.New: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("service stopped with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("service stopped")
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("pgxpool.New: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool.Ping: %w", err)
	}

	if err := migrations.Up(pool); err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}
	logger.Info("migrations applied")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	store := repository.NewStore(pool)

	taskQueue, closeQueue, err := newTaskQueue(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeQueue()

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	paymentGateway, err := newGateway(cfg, logger, m)
	if err != nil {
		return err
	}

	settlement := service.NewSettlementService(store, publisher, logger, m)

	rec := reconciler.New(
		store.Reconciliations(),
		store.Orders(),
		paymentGateway,
		settlement,
		taskQueue,
		publisher,
		reconciler.Config{
			Interval:    cfg.ReconcileInterval,
			MaxAttempts: cfg.ReconcileMaxAttempts,
			Workers:     cfg.ReconcileWorkers,
		},
		logger,
		m,
	)

	carts := service.NewCartService(store, cfg.CurrencyUnit(), logger, m)
	orders := service.NewOrderService(store, rec, publisher, logger, m)
	payments := service.NewPaymentService(store.Orders(), paymentGateway, rec, logger, m)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: httpapi.NewRouter(httpapi.Config{
			Carts:    carts,
			Orders:   orders,
			Payments: payments,
			Gatherer: registry,
			Ping:     pool.Ping,
		}, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return rec.Run(gctx)
	})

	g.Go(func() error {
		if _, err := rec.Resume(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("rec.Resume: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("srv.Shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func newTaskQueue(ctx context.Context, cfg config.Config, logger *zap.Logger) (port.TaskQueue, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("task queue: in-memory")
		return queue.NewMemory(memoryQueueSize), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("task queue: redis", zap.String("addr", cfg.RedisAddr))
	return queue.NewRedis(client, queue.DefaultRedisKey), func() { _ = client.Close() }, nil
}

func newPublisher(cfg config.Config, logger *zap.Logger) (port.EventPublisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		logger.Info("event publisher: log")
		return events.NewLog(logger), func() {}
	}

	logger.Info("event publisher: kafka",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic),
	)
	publisher := events.NewKafka(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), logger)

	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("kafka writer close failed", zap.Error(err))
		}
	}
}

func newGateway(cfg config.Config, logger *zap.Logger, m *metrics.Metrics) (port.PaymentGateway, error) {
	var next port.PaymentGateway

	if cfg.StripeSecretKey == "" {
		logger.Warn("payment gateway: simulated, payments settle automatically")
		next = gateway.NewSimulated(localURL(cfg.HTTPAddr), 2*cfg.ReconcileInterval)
	} else {
		stripeGateway, err := gateway.NewStripe(gateway.StripeConfig{
			SecretKey:  cfg.StripeSecretKey,
			SuccessURL: cfg.PaymentSuccessURL,
			CancelURL:  cfg.PaymentCancelURL,
		})
		if err != nil {
			return nil, fmt.Errorf("gateway.NewStripe: %w", err)
		}
		logger.Info("payment gateway: stripe")
		next = stripeGateway
	}

	return gateway.NewBreaker(next, gateway.BreakerConfig{
		Failures: cfg.BreakerFailures,
		Timeout:  cfg.BreakerTimeout,
	}, logger, m), nil
}

func localURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
