package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appcurves "github.com/Jeff-Lewis/Strata/internal/application/service/curves"
	appmarketdata "github.com/Jeff-Lewis/Strata/internal/application/service/marketdata"
	apptrades "github.com/Jeff-Lewis/Strata/internal/application/service/trades"
	"github.com/Jeff-Lewis/Strata/internal/config"
	"github.com/Jeff-Lewis/Strata/internal/infrastructure/broker"
	inframarketdata "github.com/Jeff-Lewis/Strata/internal/infrastructure/marketdata"
	infratrades "github.com/Jeff-Lewis/Strata/internal/infrastructure/trades"
	infrahttp "github.com/Jeff-Lewis/Strata/internal/interfaces/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	marketdataRepo, err := inframarketdata.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to init marketdata repo: %v", err)
	}
	tradesRepo, err := infratrades.NewRepository(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatalf("failed to init trades repo: %v", err)
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	quoteService := appmarketdata.NewService(marketdataRepo, logger)
	defer quoteService.Close()
	curveService := appcurves.NewService(marketdataRepo, logger)
	tradeService := apptrades.NewService(tradesRepo, logger)
	defer tradeService.Close()

	handler := infrahttp.NewHandler(tradeService, curveService, quoteService, redisClient, cfg.Cache.TTL())
	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var consumer *broker.Consumer
	if cfg.RabbitMQ.Enabled() {
		consumer, err = broker.NewConsumer(cfg.RabbitMQ, tradeService, quoteService, logger)
		if err != nil {
			logger.Fatalf("failed to init consumer: %v", err)
		}
		if err := consumer.Start(ctx); err != nil {
			logger.Fatalf("failed to start consumer: %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		err := server.Shutdown(shutdownCtx)
		if consumer != nil {
			err = errors.Join(err, consumer.Close(shutdownCtx))
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Errorf("server stopped with error: %v", err)
		return
	}
	logger.Info("server stopped")
}
