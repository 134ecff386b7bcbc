package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/franciscosanchezn/gin-food-ordering-api/internal/auth"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/cache"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/database"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/events"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/realtime"
	"github.com/franciscosanchezn/gin-food-ordering-api/internal/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the outbox relay and the expired token purge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	if cfg.SeedOnStart {
		if err := seedDefault(ctx, db); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	logger := log.StandardLogger()

	var (
		store cache.Cache = cache.NewMemory()
		hub               = realtime.NewMemoryHub(logger)
	)
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer client.Close()
		store = cache.NewRedis(client)
		hub = realtime.New(client, logger)
		log.Info("Using Redis for cache and realtime fan-out")
	}

	publisher, err := events.NewPublisher(cfg.EventsDriver, cfg.AMQPURL, cfg.AMQPExchange, cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		return fmt.Errorf("events publisher: %w", err)
	}
	defer publisher.Close()
	relay := events.NewRelay(db, publisher, cfg.OutboxBatch, cfg.OutboxInterval, cfg.OutboxMaxTries, logger)

	router := server.NewRouter(server.Dependencies{Config: cfg, DB: db, Cache: store, Hub: hub, Log: logger})
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return relay.Run(gctx)
	})
	if cfg.TokenPurgeEvery > 0 {
		g.Go(func() error {
			return auth.NewGormTokenStore(db).PurgeExpiredEvery(gctx, cfg.TokenPurgeEvery, logger)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
