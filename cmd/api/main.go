package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Pelyn9/wellnessmate/internal/api"
	"github.com/Pelyn9/wellnessmate/internal/auth"
	"github.com/Pelyn9/wellnessmate/internal/config"
	"github.com/Pelyn9/wellnessmate/internal/domain"
	"github.com/Pelyn9/wellnessmate/internal/music"
	"github.com/Pelyn9/wellnessmate/internal/observability"
	"github.com/Pelyn9/wellnessmate/internal/outbox"
	persistence "github.com/Pelyn9/wellnessmate/internal/persistence/postgres"
	"github.com/Pelyn9/wellnessmate/internal/realtime"
	httptransport "github.com/Pelyn9/wellnessmate/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal("connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(pool, producer, logger, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	hub := realtime.NewHub(cfg.CORSAllowedOrigin, logger)
	service := domain.NewService(
		persistence.NewWorkoutStore(pool, cfg.RecordEventsTopic),
		persistence.NewMealStore(pool, cfg.RecordEventsTopic),
		persistence.NewProfileStore(pool, cfg.RecordEventsTopic),
		domain.WithNotifier(hub),
		domain.WithLogger(logger),
	)
	previews := music.NewClient(cfg.SpotifyOEmbedURL, cfg.HTTPTimeout, logger)

	mux := http.NewServeMux()
	api.NewHandler(service, persistence.NewSummaryStore(pool), previews, hub, logger).RegisterRoutes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	handler := api.RequestLogger(logger, api.CORS(cfg.CORSAllowedOrigin, authMiddleware.Wrap(mux)))
	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress), handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		dispatcher.Start(gctx)
		dispatcher.Wait()
		return nil
	})
	g.Go(func() error {
		return httptransport.Run(gctx, server, "api", logger)
	})

	logger.Info("wellness api started", zap.String("address", cfg.HTTPAddress))
	if err := g.Wait(); err != nil {
		logger.Error("wellness api stopped with error", zap.Error(err))
		return
	}
	logger.Info("wellness api stopped")
}
