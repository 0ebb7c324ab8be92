package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Pelyn9/wellnessmate/internal/config"
	"github.com/Pelyn9/wellnessmate/internal/consumer"
	"github.com/Pelyn9/wellnessmate/internal/domain"
	"github.com/Pelyn9/wellnessmate/internal/observability"
	persistence "github.com/Pelyn9/wellnessmate/internal/persistence/postgres"
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

	// Snapshots are read through the domain service; the consumer never writes records.
	loader := domain.NewService(
		persistence.NewWorkoutStore(pool, cfg.RecordEventsTopic),
		persistence.NewMealStore(pool, cfg.RecordEventsTopic),
		persistence.NewProfileStore(pool, cfg.RecordEventsTopic),
		domain.WithLogger(logger),
	)
	summaries := persistence.NewSummaryStore(pool)
	handler := consumer.NewSummaryHandler(loader, summaries, time.Now)

	refresher, err := consumer.NewRefresher(summaries, handler, cfg.SummarySchedule, logger.Named("refresher"))
	if err != nil {
		logger.Fatal("schedule summary refresh", zap.String("schedule", cfg.SummarySchedule), zap.Error(err))
	}
	refresher.Start()
	defer refresher.Stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           cfg.RecordEventsTopic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		RetentionTime:   24 * time.Hour,
		ReadLagInterval: -1,
	})
	defer reader.Close()

	proc := consumer.NewProcessor(reader, handler, consumer.WithLogger(logger.Named("processor")))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("consumer started",
			zap.String("topic", cfg.RecordEventsTopic),
			zap.String("group", cfg.ConsumerGroupID),
		)
		if err := proc.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return httptransport.Run(gctx, httptransport.NewMetricsServer(cfg.MetricsAddress), "metrics", logger)
	})

	if err := g.Wait(); err != nil {
		logger.Error("consumer stopped with error", zap.Error(err))
		return
	}
	logger.Info("consumer stopped")
}
