package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/config"
	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/logger"
	"github.com/farm-geo-service/internal/repository/cache"
	redisRepo "github.com/farm-geo-service/internal/repository/redis"
	"github.com/farm-geo-service/internal/telemetry"
	"github.com/farm-geo-service/internal/worker"
	telemetryWorker "github.com/farm-geo-service/internal/worker/telemetry"
)

// Отдельный консьюмер телеметрии: читает стрим датчиков в своей consumer group
// и пишет каждое показание в лог. Удобно для отладки датчиков без API.
func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Telemetry.Enabled {
		fmt.Println("Telemetry is disabled in configuration. Set TELEMETRY_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting telemetry monitor",
		zap.String("stream", cfg.Telemetry.Stream),
		zap.String("consumer_group", cfg.Telemetry.ConsumerGroup))

	// 3. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 4. Feed and worker
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
	feed := telemetry.NewFeed(log)
	tw := telemetryWorker.NewTelemetryWorker(
		streamRepo,
		feed,
		cfg.Telemetry.Stream,
		cfg.Telemetry.ConsumerGroup+"-monitor",
		log,
	)

	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(tw)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// Feed подключается внутри воркера, подписка возможна только после этого
	subCh := make(chan *telemetry.Subscription, 1)
	go subscribeWhenConnected(ctx, feed, subCh, func(r domain.SensorReading) {
		log.Info("Sensor reading",
			zap.String("id", r.ID),
			zap.Int64("ts", r.Timestamp),
			zap.Float64("lat", r.Lat),
			zap.Float64("lon", r.Lon),
			zap.Float64("temp", r.Payload.Temp),
			zap.Float64("moist", r.Payload.Moist),
			zap.Float64("ph", r.Payload.PH))
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()
	if sub := <-subCh; sub != nil {
		sub.Unsubscribe()
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()

	if err := workerManager.Stop(stopCtx); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Telemetry monitor stopped")
}

func subscribeWhenConnected(ctx context.Context, feed *telemetry.Feed, out chan<- *telemetry.Subscription, h telemetry.Handler) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if sub, err := feed.Subscribe(h); err == nil {
			out <- sub
			return
		}
		select {
		case <-ctx.Done():
			out <- nil
			return
		case <-ticker.C:
		}
	}
}
