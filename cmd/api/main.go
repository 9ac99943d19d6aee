package main

// @title Farm Geo Service API
// @version 1.0.0
// @description Сервис редактора карты фермы: участки-полигоны, склады, маршруты между ними,
// @description обогащение адресом и высотой, поиск мест и телеметрия полевых датчиков.
// @description
// @description Основные возможности:
// @description - Рисование и редактирование участков, расчёт площади
// @description - Склады и история маршрутов склад-участок по типу транспорта
// @description - Поиск мест с debounce-сессиями и обратное геокодирование
// @description - Экспорт участков в GeoJSON и KML
// @description - Последнее показание датчиков из Redis Stream

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/farm-geo-service/docs"
	"github.com/farm-geo-service/internal/config"
	httpDelivery "github.com/farm-geo-service/internal/delivery/http"
	"github.com/farm-geo-service/internal/delivery/http/handler"
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/farm-geo-service/internal/infrastructure/nominatim"
	"github.com/farm-geo-service/internal/infrastructure/openroute"
	"github.com/farm-geo-service/internal/infrastructure/opentopodata"
	"github.com/farm-geo-service/internal/pkg/logger"
	"github.com/farm-geo-service/internal/repository/cache"
	"github.com/farm-geo-service/internal/repository/memory"
	"github.com/farm-geo-service/internal/repository/postgres"
	redisRepo "github.com/farm-geo-service/internal/repository/redis"
	"github.com/farm-geo-service/internal/telemetry"
	"github.com/farm-geo-service/internal/usecase"
	"github.com/farm-geo-service/internal/worker"
	enrichmentWorker "github.com/farm-geo-service/internal/worker/enrichment"
	snapshotWorker "github.com/farm-geo-service/internal/worker/snapshot"
	telemetryWorker "github.com/farm-geo-service/internal/worker/telemetry"
)

const searchSessionIdleTTL = 30 * time.Minute

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Farm Geo Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.Bool("telemetry_enabled", cfg.Telemetry.Enabled),
	)

	// 3. Connect to Redis. Обязателен для backend=redis и телеметрии, иначе только кеш поиска.
	redisRequired := cfg.Storage.Backend == "redis" || cfg.Telemetry.Enabled
	var redisClient *cache.Redis
	if redisRequired || cfg.Redis.Host != "" {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			if redisRequired {
				log.Fatal("Failed to connect to Redis", zap.Error(err))
			}
			log.Warn("Redis unavailable, search cache disabled", zap.Error(err))
			redisClient = nil
		}
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
	}

	// 4. Snapshot storage
	var snapshots repository.SnapshotRepository
	switch cfg.Storage.Backend {
	case "memory":
		snapshots = memory.NewSnapshotRepository()
	case "redis":
		snapshots = cache.NewSnapshotRepository(redisClient)
	case "postgres":
		db, err := postgres.New(&cfg.Database, log)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Failed to close PostgreSQL connection", zap.Error(err))
			}
		}()
		snapshots = postgres.NewSnapshotRepository(db)
	default:
		log.Fatal("Unknown storage backend", zap.String("backend", cfg.Storage.Backend))
	}

	var cacheRepo repository.CacheRepository
	if redisClient != nil {
		cacheRepo = cache.NewCacheRepository(redisClient)
	}

	// 5. External services
	geocodingRepo := nominatim.NewClient(&cfg.Geocoding, log)
	elevationRepo := opentopodata.NewClient(&cfg.Elevation, log)
	routingRepo := openroute.NewClient(&cfg.Routing, log)

	// 6. Use cases
	queue := usecase.NewEnrichmentQueue(cfg.Enrichment.QueueSize, log)
	enrichmentUC := usecase.NewEnrichmentUseCase(geocodingRepo, elevationRepo, log)
	areaUC := usecase.NewAreaUseCase(snapshots, enrichmentUC, queue, cfg.Storage.AreasKey, log)
	warehouseUC := usecase.NewWarehouseUseCase(snapshots, enrichmentUC, queue, cfg.Storage.WarehousesKey, log)
	historyUC := usecase.NewRouteHistoryUseCase(snapshots, cfg.Storage.RouteHistoryKey, log)
	routingUC := usecase.NewRoutingUseCase(routingRepo, warehouseUC, areaUC, historyUC, log)
	searchUC := usecase.NewSearchUseCase(
		geocodingRepo,
		cacheRepo,
		log,
		cfg.Cache.SearchCacheTTL,
		cfg.Geocoding.SearchLimit,
		cfg.Search.MinQueryLength,
	)
	sessions := usecase.NewSearchSessionManager(
		searchUC,
		cfg.Search.Debounce,
		cfg.Search.MinQueryLength,
		searchSessionIdleTTL,
		log,
	)
	exportUC := usecase.NewExportUseCase(areaUC, warehouseUC, log)
	feed := telemetry.NewFeed(log)

	stores := []usecase.Flusher{areaUC, warehouseUC, historyUC}

	hydrateCtx, cancelHydrate := context.WithTimeout(context.Background(), 10*time.Second)
	for _, store := range []interface {
		Name() string
		Hydrate(context.Context) error
	}{areaUC, warehouseUC, historyUC} {
		// Без прочитанного снапшота стор не пишет в хранилище, стартовать с пустыми коллекциями нельзя
		if err := store.Hydrate(hydrateCtx); err != nil {
			log.Fatal("Failed to hydrate store", zap.String("store", store.Name()), zap.Error(err))
		}
	}
	cancelHydrate()

	log.Info("Use cases initialized")

	// 7. Workers
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(snapshotWorker.NewSnapshotWorker(cfg.Storage.FlushInterval, log, stores...))
	workerManager.Register(enrichmentWorker.NewEnrichmentWorker(queue, areaUC, warehouseUC, log))
	if cfg.Telemetry.Enabled {
		streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)
		workerManager.Register(telemetryWorker.NewTelemetryWorker(
			streamRepo,
			feed,
			cfg.Telemetry.Stream,
			cfg.Telemetry.ConsumerGroup,
			log,
		))
	}

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	if err := workerManager.Start(workerCtx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 8. HTTP handlers and server
	server := httpDelivery.NewServer(
		cfg,
		log,
		feed,
		handler.NewAreaHandler(areaUC, historyUC, exportUC, log),
		handler.NewWarehouseHandler(warehouseUC, historyUC, exportUC, log),
		handler.NewRouteHandler(routingUC, historyUC, log),
		handler.NewSearchHandler(searchUC, enrichmentUC, sessions, log),
		handler.NewSensorHandler(feed),
	)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	sessions.CloseAll()
	queue.Stop()

	// Snapshot worker делает финальную запись коллекций при остановке
	if err := workerManager.Stop(ctx); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}
	cancelWorkers()

	log.Info("Service stopped successfully")
}
