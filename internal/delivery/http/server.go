package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/config"
	"github.com/farm-geo-service/internal/delivery/http/handler"
	"github.com/farm-geo-service/internal/delivery/http/middleware"
	"github.com/farm-geo-service/internal/pkg/utils"
	"github.com/farm-geo-service/internal/telemetry"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger
	feed   *telemetry.Feed

	// Handlers
	areaHandler      *handler.AreaHandler
	warehouseHandler *handler.WarehouseHandler
	routeHandler     *handler.RouteHandler
	searchHandler    *handler.SearchHandler
	sensorHandler    *handler.SensorHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	feed *telemetry.Feed,
	areaHandler *handler.AreaHandler,
	warehouseHandler *handler.WarehouseHandler,
	routeHandler *handler.RouteHandler,
	searchHandler *handler.SearchHandler,
	sensorHandler *handler.SensorHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Farm Geo Service",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:              app,
		config:           cfg,
		logger:           logger,
		feed:             feed,
		areaHandler:      areaHandler,
		warehouseHandler: warehouseHandler,
		routeHandler:     routeHandler,
		searchHandler:    searchHandler,
		sensorHandler:    sensorHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App отдаёт fiber.App для тестов через app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS())
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов. Статические пути регистрируются раньше /:id.
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.health)

	// Areas
	areas := api.Group("/areas")
	areas.Get("/", s.areaHandler.List)
	areas.Post("/", s.areaHandler.Draw)
	areas.Get("/selected", s.areaHandler.Selected)
	areas.Get("/export.geojson", s.areaHandler.ExportGeoJSON)
	areas.Get("/export.kml", s.areaHandler.ExportKML)
	areas.Get("/:id", s.areaHandler.Get)
	areas.Patch("/:id", s.areaHandler.UpdateField)
	areas.Delete("/:id", s.areaHandler.Delete)
	areas.Put("/:id/points/:index", s.areaHandler.UpdatePoint)
	areas.Post("/:id/edges/:index", s.areaHandler.InsertVertex)
	areas.Post("/:id/validate", s.areaHandler.Validate)
	areas.Post("/:id/enrich", s.areaHandler.Enrich)
	areas.Post("/:id/select", s.areaHandler.Select)

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouses.Get("/", s.warehouseHandler.List)
	warehouses.Post("/", s.warehouseHandler.Add)
	warehouses.Get("/selected", s.warehouseHandler.Selected)
	warehouses.Get("/export.geojson", s.warehouseHandler.ExportGeoJSON)
	warehouses.Get("/:id", s.warehouseHandler.Get)
	warehouses.Patch("/:id", s.warehouseHandler.Update)
	warehouses.Delete("/:id", s.warehouseHandler.Delete)
	warehouses.Post("/:id/validate", s.warehouseHandler.Validate)
	warehouses.Post("/:id/enrich", s.warehouseHandler.Enrich)
	warehouses.Post("/:id/select", s.warehouseHandler.Select)
	warehouses.Get("/:id/routes", s.warehouseHandler.KnownDistances)

	// Routes
	routes := api.Group("/routes")
	routes.Post("/", s.routeHandler.Compute)
	routes.Get("/", s.routeHandler.List)
	routes.Get("/lookup", s.routeHandler.Lookup)
	routes.Delete("/", s.routeHandler.Clear)

	// Search
	api.Get("/search", s.searchHandler.Search)
	api.Get("/geo/reverse", s.searchHandler.ReverseGeocode)

	sessions := api.Group("/search/sessions")
	sessions.Post("/", s.searchHandler.CreateSession)
	sessions.Get("/:id", s.searchHandler.GetSession)
	sessions.Put("/:id/query", s.searchHandler.TypeQuery)
	sessions.Post("/:id/select", s.searchHandler.SelectSuggestion)
	sessions.Delete("/:id", s.searchHandler.CloseSession)

	// Sensors
	api.Get("/sensors/latest", s.sensorHandler.Latest)
	api.Get("/sensors/status", s.sensorHandler.Status)
}

// health godoc
// @Summary Состояние сервиса
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/health [get]
func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"time":      time.Now(),
		"storage":   s.config.Storage.Backend,
		"telemetry": s.feed.Status(),
	})
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки, не обработанные хендлерами (404 роутера, 405 и т.п.)
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return utils.SendError(c, err)
	}
}
