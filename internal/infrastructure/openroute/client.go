package openroute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/farm-geo-service/internal/config"
	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/geo"
	"go.uber.org/zap"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *zap.Logger
}

// NewClient создает новый клиент для OpenRouteService Directions API
func NewClient(cfg *config.RoutingConfig, logger *zap.Logger) repository.RoutingRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

type directionsRequest struct {
	Coordinates [][2]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Geometry string `json:"geometry"`
		Summary  struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// Route строит маршрут. Координаты отправляются в порядке [lng, lat], сначала origin, затем destination.
func (c *client) Route(
	ctx context.Context,
	origin domain.Coordinate,
	destination domain.Coordinate,
	profile string,
) (*domain.Route, error) {
	body, err := json.Marshal(directionsRequest{
		Coordinates: [][2]float64{
			{origin.Lng, origin.Lat},
			{destination.Lng, destination.Lat},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/directions/%s", c.baseURL, profile)

	c.logger.Debug("Calling OpenRouteService Directions API",
		zap.String("url", url),
		zap.String("profile", profile))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to execute request: %v", errors.ErrRouteUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Error("OpenRouteService API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(respBody)))
		return nil, fmt.Errorf("%w: status %d, body: %s", errors.ErrRouteUnavailable, resp.StatusCode, string(respBody))
	}

	var dirResp directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dirResp); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to decode response: %v", errors.ErrRouteUnavailable, err)
	}

	if len(dirResp.Routes) == 0 {
		c.logger.Warn("OpenRouteService returned no routes", zap.String("profile", profile))
		return nil, fmt.Errorf("%w: response has no routes", errors.ErrRouteUnavailable)
	}

	route := dirResp.Routes[0]
	coords, err := geo.DecodePolyline(route.Geometry)
	if err != nil {
		c.logger.Error("Failed to decode route geometry", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", errors.ErrRouteUnavailable, err)
	}

	c.logger.Debug("OpenRouteService call successful",
		zap.Int("points", len(coords)),
		zap.Float64("distance", route.Summary.Distance),
		zap.Float64("duration", route.Summary.Duration))

	return &domain.Route{
		Coordinates: coords,
		Distance:    route.Summary.Distance,
		Duration:    route.Summary.Duration,
	}, nil
}
