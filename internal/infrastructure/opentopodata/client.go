package opentopodata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/farm-geo-service/internal/config"
	"github.com/farm-geo-service/internal/domain/repository"
	"go.uber.org/zap"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	dataset    string
	logger     *zap.Logger
}

// NewClient создает новый клиент для Open Topo Data
func NewClient(cfg *config.ElevationConfig, logger *zap.Logger) repository.ElevationRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL: cfg.BaseURL,
		dataset: cfg.Dataset,
		logger:  logger,
	}
}

type elevationResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// Elevation возвращает высоту точки в метрах для датасета (например aster30m)
func (c *client) Elevation(ctx context.Context, lat, lng float64) (float64, bool, error) {
	params := url.Values{}
	params.Set("locations", fmt.Sprintf("%f,%f", lat, lng))
	reqURL := fmt.Sprintf("%s/v1/%s?%s", c.baseURL, c.dataset, params.Encode())

	c.logger.Debug("Calling Open Topo Data API", zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return 0, false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return 0, false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Open Topo Data API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return 0, false, fmt.Errorf("elevation API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var elevResp elevationResponse
	if err := json.NewDecoder(resp.Body).Decode(&elevResp); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return 0, false, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(elevResp.Results) == 0 || elevResp.Results[0].Elevation == nil {
		return 0, false, nil
	}

	return *elevResp.Results[0].Elevation, true, nil
}
