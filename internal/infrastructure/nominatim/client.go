package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/config"
	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
)

type client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *zap.Logger
}

// NewClient создает новый клиент для Nominatim (прямое и обратное геокодирование)
func NewClient(cfg *config.GeocodingConfig, logger *zap.Logger) repository.GeocodingRepository {
	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error,omitempty"`
}

// statusError - Nominatim ответил, но не 200
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("nominatim API error: status %d, body: %s", e.code, e.body)
}

// ReverseGeocode возвращает display_name для точки; "" если Nominatim ничего не нашёл
// или ответил не 200. Ошибка только когда ответа нет вовсе.
func (c *client) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lng, 'f', -1, 64))
	params.Set("zoom", "18")
	params.Set("addressdetails", "1")

	var resp reverseResponse
	if err := c.get(ctx, "/reverse", params, &resp); err != nil {
		var se *statusError
		if errors.As(err, &se) {
			c.logger.Warn("Nominatim reverse answered without result",
				zap.Float64("lat", lat),
				zap.Float64("lng", lng),
				zap.Int("status_code", se.code))
			return "", nil
		}
		return "", err
	}

	if resp.Error != "" {
		c.logger.Debug("Nominatim reverse returned no result",
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.String("error", resp.Error))
	}

	return resp.DisplayName, nil
}

// Search выполняет прямое геокодирование
func (c *client) Search(ctx context.Context, query string, limit int) ([]domain.SearchSuggestion, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("addressdetails", "1")

	var suggestions []domain.SearchSuggestion
	if err := c.get(ctx, "/search", params, &suggestions); err != nil {
		return nil, err
	}

	if suggestions == nil {
		suggestions = []domain.SearchSuggestion{}
	}
	return suggestions, nil
}

func (c *client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	c.logger.Debug("Calling Nominatim API", zap.String("url", reqURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}
	// Nominatim usage policy requires an identifying User-Agent
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request", zap.Error(err))
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("Nominatim API returned error",
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", string(body)))
		return &statusError{code: resp.StatusCode, body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
