package opentopodata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/config"
)

func newTestConfig(baseURL string) *config.ElevationConfig {
	return &config.ElevationConfig{
		BaseURL:        baseURL,
		Dataset:        "aster30m",
		RequestTimeout: 5 * time.Second,
	}
}

func TestClient_Elevation(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/aster30m", r.URL.Path)
			assert.Equal(t, "-6.900000,106.900000", r.URL.Query().Get("locations"))

			w.Write([]byte(`{"status":"OK","results":[{"elevation":712.0,"location":{"lat":-6.9,"lng":106.9}}]}`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		elevation, found, err := client.Elevation(context.Background(), -6.9, 106.9)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 712.0, elevation)
	})

	t.Run("null elevation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"OK","results":[{"elevation":null}]}`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		_, found, err := client.Elevation(context.Background(), 0, -30)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("empty results", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"OK","results":[]}`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		_, found, err := client.Elevation(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("api error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Invalid locations","status":"INVALID_REQUEST"}`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		_, _, err := client.Elevation(context.Background(), 95, 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 400")
	})
}
