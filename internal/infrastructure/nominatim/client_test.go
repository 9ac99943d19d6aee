package nominatim

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/config"
)

func newTestConfig(baseURL string) *config.GeocodingConfig {
	return &config.GeocodingConfig{
		BaseURL:        baseURL,
		UserAgent:      "SmartFarm/1.0",
		SearchLimit:    5,
		RequestTimeout: 5 * time.Second,
	}
}

func TestClient_ReverseGeocode(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reverse", r.URL.Path)
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			assert.Equal(t, "-6.9", r.URL.Query().Get("lat"))
			assert.Equal(t, "106.9", r.URL.Query().Get("lon"))
			assert.Equal(t, "18", r.URL.Query().Get("zoom"))
			assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
			assert.Equal(t, "SmartFarm/1.0", r.Header.Get("User-Agent"))

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"display_name": "Jalan Raya, Sukabumi, Jawa Barat, 43152, Indonesia",
			})
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		name, err := client.ReverseGeocode(context.Background(), -6.9, 106.9)
		require.NoError(t, err)
		assert.Equal(t, "Jalan Raya, Sukabumi, Jawa Barat, 43152, Indonesia", name)
	})

	t.Run("unable to geocode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"Unable to geocode"}`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		name, err := client.ReverseGeocode(context.Background(), 0, 0)
		require.NoError(t, err)
		assert.Empty(t, name)
	})

	t.Run("non-200 answer means no address", func(t *testing.T) {
		for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			client := NewClient(newTestConfig(server.URL), logger)

			name, err := client.ReverseGeocode(context.Background(), -6.9, 106.9)
			require.NoError(t, err, "status %d", status)
			assert.Empty(t, name)
			server.Close()
		}
	})

	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		_, err := client.ReverseGeocode(context.Background(), -6.9, 106.9)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute request")
	})
}

func TestClient_Search(t *testing.T) {
	logger, _ := zap.NewDevelopment()

	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "bandung", r.URL.Query().Get("q"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			assert.Equal(t, "SmartFarm/1.0", r.Header.Get("User-Agent"))

			w.Write([]byte(`[
				{"lat":"-6.9175","lon":"107.6191","display_name":"Bandung, Jawa Barat, Indonesia"},
				{"lat":"-7.0","lon":"107.5","display_name":"Kabupaten Bandung, Jawa Barat, Indonesia"}
			]`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		suggestions, err := client.Search(context.Background(), "bandung", 5)
		require.NoError(t, err)
		require.Len(t, suggestions, 2)
		assert.Equal(t, "Bandung, Jawa Barat, Indonesia", suggestions[0].DisplayName)
		assert.Equal(t, "-6.9175", suggestions[0].Lat)
		assert.Equal(t, "107.6191", suggestions[0].Lon)
	})

	t.Run("empty result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		suggestions, err := client.Search(context.Background(), "zzzzzz", 5)
		require.NoError(t, err)
		assert.NotNil(t, suggestions)
		assert.Empty(t, suggestions)
	})

	t.Run("api error response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		_, err := client.Search(context.Background(), "bandung", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 503")
	})

	t.Run("invalid json", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		client := NewClient(newTestConfig(server.URL), logger)

		_, err := client.Search(context.Background(), "bandung", 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode response")
	})
}
