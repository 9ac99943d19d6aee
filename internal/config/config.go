package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Cache      CacheConfig
	Geocoding  GeocodingConfig
	Elevation  ElevationConfig
	Routing    RoutingConfig
	Search     SearchConfig
	Enrichment EnrichmentConfig
	Telemetry  TelemetryConfig
	Log        LogConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// StorageConfig описывает backing store для снапшотов
type StorageConfig struct {
	Backend         string // memory | redis | postgres
	AreasKey        string
	WarehousesKey   string
	RouteHistoryKey string
	FlushInterval   time.Duration
}

type CacheConfig struct {
	SearchCacheTTL time.Duration
}

type GeocodingConfig struct {
	BaseURL        string
	UserAgent      string
	SearchLimit    int
	RequestTimeout time.Duration
}

type ElevationConfig struct {
	BaseURL        string
	Dataset        string
	RequestTimeout time.Duration
}

type RoutingConfig struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration
}

type SearchConfig struct {
	Debounce       time.Duration
	MinQueryLength int
}

type EnrichmentConfig struct {
	QueueSize int
}

type TelemetryConfig struct {
	Enabled       bool
	Stream        string
	ConsumerGroup string
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// .env is optional: container deployments pass everything through the environment
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Storage: StorageConfig{
			Backend:         viper.GetString("STORAGE_BACKEND"),
			AreasKey:        viper.GetString("STORAGE_AREAS_KEY"),
			WarehousesKey:   viper.GetString("STORAGE_WAREHOUSES_KEY"),
			RouteHistoryKey: viper.GetString("STORAGE_ROUTE_HISTORY_KEY"),
			FlushInterval:   time.Duration(viper.GetInt("STORAGE_FLUSH_INTERVAL_MS")) * time.Millisecond,
		},
		Cache: CacheConfig{
			SearchCacheTTL: time.Duration(viper.GetInt("SEARCH_CACHE_TTL")) * time.Second,
		},
		Geocoding: GeocodingConfig{
			BaseURL:        viper.GetString("NOMINATIM_BASE_URL"),
			UserAgent:      viper.GetString("NOMINATIM_USER_AGENT"),
			SearchLimit:    viper.GetInt("NOMINATIM_SEARCH_LIMIT"),
			RequestTimeout: time.Duration(viper.GetInt("HTTP_CLIENT_TIMEOUT")) * time.Second,
		},
		Elevation: ElevationConfig{
			BaseURL:        viper.GetString("ELEVATION_BASE_URL"),
			Dataset:        viper.GetString("ELEVATION_DATASET"),
			RequestTimeout: time.Duration(viper.GetInt("HTTP_CLIENT_TIMEOUT")) * time.Second,
		},
		Routing: RoutingConfig{
			BaseURL:        viper.GetString("ORS_BASE_URL"),
			APIKey:         viper.GetString("ORS_API_KEY"),
			RequestTimeout: time.Duration(viper.GetInt("HTTP_CLIENT_TIMEOUT")) * time.Second,
		},
		Search: SearchConfig{
			Debounce:       time.Duration(viper.GetInt("SEARCH_DEBOUNCE_MS")) * time.Millisecond,
			MinQueryLength: viper.GetInt("SEARCH_MIN_QUERY_LEN"),
		},
		Enrichment: EnrichmentConfig{
			QueueSize: viper.GetInt("ENRICHMENT_QUEUE_SIZE"),
		},
		Telemetry: TelemetryConfig{
			Enabled:       viper.GetBool("TELEMETRY_ENABLED"),
			Stream:        viper.GetString("TELEMETRY_STREAM"),
			ConsumerGroup: viper.GetString("TELEMETRY_CONSUMER_GROUP"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults заполняет значения, не заданные в окружении
func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "memory"
	}
	if cfg.Storage.AreasKey == "" {
		cfg.Storage.AreasKey = "smartfarm-land"
	}
	if cfg.Storage.WarehousesKey == "" {
		cfg.Storage.WarehousesKey = "smartfarm-warehouse"
	}
	if cfg.Storage.RouteHistoryKey == "" {
		cfg.Storage.RouteHistoryKey = "smartfarm-route-history"
	}
	if cfg.Storage.FlushInterval == 0 {
		cfg.Storage.FlushInterval = 200 * time.Millisecond
	}
	if cfg.Cache.SearchCacheTTL == 0 {
		cfg.Cache.SearchCacheTTL = 10 * time.Minute
	}
	if cfg.Geocoding.BaseURL == "" {
		cfg.Geocoding.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if cfg.Geocoding.UserAgent == "" {
		cfg.Geocoding.UserAgent = "SmartFarm/1.0"
	}
	if cfg.Geocoding.SearchLimit == 0 {
		cfg.Geocoding.SearchLimit = 5
	}
	if cfg.Elevation.BaseURL == "" {
		cfg.Elevation.BaseURL = "https://api.opentopodata.org"
	}
	if cfg.Elevation.Dataset == "" {
		cfg.Elevation.Dataset = "aster30m"
	}
	if cfg.Routing.BaseURL == "" {
		cfg.Routing.BaseURL = "https://api.openrouteservice.org/v2"
	}
	for _, timeout := range []*time.Duration{
		&cfg.Geocoding.RequestTimeout,
		&cfg.Elevation.RequestTimeout,
		&cfg.Routing.RequestTimeout,
	} {
		if *timeout == 0 {
			*timeout = 15 * time.Second
		}
	}
	if cfg.Search.Debounce == 0 {
		cfg.Search.Debounce = 500 * time.Millisecond
	}
	if cfg.Search.MinQueryLength == 0 {
		cfg.Search.MinQueryLength = 3
	}
	if cfg.Enrichment.QueueSize == 0 {
		cfg.Enrichment.QueueSize = 100
	}
	if cfg.Telemetry.Stream == "" {
		cfg.Telemetry.Stream = "stream:smartfarm:sensors"
	}
	if cfg.Telemetry.ConsumerGroup == "" {
		cfg.Telemetry.ConsumerGroup = "farm-geo-telemetry"
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
