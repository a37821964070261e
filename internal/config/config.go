package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"shareit/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Gateway    GatewayConfig    `yaml:"gateway"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port              int           `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	PageSize          int           `yaml:"page_size"`
}

type GatewayConfig struct {
	Port              int             `yaml:"port"`
	ServerURL         string          `yaml:"server_url"`
	RequestTimeout    time.Duration   `yaml:"request_timeout"`
	ReadHeaderTimeout time.Duration   `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration   `yaml:"write_timeout"`
	RateLimit         RateLimitConfig `yaml:"rate_limit"`
	Retry             RetryConfig     `yaml:"retry"`
}

// RetryConfig applies to idempotent requests that never reached the server.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
}

// RateLimitConfig bounds requests per caller within a fixed window.
type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled     bool `yaml:"prometheus_enabled"`
	ServerPrometheusPort  int  `yaml:"server_prometheus_port"`
	GatewayPrometheusPort int  `yaml:"gateway_prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// Load reads an optional .env, expands environment variables in the YAML
// file, applies defaults and validates the result.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	for name, port := range map[string]int{
		"server.port":  c.Server.Port,
		"gateway.port": c.Gateway.Port,
	} {
		if port < 1 || port > 65535 {
			return fmt.Errorf("%s out of range: %d", name, port)
		}
	}

	if c.Server.PageSize < 1 {
		return fmt.Errorf("server.page_size must be positive, got %d", c.Server.PageSize)
	}

	u, err := url.Parse(c.Gateway.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("gateway.server_url must be an http(s) URL, got %q", c.Gateway.ServerURL)
	}

	if c.Gateway.Retry.MaxRetries < 0 {
		return fmt.Errorf("gateway.retry.max_retries must not be negative, got %d", c.Gateway.Retry.MaxRetries)
	}

	if c.Gateway.RateLimit.Enabled && (c.Gateway.RateLimit.Requests < 1 || c.Gateway.RateLimit.Window <= 0) {
		return errors.New("gateway.rate_limit requires positive requests and window")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "shareit"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 9090
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.PageSize == 0 {
		c.Server.PageSize = models.DefaultPageSize
	}

	if c.Gateway.Port == 0 {
		c.Gateway.Port = 8080
	}
	if c.Gateway.ServerURL == "" {
		c.Gateway.ServerURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Gateway.RequestTimeout == 0 {
		c.Gateway.RequestTimeout = 10 * time.Second
	}
	if c.Gateway.ReadHeaderTimeout == 0 {
		c.Gateway.ReadHeaderTimeout = 5 * time.Second
	}
	if c.Gateway.WriteTimeout == 0 {
		c.Gateway.WriteTimeout = 15 * time.Second
	}
	if c.Gateway.Retry.InitialDelay == 0 {
		c.Gateway.Retry.InitialDelay = 100 * time.Millisecond
	}
	if c.Gateway.Retry.MaxDelay == 0 {
		c.Gateway.Retry.MaxDelay = time.Second
	}
	if c.Gateway.RateLimit.Requests == 0 {
		c.Gateway.RateLimit.Requests = models.RateLimitRequests
	}
	if c.Gateway.RateLimit.Window == 0 {
		c.Gateway.RateLimit.Window = models.RateLimitWindow * time.Second
	}

	if c.Database.Path == "" {
		c.Database.Path = "data/shareit.db"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}

	if c.Monitoring.PrometheusEnabled {
		if c.Monitoring.ServerPrometheusPort == 0 {
			c.Monitoring.ServerPrometheusPort = 9100
		}
		if c.Monitoring.GatewayPrometheusPort == 0 {
			c.Monitoring.GatewayPrometheusPort = 9101
		}
	}
}
