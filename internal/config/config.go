package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Storage and event backends
const (
	BackendMongo  = "mongo"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds all configuration for the ClimeAI agent service.
// Provider API keys are not part of it: they are re-read on every model
// client selection.
type Config struct {
	// Server configuration
	HTTPPort int    `env:"CLIMEAI_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"CLIMEAI_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Bearer token required on /api/v1 when set
	APIToken string `env:"CLIMEAI_API_TOKEN"`

	// MongoDB configuration
	Mongo MongoConfig

	// Redis configuration
	Redis RedisConfig

	// Backends
	StorageBackend string `env:"CLIMEAI_STORAGE_BACKEND" envDefault:"mongo"`
	EventBackend   string `env:"CLIMEAI_EVENT_BACKEND" envDefault:"memory"`

	// Agent configuration
	Agent AgentConfig

	// Worker configuration
	Workers WorkerConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	ConnectionString string `env:"MONGODB_CONNECTION_STRING" envDefault:"mongodb://localhost:27017/"`
	Database         string `env:"MONGODB_DATABASE" envDefault:"climeai"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`

	// Conversation retention
	SessionTTL time.Duration `env:"REDIS_SESSION_TTL" envDefault:"24h"`
}

// AgentConfig holds chat behaviour settings
type AgentConfig struct {
	SystemPrompt      string `env:"CLIMEAI_SYSTEM_PROMPT" envDefault:"You are ClimeAI, an assistant that answers weather and climate questions. Use the available tools for unit conversions and heat index calculations."`
	MaxToolIterations int    `env:"CLIMEAI_MAX_TOOL_ITERATIONS" envDefault:"4"`
	MaxMessageLength  int    `env:"CLIMEAI_MAX_MESSAGE_LENGTH" envDefault:"8000"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	PoolSize            int           `env:"WORKER_POOL_SIZE" envDefault:"4"`
	QueueSize           int           `env:"WORKER_QUEUE_SIZE" envDefault:"64"`
	HealthCheckInterval time.Duration `env:"WORKER_HEALTH_CHECK_INTERVAL" envDefault:"30s"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ChatTimeout     time.Duration `env:"TIMEOUT_CHAT" envDefault:"120s"`
	StartupTimeout  time.Duration `env:"TIMEOUT_STARTUP" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from environ, or from the process environment
// when environ is nil
func LoadFrom(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	switch c.StorageBackend {
	case BackendMongo:
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo database name is required")
		}
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unsupported storage backend: %s (must be mongo, redis, or memory)", c.StorageBackend)
	}

	switch c.EventBackend {
	case BackendRedis, BackendMemory:
	default:
		return fmt.Errorf("unsupported event backend: %s (must be redis or memory)", c.EventBackend)
	}

	if c.UsesRedis() && c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}

	if c.Agent.MaxToolIterations < 0 {
		return fmt.Errorf("max tool iterations must not be negative")
	}
	if c.Agent.MaxMessageLength < 1 {
		return fmt.Errorf("max message length must be at least 1")
	}

	if c.Workers.PoolSize < 1 {
		return fmt.Errorf("worker pool size must be at least 1")
	}
	if c.Workers.QueueSize < 1 {
		return fmt.Errorf("worker queue size must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// UsesRedis reports whether any backend needs a Redis connection
func (c *Config) UsesRedis() bool {
	return c.StorageBackend == BackendRedis || c.EventBackend == BackendRedis
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
