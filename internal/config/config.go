package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Database   DatabaseConfig
	Limits     LimitsConfig
	Simulation SimulationConfig
	Pricing    PricingConfig
	Scanner    ScannerConfig
	Events     EventsConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

type StorageConfig struct {
	Backend  string // memory, file, sqlite, redis, postgres
	FilePath string
	DataDir  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// DSN builds a postgres connection string.
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}

type LimitsConfig struct {
	History int
	Results int
}

type SimulationConfig struct {
	MinDelay        time.Duration
	MaxDelay        time.Duration
	Seed            int64
	KeepProbability float64
}

type PricingConfig struct {
	Source            string // simulated, html
	URLTemplates      map[string]string
	RequestsPerSecond float64
	Concurrency       int
	Timeout           time.Duration
}

type ScannerConfig struct {
	TickInterval time.Duration
	TimeUnit     time.Duration
}

type EventsConfig struct {
	Publisher     string // log, redis
	Stream        string
	CheckInterval time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvInt("PORT", 8085),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://localhost:*"}),
		},
		Storage: StorageConfig{
			Backend:  getEnv("STORAGE_BACKEND", "sqlite"),
			FilePath: getEnv("STORAGE_FILE", "data/shoplens.json"),
			DataDir:  getEnv("STORAGE_DIR", "data"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", ""),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "shoplens"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
		},
		Limits: LimitsConfig{
			History: getEnvInt("HISTORY_LIMIT", 20),
			Results: getEnvInt("RESULTS_LIMIT", 50),
		},
		Simulation: SimulationConfig{
			MinDelay:        getEnvDuration("SIMULATION_MIN_DELAY", 1500*time.Millisecond),
			MaxDelay:        getEnvDuration("SIMULATION_MAX_DELAY", 2500*time.Millisecond),
			Seed:            int64(getEnvInt("SIMULATION_SEED", 0)),
			KeepProbability: getEnvFloat("SCANNER_KEEP_PROBABILITY", 0.7),
		},
		Pricing: PricingConfig{
			Source:            getEnv("PRICING_SOURCE", "simulated"),
			URLTemplates:      getEnvMap("PRICING_URL_TEMPLATES"),
			RequestsPerSecond: getEnvFloat("PRICING_RATE_PER_SECOND", 2),
			Concurrency:       getEnvInt("PRICING_CONCURRENCY", 4),
			Timeout:           getEnvDuration("PRICING_TIMEOUT", 15*time.Second),
		},
		Scanner: ScannerConfig{
			TickInterval: getEnvDuration("SCANNER_TICK_INTERVAL", 500*time.Millisecond),
			TimeUnit:     getEnvDuration("SCANNER_TIME_UNIT", 100*time.Millisecond),
		},
		Events: EventsConfig{
			Publisher:     getEnv("EVENTS_PUBLISHER", "log"),
			Stream:        getEnv("EVENTS_STREAM", "stream:price_alerts"),
			CheckInterval: getEnvDuration("ALERT_CHECK_INTERVAL", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Storage.Backend {
	case "memory", "sqlite", "redis":
	case "file":
		if c.Storage.FilePath == "" {
			return fmt.Errorf("STORAGE_FILE is required for file storage")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database host and name are required for postgres storage")
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}

	if c.Limits.History < 1 || c.Limits.Results < 1 {
		return fmt.Errorf("HISTORY_LIMIT and RESULTS_LIMIT must be at least 1")
	}

	if c.Simulation.MinDelay > c.Simulation.MaxDelay {
		return fmt.Errorf("SIMULATION_MIN_DELAY cannot be greater than SIMULATION_MAX_DELAY")
	}

	if c.Simulation.KeepProbability < 0 || c.Simulation.KeepProbability > 1 {
		return fmt.Errorf("SCANNER_KEEP_PROBABILITY must be between 0 and 1")
	}

	switch c.Pricing.Source {
	case "simulated":
	case "html":
		if len(c.Pricing.URLTemplates) == 0 {
			return fmt.Errorf("PRICING_URL_TEMPLATES is required for html pricing")
		}
	default:
		return fmt.Errorf("unknown PRICING_SOURCE %q", c.Pricing.Source)
	}

	if c.Events.Publisher != "log" && c.Events.Publisher != "redis" {
		return fmt.Errorf("unknown EVENTS_PUBLISHER %q", c.Events.Publisher)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// getEnvMap parses "amazon=https://...,target=https://..." pairs.
func getEnvMap(key string) map[string]string {
	out := make(map[string]string)
	for _, pair := range getEnvSlice(key, nil) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out
}
