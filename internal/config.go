package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	OAuth         OAuthConfig         `mapstructure:"oauth"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	SessionSecret string        `mapstructure:"session_secret" validate:"required,min=32"`
	SessionMaxAge time.Duration `mapstructure:"session_max_age" validate:"required,min=1h"`
	BCryptCost    int           `mapstructure:"bcrypt_cost" validate:"required,min=10,max=15"`
}

// OAuthConfig holds the external identity provider credentials. The
// provider path is disabled when the client id is empty.
type OAuthConfig struct {
	GitHubClientID     string `mapstructure:"github_client_id"`
	GitHubClientSecret string `mapstructure:"github_client_secret"`
	GitHubRedirectURL  string `mapstructure:"github_redirect_url"`
}

// RateLimitConfig bounds repeated account-creation attempts per client.
// Backend "memory" keeps counters in process; "redis" shares them across
// instances.
type RateLimitConfig struct {
	Backend          string        `mapstructure:"backend"`
	RedisAddr        string        `mapstructure:"redis_addr"`
	UserCreateMax    int           `mapstructure:"user_create_max"`
	UserCreateWindow time.Duration `mapstructure:"user_create_window"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// LoadConfigFromEnv builds the configuration from environment variables,
// used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			IdleTimeout:       getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			QueryTimeout:    getEnvAsDuration("DB_QUERY_TIMEOUT", 5*time.Second),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Security: SecurityConfig{
			SessionSecret: getEnv("SESSION_SECRET", ""),
			SessionMaxAge: getEnvAsDuration("SESSION_MAX_AGE", 30*24*time.Hour),
			BCryptCost:    getEnvAsInt("BCRYPT_COST", 12),
		},
		OAuth: OAuthConfig{
			GitHubClientID:     getEnv("OAUTH_GITHUB_ID", ""),
			GitHubClientSecret: getEnv("OAUTH_GITHUB_SECRET", ""),
			GitHubRedirectURL:  getEnv("OAUTH_GITHUB_REDIRECT_URL", ""),
		},
		RateLimit: RateLimitConfig{
			Backend:          getEnv("RATE_LIMIT_BACKEND", "memory"),
			RedisAddr:        getEnv("RATE_LIMIT_REDIS_ADDR", ""),
			UserCreateMax:    getEnvAsInt("RATE_LIMIT_USER_CREATE_MAX", 3),
			UserCreateWindow: getEnvAsDuration("RATE_LIMIT_USER_CREATE_WINDOW", time.Minute),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.RateLimit.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("rate limit config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("database source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

// Validate refuses to start authenticating without a signing secret, and
// keeps the bcrypt cost inside the range where verification stays under
// the latency budget.
func (c *SecurityConfig) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.SessionMaxAge < time.Hour {
		return errors.New("session max age must be at least 1 hour")
	}
	if c.BCryptCost < 10 || c.BCryptCost > 15 {
		return errors.New("bcrypt cost must be between 10 and 15")
	}
	return nil
}

func (c *RateLimitConfig) Validate() error {
	switch c.Backend {
	case "", "memory":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown rate limit backend %q", c.Backend)
	}
	if c.UserCreateMax < 1 {
		return errors.New("user_create_max must be at least 1")
	}
	return nil
}

func (c *OAuthConfig) GitHubEnabled() bool {
	return c.GitHubClientID != "" && c.GitHubClientSecret != ""
}
