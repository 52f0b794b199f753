package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Logging  LoggingConfig
	Auth     AuthConfig
	Security SecurityConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Mode      string // "jwt", "oidc"
	JWTSecret string
	OIDC      OIDCConfig
}

// OIDCConfig holds OIDC configuration
type OIDCConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// SecurityConfig holds the guard policy knobs. Per-route-group values can be
// overridden from the YAML file named by SECURITY_POLICY_FILE.
type SecurityConfig struct {
	HTTPSOnly      bool       `yaml:"https_only"`
	AllowedOrigins []string   `yaml:"allowed_origins"`
	PublicIPLimit  RatePolicy `yaml:"public_ip_limit"`
	AuthIPLimit    RatePolicy `yaml:"auth_ip_limit"`
	UserLimit      RatePolicy `yaml:"user_limit"`
	PolicyFile     string     `yaml:"-"`
}

// RatePolicy is one rate limit expressed as requests per window
type RatePolicy struct {
	Requests int    `yaml:"requests"`
	Window   string `yaml:"window"`
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "ideas"),
			Password:        getEnv("DB_PASSWORD", "ideas"),
			Name:            getEnv("DB_NAME", "ideas"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8081"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			Mode:      getEnv("AUTH_MODE", "jwt"),
			JWTSecret: getEnv("JWT_SECRET", ""),
			OIDC: OIDCConfig{
				IssuerURL:    getEnv("OIDC_ISSUER_URL", ""),
				ClientID:     getEnv("OIDC_CLIENT_ID", ""),
				ClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("OIDC_REDIRECT_URL", ""),
				Scopes:       getEnvSlice("OIDC_SCOPES", []string{"openid", "profile", "email"}),
			},
		},
		Security: SecurityConfig{
			HTTPSOnly:      getEnv("HTTPS_ONLY", "false") == "true",
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			PublicIPLimit: RatePolicy{
				Requests: getEnvInt("PUBLIC_IP_LIMIT_REQUESTS", 120),
				Window:   getEnv("PUBLIC_IP_LIMIT_WINDOW", "1m"),
			},
			AuthIPLimit: RatePolicy{
				Requests: getEnvInt("AUTH_IP_LIMIT_REQUESTS", 10),
				Window:   getEnv("AUTH_IP_LIMIT_WINDOW", "1m"),
			},
			UserLimit: RatePolicy{
				Requests: getEnvInt("USER_LIMIT_REQUESTS", 60),
				Window:   getEnv("USER_LIMIT_WINDOW", "1m"),
			},
			PolicyFile: getEnv("SECURITY_POLICY_FILE", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := []string{}
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}
