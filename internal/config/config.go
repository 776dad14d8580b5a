package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Logging
	LogLevel string

	// Database
	SQLiteDBPath string

	// Auth
	JWTSecret string

	// Rate limiting of mutating requests, per client IP.
	WriteRateLimit  int
	WriteRateWindow time.Duration

	// AMQP change-event feed. Empty URL disables the broker: the server
	// still fans events out to its own SSE subscribers.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Insights gateway. Empty URL disables the remote call: every request
	// is answered by the deterministic fallback.
	InsightsGatewayURL string
	InsightsAPIKey     string
	InsightsModel      string
	InsightsTimeout    time.Duration
	InsightsCacheSize  int
	InsightsCacheTTL   time.Duration

	// Worker
	SweepInterval time.Duration
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/masareef.db"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		WriteRateLimit:  getEnvInt("WRITE_RATE_LIMIT", 60),
		WriteRateWindow: getEnvDuration("WRITE_RATE_WINDOW", time.Minute),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "masareef"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		InsightsGatewayURL: getEnv("INSIGHTS_GATEWAY_URL", ""),
		InsightsAPIKey:     getEnv("INSIGHTS_API_KEY", ""),
		InsightsModel:      getEnv("INSIGHTS_MODEL", "google/gemini-3-flash-preview"),
		InsightsTimeout:    getEnvDuration("INSIGHTS_TIMEOUT", 30*time.Second),
		InsightsCacheSize:  getEnvInt("INSIGHTS_CACHE_SIZE", 256),
		InsightsCacheTTL:   getEnvDuration("INSIGHTS_CACHE_TTL", 10*time.Minute),

		SweepInterval: getEnvDuration("SWEEP_INTERVAL", 15*time.Minute),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.JWTSecret == "" {
		errors = append(errors, "JWT_SECRET must be set")
	}

	if c.WriteRateLimit < 1 {
		errors = append(errors, fmt.Sprintf("invalid write rate limit %d: must be at least 1", c.WriteRateLimit))
	}
	if c.WriteRateWindow < time.Second {
		errors = append(errors, fmt.Sprintf("invalid write rate window %v: must be at least 1 second", c.WriteRateWindow))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.InsightsGatewayURL != "" {
		if parsedURL, err := url.Parse(c.InsightsGatewayURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid insights gateway URL '%s': %v", c.InsightsGatewayURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid insights gateway URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
		if c.InsightsAPIKey == "" {
			errors = append(errors, "insights API key cannot be empty when a gateway URL is provided")
		}
		if c.InsightsModel == "" {
			errors = append(errors, "insights model cannot be empty when a gateway URL is provided")
		}
	}

	if c.InsightsCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid insights cache size %d: must be at least 1", c.InsightsCacheSize))
	}
	if c.InsightsCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid insights cache TTL %v: must be at least 1 second", c.InsightsCacheTTL))
	}
	if c.InsightsTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid insights timeout %v: must be at least 1 second", c.InsightsTimeout))
	}

	if c.SweepInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid sweep interval %v: must be at least 1 second", c.SweepInterval))
	} else if c.SweepInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid sweep interval %v: must be at most 24 hours", c.SweepInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
