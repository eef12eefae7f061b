// Package config loads the dashboard configuration from an optional
// yaml file, a .env file and DASHBOARD_-prefixed environment
// variables, in that order of increasing precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBackendURL is where the monitoring backend's REST API is
// expected when nothing else is configured. It is a configuration
// point, not a hidden literal: override it with DASHBOARD_BACKEND_URL
// or backend.baseURL in the config file.
const DefaultBackendURL = "http://localhost:8000/api/v1"

// Config holds all configuration for the dashboard service
type Config struct {
	Server  ServerConfig
	Backend BackendConfig
	Feed    FeedConfig
	Kafka   KafkaConfig
	Logging LoggingConfig
}

// ServerConfig holds the HTTP surface configuration
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// BackendConfig holds the connection to the monitoring backend
type BackendConfig struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	SeedLimit int
}

// FeedConfig selects and tunes the live event source
type FeedConfig struct {
	Mode         string // websocket, kafka or poll
	WebsocketURL string
	PollInterval time.Duration
}

// KafkaConfig holds the consumer settings for the kafka feed mode
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads the configuration. A missing config file is fine; a
// malformed one is not.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/citypulse-dashboard")

	// Set defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "30s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.shutdownTimeout", "5s")

	v.SetDefault("backend.baseURL", DefaultBackendURL)
	v.SetDefault("backend.token", "")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.seedLimit", 100)

	v.SetDefault("feed.mode", "websocket")
	v.SetDefault("feed.websocketURL", "ws://localhost:8000/api/v1/ws")
	v.SetDefault("feed.pollInterval", "15s")

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "citypulse.events")
	v.SetDefault("kafka.groupID", "dashboard")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Bind environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("DASHBOARD")

	v.BindEnv("server.port", "DASHBOARD_PORT")
	v.BindEnv("backend.baseURL", "DASHBOARD_BACKEND_URL")
	v.BindEnv("backend.token", "DASHBOARD_BACKEND_TOKEN")
	v.BindEnv("backend.timeout", "DASHBOARD_BACKEND_TIMEOUT")
	v.BindEnv("feed.mode", "DASHBOARD_FEED_MODE")
	v.BindEnv("feed.websocketURL", "DASHBOARD_FEED_WEBSOCKET_URL")
	v.BindEnv("feed.pollInterval", "DASHBOARD_FEED_POLL_INTERVAL")
	v.BindEnv("kafka.brokers", "DASHBOARD_KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "DASHBOARD_KAFKA_TOPIC")
	v.BindEnv("kafka.groupID", "DASHBOARD_KAFKA_GROUP_ID")
	v.BindEnv("logging.level", "DASHBOARD_LOG_LEVEL")
	v.BindEnv("logging.format", "DASHBOARD_LOG_FORMAT")

	// Try to read the config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file; environment variables and defaults apply
	}

	config := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.readTimeout"),
			WriteTimeout:    v.GetDuration("server.writeTimeout"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
		},
		Backend: BackendConfig{
			BaseURL:   v.GetString("backend.baseURL"),
			Token:     v.GetString("backend.token"),
			Timeout:   v.GetDuration("backend.timeout"),
			SeedLimit: v.GetInt("backend.seedLimit"),
		},
		Feed: FeedConfig{
			Mode:         v.GetString("feed.mode"),
			WebsocketURL: v.GetString("feed.websocketURL"),
			PollInterval: v.GetDuration("feed.pollInterval"),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(v.GetString("kafka.brokers"), ","),
			Topic:   v.GetString("kafka.topic"),
			GroupID: v.GetString("kafka.groupID"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
	}

	switch config.Feed.Mode {
	case "websocket", "kafka", "poll":
	default:
		return nil, fmt.Errorf("invalid feed mode %q", config.Feed.Mode)
	}

	return config, nil
}
