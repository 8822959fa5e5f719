package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	API         APIConfig         `yaml:"api"`
	Database    DatabaseConfig    `yaml:"database"`
	NATS        NATSConfig        `yaml:"nats"`
	JWT         JWTConfig         `yaml:"jwt"`
	Log         LogConfig         `yaml:"log"`
	Monitor     MonitorConfig     `yaml:"monitor"`
	Integration IntegrationConfig `yaml:"integration"`
	Gateway     GatewayConfig     `yaml:"gateway"`
}

// GatewayConfig represents the radio gateway bridge configuration
type GatewayConfig struct {
	Bind string `yaml:"bind"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// APIConfig represents API configuration
type APIConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// NATSConfig represents NATS configuration
type NATSConfig struct {
	URL               string        `yaml:"url"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	MaxReconnects     int           `yaml:"max_reconnects"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
}

// JWTConfig represents JWT configuration
type JWTConfig struct {
	Secret          string        `yaml:"secret"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MonitorConfig represents the inactivity monitor configuration
type MonitorConfig struct {
	// Interval between evaluation cycles
	Interval time.Duration `yaml:"interval"`
	// NotifySubject is the NATS subject notifications are published to
	NotifySubject string `yaml:"notify_subject"`
}

// IntegrationConfig represents notification forwarding configuration
type IntegrationConfig struct {
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Webhook WebhookConfig `yaml:"webhook"`
}

// MQTTConfig represents the MQTT integration configuration
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
	QoS      byte   `yaml:"qos"`
}

// WebhookConfig represents the HTTP webhook integration configuration
type WebhookConfig struct {
	Enabled bool              `yaml:"enabled"`
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers"`
	Timeout time.Duration     `yaml:"timeout"`
}

// Load loads configuration from file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	return &cfg, nil
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		c.NATS.URL = natsURL
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		c.JWT.Secret = jwtSecret
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Log.Level = logLevel
	}

	if broker := os.Getenv("MQTT_BROKER"); broker != "" {
		c.Integration.MQTT.Broker = broker
	}
}

// setDefaults fills in defaults for unset values
func (c *Config) setDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "zwave-hub-server"
	}

	if c.API.Port == 0 {
		c.API.Port = 8080
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}

	if c.NATS.MaxReconnects == 0 {
		c.NATS.MaxReconnects = 10
	}
	if c.NATS.ReconnectInterval == 0 {
		c.NATS.ReconnectInterval = 5 * time.Second
	}

	if c.JWT.AccessTokenTTL == 0 {
		c.JWT.AccessTokenTTL = 15 * time.Minute
	}
	if c.JWT.RefreshTokenTTL == 0 {
		c.JWT.RefreshTokenTTL = 7 * 24 * time.Hour
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	if c.Monitor.Interval == 0 {
		c.Monitor.Interval = 15 * time.Minute
	}
	if c.Monitor.NotifySubject == "" {
		c.Monitor.NotifySubject = "hub.notifications"
	}

	if c.Integration.MQTT.ClientID == "" {
		c.Integration.MQTT.ClientID = "zwave-hub-forwarder"
	}
	if c.Integration.MQTT.Topic == "" {
		c.Integration.MQTT.Topic = "zwavehub/notifications"
	}
	if c.Integration.Webhook.Timeout == 0 {
		c.Integration.Webhook.Timeout = 30 * time.Second
	}

	if c.Gateway.Bind == "" {
		c.Gateway.Bind = ":1780"
	}
}
