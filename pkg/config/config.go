package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Station   StationConfig   `mapstructure:"station"`
	Receive   ReceiveConfig   `mapstructure:"receive"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Traffic   TrafficConfig   `mapstructure:"traffic"`
	Capture   CaptureConfig   `mapstructure:"capture"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Web       WebConfig       `mapstructure:"web"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// StationConfig identifies the ownship this gateway reports
type StationConfig struct {
	Callsign string `mapstructure:"callsign"` // up to 8 characters
	ICAO     string `mapstructure:"icao"`     // 24-bit address, hex (0x prefix) or decimal
	Emitter  int    `mapstructure:"emitter"`  // emitter category, 0-39
	NIC      int    `mapstructure:"nic"`      // navigation integrity category, 0-15
	NACp     int    `mapstructure:"nacp"`     // navigation accuracy category, 0-15
}

// ICAOAddress parses the configured ICAO string. A 0x prefix selects hex,
// otherwise decimal; the value must fit in 24 bits.
func (s *StationConfig) ICAOAddress() (uint32, error) {
	raw := strings.TrimSpace(s.ICAO)
	if raw == "" {
		return 0, fmt.Errorf("station.icao is empty")
	}
	v, err := strconv.ParseUint(raw, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("station.icao %q: %w", s.ICAO, err)
	}
	if v > 0xFFFFFF {
		return 0, fmt.Errorf("station.icao 0x%X exceeds 24 bits", v)
	}
	return uint32(v), nil
}

// ReceiveConfig holds the listening socket configuration
type ReceiveConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	BufferSize int    `mapstructure:"buffer_size"` // UDP read buffer, bytes
}

// BroadcastConfig holds the outbound reporting configuration
type BroadcastConfig struct {
	Enabled       bool    `mapstructure:"enabled"`
	TargetHost    string  `mapstructure:"target_host"`
	TargetPort    int     `mapstructure:"target_port"`
	HeartbeatRate float64 `mapstructure:"heartbeat_rate"` // Hz
	PositionRate  float64 `mapstructure:"position_rate"`  // Hz
	ForeFlightID  bool    `mapstructure:"foreflight_id"`  // send identity messages for EFBs
}

// TrafficConfig holds traffic table limits
type TrafficConfig struct {
	MaxTargets int `mapstructure:"max_targets"`
	StaleAfter int `mapstructure:"stale_after"` // seconds without an update
}

// CaptureConfig holds capture log configuration
type CaptureConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Directory string `mapstructure:"directory"`
}

// DatabaseConfig holds capture store configuration
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// WebConfig holds web dashboard configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics configuration
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	// Set defaults
	setDefaults()

	// Set config file
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/gdl90-nexus")
	}

	// Environment variables
	viper.SetEnvPrefix("GDL90")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal to struct
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Station defaults
	viper.SetDefault("station.callsign", "N12345")
	viper.SetDefault("station.icao", "0xABCDEF")
	viper.SetDefault("station.emitter", 1)
	viper.SetDefault("station.nic", 11)
	viper.SetDefault("station.nacp", 11)

	// Receive defaults
	viper.SetDefault("receive.enabled", true)
	viper.SetDefault("receive.host", "0.0.0.0")
	viper.SetDefault("receive.port", 4000)
	viper.SetDefault("receive.buffer_size", 4096)

	// Broadcast defaults
	viper.SetDefault("broadcast.enabled", false)
	viper.SetDefault("broadcast.target_host", "127.0.0.1")
	viper.SetDefault("broadcast.target_port", 4000)
	viper.SetDefault("broadcast.heartbeat_rate", 1.0)
	viper.SetDefault("broadcast.position_rate", 2.0)
	viper.SetDefault("broadcast.foreflight_id", false)

	// Traffic defaults
	viper.SetDefault("traffic.max_targets", 63)
	viper.SetDefault("traffic.stale_after", 30)

	// Capture defaults
	viper.SetDefault("capture.enabled", false)
	viper.SetDefault("capture.directory", "./captures")

	// Database defaults
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.path", "gdl90-nexus.db")

	// Web defaults
	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 7)
	viper.SetDefault("logging.compress", false)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", true)
	viper.SetDefault("metrics.prometheus.port", 9090)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}
