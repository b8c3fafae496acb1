package config

import (
	"fmt"
	"strings"
)

// validate validates the configuration
func validate(cfg *Config) error {
	// Validate station identity
	if _, err := cfg.Station.ICAOAddress(); err != nil {
		return err
	}
	if len(cfg.Station.Callsign) > 8 {
		return fmt.Errorf("station.callsign %q exceeds 8 characters", cfg.Station.Callsign)
	}
	if cfg.Station.Emitter < 0 || cfg.Station.Emitter > 39 {
		return fmt.Errorf("station.emitter must be between 0 and 39")
	}
	if cfg.Station.NIC < 0 || cfg.Station.NIC > 15 {
		return fmt.Errorf("station.nic must be between 0 and 15")
	}
	if cfg.Station.NACp < 0 || cfg.Station.NACp > 15 {
		return fmt.Errorf("station.nacp must be between 0 and 15")
	}

	// Validate receive config
	if cfg.Receive.Enabled {
		if cfg.Receive.Port <= 0 || cfg.Receive.Port > 65535 {
			return fmt.Errorf("receive.port must be between 1 and 65535")
		}
		if cfg.Receive.BufferSize <= 0 {
			return fmt.Errorf("receive.buffer_size must be positive")
		}
	}

	// Validate broadcast config
	if cfg.Broadcast.Enabled {
		if strings.TrimSpace(cfg.Broadcast.TargetHost) == "" {
			return fmt.Errorf("broadcast.target_host is required when broadcast is enabled")
		}
		if cfg.Broadcast.TargetPort <= 0 || cfg.Broadcast.TargetPort > 65535 {
			return fmt.Errorf("broadcast.target_port must be between 1 and 65535")
		}
		if cfg.Broadcast.HeartbeatRate <= 0 {
			return fmt.Errorf("broadcast.heartbeat_rate must be positive")
		}
		if cfg.Broadcast.PositionRate <= 0 {
			return fmt.Errorf("broadcast.position_rate must be positive")
		}
	}

	// Validate traffic limits
	if cfg.Traffic.MaxTargets <= 0 {
		return fmt.Errorf("traffic.max_targets must be positive")
	}
	if cfg.Traffic.StaleAfter <= 0 {
		return fmt.Errorf("traffic.stale_after must be positive")
	}

	// Validate capture config
	if cfg.Capture.Enabled && strings.TrimSpace(cfg.Capture.Directory) == "" {
		return fmt.Errorf("capture.directory is required when capture is enabled")
	}

	// Validate database config
	if cfg.Database.Enabled && strings.TrimSpace(cfg.Database.Path) == "" {
		return fmt.Errorf("database.path is required when database is enabled")
	}

	// Validate web config
	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	// Validate metrics config
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
	}

	return nil
}
