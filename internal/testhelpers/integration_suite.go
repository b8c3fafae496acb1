package testhelpers

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/config"
	"github.com/dbehnke/gdl90-nexus/pkg/logger"
)

// IntegrationSuite provides infrastructure for integration tests
type IntegrationSuite struct {
	T           *testing.T
	Config      *config.Config
	Logger      *logger.Logger
	Ctx         context.Context
	Cancel      context.CancelFunc
	MockDevices []*MockDevice
}

// NewIntegrationSuite creates a new integration test suite
func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	log := logger.New(logger.Config{
		Level:  "debug",
		Format: "text",
	})

	return &IntegrationSuite{
		T:           t,
		Logger:      log,
		Ctx:         ctx,
		Cancel:      cancel,
		MockDevices: make([]*MockDevice, 0),
	}
}

// CreateMockDevice creates a new mock device and adds it to the suite
func (s *IntegrationSuite) CreateMockDevice(callsign string, icao uint32) *MockDevice {
	device, err := NewMockDevice(callsign, icao)
	if err != nil {
		s.T.Fatalf("Failed to create mock device: %v", err)
	}
	s.MockDevices = append(s.MockDevices, device)
	return device
}

// GetFreePort gets a free UDP port for testing
func (s *IntegrationSuite) GetFreePort() int {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		s.T.Fatal(err)
	}
	defer func() { _ = conn.Close() }()

	return conn.LocalAddr().(*net.UDPAddr).Port
}

// Cleanup cleans up resources
func (s *IntegrationSuite) Cleanup() {
	// Close all mock devices
	for _, device := range s.MockDevices {
		_ = device.Close()
	}

	// Cancel context
	s.Cancel()
}

// WaitFor waits for a condition to be true
func (s *IntegrationSuite) WaitFor(condition func() bool, timeout time.Duration, message string) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.T.Logf("WaitFor timeout: %s", message)
	return false
}

// AssertEventually asserts that a condition becomes true within timeout
func (s *IntegrationSuite) AssertEventually(condition func() bool, timeout time.Duration, message string) {
	if !s.WaitFor(condition, timeout, message) {
		s.T.Errorf("Assertion failed: %s", message)
	}
}

// CreateDefaultConfig creates a default test configuration: the receiver on
// an ephemeral loopback port, everything else off until a test enables it.
func CreateDefaultConfig() *config.Config {
	return &config.Config{
		Station: config.StationConfig{
			Callsign: "TESTGW",
			ICAO:     "0xABCDEF",
			Emitter:  1,
			NIC:      11,
			NACp:     11,
		},
		Receive: config.ReceiveConfig{
			Enabled:    true,
			Host:       "127.0.0.1",
			Port:       0,
			BufferSize: 4096,
		},
		Broadcast: config.BroadcastConfig{
			Enabled:       false,
			HeartbeatRate: 1.0,
			PositionRate:  2.0,
		},
		Traffic: config.TrafficConfig{
			MaxTargets: 63,
			StaleAfter: 30,
		},
		Capture:  config.CaptureConfig{Enabled: false},
		Database: config.DatabaseConfig{Enabled: false},
		Web:      config.WebConfig{Enabled: false},
		Logging: config.LoggingConfig{
			Level:  "error",
			Format: "text",
		},
		Metrics: config.MetricsConfig{Enabled: false},
	}
}
