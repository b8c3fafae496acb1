//go:build integration
// +build integration

package testhelpers

import (
	"testing"
	"time"
)

// TestIntegrationSuite_Basic tests basic integration suite functionality
func TestIntegrationSuite_Basic(t *testing.T) {
	suite := NewIntegrationSuite(t)
	defer suite.Cleanup()

	if suite.Logger == nil {
		t.Error("Expected logger to be initialized")
	}

	if suite.Ctx == nil {
		t.Error("Expected context to be initialized")
	}
}

// TestIntegrationSuite_MockDevice tests creating mock devices
func TestIntegrationSuite_MockDevice(t *testing.T) {
	suite := NewIntegrationSuite(t)
	defer suite.Cleanup()

	device := suite.CreateMockDevice("N123AB", 0xA0B1C2)
	if device == nil {
		t.Fatal("Expected non-nil device")
	}

	if device.ICAO != 0xA0B1C2 {
		t.Errorf("Expected ICAO A0B1C2, got %06X", device.ICAO)
	}

	if device.Callsign != "N123AB" {
		t.Errorf("Expected callsign N123AB, got %s", device.Callsign)
	}

	if device.Addr().Port == 0 {
		t.Error("Expected device to be bound to a real port")
	}

	if len(suite.MockDevices) != 1 {
		t.Errorf("Expected 1 mock device, got %d", len(suite.MockDevices))
	}
}

// TestIntegrationSuite_WaitFor tests the WaitFor helper
func TestIntegrationSuite_WaitFor(t *testing.T) {
	suite := NewIntegrationSuite(t)
	defer suite.Cleanup()

	counter := 0
	condition := func() bool {
		counter++
		return counter >= 5
	}

	result := suite.WaitFor(condition, 1*time.Second, "counter >= 5")
	if !result {
		t.Error("Expected WaitFor to succeed")
	}

	if counter < 5 {
		t.Errorf("Expected counter >= 5, got %d", counter)
	}
}

// TestIntegrationSuite_WaitForTimeout tests WaitFor timeout
func TestIntegrationSuite_WaitForTimeout(t *testing.T) {
	suite := NewIntegrationSuite(t)
	defer suite.Cleanup()

	condition := func() bool {
		return false
	}

	result := suite.WaitFor(condition, 100*time.Millisecond, "always false")
	if result {
		t.Error("Expected WaitFor to timeout")
	}
}

// TestIntegrationSuite_GetFreePort tests getting a free port
func TestIntegrationSuite_GetFreePort(t *testing.T) {
	suite := NewIntegrationSuite(t)
	defer suite.Cleanup()

	port := suite.GetFreePort()
	if port <= 0 || port > 65535 {
		t.Errorf("Invalid port number: %d", port)
	}
}

// TestDefaultConfig tests creating a default configuration
func TestDefaultConfig(t *testing.T) {
	cfg := CreateDefaultConfig()

	if cfg == nil {
		t.Fatal("Expected non-nil config")
	}

	if !cfg.Receive.Enabled {
		t.Error("Expected the receiver to be enabled")
	}

	if cfg.Receive.Port != 0 {
		t.Errorf("Expected an ephemeral receive port, got %d", cfg.Receive.Port)
	}

	if cfg.Station.Callsign != "TESTGW" {
		t.Errorf("Expected station callsign TESTGW, got %s", cfg.Station.Callsign)
	}

	icao, err := cfg.Station.ICAOAddress()
	if err != nil {
		t.Fatalf("ICAOAddress error: %v", err)
	}
	if icao != 0xABCDEF {
		t.Errorf("Expected station ICAO ABCDEF, got %06X", icao)
	}

	if cfg.Broadcast.Enabled || cfg.Web.Enabled || cfg.Database.Enabled {
		t.Error("Expected optional components to be disabled by default")
	}
}
