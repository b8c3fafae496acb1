package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_BasicLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "text", Output: &buf})

	log.Debug("dbg", String("k", "v"))
	log.Info("info", Int("n", 42))
	log.Warn("warn", Bool("ok", true))
	log.Error("err", Error(nil))

	out := buf.String()
	// Expect all levels present (debug is the lowest configured)
	for _, s := range []string{"[DEBUG] dbg k=v", "[INFO] info n=42", "[WARN] warn ok=true", "[ERROR] err error=nil"} {
		if !strings.Contains(out, s) {
			t.Fatalf("expected output to contain %q, got: %s", s, out)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Output: &buf})

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info suppressed at warn level, got: %s", out)
	}
	if !strings.Contains(out, "[WARN] shown") {
		t.Fatalf("expected warn message, got: %s", out)
	}
}

func TestLogger_WithComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Level: "info", Output: &buf})
	comp := base.WithComponent("network.receiver")

	comp.Info("started")

	out := buf.String()
	if !strings.Contains(out, "[network.receiver]") {
		t.Fatalf("expected component prefix in output, got: %s", out)
	}
	if !strings.Contains(out, "[INFO] started") {
		t.Fatalf("expected info message in output, got: %s", out)
	}
}

func TestLogger_HexField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Output: &buf})

	log.Info("traffic", Hex("icao", 0xABCDEF), Uint16("crc", 0x8BB3))

	out := buf.String()
	if !strings.Contains(out, "icao=0xABCDEF") {
		t.Fatalf("expected hex icao field, got: %s", out)
	}
	if !strings.Contains(out, "crc=35763") {
		t.Fatalf("expected crc field, got: %s", out)
	}
}

func TestLogger_FileOutput(t *testing.T) {
	var buf bytes.Buffer
	path := filepath.Join(t.TempDir(), "gdl90.log")
	log := New(Config{Level: "info", Output: &buf, File: path})

	log.Info("written to both sinks")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
	if !strings.Contains(string(data), "written to both sinks") {
		t.Fatalf("expected message in log file, got: %s", data)
	}
	if !strings.Contains(buf.String(), "written to both sinks") {
		t.Fatalf("expected message on primary output, got: %s", buf.String())
	}
}
