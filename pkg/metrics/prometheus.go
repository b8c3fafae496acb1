package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	snap := h.collector.Snapshot()
	var output strings.Builder

	// Receive path
	output.WriteString("# HELP gdl90_frames_received_total Total candidate frames received\n")
	output.WriteString("# TYPE gdl90_frames_received_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_frames_received_total %d\n", snap.FramesReceived))

	output.WriteString("# HELP gdl90_frames_valid_total Frames that passed CRC and decoded\n")
	output.WriteString("# TYPE gdl90_frames_valid_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_frames_valid_total %d\n", snap.ValidFrames))

	output.WriteString("# HELP gdl90_crc_errors_total Frames rejected by checksum\n")
	output.WriteString("# TYPE gdl90_crc_errors_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_crc_errors_total %d\n", snap.CRCErrors))

	output.WriteString("# HELP gdl90_decode_errors_total Malformed or wrong-length frames\n")
	output.WriteString("# TYPE gdl90_decode_errors_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_decode_errors_total %d\n", snap.DecodeErrors))

	output.WriteString("# HELP gdl90_events_dropped_total Decoded messages dropped on full channels\n")
	output.WriteString("# TYPE gdl90_events_dropped_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_events_dropped_total %d\n", snap.EventsDropped))

	// Send path
	output.WriteString("# HELP gdl90_frames_sent_total Total frames sent\n")
	output.WriteString("# TYPE gdl90_frames_sent_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_frames_sent_total %d\n", snap.FramesSent))

	// Byte totals
	output.WriteString("# HELP gdl90_bytes_received_total Total bytes received\n")
	output.WriteString("# TYPE gdl90_bytes_received_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_bytes_received_total %d\n", snap.BytesReceived))

	output.WriteString("# HELP gdl90_bytes_sent_total Total bytes sent\n")
	output.WriteString("# TYPE gdl90_bytes_sent_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_bytes_sent_total %d\n", snap.BytesSent))

	// Capture log
	output.WriteString("# HELP gdl90_capture_records_total Capture log records written\n")
	output.WriteString("# TYPE gdl90_capture_records_total counter\n")
	output.WriteString(fmt.Sprintf("gdl90_capture_records_total %d\n", snap.CaptureRecords))

	// Traffic table
	output.WriteString("# HELP gdl90_traffic_targets_active Targets currently tracked\n")
	output.WriteString("# TYPE gdl90_traffic_targets_active gauge\n")
	output.WriteString(fmt.Sprintf("gdl90_traffic_targets_active %d\n", snap.ActiveTargets))

	// Per-message-type counts
	output.WriteString("# HELP gdl90_messages_received_total Decoded messages by message ID\n")
	output.WriteString("# TYPE gdl90_messages_received_total counter\n")
	for id, n := range snap.MessageTypes {
		output.WriteString(fmt.Sprintf("gdl90_messages_received_total{message_id=%q} %d\n", id, n))
	}

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	// Use a listener to get the actual port (useful for testing with port 0)
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	// Start server
	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
