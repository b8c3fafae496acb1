package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/capture"
	"github.com/dbehnke/gdl90-nexus/pkg/config"
	"github.com/dbehnke/gdl90-nexus/pkg/database"
	"github.com/dbehnke/gdl90-nexus/pkg/gdl90"
	"github.com/dbehnke/gdl90-nexus/pkg/logger"
	"github.com/dbehnke/gdl90-nexus/pkg/metrics"
	"github.com/dbehnke/gdl90-nexus/pkg/network"
	"github.com/dbehnke/gdl90-nexus/pkg/traffic"
	"github.com/dbehnke/gdl90-nexus/pkg/web"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

const (
	// rawTapBuffer is the depth of the datagram tap feeding the capture log.
	rawTapBuffer = 256

	// sightingBatchSize flushes pending store rows early when a burst of
	// reports arrives between housekeeping ticks.
	sightingBatchSize = 100

	// housekeepingInterval paces stale-target sweeps, statistics pushes to
	// the web hub, and sighting flushes.
	housekeepingInterval = 5 * time.Second
)

func main() {
	// Parse command line flags
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("GDL90-Nexus %s (%s, built %s)\n", version, commit, buildTime)
		os.Exit(0)
	}

	// Bootstrap logger until the configured one takes over
	log := logger.New(logger.Config{
		Level:  "info",
		Format: "text",
	})

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	// Validate only mode
	if *validate {
		log.Info("Configuration is valid")
		os.Exit(0)
	}

	log = logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})

	log.Info("Starting GDL90-Nexus",
		logger.String("version", version),
		logger.String("build_time", buildTime),
		logger.String("config_file", *configFile))

	web.SetVersionInfo(web.VersionInfo{Version: version, Commit: commit, Built: buildTime})

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize wait group for goroutines
	var wg sync.WaitGroup

	// Shared state: metrics, the traffic picture, and the last ownship fix
	collector := metrics.NewCollector()
	table := traffic.NewTable(cfg.Traffic.MaxTargets)
	ownship := &ownshipTracker{}

	// Start Prometheus metrics server if enabled
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metricsServer := metrics.NewPrometheusServer(
				metrics.PrometheusConfig{
					Enabled: cfg.Metrics.Prometheus.Enabled,
					Port:    cfg.Metrics.Prometheus.Port,
					Path:    cfg.Metrics.Prometheus.Path,
				},
				collector,
				log.WithComponent("metrics"),
			)
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
		log.Info("Prometheus metrics server started",
			logger.Int("port", cfg.Metrics.Prometheus.Port),
			logger.String("path", cfg.Metrics.Prometheus.Path))
	}

	// Open the capture log if enabled
	var capWriter *capture.Writer
	capturePath := ""
	if cfg.Capture.Enabled {
		if err := os.MkdirAll(cfg.Capture.Directory, 0o755); err != nil {
			log.Error("Failed to create capture directory", logger.Error(err))
			os.Exit(1)
		}
		capturePath = capture.SessionFilename(cfg.Capture.Directory, time.Now())
		capWriter, err = capture.NewWriter(capturePath)
		if err != nil {
			log.Error("Failed to open capture log", logger.Error(err))
			os.Exit(1)
		}
		log.Info("Capture log opened", logger.String("path", capturePath))
	}

	// Open the capture store if enabled
	var (
		db        *database.DB
		sessions  *database.SessionRepository
		sightings *database.SightingRepository
		session   *database.CaptureSession
	)
	if cfg.Database.Enabled {
		db, err = database.NewDB(database.Config{Path: cfg.Database.Path}, log.WithComponent("database"))
		if err != nil {
			log.Error("Failed to open capture store", logger.Error(err))
			os.Exit(1)
		}
		sessions = database.NewSessionRepository(db.GetDB())
		sightings = database.NewSightingRepository(db.GetDB())
		session, err = sessions.Begin(capturePath)
		if err != nil {
			log.Error("Failed to begin capture session", logger.Error(err))
			os.Exit(1)
		}
		log.Info("Capture session started", logger.Uint("session_id", session.ID))
	}

	// Start web server if enabled
	var hub *web.WebSocketHub
	if cfg.Web.Enabled {
		webServer := web.NewServer(cfg.Web, collector, table, log.WithComponent("web"))
		hub = webServer.GetHub()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := webServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
		log.Info("Web server started",
			logger.String("host", cfg.Web.Host),
			logger.Int("port", cfg.Web.Port))
	}

	// Start the rebroadcaster if enabled, relaying the table and the last
	// ownship fix to the configured EFB endpoint
	if cfg.Broadcast.Enabled {
		broadcaster := network.NewBroadcaster(cfg.Broadcast, cfg.Station, collector, log).
			WithOwnship(ownship).
			WithTraffic(table)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := broadcaster.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Broadcaster error", logger.Error(err))
			}
		}()
		log.Info("Rebroadcast enabled",
			logger.String("target_host", cfg.Broadcast.TargetHost),
			logger.Int("target_port", cfg.Broadcast.TargetPort))
	}

	// Start the receiver and the pumps that drain it
	if cfg.Receive.Enabled {
		receiver := network.NewReceiver(cfg.Receive, collector, log)
		if capWriter != nil {
			receiver = receiver.WithRawTap(rawTapBuffer)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := receiver.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Receiver error", logger.Error(err))
			}
		}()
		log.Info("UDP receiver started",
			logger.String("host", cfg.Receive.Host),
			logger.Int("port", cfg.Receive.Port))

		gw := &gateway{
			receiver:   receiver,
			table:      table,
			ownship:    ownship,
			hub:        hub,
			collector:  collector,
			sightings:  sightings,
			staleAfter: time.Duration(cfg.Traffic.StaleAfter) * time.Second,
			log:        log.WithComponent("gateway"),
		}
		if session != nil {
			gw.sessionID = session.ID
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			gw.run(ctx)
		}()

		if capWriter != nil {
			wg.Add(1)
			go func() {
				defer wg.Done()
				runCapturePump(ctx, receiver, capWriter, collector, log.WithComponent("capture"))
			}()
		}
	}

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal",
		logger.String("signal", sig.String()))

	// Cancel context to trigger graceful shutdown
	cancel()

	// Wait for all components to stop
	wg.Wait()

	if capWriter != nil {
		if err := capWriter.Close(); err != nil {
			log.Error("Failed to close capture log", logger.Error(err))
		} else {
			log.Info("Capture log closed",
				logger.Uint64("records", capWriter.Records()),
				logger.Uint64("bytes", capWriter.Bytes()))
		}
	}

	if session != nil {
		session.FramesReceived = collector.GetFramesReceived()
		session.ValidFrames = collector.GetValidFrames()
		session.CRCErrors = collector.GetCRCErrors()
		session.BytesReceived = collector.GetBytesReceived()
		if err := sessions.End(session); err != nil {
			log.Error("Failed to end capture session", logger.Error(err))
		}
	}
	if db != nil {
		if err := db.Close(); err != nil {
			log.Error("Failed to close capture store", logger.Error(err))
		}
	}

	log.Info("GDL90-Nexus stopped")
}

// ownshipTracker remembers the most recent ownship report received from the
// attached device so the rebroadcaster always relays a current position.
type ownshipTracker struct {
	mu    sync.RWMutex
	fix   traffic.Fix
	valid bool
}

func (o *ownshipTracker) set(fix traffic.Fix) {
	o.mu.Lock()
	o.fix = fix
	o.valid = true
	o.mu.Unlock()
}

// OwnshipFix implements network.OwnshipSource.
func (o *ownshipTracker) OwnshipFix() (traffic.Fix, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.fix, o.valid
}

// gateway ties the receiver's decoded events to the traffic table, the web
// hub, and the capture store.
type gateway struct {
	receiver   *network.Receiver
	table      *traffic.Table
	ownship    *ownshipTracker
	hub        *web.WebSocketHub // nil when the web server is disabled
	collector  *metrics.Collector
	sightings  *database.SightingRepository // nil when the store is disabled
	sessionID  uint
	staleAfter time.Duration
	log        *logger.Logger

	pending []database.TrafficSighting
}

func (g *gateway) run(ctx context.Context) {
	housekeeping := time.NewTicker(housekeepingInterval)
	defer housekeeping.Stop()

	for {
		select {
		case <-ctx.Done():
			g.flushSightings()
			return
		case event := <-g.receiver.Events():
			g.handleEvent(event)
		case <-housekeeping.C:
			g.sweepStale()
			g.flushSightings()
			if g.hub != nil {
				g.hub.BroadcastStatistics(g.collector.Snapshot())
			}
		}
	}
}

func (g *gateway) handleEvent(event network.Event) {
	switch msg := event.Message.(type) {
	case *gdl90.Heartbeat:
		if g.hub != nil {
			g.hub.BroadcastHeartbeat(msg.Timestamp, msg.GPSPosValid, msg.BasicLongCount)
		}
	case *gdl90.PositionReport:
		g.handlePosition(event, msg)
	case *gdl90.Unknown:
		g.log.Debug("Unhandled message",
			logger.Hex("message_id", uint64(msg.ID)),
			logger.Int("size", len(msg.Body)))
	}
}

func (g *gateway) handlePosition(event network.Event, report *gdl90.PositionReport) {
	icao, update := traffic.FromReport(report)

	if report.Traffic {
		target, ok := g.table.Upsert(icao, update)
		if ok {
			g.collector.SetActiveTargets(g.table.Count())
			if g.hub != nil {
				g.hub.BroadcastTraffic(target.Snapshot())
			}
		} else {
			g.log.Warn("Traffic table full, report dropped",
				logger.Hex("icao", uint64(icao)))
		}
	} else {
		g.ownship.set(update.Fix)
		if g.hub != nil {
			g.hub.BroadcastOwnship(icao, update.Callsign, update.Fix)
		}
	}

	// Sightings are stored for every position report, table-full or not
	if g.sightings != nil {
		g.pending = append(g.pending, *database.SightingFromReport(g.sessionID, event.Time, report, event.Frame))
		if len(g.pending) >= sightingBatchSize {
			g.flushSightings()
		}
	}
}

func (g *gateway) sweepStale() {
	removed := g.table.CleanupStale(g.staleAfter)
	if len(removed) == 0 {
		return
	}

	for _, icao := range removed {
		g.log.Debug("Target expired", logger.Hex("icao", uint64(icao)))
		if g.hub != nil {
			g.hub.BroadcastTargetRemoved(icao)
		}
	}
	g.collector.SetActiveTargets(g.table.Count())
	g.log.Info("Stale targets removed",
		logger.Int("count", len(removed)),
		logger.Int("active", g.table.Count()))
}

func (g *gateway) flushSightings() {
	if g.sightings == nil || len(g.pending) == 0 {
		return
	}

	if err := g.sightings.CreateBatch(g.pending); err != nil {
		g.log.Error("Failed to store sightings",
			logger.Error(err),
			logger.Int("count", len(g.pending)))
	}
	g.pending = g.pending[:0]
}

// runCapturePump copies raw datagrams from the receiver tap into the
// capture log.
func runCapturePump(ctx context.Context, rcv *network.Receiver, w *capture.Writer, collector *metrics.Collector, log *logger.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case pkt := <-rcv.RawPackets():
			if err := w.Write(pkt.Time, pkt.Data); err != nil {
				log.Error("Failed to write capture record", logger.Error(err))
				continue
			}
			collector.CaptureRecordWritten()
		}
	}
}
