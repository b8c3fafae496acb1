// gdl90sim sends GDL-90 traffic at a UDP endpoint for testing receivers.
// Simulate mode flies a synthetic circuit and emits the standard message
// schedule; replay mode plays back a capture log with the recorded timing.
// Both print a JSON statistics report on exit.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/capture"
	"github.com/dbehnke/gdl90-nexus/pkg/config"
	"github.com/dbehnke/gdl90-nexus/pkg/logger"
	"github.com/dbehnke/gdl90-nexus/pkg/metrics"
	"github.com/dbehnke/gdl90-nexus/pkg/network"
	"github.com/dbehnke/gdl90-nexus/pkg/simulator"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// simStepInterval is how often the synthetic world advances in wall time.
const simStepInterval = 250 * time.Millisecond

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		logLevel    = flag.String("log-level", "info", "Log level (debug, info, warn, error)")

		targetHost = flag.String("target-host", "127.0.0.1", "Destination host")
		targetPort = flag.Int("target-port", 4000, "Destination UDP port")
		duration   = flag.Duration("duration", 0, "Stop after this long (0 runs until interrupted)")

		replayPath  = flag.String("replay", "", "Replay this capture file instead of simulating")
		replaySpeed = flag.Float64("speed", 1.0, "Replay speed factor (2 is twice as fast, 0 disables pacing)")

		callsign      = flag.String("callsign", "N12345", "Ownship callsign")
		icao          = flag.String("icao", "0xABCDEF", "Ownship ICAO address, hex with 0x prefix or decimal")
		heartbeatRate = flag.Float64("heartbeat-rate", 1.0, "Heartbeats per second")
		positionRate  = flag.Float64("position-rate", 2.0, "Position cycles per second")
		foreflight    = flag.Bool("foreflight-id", true, "Send ForeFlight identity messages")

		centerLat    = flag.Float64("center-lat", simulator.DefaultConfig().CenterLatitude, "Circuit center latitude")
		centerLon    = flag.Float64("center-lon", simulator.DefaultConfig().CenterLongitude, "Circuit center longitude")
		radiusNM     = flag.Float64("radius-nm", simulator.DefaultConfig().RadiusNM, "Circuit radius in nautical miles")
		groundSpeed  = flag.Int("ground-speed", int(simulator.DefaultConfig().GroundSpeed), "Ownship ground speed in knots")
		altitude     = flag.Int("altitude", int(simulator.DefaultConfig().Altitude), "Base altitude in feet")
		climb        = flag.Int("climb", int(simulator.DefaultConfig().ClimbAmplitude), "Climb/descend amplitude in feet")
		trafficCount = flag.Int("traffic", simulator.DefaultConfig().TrafficCount, "Number of synthetic traffic targets")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("gdl90sim %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	log := logger.New(logger.Config{
		Level:  *logLevel,
		Format: "text",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	target := fmt.Sprintf("%s:%d", *targetHost, *targetPort)

	var (
		report interface{}
		err    error
	)
	if *replayPath != "" {
		report, err = runReplay(ctx, *replayPath, target, *replaySpeed, log)
	} else {
		simCfg := simulateConfig{
			Station: config.StationConfig{
				Callsign: *callsign,
				ICAO:     *icao,
				Emitter:  1,
				NIC:      11,
				NACp:     11,
			},
			Broadcast: config.BroadcastConfig{
				Enabled:       true,
				TargetHost:    *targetHost,
				TargetPort:    *targetPort,
				HeartbeatRate: *heartbeatRate,
				PositionRate:  *positionRate,
				ForeFlightID:  *foreflight,
			},
			Sim: simulator.Config{
				CenterLatitude:  *centerLat,
				CenterLongitude: *centerLon,
				RadiusNM:        *radiusNM,
				GroundSpeed:     uint16(*groundSpeed),
				Altitude:        int32(*altitude),
				ClimbAmplitude:  int32(*climb),
				TrafficCount:    *trafficCount,
			},
		}
		report, err = runSimulate(ctx, simCfg, log)
	}

	printReport(report)

	if err != nil {
		log.Error("Run failed", logger.Error(err))
		os.Exit(1)
	}
}

// simulateConfig bundles everything simulate mode needs.
type simulateConfig struct {
	Station   config.StationConfig
	Broadcast config.BroadcastConfig
	Sim       simulator.Config
}

// runSimulate drives the broadcaster from a synthetic world until the
// context ends, then reports what was sent.
func runSimulate(ctx context.Context, cfg simulateConfig, log *logger.Logger) (metrics.Snapshot, error) {
	sim := simulator.New(cfg.Sim)
	collector := metrics.NewCollector()

	broadcaster := network.NewBroadcaster(cfg.Broadcast, cfg.Station, collector, log).
		WithOwnship(sim).
		WithTraffic(sim)

	errChan := make(chan error, 1)
	go func() {
		errChan <- broadcaster.Start(ctx)
	}()

	log.Info("Simulation started",
		logger.String("target", fmt.Sprintf("%s:%d", cfg.Broadcast.TargetHost, cfg.Broadcast.TargetPort)),
		logger.String("callsign", cfg.Station.Callsign),
		logger.Int("traffic", cfg.Sim.TrafficCount))

	ticker := time.NewTicker(simStepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			err := <-errChan
			if err == context.Canceled || err == context.DeadlineExceeded {
				err = nil
			}
			return collector.Snapshot(), err
		case err := <-errChan:
			// The broadcaster quit on its own, before the context ended
			return collector.Snapshot(), err
		case <-ticker.C:
			sim.Advance(simStepInterval)
		}
	}
}

// runReplay streams a capture file at the target with the recorded pacing.
func runReplay(ctx context.Context, path, target string, speed float64, log *logger.Logger) (capture.ReplayStats, error) {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return capture.ReplayStats{}, fmt.Errorf("failed to dial target: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	log.Info("Replaying capture",
		logger.String("path", path),
		logger.String("target", target),
		logger.Float64("speed", speed))

	stats, err := capture.Replay(ctx, path, conn, speed)
	if err == context.Canceled || err == context.DeadlineExceeded {
		err = nil
	}
	return stats, err
}

func printReport(report interface{}) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return
	}
	fmt.Println(string(out))
}
