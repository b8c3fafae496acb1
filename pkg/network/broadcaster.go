package network

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/config"
	"github.com/dbehnke/gdl90-nexus/pkg/gdl90"
	"github.com/dbehnke/gdl90-nexus/pkg/logger"
	"github.com/dbehnke/gdl90-nexus/pkg/metrics"
	"github.com/dbehnke/gdl90-nexus/pkg/traffic"
)

// OwnshipSource supplies the current own-aircraft state. The bool is
// false when no valid position is available.
type OwnshipSource interface {
	OwnshipFix() (traffic.Fix, bool)
}

// TrafficSource supplies the targets to broadcast each position cycle.
type TrafficSource interface {
	Active() []traffic.TargetSnapshot
}

// Broadcaster owns the outbound UDP socket and emits the periodic
// message schedule: heartbeats, ownship reports, and one traffic report
// per active target
type Broadcaster struct {
	config  config.BroadcastConfig
	station config.StationConfig
	log     *logger.Logger
	conn    *net.UDPConn
	metrics *metrics.Collector

	ownship OwnshipSource
	traffic TrafficSource

	icao     uint32
	callsign string

	foreflightInterval time.Duration

	// started is closed once the UDP socket is connected
	started chan struct{}

	// position/traffic frames sent since the last heartbeat
	sinceHeartbeat uint16
	countMu        sync.Mutex
}

// NewBroadcaster creates a broadcaster for the configured target
func NewBroadcaster(cfg config.BroadcastConfig, station config.StationConfig, collector *metrics.Collector, log *logger.Logger) *Broadcaster {
	return &Broadcaster{
		config:             cfg,
		station:            station,
		log:                log.WithComponent("network.broadcaster"),
		metrics:            collector,
		foreflightInterval: 5 * time.Second,
		started:            make(chan struct{}),
	}
}

// WithOwnship injects the ownship state source
func (b *Broadcaster) WithOwnship(src OwnshipSource) *Broadcaster {
	b.ownship = src
	return b
}

// WithTraffic injects the traffic target source
func (b *Broadcaster) WithTraffic(src TrafficSource) *Broadcaster {
	b.traffic = src
	return b
}

// Start connects the outbound socket and runs the send schedule until
// the context is canceled
func (b *Broadcaster) Start(ctx context.Context) error {
	icao, err := b.station.ICAOAddress()
	if err != nil {
		return fmt.Errorf("invalid station ICAO: %w", err)
	}
	b.icao = icao
	b.callsign = b.station.Callsign

	target := fmt.Sprintf("%s:%d", b.config.TargetHost, b.config.TargetPort)
	raddr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return fmt.Errorf("failed to resolve target address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return fmt.Errorf("failed to dial target: %w", err)
	}
	b.conn = conn
	select {
	case <-b.started: // already closed
	default:
		close(b.started)
	}
	defer func() {
		_ = b.conn.Close()
	}()

	b.log.Info("Broadcaster started",
		logger.String("target", target),
		logger.Hex("icao", uint64(b.icao)),
		logger.Float64("heartbeat_rate", b.config.HeartbeatRate),
		logger.Float64("position_rate", b.config.PositionRate))

	errChan := make(chan error, 3)

	go func() {
		errChan <- b.heartbeatLoop(ctx)
	}()

	go func() {
		errChan <- b.positionLoop(ctx)
	}()

	if b.config.ForeFlightID {
		go func() {
			errChan <- b.foreflightLoop(ctx)
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// WaitStarted blocks until the outbound socket is connected or the context is canceled.
func (b *Broadcaster) WaitStarted(ctx context.Context) error {
	select {
	case <-b.started:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// heartbeatLoop emits one heartbeat per heartbeat interval
func (b *Broadcaster) heartbeatLoop(ctx context.Context) error {
	ticker := time.NewTicker(rateToInterval(b.config.HeartbeatRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.sendHeartbeat()
		}
	}
}

// positionLoop emits the ownship report and all traffic reports per
// position interval
func (b *Broadcaster) positionLoop(ctx context.Context) error {
	ticker := time.NewTicker(rateToInterval(b.config.PositionRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.sendPositions()
		}
	}
}

// foreflightLoop emits the EFB identity message every few seconds
func (b *Broadcaster) foreflightLoop(ctx context.Context) error {
	ticker := time.NewTicker(b.foreflightInterval)
	defer ticker.Stop()

	ident := &gdl90.ForeFlightID{
		ShortName: "GDL90NX",
		LongName:  "GDL90 Nexus",
		MSLAlt:    true,
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if b.sendFrame(ident) {
				b.log.Debug("Sent ForeFlight ID")
			}
		}
	}
}

func (b *Broadcaster) sendHeartbeat() {
	posValid := false
	if b.ownship != nil {
		_, posValid = b.ownship.OwnshipFix()
	}

	now := time.Now().UTC()
	hb := &gdl90.Heartbeat{
		GPSPosValid:    posValid,
		UATInitialized: true,
		UTCOK:          true,
		Timestamp:      uint32(now.Hour()*3600 + now.Minute()*60 + now.Second()),
		BasicLongCount: b.takeSinceHeartbeat(),
	}

	if b.sendFrame(hb) {
		b.log.Debug("Sent heartbeat",
			logger.Int("timestamp", int(hb.Timestamp)),
			logger.Int("message_count", int(hb.BasicLongCount)))
	}
}

func (b *Broadcaster) sendPositions() {
	if b.ownship != nil {
		if fix, ok := b.ownship.OwnshipFix(); ok {
			if b.sendFrame(b.ownshipReport(fix)) {
				b.countPositionFrame()
			}
		}
	}

	if b.traffic == nil {
		return
	}
	for _, snap := range b.traffic.Active() {
		if b.sendFrame(snap.Report()) {
			b.countPositionFrame()
		}
	}
}

// ownshipReport builds the 0x0A report from the station identity and a fix
func (b *Broadcaster) ownshipReport(fix traffic.Fix) *gdl90.PositionReport {
	misc := gdl90.MiscTrackTypeTrueTrack
	if fix.Airborne {
		misc |= gdl90.MiscAirborne
	}
	return &gdl90.PositionReport{
		ICAO:                    b.icao,
		Latitude:                fix.Latitude,
		Longitude:               fix.Longitude,
		Altitude:                fix.Altitude,
		AltitudeValid:           fix.AltitudeValid,
		Misc:                    misc,
		NIC:                     uint8(b.station.NIC),
		NACp:                    uint8(b.station.NACp),
		HorizontalVelocity:      fix.GroundSpeed,
		HorizontalVelocityValid: fix.GroundSpeedValid,
		VerticalVelocity:        fix.VerticalSpeed,
		VerticalVelocityValid:   fix.VerticalSpeedValid,
		Track:                   fix.Track,
		Emitter:                 uint8(b.station.Emitter),
		Callsign:                b.callsign,
	}
}

// sendFrame frames and transmits one message, reporting success
func (b *Broadcaster) sendFrame(msg gdl90.Message) bool {
	frame := gdl90.EncodeFrame(msg)
	if _, err := b.conn.Write(frame); err != nil {
		b.log.Error("Failed to send frame",
			logger.Hex("message_id", uint64(msg.MessageID())),
			logger.Error(err))
		return false
	}
	b.metrics.FrameSent(len(frame))
	return true
}

func (b *Broadcaster) countPositionFrame() {
	b.countMu.Lock()
	if b.sinceHeartbeat < 0x7FF {
		b.sinceHeartbeat++
	}
	b.countMu.Unlock()
}

// takeSinceHeartbeat returns the frames sent since the previous
// heartbeat and resets the counter
func (b *Broadcaster) takeSinceHeartbeat() uint16 {
	b.countMu.Lock()
	defer b.countMu.Unlock()
	n := b.sinceHeartbeat
	b.sinceHeartbeat = 0
	return n
}

// rateToInterval converts a messages-per-second rate to a tick interval
func rateToInterval(rate float64) time.Duration {
	if rate <= 0 {
		rate = 1
	}
	return time.Duration(float64(time.Second) / rate)
}
