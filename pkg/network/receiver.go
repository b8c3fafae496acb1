package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/config"
	"github.com/dbehnke/gdl90-nexus/pkg/gdl90"
	"github.com/dbehnke/gdl90-nexus/pkg/logger"
	"github.com/dbehnke/gdl90-nexus/pkg/metrics"
)

// eventQueueSize is the depth of the decoded-message channel. Consumers
// that fall behind lose events rather than stalling the receive loop.
const eventQueueSize = 256

// Event is one decoded message with its arrival metadata. Frame holds the
// framed bytes as received, flags included.
type Event struct {
	Message gdl90.Message
	Frame   []byte
	Addr    *net.UDPAddr
	Time    time.Time
}

// RawPacket is one datagram exactly as it arrived on the wire.
type RawPacket struct {
	Time time.Time
	Data []byte
}

// Receiver owns the listening UDP socket and decodes inbound frames
type Receiver struct {
	config  config.ReceiveConfig
	log     *logger.Logger
	conn    *net.UDPConn
	metrics *metrics.Collector

	events chan Event
	rawTap chan RawPacket

	// started is closed once the UDP listener is bound and ready
	started chan struct{}
}

// NewReceiver creates a receiver for the configured listen endpoint
func NewReceiver(cfg config.ReceiveConfig, collector *metrics.Collector, log *logger.Logger) *Receiver {
	return &Receiver{
		config:  cfg,
		log:     log.WithComponent("network.receiver"),
		metrics: collector,
		events:  make(chan Event, eventQueueSize),
		started: make(chan struct{}),
	}
}

// WithRawTap attaches a channel that receives a copy of every datagram,
// used to feed the capture log
func (r *Receiver) WithRawTap(buffer int) *Receiver {
	r.rawTap = make(chan RawPacket, buffer)
	return r
}

// Events returns the decoded-message channel
func (r *Receiver) Events() <-chan Event {
	return r.events
}

// RawPackets returns the raw datagram tap, or nil when no tap is attached
func (r *Receiver) RawPackets() <-chan RawPacket {
	return r.rawTap
}

// Start binds the listening socket and runs the receive loop until the
// context is canceled
func (r *Receiver) Start(ctx context.Context) error {
	localAddr := &net.UDPAddr{
		IP:   net.ParseIP(r.config.Host),
		Port: r.config.Port,
	}

	conn, err := net.ListenUDP("udp", localAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on UDP: %w", err)
	}
	r.conn = conn
	// Signal that the receiver is ready to accept datagrams
	select {
	case <-r.started: // already closed
	default:
		close(r.started)
	}
	defer func() {
		_ = r.conn.Close()
	}()

	r.log.Info("Receiver started",
		logger.String("addr", conn.LocalAddr().String()),
		logger.Int("buffer", r.config.BufferSize))

	return r.receiveLoop(ctx)
}

// WaitStarted blocks until the UDP listener is bound or the context is canceled.
func (r *Receiver) WaitStarted(ctx context.Context) error {
	select {
	case <-r.started:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Addr returns the local UDP address the receiver is bound to. It should be called after WaitStarted.
func (r *Receiver) Addr() (*net.UDPAddr, error) {
	if r.conn == nil {
		return nil, fmt.Errorf("receiver not started")
	}
	addr := r.conn.LocalAddr()
	udpAddr, ok := addr.(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("not a UDP address")
	}
	return udpAddr, nil
}

// receiveLoop continuously receives and processes datagrams
func (r *Receiver) receiveLoop(ctx context.Context) error {
	bufferSize := r.config.BufferSize
	if bufferSize <= 0 {
		bufferSize = 4096
	}
	buffer := make([]byte, bufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Set read deadline to allow context checking
		if err := r.conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond)); err != nil {
			r.log.Warn("Failed to set read deadline", logger.Error(err))
			continue
		}
		n, addr, err := r.conn.ReadFromUDP(buffer)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			r.log.Error("Failed to read from UDP", logger.Error(err))
			continue
		}

		r.handleDatagram(buffer[:n], addr, time.Now())
	}
}

// handleDatagram scans one datagram for frames and dispatches every
// candidate
func (r *Receiver) handleDatagram(data []byte, addr *net.UDPAddr, now time.Time) {
	if len(data) == 0 {
		// Empty UDP packets can happen (spurious wake-ups, etc.) - ignore silently
		return
	}

	if r.rawTap != nil {
		packet := RawPacket{Time: now, Data: append([]byte(nil), data...)}
		select {
		case r.rawTap <- packet:
		default:
			r.log.Debug("Raw tap full, datagram not captured",
				logger.Int("size", len(data)))
		}
	}

	scanner := gdl90.NewFrameScanner(data)
	for {
		frame, ok := scanner.Next()
		if !ok {
			break
		}

		r.metrics.FrameReceived(len(frame))

		msg, err := gdl90.DecodeFrame(frame)
		if err != nil {
			r.countDecodeFailure(err, addr)
			continue
		}

		r.metrics.FrameValid(msg.MessageID())
		r.log.Debug("Decoded message",
			logger.Hex("message_id", uint64(msg.MessageID())),
			logger.String("addr", addr.String()),
			logger.Int("size", len(frame)))

		// The scanner hands out subslices of the reused read buffer.
		event := Event{
			Message: msg,
			Frame:   append([]byte(nil), frame...),
			Addr:    addr,
			Time:    now,
		}
		select {
		case r.events <- event:
		default:
			r.metrics.EventDropped()
			r.log.Debug("Event queue full, message dropped",
				logger.Hex("message_id", uint64(msg.MessageID())))
		}
	}
}

// countDecodeFailure classifies a frame decode error into the right counter
func (r *Receiver) countDecodeFailure(err error, addr *net.UDPAddr) {
	var crcErr *gdl90.CRCMismatchError
	if errors.As(err, &crcErr) {
		r.metrics.CRCError()
		r.log.Debug("CRC mismatch",
			logger.Uint16("received", crcErr.Received),
			logger.Uint16("computed", crcErr.Computed),
			logger.String("addr", addr.String()))
		return
	}

	r.metrics.DecodeError()
	r.log.Debug("Failed to decode frame",
		logger.Error(err),
		logger.String("addr", addr.String()))
}
