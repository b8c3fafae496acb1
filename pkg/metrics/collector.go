package metrics

import (
	"fmt"
	"sync"
)

// Collector collects gateway statistics: frame totals, integrity failures
// and per-message-type counts.
type Collector struct {
	mu sync.RWMutex

	// Receive path
	framesReceived uint64
	bytesReceived  uint64
	validFrames    uint64
	crcErrors      uint64
	decodeErrors   uint64
	eventsDropped  uint64

	// Send path
	framesSent uint64
	bytesSent  uint64

	// Capture log
	captureRecords uint64

	// Gauges
	activeTargets int

	// Decoded message counts keyed by message ID
	messageTypes map[byte]uint64
}

// Snapshot is a point-in-time copy of all counters, shaped for JSON
// reporting. Message type keys are hex strings ("0x0A").
type Snapshot struct {
	FramesReceived uint64            `json:"frames_received"`
	ValidFrames    uint64            `json:"valid_frames"`
	CRCErrors      uint64            `json:"crc_errors"`
	DecodeErrors   uint64            `json:"decode_errors"`
	FramesSent     uint64            `json:"frames_sent"`
	BytesReceived  uint64            `json:"bytes_received"`
	BytesSent      uint64            `json:"bytes_sent"`
	EventsDropped  uint64            `json:"events_dropped"`
	CaptureRecords uint64            `json:"capture_records"`
	ActiveTargets  int               `json:"active_targets"`
	MessageTypes   map[string]uint64 `json:"message_types"`
}

// NewCollector creates a new metrics collector
func NewCollector() *Collector {
	return &Collector{
		messageTypes: make(map[byte]uint64),
	}
}

// FrameReceived records one candidate frame arriving from the wire
func (c *Collector) FrameReceived(bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.framesReceived++
	c.bytesReceived += uint64(bytes)
}

// FrameValid records a frame that passed CRC and decoded, by message ID
func (c *Collector) FrameValid(messageID byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.validFrames++
	c.messageTypes[messageID]++
}

// CRCError records a frame rejected by its checksum
func (c *Collector) CRCError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.crcErrors++
}

// DecodeError records a malformed frame or wrong-length body
func (c *Collector) DecodeError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.decodeErrors++
}

// EventDropped records a decoded message discarded because the consumer
// channel was full
func (c *Collector) EventDropped() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.eventsDropped++
}

// FrameSent records one frame written to the wire
func (c *Collector) FrameSent(bytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.framesSent++
	c.bytesSent += uint64(bytes)
}

// CaptureRecordWritten records one record appended to the capture log
func (c *Collector) CaptureRecordWritten() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.captureRecords++
}

// SetActiveTargets updates the traffic table size gauge
func (c *Collector) SetActiveTargets(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.activeTargets = n
}

// Snapshot returns a copy of all counters
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	types := make(map[string]uint64, len(c.messageTypes))
	for id, n := range c.messageTypes {
		types[fmt.Sprintf("0x%02X", id)] = n
	}

	return Snapshot{
		FramesReceived: c.framesReceived,
		ValidFrames:    c.validFrames,
		CRCErrors:      c.crcErrors,
		DecodeErrors:   c.decodeErrors,
		FramesSent:     c.framesSent,
		BytesReceived:  c.bytesReceived,
		BytesSent:      c.bytesSent,
		EventsDropped:  c.eventsDropped,
		CaptureRecords: c.captureRecords,
		ActiveTargets:  c.activeTargets,
		MessageTypes:   types,
	}
}

// Reset clears the per-type map and gauges (useful for testing)
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messageTypes = make(map[byte]uint64)
	c.activeTargets = 0
	// Cumulative counters are left alone
}

// Getters for metrics

// GetFramesReceived returns total candidate frames received
func (c *Collector) GetFramesReceived() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.framesReceived
}

// GetValidFrames returns total frames that decoded cleanly
func (c *Collector) GetValidFrames() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.validFrames
}

// GetCRCErrors returns total CRC rejections
func (c *Collector) GetCRCErrors() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.crcErrors
}

// GetDecodeErrors returns total malformed or wrong-length frames
func (c *Collector) GetDecodeErrors() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decodeErrors
}

// GetEventsDropped returns total decoded messages dropped on full channels
func (c *Collector) GetEventsDropped() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eventsDropped
}

// GetFramesSent returns total frames sent
func (c *Collector) GetFramesSent() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.framesSent
}

// GetBytesReceived returns total bytes received
func (c *Collector) GetBytesReceived() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytesReceived
}

// GetBytesSent returns total bytes sent
func (c *Collector) GetBytesSent() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bytesSent
}

// GetCaptureRecords returns total capture log records written
func (c *Collector) GetCaptureRecords() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.captureRecords
}

// GetActiveTargets returns the traffic table size gauge
func (c *Collector) GetActiveTargets() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeTargets
}
