package testhelpers

import (
	"net"
	"sync"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/gdl90"
)

// MockDevice simulates a GDL-90 device (an ADS-B receiver or an EFB) for
// testing. It owns one bound UDP socket, so the same device can feed frames
// at a gateway and collect whatever a broadcaster sends back.
type MockDevice struct {
	Callsign string
	ICAO     uint32
	conn     *net.UDPConn
	remote   *net.UDPAddr
	mu       sync.RWMutex
	packets  [][]byte
	closed   bool
}

// NewMockDevice creates a mock device bound to an ephemeral loopback port.
func NewMockDevice(callsign string, icao uint32) (*MockDevice, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0})
	if err != nil {
		return nil, err
	}

	return &MockDevice{
		Callsign: callsign,
		ICAO:     icao,
		conn:     conn,
		packets:  make([][]byte, 0),
	}, nil
}

// Addr returns the device's bound address, the target a broadcaster under
// test should be pointed at.
func (m *MockDevice) Addr() *net.UDPAddr {
	return m.conn.LocalAddr().(*net.UDPAddr)
}

// Connect points the device at a gateway endpoint for sending.
func (m *MockDevice) Connect(gatewayAddr string) error {
	addr, err := net.ResolveUDPAddr("udp", gatewayAddr)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.remote = addr
	m.mu.Unlock()
	return nil
}

// SendMessage frames a message and sends it at the connected gateway.
func (m *MockDevice) SendMessage(msg gdl90.Message) error {
	return m.SendRaw(gdl90.EncodeFrame(msg))
}

// SendHeartbeat sends a heartbeat with the given UTC timestamp.
func (m *MockDevice) SendHeartbeat(timestamp uint32) error {
	return m.SendMessage(&gdl90.Heartbeat{
		GPSPosValid:    true,
		UATInitialized: true,
		UTCOK:          true,
		Timestamp:      timestamp,
	})
}

// SendOwnship sends an ownship report for the device's own identity.
func (m *MockDevice) SendOwnship(lat, lon float64, altFeet int32) error {
	return m.SendMessage(&gdl90.PositionReport{
		ICAO:          m.ICAO,
		Latitude:      lat,
		Longitude:     lon,
		Altitude:      altFeet,
		AltitudeValid: true,
		Misc:          gdl90.MiscAirborne | gdl90.MiscTrackTypeTrueTrack,
		NIC:           10,
		NACp:          10,
		Emitter:       gdl90.EmitterLight,
		Callsign:      m.Callsign,
	})
}

// SendTraffic sends a traffic report for another aircraft.
func (m *MockDevice) SendTraffic(report *gdl90.PositionReport) error {
	report.Traffic = true
	return m.SendMessage(report)
}

// SendRaw sends arbitrary bytes at the connected gateway.
func (m *MockDevice) SendRaw(data []byte) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.conn == nil || m.remote == nil {
		return nil
	}

	_, err := m.conn.WriteToUDP(data, m.remote)
	return err
}

// ReceiveDatagram waits up to timeout for one datagram and records it.
func (m *MockDevice) ReceiveDatagram(timeout time.Duration) ([]byte, error) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil {
		return nil, nil
	}

	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}
	buf := make([]byte, 1500)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		return nil, err
	}

	packet := make([]byte, n)
	copy(packet, buf[:n])

	m.mu.Lock()
	m.packets = append(m.packets, packet)
	m.mu.Unlock()

	return packet, nil
}

// GetReceivedPackets returns all recorded datagrams.
func (m *MockDevice) GetReceivedPackets() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	packets := make([][]byte, len(m.packets))
	copy(packets, m.packets)
	return packets
}

// DecodeReceived scans every recorded datagram for frames and returns the
// messages that decode cleanly.
func (m *MockDevice) DecodeReceived() []gdl90.Message {
	var messages []gdl90.Message
	for _, packet := range m.GetReceivedPackets() {
		scanner := gdl90.NewFrameScanner(packet)
		for {
			frame, ok := scanner.Next()
			if !ok {
				break
			}
			msg, err := gdl90.DecodeFrame(frame)
			if err != nil {
				continue
			}
			messages = append(messages, msg)
		}
	}
	return messages
}

// Close closes the device socket.
func (m *MockDevice) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}

// IsConnected returns whether the device has a gateway endpoint configured.
func (m *MockDevice) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remote != nil && !m.closed
}
