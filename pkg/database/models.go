package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// CaptureSession represents one recording session of the receiver
type CaptureSession struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	StartedAt      time.Time `gorm:"index;not null" json:"started_at"`
	EndedAt        time.Time `json:"ended_at"` // zero while the session is open
	CapturePath    string    `gorm:"size:255" json:"capture_path"`
	FramesReceived uint64    `gorm:"default:0" json:"frames_received"`
	ValidFrames    uint64    `gorm:"default:0" json:"valid_frames"`
	CRCErrors      uint64    `gorm:"default:0" json:"crc_errors"`
	BytesReceived  uint64    `gorm:"default:0" json:"bytes_received"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for CaptureSession
func (CaptureSession) TableName() string {
	return "capture_sessions"
}

// BeforeCreate hook to ensure StartedAt is set
func (s *CaptureSession) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	return nil
}

// Open reports whether the session has not been ended yet
func (s *CaptureSession) Open() bool {
	return s.EndedAt.IsZero()
}

// Duration returns the session length, or the time elapsed so far for an
// open session
func (s *CaptureSession) Duration() time.Duration {
	if s.Open() {
		return time.Since(s.StartedAt)
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// TrafficSighting represents one decoded ownship or traffic report
type TrafficSighting struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	SessionID     uint      `gorm:"index" json:"session_id"`
	ReceivedAt    time.Time `gorm:"index;not null" json:"received_at"`
	MessageID     uint8     `gorm:"not null" json:"message_id"`
	ICAO          uint32    `gorm:"index;not null" json:"icao"`
	Callsign      string    `gorm:"index;size:8" json:"callsign"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	Altitude      int32     `json:"altitude"`
	GroundSpeed   uint16    `json:"ground_speed"`
	VerticalSpeed int32     `json:"vertical_speed"`
	Track         float64   `json:"track"`
	Emitter       uint8     `json:"emitter"`
	Airborne      bool      `json:"airborne"`
	RawFrame      string    `gorm:"size:128" json:"raw_frame"` // hex encoded
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for TrafficSighting
func (TrafficSighting) TableName() string {
	return "traffic_sightings"
}

// BeforeCreate hook to ensure ReceivedAt is set
func (s *TrafficSighting) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.ReceivedAt.IsZero() {
		s.ReceivedAt = time.Now()
	}
	return nil
}

// ICAOHex returns the participant address formatted as six hex digits
func (s *TrafficSighting) ICAOHex() string {
	return fmt.Sprintf("%06X", s.ICAO)
}
