package database

import (
	"encoding/hex"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/gdl90"
	"gorm.io/gorm"
)

// SessionRepository handles capture session database operations
type SessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Begin opens a new capture session record
func (r *SessionRepository) Begin(capturePath string) (*CaptureSession, error) {
	session := &CaptureSession{
		StartedAt:   time.Now(),
		CapturePath: capturePath,
	}
	if err := r.db.Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// End stamps the session as finished and stores the final counters
func (r *SessionRepository) End(session *CaptureSession) error {
	session.EndedAt = time.Now()
	return r.db.Save(session).Error
}

// Get retrieves a session by ID
func (r *SessionRepository) Get(id uint) (*CaptureSession, error) {
	var session CaptureSession
	if err := r.db.First(&session, id).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

// GetRecent retrieves the most recent N sessions
func (r *SessionRepository) GetRecent(limit int) ([]CaptureSession, error) {
	var sessions []CaptureSession
	err := r.db.Order("started_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}

// SightingRepository handles traffic sighting database operations
type SightingRepository struct {
	db *gorm.DB
}

// NewSightingRepository creates a new sighting repository
func NewSightingRepository(db *gorm.DB) *SightingRepository {
	return &SightingRepository{db: db}
}

// Create adds a single sighting record
func (r *SightingRepository) Create(s *TrafficSighting) error {
	return r.db.Create(s).Error
}

// CreateBatch inserts a slice of sightings in chunked statements
func (r *SightingRepository) CreateBatch(sightings []TrafficSighting) error {
	if len(sightings) == 0 {
		return nil
	}
	return r.db.CreateInBatches(sightings, 100).Error
}

// GetRecent retrieves the most recent N sightings
func (r *SightingRepository) GetRecent(limit int) ([]TrafficSighting, error) {
	var sightings []TrafficSighting
	err := r.db.Order("received_at DESC").Limit(limit).Find(&sightings).Error
	return sightings, err
}

// GetByICAO retrieves sightings of a specific aircraft
func (r *SightingRepository) GetByICAO(icao uint32, limit int) ([]TrafficSighting, error) {
	var sightings []TrafficSighting
	err := r.db.Where("icao = ?", icao).
		Order("received_at DESC").
		Limit(limit).
		Find(&sightings).Error
	return sightings, err
}

// GetBySession retrieves sightings recorded during one capture session
func (r *SightingRepository) GetBySession(sessionID uint, limit int) ([]TrafficSighting, error) {
	var sightings []TrafficSighting
	err := r.db.Where("session_id = ?", sessionID).
		Order("received_at DESC").
		Limit(limit).
		Find(&sightings).Error
	return sightings, err
}

// GetByTimeRange retrieves sightings within a time range
func (r *SightingRepository) GetByTimeRange(start, end time.Time, limit int) ([]TrafficSighting, error) {
	var sightings []TrafficSighting
	err := r.db.Where("received_at BETWEEN ? AND ?", start, end).
		Order("received_at DESC").
		Limit(limit).
		Find(&sightings).Error
	return sightings, err
}

// DeleteOlderThan deletes sightings older than the specified time
func (r *SightingRepository) DeleteOlderThan(before time.Time) (int64, error) {
	result := r.db.Where("received_at < ?", before).Delete(&TrafficSighting{})
	return result.RowsAffected, result.Error
}

// GetActiveICAOs retrieves aircraft addresses seen within the last N seconds
func (r *SightingRepository) GetActiveICAOs(withinSeconds int) ([]uint32, error) {
	var icaos []uint32
	cutoff := time.Now().Add(-time.Duration(withinSeconds) * time.Second)

	err := r.db.Model(&TrafficSighting{}).
		Where("received_at > ?", cutoff).
		Distinct("icao").
		Pluck("icao", &icaos).Error

	return icaos, err
}

// SightingFromReport builds a sighting row from a decoded position report.
// The raw frame (flags included) is kept hex encoded for later inspection.
func SightingFromReport(sessionID uint, receivedAt time.Time, report *gdl90.PositionReport, frame []byte) *TrafficSighting {
	return &TrafficSighting{
		SessionID:     sessionID,
		ReceivedAt:    receivedAt,
		MessageID:     report.MessageID(),
		ICAO:          report.ICAO,
		Callsign:      report.Callsign,
		Latitude:      report.Latitude,
		Longitude:     report.Longitude,
		Altitude:      report.Altitude,
		GroundSpeed:   report.HorizontalVelocity,
		VerticalSpeed: report.VerticalVelocity,
		Track:         report.Track,
		Emitter:       report.Emitter,
		Airborne:      report.Misc&gdl90.MiscAirborne != 0,
		RawFrame:      hex.EncodeToString(frame),
	}
}
