package traffic

import (
	"sync"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/gdl90"
)

// Fix is one position sample for an aircraft.
type Fix struct {
	Latitude  float64 // degrees, positive north
	Longitude float64 // degrees, positive east

	Altitude      int32 // pressure altitude, feet
	AltitudeValid bool

	GroundSpeed      uint16 // knots
	GroundSpeedValid bool

	VerticalSpeed      int32 // feet per minute
	VerticalSpeedValid bool

	Track    float64 // degrees
	Airborne bool
}

// Update carries the fields of one traffic report into the table.
type Update struct {
	Callsign string
	Emitter  uint8
	Alert    bool
	NIC      uint8
	NACp     uint8
	Fix      Fix
}

// Target represents one tracked aircraft
type Target struct {
	ICAO     uint32
	Callsign string
	Emitter  uint8
	Alert    bool
	NIC      uint8
	NACp     uint8
	Fix      Fix

	// Tracking
	FirstSeen time.Time
	LastSeen  time.Time
	Reports   uint64

	mu sync.RWMutex
}

// TargetSnapshot is a copy of a target's state, safe to hand to other
// goroutines.
type TargetSnapshot struct {
	ICAO      uint32
	Callsign  string
	Emitter   uint8
	Alert     bool
	NIC       uint8
	NACp      uint8
	Fix       Fix
	FirstSeen time.Time
	LastSeen  time.Time
	Reports   uint64
}

// NewTarget creates a new target with the given ICAO address
func NewTarget(icao uint32) *Target {
	return &Target{
		ICAO:      icao,
		FirstSeen: time.Now(),
	}
}

// Apply merges one report into the target and bumps the last-seen time
func (t *Target) Apply(u Update) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if u.Callsign != "" {
		t.Callsign = u.Callsign
	}
	t.Emitter = u.Emitter
	t.Alert = u.Alert
	t.NIC = u.NIC
	t.NACp = u.NACp
	t.Fix = u.Fix
	t.LastSeen = time.Now()
	t.Reports++
}

// GetFix returns the most recent position sample
func (t *Target) GetFix() Fix {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Fix
}

// GetLastSeen returns the last report timestamp
func (t *Target) GetLastSeen() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.LastSeen
}

// IsStale checks if the target has gone unseen for the given duration
func (t *Target) IsStale(timeout time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	// Never updated counts as stale
	if t.LastSeen.IsZero() {
		return true
	}

	return time.Since(t.LastSeen) > timeout
}

// Snapshot returns a copy of the target's state
func (t *Target) Snapshot() TargetSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return TargetSnapshot{
		ICAO:      t.ICAO,
		Callsign:  t.Callsign,
		Emitter:   t.Emitter,
		Alert:     t.Alert,
		NIC:       t.NIC,
		NACp:      t.NACp,
		Fix:       t.Fix,
		FirstSeen: t.FirstSeen,
		LastSeen:  t.LastSeen,
		Reports:   t.Reports,
	}
}

// FromReport converts a decoded position report into a table update.
func FromReport(r *gdl90.PositionReport) (uint32, Update) {
	return r.ICAO, Update{
		Callsign: r.Callsign,
		Emitter:  r.Emitter,
		Alert:    r.Alert != 0,
		NIC:      r.NIC,
		NACp:     r.NACp,
		Fix: Fix{
			Latitude:           r.Latitude,
			Longitude:          r.Longitude,
			Altitude:           r.Altitude,
			AltitudeValid:      r.AltitudeValid,
			GroundSpeed:        r.HorizontalVelocity,
			GroundSpeedValid:   r.HorizontalVelocityValid,
			VerticalSpeed:      r.VerticalVelocity,
			VerticalSpeedValid: r.VerticalVelocityValid,
			Track:              r.Track,
			Airborne:           r.Misc&gdl90.MiscAirborne != 0,
		},
	}
}

// Report converts the snapshot into an outbound traffic report.
func (s TargetSnapshot) Report() *gdl90.PositionReport {
	misc := gdl90.MiscTrackTypeTrueTrack
	if s.Fix.Airborne {
		misc |= gdl90.MiscAirborne
	}
	var alert uint8
	if s.Alert {
		alert = 1
	}
	return &gdl90.PositionReport{
		Traffic:                 true,
		Alert:                   alert,
		ICAO:                    s.ICAO,
		Latitude:                s.Fix.Latitude,
		Longitude:               s.Fix.Longitude,
		Altitude:                s.Fix.Altitude,
		AltitudeValid:           s.Fix.AltitudeValid,
		Misc:                    misc,
		NIC:                     s.NIC,
		NACp:                    s.NACp,
		HorizontalVelocity:      s.Fix.GroundSpeed,
		HorizontalVelocityValid: s.Fix.GroundSpeedValid,
		VerticalVelocity:        s.Fix.VerticalSpeed,
		VerticalVelocityValid:   s.Fix.VerticalSpeedValid,
		Track:                   s.Fix.Track,
		Emitter:                 s.Emitter,
		Callsign:                s.Callsign,
	}
}
