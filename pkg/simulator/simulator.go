// Package simulator generates deterministic synthetic flight data: an
// ownship flying a circular circuit plus a set of traffic targets on offset
// orbits. It feeds the broadcaster in simulate mode and the tests; it does
// no I/O of its own.
package simulator

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dbehnke/gdl90-nexus/pkg/gdl90"
	"github.com/dbehnke/gdl90-nexus/pkg/traffic"
)

// trafficICAOBase is the start of the self-assigned address range used for
// synthetic targets (not necessarily valid ICAO allocations).
const trafficICAOBase uint32 = 0xF10000

// Config describes the synthetic world.
type Config struct {
	CenterLatitude  float64 // circuit center, degrees
	CenterLongitude float64 // circuit center, degrees
	RadiusNM        float64 // circuit radius, nautical miles
	GroundSpeed     uint16  // knots
	Altitude        int32   // base altitude, feet
	ClimbAmplitude  int32   // peak climb/descend offset, feet
	TrafficCount    int     // number of synthetic targets
}

// DefaultConfig returns a circuit over the San Francisco bay, the area the
// original capture tooling was exercised against.
func DefaultConfig() Config {
	return Config{
		CenterLatitude:  37.6213,
		CenterLongitude: -122.3790,
		RadiusNM:        3.0,
		GroundSpeed:     145,
		Altitude:        3500,
		ClimbAmplitude:  500,
		TrafficCount:    2,
	}
}

// orbit is one aircraft's circular track. Position, track, altitude and
// vertical speed are all pure functions of elapsed time.
type orbit struct {
	centerLat float64
	centerLon float64
	radiusNM  float64
	speedKt   float64
	phase     float64 // angular offset at elapsed zero, radians
	altFeet   float64
	climbFeet float64 // sinusoidal climb/descend amplitude
}

// thetaAt returns the angular position after elapsed time. The aircraft
// flies the circle clockwise, one lap per circumference/speed.
func (o orbit) thetaAt(elapsed time.Duration) float64 {
	periodSec := 2 * math.Pi * o.radiusNM / o.speedKt * 3600
	return o.phase + 2*math.Pi*elapsed.Seconds()/periodSec
}

func (o orbit) fixAt(elapsed time.Duration) traffic.Fix {
	theta := o.thetaAt(elapsed)

	latRadius := o.radiusNM / 60 // one degree of latitude is 60 nm
	lonRadius := latRadius / math.Cos(o.centerLat*math.Pi/180)

	// Altitude rides a sine over the lap; vertical speed is its derivative.
	omega := o.speedKt / 3600 / o.radiusNM // rad/s
	alt := o.altFeet + o.climbFeet*math.Sin(theta)
	vvel := o.climbFeet * math.Cos(theta) * omega * 60

	return traffic.Fix{
		Latitude:           o.centerLat + latRadius*math.Cos(theta),
		Longitude:          o.centerLon + lonRadius*math.Sin(theta),
		Altitude:           int32(math.Round(alt)),
		AltitudeValid:      true,
		GroundSpeed:        uint16(math.Round(o.speedKt)),
		GroundSpeedValid:   true,
		VerticalSpeed:      int32(math.Round(vvel)),
		VerticalSpeedValid: true,
		Track:              math.Mod(90+theta*180/math.Pi, 360),
		Airborne:           true,
	}
}

// Simulator holds the synthetic world. Advance is the only mutator; the
// read methods are safe to call concurrently with it.
type Simulator struct {
	config  Config
	elapsed time.Duration
	mu      sync.RWMutex
}

// New creates a simulator. Non-positive radius or speed fall back to the
// defaults so every orbit has a finite period.
func New(cfg Config) *Simulator {
	if cfg.RadiusNM <= 0 {
		cfg.RadiusNM = DefaultConfig().RadiusNM
	}
	if cfg.GroundSpeed == 0 {
		cfg.GroundSpeed = DefaultConfig().GroundSpeed
	}
	if cfg.TrafficCount < 0 {
		cfg.TrafficCount = 0
	}
	return &Simulator{config: cfg}
}

// Advance steps the world forward by dt.
func (s *Simulator) Advance(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.elapsed += dt
}

// Elapsed returns the simulated time so far.
func (s *Simulator) Elapsed() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elapsed
}

func (s *Simulator) ownshipOrbit() orbit {
	return orbit{
		centerLat: s.config.CenterLatitude,
		centerLon: s.config.CenterLongitude,
		radiusNM:  s.config.RadiusNM,
		speedKt:   float64(s.config.GroundSpeed),
		altFeet:   float64(s.config.Altitude),
		climbFeet: float64(s.config.ClimbAmplitude),
	}
}

// Traffic targets fly wider, faster, stacked orbits spread around the
// circle so they never bunch up on the ownship.
func (s *Simulator) trafficOrbit(i int) orbit {
	climb := 0.0
	if i%2 == 1 {
		climb = float64(s.config.ClimbAmplitude)
	}
	return orbit{
		centerLat: s.config.CenterLatitude,
		centerLon: s.config.CenterLongitude,
		radiusNM:  s.config.RadiusNM * (1.5 + 0.5*float64(i)),
		speedKt:   float64(s.config.GroundSpeed) + 40*float64(i+1),
		phase:     2 * math.Pi * float64(i+1) / float64(s.config.TrafficCount+1),
		altFeet:   float64(s.config.Altitude) + 1500*float64(i+1),
		climbFeet: climb,
	}
}

// OwnshipFix returns the ownship position at the current simulated time.
// The fix is always valid, so the heartbeat advertises a GPS position.
func (s *Simulator) OwnshipFix() (traffic.Fix, bool) {
	s.mu.RLock()
	elapsed := s.elapsed
	s.mu.RUnlock()

	return s.ownshipOrbit().fixAt(elapsed), true
}

// Targets returns every synthetic target at the current simulated time.
func (s *Simulator) Targets() []traffic.TargetSnapshot {
	s.mu.RLock()
	elapsed := s.elapsed
	s.mu.RUnlock()

	targets := make([]traffic.TargetSnapshot, 0, s.config.TrafficCount)
	for i := 0; i < s.config.TrafficCount; i++ {
		targets = append(targets, traffic.TargetSnapshot{
			ICAO:     trafficICAOBase + uint32(i) + 1,
			Callsign: fmt.Sprintf("TGT%04d", i+1),
			Emitter:  gdl90.EmitterLight,
			NIC:      8,
			NACp:     8,
			Fix:      s.trafficOrbit(i).fixAt(elapsed),
		})
	}
	return targets
}

// Active implements the broadcaster's traffic source.
func (s *Simulator) Active() []traffic.TargetSnapshot {
	return s.Targets()
}
