package gdl90

import (
	"math"
	"testing"
)

func TestEncodeLatitude(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
		want uint32
	}{
		{"45 north", 45.0, 0x200000},
		{"45 south", -45.0, 0xE00000},
		{"North pole", 90.0, 0x400000},
		{"South pole", -90.0, 0xC00000},
		{"Equator", 0.0, 0x000000},
		{"Clamped above range", 200.0, 0x400000},
		{"Clamped below range", -200.0, 0xC00000},
		{"KSFO", 37.621311, 0x1AC0C0},
		{"San Francisco", 37.7749, 0x1ADCB6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeLatitude(tt.deg); got != tt.want {
				t.Errorf("EncodeLatitude(%v) = 0x%06X, want 0x%06X", tt.deg, got, tt.want)
			}
		})
	}
}

func TestEncodeLongitude(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
		want uint32
	}{
		{"KSFO", -122.378968, 0xA8F997},
		{"San Francisco", -122.4194, 0xA8F23A},
		{"Antimeridian east", 180.0, 0x800000},
		{"Antimeridian west", -180.0, 0x800000},
		{"Clamped above range", 200.0, 0x800000},
		{"Clamped below range", -200.0, 0x800000},
		{"Prime meridian", 0.0, 0x000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeLongitude(tt.deg); got != tt.want {
				t.Errorf("EncodeLongitude(%v) = 0x%06X, want 0x%06X", tt.deg, got, tt.want)
			}
		})
	}
}

func TestDecodeLatitude(t *testing.T) {
	tests := []struct {
		raw  uint32
		want float64
	}{
		{0x200000, 45.0},
		{0xE00000, -45.0},
		{0x400000, 90.0},
		{0xC00000, -90.0},
		{0x000000, 0.0},
	}

	for _, tt := range tests {
		if got := DecodeLatitude(tt.raw); got != tt.want {
			t.Errorf("DecodeLatitude(0x%06X) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLatitude_RoundTripResolution(t *testing.T) {
	// One LSB is 180/2^23 degrees, about 2.1e-5; a round trip must land
	// within half of that.
	const halfLSB = 180.0 / (1 << 23) / 2
	for _, deg := range []float64{37.7749, -122.4194 / 2, 0.000011, -89.999989, 51.4775} {
		got := DecodeLatitude(EncodeLatitude(deg))
		if diff := math.Abs(got - deg); diff > halfLSB {
			t.Errorf("Round trip of %v drifted by %v (limit %v)", deg, diff, halfLSB)
		}
	}
}

func TestEncodeAltitude(t *testing.T) {
	tests := []struct {
		name string
		feet float64
		want uint16
	}{
		{"Floor of range", -1000, 0x000},
		{"Top of range", 101350, 0xFFE},
		{"Sea level", 0, 0x028},
		{"Pattern altitude", 1247, 0x059},
		{"Cruise", 35000, 0x5A0},
		{"Below range clamps", -2000, 0x000},
		{"Above range clamps", 200000, 0xFFE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeAltitude(tt.feet); got != tt.want {
				t.Errorf("EncodeAltitude(%v) = 0x%03X, want 0x%03X", tt.feet, got, tt.want)
			}
		})
	}
}

func TestDecodeAltitude(t *testing.T) {
	if got, ok := DecodeAltitude(0x000); !ok || got != -1000 {
		t.Errorf("DecodeAltitude(0x000) = %d, %v, want -1000, true", got, ok)
	}
	if got, ok := DecodeAltitude(0xFFE); !ok || got != 101350 {
		t.Errorf("DecodeAltitude(0xFFE) = %d, %v, want 101350, true", got, ok)
	}
	if got, ok := DecodeAltitude(0x028); !ok || got != 0 {
		t.Errorf("DecodeAltitude(0x028) = %d, %v, want 0, true", got, ok)
	}
	if _, ok := DecodeAltitude(0xFFF); ok {
		t.Error("DecodeAltitude(0xFFF) reported a valid altitude")
	}
}

func TestEncodeHorizontalVelocity(t *testing.T) {
	tests := []struct {
		name  string
		knots float64
		want  uint16
	}{
		{"Cruise", 420, 0x1A4},
		{"Approach", 145, 0x091},
		{"Stationary", 0, 0x000},
		{"Negative clamps to zero", -5, 0x000},
		{"Above range clamps", 5000, 0xFFE},
		{"Exactly at cap", 4094, 0xFFE},
		{"Fractional knots truncate", 123.9, 0x07B},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeHorizontalVelocity(tt.knots); got != tt.want {
				t.Errorf("EncodeHorizontalVelocity(%v) = 0x%03X, want 0x%03X", tt.knots, got, tt.want)
			}
		})
	}
}

func TestDecodeHorizontalVelocity(t *testing.T) {
	if got, ok := DecodeHorizontalVelocity(0x1A4); !ok || got != 420 {
		t.Errorf("DecodeHorizontalVelocity(0x1A4) = %d, %v, want 420, true", got, ok)
	}
	if got, ok := DecodeHorizontalVelocity(0xFFE); !ok || got != 4094 {
		t.Errorf("DecodeHorizontalVelocity(0xFFE) = %d, %v, want 4094, true", got, ok)
	}
	if _, ok := DecodeHorizontalVelocity(0xFFF); ok {
		t.Error("DecodeHorizontalVelocity(0xFFF) reported a valid speed")
	}
}

func TestEncodeVerticalVelocity(t *testing.T) {
	tests := []struct {
		name string
		fpm  float64
		want uint16
	}{
		// Zero must encode as 0x000; the unavailable sentinel is 0x800.
		{"Level flight", 0, 0x000},
		{"Slow descent", -580, 0xFF7},
		{"Climb", 500, 0x008},
		{"Fast descent", -6000, 0xFA2},
		{"Top of range", 32576, 0x1FD},
		{"Bottom of range", -32576, 0xE03},
		{"Above range clamps", 100000, 0x1FD},
		{"Below range clamps", -100000, 0xE03},
		{"One unit up", 64, 0x001},
		{"One unit down", -64, 0xFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeVerticalVelocity(tt.fpm); got != tt.want {
				t.Errorf("EncodeVerticalVelocity(%v) = 0x%03X, want 0x%03X", tt.fpm, got, tt.want)
			}
		})
	}
}

func TestDecodeVerticalVelocity(t *testing.T) {
	tests := []struct {
		raw  uint16
		want int32
		ok   bool
	}{
		{0x000, 0, true},
		{0xFF7, -576, true},
		{0x008, 512, true},
		{0x001, 64, true},
		{0xFFF, -64, true},
		{0x1FD, 32576, true},
		{0xE03, -32576, true},
		{0x800, 0, false},
	}

	for _, tt := range tests {
		got, ok := DecodeVerticalVelocity(tt.raw)
		if ok != tt.ok || got != tt.want {
			t.Errorf("DecodeVerticalVelocity(0x%03X) = %d, %v, want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}

func TestEncodeTrack(t *testing.T) {
	tests := []struct {
		name string
		deg  float64
		want uint8
	}{
		{"Northeast", 45, 32},
		{"South", 180, 128},
		{"West-ish", 267.4, 190},
		{"Wraps to north", 359.9, 0},
		{"Negative normalizes", -90, 192},
		{"North", 0, 0},
		{"Full circle", 360, 0},
		{"Beyond full circle", 720.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeTrack(tt.deg); got != tt.want {
				t.Errorf("EncodeTrack(%v) = %d, want %d", tt.deg, got, tt.want)
			}
		})
	}
}

func TestDecodeTrack(t *testing.T) {
	if got := DecodeTrack(32); got != 45.0 {
		t.Errorf("DecodeTrack(32) = %v, want 45.0", got)
	}
	if got := DecodeTrack(190); got != 267.1875 {
		t.Errorf("DecodeTrack(190) = %v, want 267.1875", got)
	}
	if got := DecodeTrack(0); got != 0.0 {
		t.Errorf("DecodeTrack(0) = %v, want 0.0", got)
	}
}

func TestNormalizeCallsign(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Short callsign pads", "UAL123", "UAL123  "},
		{"Lowercase uppercases", "ual123", "UAL123  "},
		{"Exact length", "ABCDEFGH", "ABCDEFGH"},
		{"Too long truncates", "ABCDEFGHIJ", "ABCDEFGH"},
		{"Invalid characters become spaces", "N123-AB", "N123 AB "},
		{"Empty pads fully", "", "        "},
		{"Digits and spaces kept", "A1 2B", "A1 2B   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCallsign(tt.in)
			if got != tt.want {
				t.Errorf("NormalizeCallsign(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if len(got) != CallsignLength {
				t.Errorf("NormalizeCallsign(%q) length = %d, want %d", tt.in, len(got), CallsignLength)
			}
		})
	}
}

func TestDecodeCallsign(t *testing.T) {
	if got := DecodeCallsign([]byte("UAL123  ")); got != "UAL123" {
		t.Errorf("DecodeCallsign = %q, want %q", got, "UAL123")
	}
	if got := DecodeCallsign([]byte("        ")); got != "" {
		t.Errorf("DecodeCallsign of blank field = %q, want empty", got)
	}
}
