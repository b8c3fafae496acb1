package gdl90

import (
	"math"
	"strings"
)

// semicircleLSB is the resolution of the 24-bit latitude/longitude
// encoding in degrees per count: 180 / 2^23.
const semicircleLSB = 180.0 / 8388608.0

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// EncodeLatitude converts degrees (positive north) to the 24-bit signed
// semicircle encoding. Input is clamped to [-90, 90].
func EncodeLatitude(deg float64) uint32 {
	return encodeSemicircle(clampFloat(deg, -90, 90))
}

// EncodeLongitude converts degrees (positive east) to the 24-bit signed
// semicircle encoding. Input is clamped to [-180, 180].
func EncodeLongitude(deg float64) uint32 {
	return encodeSemicircle(clampFloat(deg, -180, 180))
}

func encodeSemicircle(deg float64) uint32 {
	raw := int32(math.Round(deg / semicircleLSB))
	if raw < 0 {
		raw += 1 << 24
	}
	return uint32(raw) & 0xFFFFFF
}

// DecodeLatitude converts a 24-bit semicircle value back to degrees.
func DecodeLatitude(raw uint32) float64 { return decodeSemicircle(raw) }

// DecodeLongitude converts a 24-bit semicircle value back to degrees.
func DecodeLongitude(raw uint32) float64 { return decodeSemicircle(raw) }

func decodeSemicircle(raw uint32) float64 {
	v := int32(raw & 0xFFFFFF)
	if v&0x800000 != 0 {
		v -= 1 << 24
	}
	return float64(v) * semicircleLSB
}

// EncodeAltitude converts pressure altitude in feet to the 12-bit encoding:
// 25 ft resolution offset by +1000 ft. Input is clamped to the encodable
// range [-1000, 101350], so the result never collides with the 0xFFF
// sentinel; callers with no altitude write the sentinel themselves.
func EncodeAltitude(feet float64) uint16 {
	feet = clampFloat(feet, -1000, 101350)
	raw := uint16(math.Floor((feet + 1000) / 25))
	if raw > altitudeMax {
		raw = altitudeMax
	}
	return raw
}

// DecodeAltitude converts the 12-bit altitude encoding back to feet. The
// second return value is false for the 0xFFF "unavailable" sentinel.
func DecodeAltitude(raw uint16) (int32, bool) {
	raw &= 0xFFF
	if raw == altitudeInvalid {
		return 0, false
	}
	return int32(raw)*25 - 1000, true
}

// EncodeHorizontalVelocity converts ground speed in knots to the 12-bit
// encoding. Input is clamped to [0, 4094] and fractional knots truncate;
// 0xFFE means 4094 knots or greater.
func EncodeHorizontalVelocity(knots float64) uint16 {
	knots = clampFloat(knots, 0, hVelocityMax)
	return uint16(knots)
}

// DecodeHorizontalVelocity converts the 12-bit encoding back to knots. The
// second return value is false for the 0xFFF "unavailable" sentinel.
func DecodeHorizontalVelocity(raw uint16) (uint16, bool) {
	raw &= 0xFFF
	if raw == hVelocityInvalid {
		return 0, false
	}
	return raw, true
}

// EncodeVerticalVelocity converts vertical speed in feet per minute to the
// 12-bit two's-complement encoding in 64 fpm units. Input is clamped to
// [-32576, 32576] fpm. Zero encodes as 0x000, which is distinct from the
// 0x800 "unavailable" sentinel.
func EncodeVerticalVelocity(fpm float64) uint16 {
	fpm = clampFloat(fpm, -32576, 32576)
	units := int32(math.Round(fpm / 64))
	return uint16(units) & 0xFFF
}

// DecodeVerticalVelocity converts the 12-bit two's-complement encoding back
// to feet per minute. The second return value is false for the 0x800
// "unavailable" sentinel.
func DecodeVerticalVelocity(raw uint16) (int32, bool) {
	raw &= 0xFFF
	if raw == vVelocityInvalid {
		return 0, false
	}
	v := int32(raw)
	if v&0x800 != 0 {
		v -= 0x1000
	}
	return v * 64, true
}

// EncodeTrack converts degrees to the 8-bit track/heading encoding in
// 360/256 degree units. Any input angle is accepted and normalized into
// [0, 360) first; values that round up to 360 wrap to 0.
func EncodeTrack(deg float64) uint8 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return uint8(int(math.Round(deg*256/360)) % 256)
}

// DecodeTrack converts the 8-bit track encoding back to degrees.
func DecodeTrack(raw uint8) float64 {
	return float64(raw) * 360 / 256
}

// NormalizeCallsign returns s as the exact 8-byte callsign field content:
// uppercased, truncated to 8 bytes, characters outside A-Z, 0-9 and space
// replaced with spaces, and right-padded with spaces.
func NormalizeCallsign(s string) string {
	s = strings.ToUpper(s)
	if len(s) > CallsignLength {
		s = s[:CallsignLength]
	}
	b := []byte(s)
	for i, c := range b {
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == ' ' {
			continue
		}
		b[i] = ' '
	}
	for len(b) < CallsignLength {
		b = append(b, ' ')
	}
	return string(b)
}

// DecodeCallsign trims trailing space padding from a raw callsign field.
func DecodeCallsign(raw []byte) string {
	return strings.TrimRight(string(raw), " ")
}
