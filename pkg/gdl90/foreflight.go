package gdl90

import "strings"

// foreFlightIDLength is the full payload length of the ForeFlight ID
// message: ID byte, sub-ID, version, serial, names and capabilities.
const foreFlightIDLength = 39

// ForeFlightID is the ForeFlight broadcast identity message (ID 0x65,
// sub-ID 0). EFBs use it to label the device feeding them position data.
// This message is encode-only; Decode returns it as Unknown.
type ForeFlightID struct {
	ShortName string // device short name, up to 8 bytes
	LongName  string // device long name, up to 16 bytes
	MSLAlt    bool   // geometric altitudes are MSL rather than WGS-84
}

// MessageID implements Message.
func (f *ForeFlightID) MessageID() byte { return MessageIDForeFlight }

// Encode packs the 39-byte identity payload. The serial number field is
// all 0xFF ("not provided"); names are truncated to their field widths.
func (f *ForeFlightID) Encode() []byte {
	out := make([]byte, foreFlightIDLength)
	out[0] = MessageIDForeFlight
	out[1] = 0x00 // sub-ID: identity
	out[2] = 0x01 // version
	for i := 3; i <= 10; i++ {
		out[i] = 0xFF
	}
	short := strings.TrimSpace(f.ShortName)
	if len(short) > 8 {
		short = short[:8]
	}
	copy(out[11:19], short)
	long := strings.TrimSpace(f.LongName)
	if len(long) > 16 {
		long = long[:16]
	}
	copy(out[19:35], long)
	if f.MSLAlt {
		out[38] = 0x01
	}
	return out
}
