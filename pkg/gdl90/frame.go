package gdl90

import "fmt"

// Frame delimiter and byte-stuffing constants
const (
	flagByte   = 0x7E
	escapeByte = 0x7D
	escapeXOR  = 0x20
)

// Escape byte-stuffs payload so neither 0x7E nor 0x7D appears in the
// output: each is replaced by 0x7D followed by the original byte XOR 0x20.
func Escape(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+4)
	for _, b := range payload {
		if b == flagByte || b == escapeByte {
			out = append(out, escapeByte, b^escapeXOR)
			continue
		}
		out = append(out, b)
	}
	return out
}

// Unescape reverses Escape. A trailing 0x7D with no byte after it is passed
// through literally; the CRC check downstream decides whether the frame was
// actually damaged.
func Unescape(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == escapeByte && i+1 < len(data) {
			i++
			out = append(out, data[i]^escapeXOR)
			continue
		}
		out = append(out, data[i])
	}
	return out
}

// Frame wraps a payload (message ID and body) into a complete on-wire
// frame: the CRC of the payload is appended low byte first, the result is
// escaped, and flag bytes delimit both ends.
func Frame(payload []byte) []byte {
	crc := ComputeCRC(payload)
	withCRC := make([]byte, 0, len(payload)+2)
	withCRC = append(withCRC, payload...)
	withCRC = append(withCRC, byte(crc), byte(crc>>8))

	escaped := Escape(withCRC)
	out := make([]byte, 0, len(escaped)+2)
	out = append(out, flagByte)
	out = append(out, escaped...)
	out = append(out, flagByte)
	return out
}

// Unframe validates and unwraps a complete flag-delimited frame, returning
// the unescaped message ID and body with the CRC stripped. It returns a
// MalformedFrameError for missing flags or impossible lengths and a
// CRCMismatchError when the transmitted CRC does not match the payload.
func Unframe(frame []byte) ([]byte, error) {
	if len(frame) < MinFrameLength {
		return nil, &MalformedFrameError{Reason: fmt.Sprintf("frame too short: %d bytes", len(frame))}
	}
	if frame[0] != flagByte || frame[len(frame)-1] != flagByte {
		return nil, &MalformedFrameError{Reason: "missing start or end flag"}
	}
	raw := Unescape(frame[1 : len(frame)-1])
	if len(raw) < 3 {
		return nil, &MalformedFrameError{Reason: fmt.Sprintf("unescaped payload too short: %d bytes", len(raw))}
	}
	payload := raw[:len(raw)-2]
	received := uint16(raw[len(raw)-2]) | uint16(raw[len(raw)-1])<<8
	computed := ComputeCRC(payload)
	if received != computed {
		return nil, &CRCMismatchError{Received: received, Computed: computed}
	}
	return payload, nil
}
