package gdl90

import "fmt"

// MalformedFrameError reports a buffer that is not a well-formed GDL-90
// frame: missing flag bytes or too short to hold an ID and CRC.
type MalformedFrameError struct {
	Reason string
}

func (e *MalformedFrameError) Error() string {
	return "gdl90: malformed frame: " + e.Reason
}

// CRCMismatchError reports a frame whose transmitted CRC does not match the
// CRC computed over the unescaped payload.
type CRCMismatchError struct {
	Received uint16
	Computed uint16
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("gdl90: crc mismatch: received 0x%04X, computed 0x%04X", e.Received, e.Computed)
}

// InvalidLengthError reports a recognized message ID whose body length does
// not match the fixed length for that message type.
type InvalidLengthError struct {
	MessageID byte
	Length    int
	Want      int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("gdl90: message 0x%02X: invalid body length %d (want %d)", e.MessageID, e.Length, e.Want)
}
