// Package capture reads and writes binary capture logs of raw frames.
//
// The on-disk format is one record per received datagram: an 8-byte
// little-endian unix-microseconds timestamp, a 4-byte little-endian
// frame length, then the raw frame bytes. Files produced by the
// Python capture tooling use the same layout.
package capture

import (
	"fmt"
	"path/filepath"
	"time"
)

const (
	recordHeaderSize = 12

	// maxFrameLength rejects length fields that cannot have come from a
	// UDP datagram. Anything larger means the file is corrupt.
	maxFrameLength = 65536
)

// Record is one captured frame with its receive time.
type Record struct {
	Time  time.Time
	Frame []byte
}

// TruncatedRecordError reports a capture file that ends in the middle
// of a record.
type TruncatedRecordError struct {
	Offset int64 // file offset where the incomplete record starts
}

func (e *TruncatedRecordError) Error() string {
	return fmt.Sprintf("capture: truncated record at offset %d", e.Offset)
}

// InvalidRecordError reports a record header with an impossible frame
// length.
type InvalidRecordError struct {
	Offset int64
	Length uint32
}

func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("capture: invalid frame length %d at offset %d", e.Length, e.Offset)
}

// SessionFilename builds a capture file path for a session starting at t.
func SessionFilename(dir string, t time.Time) string {
	return filepath.Join(dir, "gdl90_"+t.UTC().Format("20060102_150405")+".bin")
}
