package capture

import (
	"bufio"
	"encoding/binary"
	"os"
	"sync"
	"time"
)

// Writer appends records to a capture file
type Writer struct {
	file *os.File
	buf  *bufio.Writer

	records uint64
	bytes   uint64

	mu sync.Mutex
}

// NewWriter creates the capture file, truncating any existing file at
// the same path
func NewWriter(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &Writer{
		file: f,
		buf:  bufio.NewWriter(f),
	}, nil
}

// Write appends one frame with the given receive time
func (w *Writer) Write(t time.Time, frame []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var hdr [recordHeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[0:8], uint64(t.UnixMicro()))
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(len(frame)))

	if _, err := w.buf.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := w.buf.Write(frame); err != nil {
		return err
	}

	w.records++
	w.bytes += uint64(len(frame))
	return nil
}

// WriteFrame appends one frame stamped with the current time
func (w *Writer) WriteFrame(frame []byte) error {
	return w.Write(time.Now(), frame)
}

// Records returns the number of records written so far
func (w *Writer) Records() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.records
}

// Bytes returns the total frame bytes written so far, excluding record
// headers
func (w *Writer) Bytes() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bytes
}

// Sync flushes buffered records to disk
func (w *Writer) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.buf.Flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

// Close flushes and closes the capture file
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file = nil

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
