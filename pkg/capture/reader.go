package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"time"
)

// Reader iterates over the records of a capture file
type Reader struct {
	file   *os.File
	buf    *bufio.Reader
	offset int64
}

// NewReader opens a capture file for reading
func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{
		file: f,
		buf:  bufio.NewReader(f),
	}, nil
}

// Next returns the next record. It returns io.EOF at a clean end of
// file and a TruncatedRecordError when the file ends mid-record.
func (r *Reader) Next() (Record, error) {
	var hdr [recordHeaderSize]byte

	_, err := io.ReadFull(r.buf, hdr[:])
	if errors.Is(err, io.EOF) {
		return Record{}, io.EOF
	}
	if err != nil {
		// Partial header
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, &TruncatedRecordError{Offset: r.offset}
		}
		return Record{}, err
	}

	micros := int64(binary.LittleEndian.Uint64(hdr[0:8]))
	length := binary.LittleEndian.Uint32(hdr[8:12])
	if length > maxFrameLength {
		return Record{}, &InvalidRecordError{Offset: r.offset, Length: length}
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(r.buf, frame); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Record{}, &TruncatedRecordError{Offset: r.offset}
		}
		return Record{}, err
	}

	r.offset += recordHeaderSize + int64(length)
	return Record{Time: time.UnixMicro(micros), Frame: frame}, nil
}

// Close releases the underlying file handle
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
