package gdl90

// FrameScanner splits a byte buffer into candidate frames at 0x7E flag
// boundaries. It is lazy: each Next call scans forward from where the last
// one stopped, so a corrupt candidate costs only the frames that touch it.
// Back-to-back frames may share a single flag byte, and flag pairs with
// nothing between them are skipped as keep-alive padding.
type FrameScanner struct {
	buf []byte
	pos int
}

// NewFrameScanner returns a scanner over buf. The buffer is not copied;
// callers that reuse their read buffer must copy candidates they keep.
func NewFrameScanner(buf []byte) *FrameScanner {
	return &FrameScanner{buf: buf}
}

// Next returns the next candidate frame including both flag bytes. The
// candidate is a sub-slice of the scanner's buffer and has not been CRC
// checked; pass it to Unframe or DecodeFrame. Next returns nil, false when
// no complete candidate remains.
func (s *FrameScanner) Next() ([]byte, bool) {
	for {
		start := s.pos
		for start < len(s.buf) && s.buf[start] != flagByte {
			start++
		}
		if start >= len(s.buf) {
			s.pos = len(s.buf)
			return nil, false
		}
		end := start + 1
		for end < len(s.buf) && s.buf[end] != flagByte {
			end++
		}
		if end >= len(s.buf) {
			// Opening flag with no closing flag yet: leave the tail for
			// Rest so a streaming caller can complete it on the next read.
			s.pos = start
			return nil, false
		}
		// The closing flag may also open the next frame.
		s.pos = end
		if end-start == 1 {
			continue
		}
		return s.buf[start : end+1], true
	}
}

// Rest returns the unconsumed tail of the buffer, starting at the flag
// that opens the first incomplete frame. A buffer that ends exactly on a
// closing flag keeps that one flag in the tail, since it may double as the
// opening flag of the next frame. Streaming callers prepend the tail to
// their next read.
func (s *FrameScanner) Rest() []byte {
	return s.buf[s.pos:]
}

// Reset rewinds the scanner to the start of its buffer.
func (s *FrameScanner) Reset() {
	s.pos = 0
}
