package lsp

import (
	"bytes"
	"strconv"
)

// frameScanner accumulates bytes arriving from the server's stdout and
// extracts complete `Content-Length: N\r\n\r\n<N bytes>` frames. Next is
// called repeatedly; on any failure (header not yet complete, length
// missing, or body not yet fully arrived) it rewinds -- leaves its
// read position unchanged -- so a later call with more fed bytes can
// retry the same frame from scratch.
type frameScanner struct {
	buf []byte
	pos int
}

func (s *frameScanner) feed(b []byte) {
	s.buf = append(s.buf, b...)
}

// next attempts to decode one frame starting at the current position.
// On success it advances past the frame and returns its body. On any
// short-read condition it returns ok=false having left pos untouched.
func (s *frameScanner) next() (body []byte, ok bool) {
	data := s.buf[s.pos:]

	headerEnd := bytes.Index(data, []byte("\r\n\r\n"))
	if headerEnd < 0 {
		return nil, false // header incomplete: rewind (no-op) and wait
	}

	contentLength := -1
	for _, line := range bytes.Split(data[:headerEnd], []byte("\r\n")) {
		const prefix = "Content-Length:"
		if bytes.HasPrefix(line, []byte(prefix)) {
			n, err := strconv.Atoi(string(bytes.TrimSpace(line[len(prefix):])))
			if err == nil {
				contentLength = n
			}
		}
	}
	if contentLength < 0 {
		return nil, false // no Content-Length header: rewind and wait
	}

	bodyStart := headerEnd + 4
	if len(data) < bodyStart+contentLength {
		return nil, false // short content: rewind and wait for more bytes
	}

	s.pos += bodyStart + contentLength
	return data[bodyStart : bodyStart+contentLength], true
}

// compact drops already-consumed bytes once the scanner has drained
// every complete frame in its buffer, keeping memory bounded.
func (s *frameScanner) compact() {
	if s.pos == 0 {
		return
	}
	s.buf = append([]byte(nil), s.buf[s.pos:]...)
	s.pos = 0
}
