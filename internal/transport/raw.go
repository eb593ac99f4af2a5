package transport

import (
	"bufio"
	"errors"
	"net"
	"time"
)

// rawStream wraps a net.Conn (unix or tcp) as the bottom layer of the
// transport stack. Reads are buffered so Peek1 can look ahead without
// consuming, matching the handshake's peek requirement.
type rawStream struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	// ReadTimeout, if non-zero, bounds blocking reads; read timeouts are
	// configurable per connection.
	readTimeout time.Duration
}

// NewRaw wraps conn as a Stream. readTimeout of zero disables read
// deadlines.
func NewRaw(conn net.Conn, readTimeout time.Duration) Stream {
	return &rawStream{
		conn:        conn,
		r:           bufio.NewReaderSize(conn, 64*1024),
		w:           bufio.NewWriterSize(conn, 64*1024),
		readTimeout: readTimeout,
	}
}

func (s *rawStream) applyReadDeadline() {
	if s.readTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.readTimeout))
	}
}

// Recv reads whatever is available, blocking for at least one byte. It
// makes a single read and does not retry: a read-deadline timeout is
// returned to the caller as an error.
func (s *rawStream) Recv(buf []byte) (int, error) {
	s.applyReadDeadline()
	n, err := s.r.Read(buf)
	if err != nil {
		return n, err
	}
	return n, nil
}

func (s *rawStream) RecvExact(buf []byte) error {
	s.applyReadDeadline()
	_, err := ioReadFull(s.r, buf)
	return err
}

func (s *rawStream) Peek1() (byte, error) {
	s.applyReadDeadline()
	b, err := s.r.Peek(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// HasInput performs a zero-timeout poll: if the buffered reader already has
// data, or a non-blocking read deadline reveals pending bytes, report true.
func (s *rawStream) HasInput() bool {
	if s.r.Buffered() > 0 {
		return true
	}
	_ = s.conn.SetReadDeadline(time.Now())
	_, err := s.r.Peek(1)
	// Restore blocking/timeout mode for subsequent real reads.
	s.applyReadDeadline()
	if err == nil {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	return false
}

func (s *rawStream) Send(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := s.w.Write(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func (s *rawStream) SendFlush() error {
	return s.w.Flush()
}

func (s *rawStream) Close() error {
	return s.conn.Close()
}

// ioReadFull is io.ReadFull, named locally to keep this file's import list
// self-documenting about where EOF-vs-partial-read semantics come from.
func ioReadFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
