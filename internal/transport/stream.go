// Package transport implements the layered byte-stream abstraction:
// raw socket -> optional TLS, composable in that order, plus the zlib
// deflate/inflate filters used by the Zlib, ZlibHex and ZRLE encodings.
// Any I/O error aborts the connection; partial writes are retried
// until complete or a non-retryable errno.
package transport

import (
	"encoding/binary"
	"io"

	"github.com/ltsm-go/connector/internal/logging"
)

var log = logging.L("transport")

// Stream is the byte-oriented abstraction shared by every transport layer.
type Stream interface {
	io.Closer

	// Recv reads up to len(buf) bytes, returning however many are
	// immediately available (may block for at least one byte).
	Recv(buf []byte) (int, error)
	// RecvExact blocks until buf is completely filled.
	RecvExact(buf []byte) error
	// Peek1 returns the next byte without consuming it.
	Peek1() (byte, error)
	// HasInput reports whether a subsequent Recv would return without
	// blocking.
	HasInput() bool

	Send(buf []byte) (int, error)
	SendFlush() error
}

// Big/little-endian integer helpers shared by every layer and by the RFB
// and LTSM wire codecs built on top of Stream.

func ReadU8(s Stream) (uint8, error) {
	var b [1]byte
	if err := s.RecvExact(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func ReadU16BE(s Stream) (uint16, error) {
	var b [2]byte
	if err := s.RecvExact(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func ReadU32BE(s Stream) (uint32, error) {
	var b [4]byte
	if err := s.RecvExact(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func ReadU64BE(s Stream) (uint64, error) {
	var b [8]byte
	if err := s.RecvExact(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func WriteU8(s Stream, v uint8) error {
	_, err := s.Send([]byte{v})
	return err
}

func WriteU16BE(s Stream, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := s.Send(b[:])
	return err
}

func WriteU32BE(s Stream, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := s.Send(b[:])
	return err
}

func WriteI32BE(s Stream, v int32) error {
	return WriteU32BE(s, uint32(v))
}
