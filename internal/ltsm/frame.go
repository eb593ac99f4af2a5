// Package ltsm implements the LTSM side-channel multiplexer: a
// single RFB LtsmProtocol message stream is split into up to 253 typed
// channels, each carrying its own framed payload.
package ltsm

import (
	"fmt"
	"sync"

	"github.com/ltsm-go/connector/internal/logging"
	"github.com/ltsm-go/connector/internal/transport"
	"github.com/ltsm-go/connector/pkg/rfbtypes"
)

var log = logging.L("ltsm")

// Frame is one multiplexed LTSM frame: a channel id plus its payload.
// On the wire: magic(1) version(1) channel(1) length:u16(2) payload(length).
// This is a plain length-prefixed envelope with no HMAC or sequence
// validation: LTSM framing has no signing requirement (the RFB connection
// it rides over is already authenticated) and no replay-detection need
// (channels are session-scoped, not persisted).
type Frame struct {
	Channel byte
	Payload []byte
}

// ReadFrame reads and validates one LTSM frame from stream, including its
// leading magic byte. Used where the frame appears on its own (tests,
// standalone LTSM streams); within the RFB protocol engine the magic byte
// is the already-consumed ClientLtsmProtocol/ServerLtsmProtocol message
// type (255, == rfbtypes.LtsmMagic), so the dispatch loop calls
// ReadFrameBody instead.
func ReadFrame(stream transport.Stream) (Frame, error) {
	magic, err := transport.ReadU8(stream)
	if err != nil {
		return Frame{}, fmt.Errorf("ltsm: read magic: %w", err)
	}
	if magic != rfbtypes.LtsmMagic {
		return Frame{}, fmt.Errorf("ltsm: bad magic byte %#x", magic)
	}
	return ReadFrameBody(stream)
}

// ReadFrameBody reads version, channel, length and payload, assuming the
// caller has already consumed (and validated) the magic byte.
func ReadFrameBody(stream transport.Stream) (Frame, error) {
	version, err := transport.ReadU8(stream)
	if err != nil {
		return Frame{}, fmt.Errorf("ltsm: read version: %w", err)
	}
	if version != rfbtypes.LtsmVersion {
		return Frame{}, fmt.Errorf("ltsm: unsupported version %d", version)
	}
	channel, err := transport.ReadU8(stream)
	if err != nil {
		return Frame{}, fmt.Errorf("ltsm: read channel: %w", err)
	}
	length, err := transport.ReadU16BE(stream)
	if err != nil {
		return Frame{}, fmt.Errorf("ltsm: read length: %w", err)
	}
	if int(length) > rfbtypes.LtsmMaxPayload {
		return Frame{}, fmt.Errorf("ltsm: payload length %d exceeds max %d", length, rfbtypes.LtsmMaxPayload)
	}
	payload := make([]byte, length)
	if length > 0 {
		if err := stream.RecvExact(payload); err != nil {
			return Frame{}, fmt.Errorf("ltsm: read payload: %w", err)
		}
	}
	return Frame{Channel: channel, Payload: payload}, nil
}

// WriteFrame serializes and writes one LTSM frame, under sendMu so
// concurrent channel writers never interleave their headers and bodies.
func WriteFrame(stream transport.Stream, sendMu *sync.Mutex, f Frame) error {
	if len(f.Payload) > rfbtypes.LtsmMaxPayload {
		return fmt.Errorf("ltsm: payload length %d exceeds max %d", len(f.Payload), rfbtypes.LtsmMaxPayload)
	}

	sendMu.Lock()
	defer sendMu.Unlock()

	if err := transport.WriteU8(stream, rfbtypes.LtsmMagic); err != nil {
		return err
	}
	if err := transport.WriteU8(stream, rfbtypes.LtsmVersion); err != nil {
		return err
	}
	if err := transport.WriteU8(stream, f.Channel); err != nil {
		return err
	}
	if err := transport.WriteU16BE(stream, uint16(len(f.Payload))); err != nil {
		return err
	}
	if len(f.Payload) > 0 {
		if _, err := stream.Send(f.Payload); err != nil {
			return err
		}
	}
	return stream.SendFlush()
}
