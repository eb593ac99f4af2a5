// Package rfb implements the RFB protocol state machine: version
// and security handshake, ServerInit, and the client/server message
// dispatch loop that drives the encoding engine and the LTSM multiplexer.
package rfb

import (
	"fmt"

	"github.com/ltsm-go/connector/internal/logging"
	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

var log = logging.L("rfb")

// readPixelFormat decodes the 16-byte wire PixelFormat structure carried in
// ServerInit and SetPixelFormat payloads.
func readPixelFormat(stream transport.Stream) (pixel.PixelFormat, error) {
	var buf [16]byte
	if err := stream.RecvExact(buf[:]); err != nil {
		return pixel.PixelFormat{}, fmt.Errorf("rfb: read pixel format: %w", err)
	}
	pf := pixel.PixelFormat{
		BitsPerPixel: int(buf[0]),
		Depth:        int(buf[1]),
		BigEndian:    buf[2] != 0,
		TrueColor:    buf[3] != 0,
		RedMax:       uint16(buf[4])<<8 | uint16(buf[5]),
		GreenMax:     uint16(buf[6])<<8 | uint16(buf[7]),
		BlueMax:      uint16(buf[8])<<8 | uint16(buf[9]),
		RedShift:     buf[10],
		GreenShift:   buf[11],
		BlueShift:    buf[12],
	}
	return pf, nil
}

// writePixelFormat encodes pf into the 16-byte wire structure.
func writePixelFormat(stream transport.Stream, pf pixel.PixelFormat) error {
	var buf [16]byte
	buf[0] = byte(pf.BitsPerPixel)
	buf[1] = byte(pf.Depth)
	if pf.BigEndian {
		buf[2] = 1
	}
	if pf.TrueColor {
		buf[3] = 1
	}
	buf[4] = byte(pf.RedMax >> 8)
	buf[5] = byte(pf.RedMax)
	buf[6] = byte(pf.GreenMax >> 8)
	buf[7] = byte(pf.GreenMax)
	buf[8] = byte(pf.BlueMax >> 8)
	buf[9] = byte(pf.BlueMax)
	buf[10] = pf.RedShift
	buf[11] = pf.GreenShift
	buf[12] = pf.BlueShift
	_, err := stream.Send(buf[:])
	return err
}
