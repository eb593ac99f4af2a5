package rfb

import (
	"fmt"

	"github.com/ltsm-go/connector/internal/ltsm"
	"github.com/ltsm-go/connector/internal/transport"
	"github.com/ltsm-go/connector/pkg/rfbtypes"
)

// dispatchOne reads one client-to-server message and routes it to its
// handler: read one frame, switch on its message-type byte, call the
// registered handler.
func (s *Session) dispatchOne() error {
	msgType, err := transport.ReadU8(s.stream)
	if err != nil {
		return fmt.Errorf("rfb: read message type: %w", err)
	}

	switch msgType {
	case rfbtypes.ClientSetPixelFormat:
		return s.handleSetPixelFormat()
	case rfbtypes.ClientSetEncodings:
		return s.handleSetEncodings()
	case rfbtypes.ClientFramebufferUpdateRequest:
		return s.handleFramebufferUpdateRequest()
	case rfbtypes.ClientKeyEvent:
		return s.handleKeyEvent()
	case rfbtypes.ClientPointerEvent:
		return s.handlePointerEvent()
	case rfbtypes.ClientCutText:
		return s.handleClientCutText()
	case rfbtypes.ClientEnableContinuousUpdates:
		return s.handleEnableContinuousUpdates()
	case rfbtypes.ClientSetDesktopSize:
		return s.handleSetDesktopSize()
	case rfbtypes.ClientLtsmProtocol:
		return s.handleLtsmProtocol()
	default:
		return errUnknownMessageType(msgType)
	}
}

func (s *Session) handleSetPixelFormat() error {
	if _, err := readRaw3(s.stream); err != nil { // padding(3)
		return err
	}
	pf, err := readPixelFormat(s.stream)
	if err != nil {
		return err
	}
	if err := pf.Validate(); err != nil {
		return fmt.Errorf("rfb: client pixel format: %w", err)
	}
	s.clientFormat = pf
	return nil
}

func (s *Session) handleSetEncodings() error {
	msg, err := readSetEncodings(s.stream)
	if err != nil {
		return err
	}
	s.clientEncodings = msg.Encodings
	return nil
}

func (s *Session) handleFramebufferUpdateRequest() error {
	req, err := readFramebufferUpdateRequest(s.stream)
	if err != nil {
		return err
	}
	if !req.Incremental {
		s.capture.DamageAdd(req.Region)
	}
	return nil
}

func (s *Session) handleKeyEvent() error {
	ev, err := readKeyEvent(s.stream)
	if err != nil {
		return err
	}
	s.touchActivity()
	s.capture.FakeInputKeysym(ev.Keysym, ev.Pressed)
	return nil
}

// handlePointerEvent synthesizes a press/release for each button-mask bit
// that toggled since the previous event, or a plain motion event when only
// the position changed.
func (s *Session) handlePointerEvent() error {
	ev, err := readPointerEvent(s.stream)
	if err != nil {
		return err
	}
	s.touchActivity()

	prevMask := s.lastPointerMask
	s.lastPointerMask = ev.ButtonMask

	toggled := prevMask ^ ev.ButtonMask
	if toggled == 0 {
		s.capture.FakeInputTest(-1, ev.X, ev.Y) // motion only
		return nil
	}
	for bit := uint8(0); bit < 8; bit++ {
		mask := uint8(1) << bit
		if toggled&mask == 0 {
			continue
		}
		s.capture.FakeInputTest(int(bit), ev.X, ev.Y)
	}
	return nil
}

func (s *Session) handleClientCutText() error {
	msg, err := readClientCutText(s.stream)
	if err != nil {
		return err
	}
	s.capture.SetClipboardEvent([]byte(msg.Text))
	return nil
}

func (s *Session) handleEnableContinuousUpdates() error {
	msg, err := readEnableContinuousUpdates(s.stream)
	if err != nil {
		return err
	}
	s.continuousUpdates = msg.Enable
	s.continuousRegion = msg.Region
	return nil
}

func (s *Session) handleSetDesktopSize() error {
	msg, err := readSetDesktopSize(s.stream)
	if err != nil {
		return err
	}
	return s.capture.SetRandrScreenSize(int(msg.Width), int(msg.Height))
}

// handleLtsmProtocol delegates to the LTSM multiplexer: the outer
// message-type byte (255) doubles as the LTSM frame's magic byte, so the
// remaining version/channel/length/payload are read via ReadFrameBody.
func (s *Session) handleLtsmProtocol() error {
	frame, err := ltsm.ReadFrameBody(s.stream)
	if err != nil {
		return fmt.Errorf("rfb: ltsm frame: %w", err)
	}
	if frame.Channel == 0 {
		return s.ltsmHandler.Handle(frame.Payload)
	}
	ch, ok := s.ltsmRegistry.Lookup(frame.Channel)
	if !ok {
		return fmt.Errorf("rfb: ltsm frame for unknown channel %d", frame.Channel)
	}
	return ch.Deliver(frame.Payload)
}

func readRaw3(stream transport.Stream) ([3]byte, error) {
	var buf [3]byte
	err := stream.RecvExact(buf[:])
	return buf, err
}
