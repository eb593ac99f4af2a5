package rfb

import (
	"fmt"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// SetEncodings is the decoded client SetEncodings message.
type SetEncodings struct {
	Encodings []int32
}

func readSetEncodings(stream transport.Stream) (SetEncodings, error) {
	if _, err := transport.ReadU8(stream); err != nil { // padding
		return SetEncodings{}, err
	}
	n, err := transport.ReadU16BE(stream)
	if err != nil {
		return SetEncodings{}, err
	}
	enc := make([]int32, n)
	for i := range enc {
		v, err := transport.ReadU32BE(stream)
		if err != nil {
			return SetEncodings{}, err
		}
		enc[i] = int32(v)
	}
	return SetEncodings{Encodings: enc}, nil
}

// FramebufferUpdateRequest is the decoded client request.
type FramebufferUpdateRequest struct {
	Incremental bool
	Region      pixel.Region
}

func readFramebufferUpdateRequest(stream transport.Stream) (FramebufferUpdateRequest, error) {
	incremental, err := transport.ReadU8(stream)
	if err != nil {
		return FramebufferUpdateRequest{}, err
	}
	x, err := transport.ReadU16BE(stream)
	if err != nil {
		return FramebufferUpdateRequest{}, err
	}
	y, err := transport.ReadU16BE(stream)
	if err != nil {
		return FramebufferUpdateRequest{}, err
	}
	w, err := transport.ReadU16BE(stream)
	if err != nil {
		return FramebufferUpdateRequest{}, err
	}
	h, err := transport.ReadU16BE(stream)
	if err != nil {
		return FramebufferUpdateRequest{}, err
	}
	return FramebufferUpdateRequest{
		Incremental: incremental != 0,
		Region:      pixel.NewRegion(int(x), int(y), int(w), int(h)),
	}, nil
}

// KeyEvent is the decoded client key event.
type KeyEvent struct {
	Pressed bool
	Keysym  uint32
}

func readKeyEvent(stream transport.Stream) (KeyEvent, error) {
	pressed, err := transport.ReadU8(stream)
	if err != nil {
		return KeyEvent{}, err
	}
	var pad [2]byte
	if err := stream.RecvExact(pad[:]); err != nil {
		return KeyEvent{}, err
	}
	keysym, err := transport.ReadU32BE(stream)
	if err != nil {
		return KeyEvent{}, err
	}
	return KeyEvent{Pressed: pressed != 0, Keysym: keysym}, nil
}

// PointerEvent is the decoded client pointer event.
type PointerEvent struct {
	ButtonMask uint8
	X, Y       int
}

func readPointerEvent(stream transport.Stream) (PointerEvent, error) {
	mask, err := transport.ReadU8(stream)
	if err != nil {
		return PointerEvent{}, err
	}
	x, err := transport.ReadU16BE(stream)
	if err != nil {
		return PointerEvent{}, err
	}
	y, err := transport.ReadU16BE(stream)
	if err != nil {
		return PointerEvent{}, err
	}
	return PointerEvent{ButtonMask: mask, X: int(x), Y: int(y)}, nil
}

// ClientCutText is the decoded client clipboard message.
type ClientCutText struct {
	Text string
}

func readClientCutText(stream transport.Stream) (ClientCutText, error) {
	var pad [3]byte
	if err := stream.RecvExact(pad[:]); err != nil {
		return ClientCutText{}, err
	}
	n, err := transport.ReadU32BE(stream)
	if err != nil {
		return ClientCutText{}, err
	}
	buf := make([]byte, n)
	if n > 0 {
		if err := stream.RecvExact(buf); err != nil {
			return ClientCutText{}, err
		}
	}
	return ClientCutText{Text: string(buf)}, nil
}

// EnableContinuousUpdates is the decoded client message.
type EnableContinuousUpdates struct {
	Enable bool
	Region pixel.Region
}

func readEnableContinuousUpdates(stream transport.Stream) (EnableContinuousUpdates, error) {
	enable, err := transport.ReadU8(stream)
	if err != nil {
		return EnableContinuousUpdates{}, err
	}
	x, err := transport.ReadU16BE(stream)
	if err != nil {
		return EnableContinuousUpdates{}, err
	}
	y, err := transport.ReadU16BE(stream)
	if err != nil {
		return EnableContinuousUpdates{}, err
	}
	w, err := transport.ReadU16BE(stream)
	if err != nil {
		return EnableContinuousUpdates{}, err
	}
	h, err := transport.ReadU16BE(stream)
	if err != nil {
		return EnableContinuousUpdates{}, err
	}
	return EnableContinuousUpdates{Enable: enable != 0, Region: pixel.NewRegion(int(x), int(y), int(w), int(h))}, nil
}

// ScreenLayout is one entry of a SetDesktopSize screen list.
type ScreenLayout struct {
	ID            uint32
	X, Y          uint16
	Width, Height uint16
	Flags         uint32
}

// SetDesktopSize is the decoded client message.
type SetDesktopSize struct {
	Width, Height uint16
	Screens       []ScreenLayout
}

func readSetDesktopSize(stream transport.Stream) (SetDesktopSize, error) {
	if _, err := transport.ReadU8(stream); err != nil { // padding
		return SetDesktopSize{}, err
	}
	w, err := transport.ReadU16BE(stream)
	if err != nil {
		return SetDesktopSize{}, err
	}
	h, err := transport.ReadU16BE(stream)
	if err != nil {
		return SetDesktopSize{}, err
	}
	n, err := transport.ReadU8(stream)
	if err != nil {
		return SetDesktopSize{}, err
	}
	if _, err := transport.ReadU8(stream); err != nil { // padding
		return SetDesktopSize{}, err
	}
	screens := make([]ScreenLayout, n)
	for i := range screens {
		var s ScreenLayout
		id, err := transport.ReadU32BE(stream)
		if err != nil {
			return SetDesktopSize{}, err
		}
		s.ID = id
		x, err := transport.ReadU16BE(stream)
		if err != nil {
			return SetDesktopSize{}, err
		}
		y, err := transport.ReadU16BE(stream)
		if err != nil {
			return SetDesktopSize{}, err
		}
		sw, err := transport.ReadU16BE(stream)
		if err != nil {
			return SetDesktopSize{}, err
		}
		sh, err := transport.ReadU16BE(stream)
		if err != nil {
			return SetDesktopSize{}, err
		}
		flags, err := transport.ReadU32BE(stream)
		if err != nil {
			return SetDesktopSize{}, err
		}
		s.X, s.Y, s.Width, s.Height, s.Flags = x, y, sw, sh, flags
		screens[i] = s
	}
	return SetDesktopSize{Width: w, Height: h, Screens: screens}, nil
}

func errUnknownMessageType(t byte) error {
	return fmt.Errorf("rfb: unknown client message type %d", t)
}
