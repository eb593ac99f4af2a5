// Package cliproto implements the connector's --type protocol selection:
// vnc, rdp, spice, or auto (peek the client's first byte and branch). RDP
// and SPICE are out of scope (third-party-stack dependent stubs), so
// detection here exists to route to the real RFB engine and to fail
// loudly, rather than silently, for the other two.
package cliproto

import (
	"fmt"

	"github.com/ltsm-go/connector/internal/transport"
)

// Kind identifies the wire protocol a connection speaks.
type Kind int

const (
	KindVNC Kind = iota
	KindRDP
	KindSPICE
)

func (k Kind) String() string {
	switch k {
	case KindRDP:
		return "rdp"
	case KindSPICE:
		return "spice"
	default:
		return "vnc"
	}
}

// ParseKind maps a --type flag value to a Kind. "auto" is not a Kind
// itself; callers needing auto-detection should call Detect instead.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "vnc":
		return KindVNC, nil
	case "rdp":
		return KindRDP, nil
	case "spice":
		return KindSPICE, nil
	default:
		return 0, fmt.Errorf("cliproto: unknown protocol type %q", s)
	}
}

// rdpFirstByte and spiceFirstByte are the leading bytes of an RDP X.224
// connection request TPKT header and a SPICE RED_LINK_HEADER magic,
// respectively.
const (
	rdpFirstByte   = 0x03
	spiceFirstByte = 0x52
)

// Detect peeks the connection's first byte without consuming it and
// returns the wire protocol it indicates, defaulting to VNC for anything
// that isn't a recognized RDP or SPICE lead byte.
func Detect(stream transport.Stream) (Kind, error) {
	b, err := stream.Peek1()
	if err != nil {
		return 0, fmt.Errorf("cliproto: peek first byte: %w", err)
	}
	switch b {
	case rdpFirstByte:
		return KindRDP, nil
	case spiceFirstByte:
		return KindSPICE, nil
	default:
		return KindVNC, nil
	}
}

// ErrUnsupportedProtocol names an out-of-scope wire protocol (RDP, SPICE).
// Their codepaths are stubs: the connector accepts the flag and
// auto-detection result but refuses to serve the connection.
var ErrUnsupportedProtocol = fmt.Errorf("cliproto: protocol not implemented (RDP/SPICE are stubs)")

// Serve dispatches a connection to the handler appropriate for kind. Only
// KindVNC has a real handler; RDP/SPICE return ErrUnsupportedProtocol.
func Serve(kind Kind, serveVNC func() error) error {
	switch kind {
	case KindVNC:
		return serveVNC()
	default:
		return ErrUnsupportedProtocol
	}
}
