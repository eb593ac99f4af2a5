package rfb

import (
	"fmt"
	"net"
	"strings"

	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/rfb/security"
	"github.com/ltsm-go/connector/internal/transport"
	"github.com/ltsm-go/connector/pkg/rfbtypes"
)

// ProtocolVersion identifies the negotiated RFB version.
type ProtocolVersion int

const (
	Version33 ProtocolVersion = 33
	Version37 ProtocolVersion = 37
	Version38 ProtocolVersion = 38
)

func (v ProtocolVersion) String() string {
	switch v {
	case Version33:
		return "RFB 003.003"
	case Version37:
		return "RFB 003.007"
	default:
		return "RFB 003.008"
	}
}

// SecurityConfig selects which security types the server advertises and
// the material each needs.
type SecurityConfig struct {
	AuthNone      bool
	AuthVNC       bool
	VNCPasswdFile string
	AuthVeNCrypt  bool
	TLSCreds      transport.TLSCredentials
}

// negotiateVersion writes the server's version banner and reads back the
// client's; a client requesting an older version the server still
// supports is honored as a downgrade rather than rejected.
func negotiateVersion(stream transport.Stream, serverVersion ProtocolVersion) (ProtocolVersion, error) {
	banner := serverVersion.String() + "\n"
	if _, err := stream.Send([]byte(banner)); err != nil {
		return 0, fmt.Errorf("rfb: send version banner: %w", err)
	}
	if err := stream.SendFlush(); err != nil {
		return 0, err
	}

	buf := make([]byte, 12)
	if err := stream.RecvExact(buf); err != nil {
		return 0, fmt.Errorf("rfb: read client version: %w", err)
	}
	client := strings.TrimRight(string(buf), "\n")
	switch client {
	case "RFB 003.003":
		return Version33, nil
	case "RFB 003.007":
		return Version37, nil
	case "RFB 003.008":
		return Version38, nil
	default:
		// Any other advertised minor is treated as 3.8, the superset
		// behaviour most real VNC clients rely on.
		return Version38, nil
	}
}

// negotiateSecurity advertises security types per version and runs the
// chosen sub-protocol, returning the (possibly TLS-wrapped) stream to use
// from here on.
func negotiateSecurity(conn net.Conn, stream transport.Stream, version ProtocolVersion, cfg SecurityConfig) (transport.Stream, error) {
	var types []byte
	if cfg.AuthNone {
		types = append(types, rfbtypes.SecurityTypeNone)
	}
	if cfg.AuthVNC {
		types = append(types, rfbtypes.SecurityTypeVNC)
	}
	if cfg.AuthVeNCrypt {
		types = append(types, rfbtypes.SecurityTypeVeNCrypt)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("rfb: no security types configured")
	}

	if version == Version33 {
		if err := transport.WriteU32BE(stream, uint32(types[0])); err != nil {
			return nil, err
		}
		if err := stream.SendFlush(); err != nil {
			return nil, err
		}
		return runSecurityType(conn, stream, int(types[0]), version, cfg)
	}

	if err := transport.WriteU8(stream, uint8(len(types))); err != nil {
		return nil, err
	}
	for _, t := range types {
		if err := transport.WriteU8(stream, t); err != nil {
			return nil, err
		}
	}
	if err := stream.SendFlush(); err != nil {
		return nil, err
	}

	chosen, err := transport.ReadU8(stream)
	if err != nil {
		return nil, fmt.Errorf("rfb: read client security choice: %w", err)
	}

	out, err := runSecurityType(conn, stream, int(chosen), version, cfg)
	if err != nil {
		if version == Version38 {
			reason := err.Error()
			_ = transport.WriteU32BE(stream, 1)
			_ = transport.WriteU32BE(stream, uint32(len(reason)))
			_, _ = stream.Send([]byte(reason))
			_ = stream.SendFlush()
		}
		return nil, err
	}

	if version == Version38 || chosen != rfbtypes.SecurityTypeNone {
		if err := transport.WriteU32BE(out, 0); err != nil {
			return nil, err
		}
		if err := out.SendFlush(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func runSecurityType(conn net.Conn, stream transport.Stream, chosen int, version ProtocolVersion, cfg SecurityConfig) (transport.Stream, error) {
	switch chosen {
	case rfbtypes.SecurityTypeNone:
		return stream, nil

	case rfbtypes.SecurityTypeVNC:
		challenge, err := security.NewChallenge()
		if err != nil {
			return nil, err
		}
		if _, err := stream.Send(challenge); err != nil {
			return nil, err
		}
		if err := stream.SendFlush(); err != nil {
			return nil, err
		}
		response := make([]byte, security.ChallengeSize)
		if err := stream.RecvExact(response); err != nil {
			return nil, fmt.Errorf("rfb: read vnc auth response: %w", err)
		}
		ok, err := security.AuthenticateAgainstFile(cfg.VNCPasswdFile, challenge, response)
		if err != nil {
			return nil, fmt.Errorf("rfb: vnc auth: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("rfb: vnc auth: password mismatch")
		}
		return stream, nil

	case rfbtypes.SecurityTypeVeNCrypt:
		if err := transport.WriteU8(stream, 0); err != nil {
			return nil, err
		}
		if err := transport.WriteU8(stream, 2); err != nil {
			return nil, err
		}
		if err := stream.SendFlush(); err != nil {
			return nil, err
		}
		major, err := transport.ReadU8(stream)
		if err != nil {
			return nil, err
		}
		minor, err := transport.ReadU8(stream)
		if err != nil {
			return nil, err
		}
		ver := security.VeNCryptVersion{Major: major, Minor: minor}
		if !ver.Supported() {
			_ = transport.WriteU8(stream, 255)
			_ = stream.SendFlush()
			return nil, fmt.Errorf("rfb: unsupported vencrypt version %d.%d", major, minor)
		}
		if err := transport.WriteU8(stream, 0); err != nil {
			return nil, err
		}
		return security.NegotiateServer(conn, stream, ver, cfg.TLSCreds, 0)

	default:
		return nil, fmt.Errorf("rfb: unsupported security type %d", chosen)
	}
}

// ServerInit holds the parameters written by ServerInit; Name is
// UTF-8 desktop name text.
type ServerInit struct {
	Width, Height int
	Format        pixel.PixelFormat
	Name          string
}

func sendServerInit(stream transport.Stream, init ServerInit) error {
	if err := transport.WriteU16BE(stream, uint16(init.Width)); err != nil {
		return err
	}
	if err := transport.WriteU16BE(stream, uint16(init.Height)); err != nil {
		return err
	}
	if err := writePixelFormat(stream, init.Format); err != nil {
		return err
	}
	name := []byte(init.Name)
	if err := transport.WriteU32BE(stream, uint32(len(name))); err != nil {
		return err
	}
	if _, err := stream.Send(name); err != nil {
		return err
	}
	return stream.SendFlush()
}

// recvClientInit reads the one-byte ClientInit ("shared" flag).
func recvClientInit(stream transport.Stream) (shared bool, err error) {
	b, err := transport.ReadU8(stream)
	if err != nil {
		return false, fmt.Errorf("rfb: read client init: %w", err)
	}
	return b != 0, nil
}
