package security

import (
	"fmt"
	"net"
	"time"

	"github.com/ltsm-go/connector/internal/transport"
)

// VeNCrypt sub-type ids.
const (
	SubTypeTLSNone  = 1
	SubTypeX509None = 2
)

// VeNCryptVersion is the (major, minor) pair negotiated before sub-type
// selection; the server offers 0.2 and also accepts a client answering 0.1.
type VeNCryptVersion struct {
	Major, Minor uint8
}

// Supported reports whether v is an acceptable client version; anything
// below 0.1 or above 0.2 aborts the VeNCrypt handshake.
func (v VeNCryptVersion) Supported() bool {
	return v.Major == 0 && v.Minor >= 1 && v.Minor <= 2
}

// NegotiateServer performs the VeNCrypt sub-protocol as the server: the
// caller has already written the 0,2 version bytes and read back the
// client's chosen (major,minor); this function advertises sub-types, reads
// the client's pick, and upgrades conn to TLS on that pick. Returns the
// wrapped transport.Stream carrying subsequent bytes.
//
// The advertised sub-type list and reply width branch on whether the
// negotiated minor version is 1 or 2.
func NegotiateServer(conn net.Conn, stream transport.Stream, version VeNCryptVersion, creds transport.TLSCredentials, readTimeout time.Duration) (transport.Stream, error) {
	if !version.Supported() {
		return nil, fmt.Errorf("security: unsupported vencrypt version %d.%d", version.Major, version.Minor)
	}

	subType, err := advertiseAndChoose(stream, version)
	if err != nil {
		return nil, err
	}

	switch subType {
	case SubTypeTLSNone:
		creds.AnonDH = true
	case SubTypeX509None:
		creds.AnonDH = false
	default:
		return nil, fmt.Errorf("security: unknown vencrypt sub-type %d", subType)
	}

	if err := transport.WriteU8(stream, 1); err != nil { // ack: sub-type accepted
		return nil, fmt.Errorf("security: ack vencrypt sub-type: %w", err)
	}

	cfg, err := transport.BuildServerConfig(creds)
	if err != nil {
		return nil, fmt.Errorf("security: build tls config: %w", err)
	}
	return transport.WrapServer(conn, cfg, readTimeout)
}

func advertiseAndChoose(stream transport.Stream, version VeNCryptVersion) (int, error) {
	subTypes := []int{SubTypeTLSNone, SubTypeX509None}

	if version.Minor == 1 {
		if err := transport.WriteU8(stream, uint8(len(subTypes))); err != nil {
			return 0, err
		}
		for _, st := range subTypes {
			if err := transport.WriteU8(stream, uint8(st)); err != nil {
				return 0, err
			}
		}
		if err := stream.SendFlush(); err != nil {
			return 0, err
		}
		chosen, err := transport.ReadU8(stream)
		return int(chosen), err
	}

	// Minor == 2: u8 count, then u32-per-id.
	if err := transport.WriteU8(stream, uint8(len(subTypes))); err != nil {
		return 0, err
	}
	for _, st := range subTypes {
		if err := transport.WriteU32BE(stream, uint32(st)); err != nil {
			return 0, err
		}
	}
	if err := stream.SendFlush(); err != nil {
		return 0, err
	}
	chosen, err := transport.ReadU32BE(stream)
	return int(chosen), err
}
