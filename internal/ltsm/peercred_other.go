//go:build !linux

package ltsm

import (
	"fmt"
	"net"
)

// PeerCredentials mirrors the linux variant's shape on platforms where
// SO_PEERCRED is unavailable; AllowUID always fails closed.
type PeerCredentials struct {
	PID        int
	UID        uint32
	GID        uint32
	BinaryPath string
}

// PeerCredentialsFor is unsupported outside linux.
func PeerCredentialsFor(conn net.Conn) (*PeerCredentials, error) {
	return nil, fmt.Errorf("ltsm: peer credential verification is only supported on linux")
}

// AllowUID always reports false; credentials are never available here.
func (c *PeerCredentials) AllowUID(uid uint32) bool {
	return false
}
