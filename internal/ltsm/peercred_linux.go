//go:build linux

package ltsm

import (
	"fmt"
	"net"
	"os"

	"golang.org/x/sys/unix"
)

// PeerCredentials holds the kernel-verified identity of a unix-socket LTSM
// endpoint, read via SO_PEERCRED to gate which local user may open a
// channel against this connector.
type PeerCredentials struct {
	PID        int
	UID        uint32
	GID        uint32
	BinaryPath string
}

// PeerCredentialsFor returns the kernel-verified PID/UID/GID of conn via
// SO_PEERCRED and resolves the peer binary path from /proc/<pid>/exe.
// conn must be a *net.UnixConn.
func PeerCredentialsFor(conn net.Conn) (*PeerCredentials, error) {
	uc, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("ltsm: peer credentials require a unix connection, got %T", conn)
	}

	raw, err := uc.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("ltsm: get syscall conn: %w", err)
	}

	var cred *unix.Ucred
	var credErr error
	if err := raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	}); err != nil {
		return nil, fmt.Errorf("ltsm: control: %w", err)
	}
	if credErr != nil {
		return nil, fmt.Errorf("ltsm: getsockopt SO_PEERCRED: %w", credErr)
	}

	exePath, err := os.Readlink(fmt.Sprintf("/proc/%d/exe", cred.Pid))
	if err != nil {
		exePath = ""
	}

	return &PeerCredentials{
		PID:        int(cred.Pid),
		UID:        cred.Uid,
		GID:        cred.Gid,
		BinaryPath: exePath,
	}, nil
}

// AllowUID reports whether creds belongs to uid, the simplest channel-open
// gate: reject accepted connections from any other local user.
func (c *PeerCredentials) AllowUID(uid uint32) bool {
	return c != nil && c.UID == uid
}
