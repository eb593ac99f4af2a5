//go:build linux

package ltsm

import (
	"net"
	"os"
	"testing"
)

func TestPeerCredentialsForRejectsNonUnixConn(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	if _, err := PeerCredentialsFor(server); err == nil {
		t.Fatal("expected error for non-unix connection")
	}
}

func TestPeerCredentialsForReportsOwnUID(t *testing.T) {
	sock := t.TempDir() + "/peercred.sock"
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	done := make(chan *PeerCredentials, 1)
	errCh := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			errCh <- err
			return
		}
		defer conn.Close()
		creds, err := PeerCredentialsFor(conn)
		if err != nil {
			errCh <- err
			return
		}
		done <- creds
	}()

	client, err := net.Dial("unix", sock)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	select {
	case err := <-errCh:
		t.Fatalf("peer credentials: %v", err)
	case creds := <-done:
		if uid := uint32(os.Getuid()); !creds.AllowUID(uid) {
			t.Fatalf("creds.UID = %d, want %d", creds.UID, uid)
		}
	}
}
