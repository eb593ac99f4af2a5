package ltsm

import (
	"net"
	"sync"
	"testing"
	"time"

	"github.com/ltsm-go/connector/internal/transport"
)

func TestFrameRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverStream := transport.NewRaw(server, time.Second)
	clientStream := transport.NewRaw(client, time.Second)
	var sendMu sync.Mutex

	done := make(chan error, 1)
	go func() {
		done <- WriteFrame(serverStream, &sendMu, Frame{Channel: 7, Payload: []byte("hello channel")})
	}()

	got, err := ReadFrame(clientStream)
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if got.Channel != 7 {
		t.Errorf("channel = %d, want 7", got.Channel)
	}
	if string(got.Payload) != "hello channel" {
		t.Errorf("payload = %q", got.Payload)
	}
}

func TestFrameRejectsBadMagic(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		client.Write([]byte{0x00, 0x01, 0x00, 0x00, 0x00})
	}()

	stream := transport.NewRaw(server, time.Second)
	if _, err := ReadFrame(stream); err == nil {
		t.Fatal("expected error for bad magic byte")
	}
}

func TestFrameRejectsOversizePayload(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()
	stream := transport.NewRaw(server, time.Second)
	var sendMu sync.Mutex

	err := WriteFrame(stream, &sendMu, Frame{Channel: 1, Payload: make([]byte, 70000)})
	if err == nil {
		t.Fatal("expected error for oversize payload")
	}
}
