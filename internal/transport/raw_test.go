package transport

import (
	"net"
	"testing"
	"time"
)

func TestRawStreamRecvExactAndPeek(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		client.Write([]byte("RFB 003.008\n"))
	}()

	s := NewRaw(server, time.Second)
	b, err := s.Peek1()
	if err != nil {
		t.Fatalf("peek1: %v", err)
	}
	if b != 'R' {
		t.Errorf("peek1 = %q, want 'R'", b)
	}

	buf := make([]byte, 12)
	if err := s.RecvExact(buf); err != nil {
		t.Fatalf("recv exact: %v", err)
	}
	if string(buf) != "RFB 003.008\n" {
		t.Errorf("recv exact = %q", buf)
	}
}

func TestRawStreamSendIsFullWrite(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	payload := make([]byte, 10000)
	for i := range payload {
		payload[i] = byte(i)
	}

	done := make(chan []byte, 1)
	go func() {
		buf := make([]byte, len(payload))
		n := 0
		for n < len(buf) {
			m, err := client.Read(buf[n:])
			if err != nil {
				break
			}
			n += m
		}
		done <- buf[:n]
	}()

	s := NewRaw(server, time.Second)
	n, err := s.Send(payload)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("send returned %d, want %d", n, len(payload))
	}
	if err := s.SendFlush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got := <-done
	if len(got) != len(payload) {
		t.Fatalf("received %d bytes, want %d", len(got), len(payload))
	}
}
