package cliproto

import (
	"net"
	"testing"
	"time"

	"github.com/ltsm-go/connector/internal/transport"
)

func TestDetectClassifiesLeadByte(t *testing.T) {
	cases := []struct {
		name string
		lead byte
		want Kind
	}{
		{"vnc default", 0x00, KindVNC},
		{"rdp tpkt", rdpFirstByte, KindRDP},
		{"spice magic", spiceFirstByte, KindSPICE},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server, client := net.Pipe()
			defer server.Close()
			defer client.Close()

			go func() { _, _ = client.Write([]byte{tc.lead, 0, 0}) }()

			stream := transport.NewRaw(server, time.Second)
			got, err := Detect(stream)
			if err != nil {
				t.Fatalf("Detect() error = %v", err)
			}
			if got != tc.want {
				t.Fatalf("Detect() = %v, want %v", got, tc.want)
			}

			// Peek1 must not consume the byte.
			b, err := stream.Peek1()
			if err != nil || b != tc.lead {
				t.Fatalf("Peek1 after Detect = %v, %v, want %v, nil", b, err, tc.lead)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("vnc"); err != nil || k != KindVNC {
		t.Fatalf("ParseKind(vnc) = %v, %v", k, err)
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestServeDispatchesVNCOnly(t *testing.T) {
	called := false
	err := Serve(KindVNC, func() error { called = true; return nil })
	if err != nil || !called {
		t.Fatalf("Serve(KindVNC) = %v, called=%v", err, called)
	}

	if err := Serve(KindRDP, func() error { return nil }); err != ErrUnsupportedProtocol {
		t.Fatalf("Serve(KindRDP) = %v, want ErrUnsupportedProtocol", err)
	}
}
