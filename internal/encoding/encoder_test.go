package encoding

import (
	"bytes"
	"testing"
)

func TestSendRunLengthSingleByte(t *testing.T) {
	var buf bytes.Buffer
	sendRunLength(&buf, 1)
	if got := buf.Bytes(); len(got) != 1 || got[0] != 0 {
		t.Fatalf("length 1 = %v, want [0]", got)
	}
}

func TestSendRunLengthExactly255(t *testing.T) {
	var buf bytes.Buffer
	sendRunLength(&buf, 255)
	want := []byte{254}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("length 255 = %v, want %v", buf.Bytes(), want)
	}
}

func TestSendRunLengthSpansMultiple0xFF(t *testing.T) {
	var buf bytes.Buffer
	sendRunLength(&buf, 256)
	want := []byte{0xFF, 0}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("length 256 = %v, want %v", buf.Bytes(), want)
	}

	buf.Reset()
	sendRunLength(&buf, 510)
	want = []byte{0xFF, 254}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("length 510 = %v, want %v", buf.Bytes(), want)
	}
}

func TestSendRunLengthZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for zero-length run")
		}
	}()
	var buf bytes.Buffer
	sendRunLength(&buf, 0)
}
