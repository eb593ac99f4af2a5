package decode

import (
	"bytes"
	"io"
)

// memStream adapts an in-memory byte slice to transport.Stream, used to
// feed an inflated ZlibHex tile body through HextileDecoder without a real
// connection.
type memStream struct {
	r *bytes.Reader
}

func newMemStream(b []byte) *memStream {
	return &memStream{r: bytes.NewReader(b)}
}

func (m *memStream) Recv(buf []byte) (int, error) { return m.r.Read(buf) }

func (m *memStream) RecvExact(buf []byte) error {
	_, err := io.ReadFull(m.r, buf)
	return err
}

func (m *memStream) Peek1() (byte, error) {
	b, err := m.r.ReadByte()
	if err != nil {
		return 0, err
	}
	_ = m.r.UnreadByte()
	return b, nil
}

func (m *memStream) HasInput() bool { return m.r.Len() > 0 }

func (m *memStream) Send([]byte) (int, error) { return 0, io.ErrClosedPipe }

func (m *memStream) SendFlush() error { return nil }

func (m *memStream) Close() error { return nil }
