// Package wsdebug wraps a gorilla/websocket connection as a transport.Stream
// so the RFB engine can be driven over a WebSocket for debug/inspection
// tooling (a noVNC-style browser client, or a recorded-session replay tool)
// without touching the production raw-TCP path: ping/pong keepalive,
// write-deadline discipline, single-writer-goroutine via a send mutex.
package wsdebug

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ltsm-go/connector/internal/logging"
	"github.com/ltsm-go/connector/internal/transport"
)

var log = logging.L("wsdebug")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Stream adapts a *websocket.Conn's binary-message framing to the
// transport.Stream byte-oriented interface, buffering leftover bytes from a
// message across Recv calls the same way transport's raw stream buffers a
// partial read.
type Stream struct {
	conn *websocket.Conn

	sendMu sync.Mutex

	recvMu  sync.Mutex
	pending []byte

	closeOnce sync.Once
	pingStop  chan struct{}
}

// Upgrade upgrades an HTTP request to a WebSocket connection and returns a
// Stream ready to drive an rfb.Session. Starts a background ping ticker so
// intermediary proxies don't time out an idle debug connection.
func Upgrade(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	s := &Stream{conn: conn, pingStop: make(chan struct{})}
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	go s.pingLoop()
	return s, nil
}

func (s *Stream) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sendMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.sendMu.Unlock()
			if err != nil {
				log.Debug("wsdebug ping failed, stopping", "error", err)
				return
			}
		case <-s.pingStop:
			return
		}
	}
}

func (s *Stream) fill() error {
	if len(s.pending) > 0 {
		return nil
	}
	for {
		mt, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		if mt != websocket.BinaryMessage || len(data) == 0 {
			continue
		}
		s.pending = data
		return nil
	}
}

func (s *Stream) Recv(buf []byte) (int, error) {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()
	if err := s.fill(); err != nil {
		return 0, err
	}
	n := copy(buf, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *Stream) RecvExact(buf []byte) error {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()
	total := 0
	for total < len(buf) {
		if err := s.fill(); err != nil {
			return err
		}
		n := copy(buf[total:], s.pending)
		s.pending = s.pending[n:]
		total += n
	}
	return nil
}

func (s *Stream) Peek1() (byte, error) {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()
	if err := s.fill(); err != nil {
		return 0, err
	}
	return s.pending[0], nil
}

func (s *Stream) HasInput() bool {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()
	return len(s.pending) > 0
}

func (s *Stream) Send(buf []byte) (int, error) {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, buf); err != nil {
		return 0, err
	}
	return len(buf), nil
}

func (s *Stream) SendFlush() error { return nil }

// UnderlyingConn exposes the raw net.Conn beneath the WebSocket framing, so
// callers that need a net.Conn for bookkeeping (RemoteAddr, a backstop
// Close) can get one without depending on gorilla/websocket directly.
func (s *Stream) UnderlyingConn() net.Conn {
	return s.conn.UnderlyingConn()
}

func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.pingStop) })
	return s.conn.Close()
}

var _ transport.Stream = (*Stream)(nil)
