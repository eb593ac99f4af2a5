package rfb

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ltsm-go/connector/internal/collaborators"
	"github.com/ltsm-go/connector/internal/encoding"
	"github.com/ltsm-go/connector/internal/ltsm"
	"github.com/ltsm-go/connector/internal/ltsm/transferlog"
	"github.com/ltsm-go/connector/internal/pixel"
	"github.com/ltsm-go/connector/internal/transport"
)

// State is a node of the RFB connection state machine.
type State int

const (
	StateAwaitingVersion State = iota
	StateSecurityAdvertise
	StateClientInit
	StateReady
	StateClosed
)

// Config bundles the session's static configuration.
type Config struct {
	ServerVersion  ProtocolVersion
	Security       SecurityConfig
	DesktopName    string
	IdleTimeout    time.Duration
	ZlibLevel      int
	FramebufferNew func() *pixel.FrameBuffer
}

// Session drives one client connection through the RFB state machine,
// the encoding engine, and the LTSM multiplexer: one owning goroutine per
// connection, a reader loop dispatching to typed handlers, and a
// mutex-guarded shared send path.
type Session struct {
	// ID correlates this session's log lines across the handshake,
	// dispatch loop, and LTSM channels; generated once per connection.
	ID string

	conn   net.Conn
	stream transport.Stream
	state  State

	cfg Config

	clientFormat    pixel.PixelFormat
	clientEncodings []int32
	encoderRegistry map[int32]encoding.Encoder
	pool            *encoding.Pool

	fb *pixel.FrameBuffer

	capture    collaborators.Capture
	managerBus collaborators.ManagerBus

	ltsmRegistry *ltsm.Registry
	ltsmHandler  *ltsm.SystemHandler

	sendMu sync.Mutex

	lastActivity time.Time
	activityMu   sync.Mutex

	continuousUpdates bool
	continuousRegion  pixel.Region

	lastPointerMask uint8
}

// NewSession constructs a Session ready to Serve a freshly accepted conn.
func NewSession(conn net.Conn, cfg Config, capture collaborators.Capture, bus collaborators.ManagerBus) *Session {
	return NewSessionWithStream(conn, transport.NewRaw(conn, 0), cfg, capture, bus)
}

// NewSessionWithStream is NewSession with the byte stream supplied
// explicitly, rather than built from conn via transport.NewRaw. conn is
// still used for RemoteAddr/Close bookkeeping; stream is what the protocol
// actually reads and writes. Used by the wsdebug listener, where the wire
// bytes are carried inside WebSocket binary frames rather than raw TCP.
func NewSessionWithStream(conn net.Conn, stream transport.Stream, cfg Config, capture collaborators.Capture, bus collaborators.ManagerBus) *Session {
	s := &Session{
		ID:              uuid.NewString(),
		conn:            conn,
		stream:          stream,
		state:           StateAwaitingVersion,
		cfg:             cfg,
		encoderRegistry: encoding.NewRegistry(cfg.ZlibLevel),
		pool:            encoding.New(4, 256),
		capture:         capture,
		managerBus:      bus,
		ltsmRegistry:    ltsm.NewRegistry(),
	}
	s.clientFormat = pixel.NewTrueColor32()
	s.ltsmHandler = ltsm.NewSystemHandler(s.ltsmRegistry, s.sendLtsmFrame)
	return s
}

// WithArchiver wires a transfer-log archive sink into the session's LTSM
// system handler, so transfer_files commands get their manifest recorded.
func (s *Session) WithArchiver(archiver *transferlog.Archiver) *Session {
	s.ltsmHandler = s.ltsmHandler.WithArchiver(archiver)
	return s
}

// Serve runs the handshake then the message dispatch loop until the
// connection closes or a message fails to read or handle.
func (s *Session) Serve() error {
	defer func() {
		s.pool.StopAccepting()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.pool.Drain(ctx)
	}()
	defer s.ltsmRegistry.CloseAll()
	defer s.conn.Close()

	if err := s.handshake(); err != nil {
		return fmt.Errorf("rfb: handshake: %w", err)
	}
	s.state = StateReady
	s.touchActivity()
	log.Info("session ready", "sessionId", s.ID, "remote", s.conn.RemoteAddr())

	for {
		if err := s.dispatchOne(); err != nil {
			s.state = StateClosed
			return err
		}
	}
}

func (s *Session) handshake() error {
	version, err := negotiateVersion(s.stream, s.cfg.ServerVersion)
	if err != nil {
		return err
	}
	s.state = StateSecurityAdvertise

	stream, err := negotiateSecurity(s.conn, s.stream, version, s.cfg.Security)
	if err != nil {
		return err
	}
	s.stream = stream

	s.state = StateClientInit
	if _, err := recvClientInit(s.stream); err != nil {
		return err
	}

	width, height := s.capture.Size()
	s.fb = pixel.NewFrameBuffer(width, height, pixel.NewTrueColor32())
	if s.cfg.FramebufferNew != nil {
		s.fb = s.cfg.FramebufferNew()
	}

	return sendServerInit(s.stream, ServerInit{
		Width:  width,
		Height: height,
		Format: s.fb.Format,
		Name:   s.cfg.DesktopName,
	})
}

func (s *Session) touchActivity() {
	s.activityMu.Lock()
	defer s.activityMu.Unlock()
	s.lastActivity = time.Now()
}

// IdleSince reports how long it has been since the last input event.
func (s *Session) IdleSince() time.Duration {
	s.activityMu.Lock()
	defer s.activityMu.Unlock()
	return time.Since(s.lastActivity)
}

func (s *Session) sendLtsmFrame(f ltsm.Frame) error {
	return ltsm.WriteFrame(s.stream, &s.sendMu, f)
}

// selectedEncoder returns the encoder chosen from the client's last
// SetEncodings list, falling back to Raw.
func (s *Session) selectedEncoder() encoding.Encoder {
	return encoding.Select(s.clientEncodings, s.encoderRegistry)
}

// SendDamage encodes and sends one FramebufferUpdate covering damage,
// using the client's negotiated encoding and pixel format. Intended to be
// called from the capture-polling loop that owns this Session, not from
// the dispatch loop itself.
func (s *Session) SendDamage(damage []pixel.Region) error {
	if len(damage) == 0 {
		return nil
	}
	enc := s.selectedEncoder()
	return encoding.WriteFramebufferUpdate(s.stream, &s.sendMu, s.pool, s.fb, damage, enc, s.clientFormat)
}

// Close transitions the session to Closed, releasing its resources.
// Safe to call more than once.
func (s *Session) Close() error {
	s.state = StateClosed
	s.ltsmRegistry.CloseAll()
	return s.conn.Close()
}
