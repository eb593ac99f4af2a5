package ltsm

import (
	"context"
	"net"
)

// Listener accepts local connections (a unix socket, for example) and
// opens one LTSM channel per accepted connection, announcing it to the
// peer with a channel_open system command.
type Listener struct {
	ln         net.Listener
	registry   *Registry
	typ        ChannelType
	speed      Speed
	send       func(Frame) error
	allowedUID *uint32
}

// NewListener wraps ln to plan one channel per accepted connection.
func NewListener(ln net.Listener, registry *Registry, typ ChannelType, speed Speed, send func(Frame) error) *Listener {
	return &Listener{ln: ln, registry: registry, typ: typ, speed: speed, send: send}
}

// WithAllowedUID restricts accepted unix-socket connections to uid, checked
// via kernel peer credentials (linux only; rejects everything elsewhere).
func (l *Listener) WithAllowedUID(uid uint32) *Listener {
	l.allowedUID = &uid
	return l
}

// Serve accepts connections until ctx is done or the listener is closed.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		l.plan(conn)
	}
}

// plan reserves a channel id for conn and announces it to the peer. For
// unix-socket channels it first verifies the connecting peer's kernel
// credentials, rejecting any connection from a foreign uid.
func (l *Listener) plan(conn net.Conn) {
	if l.typ == ChannelTypeUnix && l.allowedUID != nil {
		creds, err := PeerCredentialsFor(conn)
		if err != nil || !creds.AllowUID(*l.allowedUID) {
			log.Warn("ltsm: rejecting unix channel peer", "error", err)
			conn.Close()
			return
		}
	}

	var ch *Channel
	onClose := func(err error) {
		log.Debug("ltsm channel closed", "channel", ch.ID, "cause", err)
	}

	ch, err := l.registry.Plan(l.typ, l.speed, conn, onClose)
	if err != nil {
		log.Warn("ltsm: failed to plan channel for accepted connection", "error", err)
		conn.Close()
		return
	}

	payload := ChannelOpenPayload{Channel: ch.ID, Type: l.typ, Speed: l.speed}
	data, err := EncodeSystemCommand(SystemChannelOpen, payload)
	if err != nil {
		log.Error("ltsm: failed to encode channel_open", "error", err)
		l.registry.Remove(ch.ID)
		return
	}
	if err := l.send(Frame{Channel: 0, Payload: data}); err != nil {
		log.Warn("ltsm: failed to announce channel_open", "error", err)
		l.registry.Remove(ch.ID)
	}
}
