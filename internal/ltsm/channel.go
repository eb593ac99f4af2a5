package ltsm

import (
	"fmt"
	"io"
	"sync"

	"github.com/ltsm-go/connector/pkg/rfbtypes"
)

// ChannelType names what a channel carries, chosen by the system command
// that opened it.
type ChannelType int

const (
	ChannelTypeUnix ChannelType = iota
	ChannelTypeSocket
	ChannelTypeFile
	ChannelTypeCommand
	ChannelTypeAudio
)

// ChannelState tracks a channel's lifecycle: a channel id is reserved
// ("planned") by a ChannelOpen command while its local endpoint connects,
// then promoted to "running" once ChannelConnected confirms it, and
// retired to "closed" on ChannelClose or I/O error.
type ChannelState int

const (
	ChannelPlanned ChannelState = iota
	ChannelRunning
	ChannelClosed
)

// Channel is one multiplexed LTSM side-channel: a local io.ReadWriteCloser
// (a unix socket, a file, a command's stdio pipe...) bridged to the LTSM
// frame stream under its own id, with its own reader goroutine and
// onClose callback.
type Channel struct {
	ID    byte
	Type  ChannelType
	Speed Speed

	mu      sync.Mutex
	state   ChannelState
	local   io.ReadWriteCloser
	onClose func(err error)
}

func newChannel(id byte, typ ChannelType, speed Speed, local io.ReadWriteCloser, onClose func(err error)) *Channel {
	return &Channel{
		ID:      id,
		Type:    typ,
		Speed:   speed,
		state:   ChannelPlanned,
		local:   local,
		onClose: onClose,
	}
}

// MarkRunning promotes a planned channel to running and starts its
// outbound pump goroutine (readLoop); inbound payloads reach the local
// endpoint through Deliver. send is the function used to write an
// outbound LTSM frame (normally ltsm.WriteFrame bound to the connection's
// stream and send mutex).
func (c *Channel) MarkRunning(send func(Frame) error) {
	c.mu.Lock()
	if c.state != ChannelPlanned {
		c.mu.Unlock()
		return
	}
	c.state = ChannelRunning
	c.mu.Unlock()

	go c.readLoop(send)
}

// readLoop pumps bytes from the local endpoint into outbound LTSM frames,
// sized to the channel's speed class, until EOF or error.
func (c *Channel) readLoop(send func(Frame) error) {
	buf := make([]byte, c.Speed.BlockSize())
	for {
		n, err := c.local.Read(buf)
		if n > 0 {
			payload := make([]byte, n)
			copy(payload, buf[:n])
			if sendErr := send(Frame{Channel: c.ID, Payload: payload}); sendErr != nil {
				c.closeWithErr(sendErr)
				return
			}
		}
		if err != nil {
			c.closeWithErr(err)
			return
		}
	}
}

// Deliver writes an inbound frame's payload to the local endpoint.
func (c *Channel) Deliver(payload []byte) error {
	c.mu.Lock()
	if c.state == ChannelClosed {
		c.mu.Unlock()
		return fmt.Errorf("ltsm: channel %d is closed", c.ID)
	}
	local := c.local
	c.mu.Unlock()

	_, err := local.Write(payload)
	return err
}

// closeWithErr closes the channel and reports err (io.EOF for a clean
// close) to onClose.
func (c *Channel) closeWithErr(err error) {
	c.mu.Lock()
	if c.state == ChannelClosed {
		c.mu.Unlock()
		return
	}
	c.state = ChannelClosed
	local := c.local
	onClose := c.onClose
	c.mu.Unlock()

	local.Close()
	if onClose != nil {
		onClose(err)
	}
}

// Close closes the channel's local endpoint and marks it closed.
func (c *Channel) Close() error {
	c.closeWithErr(io.EOF)
	return nil
}

// State reports the channel's current lifecycle state.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// validChannelID reports whether id is in the assignable range
// [LtsmChannelMin, LtsmChannelMax]; 0 is reserved for system commands and
// 255 (LtsmChannelReserved) is never assigned.
func validChannelID(id byte) bool {
	return id >= rfbtypes.LtsmChannelMin && id <= rfbtypes.LtsmChannelMax
}
