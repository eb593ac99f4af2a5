package ltsm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ltsm-go/connector/internal/ltsm/transferlog"
)

// System command types carried on channel 0.
const (
	SystemChannelOpen      = "channel_open"
	SystemChannelConnected = "channel_connected"
	SystemChannelClose     = "channel_close"
	SystemChannelError     = "channel_error"
	SystemTransferFiles    = "transfer_files"
	SystemSpeedChange      = "speed_change"
)

// SystemCommand is the channel-0 envelope: a type tag plus a raw payload,
// decoded once the type is known.
type SystemCommand struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ChannelOpenPayload requests a new channel of Type/Speed. The peer
// replies with ChannelConnectedPayload (success) or ChannelErrorPayload.
type ChannelOpenPayload struct {
	Channel byte        `json:"channel"`
	Type    ChannelType `json:"type"`
	Speed   Speed       `json:"speed"`
	Target  string      `json:"target,omitempty"` // unix path, command line, etc.
}

// ChannelConnectedPayload confirms a channel is ready to carry data.
type ChannelConnectedPayload struct {
	Channel byte `json:"channel"`
}

// ChannelClosePayload requests or announces a channel's closure.
type ChannelClosePayload struct {
	Channel byte `json:"channel"`
}

// ChannelErrorPayload reports a channel-level failure.
type ChannelErrorPayload struct {
	Channel byte   `json:"channel"`
	Message string `json:"message"`
}

// SpeedChangePayload renegotiates a running channel's speed class.
type SpeedChangePayload struct {
	Channel byte  `json:"channel"`
	Speed   Speed `json:"speed"`
}

// TransferFileEntry describes one file carried by a transfer_files
// announcement; the bytes themselves travel over the channel's own data
// stream and are not part of this envelope.
type TransferFileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// TransferFilesPayload announces the file manifest for an in-flight or
// completed file transfer on a channel.
type TransferFilesPayload struct {
	Channel    byte                `json:"channel"`
	TransferID string              `json:"transferId"`
	Files      []TransferFileEntry `json:"files"`
}

// EncodeSystemCommand marshals typ/payload into a SystemCommand envelope
// ready to send as channel 0's frame payload.
func EncodeSystemCommand(typ string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("ltsm: marshal %s payload: %w", typ, err)
	}
	return json.Marshal(SystemCommand{Type: typ, Payload: raw})
}

// DecodeSystemCommand unmarshals a channel-0 frame payload into its
// envelope; callers then type-switch on Type and unmarshal Payload.
func DecodeSystemCommand(data []byte) (SystemCommand, error) {
	var cmd SystemCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return SystemCommand{}, fmt.Errorf("ltsm: unmarshal system command: %w", err)
	}
	return cmd, nil
}

// SystemHandler dispatches decoded channel-0 commands to a Registry,
// replying over the same send function used for data frames.
type SystemHandler struct {
	registry *Registry
	send     func(Frame) error
	archiver *transferlog.Archiver
}

// NewSystemHandler creates a handler bound to registry and send.
func NewSystemHandler(registry *Registry, send func(Frame) error) *SystemHandler {
	return &SystemHandler{registry: registry, send: send}
}

// WithArchiver attaches a transfer-log archiver: transfer_files
// announcements are persisted as a JSON manifest under the channel's
// archive prefix, for later audit.
func (h *SystemHandler) WithArchiver(archiver *transferlog.Archiver) *SystemHandler {
	h.archiver = archiver
	return h
}

// Handle processes one channel-0 frame payload.
func (h *SystemHandler) Handle(payload []byte) error {
	cmd, err := DecodeSystemCommand(payload)
	if err != nil {
		return err
	}

	switch cmd.Type {
	case SystemChannelConnected:
		var p ChannelConnectedPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("ltsm: decode channel_connected: %w", err)
		}
		return h.registry.Confirm(p.Channel, h.send)

	case SystemChannelClose:
		var p ChannelClosePayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("ltsm: decode channel_close: %w", err)
		}
		h.registry.Remove(p.Channel)
		return nil

	case SystemChannelError:
		var p ChannelErrorPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("ltsm: decode channel_error: %w", err)
		}
		log.Warn("ltsm peer reported channel error", "channel", p.Channel, "message", p.Message)
		h.registry.Remove(p.Channel)
		return nil

	case SystemChannelOpen:
		var p ChannelOpenPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("ltsm: decode channel_open: %w", err)
		}
		return h.handleChannelOpen(p)

	case SystemTransferFiles:
		var p TransferFilesPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("ltsm: decode transfer_files: %w", err)
		}
		return h.handleTransferFiles(p)

	default:
		return fmt.Errorf("ltsm: unknown system command %q", cmd.Type)
	}
}

// handleChannelOpen rejects every channel_open request with a
// channel_error reply on channel 0; it dials no local endpoint, so the
// peer's request is answered cleanly instead of hanging.
func (h *SystemHandler) handleChannelOpen(p ChannelOpenPayload) error {
	errPayload := ChannelErrorPayload{Channel: p.Channel, Message: "channel_open not supported by this handler"}
	data, err := EncodeSystemCommand(SystemChannelError, errPayload)
	if err != nil {
		return err
	}
	return h.send(Frame{Channel: 0, Payload: data})
}

// handleTransferFiles persists the announced file manifest to the
// configured archiver, if any. Manifest-only: the transferred bytes
// themselves travel over the channel's own Deliver stream.
func (h *SystemHandler) handleTransferFiles(p TransferFilesPayload) error {
	if h.archiver == nil {
		return nil
	}
	manifest, err := json.Marshal(p.Files)
	if err != nil {
		return fmt.Errorf("ltsm: marshal transfer manifest: %w", err)
	}
	return h.archiver.RecordFile(context.Background(), p.Channel, p.TransferID, "manifest.json", bytes.NewReader(manifest), int64(len(manifest)))
}
