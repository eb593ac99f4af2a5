package ltsm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ltsm-go/connector/internal/ltsm/transferlog"
)

func TestSystemCommandRoundTrip(t *testing.T) {
	data, err := EncodeSystemCommand(SystemChannelOpen, ChannelOpenPayload{Channel: 3, Type: ChannelTypeCommand, Speed: Fast, Target: "/bin/sh"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	cmd, err := DecodeSystemCommand(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cmd.Type != SystemChannelOpen {
		t.Fatalf("type = %q, want %q", cmd.Type, SystemChannelOpen)
	}

	var p ChannelOpenPayload
	if err := json.Unmarshal(cmd.Payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.Channel != 3 || p.Type != ChannelTypeCommand || p.Speed != Fast || p.Target != "/bin/sh" {
		t.Fatalf("payload = %+v, unexpected", p)
	}
}

func TestSystemHandlerConfirmPromotesChannel(t *testing.T) {
	reg := NewRegistry()
	ch, err := reg.Plan(ChannelTypeUnix, Medium, newFakeEndpoint(), nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	handler := NewSystemHandler(reg, func(Frame) error { return nil })
	data, err := EncodeSystemCommand(SystemChannelConnected, ChannelConnectedPayload{Channel: ch.ID})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := handler.Handle(data); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if ch.State() != ChannelRunning {
		t.Fatalf("state = %v, want Running", ch.State())
	}
}

func TestSystemHandlerArchivesTransferManifest(t *testing.T) {
	reg := NewRegistry()
	archiver := transferlog.NewArchiver(transferlog.NewLocalProvider(t.TempDir()))
	handler := NewSystemHandler(reg, func(Frame) error { return nil }).WithArchiver(archiver)

	data, err := EncodeSystemCommand(SystemTransferFiles, TransferFilesPayload{
		Channel:    5,
		TransferID: "xfer-1",
		Files:      []TransferFileEntry{{Path: "report.csv", Size: 42}},
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := handler.Handle(data); err != nil {
		t.Fatalf("handle: %v", err)
	}

	files, err := archiver.ListTransfer(context.Background(), 5, "xfer-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("files = %v, want 1 manifest entry", files)
	}
}

func TestSystemHandlerUnknownChannelOpenRepliesError(t *testing.T) {
	reg := NewRegistry()
	var replied Frame
	handler := NewSystemHandler(reg, func(f Frame) error {
		replied = f
		return nil
	})

	data, err := EncodeSystemCommand(SystemChannelOpen, ChannelOpenPayload{Channel: 9, Type: ChannelTypeUnix, Speed: Medium})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := handler.Handle(data); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if replied.Channel != 0 {
		t.Fatalf("reply channel = %d, want 0 (system)", replied.Channel)
	}
}
