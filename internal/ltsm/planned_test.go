package ltsm

import (
	"io"
	"testing"
	"time"
)

type fakeEndpoint struct {
	io.Reader
	io.Writer
	closed bool
}

func (f *fakeEndpoint) Close() error {
	f.closed = true
	return nil
}

func newFakeEndpoint() *fakeEndpoint {
	r, w := io.Pipe()
	return &fakeEndpoint{Reader: r, Writer: w}
}

func TestRegistryAllocatesLowestFreeID(t *testing.T) {
	reg := NewRegistry()

	first, err := reg.Plan(ChannelTypeUnix, Medium, newFakeEndpoint(), nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("first id = %d, want 1", first.ID)
	}

	second, err := reg.Plan(ChannelTypeUnix, Medium, newFakeEndpoint(), nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if second.ID != 2 {
		t.Fatalf("second id = %d, want 2", second.ID)
	}

	reg.Remove(first.ID)
	third, err := reg.Plan(ChannelTypeUnix, Medium, newFakeEndpoint(), nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if third.ID != 1 {
		t.Fatalf("third id = %d, want 1 (reused after Remove)", third.ID)
	}
}

func TestRegistryExhaustion(t *testing.T) {
	reg := NewRegistry()
	for i := 0; i < 253; i++ {
		if _, err := reg.Plan(ChannelTypeUnix, Medium, newFakeEndpoint(), nil); err != nil {
			t.Fatalf("plan %d: %v", i, err)
		}
	}
	if _, err := reg.Plan(ChannelTypeUnix, Medium, newFakeEndpoint(), nil); err == nil {
		t.Fatal("expected error once all 253 channel ids are in use")
	}
}

func TestRegistryConfirmPromotesPlannedChannel(t *testing.T) {
	reg := NewRegistry()
	ch, err := reg.Plan(ChannelTypeUnix, Medium, newFakeEndpoint(), nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if ch.State() != ChannelPlanned {
		t.Fatalf("state = %v, want Planned", ch.State())
	}

	sent := make(chan Frame, 1)
	err = reg.Confirm(ch.ID, func(f Frame) error {
		sent <- f
		return nil
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if ch.State() != ChannelRunning {
		t.Fatalf("state = %v, want Running", ch.State())
	}
}

func TestPurgeExpiredPlanned(t *testing.T) {
	reg := NewRegistry()
	ch, err := reg.Plan(ChannelTypeUnix, Medium, newFakeEndpoint(), nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	reg.plannedAt[ch.ID] = time.Now().Add(-plannedTimeout - time.Second)

	reg.PurgeExpiredPlanned()

	if _, ok := reg.Lookup(ch.ID); ok {
		t.Fatal("expected expired planned channel to be purged")
	}
}
