package ltsm

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ltsm-go/connector/pkg/rfbtypes"
)

// plannedTimeout bounds how long a channel may sit in ChannelPlanned before
// its reservation is purged, freeing the id for reuse.
const plannedTimeout = 30 * time.Second

// Registry owns every channel's id allocation and lifecycle for one LTSM
// connection: up to 253 typed channels, map + Mutex guarded, plus the
// planned/running distinction needed around the
// ChannelOpen/ChannelConnected handshake.
//
// Lock ordering: Registry.mu is always acquired before any individual
// Channel.mu, never the reverse, so a caller holding a Channel lock must
// never call back into the Registry.
type Registry struct {
	mu       sync.Mutex
	channels map[byte]*Channel
	plannedAt map[byte]time.Time
}

// NewRegistry creates an empty channel registry.
func NewRegistry() *Registry {
	return &Registry{
		channels:  make(map[byte]*Channel),
		plannedAt: make(map[byte]time.Time),
	}
}

// Plan reserves the lowest free channel id in [1, 253] and records a
// planned channel for it. Returns an error if every id is in use.
func (r *Registry) Plan(typ ChannelType, speed Speed, local io.ReadWriteCloser, onClose func(err error)) (*Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := r.nextFreeIDLocked()
	if err != nil {
		return nil, err
	}

	ch := newChannel(id, typ, speed, local, onClose)
	r.channels[id] = ch
	r.plannedAt[id] = time.Now()
	return ch, nil
}

// nextFreeIDLocked returns min({LtsmChannelMin..LtsmChannelMax} \ inUse).
func (r *Registry) nextFreeIDLocked() (byte, error) {
	for id := rfbtypes.LtsmChannelMin; id <= rfbtypes.LtsmChannelMax; id++ {
		b := byte(id)
		if _, taken := r.channels[b]; !taken {
			return b, nil
		}
	}
	return 0, fmt.Errorf("ltsm: no free channel id (%d in use)", rfbtypes.LtsmChannelMax)
}

// Confirm promotes a planned channel to running, wiring its outbound pump
// to send.
func (r *Registry) Confirm(id byte, send func(Frame) error) error {
	r.mu.Lock()
	ch, ok := r.channels[id]
	if ok {
		delete(r.plannedAt, id)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("ltsm: confirm unknown channel %d", id)
	}
	ch.MarkRunning(send)
	return nil
}

// Lookup returns the channel for id, if any.
func (r *Registry) Lookup(id byte) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[id]
	return ch, ok
}

// Remove closes and forgets a channel, freeing its id.
func (r *Registry) Remove(id byte) {
	r.mu.Lock()
	ch, ok := r.channels[id]
	delete(r.channels, id)
	delete(r.plannedAt, id)
	r.mu.Unlock()

	if ok {
		ch.Close()
	}
}

// PurgeExpiredPlanned removes any channel still in ChannelPlanned whose
// reservation has outlived plannedTimeout, e.g. a ChannelOpen whose local
// endpoint never connected and whose peer never sent ChannelConnected.
func (r *Registry) PurgeExpiredPlanned() {
	cutoff := time.Now().Add(-plannedTimeout)

	r.mu.Lock()
	var expired []byte
	for id, at := range r.plannedAt {
		if at.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(r.channels, id)
		delete(r.plannedAt, id)
	}
	r.mu.Unlock()

	for _, id := range expired {
		log.Warn("ltsm channel planned reservation expired", "channel", id)
	}
}

// CloseAll closes every channel and clears the registry.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	channels := make([]*Channel, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	r.channels = make(map[byte]*Channel)
	r.plannedAt = make(map[byte]time.Time)
	r.mu.Unlock()

	for _, ch := range channels {
		ch.Close()
	}
}

// Count returns the number of channels currently tracked (planned or
// running).
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}
