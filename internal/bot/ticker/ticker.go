// Package ticker owns the periodic refresh of live phase-status views. One
// ticker runs per chat; it is started when the view is opened and cancelled
// unconditionally when the chat navigates away, the refresh reports it is
// done, or the bot shuts down.
package ticker

import (
	"context"
	"sync"
	"time"
)

// Refresh re-renders a live view at the given instant. Returning false ends
// the ticker (e.g. the dose reached its finished phase).
type Refresh func(now time.Time) bool

type entry struct {
	cancel context.CancelFunc
	gen    uint64
}

// Registry tracks the active ticker per chat.
type Registry struct {
	interval time.Duration
	mu       sync.Mutex
	entries  map[int64]entry
	gen      uint64
}

// NewRegistry creates a registry with the given refresh interval.
func NewRegistry(interval time.Duration) *Registry {
	return &Registry{
		interval: interval,
		entries:  make(map[int64]entry),
	}
}

// Start begins a ticker for the chat, replacing any running one. The ticker
// stops when ctx is cancelled, Stop is called, or refresh returns false.
func (r *Registry) Start(ctx context.Context, chatID int64, refresh Refresh) {
	ctx, cancel := context.WithCancel(ctx)

	r.mu.Lock()
	if prev, ok := r.entries[chatID]; ok {
		prev.cancel()
	}
	r.gen++
	gen := r.gen
	r.entries[chatID] = entry{cancel: cancel, gen: gen}
	r.mu.Unlock()

	go func() {
		defer r.remove(chatID, gen, cancel)

		t := time.NewTicker(r.interval)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if !refresh(now) {
					return
				}
			}
		}
	}()
}

// Stop cancels the chat's ticker if one is running.
func (r *Registry) Stop(chatID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[chatID]; ok {
		e.cancel()
		delete(r.entries, chatID)
	}
}

// StopAll cancels every running ticker.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		e.cancel()
		delete(r.entries, id)
	}
}

// Active reports whether the chat currently has a running ticker.
func (r *Registry) Active(chatID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[chatID]
	return ok
}

// remove clears the registry entry unless a newer ticker replaced it.
func (r *Registry) remove(chatID int64, gen uint64, cancel context.CancelFunc) {
	cancel()
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[chatID]; ok && e.gen == gen {
		delete(r.entries, chatID)
	}
}
