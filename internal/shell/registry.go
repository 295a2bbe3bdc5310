// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package shell

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// ErrMountNotFound is returned for unknown, expired or foreign mounts.
var ErrMountNotFound = errors.New("mount not found")

// DefaultMaxMountsPerOwner bounds how many live mounts one token may hold.
const DefaultMaxMountsPerOwner = 16

// Registry holds live mounts between requests.
type Registry struct {
	mu          sync.RWMutex
	mounts      map[string]*Mount
	byOwner     map[string][]string // mount ids in registration order
	maxIdle     time.Duration
	maxPerOwner int
}

// NewRegistry creates a registry whose Sweep drops mounts idle longer than
// maxIdle and which holds at most DefaultMaxMountsPerOwner mounts per owner.
func NewRegistry(maxIdle time.Duration) *Registry {
	return NewRegistryWithLimit(maxIdle, DefaultMaxMountsPerOwner)
}

// NewRegistryWithLimit is NewRegistry with an explicit per-owner limit.
// A limit of zero or less falls back to DefaultMaxMountsPerOwner.
func NewRegistryWithLimit(maxIdle time.Duration, maxPerOwner int) *Registry {
	if maxPerOwner <= 0 {
		maxPerOwner = DefaultMaxMountsPerOwner
	}
	return &Registry{
		mounts:      make(map[string]*Mount),
		byOwner:     make(map[string][]string),
		maxIdle:     maxIdle,
		maxPerOwner: maxPerOwner,
	}
}

// Add registers a mount. When the owner is at its limit the owner's least
// recently used mount is evicted and returned.
func (r *Registry) Add(m *Mount) (evicted *Mount) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.byOwner[m.owner]
	if len(ids) >= r.maxPerOwner {
		oldest := 0
		for i, id := range ids {
			if r.mounts[id].lastSeen.Load() < r.mounts[ids[oldest]].lastSeen.Load() {
				oldest = i
			}
		}
		evicted = r.mounts[ids[oldest]]
		r.removeLocked(evicted.id)
	}

	r.mounts[m.id] = m
	r.byOwner[m.owner] = append(r.byOwner[m.owner], m.id)
	return evicted
}

// Get returns the mount with id if it belongs to owner.
func (r *Registry) Get(id, owner string) (*Mount, error) {
	r.mu.RLock()
	m, ok := r.mounts[id]
	r.mu.RUnlock()

	if !ok || owner == "" || m.owner != owner {
		return nil, ErrMountNotFound
	}
	m.touch()
	return m, nil
}

// Remove unregisters a mount. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

func (r *Registry) removeLocked(id string) {
	m, ok := r.mounts[id]
	if !ok {
		return
	}
	delete(r.mounts, id)

	ids := slices.DeleteFunc(r.byOwner[m.owner], func(v string) bool { return v == id })
	if len(ids) == 0 {
		delete(r.byOwner, m.owner)
		return
	}
	r.byOwner[m.owner] = ids
}

// Sweep drops mounts idle for longer than the registry's idle limit and
// returns how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	if r.maxIdle <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, m := range r.mounts {
		if m.idleSince(now) > r.maxIdle {
			r.removeLocked(id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live mounts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mounts)
}

// OwnerLen returns the number of live mounts held by owner.
func (r *Registry) OwnerLen(owner string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byOwner[owner])
}
