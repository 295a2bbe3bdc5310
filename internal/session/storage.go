// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"sync"

	"github.com/alexedwards/scs/v2"
)

// Keys of the durable storage.
const (
	KeyToken = "token"
	KeyTheme = "theme"
)

// Storage is a string-valued key-value store that outlives a page.
// A missing key reads as "".
type Storage interface {
	GetString(ctx context.Context, key string) string
	Put(ctx context.Context, key, value string)
	Remove(ctx context.Context, key string)
}

// Durable stores values in the caller's scs session.
// The context must carry a loaded session (scs LoadAndSave).
type Durable struct {
	sm *scs.SessionManager
}

// NewDurable wraps a session manager.
func NewDurable(sm *scs.SessionManager) *Durable {
	return &Durable{sm: sm}
}

// GetString implements Storage.
func (d *Durable) GetString(ctx context.Context, key string) string {
	return d.sm.GetString(ctx, key)
}

// Put implements Storage.
func (d *Durable) Put(ctx context.Context, key, value string) {
	d.sm.Put(ctx, key, value)
}

// Remove implements Storage.
func (d *Durable) Remove(ctx context.Context, key string) {
	d.sm.Remove(ctx, key)
}

// Memory is an in-process Storage shared by every context.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty Memory storage.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// GetString implements Storage.
func (m *Memory) GetString(_ context.Context, key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// Put implements Storage.
func (m *Memory) Put(_ context.Context, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Remove implements Storage.
func (m *Memory) Remove(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

var (
	_ Storage = (*Durable)(nil)
	_ Storage = (*Memory)(nil)
)
