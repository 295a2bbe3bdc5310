// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/campus-admin/internal/session"
)

func TestParse(t *testing.T) {
	for _, n := range All() {
		got, err := Parse(string(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	for _, bad := range []string{"", "Light", "DARK", "green", " blue"} {
		_, err := Parse(bad)
		assert.True(t, errors.Is(err, ErrUnknownTheme), "Parse(%q) error = %v", bad, err)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Dark, Normalize("dark"))
	assert.Equal(t, Light, Normalize(""))
	assert.Equal(t, Light, Normalize("purple"))
}

func TestName_ClassAndLabel(t *testing.T) {
	assert.Equal(t, "theme-blue", Blue.Class())
	assert.Equal(t, "Blue", Blue.Label())
	assert.Equal(t, "", Name("").Label())
}

func TestAll_ReturnsCopy(t *testing.T) {
	a := All()
	a[0] = "mutated"
	assert.Equal(t, Light, All()[0])
}

// setClasses lists the theme classes the marker currently carries.
func setClasses(m *Marker) []string {
	var out []string
	for _, t := range All() {
		if m.classes[t] {
			out = append(out, t.Class())
		}
	}
	return out
}

func TestMarker_MutuallyExclusive(t *testing.T) {
	m := NewMarker()
	assert.Equal(t, []string{"theme-light"}, setClasses(m))

	for _, n := range []Name{Dark, Blue, Blue, Light, Dark} {
		m.Apply(n)
		assert.Equal(t, []string{n.Class()}, setClasses(m))
		assert.Equal(t, n, m.Current())
		assert.Equal(t, n.Class(), m.Class())
	}

	m.Apply("neon")
	assert.Equal(t, []string{"theme-light"}, setClasses(m))
}

func TestController_LoadDefaults(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   Name
	}{
		{"missing", "", Light},
		{"invalid", "sepia", Light},
		{"dark", "dark", Dark},
		{"blue", "blue", Blue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := session.NewMemory()
			if tt.stored != "" {
				store.Put(ctx, session.KeyTheme, tt.stored)
			}

			c := NewController(store)
			assert.Equal(t, tt.want, c.Load(ctx))
			assert.Equal(t, tt.want.Class(), c.Class())
			// Loading never rewrites storage.
			assert.Equal(t, tt.stored, store.GetString(ctx, session.KeyTheme))
		})
	}
}

func TestController_SetIdempotent(t *testing.T) {
	ctx := context.Background()

	for _, n := range All() {
		t.Run(string(n), func(t *testing.T) {
			store := session.NewMemory()
			c := NewController(store)
			c.Load(ctx)

			for i := 0; i < 2; i++ {
				got, err := c.Set(ctx, string(n))
				require.NoError(t, err)
				assert.Equal(t, n, got)
				assert.Equal(t, string(n), store.GetString(ctx, session.KeyTheme))
				assert.Equal(t, []string{n.Class()}, setClasses(c.marker))
			}
		})
	}
}

func TestController_SetRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemory()
	store.Put(ctx, session.KeyTheme, "dark")

	c := NewController(store)
	c.Load(ctx)

	got, err := c.Set(ctx, "green")
	require.ErrorIs(t, err, ErrUnknownTheme)
	assert.Equal(t, Dark, got)
	assert.Equal(t, "dark", store.GetString(ctx, session.KeyTheme))
	assert.Equal(t, Dark, c.Current())
}
