// Package admin holds the shared-secret gate that unlocks edits for a
// limited window, and the limiter guarding the unlock endpoint.
package admin

import (
	"crypto/subtle"
	"strings"
	"sync"
	"time"
)

// DefaultSecret is only accepted in development.
const DefaultSecret = "080808"

type GateConfig struct {
	Secret      string
	Window      time.Duration
	Development bool
	Now         func() time.Time
}

// Gate is either locked or unlocked until a given instant. Expiry is checked
// lazily on each call; there is no timer.
type Gate struct {
	mu       sync.Mutex
	secret   string
	window   time.Duration
	disabled bool
	until    time.Time
	now      func() time.Time
}

func NewGate(cfg GateConfig) *Gate {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" && cfg.Development {
		secret = DefaultSecret
	}
	if cfg.Window < time.Minute {
		cfg.Window = time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Gate{
		secret: secret,
		window: cfg.Window,
		// outside development an unset or well-known secret never unlocks
		disabled: !cfg.Development && (secret == "" || secret == DefaultSecret),
		now:      cfg.Now,
	}
}

// Allowed reports whether the caller may perform admin operations. A correct
// candidate (re)opens the window; anything else passes only while the window
// is still open.
func (g *Gate) Allowed(candidate string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if g.matches(candidate) {
		g.until = now.Add(g.window)
		return true
	}
	return now.Before(g.until)
}

// Remaining is the time left in the current window, zero when locked.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return max(0, g.until.Sub(g.now()))
}

// Unlocked reports the window state without presenting a credential.
func (g *Gate) Unlocked() bool {
	return g.Remaining() > 0
}

// Disabled is true when the production safety rule refuses every credential.
func (g *Gate) Disabled() bool {
	return g.disabled
}

func (g *Gate) Lock() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.until = time.Time{}
}

func (g *Gate) matches(candidate string) bool {
	if g.disabled {
		return false
	}
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(g.secret)) == 1
}
