package sync

import (
	"context"
	"sync"
)

// Identity is what the external identity provider reports: whether session
// resolution has finished, and the user it resolved to, if any.
type Identity struct {
	UserID   string
	Resolved bool
}

// Monitor reacts to identity transitions. It remembers the previously
// resolved user so it can tell "page just loaded, never logged in" (nothing
// to do) apart from "was logged in, now logged out" (drop the local cart).
type Monitor struct {
	engine *Engine

	mu             sync.Mutex
	previousUserID string
}

func NewMonitor(engine *Engine) *Monitor {
	return &Monitor{engine: engine}
}

// Observe handles one identity observation. While resolution is still
// pending it does nothing at all. A resolved user (including the very first
// resolution) rebinds the engine and refreshes from the store. A resolved
// absence clears the local cart only when someone was logged in before.
func (m *Monitor) Observe(ctx context.Context, id Identity) {
	if !id.Resolved {
		return
	}

	m.mu.Lock()
	previous := m.previousUserID
	m.previousUserID = id.UserID
	m.mu.Unlock()

	switch {
	case id.UserID != "":
		m.engine.Bind(id.UserID)
		m.engine.Refresh(ctx)
	case previous != "":
		m.engine.Reset()
	}
}

// PreviousUserID returns the last resolved user observed, or "".
func (m *Monitor) PreviousUserID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.previousUserID
}
