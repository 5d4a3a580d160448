package studio

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type managedSession struct {
	session  *Session
	lastUsed time.Time
}

// Manager keeps one session per user. Sessions unused for Options.IdleTTL
// are dropped by Prune unless a generation is still running.
type Manager struct {
	stories StoryCreator
	assets  AssetCreator
	orphans OrphanMarker
	opts    Options

	mu       sync.Mutex
	sessions map[string]*managedSession
}

func NewManager(stories StoryCreator, assets AssetCreator, orphans OrphanMarker, opts Options) *Manager {
	return &Manager{
		stories:  stories,
		assets:   assets,
		orphans:  orphans,
		opts:     opts.withDefaults(),
		sessions: make(map[string]*managedSession),
	}
}

// Session returns the user's session, creating an idle one on first use.
func (m *Manager) Session(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[userID]
	if !ok {
		entry = &managedSession{session: NewSession(userID, m.stories, m.assets, m.orphans, m.opts)}
		m.sessions[userID] = entry
	}
	entry.lastUsed = m.opts.Clock.Now()
	return entry.session
}

// Prune drops sessions idle for at least IdleTTL and returns how many were
// dropped. It is a no-op when IdleTTL is zero.
func (m *Manager) Prune() int {
	if m.opts.IdleTTL <= 0 {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.opts.Clock.Now()
	dropped := 0
	for userID, entry := range m.sessions {
		if now.Sub(entry.lastUsed) < m.opts.IdleTTL || entry.session.Busy() {
			continue
		}
		delete(m.sessions, userID)
		dropped++
	}
	return dropped
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Start prunes idle sessions on every tick until ctx is done.
func (m *Manager) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("studio session pruner started", "interval", interval, "idle_ttl", m.opts.IdleTTL)
	for {
		select {
		case <-ctx.Done():
			slog.Info("studio session pruner stopped")
			return
		case <-ticker.C:
			if dropped := m.Prune(); dropped > 0 {
				slog.Debug("idle studio sessions dropped", "count", dropped)
			}
		}
	}
}
