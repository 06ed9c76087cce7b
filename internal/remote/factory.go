package remote

import (
	"sort"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

type reloader interface {
	Reload() error
}

// Refresh discards the cached remotes and handles and rebuilds both from the
// store. The new generation is swapped in at once; concurrent readers see
// either the previous or the new one. Refreshes run one at a time. When the
// store itself cannot be read the previous generation is kept.
func (m *Manager) Refresh() error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	if r, ok := m.prefs.(reloader); ok {
		if err := r.Reload(); err != nil {
			m.fail("RELOAD_PREFERENCES", "", err)
			return err
		}
	}

	names, err := m.prefs.RemoteNames()
	if err != nil {
		m.fail("LIST_REMOTES", "", err)
		return err
	}

	available := make(map[string]domain.Remote, len(names))
	ready := make(map[string]domain.Client, len(names))
	for _, name := range names {
		remote, err := m.prefs.Remote(name)
		if err != nil {
			m.fail("READ_REMOTE", name, &RemoteError{Remote: name, Op: "read", Err: err})
			continue
		}
		available[name] = *remote

		creds, err := m.prefs.Credentials(name)
		if err != nil {
			m.fail("READ_CREDENTIALS", name, &RemoteError{Remote: name, Op: "read credentials", Err: err})
			continue
		}
		if !creds.IsReady() {
			continue
		}

		client, err := m.builder.NewClient(domain.ClientConfig{
			URL:      remote.URL,
			Username: creds.Username,
			Tokens:   storedTokens{prefs: m.prefs, name: name},
		})
		if err != nil {
			m.fail("BUILD_CLIENT", name, &RemoteError{Remote: name, Op: "build client", Err: err})
			continue
		}
		ready[name] = client
	}

	m.mu.Lock()
	m.available = available
	m.ready = ready
	m.mu.Unlock()

	logger.Log("Refreshed remotes: %d available, %d ready", len(available), len(ready))
	return nil
}

func (m *Manager) HasAvailableRemotes() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.available) > 0
}

func (m *Manager) HasReadyRemotes() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ready) > 0
}

// ReadyHandles returns a copy of the cached handles keyed by remote name.
func (m *Manager) ReadyHandles() map[string]domain.Client {
	m.mu.RLock()
	defer m.mu.RUnlock()

	handles := make(map[string]domain.Client, len(m.ready))
	for name, client := range m.ready {
		handles[name] = client
	}
	return handles
}

// AvailableRemotes returns a copy of every registered remote keyed by name.
func (m *Manager) AvailableRemotes() map[string]domain.Remote {
	m.mu.RLock()
	defer m.mu.RUnlock()

	remotes := make(map[string]domain.Remote, len(m.available))
	for name, remote := range m.available {
		remotes[name] = remote
	}
	return remotes
}

type handle struct {
	name   string
	client domain.Client
}

// readyInOrder snapshots the ready handles sorted by remote name.
func (m *Manager) readyInOrder() []handle {
	m.mu.RLock()
	defer m.mu.RUnlock()

	handles := make([]handle, 0, len(m.ready))
	for name, client := range m.ready {
		handles = append(handles, handle{name: name, client: client})
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i].name < handles[j].name })
	return handles
}
