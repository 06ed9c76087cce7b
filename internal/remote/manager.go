// Package remote manages several named Codenvy remotes from one place.
//
// A Manager owns the registry of remotes and their credentials, both
// persisted through domain.Preferences, and caches one authenticated
// domain.Client per remote holding a token. Every mutation (add, remove,
// default, login) ends with a full Refresh that rebuilds the cache from the
// store. Queries walk the ready remotes one after another and skip, with a
// diagnostic, any remote that fails.
package remote

import (
	"sync"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

type Manager struct {
	prefs    domain.Preferences
	builder  domain.ClientBuilder
	reporter Reporter

	// refreshMu serializes whole refreshes so a generation built from an
	// older read of the store never replaces a newer one.
	refreshMu sync.Mutex

	mu        sync.RWMutex
	available map[string]domain.Remote
	ready     map[string]domain.Client
}

type Option func(*Manager)

// WithReporter sends diagnostics to r instead of the log only.
func WithReporter(r Reporter) Option {
	return func(m *Manager) {
		if r != nil {
			m.reporter = r
		}
	}
}

// New loads every persisted remote and builds the ready-handle cache.
func New(prefs domain.Preferences, builder domain.ClientBuilder, opts ...Option) *Manager {
	m := &Manager{
		prefs:     prefs,
		builder:   builder,
		reporter:  logReporter{},
		available: map[string]domain.Remote{},
		ready:     map[string]domain.Client{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Refresh()
	return m
}

func (m *Manager) Reporter() Reporter {
	return m.reporter
}

// fail logs err and hands it to the reporter.
func (m *Manager) fail(op, subject string, err error) {
	logger.LogError(op, subject, err)
	m.reporter.Report(err)
}
