package remote

import (
	"errors"
	"fmt"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

// storedTokens reads the remote's token from the store on each call, so a
// handle always presents the latest persisted token.
type storedTokens struct {
	prefs domain.Preferences
	name  string
}

func (t storedTokens) Token() (string, error) {
	creds, err := t.prefs.Credentials(t.name)
	if err != nil {
		return "", err
	}
	return creds.Token, nil
}

// Credentials returns the stored username and token of a remote.
func (m *Manager) Credentials(name string) (domain.RemoteCredentials, bool) {
	creds, err := m.prefs.Credentials(name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.LogError("GET_CREDENTIALS", name, err)
		}
		return domain.RemoteCredentials{}, false
	}
	return *creds, true
}

// IsReady reports whether the remote currently has a cached handle.
func (m *Manager) IsReady(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ready[name]
	return ok
}

// mergeCredentials writes the non-empty fields of creds over the stored ones.
func (m *Manager) mergeCredentials(name string, creds domain.RemoteCredentials) error {
	if err := m.prefs.MergeCredentials(name, creds); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: the remote '%s' does not exist", ErrRemoteNotFound, name)
		}
		return &RemoteError{Remote: name, Op: "store credentials", Err: err}
	}
	return nil
}
