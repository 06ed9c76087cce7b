package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

// tokenCapture keeps the token issued during one login.
type tokenCapture struct {
	mu    sync.Mutex
	token string
}

func (c *tokenCapture) StoreToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *tokenCapture) captured() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Login authenticates username on the named remote, or on the default remote
// when remoteName is empty, and persists the issued token. Nothing is written
// unless the identity probe succeeds and a token was issued.
func (m *Manager) Login(ctx context.Context, remoteName, username, password string) bool {
	remote, err := m.loginTarget(remoteName)
	if err != nil {
		m.fail("LOGIN", remoteName, err)
		return false
	}
	logger.Log("Login attempt for %s on remote %s", username, remote.Name)

	sink := &tokenCapture{}
	client, err := m.builder.NewClient(domain.ClientConfig{
		URL:      remote.URL,
		Username: username,
		Password: password,
		Sink:     sink,
	})
	if err != nil {
		m.fail("LOGIN", remote.Name, &RemoteError{Remote: remote.Name, Op: "build client", Err: err})
		return false
	}

	if _, err := client.CurrentUser(ctx); err != nil {
		logger.LogError("LOGIN_PROBE", remote.Name, err)
		m.reporter.Report(fmt.Errorf("%w on %s: %v", ErrInvalidCredentials, remote.URL, err))
		return false
	}

	token := sink.captured()
	if token == "" {
		m.fail("LOGIN", remote.Name, fmt.Errorf("%w by %s", ErrTokenNotIssued, remote.URL))
		return false
	}

	if err := m.mergeCredentials(remote.Name, domain.RemoteCredentials{Username: username, Token: token}); err != nil {
		m.fail("LOGIN", remote.Name, err)
		return false
	}

	logger.Log("Login succeeded for %s on remote %s", username, remote.Name)
	m.Refresh()
	return true
}

func (m *Manager) loginTarget(name string) (domain.Remote, error) {
	if name == "" {
		remote, ok := m.DefaultRemote()
		if !ok {
			return domain.Remote{}, fmt.Errorf("%w: no remote given and none flagged as default", ErrNoDefaultRemote)
		}
		return remote, nil
	}

	remote, ok := m.Remote(name)
	if !ok {
		return domain.Remote{}, fmt.Errorf("%w: the remote '%s' does not exist", ErrRemoteNotFound, name)
	}
	return remote, nil
}
