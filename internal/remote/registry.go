package remote

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

// AddRemote registers a new remote with the given url. It returns false and
// reports a diagnostic when the name is taken or the remote is invalid.
func (m *Manager) AddRemote(name, rawURL string) bool {
	name = strings.TrimSpace(name)
	if err := validateRemote(name, rawURL); err != nil {
		m.fail("ADD_REMOTE", name, err)
		return false
	}

	if _, err := m.prefs.Remote(name); err == nil {
		m.fail("ADD_REMOTE", name, fmt.Errorf("%w: the remote '%s' already exists", ErrRemoteExists, name))
		return false
	} else if !errors.Is(err, domain.ErrNotFound) {
		m.fail("ADD_REMOTE", name, &RemoteError{Remote: name, Op: "read", Err: err})
		return false
	}

	if err := m.prefs.PutRemote(domain.Remote{Name: name, URL: rawURL}); err != nil {
		m.fail("ADD_REMOTE", name, &RemoteError{Remote: name, Op: "store", Err: err})
		return false
	}

	logger.Log("Remote %s added [%s]", name, rawURL)
	m.Refresh()
	return true
}

// RemoveRemote deletes the remote and its credentials.
func (m *Manager) RemoveRemote(name string) bool {
	if err := m.prefs.DeleteRemote(name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: the remote '%s' does not exist", ErrRemoteNotFound, name)
		} else {
			err = &RemoteError{Remote: name, Op: "delete", Err: err}
		}
		m.fail("REMOVE_REMOTE", name, err)
		return false
	}

	logger.Log("Remote %s removed", name)
	m.Refresh()
	return true
}

// SetDefaultRemote flags name as the default remote and clears the flag on
// every other remote.
func (m *Manager) SetDefaultRemote(name string) bool {
	if err := m.prefs.SetDefault(name); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = fmt.Errorf("%w: the remote '%s' does not exist", ErrRemoteNotFound, name)
		} else {
			err = &RemoteError{Remote: name, Op: "set default", Err: err}
		}
		m.fail("SET_DEFAULT", name, err)
		return false
	}

	m.Refresh()
	return true
}

// Remote returns the persisted remote called name.
func (m *Manager) Remote(name string) (domain.Remote, bool) {
	remote, err := m.prefs.Remote(name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.LogError("GET_REMOTE", name, err)
		}
		return domain.Remote{}, false
	}
	return *remote, true
}

// DefaultRemote scans the persisted remotes for the default-flagged one.
func (m *Manager) DefaultRemote() (domain.Remote, bool) {
	names, err := m.prefs.RemoteNames()
	if err != nil {
		logger.LogError("LIST_REMOTES", "", err)
		return domain.Remote{}, false
	}
	sort.Strings(names)

	for _, name := range names {
		remote, err := m.prefs.Remote(name)
		if err != nil {
			logger.LogError("GET_REMOTE", name, err)
			continue
		}
		if remote.IsDefault {
			return *remote, true
		}
	}
	return domain.Remote{}, false
}

func (m *Manager) DefaultRemoteName() (string, bool) {
	remote, ok := m.DefaultRemote()
	if !ok {
		return "", false
	}
	return remote.Name, true
}

// RemoteNames returns the names of every available remote, sorted.
func (m *Manager) RemoteNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.available))
	for name := range m.available {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListRemotes renders the registry as plain text, one remote per line with
// a trailing '*' on the default.
func (m *Manager) ListRemotes() string {
	remotes := m.AvailableRemotes()
	names := make([]string, 0, len(remotes))
	for name := range remotes {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("REMOTES\n")
	switch len(names) {
	case 0:
		b.WriteString("There is no Codenvy remote.\n")
	case 1:
		b.WriteString("There is 1 Codenvy remote:\n")
	default:
		fmt.Fprintf(&b, "There are %d Codenvy remotes:\n", len(names))
	}

	for _, name := range names {
		remote := remotes[name]
		fmt.Fprintf(&b, "%s  [%s]", name, remote.URL)
		if remote.IsDefault {
			b.WriteString(" *")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func validateRemote(name, rawURL string) error {
	if name == "" {
		return fmt.Errorf("%w: the remote name is empty", ErrInvalidRemote)
	}
	if strings.ContainsAny(name, " \t\n/") {
		return fmt.Errorf("%w: the remote name '%s' contains spaces or slashes", ErrInvalidRemote, name)
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: '%s' is not an http(s) url", ErrInvalidRemote, rawURL)
	}
	return nil
}
