package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

type preferencesFile struct {
	Remotes map[string]*remoteEntry `json:"remotes"`
}

type remoteEntry struct {
	URL         string           `json:"url"`
	IsDefault   bool             `json:"isDefault"`
	Credentials credentialsEntry `json:"credentials"`
}

type credentialsEntry struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// LocalStore keeps the preferences tree in one JSON file. The file may carry
// comments and trailing commas; they are dropped on the next write.
type LocalStore struct {
	path   string
	sealer *Sealer
	prefs  *preferencesFile
	mu     sync.RWMutex
}

func NewLocalStore(path string, sealer *Sealer) (*LocalStore, error) {
	store := &LocalStore{
		path:   path,
		sealer: sealer,
		prefs:  &preferencesFile{Remotes: map[string]*remoteEntry{}},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}

	if err := store.Reload(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *LocalStore) Path() string {
	return s.path
}

// Reload replaces the in-memory tree with the file contents. A missing file
// is an empty tree.
func (s *LocalStore) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.LogFileOpen(s.path)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.prefs = &preferencesFile{Remotes: map[string]*remoteEntry{}}
			return nil
		}
		logger.LogError("LOAD", s.path, err)
		return fmt.Errorf("failed to read preferences: %w", err)
	}

	prefs := &preferencesFile{}
	if err := json.Unmarshal(jsonc.ToJSON(data), prefs); err != nil {
		logger.LogError("UNMARSHAL", s.path, err)
		return fmt.Errorf("failed to parse preferences %s: %w", s.path, err)
	}
	if prefs.Remotes == nil {
		prefs.Remotes = map[string]*remoteEntry{}
	}
	for name, entry := range prefs.Remotes {
		if entry == nil {
			prefs.Remotes[name] = &remoteEntry{}
		}
	}

	s.prefs = prefs
	logger.Log("Preferences loaded from %s: %d remotes", s.path, len(prefs.Remotes))
	return nil
}

func (p *preferencesFile) clone() *preferencesFile {
	remotes := make(map[string]*remoteEntry, len(p.Remotes))
	for name, entry := range p.Remotes {
		copied := *entry
		remotes[name] = &copied
	}
	return &preferencesFile{Remotes: remotes}
}

// update applies change to a copy of the tree and keeps the copy only once
// it is on disk. Callers hold s.mu.
func (s *LocalStore) update(change func(prefs *preferencesFile) error) error {
	next := s.prefs.clone()
	if err := change(next); err != nil {
		return err
	}
	if err := s.save(next); err != nil {
		return err
	}
	s.prefs = next
	return nil
}

func (s *LocalStore) save(prefs *preferencesFile) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		logger.LogError("MARSHAL", s.path, err)
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	logger.LogFileWrite(s.path)
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		logger.LogError("SAVE", tmp, err)
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		logger.LogError("SAVE", s.path, err)
		return fmt.Errorf("failed to replace preferences: %w", err)
	}

	return nil
}

func (s *LocalStore) RemoteNames() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.prefs.Remotes))
	for name := range s.prefs.Remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *LocalStore) Remote(name string) (*domain.Remote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.prefs.Remotes[name]
	if !ok {
		return nil, fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
	}
	return &domain.Remote{Name: name, URL: entry.URL, IsDefault: entry.IsDefault}, nil
}

func (s *LocalStore) Credentials(name string) (*domain.RemoteCredentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.prefs.Remotes[name]
	if !ok {
		return nil, fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
	}

	token, err := s.sealer.Open(entry.Credentials.Token)
	if err != nil {
		logger.LogError("OPEN_TOKEN", name, err)
		return nil, fmt.Errorf("remote %q: %w", name, err)
	}
	return &domain.RemoteCredentials{Username: entry.Credentials.Username, Token: token}, nil
}

// PutRemote creates the remote or updates its url and default flag. Stored
// credentials are kept.
func (s *LocalStore) PutRemote(remote domain.Remote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(prefs *preferencesFile) error {
		entry, ok := prefs.Remotes[remote.Name]
		if !ok {
			entry = &remoteEntry{}
			prefs.Remotes[remote.Name] = entry
			logger.Log("Adding remote: %s [%s]", remote.Name, remote.URL)
		} else {
			logger.Log("Updating remote: %s [%s]", remote.Name, remote.URL)
		}
		entry.URL = remote.URL
		entry.IsDefault = remote.IsDefault
		return nil
	})
}

func (s *LocalStore) MergeCredentials(name string, creds domain.RemoteCredentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(prefs *preferencesFile) error {
		entry, ok := prefs.Remotes[name]
		if !ok {
			logger.LogError("MERGE_CREDENTIALS", name, domain.ErrNotFound)
			return fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
		}

		if creds.Username != "" {
			entry.Credentials.Username = creds.Username
		}
		if creds.Token != "" {
			sealed, err := s.sealer.Seal(creds.Token)
			if err != nil {
				logger.LogError("SEAL_TOKEN", name, err)
				return fmt.Errorf("remote %q: %w", name, err)
			}
			entry.Credentials.Token = sealed
		}

		logger.Log("Merged credentials for remote %s (user %s)", name, entry.Credentials.Username)
		return nil
	})
}

func (s *LocalStore) DeleteRemote(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(prefs *preferencesFile) error {
		if _, ok := prefs.Remotes[name]; !ok {
			logger.LogError("DELETE_REMOTE", name, domain.ErrNotFound)
			return fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
		}

		logger.Log("Deleting remote: %s", name)
		delete(prefs.Remotes, name)
		return nil
	})
}

func (s *LocalStore) SetDefault(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(prefs *preferencesFile) error {
		if _, ok := prefs.Remotes[name]; !ok {
			logger.LogError("SET_DEFAULT", name, domain.ErrNotFound)
			return fmt.Errorf("remote %q: %w", name, domain.ErrNotFound)
		}

		for remoteName, entry := range prefs.Remotes {
			entry.IsDefault = remoteName == name
		}
		logger.Log("Default remote set to %s", name)
		return nil
	})
}
