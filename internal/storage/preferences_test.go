package storage

import (
	"errors"
	"testing"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
)

// runPreferencesSuite checks the behaviour every domain.Preferences backend
// shares.
func runPreferencesSuite(t *testing.T, newStore func(t *testing.T) domain.Preferences) {
	t.Run("empty store has no remotes", func(t *testing.T) {
		store := newStore(t)
		names, err := store.RemoteNames()
		if err != nil {
			t.Fatalf("RemoteNames() error = %v", err)
		}
		if len(names) != 0 {
			t.Errorf("Expected no remotes, got %v", names)
		}
	})

	t.Run("put and get remote", func(t *testing.T) {
		store := newStore(t)
		if err := store.PutRemote(domain.Remote{Name: "dev", URL: "http://a"}); err != nil {
			t.Fatalf("PutRemote() error = %v", err)
		}
		if err := store.PutRemote(domain.Remote{Name: "staging", URL: "http://b"}); err != nil {
			t.Fatalf("PutRemote() error = %v", err)
		}

		names, err := store.RemoteNames()
		if err != nil {
			t.Fatalf("RemoteNames() error = %v", err)
		}
		if len(names) != 2 || names[0] != "dev" || names[1] != "staging" {
			t.Errorf("Expected [dev staging], got %v", names)
		}

		remote, err := store.Remote("dev")
		if err != nil {
			t.Fatalf("Remote() error = %v", err)
		}
		if remote.URL != "http://a" || remote.IsDefault {
			t.Errorf("Unexpected remote %+v", remote)
		}

		creds, err := store.Credentials("dev")
		if err != nil {
			t.Fatalf("Credentials() error = %v", err)
		}
		if creds.IsReady() {
			t.Error("New remote should not have a token")
		}
	})

	t.Run("unknown remote is not found", func(t *testing.T) {
		store := newStore(t)
		if _, err := store.Remote("ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Remote() error = %v, want ErrNotFound", err)
		}
		if _, err := store.Credentials("ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Credentials() error = %v, want ErrNotFound", err)
		}
		if err := store.DeleteRemote("ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("DeleteRemote() error = %v, want ErrNotFound", err)
		}
		if err := store.SetDefault("ghost"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("SetDefault() error = %v, want ErrNotFound", err)
		}
		if err := store.MergeCredentials("ghost", domain.RemoteCredentials{Token: "t"}); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("MergeCredentials() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("merge keeps unspecified fields", func(t *testing.T) {
		store := newStore(t)
		store.PutRemote(domain.Remote{Name: "dev", URL: "http://a"})

		if err := store.MergeCredentials("dev", domain.RemoteCredentials{Username: "alice", Token: "tok-1"}); err != nil {
			t.Fatalf("MergeCredentials() error = %v", err)
		}
		if err := store.MergeCredentials("dev", domain.RemoteCredentials{Token: "tok-2"}); err != nil {
			t.Fatalf("MergeCredentials() error = %v", err)
		}

		creds, err := store.Credentials("dev")
		if err != nil {
			t.Fatalf("Credentials() error = %v", err)
		}
		if creds.Username != "alice" {
			t.Errorf("Expected username alice to be retained, got %q", creds.Username)
		}
		if creds.Token != "tok-2" {
			t.Errorf("Expected token tok-2, got %q", creds.Token)
		}
	})

	t.Run("put keeps credentials", func(t *testing.T) {
		store := newStore(t)
		store.PutRemote(domain.Remote{Name: "dev", URL: "http://a"})
		store.MergeCredentials("dev", domain.RemoteCredentials{Username: "alice", Token: "tok"})

		if err := store.PutRemote(domain.Remote{Name: "dev", URL: "http://a", IsDefault: true}); err != nil {
			t.Fatalf("PutRemote() error = %v", err)
		}
		creds, _ := store.Credentials("dev")
		if creds == nil || creds.Token != "tok" {
			t.Errorf("Expected token to survive PutRemote, got %+v", creds)
		}
	})

	t.Run("delete removes credentials", func(t *testing.T) {
		store := newStore(t)
		store.PutRemote(domain.Remote{Name: "dev", URL: "http://a"})
		store.MergeCredentials("dev", domain.RemoteCredentials{Username: "alice", Token: "tok"})

		if err := store.DeleteRemote("dev"); err != nil {
			t.Fatalf("DeleteRemote() error = %v", err)
		}
		store.PutRemote(domain.Remote{Name: "dev", URL: "http://c"})

		creds, err := store.Credentials("dev")
		if err != nil {
			t.Fatalf("Credentials() error = %v", err)
		}
		if creds.Token != "" || creds.Username != "" {
			t.Errorf("Expected recreated remote to have no credentials, got %+v", creds)
		}
	})

	t.Run("set default is exclusive", func(t *testing.T) {
		store := newStore(t)
		store.PutRemote(domain.Remote{Name: "dev", URL: "http://a", IsDefault: true})
		store.PutRemote(domain.Remote{Name: "staging", URL: "http://b"})

		if err := store.SetDefault("staging"); err != nil {
			t.Fatalf("SetDefault() error = %v", err)
		}

		dev, _ := store.Remote("dev")
		staging, _ := store.Remote("staging")
		if dev.IsDefault {
			t.Error("dev should no longer be default")
		}
		if !staging.IsDefault {
			t.Error("staging should be default")
		}
	})
}
