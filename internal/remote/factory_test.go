package remote

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
)

func readyNames(m *Manager) []string {
	var names []string
	for name := range m.ReadyHandles() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func TestRefresh_ReadyHandlesMatchStoredTokens(t *testing.T) {
	m, store, _, _ := newTestManager(t, newMockBuilder(),
		seed{remote: domain.Remote{Name: "a", URL: "http://a"}, creds: domain.RemoteCredentials{Username: "u", Token: "ta"}},
		seed{remote: domain.Remote{Name: "b", URL: "http://b"}, creds: domain.RemoteCredentials{Username: "u"}},
		seed{remote: domain.Remote{Name: "c", URL: "http://c"}},
	)

	if got := readyNames(m); len(got) != 1 || got[0] != "a" {
		t.Fatalf("ready = %v, want [a]", got)
	}

	if err := store.MergeCredentials("c", domain.RemoteCredentials{Token: "tc"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Refresh(); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	got := readyNames(m)
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("ready = %v, want [a c]", got)
	}
	if len(m.AvailableRemotes()) != 3 {
		t.Errorf("available = %d, want 3", len(m.AvailableRemotes()))
	}
}

func TestRefresh_HandlesReadTokenFromStore(t *testing.T) {
	builder := newMockBuilder()
	m, store, _, _ := newTestManager(t, builder,
		seed{remote: domain.Remote{Name: "a", URL: "http://a"}, creds: domain.RemoteCredentials{Username: "alice", Token: "t1"}},
	)

	configs := builder.configs()
	if len(configs) != 1 {
		t.Fatalf("built %d clients, want 1", len(configs))
	}
	cfg := configs[0]
	if cfg.URL != "http://a" || cfg.Username != "alice" || cfg.Password != "" || cfg.Tokens == nil {
		t.Fatalf("config = %+v", cfg)
	}

	token, err := cfg.Tokens.Token()
	if err != nil || token != "t1" {
		t.Errorf("Token() = %q, %v, want t1", token, err)
	}

	if err := store.MergeCredentials("a", domain.RemoteCredentials{Token: "t2"}); err != nil {
		t.Fatal(err)
	}
	if token, _ := cfg.Tokens.Token(); token != "t2" {
		t.Errorf("Token() after merge = %q, want t2", token)
	}
	if !m.HasReadyRemotes() {
		t.Error("HasReadyRemotes() = false")
	}
}

func TestRefresh_UnbuildableClientIsReported(t *testing.T) {
	builder := newMockBuilder()
	builder.buildErr["http://b"] = errors.New("bad url")

	m, _, _, rec := newTestManager(t, builder,
		seed{remote: domain.Remote{Name: "a", URL: "http://a"}, creds: domain.RemoteCredentials{Token: "ta"}},
		seed{remote: domain.Remote{Name: "b", URL: "http://b"}, creds: domain.RemoteCredentials{Token: "tb"}},
	)

	if got := readyNames(m); len(got) != 1 || got[0] != "a" {
		t.Errorf("ready = %v, want [a]", got)
	}
	var remoteErr *RemoteError
	errs := rec.reported()
	if len(errs) != 1 || !errors.As(errs[0], &remoteErr) || remoteErr.Remote != "b" {
		t.Errorf("reported = %v, want one RemoteError for b", errs)
	}
}

func TestReadyHandles_ReturnsCopy(t *testing.T) {
	m, _, _, _ := newTestManager(t, newMockBuilder(),
		seed{remote: domain.Remote{Name: "a", URL: "http://a"}, creds: domain.RemoteCredentials{Token: "ta"}},
	)

	handles := m.ReadyHandles()
	delete(handles, "a")
	remotes := m.AvailableRemotes()
	delete(remotes, "a")

	if !m.IsReady("a") || !m.HasAvailableRemotes() {
		t.Error("mutating a returned map changed the cache")
	}
}

func TestRefresh_OverlappingRefreshKeepsNewestGeneration(t *testing.T) {
	builder := newMockBuilder()
	m, store, _, _ := newTestManager(t, builder,
		seed{remote: domain.Remote{Name: "a", URL: "http://a"}, creds: domain.RemoteCredentials{Username: "u", Token: "t"}},
	)

	builder.gate = make(chan struct{})
	builder.entered = make(chan struct{}, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		m.Refresh()
	}()
	<-builder.entered

	// a is gone from the store while the first refresh still builds its client
	if err := store.DeleteRemote("a"); err != nil {
		t.Fatalf("DeleteRemote() error = %v", err)
	}
	go func() {
		defer wg.Done()
		m.Refresh()
	}()
	time.Sleep(50 * time.Millisecond)
	close(builder.gate)
	wg.Wait()

	if got := readyNames(m); len(got) != 0 {
		t.Errorf("ready = %v after a was removed", got)
	}
	if got := m.RemoteNames(); len(got) != 0 {
		t.Errorf("registered = %v after a was removed", got)
	}
}

func TestListRemotes_ConsistentDuringRefresh(t *testing.T) {
	m, _, _, _ := newTestManager(t, newMockBuilder(),
		seed{remote: domain.Remote{Name: "a", URL: "http://a"}},
		seed{remote: domain.Remote{Name: "b", URL: "http://b"}},
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			m.Refresh()
		}
	}()

	for i := 0; i < 50; i++ {
		if out := m.ListRemotes(); strings.Contains(out, "[]") {
			t.Fatalf("ListRemotes() paired a name with an empty remote:\n%s", out)
		}
	}
	<-done
}
