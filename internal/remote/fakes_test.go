package remote

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/storage"
)

type mockClient struct {
	workspaces    []domain.Workspace
	projects      map[string][]domain.Project
	builds        map[string][]domain.BuilderStatus
	runs          map[string][]domain.RunnerStatus
	workspacesErr error
	statusErr     error

	mu    sync.Mutex
	calls int
}

func (c *mockClient) called() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *mockClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *mockClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	c.called()
	return &domain.User{ID: "user"}, nil
}

func (c *mockClient) Workspaces(ctx context.Context) ([]domain.Workspace, error) {
	c.called()
	if c.workspacesErr != nil {
		return nil, c.workspacesErr
	}
	return c.workspaces, nil
}

func (c *mockClient) Projects(ctx context.Context, workspaceID string) ([]domain.Project, error) {
	c.called()
	return c.projects[workspaceID], nil
}

func (c *mockClient) BuilderStatuses(ctx context.Context, project domain.Project) ([]domain.BuilderStatus, error) {
	c.called()
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	return c.builds[project.ShortID], nil
}

func (c *mockClient) RunnerStatuses(ctx context.Context, project domain.Project) ([]domain.RunnerStatus, error) {
	c.called()
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	return c.runs[project.ShortID], nil
}

// loginClient plays the password exchange: the right password stores token in
// the sink, anything else fails the probe.
type loginClient struct {
	cfg      domain.ClientConfig
	password string
	token    string
}

func (c *loginClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	if c.cfg.Password != c.password {
		return nil, fmt.Errorf("%w: 401 bad credentials", domain.ErrAuthentication)
	}
	if c.token != "" && c.cfg.Sink != nil {
		c.cfg.Sink.StoreToken(c.token)
	}
	return &domain.User{ID: c.cfg.Username}, nil
}

func (c *loginClient) Workspaces(ctx context.Context) ([]domain.Workspace, error) {
	return nil, nil
}

func (c *loginClient) Projects(ctx context.Context, workspaceID string) ([]domain.Project, error) {
	return nil, nil
}

func (c *loginClient) BuilderStatuses(ctx context.Context, project domain.Project) ([]domain.BuilderStatus, error) {
	return nil, nil
}

func (c *loginClient) RunnerStatuses(ctx context.Context, project domain.Project) ([]domain.RunnerStatus, error) {
	return nil, nil
}

type account struct {
	password string
	token    string
}

// mockBuilder hands out mockClients keyed by url for token configs and
// loginClients for password configs.
type mockBuilder struct {
	clients  map[string]*mockClient
	accounts map[string]account
	buildErr map[string]error

	// gate, when set, holds every token client build until it is closed.
	gate    chan struct{}
	entered chan struct{}

	mu    sync.Mutex
	built []domain.ClientConfig
}

func newMockBuilder() *mockBuilder {
	return &mockBuilder{
		clients:  map[string]*mockClient{},
		accounts: map[string]account{},
		buildErr: map[string]error{},
	}
}

func (b *mockBuilder) NewClient(cfg domain.ClientConfig) (domain.Client, error) {
	if b.gate != nil && cfg.Password == "" {
		select {
		case b.entered <- struct{}{}:
		default:
		}
		<-b.gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.built = append(b.built, cfg)

	if err := b.buildErr[cfg.URL]; err != nil {
		return nil, err
	}
	if cfg.Password != "" {
		acc := b.accounts[cfg.URL]
		return &loginClient{cfg: cfg, password: acc.password, token: acc.token}, nil
	}
	client, ok := b.clients[cfg.URL]
	if !ok {
		client = &mockClient{}
		b.clients[cfg.URL] = client
	}
	return client, nil
}

func (b *mockBuilder) configs() []domain.ClientConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.ClientConfig(nil), b.built...)
}

type recorder struct {
	mu   sync.Mutex
	errs []error
}

func (r *recorder) Report(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) reported() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

type seed struct {
	remote domain.Remote
	creds  domain.RemoteCredentials
}

func newStore(t *testing.T, seeds ...seed) (*storage.LocalStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preferences.json")
	store, err := storage.NewLocalStore(path, nil)
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}
	for _, s := range seeds {
		if err := store.PutRemote(s.remote); err != nil {
			t.Fatalf("PutRemote(%s) error = %v", s.remote.Name, err)
		}
		if s.creds != (domain.RemoteCredentials{}) {
			if err := store.MergeCredentials(s.remote.Name, s.creds); err != nil {
				t.Fatalf("MergeCredentials(%s) error = %v", s.remote.Name, err)
			}
		}
	}
	return store, path
}

func newTestManager(t *testing.T, builder *mockBuilder, seeds ...seed) (*Manager, *storage.LocalStore, string, *recorder) {
	t.Helper()
	store, path := newStore(t, seeds...)
	rec := &recorder{}
	return New(store, builder, WithReporter(rec)), store, path, rec
}
