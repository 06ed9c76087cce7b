package domain

import "context"

// Client is an authenticated handle on one remote. Every method blocks on
// network I/O and returns an error wrapping ErrAuthentication or ErrTransport.
type Client interface {
	CurrentUser(ctx context.Context) (*User, error)

	Workspaces(ctx context.Context) ([]Workspace, error)

	Projects(ctx context.Context, workspaceID string) ([]Project, error)

	BuilderStatuses(ctx context.Context, project Project) ([]BuilderStatus, error)

	RunnerStatuses(ctx context.Context, project Project) ([]RunnerStatus, error)
}

// TokenProvider supplies the token of an already authenticated remote.
type TokenProvider interface {
	Token() (string, error)
}

// TokenSink receives the token issued during a password login. It is called
// synchronously, before the call that triggered the login returns.
type TokenSink interface {
	StoreToken(token string)
}

// ClientConfig describes one client. Exactly one of Password or Tokens is
// expected to be set.
type ClientConfig struct {
	URL      string
	Username string
	Password string
	Tokens   TokenProvider
	Sink     TokenSink
}

// ClientBuilder wires a Client from its configuration. Implementations must
// not perform network I/O while building.
type ClientBuilder interface {
	NewClient(cfg ClientConfig) (Client, error)
}
