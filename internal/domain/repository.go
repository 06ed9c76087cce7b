package domain

// Preferences is the typed view of the persisted remotes tree:
//
//	remotes.<name>.url
//	remotes.<name>.isDefault
//	remotes.<name>.credentials.username
//	remotes.<name>.credentials.token
type Preferences interface {
	RemoteNames() ([]string, error)

	Remote(name string) (*Remote, error)

	Credentials(name string) (*RemoteCredentials, error)

	PutRemote(remote Remote) error

	// MergeCredentials overwrites the non-empty fields of creds and keeps
	// the stored value of the others.
	MergeCredentials(name string, creds RemoteCredentials) error

	DeleteRemote(name string) error

	// SetDefault flags name as the default remote and clears the flag on
	// every other remote.
	SetDefault(name string) error
}
