package remote

import (
	"fmt"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
)

var (
	ErrRemoteExists    = fmt.Errorf("%w: remote already exists", domain.ErrConfiguration)
	ErrRemoteNotFound  = fmt.Errorf("%w: remote not found", domain.ErrConfiguration)
	ErrNoDefaultRemote = fmt.Errorf("%w: no default remote", domain.ErrConfiguration)
	ErrInvalidRemote   = fmt.Errorf("%w: invalid remote", domain.ErrConfiguration)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", domain.ErrAuthentication)
	ErrTokenNotIssued     = fmt.Errorf("%w: token not issued", domain.ErrAuthentication)

	ErrIdentifierTooShort  = fmt.Errorf("%w: the identifier should contain at least %d characters", domain.ErrResolution, MinIdentifierLength)
	ErrAmbiguousIdentifier = fmt.Errorf("%w: ambiguous, add more characters", domain.ErrResolution)
	ErrNoMatch             = fmt.Errorf("%w: none found", domain.ErrResolution)
	ErrTooManyMatches      = fmt.Errorf("%w: too many matches", domain.ErrResolution)
)

// RemoteError ties a failure to the remote it happened on.
type RemoteError struct {
	Remote string
	Op     string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote '%s': %s: %v", e.Remote, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// MatchError is reported by CheckOnlyOne when a filtered list does not hold
// exactly one element.
type MatchError struct {
	ID    string
	Text  string
	Count int
}

func (e *MatchError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("No %s found with identifier '%s'.", e.Text, e.ID)
	}
	return fmt.Sprintf("Too many %s have been found with identifier '%s'. Please add extra data to the identifier", e.Text, e.ID)
}

func (e *MatchError) Unwrap() error {
	if e.Count == 0 {
		return ErrNoMatch
	}
	return ErrTooManyMatches
}
