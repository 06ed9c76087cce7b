package remote

import (
	"context"
	"fmt"
)

// MinIdentifierLength is the shortest prefix ResolveProject accepts.
const MinIdentifierLength = 2

// ResolveProject returns the single project whose short identifier starts
// with prefix. No match is a nil project and a nil error; several matches are
// ErrAmbiguousIdentifier.
func (m *Manager) ResolveProject(ctx context.Context, prefix string) (*UserProject, error) {
	if len(prefix) < MinIdentifierLength {
		return nil, fmt.Errorf("%w: got '%s'", ErrIdentifierTooShort, prefix)
	}

	projects := m.ListProjects(ctx)
	if len(projects) == 0 {
		return nil, nil
	}

	matches := FilterByPrefix(projects, prefix)
	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %d projects match '%s'", ErrAmbiguousIdentifier, len(matches), prefix)
	}
}

// CheckOnlyOne returns the only element of list. An empty or crowded list is
// reported as a MatchError and yields false.
func CheckOnlyOne[T any](list []T, id, noneText, tooManyText string, r Reporter) (T, bool) {
	var zero T
	switch len(list) {
	case 1:
		return list[0], true
	case 0:
		if r != nil {
			r.Report(&MatchError{ID: id, Text: noneText, Count: 0})
		}
	default:
		if r != nil {
			r.Report(&MatchError{ID: id, Text: tooManyText, Count: len(list)})
		}
	}
	return zero, false
}
