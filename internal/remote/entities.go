package remote

import (
	"strings"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
)

// UserProject is a project found on one ready remote, together with the
// handle that found it.
type UserProject struct {
	Remote  string
	Client  domain.Client
	Project domain.Project
}

func (p UserProject) ShortID() string {
	return p.Project.ShortID
}

type UserBuilderStatus struct {
	Project UserProject
	Status  domain.BuilderStatus
}

func (s UserBuilderStatus) ShortID() string {
	return s.Status.ShortID
}

type UserRunnerStatus struct {
	Project UserProject
	Status  domain.RunnerStatus
}

func (s UserRunnerStatus) ShortID() string {
	return s.Status.ShortID
}

// Identified is an entity resolvable by short identifier prefix.
type Identified interface {
	ShortID() string
}

// FilterByPrefix keeps the entities whose short identifier starts with prefix.
func FilterByPrefix[T Identified](entities []T, prefix string) []T {
	var matches []T
	for _, entity := range entities {
		if strings.HasPrefix(entity.ShortID(), prefix) {
			matches = append(matches, entity)
		}
	}
	return matches
}
