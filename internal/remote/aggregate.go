package remote

import (
	"context"

	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

// ListProjects walks the ready remotes in name order and collects the
// projects of every non-temporary workspace. A remote that fails is reported
// and skipped; the projects of the others are still returned.
func (m *Manager) ListProjects(ctx context.Context) []UserProject {
	var projects []UserProject

	for _, h := range m.readyInOrder() {
		if ctx.Err() != nil {
			m.fail("LIST_PROJECTS", h.name, &RemoteError{Remote: h.name, Op: "list projects", Err: ctx.Err()})
			break
		}

		found, err := m.remoteProjects(ctx, h)
		if err != nil {
			m.fail("LIST_PROJECTS", h.name, err)
			continue
		}
		projects = append(projects, found...)
	}

	logger.Log("Listed %d projects", len(projects))
	return projects
}

func (m *Manager) remoteProjects(ctx context.Context, h handle) ([]UserProject, error) {
	workspaces, err := h.client.Workspaces(ctx)
	if err != nil {
		return nil, &RemoteError{Remote: h.name, Op: "list workspaces", Err: err}
	}

	var projects []UserProject
	for _, ws := range workspaces {
		if ws.Temporary {
			continue
		}
		list, err := h.client.Projects(ctx, ws.ID)
		if err != nil {
			return nil, &RemoteError{Remote: h.name, Op: "list projects of workspace " + ws.Name, Err: err}
		}
		for _, p := range list {
			if p.WorkspaceID == "" {
				p.WorkspaceID = ws.ID
			}
			if p.WorkspaceName == "" {
				p.WorkspaceName = ws.Name
			}
			projects = append(projects, UserProject{Remote: h.name, Client: h.client, Project: p})
		}
	}
	return projects, nil
}

// Builders returns every builder status of one project.
func (m *Manager) Builders(ctx context.Context, project UserProject) ([]UserBuilderStatus, error) {
	statuses, err := project.Client.BuilderStatuses(ctx, project.Project)
	if err != nil {
		return nil, &RemoteError{Remote: project.Remote, Op: "list builds of " + project.Project.Name, Err: err}
	}

	result := make([]UserBuilderStatus, 0, len(statuses))
	for _, s := range statuses {
		result = append(result, UserBuilderStatus{Project: project, Status: s})
	}
	return result, nil
}

// Runners returns every runner status of one project.
func (m *Manager) Runners(ctx context.Context, project UserProject) ([]UserRunnerStatus, error) {
	statuses, err := project.Client.RunnerStatuses(ctx, project.Project)
	if err != nil {
		return nil, &RemoteError{Remote: project.Remote, Op: "list runs of " + project.Project.Name, Err: err}
	}

	result := make([]UserRunnerStatus, 0, len(statuses))
	for _, s := range statuses {
		result = append(result, UserRunnerStatus{Project: project, Status: s})
	}
	return result, nil
}

// FindBuilders returns every builder status, across all projects, whose short
// identifier starts with prefix.
func (m *Manager) FindBuilders(ctx context.Context, prefix string) []UserBuilderStatus {
	var matches []UserBuilderStatus
	for _, project := range m.ListProjects(ctx) {
		statuses, err := m.Builders(ctx, project)
		if err != nil {
			m.fail("FIND_BUILDERS", project.Remote, err)
			continue
		}
		matches = append(matches, FilterByPrefix(statuses, prefix)...)
	}
	return matches
}

// FindRunners returns every runner status, across all projects, whose short
// identifier starts with prefix.
func (m *Manager) FindRunners(ctx context.Context, prefix string) []UserRunnerStatus {
	var matches []UserRunnerStatus
	for _, project := range m.ListProjects(ctx) {
		statuses, err := m.Runners(ctx, project)
		if err != nil {
			m.fail("FIND_RUNNERS", project.Remote, err)
			continue
		}
		matches = append(matches, FilterByPrefix(statuses, prefix)...)
	}
	return matches
}
