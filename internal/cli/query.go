package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/remote"
	"github.com/johanforsgren/codenvy-remotes/internal/ui"
)

// readyManager returns the session manager once at least one remote is ready.
func readyManager(ctx context.Context, env *Env) (*remote.Manager, error) {
	m, err := managerFrom(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireReady(env, m); err != nil {
		return nil, err
	}
	return m, nil
}

func runProjects(ctx context.Context, env *Env, args []string) error {
	if len(args) != 0 {
		return failf(env, "Usage: codenvy projects")
	}
	m, err := readyManager(ctx, env)
	if err != nil {
		return err
	}

	fmt.Fprint(env.Stdout, ui.RenderProjects(m.ListProjects(ctx)))
	return nil
}

func runProject(ctx context.Context, env *Env, args []string) error {
	if len(args) != 1 {
		return failf(env, "Usage: codenvy project <id>")
	}
	m, err := readyManager(ctx, env)
	if err != nil {
		return err
	}

	project, err := resolveProject(ctx, env, m, args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(env.Stdout, ui.RenderProject(*project))
	return nil
}

// resolveProject prints the resolution failure, including the no-match
// case, and returns ErrCommandFailed for it.
func resolveProject(ctx context.Context, env *Env, m *remote.Manager, id string) (*remote.UserProject, error) {
	project, err := m.ResolveProject(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrResolution) {
			return nil, failf(env, "%v", err)
		}
		return nil, err
	}
	if project == nil {
		return nil, failf(env, "No project found with identifier '%s'.", id)
	}
	return project, nil
}

func runBuilds(ctx context.Context, env *Env, args []string) error {
	var projectID string
	flagSet := newFlagSet("builds", env)
	flagSet.StringVarP(&projectID, "project", "p", "", "only the builds of this project")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) > 1 {
		return failf(env, "Usage: codenvy builds [--project <id>] [<build-id>]")
	}
	prefix := ""
	if len(rest) == 1 {
		prefix = rest[0]
	}

	m, err := readyManager(ctx, env)
	if err != nil {
		return err
	}

	if projectID == "" {
		fmt.Fprint(env.Stdout, ui.RenderBuilds(m.FindBuilders(ctx, prefix)))
		return nil
	}

	project, err := resolveProject(ctx, env, m, projectID)
	if err != nil {
		return err
	}
	builds, err := m.Builders(ctx, *project)
	if err != nil {
		return failf(env, "%v", err)
	}
	fmt.Fprint(env.Stdout, ui.RenderBuilds(remote.FilterByPrefix(builds, prefix)))
	return nil
}

func runBuilder(ctx context.Context, env *Env, args []string) error {
	if len(args) != 1 {
		return failf(env, "Usage: codenvy builder <build-id>")
	}
	m, err := readyManager(ctx, env)
	if err != nil {
		return err
	}

	build, ok := remote.CheckOnlyOne(m.FindBuilders(ctx, args[0]), args[0], "builder", "builders", m.Reporter())
	if !ok {
		return ErrCommandFailed
	}
	fmt.Fprint(env.Stdout, ui.RenderBuilder(build))
	return nil
}

func runRuns(ctx context.Context, env *Env, args []string) error {
	var projectID string
	flagSet := newFlagSet("runs", env)
	flagSet.StringVarP(&projectID, "project", "p", "", "only the runs of this project")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	rest := flagSet.Args()
	if len(rest) > 1 {
		return failf(env, "Usage: codenvy runs [--project <id>] [<run-id>]")
	}
	prefix := ""
	if len(rest) == 1 {
		prefix = rest[0]
	}

	m, err := readyManager(ctx, env)
	if err != nil {
		return err
	}

	if projectID == "" {
		fmt.Fprint(env.Stdout, ui.RenderRuns(m.FindRunners(ctx, prefix)))
		return nil
	}

	project, err := resolveProject(ctx, env, m, projectID)
	if err != nil {
		return err
	}
	runs, err := m.Runners(ctx, *project)
	if err != nil {
		return failf(env, "%v", err)
	}
	fmt.Fprint(env.Stdout, ui.RenderRuns(remote.FilterByPrefix(runs, prefix)))
	return nil
}

func runRunner(ctx context.Context, env *Env, args []string) error {
	if len(args) != 1 {
		return failf(env, "Usage: codenvy runner <run-id>")
	}
	m, err := readyManager(ctx, env)
	if err != nil {
		return err
	}

	run, ok := remote.CheckOnlyOne(m.FindRunners(ctx, args[0]), args[0], "runner", "runners", m.Reporter())
	if !ok {
		return ErrCommandFailed
	}
	fmt.Fprint(env.Stdout, ui.RenderRunner(run))
	return nil
}
