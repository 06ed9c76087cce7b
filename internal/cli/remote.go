package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/johanforsgren/codenvy-remotes/internal/ui"
)

func runRemote(ctx context.Context, env *Env, args []string) error {
	m, err := managerFrom(ctx)
	if err != nil {
		return err
	}

	action := "list"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}

	switch action {
	case "list", "ls":
		fmt.Fprint(env.Stdout, ui.RenderRemotes(m.ListRemotes()))
		return nil

	case "add":
		if len(args) != 2 {
			return failf(env, "Usage: codenvy remote add <name> <url>")
		}
		name := strings.TrimSpace(args[0])
		if !m.AddRemote(name, args[1]) {
			return ErrCommandFailed
		}
		fmt.Fprint(env.Stdout, ui.RenderSuccess(fmt.Sprintf("Remote '%s' added [%s]", name, args[1])))
		return nil

	case "remove", "rm":
		if len(args) != 1 {
			return failf(env, "Usage: codenvy remote remove <name>")
		}
		if !m.RemoveRemote(args[0]) {
			return ErrCommandFailed
		}
		fmt.Fprint(env.Stdout, ui.RenderSuccess(fmt.Sprintf("Remote '%s' removed", args[0])))
		return nil

	case "default":
		if len(args) == 0 {
			name, ok := m.DefaultRemoteName()
			if !ok {
				return failf(env, "No default remote.")
			}
			fmt.Fprintln(env.Stdout, name)
			return nil
		}
		if !m.SetDefaultRemote(args[0]) {
			return ErrCommandFailed
		}
		fmt.Fprint(env.Stdout, ui.RenderSuccess(fmt.Sprintf("Remote '%s' is now the default", args[0])))
		return nil
	}

	return failf(env, "Unknown remote action '%s'. Use list, add, remove or default.", action)
}
