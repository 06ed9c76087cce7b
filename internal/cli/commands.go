package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Env carries the streams of one invocation.
type Env struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

type Command struct {
	Name    string
	Aliases []string
	Usage   string
	Summary string
	Run     func(ctx context.Context, env *Env, args []string) error
}

type CommandRegistry struct {
	commands []*Command
	byName   map[string]*Command
}

func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{byName: map[string]*Command{}}

	r.Register(&Command{
		Name:    "remote",
		Aliases: []string{"remotes"},
		Usage:   "remote [list | add <name> <url> | remove <name> | default <name>]",
		Summary: "Manage the registered Codenvy remotes",
		Run:     runRemote,
	})
	r.Register(&Command{
		Name:    "login",
		Usage:   "login [--remote <name>] [<username> [<password>]]",
		Summary: "Login into a Codenvy remote",
		Run:     runLogin,
	})
	r.Register(&Command{
		Name:    "projects",
		Aliases: []string{"list-projects"},
		Usage:   "projects",
		Summary: "List the projects of every ready remote",
		Run:     runProjects,
	})
	r.Register(&Command{
		Name:    "project",
		Usage:   "project <id>",
		Summary: "Show the project matching an identifier prefix",
		Run:     runProject,
	})
	r.Register(&Command{
		Name:    "builds",
		Usage:   "builds [--project <id>] [<build-id>]",
		Summary: "List the builds matching an identifier prefix",
		Run:     runBuilds,
	})
	r.Register(&Command{
		Name:    "builder",
		Usage:   "builder <build-id>",
		Summary: "Show the build matching an identifier prefix",
		Run:     runBuilder,
	})
	r.Register(&Command{
		Name:    "runs",
		Usage:   "runs [--project <id>] [<run-id>]",
		Summary: "List the runs matching an identifier prefix",
		Run:     runRuns,
	})
	r.Register(&Command{
		Name:    "runner",
		Usage:   "runner <run-id>",
		Summary: "Show the run matching an identifier prefix",
		Run:     runRunner,
	})

	return r
}

func (r *CommandRegistry) Register(cmd *Command) {
	r.commands = append(r.commands, cmd)
	r.byName[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.byName[alias] = cmd
	}
}

func (r *CommandRegistry) Lookup(name string) (*Command, bool) {
	cmd, ok := r.byName[strings.ToLower(name)]
	return cmd, ok
}

// Execute runs the command named by args[0] with the remaining arguments.
func (r *CommandRegistry) Execute(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		r.PrintUsage(env.Stdout)
		return nil
	}

	cmd, ok := r.Lookup(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q (run 'codenvy help')", args[0])
	}
	return cmd.Run(ctx, env, args[1:])
}

func (r *CommandRegistry) PrintUsage(w io.Writer) {
	commands := append([]*Command(nil), r.commands...)
	sort.Slice(commands, func(i, j int) bool { return commands[i].Name < commands[j].Name })

	width := 0
	for _, cmd := range commands {
		if len(cmd.Usage) > width {
			width = len(cmd.Usage)
		}
	}

	fmt.Fprintln(w, "Usage: codenvy [--config <file>] <command> [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-*s  %s\n", width, cmd.Usage, cmd.Summary)
	}
}
