// Package cli implements the codenvy command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/johanforsgren/codenvy-remotes/internal/config"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
	"github.com/johanforsgren/codenvy-remotes/internal/remote"
	"github.com/johanforsgren/codenvy-remotes/internal/ui"
)

// ErrCommandFailed is returned once a command has already printed its
// diagnostic.
var ErrCommandFailed = errors.New("command failed")

// Run parses the global flags, opens the manager and executes the command
// named in args.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var configPath string
	var help, verbose bool

	flagSet := pflag.NewFlagSet("codenvy", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVarP(&configPath, "config", "c", "", "configuration file (default $CODENVY_CONFIG or ~/.codenvy/config.yaml)")
	flagSet.BoolVarP(&verbose, "verbose", "v", false, "print the session log on exit")
	flagSet.BoolVarP(&help, "help", "h", false, "show help")

	registry := NewCommandRegistry()
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			registry.PrintUsage(stdout)
			return nil
		}
		return err
	}

	rest := flagSet.Args()
	if help || len(rest) == 0 || rest[0] == "help" {
		registry.PrintUsage(stdout)
		return nil
	}
	if _, ok := registry.Lookup(rest[0]); !ok {
		return fmt.Errorf("unknown command %q (run 'codenvy help')", rest[0])
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.File); err != nil {
		fmt.Fprintf(stderr, "warning: %v\n", err)
	}
	defer logger.Close()
	if verbose {
		defer func() { fmt.Fprint(stderr, ui.RenderLogs(logger.GetLogs())) }()
	}

	reporter := remote.ReporterFunc(func(err error) {
		fmt.Fprint(stderr, ui.RenderError(err))
	})
	manager, closeFn, err := openManager(cfg, reporter)
	if err != nil {
		return err
	}
	defer closeFn()

	session := remote.NewSession(manager)
	logger.Log("Session %s: %v", session.ID, rest)
	ctx = remote.WithSession(ctx, session)

	env := &Env{Stdin: stdin, Stdout: stdout, Stderr: stderr}
	return registry.Execute(ctx, env, rest)
}

// managerFrom returns the manager of the session carried by ctx.
func managerFrom(ctx context.Context) (*remote.Manager, error) {
	session, ok := remote.SessionFrom(ctx)
	if !ok || session.Manager == nil {
		return nil, errors.New("no codenvy session")
	}
	return session.Manager, nil
}

// requireReady prints a hint and fails when no remote holds a token.
func requireReady(env *Env, m *remote.Manager) error {
	if m.HasReadyRemotes() {
		return nil
	}
	if !m.HasAvailableRemotes() {
		return failf(env, "No Codenvy remote is configured. Add one with 'codenvy remote add <name> <url>'.")
	}
	return failf(env, "Not logged in on any remote. Run 'codenvy login' first.")
}

// failf prints a diagnostic in red and returns ErrCommandFailed.
func failf(env *Env, format string, args ...interface{}) error {
	fmt.Fprintln(env.Stderr, ui.ErrorStyle.Render(fmt.Sprintf(format, args...)))
	return ErrCommandFailed
}

func newFlagSet(name string, env *Env) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(env.Stderr)
	return flagSet
}
