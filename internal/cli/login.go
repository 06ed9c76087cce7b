package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/johanforsgren/codenvy-remotes/internal/ui"
	"github.com/johanforsgren/codenvy-remotes/internal/ui/views"
)

func runLogin(ctx context.Context, env *Env, args []string) error {
	m, err := managerFrom(ctx)
	if err != nil {
		return err
	}

	var remoteName string
	flagSet := newFlagSet("login", env)
	flagSet.StringVarP(&remoteName, "remote", "r", "", "remote to login into (default: the default remote)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	positional := flagSet.Args()
	if len(positional) > 2 {
		return failf(env, "Usage: codenvy login [--remote <name>] [<username> [<password>]]")
	}

	target := remoteName
	if target == "" {
		name, ok := m.DefaultRemoteName()
		if !ok {
			return failf(env, "No remote given and no default remote. Use --remote <name> or 'codenvy remote default <name>'.")
		}
		target = name
	}

	var username, password string
	if len(positional) > 0 {
		username = positional[0]
	}
	if len(positional) > 1 {
		password = positional[1]
	}

	if password == "" {
		username, password, err = readCredentials(ctx, env, target, username)
		if errors.Is(err, views.ErrLoginCancelled) {
			return failf(env, "Login cancelled")
		}
		if err != nil {
			return err
		}
	}

	if !m.Login(ctx, remoteName, username, password) {
		fmt.Fprintf(env.Stderr, "Login %s\n", ui.ErrorStyle.Render("failed"))
		return ErrCommandFailed
	}
	fmt.Fprintf(env.Stdout, "Login %s: Welcome %s on %s\n", ui.SuccessStyle.Render("OK"), ui.InfoStyle.Render(username), target)
	return nil
}

// readCredentials asks for the missing credentials. With a terminal on both
// ends it shows the login form; with only stdin on a terminal it prompts on
// stderr with echo disabled; otherwise it reads the next lines of stdin.
func readCredentials(ctx context.Context, env *Env, remoteName, username string) (string, string, error) {
	if in, ok := env.Stdin.(*os.File); ok && term.IsTerminal(int(in.Fd())) {
		if out, ok := env.Stdout.(*os.File); ok && term.IsTerminal(int(out.Fd())) {
			return views.RunLoginForm(ctx, env.Stdin, env.Stdout, remoteName, username)
		}
		if username != "" {
			return promptPassword(env, in, username)
		}
	}

	reader := bufio.NewReader(env.Stdin)
	if username == "" {
		line, err := readLine(reader)
		if err != nil {
			return "", "", fmt.Errorf("failed to read username: %w", err)
		}
		username = line
	}

	password, err := readLine(reader)
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	if username == "" || password == "" {
		return "", "", errors.New("username and password are required")
	}
	return username, password, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptPassword(env *Env, in *os.File, username string) (string, string, error) {
	fmt.Fprintf(env.Stderr, "Password for %s: ", username)
	password, err := term.ReadPassword(int(in.Fd()))
	fmt.Fprintln(env.Stderr)
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	if len(password) == 0 {
		return "", "", errors.New("username and password are required")
	}
	return username, string(password), nil
}
