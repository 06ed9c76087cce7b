package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	testPassword = "s3cret"
	testToken    = "tok-cli-42"
)

func newCodenvyServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		if req.Username != "alice" || req.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"Authentication failed"}`)
			return
		}
		fmt.Fprintf(w, `{"value":%q}`, testToken)
	})

	authed := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprint(w, body)
		}
	}

	mux.HandleFunc("GET /api/user", authed(`{"id":"u1","email":"alice@example.com"}`))
	mux.HandleFunc("GET /api/workspace/all", authed(`[
		{"workspaceReference":{"id":"ws1","name":"main"}},
		{"workspaceReference":{"id":"tmp","name":"tmp-1","temporary":true}}
	]`))
	mux.HandleFunc("GET /api/project/ws1", authed(`[{"name":"webapp","path":"/webapp","type":"maven","workspaceName":"main"}]`))
	mux.HandleFunc("GET /api/project/tmp", authed(`[{"name":"scratch","path":"/scratch"}]`))
	mux.HandleFunc("GET /api/builder/ws1/builds", authed(`[{"taskId":7,"status":"SUCCESSFUL","creationTime":1400000000000}]`))
	mux.HandleFunc("GET /api/runner/ws1/processes", authed(`[{"processId":3,"status":"RUNNING","memorySize":512}]`))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

type harness struct {
	t      *testing.T
	config string
	dir    string
}

func newHarness(t *testing.T, extra string) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	config := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("preferences:\n  path: %s\nlog:\n  file: %s\n%s",
		filepath.Join(dir, "preferences.json"), filepath.Join(dir, "codenvy.log"), extra)
	if err := os.WriteFile(config, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return &harness{t: t, config: config, dir: dir}
}

func (h *harness) run(stdin string, args ...string) (string, string, error) {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), append([]string{"--config", h.config}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, errOut, err := h.run(stdin, args...)
	if err != nil {
		h.t.Fatalf("%v: error = %v, stderr = %s", args, err, errOut)
	}
	return out
}

// firstID returns the leading column of the first data row of a table.
func firstID(t *testing.T, table string) string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(table), "\n")
	if len(lines) < 2 {
		t.Fatalf("no rows in:\n%s", table)
	}
	return strings.Fields(lines[1])[0]
}

func TestRemoteCommands(t *testing.T) {
	h := newHarness(t, "")

	out := h.mustRun("", "remote", "list")
	if !strings.Contains(out, "There is no Codenvy remote.") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	h.mustRun("", "remote", "add", "dev", "http://a.example.com")
	out = h.mustRun("", "remote", "add", " staging ", "http://b.example.com")
	if !strings.Contains(out, "Remote 'staging' added") {
		t.Errorf("expected the trimmed name in:\n%s", out)
	}
	h.mustRun("", "remote", "default", "dev")

	out = h.mustRun("", "remote")
	for _, want := range []string{"There are 2 Codenvy remotes:", "dev  [http://a.example.com] *", "staging  [http://b.example.com]"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if out := h.mustRun("", "remote", "default"); strings.TrimSpace(out) != "dev" {
		t.Errorf("default = %q, want dev", out)
	}

	_, errOut, err := h.run("", "remote", "add", "dev", "http://c.example.com")
	if !errors.Is(err, ErrCommandFailed) {
		t.Fatalf("duplicate add error = %v", err)
	}
	if !strings.Contains(errOut, "already exists") {
		t.Errorf("expected diagnostic, got %q", errOut)
	}

	h.mustRun("", "remote", "remove", "staging")
	if _, _, err := h.run("", "remote", "remove", "staging"); !errors.Is(err, ErrCommandFailed) {
		t.Errorf("second remove error = %v, want ErrCommandFailed", err)
	}
	out = h.mustRun("", "remote", "list")
	if strings.Contains(out, "staging") || !strings.Contains(out, "http://a.example.com") {
		t.Errorf("unexpected list after remove:\n%s", out)
	}
}

func TestLoginAndQueries(t *testing.T) {
	server := newCodenvyServer(t)
	h := newHarness(t, "")

	h.mustRun("", "remote", "add", "dev", server.URL)
	h.mustRun("", "remote", "default", "dev")

	_, errOut, err := h.run("", "projects")
	if !errors.Is(err, ErrCommandFailed) || !strings.Contains(errOut, "Not logged in") {
		t.Fatalf("projects before login: err = %v, stderr = %q", err, errOut)
	}

	_, errOut, err = h.run("alice\nwrong\n", "login")
	if !errors.Is(err, ErrCommandFailed) || !strings.Contains(errOut, "invalid username or password") {
		t.Fatalf("wrong password: err = %v, stderr = %q", err, errOut)
	}

	out := h.mustRun(testPassword+"\n", "login", "alice")
	if !strings.Contains(out, "Welcome alice") {
		t.Errorf("unexpected login output %q", out)
	}

	prefs, err := os.ReadFile(filepath.Join(h.dir, "preferences.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(prefs), testToken) || strings.Contains(string(prefs), testPassword) {
		t.Errorf("unexpected preferences content:\n%s", prefs)
	}

	out = h.mustRun("", "projects")
	if !strings.Contains(out, "webapp") || strings.Contains(out, "scratch") {
		t.Fatalf("unexpected projects:\n%s", out)
	}
	projectID := firstID(t, out)

	out = h.mustRun("", "project", projectID[:4])
	if !strings.Contains(out, "Path:        /webapp") || !strings.Contains(out, "Remote:      dev") {
		t.Errorf("unexpected project detail:\n%s", out)
	}

	_, errOut, err = h.run("", "project", "x")
	if !errors.Is(err, ErrCommandFailed) || !strings.Contains(errOut, "at least 2 characters") {
		t.Errorf("short id: err = %v, stderr = %q", err, errOut)
	}

	out = h.mustRun("", "builds")
	if !strings.Contains(out, "SUCCESSFUL") {
		t.Fatalf("unexpected builds:\n%s", out)
	}
	buildID := firstID(t, out)
	out = h.mustRun("", "builder", buildID)
	if !strings.Contains(out, "Task:     7") {
		t.Errorf("unexpected builder detail:\n%s", out)
	}

	out = h.mustRun("", "runs", "--project", projectID)
	if !strings.Contains(out, "RUNNING") || !strings.Contains(out, "512MB") {
		t.Fatalf("unexpected runs:\n%s", out)
	}
	runID := firstID(t, out)
	if out := h.mustRun("", "runner", runID); !strings.Contains(out, "Process:  3") {
		t.Errorf("unexpected runner detail:\n%s", out)
	}

	_, errOut, err = h.run("", "runner", "zzzz")
	if !errors.Is(err, ErrCommandFailed) || !strings.Contains(errOut, "No runner found with identifier 'zzzz'.") {
		t.Errorf("missing runner: err = %v, stderr = %q", err, errOut)
	}
}

func TestSQLiteBackendSealsTokens(t *testing.T) {
	server := newCodenvyServer(t)
	h := newHarness(t, "")
	db := filepath.Join(h.dir, "prefs.db")
	keyFile := filepath.Join(h.dir, "keys", "token.key")

	content := fmt.Sprintf("preferences:\n  backend: sqlite\n  path: %s\nlog:\n  file: %s\nsecurity:\n  token_key_file: %s\n",
		db, filepath.Join(h.dir, "codenvy.log"), keyFile)
	if err := os.WriteFile(h.config, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	h.mustRun("", "remote", "add", "dev", server.URL)
	h.mustRun(testPassword+"\n", "login", "--remote", "dev", "alice")

	raw, err := os.ReadFile(db)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Contains(raw, []byte(testToken)) {
		t.Error("token stored in clear text")
	}
	if out := h.mustRun("", "projects"); !strings.Contains(out, "webapp") {
		t.Errorf("unexpected projects:\n%s", out)
	}
	if info, err := os.Stat(keyFile); err != nil || info.Mode().Perm() != 0600 {
		t.Errorf("token key file: %v, %v", info, err)
	}
}

func TestLoginWithoutDefaultRemote(t *testing.T) {
	h := newHarness(t, "")
	h.mustRun("", "remote", "add", "dev", "http://a.example.com")

	_, errOut, err := h.run("alice\npw\n", "login")
	if !errors.Is(err, ErrCommandFailed) || !strings.Contains(errOut, "no default remote") {
		t.Errorf("err = %v, stderr = %q", err, errOut)
	}
}

func TestHelpAndUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if err := Run(context.Background(), []string{"--help"}, strings.NewReader(""), &stdout, &stderr); err != nil {
		t.Fatalf("help error = %v", err)
	}
	for _, want := range []string{"Usage: codenvy", "remote [list", "login [--remote <name>]", "builder <build-id>"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("expected %q in help:\n%s", want, stdout.String())
		}
	}

	err := Run(context.Background(), []string{"deploy"}, strings.NewReader(""), &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unknown command error = %v", err)
	}
}

func TestCommandRegistryAliases(t *testing.T) {
	registry := NewCommandRegistry()

	tests := []struct {
		name string
		want string
	}{
		{"remote", "remote"},
		{"remotes", "remote"},
		{"REMOTE", "remote"},
		{"list-projects", "projects"},
		{"runner", "runner"},
	}
	for _, tt := range tests {
		cmd, ok := registry.Lookup(tt.name)
		if !ok || cmd.Name != tt.want {
			t.Errorf("Lookup(%q) = %v, %v, want %s", tt.name, cmd, ok, tt.want)
		}
	}
	if _, ok := registry.Lookup("deploy"); ok {
		t.Error("Lookup(deploy) found a command")
	}
}

func TestVerbosePrintsSessionLog(t *testing.T) {
	h := newHarness(t, "")

	_, errOut, err := h.run("", "--verbose", "remote", "add", "dev", "http://a.example.com")
	if err != nil {
		t.Fatalf("error = %v, stderr = %s", err, errOut)
	}
	if !strings.Contains(errOut, "Session Logs") || !strings.Contains(errOut, "Remote dev added") {
		t.Errorf("expected session log on stderr, got:\n%s", errOut)
	}
}
