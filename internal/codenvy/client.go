package codenvy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
	"github.com/johanforsgren/codenvy-remotes/internal/logger"
)

// Builder wires Codenvy clients. The zero value uses http.DefaultTransport
// and no timeout.
type Builder struct {
	Timeout time.Duration

	// Debug routes every request through LoggingTransport.
	Debug bool

	// Base is the transport under the token layer.
	Base http.RoundTripper
}

func NewBuilder(timeout time.Duration, debug bool) *Builder {
	return &Builder{Timeout: timeout, Debug: debug}
}

func (b *Builder) NewClient(cfg domain.ClientConfig) (domain.Client, error) {
	baseURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid remote url %q: %w", domain.ErrConfiguration, cfg.URL, err)
	}
	if (baseURL.Scheme != "http" && baseURL.Scheme != "https") || baseURL.Host == "" {
		return nil, fmt.Errorf("%w: remote url %q must be an absolute http(s) url", domain.ErrConfiguration, cfg.URL)
	}

	base := b.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if b.Debug {
		base = NewLoggingTransport(base)
	}

	var transport http.RoundTripper
	switch {
	case cfg.Password != "":
		transport = &loginTransport{
			source: &loginTokenSource{
				endpoint: baseURL.JoinPath(loginPath).String(),
				username: cfg.Username,
				password: cfg.Password,
				sink:     cfg.Sink,
				http:     &http.Client{Timeout: b.Timeout, Transport: base},
			},
			base: base,
		}
	case cfg.Tokens != nil:
		transport = &oauth2.Transport{
			Source: &storedTokenSource{remote: cfg.URL, provider: cfg.Tokens},
			Base:   base,
		}
	default:
		return nil, fmt.Errorf("%w: no credentials for %s", domain.ErrConfiguration, cfg.URL)
	}

	return &Client{
		baseURL:  baseURL,
		username: cfg.Username,
		http:     &http.Client{Timeout: b.Timeout, Transport: transport},
	}, nil
}

type Client struct {
	baseURL  *url.URL
	username string
	http     *http.Client
}

func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	logger.Log("Codenvy: Checking identity of %s on %s", c.username, c.baseURL.Host)
	var user userResponse
	if err := c.get(ctx, nil, &user, userPath); err != nil {
		return nil, err
	}
	return &domain.User{ID: user.ID, Email: user.Email}, nil
}

func (c *Client) Workspaces(ctx context.Context) ([]domain.Workspace, error) {
	var members []memberResponse
	if err := c.get(ctx, nil, &members, workspacePath); err != nil {
		return nil, err
	}

	workspaces := make([]domain.Workspace, 0, len(members))
	for _, member := range members {
		ref := member.WorkspaceReference
		workspaces = append(workspaces, domain.Workspace{
			ID:        ref.ID,
			Name:      ref.Name,
			Temporary: ref.Temporary,
		})
	}
	logger.Log("Codenvy: %s has %d workspaces", c.baseURL.Host, len(workspaces))
	return workspaces, nil
}

func (c *Client) Projects(ctx context.Context, workspaceID string) ([]domain.Project, error) {
	var found []projectResponse
	if err := c.get(ctx, nil, &found, projectsPath, workspaceID); err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(found))
	for _, p := range found {
		if p.WorkspaceID == "" {
			p.WorkspaceID = workspaceID
		}
		location := projectPathOf(p.Path, p.Name)
		projects = append(projects, domain.Project{
			ShortID:       shortID(projectIDLength, c.baseURL.String(), p.WorkspaceID, location),
			Name:          p.Name,
			Path:          location,
			Type:          p.Type,
			Description:   p.Description,
			Visibility:    p.Visibility,
			WorkspaceID:   p.WorkspaceID,
			WorkspaceName: p.WorkspaceName,
		})
	}
	return projects, nil
}

func (c *Client) BuilderStatuses(ctx context.Context, project domain.Project) ([]domain.BuilderStatus, error) {
	location := projectPathOf(project.Path, project.Name)
	query := url.Values{"project": {location}}

	var tasks []buildTaskResponse
	if err := c.get(ctx, query, &tasks, builderPath, project.WorkspaceID, "builds"); err != nil {
		return nil, err
	}

	statuses := make([]domain.BuilderStatus, 0, len(tasks))
	for _, task := range tasks {
		statuses = append(statuses, domain.BuilderStatus{
			ShortID:   shortID(statusIDLength, c.baseURL.String(), project.WorkspaceID, location, "build", strconv.FormatInt(task.TaskID, 10)),
			TaskID:    task.TaskID,
			State:     domain.BuildState(task.Status),
			CreatedAt: millis(task.CreationTime),
			StartedAt: millis(task.StartTime),
			EndedAt:   millis(task.EndTime),
		})
	}
	return statuses, nil
}

func (c *Client) RunnerStatuses(ctx context.Context, project domain.Project) ([]domain.RunnerStatus, error) {
	location := projectPathOf(project.Path, project.Name)
	query := url.Values{"project": {location}}

	var processes []processResponse
	if err := c.get(ctx, query, &processes, runnerPath, project.WorkspaceID, "processes"); err != nil {
		return nil, err
	}

	statuses := make([]domain.RunnerStatus, 0, len(processes))
	for _, process := range processes {
		statuses = append(statuses, domain.RunnerStatus{
			ShortID:    shortID(statusIDLength, c.baseURL.String(), project.WorkspaceID, location, "run", strconv.FormatInt(process.ProcessID, 10)),
			ProcessID:  process.ProcessID,
			State:      domain.RunState(process.Status),
			MemorySize: process.MemorySize,
			CreatedAt:  millis(process.CreationTime),
			StartedAt:  millis(process.StartTime),
			StoppedAt:  millis(process.StopTime),
		})
	}
	return statuses, nil
}

func (c *Client) get(ctx context.Context, query url.Values, out interface{}, elems ...string) error {
	escaped := make([]string, len(elems))
	for i, elem := range elems {
		escaped[i] = url.PathEscape(elem)
	}
	target := c.baseURL.JoinPath(escaped...)
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.LogError("CODENVY_GET", target.String(), err)
		if errors.Is(err, domain.ErrAuthentication) || errors.Is(err, domain.ErrTransport) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(req, resp); err != nil {
		logger.LogError("CODENVY_GET", target.String(), err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s: %w", domain.ErrTransport, target.Path, err)
	}
	return nil
}

// checkResponse turns a non-2xx response into an *APIError carrying the
// platform's message when the body has one.
func checkResponse(req *http.Request, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{
		Method:     req.Method,
		URL:        req.URL.Redacted(),
		StatusCode: resp.StatusCode,
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err == nil && len(data) > 0 {
		var body errorResponse
		if json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.Message
		}
	}
	return apiErr
}

func projectPathOf(projectPath, name string) string {
	if projectPath != "" {
		return projectPath
	}
	return path.Join("/", name)
}
