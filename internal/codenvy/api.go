package codenvy

import "time"

const (
	loginPath     = "api/auth/login"
	userPath      = "api/user"
	workspacePath = "api/workspace/all"
	projectsPath  = "api/project"
	builderPath   = "api/builder"
	runnerPath    = "api/runner"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Value string `json:"value"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type memberResponse struct {
	WorkspaceReference workspaceReference `json:"workspaceReference"`
}

type workspaceReference struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Temporary bool   `json:"temporary"`
}

type projectResponse struct {
	Name          string `json:"name"`
	Path          string `json:"path"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	Visibility    string `json:"visibility"`
	WorkspaceID   string `json:"workspaceId"`
	WorkspaceName string `json:"workspaceName"`
}

type buildTaskResponse struct {
	TaskID       int64  `json:"taskId"`
	Status       string `json:"status"`
	CreationTime int64  `json:"creationTime"`
	StartTime    int64  `json:"startTime"`
	EndTime      int64  `json:"endTime"`
}

type processResponse struct {
	ProcessID    int64  `json:"processId"`
	Status       string `json:"status"`
	MemorySize   int    `json:"memorySize"`
	CreationTime int64  `json:"creationTime"`
	StartTime    int64  `json:"startTime"`
	StopTime     int64  `json:"stopTime"`
}

// millis converts the platform's epoch milliseconds; zero stays the zero time.
func millis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
