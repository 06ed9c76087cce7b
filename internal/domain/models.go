package domain

import "time"

type Remote struct {
	Name      string
	URL       string
	IsDefault bool
}

type RemoteCredentials struct {
	Username string
	Token    string
}

// IsReady reports whether the credentials carry a token.
func (c RemoteCredentials) IsReady() bool {
	return c.Token != ""
}

type User struct {
	ID    string
	Email string
}

type Workspace struct {
	ID        string
	Name      string
	Temporary bool
}

type Project struct {
	ShortID       string
	Name          string
	Path          string
	Type          string
	Description   string
	Visibility    string
	WorkspaceID   string
	WorkspaceName string
}

type BuildState string

const (
	BuildStateInQueue    BuildState = "IN_QUEUE"
	BuildStateInProgress BuildState = "IN_PROGRESS"
	BuildStateSuccessful BuildState = "SUCCESSFUL"
	BuildStateFailed     BuildState = "FAILED"
	BuildStateCancelled  BuildState = "CANCELLED"
)

type BuilderStatus struct {
	ShortID   string
	TaskID    int64
	State     BuildState
	CreatedAt time.Time
	StartedAt time.Time
	EndedAt   time.Time
}

type RunState string

const (
	RunStateNew       RunState = "NEW"
	RunStateRunning   RunState = "RUNNING"
	RunStateStopped   RunState = "STOPPED"
	RunStateFailed    RunState = "FAILED"
	RunStateCancelled RunState = "CANCELLED"
)

type RunnerStatus struct {
	ShortID    string
	ProcessID  int64
	State      RunState
	MemorySize int
	CreatedAt  time.Time
	StartedAt  time.Time
	StoppedAt  time.Time
}
