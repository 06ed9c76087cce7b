package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/johanforsgren/codenvy-remotes/internal/logger"
	"github.com/johanforsgren/codenvy-remotes/internal/remote"
)

const timeLayout = "2006-01-02 15:04:05"

// table lays out rows in columns padded to the widest cell. The header row
// is rendered with HeaderStyle; cells may already carry styling.
type table struct {
	header []string
	rows   [][]string
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) String() string {
	widths := make([]int, len(t.header))
	for i, h := range t.header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i, cell := range cells {
			text := cell
			if style != nil {
				text = style.Render(cell)
			}
			b.WriteString(text)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		b.WriteString("\n")
	}

	writeRow(t.header, &HeaderStyle)
	for _, row := range t.rows {
		writeRow(row, nil)
	}
	return b.String()
}

func RenderTitle(title string) string {
	return TitleStyle.Render(title) + "\n"
}

// RenderRemotes colours the registry summary, highlighting the default line.
func RenderRemotes(summary string) string {
	var b strings.Builder
	for i, line := range strings.Split(strings.TrimRight(summary, "\n"), "\n") {
		switch {
		case i == 0:
			b.WriteString(TitleStyle.Render(line))
		case strings.HasSuffix(line, " *"):
			b.WriteString(DefaultRemoteStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func RenderProjects(projects []remote.UserProject) string {
	if len(projects) == 0 {
		return MutedStyle.Render("No projects found.") + "\n"
	}

	t := &table{header: []string{"ID", "REMOTE", "WORKSPACE", "PROJECT", "TYPE"}}
	for _, p := range projects {
		t.add(p.ShortID(), p.Remote, p.Project.WorkspaceName, p.Project.Name, p.Project.Type)
	}
	return t.String()
}

func RenderProject(p remote.UserProject) string {
	var b strings.Builder
	b.WriteString(RenderTitle(p.Project.Name))
	fmt.Fprintf(&b, "ID:          %s\n", p.ShortID())
	fmt.Fprintf(&b, "Remote:      %s\n", p.Remote)
	fmt.Fprintf(&b, "Workspace:   %s\n", p.Project.WorkspaceName)
	fmt.Fprintf(&b, "Path:        %s\n", p.Project.Path)
	if p.Project.Type != "" {
		fmt.Fprintf(&b, "Type:        %s\n", p.Project.Type)
	}
	if p.Project.Visibility != "" {
		fmt.Fprintf(&b, "Visibility:  %s\n", p.Project.Visibility)
	}
	if p.Project.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Project.Description)
	}
	return b.String()
}

func RenderBuilds(builds []remote.UserBuilderStatus) string {
	if len(builds) == 0 {
		return MutedStyle.Render("No builds found.") + "\n"
	}

	t := &table{header: []string{"ID", "PROJECT", "STATE", "STARTED", "ENDED"}}
	for _, s := range builds {
		t.add(
			s.ShortID(),
			s.Project.ShortID(),
			GetBuildStateStyle(s.Status.State).Render(string(s.Status.State)),
			formatTime(s.Status.StartedAt),
			formatTime(s.Status.EndedAt),
		)
	}
	return t.String()
}

func RenderBuilder(s remote.UserBuilderStatus) string {
	var b strings.Builder
	b.WriteString(RenderTitle("Build " + s.ShortID()))
	fmt.Fprintf(&b, "Project:  %s (%s) on %s\n", s.Project.Project.Name, s.Project.ShortID(), s.Project.Remote)
	fmt.Fprintf(&b, "Task:     %d\n", s.Status.TaskID)
	fmt.Fprintf(&b, "State:    %s\n", GetBuildStateStyle(s.Status.State).Render(string(s.Status.State)))
	fmt.Fprintf(&b, "Created:  %s\n", formatTime(s.Status.CreatedAt))
	fmt.Fprintf(&b, "Started:  %s\n", formatTime(s.Status.StartedAt))
	fmt.Fprintf(&b, "Ended:    %s\n", formatTime(s.Status.EndedAt))
	return b.String()
}

func RenderRuns(runs []remote.UserRunnerStatus) string {
	if len(runs) == 0 {
		return MutedStyle.Render("No runs found.") + "\n"
	}

	t := &table{header: []string{"ID", "PROJECT", "STATE", "MEMORY", "STARTED", "STOPPED"}}
	for _, s := range runs {
		t.add(
			s.ShortID(),
			s.Project.ShortID(),
			GetRunStateStyle(s.Status.State).Render(string(s.Status.State)),
			fmt.Sprintf("%dMB", s.Status.MemorySize),
			formatTime(s.Status.StartedAt),
			formatTime(s.Status.StoppedAt),
		)
	}
	return t.String()
}

func RenderRunner(s remote.UserRunnerStatus) string {
	var b strings.Builder
	b.WriteString(RenderTitle("Run " + s.ShortID()))
	fmt.Fprintf(&b, "Project:  %s (%s) on %s\n", s.Project.Project.Name, s.Project.ShortID(), s.Project.Remote)
	fmt.Fprintf(&b, "Process:  %d\n", s.Status.ProcessID)
	fmt.Fprintf(&b, "State:    %s\n", GetRunStateStyle(s.Status.State).Render(string(s.Status.State)))
	fmt.Fprintf(&b, "Memory:   %dMB\n", s.Status.MemorySize)
	fmt.Fprintf(&b, "Created:  %s\n", formatTime(s.Status.CreatedAt))
	fmt.Fprintf(&b, "Started:  %s\n", formatTime(s.Status.StartedAt))
	fmt.Fprintf(&b, "Stopped:  %s\n", formatTime(s.Status.StoppedAt))
	return b.String()
}

func RenderError(err error) string {
	return ErrorStyle.Render(err.Error()) + "\n"
}

func RenderSuccess(message string) string {
	return SuccessStyle.Render(message) + "\n"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// RenderLogs formats the session log entries, coloured by level.
func RenderLogs(entries []logger.LogEntry) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render(fmt.Sprintf("Session Logs (%d entries)", len(entries))) + "\n")
	for _, entry := range entries {
		style := MutedStyle
		switch {
		case entry.Level == logger.LevelError:
			style = ErrorStyle
		case entry.Level == logger.LevelWarn:
			style = WarningStyle
		case strings.Contains(entry.Message, "[FILE_WRITE]"):
			style = InfoStyle
		}
		line := fmt.Sprintf("[%s] %-5s %s", entry.Timestamp.Format("15:04:05.000"), entry.Level, entry.Message)
		b.WriteString(style.Render(line) + "\n")
	}
	return b.String()
}
