package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/johanforsgren/codenvy-remotes/internal/domain"
)

var (
	primaryColor   = lipgloss.Color("#7C3AED")
	secondaryColor = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	warningColor   = lipgloss.Color("#F59E0B")
	infoColor      = lipgloss.Color("#3B82F6")
	mutedColor     = lipgloss.Color("#6B7280")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(secondaryColor).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(infoColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	HelpStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true).
			MarginTop(1)

	DefaultRemoteStyle = lipgloss.NewStyle().
				Foreground(secondaryColor).
				Bold(true)
)

func GetBuildStateStyle(state domain.BuildState) lipgloss.Style {
	switch state {
	case domain.BuildStateSuccessful:
		return SuccessStyle
	case domain.BuildStateFailed:
		return ErrorStyle
	case domain.BuildStateInProgress:
		return InfoStyle
	case domain.BuildStateInQueue:
		return WarningStyle
	default:
		return MutedStyle
	}
}

func GetRunStateStyle(state domain.RunState) lipgloss.Style {
	switch state {
	case domain.RunStateRunning:
		return SuccessStyle
	case domain.RunStateFailed:
		return ErrorStyle
	case domain.RunStateNew:
		return WarningStyle
	default:
		return MutedStyle
	}
}
