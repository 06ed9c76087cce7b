package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/johanforsgren/codenvy-remotes/internal/ui"
)

var ErrLoginCancelled = errors.New("login cancelled")

const (
	focusUsername = iota
	focusPassword
	inputCount
)

// LoginFormModel asks for the username and password of one remote.
type LoginFormModel struct {
	remote        string
	usernameInput textinput.Model
	passwordInput textinput.Model
	inputFocus    int
	message       string
	submitted     bool
	cancelled     bool
}

func NewLoginForm(remote, username string) *LoginFormModel {
	usernameInput := textinput.New()
	usernameInput.Placeholder = "Username"
	usernameInput.CharLimit = 128
	usernameInput.SetValue(username)

	passwordInput := textinput.New()
	passwordInput.Placeholder = "Password"
	passwordInput.CharLimit = 256
	passwordInput.EchoMode = textinput.EchoPassword

	m := &LoginFormModel{
		remote:        remote,
		usernameInput: usernameInput,
		passwordInput: passwordInput,
	}
	if username != "" {
		m.inputFocus = focusPassword
	}
	m.focusCurrent()
	return m
}

func (m *LoginFormModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *LoginFormModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.cancelled = true
			return m, tea.Quit
		case "tab", "down":
			m.nextInput()
			return m, nil
		case "shift+tab", "up":
			m.prevInput()
			return m, nil
		case "enter":
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	switch m.inputFocus {
	case focusUsername:
		m.usernameInput, cmd = m.usernameInput.Update(msg)
	case focusPassword:
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

// submit quits once both fields are filled, otherwise moves to the missing one.
func (m *LoginFormModel) submit() tea.Cmd {
	switch {
	case strings.TrimSpace(m.usernameInput.Value()) == "":
		m.message = "Username is required"
		m.setFocus(focusUsername)
		return nil
	case m.passwordInput.Value() == "":
		m.message = "Password is required"
		m.setFocus(focusPassword)
		return nil
	}
	m.message = ""
	m.submitted = true
	return tea.Quit
}

func (m *LoginFormModel) nextInput() {
	m.setFocus((m.inputFocus + 1) % inputCount)
}

func (m *LoginFormModel) prevInput() {
	m.setFocus((m.inputFocus - 1 + inputCount) % inputCount)
}

func (m *LoginFormModel) setFocus(focus int) {
	m.usernameInput.Blur()
	m.passwordInput.Blur()
	m.inputFocus = focus
	m.focusCurrent()
}

func (m *LoginFormModel) focusCurrent() {
	switch m.inputFocus {
	case focusUsername:
		m.usernameInput.Focus()
	case focusPassword:
		m.passwordInput.Focus()
	}
}

func (m *LoginFormModel) Submitted() bool { return m.submitted }
func (m *LoginFormModel) Cancelled() bool { return m.cancelled }

func (m *LoginFormModel) Username() string {
	return strings.TrimSpace(m.usernameInput.Value())
}

func (m *LoginFormModel) Password() string {
	return m.passwordInput.Value()
}

func (m *LoginFormModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}

	var b strings.Builder
	title := "Login"
	if m.remote != "" {
		title = fmt.Sprintf("Login to %s", m.remote)
	}
	b.WriteString(ui.TitleStyle.Render(title) + "\n\n")
	b.WriteString("Username:\n")
	b.WriteString(m.usernameInput.View() + "\n\n")
	b.WriteString("Password:\n")
	b.WriteString(m.passwordInput.View() + "\n")
	if m.message != "" {
		b.WriteString("\n" + ui.ErrorStyle.Render(m.message) + "\n")
	}
	b.WriteString(ui.HelpStyle.Render("Tab: Next | Shift+Tab: Previous | Enter: Login | Esc: Cancel"))
	b.WriteString("\n")
	return b.String()
}

// RunLoginForm shows the form on out, reading keys from in, and returns the
// entered username and password.
func RunLoginForm(ctx context.Context, in io.Reader, out io.Writer, remote, username string) (string, string, error) {
	form := NewLoginForm(remote, username)
	program := tea.NewProgram(form, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))

	if _, err := program.Run(); err != nil {
		return "", "", fmt.Errorf("login form: %w", err)
	}
	if !form.Submitted() {
		return "", "", ErrLoginCancelled
	}
	return form.Username(), form.Password(), nil
}
