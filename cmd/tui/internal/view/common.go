package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wastewise/wastewise/internal/auth"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// CommonModel is embedded by all views that act on behalf of the signed-in
// company.
type CommonModel struct {
	Principal auth.Principal
}

type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// LoggedInMsg is sent once the login form has verified the credentials.
type LoggedInMsg struct {
	Principal   auth.Principal
	CompanyName string
}

var (
	faint   = lipgloss.NewStyle().Faint(true)
	padded  = lipgloss.NewStyle().Padding(1)
	errText = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	okText  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	panel   = lipgloss.NewStyle().
		Padding(1, 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(52)
)

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

// statusLine renders the result of the last action above a screen.
func statusLine(msg string, err error) string {
	switch {
	case err != nil:
		return errText.Render("Error: "+err.Error()) + "\n"
	case msg != "":
		return okText.Render(msg) + "\n"
	}

	return ""
}
