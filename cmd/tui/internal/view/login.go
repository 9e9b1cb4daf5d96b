package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/wastewise/wastewise/internal/user"
)

type LoginModel struct {
	userService *user.Service

	form    *huh.Form
	spinner spinner.Model
	busy    bool
	err     error
}

func NewLoginModel(userSvc *user.Service) LoginModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return LoginModel{
		userService: userSvc,
		form:        newLoginForm(),
		spinner:     s,
	}
}

// Field values are read back by key once the form completes.
func newLoginForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return fmt.Errorf("enter the email you registered with")
					}
					return nil
				}),

			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Title() string     { return "Sign in" }
func (m LoginModel) ShortHelp() string { return "Enter: next | Ctrl+C: quit" }

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.form = newLoginForm()

			return m, m.form.Init()
		}

		return m, func() tea.Msg { return msg.loggedIn }

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}

		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true
	m.err = nil

	return m, tea.Batch(m.spinner.Tick, m.loginCmd(m.form.GetString("email"), m.form.GetString("password")))
}

func (m LoginModel) View() string {
	if m.busy {
		return padded.Render(fmt.Sprintf("%s Signing in...", m.spinner.View()))
	}

	return padded.Render(
		"WasteWise Trading Desk\n\n" +
			statusLine("", m.err) +
			panel.Render(m.form.View()),
	)
}

type loginResultMsg struct {
	loggedIn LoggedInMsg
	err      error
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		u, err := m.userService.Authenticate(ctx, email, password)
		if err != nil {
			if !errors.Is(err, user.ErrInvalidCredentials) {
				err = fmt.Errorf("sign in failed: %w", err)
			}

			return loginResultMsg{err: err}
		}

		return loginResultMsg{loggedIn: LoggedInMsg{Principal: u.Principal(), CompanyName: u.CompanyName}}
	}
}
