package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mhartley/notifeed/internal/panel"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	badgeStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("160")).Padding(0, 1).Bold(true)
	unreadRowStyle   = lipgloss.NewStyle().Background(lipgloss.Color("236")).Bold(true)
	readRowStyle     = lipgloss.NewStyle().Faint(true)
	timeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	placeholderStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	helpStyle        = lipgloss.NewStyle().Faint(true)
)

type badgeMsg struct {
	visible bool
	text    string
}

type rowsMsg struct {
	rows []panel.Row
}

type placeholderMsg struct {
	text string
}

// Model is the Bubble Tea model for the terminal notification tray.
type Model struct {
	panel   *panel.Panel
	ctx     context.Context
	spinner spinner.Model

	loading     bool
	badgeShown  bool
	badgeText   string
	rows        []panel.Row
	placeholder string
}

// NewModel constructs the tray model around a running panel.
func NewModel(ctx context.Context, p *panel.Panel) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		panel:   p,
		ctx:     ctx,
		spinner: sp,
		loading: true,
	}
}

// Init starts the spinner shown until the first snapshot arrives.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles surface messages and key bindings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case badgeMsg:
		m.loading = false
		m.badgeShown = msg.visible
		m.badgeText = msg.text
		return m, nil

	case rowsMsg:
		m.loading = false
		m.rows = msg.rows
		m.placeholder = ""
		return m, nil

	case placeholderMsg:
		m.loading = false
		m.rows = nil
		m.placeholder = msg.text
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.refreshCmd()
		case "m":
			return m, m.markAllReadCmd()
		}
	}

	return m, nil
}

// View renders the badge header, the notification list, and key help.
func (m Model) View() string {
	var b strings.Builder

	header := titleStyle.Render("Notifications")
	if m.badgeShown {
		header += " " + badgeStyle.Render(m.badgeText)
	}
	b.WriteString(header)
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " loading…\n")
	case m.placeholder != "":
		b.WriteString(placeholderStyle.Render(m.placeholder))
		b.WriteString("\n")
	default:
		for _, row := range m.rows {
			style := readRowStyle
			if !row.IsRead {
				style = unreadRowStyle
			}
			line := style.Render(sanitizeTitle(row.Title)) + " " + timeStyle.Render(row.TimeAgo)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r refresh · m mark all read · q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) refreshCmd() tea.Cmd {
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		p.Refresh(ctx)
		return nil
	}
}

func (m Model) markAllReadCmd() tea.Cmd {
	p, ctx := m.panel, m.ctx
	return func() tea.Msg {
		p.MarkAllRead(ctx)
		return nil
	}
}

// sanitizeTitle drops control characters so untrusted notification titles
// cannot smuggle terminal escape sequences into the rendered view.
func sanitizeTitle(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, s)
}
