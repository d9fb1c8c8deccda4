package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mhartley/notifeed/internal/panel"
)

// Surface forwards panel updates into a running Bubble Tea program. The
// program is bound after construction because the model itself needs the
// panel; updates arriving before Bind are dropped. The terminal tray is only
// started for a configured user, so the badge slot is always present.
type Surface struct {
	program atomic.Pointer[tea.Program]
}

// NewSurface returns an unbound surface. Call Bind before starting the panel.
func NewSurface() *Surface {
	return &Surface{}
}

// Bind attaches the running program that receives rendering updates.
func (s *Surface) Bind(program *tea.Program) {
	s.program.Store(program)
}

func (s *Surface) BadgePresent() bool {
	return true
}

func (s *Surface) SetBadge(text string) {
	s.send(badgeMsg{visible: true, text: text})
}

func (s *Surface) HideBadge() {
	s.send(badgeMsg{visible: false})
}

func (s *Surface) RenderRows(rows []panel.Row) {
	s.send(rowsMsg{rows: rows})
}

func (s *Surface) RenderPlaceholder(text string) {
	s.send(placeholderMsg{text: text})
}

func (s *Surface) send(msg tea.Msg) {
	if program := s.program.Load(); program != nil {
		program.Send(msg)
	}
}
