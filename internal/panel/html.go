package panel

import (
	"html"
	"strings"
	"sync"
)

// HTMLSurface renders the badge and dropdown list as HTML fragments, matching
// the markup the panel was originally built around. Notification titles are
// untrusted input and are escaped as plain text before insertion.
type HTMLSurface struct {
	mu           sync.RWMutex
	badgeVisible bool
	badgeText    string
	listHTML     string
}

// NewHTMLSurface constructs an empty HTML surface.
func NewHTMLSurface() *HTMLSurface {
	return &HTMLSurface{}
}

// BadgePresent always reports true: the fragment renderer owns its badge.
func (s *HTMLSurface) BadgePresent() bool { return true }

// SetBadge makes the badge visible with the given text.
func (s *HTMLSurface) SetBadge(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badgeVisible = true
	s.badgeText = text
}

// HideBadge hides the badge entirely.
func (s *HTMLSurface) HideBadge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.badgeVisible = false
	s.badgeText = ""
}

// RenderRows replaces the list with one anchor per notification.
func (s *HTMLSurface) RenderRows(rows []Row) {
	var b strings.Builder
	for _, row := range rows {
		class := "notification-item"
		if !row.IsRead {
			class += " notification-unread"
		}

		b.WriteString(`<a href="`)
		b.WriteString(html.EscapeString(row.Link))
		b.WriteString(`" class="`)
		b.WriteString(class)
		b.WriteString(`"><span class="notification-title">`)
		b.WriteString(html.EscapeString(row.Title))
		b.WriteString(`</span><span class="notification-time">`)
		b.WriteString(html.EscapeString(row.TimeAgo))
		b.WriteString(`</span></a>`)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.listHTML = b.String()
}

// RenderPlaceholder replaces the list with a literal message.
func (s *HTMLSurface) RenderPlaceholder(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listHTML = `<div class="notification-empty">` + html.EscapeString(text) + `</div>`
}

// BadgeHTML returns the current badge fragment, or an empty string when hidden.
func (s *HTMLSurface) BadgeHTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.badgeVisible {
		return ""
	}
	return `<span class="notification-badge">` + html.EscapeString(s.badgeText) + `</span>`
}

// ListHTML returns the current list fragment.
func (s *HTMLSurface) ListHTML() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listHTML
}

// BadgeVisible reports whether the badge is currently shown.
func (s *HTMLSurface) BadgeVisible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badgeVisible
}

// BadgeText returns the raw badge label.
func (s *HTMLSurface) BadgeText() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badgeText
}
