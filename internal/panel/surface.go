package panel

import "time"

// Placeholder text rendered into the list area.
const (
	PlaceholderEmpty  = "No notifications"
	PlaceholderFailed = "Failed to load"
)

// Row is a single rendered notification entry. Title is the raw, untrusted
// text; each Surface is responsible for rendering it safely as plain text.
type Row struct {
	ID        string
	Title     string
	Link      string
	CreatedAt time.Time
	IsRead    bool
	TimeAgo   string
}

// Surface abstracts the rendering target of the panel: a badge element and a
// list container. The panel serializes all mutations; implementations only
// need to be safe against concurrent reads of their own state.
type Surface interface {
	// BadgePresent reports whether the badge element exists. When it does
	// not (no signed-in user), the panel stays permanently inert.
	BadgePresent() bool

	// SetBadge makes the badge visible with the given text.
	SetBadge(text string)

	// HideBadge hides the badge entirely.
	HideBadge()

	// RenderRows replaces the list contents with the given rows.
	RenderRows(rows []Row)

	// RenderPlaceholder replaces the list contents with a literal message.
	RenderPlaceholder(text string)
}
