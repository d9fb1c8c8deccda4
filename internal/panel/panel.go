package panel

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mhartley/notifeed/pkg/logger"
)

const (
	defaultPollInterval = 60 * time.Second
	defaultVisibleRows  = 5
	maxBadgeCount       = 9
)

// Panel keeps an eventually-consistent view of the current user's unread
// notifications on a Surface. It polls the feed endpoint on an interval,
// re-rendering the badge and list wholesale from each snapshot, and supports
// an optimistic mark-all-read command.
//
// Every outgoing fetch carries a sequence number; a response that arrives
// after a newer one has already been applied is discarded, so overlapping
// refreshes cannot roll the rendered state backwards.
type Panel struct {
	client   *Client
	surface  Surface
	interval time.Duration
	visible  int
	now      func() time.Time
	log      *zap.Logger

	mu         sync.Mutex
	nextSeq    uint64
	appliedSeq uint64
}

// PanelOption customises the Panel.
type PanelOption func(*Panel)

// WithInterval overrides the polling interval.
func WithInterval(d time.Duration) PanelOption {
	return func(p *Panel) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithVisibleRows overrides how many notifications the list renders.
func WithVisibleRows(n int) PanelOption {
	return func(p *Panel) {
		if n > 0 {
			p.visible = n
		}
	}
}

// WithClock overrides the clock used for relative time labels, for tests.
func WithClock(now func() time.Time) PanelOption {
	return func(p *Panel) {
		if now != nil {
			p.now = now
		}
	}
}

// New constructs a Panel over the given client and surface.
func New(client *Client, surface Surface, opts ...PanelOption) *Panel {
	p := &Panel{
		client:   client,
		surface:  surface,
		interval: defaultPollInterval,
		visible:  defaultVisibleRows,
		now:      time.Now,
		log:      logger.WithModule("panel"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run drives the panel for the lifetime of ctx: an immediate refresh, then
// one refresh per interval. If the surface has no badge element the panel is
// permanently inert and Run returns without issuing a single request.
func (p *Panel) Run(ctx context.Context) error {
	if !p.surface.BadgePresent() {
		p.log.Debug("badge absent; panel inert")
		return nil
	}

	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh fetches a feed snapshot and re-renders the surface. Failures leave
// the badge at its last-known value and replace the list with a placeholder;
// they are never surfaced as anything louder than a log line.
func (p *Panel) Refresh(ctx context.Context) {
	seq := p.claimSeq()

	feed, err := p.client.Fetch(ctx)
	if err != nil {
		p.applyError(seq, err)
		return
	}

	p.apply(seq, feed)
}

// MarkAllRead hides the badge immediately, then asks the server to mark
// everything read and reconciles with a fresh fetch. A failed POST is logged
// and otherwise ignored; the next scheduled refresh restores true state.
func (p *Panel) MarkAllRead(ctx context.Context) {
	p.mu.Lock()
	p.surface.HideBadge()
	p.mu.Unlock()

	if err := p.client.MarkAllRead(ctx); err != nil {
		p.log.Warn("mark all read failed", zap.Error(err))
		return
	}

	p.Refresh(ctx)
}

// BadgeText maps an unread count to its badge label: the exact number up to
// 9, then the literal "9+".
func BadgeText(unread int) string {
	if unread > maxBadgeCount {
		return "9+"
	}
	return strconv.Itoa(unread)
}

func (p *Panel) claimSeq() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextSeq++
	return p.nextSeq
}

// apply renders a successful snapshot unless a newer response already won.
func (p *Panel) apply(seq uint64, feed *Feed) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.appliedSeq {
		p.log.Debug("discarding stale feed response", zap.Uint64("seq", seq), zap.Uint64("applied", p.appliedSeq))
		return false
	}
	p.appliedSeq = seq

	if feed.UnreadCount > 0 {
		p.surface.SetBadge(BadgeText(feed.UnreadCount))
	} else {
		p.surface.HideBadge()
	}

	if len(feed.Notifications) == 0 {
		p.surface.RenderPlaceholder(PlaceholderEmpty)
		return true
	}

	now := p.now()
	limit := p.visible
	if limit > len(feed.Notifications) {
		limit = len(feed.Notifications)
	}

	rows := make([]Row, 0, limit)
	for _, n := range feed.Notifications[:limit] {
		rows = append(rows, Row{
			ID:        n.ID,
			Title:     n.Title,
			Link:      n.Link,
			CreatedAt: n.CreatedAt,
			IsRead:    n.IsRead,
			TimeAgo:   TimeAgo(now, n.CreatedAt),
		})
	}
	p.surface.RenderRows(rows)
	return true
}

// applyError renders the failure placeholder, keeping the badge untouched.
// Failures participate in sequencing too: an error from a superseded fetch
// must not clobber a newer snapshot.
func (p *Panel) applyError(seq uint64, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if seq <= p.appliedSeq {
		return
	}
	p.appliedSeq = seq

	p.log.Warn("feed refresh failed", zap.Error(err))
	p.surface.RenderPlaceholder(PlaceholderFailed)
}
