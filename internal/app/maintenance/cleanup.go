package maintenance

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mhartley/notifeed/internal/services"
	"github.com/mhartley/notifeed/pkg/logger"
	"github.com/mhartley/notifeed/pkg/metrics"
)

const (
	defaultRetentionDays = 30
	defaultSweepSpec     = "@daily"
)

// Sweeper periodically removes read notifications that have aged past the
// retention window so the feed table stays bounded.
type Sweeper struct {
	notifications *services.NotificationService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger
	retention     int
	schedule      string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for the retention cutoff.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithRetentionDays adjusts how long read notifications are retained.
func WithRetentionDays(days int) Option {
	return func(s *Sweeper) {
		if days > 0 {
			s.retention = days
		}
	}
}

// WithSchedule overrides the cron specification for the sweep.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper around the notification service.
func NewSweeper(notifications *services.NotificationService, opts ...Option) (*Sweeper, error) {
	if notifications == nil {
		return nil, errors.New("sweeper: notification service is required")
	}

	s := &Sweeper{
		notifications: notifications,
		cron:          cron.New(),
		now:           time.Now,
		log:           logger.WithModule("maintenance"),
		retention:     defaultRetentionDays,
		schedule:      defaultSweepSpec,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Start registers the sweep job and starts the scheduler.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("retention sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// RunOnce executes the retention sweep immediately. Used by the scheduler,
// by tests, and during graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	cutoff := s.now().UTC().AddDate(0, 0, -s.retention)
	removed, err := s.notifications.PurgeRead(ctx, cutoff)
	if err != nil {
		errs = multierr.Append(errs, err)
	} else if removed > 0 {
		metrics.NotificationsPurged.Add(float64(removed))
		s.log.Info("purged read notifications",
			zap.Int64("removed", removed),
			zap.Time("cutoff", cutoff),
		)
	}

	return errs
}
