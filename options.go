package onyx

import (
	"time"

	"go.uber.org/zap"
)

// settings are the collaborators shared by Ledger and Portfolio.
type settings struct {
	now    func() time.Time
	logger *zap.Logger
}

func newSettings(opts []Option) settings {
	s := settings{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a Ledger or a Portfolio.
type Option func(*settings)

// WithClock sets the clock used to stamp trades, journal entries and
// snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger. The default logger discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}
