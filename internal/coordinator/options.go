package coordinator

import (
	"time"

	"github.com/Iron-Ham/clawteam/internal/logging"
)

// Option configures a Coordinator.
type Option func(*coordinatorConfig)

type coordinatorConfig struct {
	logger       *logging.Logger
	now          func() time.Time
	pollInterval time.Duration
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *logging.Logger) Option {
	return func(c *coordinatorConfig) {
		c.logger = l
	}
}

// WithClock replaces time.Now for every timestamp the components write.
func WithClock(now func() time.Time) Option {
	return func(c *coordinatorConfig) {
		c.now = now
	}
}

// WithPollInterval sets how often WatchMessages re-reads the log.
func WithPollInterval(d time.Duration) Option {
	return func(c *coordinatorConfig) {
		c.pollInterval = d
	}
}
