package mailbox

import (
	"context"
	"time"
)

// maxWatchErrors is the number of consecutive read failures after which
// Watch logs at error level.
const maxWatchErrors = 5

// Watch polls the team's log and calls handler, in append order, for every
// message matching f that was appended after Watch first read the log.
// f.Limit is ignored. Watch blocks until ctx is done and returns ctx.Err().
func (l *Log) Watch(ctx context.Context, team string, f Filter, handler func(Message)) error {
	f.Limit = 0

	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	// Messages present before the first successful read are never delivered.
	seen, err := l.snapshot(ctx, team, f, ticker.C)
	if err != nil {
		return err
	}

	consecutiveErrors := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		msgs, err := l.List(ctx, team, f)
		if err != nil {
			consecutiveErrors++
			if consecutiveErrors >= maxWatchErrors {
				l.logger.Error("message watch keeps failing", "team", team, "error", err.Error())
				consecutiveErrors = 0
			}
			continue
		}
		consecutiveErrors = 0

		for _, m := range msgs {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			handler(m)
		}
	}
}

// snapshot returns the ids already in the log, retrying on every tick until
// a read succeeds or ctx is done.
func (l *Log) snapshot(ctx context.Context, team string, f Filter, tick <-chan time.Time) (map[string]bool, error) {
	failures := 0
	for {
		existing, err := l.List(ctx, team, f)
		if err == nil {
			seen := make(map[string]bool, len(existing))
			for _, m := range existing {
				seen[m.ID] = true
			}
			return seen, nil
		}

		failures++
		if failures >= maxWatchErrors {
			l.logger.Error("message watch cannot read the log", "team", team, "error", err.Error())
			failures = 0
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-tick:
		}
	}
}
