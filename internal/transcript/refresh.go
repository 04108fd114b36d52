// internal/transcript/refresh.go
package transcript

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// MidnightRefresher fires a callback at local midnight. "Today" and
// "Yesterday" labels are computed against the wall clock, so open
// transcript views go stale when the date rolls over; the callback gives
// them a chance to re-render.
type MidnightRefresher struct {
	cron    *cron.Cron
	handler func()
}

// NewMidnightRefresher creates a refresher that invokes handler each day
// at 00:00 local time.
func NewMidnightRefresher(handler func()) *MidnightRefresher {
	return &MidnightRefresher{
		cron:    cron.New(),
		handler: handler,
	}
}

// Start registers the midnight entry and starts the ticker.
func (r *MidnightRefresher) Start() error {
	_, err := r.cron.AddFunc("0 0 * * *", func() {
		slog.Debug("date rolled over, refreshing transcript labels")
		r.handler()
	})
	if err != nil {
		return fmt.Errorf("schedule label refresh: %w", err)
	}
	r.cron.Start()
	return nil
}

// Stop stops the ticker.
func (r *MidnightRefresher) Stop() {
	r.cron.Stop()
}
