package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

type AttemptTracker interface {
	Sweep() int
	Window() time.Duration
}

// AttemptSweeper forgets unlock sources whose window has elapsed, so the
// limiter does not grow with every address that ever knocked.
type AttemptSweeper struct {
	tracker AttemptTracker
}

func NewAttemptSweeper(tracker AttemptTracker) *AttemptSweeper {
	return &AttemptSweeper{tracker: tracker}
}

func (a *AttemptSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(2 * a.tracker.Window())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.tracker.Sweep(); n > 0 {
				log.Debugf("Sweeper: forgot %d unlock source(s)", n)
			}
		}
	}
}
