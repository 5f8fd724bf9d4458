package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const CompactInterval = 24 * time.Hour

type ChangeLogRepository interface {
	DeleteBefore(before int64) (int64, error)
}

type ChangeLogCompactor struct {
	repo      ChangeLogRepository
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewChangeLogCompactor drops change log entries older than retentionDays.
// A retention of 0 keeps everything.
func NewChangeLogCompactor(repo ChangeLogRepository, retentionDays int) *ChangeLogCompactor {
	return &ChangeLogCompactor{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		interval:  CompactInterval,
		now:       time.Now,
	}
}

func (c *ChangeLogCompactor) Start(ctx context.Context) {
	if c.retention <= 0 {
		log.Info("Change log compaction disabled")
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	log.Info("Change log compactor cron started")
	c.run()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping change log compactor...")
			return
		case <-ticker.C:
			c.run()
		}
	}
}

func (c *ChangeLogCompactor) run() {
	cutoff := c.now().Add(-c.retention).UnixMilli()

	n, err := c.repo.DeleteBefore(cutoff)
	if err != nil {
		log.Errorf("Compactor: failed to delete old change log entries: %v", err)
		return
	}
	log.Debugf("Compactor: removed %d change log entries older than %d", n, cutoff)
}
