package jobs

import (
	"context"
	"time"

	"github.com/labstack/gommon/log"
)

const PruneInterval = 1 * time.Hour

type BackupPruner interface {
	Prune() (int, error)
}

// BackupPrunerJob applies the backup retention rules between writes, so age
// limits hold even when nobody edits the directory.
type BackupPrunerJob struct {
	pruner   BackupPruner
	interval time.Duration
}

func NewBackupPruner(pruner BackupPruner) *BackupPrunerJob {
	return &BackupPrunerJob{pruner: pruner, interval: PruneInterval}
}

func (b *BackupPrunerJob) Start(ctx context.Context) {
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	log.Info("Backup pruner cron started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping backup pruner...")
			return
		case <-ticker.C:
			b.run()
		}
	}
}

func (b *BackupPrunerJob) run() {
	removed, err := b.pruner.Prune()
	if err != nil {
		log.Errorf("Pruner: failed to prune override backups: %v", err)
		return
	}
	if removed > 0 {
		log.Infof("Pruner: removed %d override backup(s)", removed)
	}
}
