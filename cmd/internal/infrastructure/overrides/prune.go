package overrides

import (
	"cmp"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

type backupFile struct {
	name    string
	modTime time.Time
}

// Prune applies the retention policies to the backups directory: first every
// backup older than RetentionDays goes, then the oldest ones beyond
// MaxBackups. It returns how many files were removed.
func (p *Persister) Prune() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pruneLocked()
}

func (p *Persister) pruneLocked() (int, error) {
	files, err := p.listBackups()
	if err != nil {
		return 0, err
	}

	var removed []string
	if p.opts.RetentionDays > 0 {
		cutoff := p.opts.Now().Add(-time.Duration(p.opts.RetentionDays) * 24 * time.Hour)
		kept := files[:0]
		for _, f := range files {
			if f.modTime.Before(cutoff) {
				if p.remove(f.name) {
					removed = append(removed, f.name)
				}
				continue
			}
			kept = append(kept, f)
		}
		files = kept
	}

	if len(files) > p.opts.MaxBackups {
		for _, f := range files[p.opts.MaxBackups:] {
			if p.remove(f.name) {
				removed = append(removed, f.name)
			}
		}
	}

	if len(removed) > 0 {
		log.Debugf("Overrides: pruned %d backup(s)", len(removed))
		p.deleteRemote(removed)
	}
	return len(removed), nil
}

// listBackups returns the JSON files of the backups directory, newest first.
func (p *Persister) listBackups() ([]backupFile, error) {
	entries, err := os.ReadDir(p.backupsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	files := make([]backupFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, backupFile{name: e.Name(), modTime: info.ModTime()})
	}

	slices.SortFunc(files, func(a, b backupFile) int {
		if c := b.modTime.Compare(a.modTime); c != 0 {
			return c
		}
		return cmp.Compare(b.name, a.name)
	})
	return files, nil
}

func (p *Persister) remove(name string) bool {
	if err := os.Remove(filepath.Join(p.backupsDir, name)); err != nil && !os.IsNotExist(err) {
		log.Warnf("Overrides: failed to remove backup %s: %v", name, err)
		return false
	}
	return true
}

func (p *Persister) deleteRemote(names []string) {
	if p.opts.Mirror == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for _, name := range names {
			if err := p.opts.Mirror.DeleteFile(name); err != nil {
				log.Warnf("Overrides: failed to delete mirrored backup %s: %v", name, err)
			}
		}
	}()
}
