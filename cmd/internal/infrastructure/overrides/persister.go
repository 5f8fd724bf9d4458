// Package overrides keeps the override file on disk: one JSON array holding
// the full override set, rewritten on every mutation, plus a timestamped
// backup of each write.
package overrides

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"setores/cmd/internal/domain/entity"
	"setores/cmd/internal/utils"
)

const (
	FileName       = "setores_overrides.json"
	BackupsDirName = "setores_overrides.backups"
	backupPrefix   = "setores_overrides-"
)

// Mirror copies backups to remote storage. Failures are logged only.
type Mirror interface {
	UploadFile(data []byte, filename string) (string, error)
	DeleteFile(filename string) error
}

type Options struct {
	// MaxBackups is the number of backups kept after pruning, at least 1.
	MaxBackups int
	// RetentionDays removes backups older than this many days; 0 disables it.
	RetentionDays int
	Mirror        Mirror
	Now           func() time.Time
	// OnPersist is told the outcome of every Persist call.
	OnPersist func(err error)
}

type Status struct {
	OverridesPath   string `json:"overridesPath"`
	OverridesExists bool   `json:"overridesExists"`
	Overrides       int    `json:"overrides"`
	BackupsDir      string `json:"backupsDir"`
	Backups         int    `json:"backups"`
	MaxBackups      int    `json:"maxBackups"`
	RetentionDays   int    `json:"retentionDays"`
	LastPersistAt   string `json:"lastPersistAt,omitempty"`
	LastError       string `json:"lastError,omitempty"`
	Mirror          bool   `json:"mirror"`
}

type Persister struct {
	mu         sync.Mutex
	wg         sync.WaitGroup
	path       string
	backupsDir string
	opts       Options

	lastPersist time.Time
	lastErr     error
	lastCount   int
}

func NewPersister(assetsDir string, opts Options) *Persister {
	if opts.MaxBackups < 1 {
		opts.MaxBackups = 1
	}
	if opts.RetentionDays < 0 {
		opts.RetentionDays = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	p := &Persister{
		path:       filepath.Join(assetsDir, FileName),
		backupsDir: filepath.Join(assetsDir, BackupsDirName),
		opts:       opts,
	}
	if err := os.MkdirAll(p.backupsDir, 0o755); err != nil {
		log.Warnf("Overrides: unable to create %s: %v", p.backupsDir, err)
	}
	return p
}

func (p *Persister) Path() string {
	return p.path
}

func (p *Persister) BackupsDir() string {
	return p.backupsDir
}

// Load reads the override file. A missing file is an empty set.
func (p *Persister) Load() ([]entity.SetorPatch, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var overrides []entity.SetorPatch
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName, err)
	}

	p.mu.Lock()
	p.lastCount = len(overrides)
	p.mu.Unlock()
	return overrides, nil
}

// Persist writes the whole override set and a backup copy, then prunes the
// backups. Errors are logged and recorded in Status, never returned.
func (p *Persister) Persist(overrides []entity.SetorPatch) {
	if overrides == nil {
		overrides = []entity.SetorPatch{}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.write(overrides)
	if err != nil {
		log.Warnf("Overrides: failed to write overrides/backup: %v", err)
	} else {
		p.lastPersist = p.opts.Now()
		p.lastCount = len(overrides)
	}
	p.lastErr = err

	if p.opts.OnPersist != nil {
		p.opts.OnPersist(err)
	}
}

func (p *Persister) write(overrides []entity.SetorPatch) error {
	payload, err := json.MarshalIndent(overrides, "", "  ")
	if err != nil {
		return err
	}

	if err := writeAtomic(p.path, payload); err != nil {
		return err
	}

	if err := os.MkdirAll(p.backupsDir, 0o755); err != nil {
		return err
	}
	name := p.backupName()
	if err := os.WriteFile(filepath.Join(p.backupsDir, name), payload, 0o644); err != nil {
		return err
	}
	p.upload(name, payload)

	if _, err := p.pruneLocked(); err != nil {
		log.Warnf("Overrides: failed to prune backups: %v", err)
	}
	return nil
}

// backupName is unique even when two writes share a millisecond.
func (p *Persister) backupName() string {
	base := backupPrefix + utils.FileTimestamp(p.opts.Now())
	name := base + ".json"
	for i := 1; ; i++ {
		if _, err := os.Stat(filepath.Join(p.backupsDir, name)); os.IsNotExist(err) {
			return name
		}
		name = fmt.Sprintf("%s-%d.json", base, i)
	}
}

func (p *Persister) upload(name string, payload []byte) {
	if p.opts.Mirror == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.opts.Mirror.UploadFile(payload, name); err != nil {
			log.Warnf("Overrides: failed to mirror backup %s: %v", name, err)
		}
	}()
}

func (p *Persister) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, statErr := os.Stat(p.path)
	backups, _ := p.listBackups()

	st := Status{
		OverridesPath:   p.path,
		OverridesExists: statErr == nil,
		Overrides:       p.lastCount,
		BackupsDir:      p.backupsDir,
		Backups:         len(backups),
		MaxBackups:      p.opts.MaxBackups,
		RetentionDays:   p.opts.RetentionDays,
		Mirror:          p.opts.Mirror != nil,
	}
	if !p.lastPersist.IsZero() {
		st.LastPersistAt = utils.ISOTimestamp(p.lastPersist)
	}
	if p.lastErr != nil {
		st.LastError = p.lastErr.Error()
	}
	return st
}

// Wait blocks until every pending mirror call has finished.
func (p *Persister) Wait() {
	p.wg.Wait()
}

// writeAtomic replaces path through a temp file in the same directory so a
// crash mid-write never leaves a truncated override file behind.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
