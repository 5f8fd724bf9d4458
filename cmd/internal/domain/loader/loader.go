package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/labstack/gommon/log"

	"setores/cmd/internal/domain/directory"
	"setores/cmd/internal/domain/entity"
)

var ErrNoDataset = errors.New("no dataset file found")

// OverrideSource returns the persisted override set. A missing file is an
// empty set, not an error.
type OverrideSource interface {
	Load() ([]entity.SetorPatch, error)
	Path() string
}

type Result struct {
	Dataset   string
	Setores   int
	Overrides int
}

type Loader struct {
	assetsDir string
	dataFile  string
	overrides OverrideSource
}

func New(assetsDir, dataFile string, overrides OverrideSource) *Loader {
	return &Loader{
		assetsDir: assetsDir,
		dataFile:  strings.TrimSpace(dataFile),
		overrides: overrides,
	}
}

// Load fills store with the base dataset and then layers the overrides on
// top. Nothing here fails the process: a missing or unreadable file is
// logged and the store keeps whatever it could load.
func (l *Loader) Load(store *directory.Store) Result {
	var res Result

	path, err := l.ResolveDataset()
	if err != nil {
		log.Warnf("Loader: %v, starting with an empty directory", err)
	} else {
		res.Dataset = path
		items, err := ReadDataset(path)
		if err != nil {
			log.Errorf("Loader: failed to read dataset %s: %v", path, err)
		} else {
			res.Setores = store.ImportRaw(items, directory.ModeReplace)
			log.Infof("Loaded %d setores from %s", res.Setores, filepath.Base(path))
		}
	}

	if l.overrides == nil {
		return res
	}

	overrides, err := l.overrides.Load()
	if err != nil {
		log.Warnf("Loader: failed to load overrides: %v", err)
		return res
	}
	if len(overrides) > 0 {
		store.ApplyOverrides(overrides)
		res.Overrides = len(overrides)
		log.Infof("Applied %d override(s)", res.Overrides)
	}
	return res
}

// ResolveDataset returns the configured data file or, when none is set, the
// newest JSON file of the assets directory. Files named like
// "dados ... normalizado" win over any other JSON file. The overrides file
// is never picked.
func (l *Loader) ResolveDataset() (string, error) {
	if l.dataFile != "" {
		if !strings.ContainsAny(l.dataFile, `/\`) {
			return filepath.Join(l.assetsDir, l.dataFile), nil
		}
		return l.dataFile, nil
	}

	entries, err := os.ReadDir(l.assetsDir)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDataset, err)
	}

	var excluded string
	if l.overrides != nil {
		excluded = filepath.Base(l.overrides.Path())
	}

	var all, preferred []candidate
	for _, e := range entries {
		name := e.Name()
		lower := strings.ToLower(name)
		if e.IsDir() || !strings.HasSuffix(lower, ".json") || name == excluded {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		c := candidate{name: name, modTime: info.ModTime().UnixNano()}
		all = append(all, c)
		if strings.Contains(lower, "dados") && strings.Contains(lower, "normalizado") {
			preferred = append(preferred, c)
		}
	}

	chosen, ok := newest(preferred)
	if !ok {
		chosen, ok = newest(all)
	}
	if !ok {
		return "", fmt.Errorf("%w in %s", ErrNoDataset, l.assetsDir)
	}
	return filepath.Join(l.assetsDir, chosen.name), nil
}

type candidate struct {
	name    string
	modTime int64
}

func newest(list []candidate) (candidate, bool) {
	if len(list) == 0 {
		return candidate{}, false
	}
	return slices.MaxFunc(list, func(a, b candidate) int {
		if a.modTime != b.modTime {
			if a.modTime < b.modTime {
				return -1
			}
			return 1
		}
		return strings.Compare(a.name, b.name)
	}), true
}

// ReadDataset parses a base dataset file: a JSON array of raw entries.
func ReadDataset(path string) ([]entity.RawSetor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var items []entity.RawSetor
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return items, nil
}
