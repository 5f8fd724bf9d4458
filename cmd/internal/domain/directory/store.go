// Package directory is the in-memory index of setores. It owns the canonical
// record set and the current override set, and hands every mutation's
// override snapshot to an OverrideSink.
package directory

import (
	"cmp"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"setores/cmd/internal/domain/entity"
	"setores/cmd/internal/domain/text"
	"setores/cmd/internal/utils"
)

type ImportMode string

const (
	ModeReplace ImportMode = "replace"
	ModeMerge   ImportMode = "merge"
)

// ParseImportMode maps anything other than "merge" to replace.
func ParseImportMode(s string) ImportMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeMerge)) {
		return ModeMerge
	}
	return ModeReplace
}

// OverrideSink receives the full override set after every mutation.
// Implementations must not fail the caller; errors are theirs to log.
type OverrideSink interface {
	Persist(overrides []entity.SetorPatch)
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithSink(sink OverrideSink) Option {
	return func(s *Store) { s.sink = sink }
}

type Store struct {
	mu        sync.RWMutex
	byID      map[int64]*entity.Setor
	bySlug    map[string]*entity.Setor
	overrides []entity.SetorPatch
	sink      OverrideSink
	now       func() time.Time
}

func New(opts ...Option) *Store {
	s := &Store{
		byID:   make(map[int64]*entity.Setor),
		bySlug: make(map[string]*entity.Setor),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// All returns copies of every record ordered by nome.
func (s *Store) All() []*entity.Setor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(nil)
}

func (s *Store) ByID(id int64) (*entity.Setor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setor, ok := s.byID[id]
	return setor.Clone(), ok
}

func (s *Store) BySlug(slug string) (*entity.Setor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	setor, ok := s.bySlug[slug]
	return setor.Clone(), ok
}

// Lookup resolves a route parameter that may be either a numeric id or a slug.
func (s *Store) Lookup(idOrSlug string) (*entity.Setor, bool) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		if setor, ok := s.ByID(id); ok {
			return setor, true
		}
	}
	return s.BySlug(idOrSlug)
}

// ResolveSlug turns a numeric id into the slug of that record. Anything else
// is returned untouched.
func (s *Store) ResolveSlug(idOrSlug string) string {
	if setor, ok := s.Lookup(idOrSlug); ok {
		return setor.Slug
	}
	return idOrSlug
}

// Search matches query against nome, sigla, bloco, andar, email and the names
// of the responsaveis, ignoring case and accents. A query of the form
// "bloco X" also matches records whose bloco is exactly X. bloco and andar,
// when set and not "all", are exact filters.
func (s *Store) Search(query, bloco, andar string) []*entity.Setor {
	q := text.Fold(query)
	var blocoTerm string
	if strings.HasPrefix(q, "bloco ") {
		blocoTerm = strings.TrimSpace(q[len("bloco "):])
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedLocked(func(st *entity.Setor) bool {
		if q != "" && !matchesQuery(st, q, blocoTerm) {
			return false
		}
		if isFilter(bloco) && st.Bloco != bloco {
			return false
		}
		if isFilter(andar) && st.Andar != andar {
			return false
		}
		return true
	})
}

func matchesQuery(st *entity.Setor, q, blocoTerm string) bool {
	fields := []string{st.Nome, st.Sigla, st.Bloco, st.Andar, st.Email}
	for _, f := range fields {
		if strings.Contains(text.Fold(f), q) {
			return true
		}
	}
	for _, r := range st.Responsaveis {
		if strings.Contains(text.Fold(r.Nome), q) {
			return true
		}
	}
	return blocoTerm != "" && text.Fold(st.Bloco) == blocoTerm
}

func isFilter(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "all"
}

func (s *Store) Statistics() entity.Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blocos := map[string]struct{}{}
	andares := map[string]struct{}{}
	ramais := 0
	for _, st := range s.byID {
		if st.Bloco != "" {
			blocos[st.Bloco] = struct{}{}
		}
		if st.Andar != "" {
			andares[st.Andar] = struct{}{}
		}
		ramais += len(st.Ramais)
	}
	return entity.Statistics{
		TotalSetores: len(s.byID),
		TotalBlocos:  len(blocos),
		TotalAndares: len(andares),
		TotalRamais:  ramais,
	}
}

func (s *Store) Blocos() []string {
	return s.distinct(func(st *entity.Setor) string { return st.Bloco })
}

func (s *Store) Andares() []string {
	return s.distinct(func(st *entity.Setor) string { return st.Andar })
}

func (s *Store) distinct(field func(*entity.Setor) string) []string {
	s.mu.RLock()
	values := make([]string, 0, len(s.byID))
	for _, st := range s.byID {
		values = append(values, field(st))
	}
	s.mu.RUnlock()
	return text.UniqueSorted(values)
}

// OverrideCount is the number of entries in the current override set.
func (s *Store) OverrideCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.overrides)
}

// sortedLocked clones the records accepted by keep (all when nil), ordered
// by nome with ties broken by id.
func (s *Store) sortedLocked(keep func(*entity.Setor) bool) []*entity.Setor {
	out := make([]*entity.Setor, 0, len(s.byID))
	for _, st := range s.byID {
		if keep == nil || keep(st) {
			out = append(out, st.Clone())
		}
	}
	slices.SortFunc(out, func(a, b *entity.Setor) int { return cmp.Compare(a.ID, b.ID) })
	text.SortBy(out, func(st *entity.Setor) string { return st.Nome })
	return out
}

func (s *Store) nextIDLocked() int64 {
	var max int64
	for id := range s.byID {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// indexLocked stores st under its id and slug, evicting any other record
// that held either key so both indexes always describe the same set.
func (s *Store) indexLocked(st *entity.Setor) {
	if prev, ok := s.byID[st.ID]; ok && prev.Slug != st.Slug {
		delete(s.bySlug, prev.Slug)
	}
	if prev, ok := s.bySlug[st.Slug]; ok && prev.ID != st.ID {
		delete(s.byID, prev.ID)
	}
	s.byID[st.ID] = st
	s.bySlug[st.Slug] = st
}

func (s *Store) timestamp() string {
	return utils.ISOTimestamp(s.now())
}

// applyPatch writes every present field of p onto st, cleaning list fields.
func applyPatch(st *entity.Setor, p entity.SetorPatch) {
	setString(&st.Sigla, p.Sigla)
	setString(&st.Nome, p.Nome)
	setString(&st.Bloco, p.Bloco)
	setString(&st.Andar, p.Andar)
	setString(&st.Observacoes, p.Observacoes)
	setString(&st.Email, p.Email)
	setString(&st.RamalPrincipal, p.RamalPrincipal)
	setString(&st.Celular, p.Celular)
	setString(&st.Whatsapp, p.Whatsapp)
	setString(&st.UltimaAtualizacao, p.UltimaAtualizacao)

	if p.Ramais != nil {
		st.Ramais = text.CleanList(*p.Ramais)
	}
	if p.OutrosContatos != nil {
		st.OutrosContatos = text.CleanList(*p.OutrosContatos)
	}
	if p.FavoritosRamais != nil {
		st.FavoritosRamais = uniqueList(text.CleanList(*p.FavoritosRamais))
	}
	if p.Telefones != nil {
		st.Telefones = normalizePhones(*p.Telefones)
	}
	if p.TelefonesExternos != nil {
		st.TelefonesExternos = normalizePhones(*p.TelefonesExternos)
	}
	if p.Responsaveis != nil {
		st.Responsaveis = slices.Clone(*p.Responsaveis)
	}
	if p.AcessosRamais != nil {
		st.AcessosRamais = maps.Clone(p.AcessosRamais)
	}
	st.EnsureDefaults()
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// normalizePhones trims every part of each phone and drops phones whose
// numero is blank.
func normalizePhones(in []entity.Telefone) []entity.Telefone {
	out := make([]entity.Telefone, 0, len(in))
	for _, t := range in {
		numero := strings.TrimSpace(t.Numero)
		if numero == "" {
			continue
		}
		out = append(out, entity.Telefone{
			Numero:        numero,
			Link:          strings.TrimSpace(t.Link),
			RamalOriginal: strings.TrimSpace(t.RamalOriginal),
		})
	}
	return out
}

func uniqueList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
