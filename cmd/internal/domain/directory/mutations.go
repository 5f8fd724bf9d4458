package directory

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"setores/cmd/internal/domain/entity"
	"setores/cmd/internal/domain/text"
)

const (
	defaultNome  = "Novo Setor"
	defaultSigla = "NOVO"
	fallbackSlug = "setor"
)

// Create adds a new record. The id is one past the current maximum and the
// slug, when it collides with an existing one, gets a time based suffix.
func (s *Store) Create(p entity.SetorPatch) *entity.Setor {
	s.mu.Lock()
	defer s.mu.Unlock()

	nome := strings.TrimSpace(deref(p.Nome))
	sigla := strings.TrimSpace(deref(p.Sigla))
	if nome == "" {
		nome = sigla
	}
	if nome == "" {
		nome = defaultNome
	}
	if sigla == "" {
		if words := strings.Fields(nome); len(words) > 0 {
			sigla = words[0]
		} else {
			sigla = defaultSigla
		}
	}

	slug := strings.TrimSpace(p.Slug)
	if slug == "" {
		slug = text.Slugify(nome)
	}

	p.Nome = &nome
	p.Sigla = &sigla
	p.UltimaAtualizacao = nil

	st := &entity.Setor{ID: s.nextIDLocked(), Slug: s.uniqueSlugLocked(slug)}
	applyPatch(st, p)
	st.UltimaAtualizacao = s.timestamp()

	s.indexLocked(st)
	s.recordLocked(st)
	return st.Clone()
}

// UpdatePartial writes every field present in p onto the record.
// The slug and id of the record never change.
func (s *Store) UpdatePartial(slug string, p entity.SetorPatch) (*entity.Setor, bool) {
	return s.mutate(slug, func(st *entity.Setor) {
		applyPatch(st, p)
	})
}

// UpdateContacts is UpdatePartial restricted to the contact channels.
func (s *Store) UpdateContacts(slug string, p entity.SetorPatch) (*entity.Setor, bool) {
	return s.UpdatePartial(slug, p.ContactsOnly())
}

// IncrementAccess bumps the access counter of one ramal.
func (s *Store) IncrementAccess(slug, numero string) (*entity.Setor, bool) {
	numero = strings.TrimSpace(numero)
	return s.mutate(slug, func(st *entity.Setor) {
		st.AcessosRamais[numero]++
	})
}

// SetFavorite adds or removes numero from the favorites. Both directions are
// idempotent.
func (s *Store) SetFavorite(slug, numero string, favorite bool) (*entity.Setor, bool) {
	numero = strings.TrimSpace(numero)
	return s.mutate(slug, func(st *entity.Setor) {
		has := slices.Contains(st.FavoritosRamais, numero)
		switch {
		case favorite && !has:
			st.FavoritosRamais = append(st.FavoritosRamais, numero)
		case !favorite && has:
			st.FavoritosRamais = slices.DeleteFunc(st.FavoritosRamais, func(n string) bool { return n == numero })
		}
	})
}

// mutate runs fn on a copy of the record, stamps it, swaps it in and records
// the override, all under the write lock so concurrent mutations of the same
// record never lose an update.
func (s *Store) mutate(slug string, fn func(*entity.Setor)) (*entity.Setor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.bySlug[slug]
	if !ok {
		return nil, false
	}

	next := cur.Clone()
	fn(next)
	next.ID = cur.ID
	next.Slug = cur.Slug
	next.UltimaAtualizacao = s.timestamp()

	s.indexLocked(next)
	s.recordLocked(next)
	return next.Clone(), true
}

// ImportRaw loads entries in the seed file shape.
func (s *Store) ImportRaw(items []entity.RawSetor, mode ImportMode) int {
	imports := make([]entity.SetorImport, 0, len(items))
	for _, r := range items {
		p := entity.PatchFromSetor(FromRaw(r))
		// the seed shape has no favorites or counters, keep the current ones
		p.FavoritosRamais = nil
		p.AcessosRamais = nil
		imports = append(imports, entity.SetorImport{ID: r.ID, SetorPatch: p})
	}
	return s.ImportNormalized(imports, mode)
}

// ImportNormalized loads entries already in the flat shape. Replace drops
// every current record first; merge upserts by slug, then by id, overwriting
// only the fields each entry carries. Imports never touch the override set.
func (s *Store) ImportNormalized(items []entity.SetorImport, mode ImportMode) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == ModeReplace {
		clear(s.byID)
		clear(s.bySlug)
	}

	ts := s.timestamp()
	// entries without an id are numbered after every explicit id is in place
	var unnumbered []*entity.Setor
	for _, item := range items {
		if mode == ModeMerge {
			if cur, ok := s.findLocked(item); ok {
				next := cur.Clone()
				applyPatch(next, item.SetorPatch)
				next.ID = cur.ID
				next.Slug = cur.Slug
				s.indexLocked(next)
				continue
			}
		}

		st := &entity.Setor{ID: item.ID, Slug: strings.TrimSpace(item.Slug)}
		applyPatch(st, item.SetorPatch)
		if st.UltimaAtualizacao == "" {
			st.UltimaAtualizacao = ts
		}
		if st.ID <= 0 {
			unnumbered = append(unnumbered, st)
			continue
		}
		if st.Slug == "" {
			st.Slug = s.uniqueSlugLocked(text.Slugify(st.Nome))
		}
		s.indexLocked(st)
	}

	for _, st := range unnumbered {
		st.ID = s.nextIDLocked()
		if st.Slug == "" {
			st.Slug = s.uniqueSlugLocked(text.Slugify(st.Nome))
		}
		s.indexLocked(st)
	}
	return len(items)
}

func (s *Store) findLocked(item entity.SetorImport) (*entity.Setor, bool) {
	if slug := strings.TrimSpace(item.Slug); slug != "" {
		if cur, ok := s.bySlug[slug]; ok {
			return cur, true
		}
	}
	if item.ID > 0 {
		cur, ok := s.byID[item.ID]
		return cur, ok
	}
	return nil, false
}

// PersistAll replaces the override set with a snapshot of every record and
// hands it to the sink. It returns the number of entries written.
func (s *Store) PersistAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*entity.Setor, 0, len(s.byID))
	for _, st := range s.byID {
		all = append(all, st)
	}
	slices.SortFunc(all, func(a, b *entity.Setor) int { return cmp.Compare(a.ID, b.ID) })

	s.overrides = s.overrides[:0]
	for _, st := range all {
		s.overrides = append(s.overrides, entity.PatchFromSetor(st))
	}
	s.persistLocked()
	return len(s.overrides)
}

// ApplyOverrides layers persisted overrides on top of the loaded dataset.
// Unknown slugs become new records. Nothing is persisted and the override's
// own ultima_atualizacao, when present, is kept.
func (s *Store) ApplyOverrides(overrides []entity.SetorPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ov := range overrides {
		slug := strings.TrimSpace(ov.Slug)
		if slug == "" {
			continue
		}
		ov.Slug = slug

		if cur, ok := s.bySlug[slug]; ok {
			next := cur.Clone()
			applyPatch(next, ov)
			next.ID = cur.ID
			next.Slug = cur.Slug
			s.indexLocked(next)
		} else {
			s.indexLocked(s.synthesizeLocked(ov))
		}
		s.upsertOverrideLocked(ov)
	}
}

// synthesizeLocked builds a record for an override whose slug is not part of
// the dataset.
func (s *Store) synthesizeLocked(ov entity.SetorPatch) *entity.Setor {
	sigla := strings.TrimSpace(deref(ov.Sigla))
	if sigla == "" {
		sigla = ov.Slug[:min(8, len(ov.Slug))]
	}
	nome := strings.TrimSpace(deref(ov.Nome))
	if nome == "" {
		nome = ov.Slug
	}

	st := &entity.Setor{ID: s.nextIDLocked(), Slug: ov.Slug}
	applyPatch(st, ov)
	st.Sigla = orDefault(sigla, defaultSigla)
	st.Nome = nome
	if st.UltimaAtualizacao == "" {
		st.UltimaAtualizacao = s.timestamp()
	}
	return st
}

// recordLocked stores the full snapshot of st as its override entry and
// hands the whole set to the sink.
func (s *Store) recordLocked(st *entity.Setor) {
	s.upsertOverrideLocked(entity.PatchFromSetor(st))
	s.persistLocked()
}

func (s *Store) upsertOverrideLocked(entry entity.SetorPatch) {
	for i := range s.overrides {
		if s.overrides[i].Slug == entry.Slug {
			s.overrides[i] = s.overrides[i].Merge(entry)
			return
		}
	}
	s.overrides = append(s.overrides, entry)
}

func (s *Store) persistLocked() {
	if s.sink == nil {
		return
	}
	s.sink.Persist(slices.Clone(s.overrides))
}

func (s *Store) uniqueSlugLocked(slug string) string {
	if slug == "" {
		slug = fallbackSlug
	}
	if _, taken := s.bySlug[slug]; !taken {
		return slug
	}

	base := slug + "-" + strconv.FormatInt(s.now().UnixMilli(), 36)
	candidate := base
	for i := 2; ; i++ {
		if _, taken := s.bySlug[candidate]; !taken {
			return candidate
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

// FromRaw flattens a seed entry, normalizing bloco and andar labels and
// cleaning every list.
func FromRaw(r entity.RawSetor) *entity.Setor {
	info := r.Setor
	slug := strings.TrimSpace(info.Slug)
	if slug == "" {
		slug = text.Slugify(info.Nome)
	}

	st := &entity.Setor{
		ID:                r.ID,
		Slug:              slug,
		Sigla:             strings.TrimSpace(info.Sigla),
		Nome:              strings.TrimSpace(info.Nome),
		Bloco:             text.NormalizeBloco(strings.TrimSpace(info.Bloco)),
		Andar:             text.NormalizeAndar(strings.TrimSpace(info.Andar)),
		Observacoes:       strings.TrimSpace(info.Observacoes),
		Email:             strings.TrimSpace(info.Email),
		RamalPrincipal:    strings.TrimSpace(info.RamalPrincipal.String()),
		Ramais:            text.CleanList(info.Ramais),
		Telefones:         normalizePhones(info.Telefones),
		TelefonesExternos: normalizePhones(info.TelefonesExternos),
		Responsaveis:      slices.Clone(r.Responsaveis),
		Celular:           strings.TrimSpace(r.Contatos.Celular),
		Whatsapp:          strings.TrimSpace(r.Contatos.Whatsapp),
		OutrosContatos:    text.CleanList(r.Contatos.Outros),
		UltimaAtualizacao: strings.TrimSpace(r.UltimaAtualizacao),
	}
	st.EnsureDefaults()
	return st
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
