package entity

import "maps"

// SetorPatch is a sparse set of Setor fields keyed by slug. A nil field means
// "not present". It is both the shape of a partial update and the shape of an
// entry of the overrides file.
type SetorPatch struct {
	Slug              string         `json:"slug"`
	Sigla             *string        `json:"sigla,omitempty"`
	Nome              *string        `json:"nome,omitempty"`
	Bloco             *string        `json:"bloco,omitempty"`
	Andar             *string        `json:"andar,omitempty"`
	Observacoes       *string        `json:"observacoes,omitempty"`
	Email             *string        `json:"email,omitempty"`
	RamalPrincipal    *string        `json:"ramal_principal,omitempty"`
	Ramais            *StringList    `json:"ramais,omitempty"`
	Telefones         *[]Telefone    `json:"telefones,omitempty"`
	TelefonesExternos *[]Telefone    `json:"telefones_externos,omitempty"`
	Responsaveis      *[]Responsavel `json:"responsaveis,omitempty"`
	Celular           *string        `json:"celular,omitempty"`
	Whatsapp          *string        `json:"whatsapp,omitempty"`
	OutrosContatos    *StringList    `json:"outros_contatos,omitempty"`
	FavoritosRamais   *StringList    `json:"favoritos_ramais,omitempty"`
	AcessosRamais     map[string]int `json:"acessos_ramais,omitempty"`
	UltimaAtualizacao *string        `json:"ultima_atualizacao,omitempty"`
}

func Ptr[T any](v T) *T {
	return &v
}

// PatchFromSetor snapshots every overridable field of s.
func PatchFromSetor(s *Setor) SetorPatch {
	c := s.Clone()
	ramais := StringList(c.Ramais)
	outros := StringList(c.OutrosContatos)
	favoritos := StringList(c.FavoritosRamais)
	return SetorPatch{
		Slug:              c.Slug,
		Sigla:             Ptr(c.Sigla),
		Nome:              Ptr(c.Nome),
		Bloco:             Ptr(c.Bloco),
		Andar:             Ptr(c.Andar),
		Observacoes:       Ptr(c.Observacoes),
		Email:             Ptr(c.Email),
		RamalPrincipal:    Ptr(c.RamalPrincipal),
		Ramais:            &ramais,
		Telefones:         &c.Telefones,
		TelefonesExternos: &c.TelefonesExternos,
		Responsaveis:      &c.Responsaveis,
		Celular:           Ptr(c.Celular),
		Whatsapp:          Ptr(c.Whatsapp),
		OutrosContatos:    &outros,
		FavoritosRamais:   &favoritos,
		AcessosRamais:     c.AcessosRamais,
		UltimaAtualizacao: Ptr(c.UltimaAtualizacao),
	}
}

// Merge returns p with every field present in o written over it.
func (p SetorPatch) Merge(o SetorPatch) SetorPatch {
	if o.Slug != "" {
		p.Slug = o.Slug
	}
	mergePtr(&p.Sigla, o.Sigla)
	mergePtr(&p.Nome, o.Nome)
	mergePtr(&p.Bloco, o.Bloco)
	mergePtr(&p.Andar, o.Andar)
	mergePtr(&p.Observacoes, o.Observacoes)
	mergePtr(&p.Email, o.Email)
	mergePtr(&p.RamalPrincipal, o.RamalPrincipal)
	mergePtr(&p.Ramais, o.Ramais)
	mergePtr(&p.Telefones, o.Telefones)
	mergePtr(&p.TelefonesExternos, o.TelefonesExternos)
	mergePtr(&p.Responsaveis, o.Responsaveis)
	mergePtr(&p.Celular, o.Celular)
	mergePtr(&p.Whatsapp, o.Whatsapp)
	mergePtr(&p.OutrosContatos, o.OutrosContatos)
	mergePtr(&p.FavoritosRamais, o.FavoritosRamais)
	mergePtr(&p.UltimaAtualizacao, o.UltimaAtualizacao)
	if o.AcessosRamais != nil {
		p.AcessosRamais = maps.Clone(o.AcessosRamais)
	}
	return p
}

// ContactsOnly drops every field that is not a contact channel.
func (p SetorPatch) ContactsOnly() SetorPatch {
	return SetorPatch{
		Slug:              p.Slug,
		Email:             p.Email,
		RamalPrincipal:    p.RamalPrincipal,
		Ramais:            p.Ramais,
		Telefones:         p.Telefones,
		TelefonesExternos: p.TelefonesExternos,
		Celular:           p.Celular,
		Whatsapp:          p.Whatsapp,
		OutrosContatos:    p.OutrosContatos,
	}
}

func mergePtr[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// SetorImport is one entry of a normalized import (JSON or CSV): an optional
// id plus whichever fields the source carried.
type SetorImport struct {
	ID int64 `json:"id"`
	SetorPatch
}
