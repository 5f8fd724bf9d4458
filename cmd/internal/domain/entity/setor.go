package entity

import (
	"maps"
	"slices"
)

// Setor is a department of the directory. ID and Slug are assigned once and
// never change; Slug is the external key used by every mutation.
type Setor struct {
	ID                int64          `json:"id"`
	Slug              string         `json:"slug"`
	Sigla             string         `json:"sigla"`
	Nome              string         `json:"nome"`
	Bloco             string         `json:"bloco"`
	Andar             string         `json:"andar"`
	Observacoes       string         `json:"observacoes"`
	Email             string         `json:"email"`
	RamalPrincipal    string         `json:"ramal_principal"`
	Ramais            []string       `json:"ramais"`
	Telefones         []Telefone     `json:"telefones"`
	TelefonesExternos []Telefone     `json:"telefones_externos"`
	Responsaveis      []Responsavel  `json:"responsaveis"`
	Celular           string         `json:"celular"`
	Whatsapp          string         `json:"whatsapp"`
	OutrosContatos    []string       `json:"outros_contatos"`
	FavoritosRamais   []string       `json:"favoritos_ramais"`
	AcessosRamais     map[string]int `json:"acessos_ramais"`
	UltimaAtualizacao string         `json:"ultima_atualizacao"`
}

type Telefone struct {
	Numero        string `json:"numero"`
	Link          string `json:"link,omitempty"`
	RamalOriginal string `json:"ramal_original,omitempty"`
}

type Responsavel struct {
	Nome     string `json:"nome"`
	Cargo    string `json:"cargo,omitempty"`
	Email    string `json:"email,omitempty"`
	Telefone string `json:"telefone,omitempty"`
}

type Statistics struct {
	TotalSetores int `json:"totalSetores"`
	TotalBlocos  int `json:"totalBlocos"`
	TotalAndares int `json:"totalAndares"`
	TotalRamais  int `json:"totalRamais"`
}

// Clone returns a deep copy, so callers outside the store never share
// slices or maps with the indexed record.
func (s *Setor) Clone() *Setor {
	if s == nil {
		return nil
	}
	c := *s
	c.Ramais = slices.Clone(s.Ramais)
	c.Telefones = slices.Clone(s.Telefones)
	c.TelefonesExternos = slices.Clone(s.TelefonesExternos)
	c.Responsaveis = slices.Clone(s.Responsaveis)
	c.OutrosContatos = slices.Clone(s.OutrosContatos)
	c.FavoritosRamais = slices.Clone(s.FavoritosRamais)
	c.AcessosRamais = maps.Clone(s.AcessosRamais)
	c.EnsureDefaults()
	return &c
}

// EnsureDefaults replaces nil lists and maps with empty ones so they are
// serialized as [] and {} instead of null.
func (s *Setor) EnsureDefaults() {
	if s.Ramais == nil {
		s.Ramais = []string{}
	}
	if s.Telefones == nil {
		s.Telefones = []Telefone{}
	}
	if s.TelefonesExternos == nil {
		s.TelefonesExternos = []Telefone{}
	}
	if s.Responsaveis == nil {
		s.Responsaveis = []Responsavel{}
	}
	if s.OutrosContatos == nil {
		s.OutrosContatos = []string{}
	}
	if s.FavoritosRamais == nil {
		s.FavoritosRamais = []string{}
	}
	if s.AcessosRamais == nil {
		s.AcessosRamais = map[string]int{}
	}
}

// Numeros returns the numero of every phone, in order.
func Numeros(phones []Telefone) []string {
	out := make([]string, 0, len(phones))
	for _, t := range phones {
		out = append(out, t.Numero)
	}
	return out
}
