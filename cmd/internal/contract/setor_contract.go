package contract

import (
	"setores/cmd/internal/domain/entity"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500

	DefaultTopLimit = 5
	MaxTopLimit     = 50

	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

type ListSetoresQuery struct {
	Query    string `query:"query"`
	Bloco    string `query:"bloco"`
	Andar    string `query:"andar"`
	Paged    string `query:"paged"`
	Page     string `query:"page"`
	PageSize string `query:"pageSize"`
}

type CreateSetorRequest struct {
	Slug              string               `json:"slug" validate:"omitempty,max=120,nospaces"`
	Sigla             string               `json:"sigla" validate:"notblank,max=40"`
	Nome              string               `json:"nome" validate:"notblank,max=200"`
	Bloco             string               `json:"bloco" validate:"max=60"`
	Andar             string               `json:"andar" validate:"max=60"`
	Observacoes       string               `json:"observacoes" validate:"max=2000"`
	Email             string               `json:"email" validate:"emailorblank"`
	RamalPrincipal    entity.FlexString    `json:"ramal_principal" validate:"max=40"`
	Ramais            entity.StringList    `json:"ramais" validate:"max=200"`
	Telefones         []entity.Telefone    `json:"telefones" validate:"max=100"`
	TelefonesExternos []entity.Telefone    `json:"telefones_externos" validate:"max=100"`
	Responsaveis      []entity.Responsavel `json:"responsaveis" validate:"max=100"`
	Celular           string               `json:"celular" validate:"max=40"`
	Whatsapp          string               `json:"whatsapp" validate:"max=40"`
	OutrosContatos    entity.StringList    `json:"outros_contatos" validate:"max=100"`
}

func (r *CreateSetorRequest) Patch() entity.SetorPatch {
	ramais := r.Ramais
	outros := r.OutrosContatos
	telefones := r.Telefones
	externos := r.TelefonesExternos
	responsaveis := r.Responsaveis

	return entity.SetorPatch{
		Slug:              r.Slug,
		Sigla:             entity.Ptr(r.Sigla),
		Nome:              entity.Ptr(r.Nome),
		Bloco:             entity.Ptr(r.Bloco),
		Andar:             entity.Ptr(r.Andar),
		Observacoes:       entity.Ptr(r.Observacoes),
		Email:             entity.Ptr(r.Email),
		RamalPrincipal:    entity.Ptr(r.RamalPrincipal.String()),
		Ramais:            &ramais,
		Telefones:         &telefones,
		TelefonesExternos: &externos,
		Responsaveis:      &responsaveis,
		Celular:           entity.Ptr(r.Celular),
		Whatsapp:          entity.Ptr(r.Whatsapp),
		OutrosContatos:    &outros,
	}
}

// UpdateSetorRequest is a sparse update: only the fields sent are applied.
type UpdateSetorRequest struct {
	Sigla             *string               `json:"sigla" validate:"omitempty,notblank,max=40"`
	Nome              *string               `json:"nome" validate:"omitempty,notblank,max=200"`
	Bloco             *string               `json:"bloco" validate:"omitempty,max=60"`
	Andar             *string               `json:"andar" validate:"omitempty,max=60"`
	Observacoes       *string               `json:"observacoes" validate:"omitempty,max=2000"`
	Responsaveis      *[]entity.Responsavel `json:"responsaveis" validate:"omitempty,max=100"`
	UpdateContactsRequest
}

func (r *UpdateSetorRequest) Patch() entity.SetorPatch {
	p := r.UpdateContactsRequest.Patch()
	p.Sigla = r.Sigla
	p.Nome = r.Nome
	p.Bloco = r.Bloco
	p.Andar = r.Andar
	p.Observacoes = r.Observacoes
	p.Responsaveis = r.Responsaveis
	return p
}

type UpdateContactsRequest struct {
	Email             *string            `json:"email" validate:"emailorblank"`
	RamalPrincipal    *entity.FlexString `json:"ramal_principal" validate:"omitempty,max=40"`
	Ramais            *entity.StringList `json:"ramais" validate:"omitempty,max=200"`
	Telefones         *[]entity.Telefone `json:"telefones" validate:"omitempty,max=100"`
	TelefonesExternos *[]entity.Telefone `json:"telefones_externos" validate:"omitempty,max=100"`
	Celular           *string            `json:"celular" validate:"omitempty,max=40"`
	Whatsapp          *string            `json:"whatsapp" validate:"omitempty,max=40"`
	OutrosContatos    *entity.StringList `json:"outros_contatos" validate:"omitempty,max=100"`
}

func (r *UpdateContactsRequest) Patch() entity.SetorPatch {
	p := entity.SetorPatch{
		Email:             r.Email,
		Ramais:            r.Ramais,
		Telefones:         r.Telefones,
		TelefonesExternos: r.TelefonesExternos,
		Celular:           r.Celular,
		Whatsapp:          r.Whatsapp,
		OutrosContatos:    r.OutrosContatos,
	}
	if r.RamalPrincipal != nil {
		p.RamalPrincipal = entity.Ptr(r.RamalPrincipal.String())
	}
	return p
}

type RamalAccessRequest struct {
	Numero entity.FlexString `json:"numero" validate:"notblank,max=40"`
}

type RamalFavoriteRequest struct {
	Numero   entity.FlexString `json:"numero" validate:"notblank,max=40"`
	Favorite *bool             `json:"favorite" validate:"required"`
}

// SetorResponse is a Setor as seen by a caller. Public callers get no
// celular, whatsapp or responsaveis.
type SetorResponse struct {
	*entity.Setor
	Celular  *string `json:"celular,omitempty"`
	Whatsapp *string `json:"whatsapp,omitempty"`
}

func NewSetorResponse(s *entity.Setor, admin bool) *SetorResponse {
	if admin {
		return &SetorResponse{Setor: s, Celular: &s.Celular, Whatsapp: &s.Whatsapp}
	}
	public := *s
	public.Responsaveis = []entity.Responsavel{}
	return &SetorResponse{Setor: &public}
}

func NewSetorResponses(items []*entity.Setor, admin bool) []*SetorResponse {
	out := make([]*SetorResponse, 0, len(items))
	for _, s := range items {
		out = append(out, NewSetorResponse(s, admin))
	}
	return out
}

type PagedSetoresResponse struct {
	Items    []*SetorResponse `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
}

type RamalAccessResponse struct {
	OK            bool           `json:"ok"`
	AcessosRamais map[string]int `json:"acessos_ramais"`
}

type RamalFavoriteResponse struct {
	OK              bool     `json:"ok"`
	FavoritosRamais []string `json:"favoritos_ramais"`
}

type TopRamalResponse struct {
	Numero string `json:"numero"`
	Count  int    `json:"count"`
}

type ImportResponse struct {
	OK        bool              `json:"ok"`
	Mode      string            `json:"mode"`
	Count     int               `json:"count"`
	Stats     entity.Statistics `json:"stats"`
	Persisted *int              `json:"persisted,omitempty"`
}

type ChangeLogResponse struct {
	ID        int64  `json:"id"`
	Operation string `json:"operation"`
	Payload   any    `json:"payload"`
	Source    string `json:"source,omitempty"`
	CreatedAt string `json:"created_at"`
}
