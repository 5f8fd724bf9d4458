package entity

// RawSetor is one entry of the seed dataset file, where the department data,
// its responsible people and its mobile contacts live in separate objects.
type RawSetor struct {
	ID                int64         `json:"id"`
	Setor             RawSetorInfo  `json:"setor"`
	Responsaveis      []Responsavel `json:"responsaveis"`
	Contatos          RawContatos   `json:"contatos"`
	UltimaAtualizacao string        `json:"ultima_atualizacao"`
}

type RawSetorInfo struct {
	Slug              string     `json:"slug"`
	Sigla             string     `json:"sigla"`
	Nome              string     `json:"nome"`
	Bloco             string     `json:"bloco"`
	Andar             string     `json:"andar"`
	Observacoes       string     `json:"observacoes"`
	Email             string     `json:"email"`
	RamalPrincipal    FlexString `json:"ramal_principal"`
	Ramais            StringList `json:"ramais"`
	Telefones         []Telefone `json:"telefones"`
	TelefonesExternos []Telefone `json:"telefones_externos"`
}

type RawContatos struct {
	Celular  string     `json:"celular"`
	Whatsapp string     `json:"whatsapp"`
	Outros   StringList `json:"outros"`
}
