package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"setores/cmd/internal/domain/entity"
	"setores/cmd/internal/domain/text"
)

// CSVColumns is the header written by ToCSV and understood by ParseCSV.
var CSVColumns = []string{
	"id", "sigla", "nome", "slug", "bloco", "andar", "email", "ramal_principal",
	"responsaveis", "ramais", "telefones", "telefones_externos", "celular",
	"whatsapp", "observacoes", "ultima_atualizacao",
}

const listSeparator = "; "

var ErrCSVTooShort = errors.New("csv needs a header and at least one row")

// ToCSV renders every record, ordered by nome. Multi-valued cells are joined
// with "; " and phones are rendered by their numero.
func (s *Store) ToCSV() string {
	lines := []string{strings.Join(CSVColumns, ",")}

	for _, st := range s.All() {
		nomes := make([]string, 0, len(st.Responsaveis))
		for _, r := range st.Responsaveis {
			nomes = append(nomes, r.Nome)
		}

		row := []string{
			strconv.FormatInt(st.ID, 10),
			st.Sigla,
			st.Nome,
			st.Slug,
			st.Bloco,
			st.Andar,
			st.Email,
			st.RamalPrincipal,
			strings.Join(nomes, listSeparator),
			strings.Join(st.Ramais, listSeparator),
			strings.Join(entity.Numeros(st.Telefones), listSeparator),
			strings.Join(entity.Numeros(st.TelefonesExternos), listSeparator),
			st.Celular,
			st.Whatsapp,
			st.Observacoes,
			st.UltimaAtualizacao,
		}
		for i, cell := range row {
			row[i] = csvCell(cell)
		}
		lines = append(lines, strings.Join(row, ","))
	}

	return strings.Join(lines, "\n")
}

// csvCell quotes cells holding a delimiter, the list separator, a line break
// or a quote, so spreadsheets keep multi-valued cells together.
func csvCell(v string) string {
	if !strings.ContainsAny(v, ";,\r\n\"") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// ParseCSV reads a header row plus data rows into import entries. Only the
// columns present in the header are set on each entry, so a merge import of
// a partial sheet leaves the other fields alone.
func ParseCSV(r io.Reader) ([]entity.SetorImport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, ErrCSVTooShort
	}

	header := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}

	items := make([]entity.SetorImport, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		items = append(items, parseRow(header, row))
	}
	if len(items) == 0 {
		return nil, ErrCSVTooShort
	}
	return items, nil
}

func parseRow(header map[string]int, row []string) entity.SetorImport {
	cell := func(name string) (string, bool) {
		i, ok := header[name]
		if !ok {
			return "", false
		}
		if i >= len(row) {
			return "", true
		}
		return strings.TrimSpace(row[i]), true
	}
	str := func(name string) *string {
		if v, ok := cell(name); ok {
			return &v
		}
		return nil
	}
	list := func(name string) *entity.StringList {
		if v, ok := cell(name); ok {
			l := entity.StringList(text.SplitList(v))
			return &l
		}
		return nil
	}
	phones := func(name string) *[]entity.Telefone {
		v, ok := cell(name)
		if !ok {
			return nil
		}
		out := []entity.Telefone{}
		for _, n := range text.SplitList(v) {
			out = append(out, entity.Telefone{Numero: n})
		}
		return &out
	}

	var item entity.SetorImport
	if v, ok := cell("id"); ok {
		item.ID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v, ok := cell("slug"); ok {
		item.Slug = v
	}
	item.Sigla = str("sigla")
	item.Nome = str("nome")
	item.Bloco = str("bloco")
	item.Andar = str("andar")
	item.Email = str("email")
	item.RamalPrincipal = str("ramal_principal")
	item.Celular = str("celular")
	item.Whatsapp = str("whatsapp")
	item.Observacoes = str("observacoes")
	if v, ok := cell("ultima_atualizacao"); ok && v != "" {
		item.UltimaAtualizacao = &v
	}
	item.Ramais = list("ramais")
	item.Telefones = phones("telefones")
	item.TelefonesExternos = phones("telefones_externos")

	if v, ok := cell("responsaveis"); ok {
		resp := []entity.Responsavel{}
		for _, nome := range text.SplitList(v) {
			resp = append(resp, entity.Responsavel{Nome: nome})
		}
		item.Responsaveis = &resp
	}
	return item
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
