package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "administracao", Fold("  Administração "))
	assert.Equal(t, "secretaria de saude", Fold("SECRETARIA DE SAÚDE"))
	assert.Equal(t, "", Fold(""))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "depto-de-educacao", Slugify("Depto. de Educação"))
	assert.Equal(t, "abc", Slugify("--ABC--"))
	assert.Equal(t, "", Slugify("***"))
}

func TestNormalizeBloco(t *testing.T) {
	assert.Equal(t, "2", NormalizeBloco("BLOCO 2"))
	assert.Equal(t, "A", NormalizeBloco("bloco   A"))
	assert.Equal(t, "ANEXO", NormalizeBloco("ANEXO"))
	assert.Equal(t, "", NormalizeBloco(""))
}

func TestNormalizeAndar(t *testing.T) {
	cases := map[string]string{
		"3¬∫ ANDAR": "3",
		"3º ANDAR":  "3",
		"1° andar":  "1",
		"10 ANDAR":  "10",
		"TÉRREO":    "TÉRREO",
		"SUBSOLO":   "SUBSOLO",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeAndar(in), in)
	}
}

func TestSplitAndCleanList(t *testing.T) {
	assert.Equal(t, []string{"100", "101"}, SplitList("100; ;101;"))
	assert.Equal(t, []string{}, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, CleanList([]string{" a ", "", "   ", "b"}))
}

func TestSortByUsesPortugueseCollation(t *testing.T) {
	names := []string{"Ótica", "Zoologia", "abrigo", "Órgão Central", "Administração"}
	SortBy(names, func(s string) string { return s })
	assert.Equal(t, []string{"abrigo", "Administração", "Órgão Central", "Ótica", "Zoologia"}, names)
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "A"}, UniqueSorted([]string{"2", "", "A", "1", "2"}))
}
