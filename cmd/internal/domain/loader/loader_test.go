package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setores/cmd/internal/domain/directory"
	"setores/cmd/internal/domain/entity"
	"setores/cmd/internal/infrastructure/overrides"
)

const dataset = `[
  {
    "id": 1,
    "setor": {"slug": "ti", "sigla": "TI", "nome": "Tecnologia", "bloco": "BLOCO 2", "andar": "3¬∫ ANDAR", "email": "ti@example.org", "ramal_principal": 2020, "ramais": ["2020", 2021, null]},
    "responsaveis": [{"nome": "Ana"}],
    "contatos": {"celular": "61999990000", "whatsapp": "", "outros": []},
    "ultima_atualizacao": "2024-01-01T12:00:00.000Z"
  },
  {
    "id": 2,
    "setor": {"slug": "rh", "sigla": "RH", "nome": "Recursos Humanos", "bloco": "BLOCO 1", "andar": "Térreo", "telefones": ["3333-0000", {"numero": ""}]},
    "responsaveis": [],
    "contatos": {}
  }
]`

func writeFile(t *testing.T, dir, name, content string, modTime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, modTime, modTime))
}

func TestResolveDatasetPrefersNamedFiles(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	writeFile(t, dir, "dados normalizado_1.json", "[]", base)
	writeFile(t, dir, "Dados Estruturados NORMALIZADO_2.json", "[]", base.Add(time.Hour))
	writeFile(t, dir, "other.json", "[]", base.Add(2*time.Hour))
	writeFile(t, dir, overrides.FileName, "[]", base.Add(3*time.Hour))

	l := New(dir, "", overrides.NewPersister(dir, overrides.Options{MaxBackups: 1}))
	path, err := l.ResolveDataset()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Dados Estruturados NORMALIZADO_2.json"), path)
}

func TestResolveDatasetFallsBackToNewestJSON(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	writeFile(t, dir, "a.json", "[]", base)
	writeFile(t, dir, "b.json", "[]", base.Add(time.Minute))
	writeFile(t, dir, "readme.txt", "", base.Add(time.Hour))
	writeFile(t, dir, overrides.FileName, "[]", base.Add(time.Hour))

	l := New(dir, "", overrides.NewPersister(dir, overrides.Options{MaxBackups: 1}))
	path, err := l.ResolveDataset()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "b.json"), path)
}

func TestResolveDatasetExplicitFile(t *testing.T) {
	l := New("/assets", "dados.json", nil)
	path, err := l.ResolveDataset()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/assets", "dados.json"), path)

	l = New("/assets", "/data/custom.json", nil)
	path, err = l.ResolveDataset()
	require.NoError(t, err)
	assert.Equal(t, "/data/custom.json", path)
}

func TestResolveDatasetEmptyDir(t *testing.T) {
	_, err := New(t.TempDir(), "", nil).ResolveDataset()
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestLoadAppliesOverridesWithoutPersisting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dados normalizado.json", dataset, time.Now())

	persister := overrides.NewPersister(dir, overrides.Options{MaxBackups: 5})
	persister.Persist([]entity.SetorPatch{
		{Slug: "rh", Email: entity.Ptr("rh@example.org")},
		{Slug: "ouvidoria", Nome: entity.Ptr("Ouvidoria")},
	})
	backupsBefore := persister.Status().Backups

	store := directory.New()
	res := New(dir, "", persister).Load(store)

	assert.Equal(t, filepath.Join(dir, "dados normalizado.json"), res.Dataset)
	assert.Equal(t, 2, res.Setores)
	assert.Equal(t, 2, res.Overrides)
	assert.Equal(t, 3, store.Len())

	ti, ok := store.BySlug("ti")
	require.True(t, ok)
	assert.Equal(t, "2", ti.Bloco)
	assert.Equal(t, "3", ti.Andar)
	assert.Equal(t, "2020", ti.RamalPrincipal)
	assert.Equal(t, []string{"2020", "2021"}, ti.Ramais)

	rh, _ := store.BySlug("rh")
	assert.Equal(t, "rh@example.org", rh.Email)
	assert.Equal(t, []entity.Telefone{{Numero: "3333-0000"}}, rh.Telefones)

	ouv, ok := store.BySlug("ouvidoria")
	require.True(t, ok)
	assert.Equal(t, int64(3), ouv.ID)

	assert.Equal(t, backupsBefore, persister.Status().Backups)
}

func TestLoadWithBrokenDatasetStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dados normalizado.json", "{not json", time.Now())

	store := directory.New()
	res := New(dir, "", overrides.NewPersister(dir, overrides.Options{MaxBackups: 1})).Load(store)

	assert.Zero(t, res.Setores)
	assert.Zero(t, store.Len())
}

func TestLoadWithBrokenOverridesKeepsDataset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "dados normalizado.json", dataset, time.Now())
	writeFile(t, dir, overrides.FileName, "nope", time.Now())

	store := directory.New()
	res := New(dir, "", overrides.NewPersister(dir, overrides.Options{MaxBackups: 1})).Load(store)

	assert.Equal(t, 2, res.Setores)
	assert.Zero(t, res.Overrides)
	assert.Equal(t, 2, store.Len())
}
