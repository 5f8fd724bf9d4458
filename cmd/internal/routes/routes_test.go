package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setores/cmd/internal/admin"
	"setores/cmd/internal/domain/directory"
	"setores/cmd/internal/domain/entity"
	"setores/cmd/internal/http/handler"
	"setores/cmd/internal/infrastructure/metrics"
	"setores/cmd/internal/infrastructure/overrides"
	"setores/cmd/internal/service"
	"setores/cmd/internal/utils"
	"setores/cmd/internal/utils/validators"
)

const secret = "s3cret"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type app struct {
	e         *echo.Echo
	clock     *clock
	store     *directory.Store
	persister *overrides.Persister
	meta      *service.DefaultMetaService
}

func newApp(t *testing.T) *app {
	t.Helper()

	clk := &clock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	m := metrics.New()

	persister := overrides.NewPersister(t.TempDir(), overrides.Options{
		MaxBackups: 5,
		Now:        clk.Now,
		OnPersist:  m.PersistResult,
	})
	store := directory.New(directory.WithSink(persister), directory.WithClock(clk.Now))
	store.ImportRaw([]entity.RawSetor{{
		ID:           1,
		Setor:        entity.RawSetorInfo{Slug: "ti", Sigla: "TI", Nome: "Tecnologia", Bloco: "BLOCO A", Andar: "1º ANDAR"},
		Responsaveis: []entity.Responsavel{{Nome: "Ana"}},
		Contatos:     entity.RawContatos{Celular: "61999990000", Whatsapp: "61999990000"},
	}}, directory.ModeReplace)

	gate := admin.NewGate(admin.GateConfig{Secret: secret, Window: 5 * time.Minute, Now: clk.Now})
	limiter := admin.NewAttemptLimiter(5, time.Minute, clk.Now)

	setorService := service.NewSetorService(store, nil, m, validators.New())
	setorService.Now = clk.Now
	adminService := service.NewAdminService(gate, limiter, m)
	metaService := service.NewMetaService(store, persister, service.MetaConfig{Version: "1.2.3", Env: "test"})

	e := echo.New()
	Register(e, &Handlers{
		Setores: handler.NewSetorDefault(setorService),
		Admin:   handler.NewAdminDefault(adminService),
		Meta:    handler.NewMetaDefault(metaService),
		Gate:    adminService,
		Metrics: m.Handler(),
	})

	return &app{e: e, clock: clk, store: store, persister: persister, meta: metaService}
}

func (a *app) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *app) unlock(t *testing.T) {
	t.Helper()
	rec := a.do(http.MethodPost, "/api/admin/unlock", `{"master_password":"`+secret+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestUnlockThenMutateUntilExpiry(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodPatch, "/api/setores/ti", `{"email":"ti@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"Senha mestra inválida"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/admin/unlock", `{"master_password":"`+secret+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"unlock_ms":300000}`, rec.Body.String())

	a.clock.Advance(4 * time.Minute)
	rec = a.do(http.MethodPatch, "/api/setores/ti", `{"email":"ti@example.com"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ti@example.com", decode[map[string]any](t, rec)["email"])

	a.clock.Advance(time.Minute)
	rec = a.do(http.MethodPatch, "/api/setores/ti", `{"email":"late@example.com"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(http.MethodPatch, "/api/setores/ti", `{"email":"late@example.com"}`, utils.MasterPasswordHeader, secret)
	assert.Equal(t, http.StatusOK, rec.Code, "a credential on the request itself reopens the window")
}

func TestUnlockRateLimit(t *testing.T) {
	a := newApp(t)

	for i := range 5 {
		rec := a.do(http.MethodPost, "/api/admin/unlock", `{"master_password":"nope"}`, echo.HeaderXForwardedFor, "10.0.0.9, 172.16.0.1")
		assert.Equal(t, http.StatusForbidden, rec.Code, "attempt %d", i+1)
	}
	rec := a.do(http.MethodPost, "/api/admin/unlock", `{"master_password":"`+secret+`"}`, echo.HeaderXForwardedFor, "10.0.0.9")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = a.do(http.MethodPost, "/api/admin/unlock", `{"master_password":"`+secret+`"}`, echo.HeaderXForwardedFor, "10.0.0.10")
	assert.Equal(t, http.StatusOK, rec.Code, "other sources are not limited")

	a.clock.Advance(61 * time.Second)
	rec = a.do(http.MethodPost, "/api/admin/unlock", `{"master_password":"`+secret+`"}`, echo.HeaderXForwardedFor, "10.0.0.9")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestImportNormalizesBlocoAndAndar(t *testing.T) {
	a := newApp(t)
	a.unlock(t)

	body := `[{"id":1,"setor":{"sigla":"ABC","nome":"Depto ABC","bloco":"BLOCO 2","andar":"3¬∫ ANDAR","slug":"abc"},"responsaveis":[],"contatos":{},"ultima_atualizacao":"2024-01-01"}]`
	rec := a.do(http.MethodPost, "/api/setores/import?mode=replace", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[map[string]any](t, rec)
	assert.Equal(t, true, resp["ok"])
	assert.Equal(t, "replace", resp["mode"])
	assert.EqualValues(t, 1, resp["count"])

	rec = a.do(http.MethodGet, "/api/setores/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	setor := decode[map[string]any](t, rec)
	assert.Equal(t, "2", setor["bloco"])
	assert.Equal(t, "3", setor["andar"])

	_, err := os.Stat(a.persister.Path())
	assert.True(t, os.IsNotExist(err), "import without persist=1 writes nothing")

	rec = a.do(http.MethodPost, "/api/setores/import?persist=1", `{"not":"an array"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportCSVAndExport(t *testing.T) {
	a := newApp(t)
	a.unlock(t)

	req := httptest.NewRequest(http.MethodPost, "/api/setores/import-csv?mode=merge&persist=true",
		strings.NewReader("id,sigla,nome,bloco\n7,FIN,Financeiro,BLOCO C\n"))
	req.Header.Set(echo.HeaderContentType, "text/csv")
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 2, decode[map[string]any](t, rec)["count"])

	status := a.persister.Status()
	assert.True(t, status.OverridesExists)
	assert.Equal(t, 2, status.Overrides)

	rec = a.do(http.MethodGet, "/api/setores/export?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="setores_2024-06-01T09-00-00-000Z.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Contains(t, rec.Body.String(), "7,FIN,Financeiro")
}

func TestFavoriteIsIdempotent(t *testing.T) {
	a := newApp(t)
	a.unlock(t)

	for range 2 {
		rec := a.do(http.MethodPost, "/api/setores/ti/ramais/favorite", `{"numero":"100","favorite":true}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.JSONEq(t, `{"ok":true,"favoritos_ramais":["100"]}`, rec.Body.String())
	}

	rec := a.do(http.MethodPost, "/api/setores/ti/ramais/favorite", `{"numero":"100"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(http.MethodPost, "/api/setores/1/ramais/access", `{"numero":100}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true,"acessos_ramais":{"100":1}}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/setores/ti/ramais/top?limit=99", "")
	assert.JSONEq(t, `[{"numero":"100","count":1}]`, rec.Body.String())
}

func TestPublicReadsAreSanitized(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/api/setores/ti", "")
	require.Equal(t, http.StatusOK, rec.Code)
	public := decode[map[string]any](t, rec)
	assert.NotContains(t, public, "celular")
	assert.NotContains(t, public, "whatsapp")
	assert.Equal(t, []any{}, public["responsaveis"])

	rec = a.do(http.MethodGet, "/api/setores?master_password="+secret, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]map[string]any](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "61999990000", list[0]["celular"])
	assert.Len(t, list[0]["responsaveis"], 1)

	rec = a.do(http.MethodGet, "/api/setores/404", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateSetor(t *testing.T) {
	a := newApp(t)
	a.unlock(t)

	rec := a.do(http.MethodPost, "/api/setores", `{"sigla":"OUV"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Informe nome e sigla"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/setores", `{"sigla":"OUV","nome":"Ouvidoria","email":"bad"}`)
	assert.JSONEq(t, `{"error":"E-mail inválido"}`, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/setores", `{"sigla":"OUV","nome":"Ouvidoria","ramal_principal":2020}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, created["id"])
	assert.Equal(t, "ouvidoria", created["slug"])
	assert.Equal(t, "2020", created["ramal_principal"])

	saved, err := a.persister.Load()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "ouvidoria", saved[0].Slug)
}

func TestOperationalEndpoints(t *testing.T) {
	a := newApp(t)

	rec := a.do(http.MethodGet, "/healthz", "")
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	a.meta.MarkReady()
	rec = a.do(http.MethodGet, "/readyz", "")
	assert.JSONEq(t, `{"ready":true,"setores":1}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/version", "")
	version := decode[map[string]any](t, rec)
	assert.Equal(t, "1.2.3", version["version"])
	assert.EqualValues(t, 1, version["totalSetores"])

	rec = a.do(http.MethodGet, "/api/statistics", "")
	assert.JSONEq(t, `{"totalSetores":1,"totalBlocos":1,"totalAndares":1,"totalRamais":0}`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/blocos", "")
	assert.JSONEq(t, `["A"]`, rec.Body.String())

	rec = a.do(http.MethodGet, "/api/persist/status", "")
	status := decode[map[string]any](t, rec)
	assert.Equal(t, false, status["overridesExists"])
	assert.Equal(t, false, status["changeLog"])

	a.do(http.MethodPost, "/api/admin/unlock", `{"master_password":"wrong"}`)
	rec = a.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `setores_unlock_attempts_total{result="denied"} 1`)
}

func TestHistoryWithoutChangeLogAndQRCode(t *testing.T) {
	a := newApp(t)
	a.unlock(t)

	rec := a.do(http.MethodGet, "/api/setores/ti/history", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = a.do(http.MethodGet, "/api/setores/ti/whatsapp/qrcode", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
}
