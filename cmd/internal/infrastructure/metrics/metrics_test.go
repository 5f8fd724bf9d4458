package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.UnlockAttempt(UnlockOK)
	m.UnlockAttempt(UnlockDenied)
	m.UnlockAttempt(UnlockDenied)
	m.PersistResult(nil)
	m.PersistResult(errors.New("disk full"))
	m.Mutation("UPDATE")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.unlockAttempts.WithLabelValues(UnlockOK)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.unlockAttempts.WithLabelValues(UnlockDenied)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistWrites.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("UPDATE")))
}

func TestRecordsGaugeAndHandler(t *testing.T) {
	m := New()
	m.TrackRecords(func() int { return 42 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "setores_records 42")
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/setores/:idOrSlug", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	for _, slug := range []string{"ti", "rh"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/setores/"+slug, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/setores/:idOrSlug", "204")))

	count, err := testutil.GatherAndCount(m.registry, "setores_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMiddlewareCountsHTTPErrors(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "no")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/boom", "418")))
}

func TestMiddlewareCountsPlainErrorsAsServerErrors(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("disk full")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/fail", "500")))
	assert.Zero(t, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/fail", "200")))
}
