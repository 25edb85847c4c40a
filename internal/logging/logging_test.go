package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	log, err := New("debug")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	log, err = New("")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))

	_, err = New("chatty")
	assert.Error(t, err)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "/ok?x=1", entries[0].ContextMap()["uri"])
	assert.EqualValues(t, 200, entries[0].ContextMap()["status"])
	assert.Equal(t, zap.ErrorLevel, entries[1].Level)
	assert.EqualValues(t, 404, entries[1].ContextMap()["status"])
}
