package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggingLevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := echo.New()
	e.Use(Logging(zap.New(core)))
	e.GET("/items/:id", func(c echo.Context) error {
		switch c.Param("id") {
		case "missing":
			return c.NoContent(http.StatusNotFound)
		case "broken":
			return errors.New("boom")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"ok", "missing", "broken"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)

	fields := entries[2].ContextMap()
	assert.Equal(t, "/items/:id", fields["route"])
	assert.Equal(t, "/items/broken", fields["url.path"])
	assert.EqualValues(t, http.StatusInternalServerError, fields["http.response.status_code"])
	assert.Contains(t, fields, "http.latency")
}

func TestLoggingSkipper(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	e := echo.New()
	e.Use(Logging(zap.New(core), &LoggingConfig{Skipper: func(echo.Context) bool { return true }}))
	e.GET("/", ok)

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Zero(t, logs.Len())
}
