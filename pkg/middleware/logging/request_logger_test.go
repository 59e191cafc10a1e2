package loggingmw

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/sweet_shop/pkg/logging"
)

func TestRequestLogger_LogsStatusAndInjectsLogger(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewTo(&buf, "info")))

	var injected bool
	e.GET("/api/sweets/:id", func(c echo.Context) error {
		injected = logging.FromContext(c.Request().Context()) != nil
		return echo.NewHTTPError(http.StatusNotFound, "Sweet not found")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/sweets/9", nil)
	req.Header.Set(echo.HeaderXRequestID, "rid-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.True(t, injected)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rid-1", rec.Header().Get(echo.HeaderXRequestID))

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "/api/sweets/:id", line["route"])
	assert.EqualValues(t, 404, line["status"])
	assert.Equal(t, "rid-1", line["request_id"])
}

func TestRequestLogger_HealthIsQuiet(t *testing.T) {
	var buf bytes.Buffer
	e := echo.New()
	e.Use(RequestLogger(logging.NewTo(&buf, "info")))
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, buf.String())
}
