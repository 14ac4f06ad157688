package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h echo.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	return rec
}

func TestAPIHandler(t *testing.T) {
	for _, version := range []string{"1.2.3", "", "v2.0.0-rc.1+build.7", "with spaces and ünïcode"} {
		h := NewAPIHandler(version)

		rec := serve(t, h.Version)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, version, rec.Body.String())
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)

		rec = serve(t, h.Info)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Service B - Version: "+version, rec.Body.String())

		rec = serve(t, h.Hello)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "hello from service B", rec.Body.String())
	}
}

func TestHealth(t *testing.T) {
	rec := serve(t, Health)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
