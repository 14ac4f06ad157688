package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const (
	infoPrefix = "Service B - Version: "
	helloText  = "hello from service B"
)

// APIHandler serves the read-only /api endpoints. The version is captured
// once at construction and never changes, so the handler is safe for
// concurrent use without locking.
type APIHandler struct {
	version string
}

func NewAPIHandler(version string) *APIHandler {
	return &APIHandler{version: version}
}

// GET /api/version
func (h *APIHandler) Version(c echo.Context) error {
	return c.String(http.StatusOK, h.version)
}

// GET /api/info
func (h *APIHandler) Info(c echo.Context) error {
	return c.String(http.StatusOK, infoPrefix+h.version)
}

// GET /api/hello
func (h *APIHandler) Hello(c echo.Context) error {
	return c.String(http.StatusOK, helloText)
}
