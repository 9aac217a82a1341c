package api

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/paraphrase/internal/device"
)

// handleHealth reports the loaded model without touching it. A Server only
// exists once the host has loaded, so model_loaded is always true here.
func (s *Server) handleHealth(c *echo.Context) error {
	dev := s.host.Device()
	return c.JSON(http.StatusOK, HealthResponse{
		Status:        "ok",
		Device:        dev,
		Model:         s.host.Model(),
		ModelLoaded:   true,
		CUDAAvailable: dev == device.CUDA || s.cudaAvailable(),
	})
}
