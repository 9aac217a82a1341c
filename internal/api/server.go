// Package api serves the paraphrasing model over HTTP.
package api

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/paraphrase/internal/device"
	"github.com/samcharles93/paraphrase/internal/logger"
	"github.com/samcharles93/paraphrase/internal/modelhost"
	"github.com/samcharles93/paraphrase/internal/webui"
)

const DefaultMaxBeams = 16

type ServerConfig struct {
	// MaxBeams is the largest num_beams a client may ask for.
	MaxBeams int
	Logger   logger.Logger
}

type Server struct {
	host          modelhost.Generator
	maxBeams      int
	log           logger.Logger
	cudaAvailable func() bool
}

func NewServer(host modelhost.Generator, cfg ServerConfig) *Server {
	if cfg.MaxBeams <= 0 {
		cfg.MaxBeams = DefaultMaxBeams
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	return &Server{
		host:          host,
		maxBeams:      cfg.MaxBeams,
		log:           cfg.Logger.With("component", "api"),
		cudaAvailable: device.CUDAAvailable,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.Use(assignRequestID)

	e.POST("/paraphrase", s.handleParaphrase)
	e.GET("/health", s.handleHealth)

	// Front end
	static := echo.WrapHandler(webui.Handler())
	e.GET("/static/*", static)
	e.GET("/", redirectToStatic)
	e.GET("/static", redirectToStatic)
}

func redirectToStatic(c *echo.Context) error {
	return c.Redirect(http.StatusFound, "/static/")
}
