package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/paraphrase/internal/modelhost"
)

func (s *Server) handleParaphrase(c *echo.Context) error {
	req, err := decodeJSON[ParaphraseRequest](c.Request().Body)
	if err != nil {
		return writeRequestError(c, err)
	}
	opts, err := s.options(req)
	if err != nil {
		return writeRequestError(c, err)
	}

	paraphrases, err := s.host.Generate(c.Request().Context(), req.Text, opts)
	if err != nil {
		return s.writeGenerationError(c, err)
	}

	return c.JSON(http.StatusOK, ParaphraseResponse{
		OriginalText: req.Text,
		Paraphrases:  paraphrases,
		Device:       s.host.Device(),
	})
}

// options applies defaults to req and checks every field before the model
// is involved.
func (s *Server) options(req ParaphraseRequest) (modelhost.Options, error) {
	if strings.TrimSpace(req.Text) == "" {
		return modelhost.Options{}, newBadRequest("Text cannot be empty")
	}

	opts := modelhost.DefaultOptions()
	if req.NumReturnSequences != nil {
		opts.NumReturnSequences = *req.NumReturnSequences
	}
	if req.NumBeams != nil {
		opts.NumBeams = *req.NumBeams
	}
	if req.Temperature != nil {
		opts.Temperature = *req.Temperature
	}

	if err := opts.Validate(); err != nil {
		return opts, newUnprocessable(err.Error())
	}
	if opts.NumBeams > s.maxBeams {
		return opts, newUnprocessable(fmt.Sprintf("num_beams must not exceed %d, got %d", s.maxBeams, opts.NumBeams))
	}
	return opts, nil
}

func writeRequestError(c *echo.Context, err error) error {
	status, ok := requestErrorStatus(err)
	if !ok {
		status = http.StatusBadRequest
	}
	return writeError(c, status, err.Error())
}

func (s *Server) writeGenerationError(c *echo.Context, err error) error {
	if errors.Is(err, modelhost.ErrInvalidOptions) {
		return writeError(c, http.StatusUnprocessableEntity, err.Error())
	}

	id := requestID(c)
	status := http.StatusInternalServerError
	detail := "paraphrase generation failed"

	var gerr *modelhost.GenerationError
	switch {
	case errors.As(err, &gerr) && gerr.OOM:
		status = http.StatusServiceUnavailable
		detail = "generation capacity exhausted"
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		detail = "paraphrase generation timed out"
	}

	s.log.Error("paraphrase failed", "request_id", id, "status", status, "error", err)
	return writeError(c, status, detail)
}
