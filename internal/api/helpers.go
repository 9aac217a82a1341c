package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
)

// maxBodyBytes caps a paraphrase request body.
const maxBodyBytes = 1 << 20

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return out, newBadRequest(fmt.Sprintf("read request body: %v", err))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, newBadRequest("request body is required")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, newBadRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return out, nil
}

func writeError(c *echo.Context, status int, detail string) error {
	resp := ErrorResponse{Detail: detail}
	if status >= http.StatusInternalServerError {
		resp.RequestID = requestID(c)
	}
	return c.JSON(status, resp)
}

// requestID returns the id assigned to the current request, creating one
// from the inbound X-Request-Id header or a fresh uuid on first use.
func requestID(c *echo.Context) string {
	if id, ok := c.Get(requestIDKey).(string); ok && id != "" {
		return id
	}
	id := strings.TrimSpace(c.Request().Header.Get(echo.HeaderXRequestID))
	if id == "" || len(id) > 128 {
		id = uuid.NewString()
	}
	c.Set(requestIDKey, id)
	c.Response().Header().Set(echo.HeaderXRequestID, id)
	return id
}

const requestIDKey = "request_id"

// assignRequestID makes sure every response carries X-Request-Id.
func assignRequestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		requestID(c)
		return next(c)
	}
}
