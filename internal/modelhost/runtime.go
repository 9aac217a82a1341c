package modelhost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	"github.com/samcharles93/paraphrase/internal/version"
)

// runtimeInfo is the answer of GET /info. Field names follow the
// text-generation-inference info route.
type runtimeInfo struct {
	ModelID     string `json:"model_id"`
	Device      string `json:"model_device_type"`
	ModelLoaded *bool  `json:"model_loaded,omitempty"`
}

// generateRequest is the transformers pipeline payload accepted by
// POST /generate.
type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	NumBeams           int     `json:"num_beams"`
	NumReturnSequences int     `json:"num_return_sequences"`
	Temperature        float64 `json:"temperature"`
	DoSample           bool    `json:"do_sample"`
	MaxLength          int     `json:"max_length"`
	Truncation         bool    `json:"truncation"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

type runtimeErrorBody struct {
	Error     string `json:"error"`
	ErrorType string `json:"error_type"`
	Detail    string `json:"detail"`
}

// runtimeStatusError is a non-2xx answer from the runtime.
type runtimeStatusError struct {
	StatusCode int
	Message    string
	Type       string
}

func (e *runtimeStatusError) Error() string {
	if e.Message == "" {
		return http.StatusText(e.StatusCode)
	}
	return e.Message
}

// outOfMemory reports whether the runtime failed for lack of device memory.
func (e *runtimeStatusError) outOfMemory() bool {
	if e.StatusCode == http.StatusInsufficientStorage {
		return true
	}
	msg := strings.ToLower(e.Type + " " + e.Message)
	return strings.Contains(msg, "out of memory") || strings.Contains(msg, "outofmemory")
}

type runtimeClient struct {
	base *url.URL
	http *http.Client
}

func newRuntimeClient(rawURL string, client *http.Client) (*runtimeClient, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("runtime url is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse runtime url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("runtime url %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("runtime url %q: missing host", rawURL)
	}
	if client == nil {
		client = &http.Client{}
	}
	return &runtimeClient{base: u, http: client}, nil
}

func (c *runtimeClient) endpoint(route string) string {
	return c.base.JoinPath(route).String()
}

func (c *runtimeClient) info(ctx context.Context) (runtimeInfo, error) {
	var info runtimeInfo
	raw, err := c.do(ctx, http.MethodGet, "info", nil)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return info, fmt.Errorf("decode runtime info: %w", err)
	}
	return info, nil
}

func (c *runtimeClient) generate(ctx context.Context, req generateRequest) ([]generation, error) {
	raw, err := c.do(ctx, http.MethodPost, "generate", req)
	if err != nil {
		return nil, err
	}
	return decodeGenerations(raw)
}

// decodeGenerations accepts the flat list a pipeline returns for one input
// and the nested form some servers use for batched inputs of size one.
func decodeGenerations(raw []byte) ([]generation, error) {
	var flat []generation
	flatErr := json.Unmarshal(raw, &flat)
	if flatErr == nil {
		return flat, nil
	}
	var nested [][]generation
	if err := json.Unmarshal(raw, &nested); err == nil {
		if len(nested) != 1 {
			return nil, fmt.Errorf("expected generations for 1 input, got %d", len(nested))
		}
		return nested[0], nil
	}
	return nil, fmt.Errorf("decode generations: %w", flatErr)
}

func (c *runtimeClient) do(ctx context.Context, method, route string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", route, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(route), reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", route, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", route, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, raw)
	}
	return raw, nil
}

func statusError(code int, raw []byte) error {
	serr := &runtimeStatusError{StatusCode: code}
	var body runtimeErrorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		serr.Type = body.ErrorType
		serr.Message = body.Error
		if serr.Message == "" {
			serr.Message = body.Detail
		}
	}
	if serr.Message == "" {
		serr.Message = strings.TrimSpace(string(raw))
	}
	return serr
}

func asStatusError(err error) (*runtimeStatusError, bool) {
	var serr *runtimeStatusError
	if errors.As(err, &serr) {
		return serr, true
	}
	return nil, false
}
