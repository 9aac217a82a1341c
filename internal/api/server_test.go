package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"go.uber.org/mock/gomock"

	"github.com/samcharles93/paraphrase/internal/logger"
	"github.com/samcharles93/paraphrase/internal/modelhost"
	"github.com/samcharles93/paraphrase/internal/modelhost/mocks"
)

func newTestEcho(t *testing.T, host modelhost.Generator) *echo.Echo {
	t.Helper()
	server := NewServer(host, ServerConfig{Logger: logger.Nop()})
	server.cudaAvailable = func() bool { return false }
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}

func TestParaphraseReturnsRequestedSequences(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	host := mocks.NewMockGenerator(ctrl)
	host.EXPECT().
		Generate(gomock.Any(), "Привет, как дела?", modelhost.Options{NumReturnSequences: 2, NumBeams: 5, Temperature: 1.0}).
		Return([]string{"Здравствуй, как ты?", "Как у тебя дела?"}, nil)
	host.EXPECT().Device().Return("cpu").AnyTimes()

	e := newTestEcho(t, host)
	rec := doJSON(t, e, http.MethodPost, "/paraphrase",
		`{"text":"Привет, как дела?","num_return_sequences":2,"num_beams":5,"temperature":1.0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}

	resp := decodeBody[ParaphraseResponse](t, rec)
	if resp.OriginalText != "Привет, как дела?" {
		t.Fatalf("original_text: got %q", resp.OriginalText)
	}
	if len(resp.Paraphrases) != 2 {
		t.Fatalf("paraphrases: got %d want 2", len(resp.Paraphrases))
	}
	for i, p := range resp.Paraphrases {
		if p == "" {
			t.Fatalf("paraphrase %d is empty", i)
		}
	}
	if resp.Paraphrases[0] != "Здравствуй, как ты?" {
		t.Fatalf("ranking order not preserved: %v", resp.Paraphrases)
	}
	if resp.Device != "cpu" {
		t.Fatalf("device: got %q", resp.Device)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Fatalf("missing %s header", echo.HeaderXRequestID)
	}
}

func TestParaphraseAppliesDefaults(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	host := mocks.NewMockGenerator(ctrl)
	host.EXPECT().
		Generate(gomock.Any(), "  текст с пробелами  ", modelhost.DefaultOptions()).
		Return([]string{"текст"}, nil)
	host.EXPECT().Device().Return("cuda").AnyTimes()

	e := newTestEcho(t, host)
	rec := doJSON(t, e, http.MethodPost, "/paraphrase", `{"text":"  текст с пробелами  "}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[ParaphraseResponse](t, rec)
	if resp.OriginalText != "  текст с пробелами  " {
		t.Fatalf("original_text must be verbatim, got %q", resp.OriginalText)
	}
	if len(resp.Paraphrases) != 1 {
		t.Fatalf("paraphrases: got %d want 1", len(resp.Paraphrases))
	}
}

func TestParaphraseKeepsDuplicates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	host := mocks.NewMockGenerator(ctrl)
	host.EXPECT().
		Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]string{"same", "same", "other"}, nil)
	host.EXPECT().Device().Return("cpu").AnyTimes()

	e := newTestEcho(t, host)
	rec := doJSON(t, e, http.MethodPost, "/paraphrase", `{"text":"x","num_return_sequences":3,"num_beams":3}`)
	resp := decodeBody[ParaphraseResponse](t, rec)
	if got := strings.Join(resp.Paraphrases, ","); got != "same,same,other" {
		t.Fatalf("paraphrases: got %s", got)
	}
}

func TestParaphraseValidationNeverReachesModel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   string
		status int
		detail string
	}{
		{name: "empty text", body: `{"text":""}`, status: http.StatusBadRequest, detail: "Text cannot be empty"},
		{name: "blank text", body: `{"text":" \n\t "}`, status: http.StatusBadRequest, detail: "Text cannot be empty"},
		{name: "missing text", body: `{"num_beams":2}`, status: http.StatusBadRequest, detail: "Text cannot be empty"},
		{name: "malformed json", body: `{"text":`, status: http.StatusBadRequest, detail: "invalid JSON body"},
		{name: "wrong type", body: `{"text":"x","num_beams":"five"}`, status: http.StatusBadRequest, detail: "invalid JSON body"},
		{name: "empty body", body: ``, status: http.StatusBadRequest, detail: "request body is required"},
		{name: "more sequences than beams", body: `{"text":"x","num_return_sequences":6,"num_beams":5}`, status: http.StatusUnprocessableEntity, detail: "must not exceed num_beams"},
		{name: "default beams exceeded", body: `{"text":"x","num_return_sequences":6}`, status: http.StatusUnprocessableEntity, detail: "must not exceed num_beams"},
		{name: "zero beams", body: `{"text":"x","num_beams":0}`, status: http.StatusUnprocessableEntity, detail: "num_beams"},
		{name: "too many beams", body: `{"text":"x","num_beams":17}`, status: http.StatusUnprocessableEntity, detail: "must not exceed 16"},
		{name: "zero sequences", body: `{"text":"x","num_return_sequences":0}`, status: http.StatusUnprocessableEntity, detail: "num_return_sequences"},
		{name: "zero temperature", body: `{"text":"x","temperature":0}`, status: http.StatusUnprocessableEntity, detail: "temperature"},
		{name: "negative temperature", body: `{"text":"x","temperature":-1.5}`, status: http.StatusUnprocessableEntity, detail: "temperature"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// No expectations: any Generate call fails the test.
			ctrl := gomock.NewController(t)
			host := mocks.NewMockGenerator(ctrl)
			e := newTestEcho(t, host)

			rec := doJSON(t, e, http.MethodPost, "/paraphrase", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status: got %d want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if !strings.Contains(resp.Detail, tc.detail) {
				t.Fatalf("detail %q does not contain %q", resp.Detail, tc.detail)
			}
			if resp.RequestID != "" {
				t.Fatalf("client errors must not carry request_id, got %q", resp.RequestID)
			}
		})
	}
}

func TestParaphraseGenerationFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{
			name:   "runtime failure",
			err:    &modelhost.GenerationError{StatusCode: 500, Err: errors.New("tensor shape mismatch")},
			status: http.StatusInternalServerError,
			detail: "paraphrase generation failed",
		},
		{
			name:   "out of memory",
			err:    &modelhost.GenerationError{StatusCode: 500, OOM: true, Err: errors.New("CUDA out of memory")},
			status: http.StatusServiceUnavailable,
			detail: "generation capacity exhausted",
		},
		{
			name:   "timeout",
			err:    &modelhost.GenerationError{Err: fmt.Errorf("POST generate: %w", context.DeadlineExceeded)},
			status: http.StatusGatewayTimeout,
			detail: "paraphrase generation timed out",
		},
		{
			name:   "unexpected error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			detail: "paraphrase generation failed",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			host := mocks.NewMockGenerator(ctrl)
			host.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, tc.err)
			e := newTestEcho(t, host)

			rec := doJSON(t, e, http.MethodPost, "/paraphrase", `{"text":"Привет"}`)
			if rec.Code != tc.status {
				t.Fatalf("status: got %d want %d", rec.Code, tc.status)
			}
			resp := decodeBody[ErrorResponse](t, rec)
			if resp.Detail != tc.detail {
				t.Fatalf("detail: got %q want %q", resp.Detail, tc.detail)
			}
			if strings.Contains(rec.Body.String(), "tensor") || strings.Contains(rec.Body.String(), "boom") {
				t.Fatalf("internal error leaked to client: %s", rec.Body.String())
			}
			if resp.RequestID == "" || resp.RequestID != rec.Header().Get(echo.HeaderXRequestID) {
				t.Fatalf("request_id %q does not match header %q", resp.RequestID, rec.Header().Get(echo.HeaderXRequestID))
			}
		})
	}
}

func TestParaphraseInvalidOptionsFromHost(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	host := mocks.NewMockGenerator(ctrl)
	host.EXPECT().
		Generate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fmt.Errorf("check: %w", modelhost.ErrInvalidOptions))
	e := newTestEcho(t, host)

	rec := doJSON(t, e, http.MethodPost, "/paraphrase", `{"text":"Привет"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: got %d want 422", rec.Code)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	host := mocks.NewMockGenerator(ctrl)
	host.EXPECT().Generate(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
	e := newTestEcho(t, host)

	req := httptest.NewRequest(http.MethodPost, "/paraphrase", strings.NewReader(`{"text":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderXRequestID, "req-42")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get(echo.HeaderXRequestID); got != "req-42" {
		t.Fatalf("header: got %q", got)
	}
	if resp := decodeBody[ErrorResponse](t, rec); resp.RequestID != "req-42" {
		t.Fatalf("request_id: got %q", resp.RequestID)
	}
}

func TestHealthDoesNotGenerate(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	host := mocks.NewMockGenerator(ctrl)
	host.EXPECT().Device().Return("cuda").AnyTimes()
	host.EXPECT().Model().Return(modelhost.DefaultModel).AnyTimes()
	e := newTestEcho(t, host)

	for i := 0; i < 3; i++ {
		rec := doJSON(t, e, http.MethodGet, "/health", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d", rec.Code)
		}
		resp := decodeBody[HealthResponse](t, rec)
		if resp.Status != "ok" || resp.Device != "cuda" || resp.Model != modelhost.DefaultModel {
			t.Fatalf("unexpected health: %+v", resp)
		}
		if !resp.ModelLoaded || !resp.CUDAAvailable {
			t.Fatalf("expected loaded model on cuda: %+v", resp)
		}
	}
}

func TestFrontEndRoutes(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	e := newTestEcho(t, mocks.NewMockGenerator(ctrl))

	rec := doJSON(t, e, http.MethodGet, "/", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/static/" {
		t.Fatalf("redirect: got %d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	rec = doJSON(t, e, http.MethodGet, "/static/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("static index: got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<form") {
		t.Fatalf("static index does not contain the form")
	}
}
