package webui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerServesFrontEnd(t *testing.T) {
	t.Parallel()

	h := Handler()
	cases := []struct {
		path     string
		status   int
		contains string
	}{
		{path: "/static/", status: http.StatusOK, contains: `id="paraphrase-form"`},
		{path: "/static/app.js", status: http.StatusOK, contains: `"/paraphrase"`},
		{path: "/static/style.css", status: http.StatusOK, contains: "textarea"},
		{path: "/static/missing.txt", status: http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s: status got %d want %d", tc.path, rec.Code, tc.status)
		}
		if tc.contains != "" && !strings.Contains(rec.Body.String(), tc.contains) {
			t.Fatalf("%s: body does not contain %q", tc.path, tc.contains)
		}
	}
}
