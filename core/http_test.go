package skate

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestHTTPEvalRawBody(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.HTTPHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/eval", strings.NewReader("(+ 1 2)")))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	value := decodeBody(t, rec)["value"].(map[string]any)
	if value["text"] != "3" {
		t.Fatalf("unexpected value: %v", value)
	}
}

func TestHTTPEvalJSONBody(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.HTTPHandler()

	req := httptest.NewRequest(http.MethodPost, "/eval", strings.NewReader(`{"expr": "(def 'x' 'y')"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/eval", strings.NewReader(`{"expr":`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", rec.Code)
	}
}

func TestHTTPEvalJSONWithParameters(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.HTTPHandler()
	for _, ct := range []string{"application/json; charset=utf-8", "Application/JSON"} {
		req := httptest.NewRequest(http.MethodPost, "/eval", strings.NewReader(`{"expr": "(+ 2 3)"}`))
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", ct, rec.Code, rec.Body.String())
		}
		if value := decodeBody(t, rec)["value"].(map[string]any); value["text"] != "5" {
			t.Fatalf("%s: unexpected value: %v", ct, value)
		}
	}
}

func TestHTTPEvalNonJSONBodyIsSource(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/eval", strings.NewReader("(+ 2 3)"))
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHTTPEvalError(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/eval", strings.NewReader("()")))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if resp := decodeBody(t, rec); resp["error"] != ErrEmptyList.Error() {
		t.Fatalf("unexpected error: %v", resp["error"])
	}
}

func TestHTTPMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.HTTPHandler()
	tests := []struct {
		method, path, allow string
	}{
		{http.MethodGet, "/eval", http.MethodPost},
		{http.MethodPost, "/env", http.MethodGet},
		{http.MethodDelete, "/traces", http.MethodGet},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s %s: expected 405, got %d", tt.method, tt.path, rec.Code)
		}
		if got := rec.Header().Get("Allow"); got != tt.allow {
			t.Fatalf("%s %s: Allow %q, want %q", tt.method, tt.path, got, tt.allow)
		}
	}
}

func TestHTTPEnvAndTraces(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.HTTPHandler()
	for _, expr := range []string{"(def 'a' 1)", "(def 'b' 2)"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/eval", strings.NewReader(expr)))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/env", nil))
	entries := decodeBody(t, rec)["value"].([]any)
	if len(entries) != len(Builtins())+2 {
		t.Fatalf("expected %d bindings, got %d", len(Builtins())+2, len(entries))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/traces?n=1", nil))
	traces := decodeBody(t, rec)["value"].([]any)
	if len(traces) != 1 || traces[0].(map[string]any)["input"] != "(def 'b' 2)" {
		t.Fatalf("unexpected traces: %v", traces)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/traces?n=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad n, got %d", rec.Code)
	}
}

func TestHTTPManualAndNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.HTTPHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || decodeBody(t, rec)["ok"] != true {
		t.Fatalf("manual: %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
