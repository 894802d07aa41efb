package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestServer(t *testing.T) (*HTTPServer, *fakeStore, *fakePromo) {
	t.Helper()
	svc, st, promo := newTestService(t)
	return NewHTTPServer(svc, "*", zap.NewNop()), st, promo
}

func doJSON(t *testing.T, srv *HTTPServer, method, path string, body any, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	payload := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, payload
}

func startDraft(t *testing.T, srv *HTTPServer) string {
	t.Helper()
	rec, payload := doJSON(t, srv, http.MethodPost, "/api/intake/start", nil, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("start intake: status %d body %s", rec.Code, rec.Body.String())
	}
	id, _ := payload["id"].(string)
	if id == "" {
		t.Fatal("start intake returned no id")
	}
	return id
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec, payload := doJSON(t, srv, http.MethodGet, "/api/health", nil, "")
	if rec.Code != http.StatusOK || payload["ok"] != true {
		t.Fatalf("unexpected health response: %d %v", rec.Code, payload)
	}
}

func TestReadyEndpoint(t *testing.T) {
	srv, st, _ := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodGet, "/api/ready", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected ready, got %d", rec.Code)
	}

	st.pingErr = fmt.Errorf("connection refused")
	rec, payload := doJSON(t, srv, http.MethodGet, "/api/ready", nil, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if payload["status"] != "not_ready" {
		t.Errorf("unexpected payload: %v", payload)
	}
}

func TestIntakeLifecycleOverHTTP(t *testing.T) {
	srv, _, _ := newTestServer(t)
	id := startDraft(t, srv)

	rec, payload := doJSON(t, srv, http.MethodGet, "/api/intake/"+id, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get draft: status %d", rec.Code)
	}
	if _, ok := payload["draft"]; !ok {
		t.Fatal("get draft returned no draft")
	}

	rec, payload = doJSON(t, srv, http.MethodPatch, "/api/intake/"+id, map[string]any{
		"basics": map[string]any{"city": "Vilnius"},
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("patch draft: status %d body %s", rec.Code, rec.Body.String())
	}
	draft := payload["draft"].(map[string]any)
	if draft["basics"].(map[string]any)["city"] != "Vilnius" {
		t.Error("patch was not applied")
	}

	rec, payload = doJSON(t, srv, http.MethodPost, "/api/intake/"+id+"/submit", map[string]any{
		"confirmContradictions": false,
	}, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 without consents, got %d", rec.Code)
	}
	if payload["code"] != "VALIDATION_FAILED" {
		t.Errorf("unexpected error payload: %v", payload)
	}

	doJSON(t, srv, http.MethodPatch, "/api/intake/"+id, map[string]any{
		"consents": map[string]any{"conceptOnly": true, "revisionPolicy": true, "privacy": true},
	}, "")
	rec, payload = doJSON(t, srv, http.MethodPost, "/api/intake/"+id+"/submit", map[string]any{
		"confirmContradictions": false,
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d body %s", rec.Code, rec.Body.String())
	}
	if _, ok := payload["project"]; !ok {
		t.Error("submit returned no project summary")
	}

	rec, payload = doJSON(t, srv, http.MethodGet, "/api/intake/"+id+"/history", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("history: status %d", rec.Code)
	}
	revs := payload["revisions"].([]any)
	if len(revs) < 2 {
		t.Fatalf("expected at least start and submit revisions, got %d", len(revs))
	}

	hash := revs[0].(map[string]any)["hash"].(string)
	rec, payload = doJSON(t, srv, http.MethodGet, "/api/intake/"+id+"/history/"+hash, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("revision: status %d body %s", rec.Code, rec.Body.String())
	}
	if _, ok := payload["draft"]; !ok {
		t.Error("revision returned no draft")
	}

	rec, _ = doJSON(t, srv, http.MethodGet, "/api/intake/"+id+"/history/ffffffff", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown revision, got %d", rec.Code)
	}
}

func TestIntakeRejectsNonUUIDPaths(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, id := range []string{
		"not-a-uuid",
		"6FA459EA-EE8A-3CA4-894E-DB77E160355E", // uppercase
		"6fa459ea-ee8a-3ca4-894e-db77e160355e", // v3
		"../../etc/passwd",
	} {
		rec, _ := doJSON(t, srv, http.MethodGet, "/api/intake/"+id, nil, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("id %q: expected 404, got %d", id, rec.Code)
		}
	}
}

func TestPromoEndpoints(t *testing.T) {
	srv, st, promo := newTestServer(t)

	rec, payload := doJSON(t, srv, http.MethodGet, "/api/promo/slots", nil, "")
	if rec.Code != http.StatusOK || payload["slotsLeft"] != float64(5) {
		t.Fatalf("unexpected slots response: %d %v", rec.Code, payload)
	}

	rec, payload = doJSON(t, srv, http.MethodPost, "/api/promo/reveal", map[string]any{
		"email": "prospect@example.com",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("reveal: status %d body %s", rec.Code, rec.Body.String())
	}
	if payload["priceFrom"] != float64(PriceFrom) {
		t.Errorf("unexpected price: %v", payload["priceFrom"])
	}
	if len(st.leads) != 1 {
		t.Fatalf("expected one lead, got %d", len(st.leads))
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/events", map[string]any{"name": "hero_cta_click"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("event: status %d", rec.Code)
	}
	if promo.events["hero_cta_click"] != 1 {
		t.Error("event not recorded")
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/events", map[string]any{"name": "Bad Name!"}, "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for bad event name, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	srv, _, _ := newTestServer(t)

	for _, path := range []string{"/api/admin/projects", "/api/admin/events", "/api/admin/leads"} {
		rec, _ := doJSON(t, srv, http.MethodGet, path, nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
		rec, _ = doJSON(t, srv, http.MethodGet, path, nil, "bogus-token")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s with bogus token: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestAdminFlowOverHTTP(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec, _ := doJSON(t, srv, http.MethodPost, "/api/admin/login", map[string]any{"password": "wrong"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}

	rec, payload := doJSON(t, srv, http.MethodPost, "/api/admin/login", map[string]any{"password": testAdminPassword}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status %d", rec.Code)
	}
	token := payload["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}

	// Submit one project so the dashboard has data.
	id := startDraft(t, srv)
	doJSON(t, srv, http.MethodPatch, "/api/intake/"+id, map[string]any{
		"basics":   map[string]any{"city": "Vilnius"},
		"consents": map[string]any{"conceptOnly": true, "revisionPolicy": true, "privacy": true},
	}, "")
	rec, _ = doJSON(t, srv, http.MethodPost, "/api/intake/"+id+"/submit", map[string]any{"confirmContradictions": false}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: status %d body %s", rec.Code, rec.Body.String())
	}

	rec, payload = doJSON(t, srv, http.MethodGet, "/api/admin/projects", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("projects: status %d", rec.Code)
	}
	if projects := payload["projects"].([]any); len(projects) != 1 {
		t.Errorf("expected one project, got %d", len(projects))
	}

	rec, payload = doJSON(t, srv, http.MethodGet, "/api/admin/projects/search?q=vilnius", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status %d", rec.Code)
	}
	if results := payload["results"].([]any); len(results) != 1 {
		t.Errorf("expected one search hit, got %d", len(results))
	}

	rec, payload = doJSON(t, srv, http.MethodGet, "/api/admin/events", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("events: status %d", rec.Code)
	}
	events := payload["events"].(map[string]any)
	if events["intake_submitted"] != float64(1) {
		t.Errorf("unexpected event counts: %v", events)
	}

	rec, _ = doJSON(t, srv, http.MethodPost, "/api/admin/logout", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status %d", rec.Code)
	}
	rec, _ = doJSON(t, srv, http.MethodGet, "/api/admin/projects", nil, token)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", rec.Code)
	}
}

func TestCORSAndRequestID(t *testing.T) {
	srv, _, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request ID header")
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), "PATCH") {
		t.Error("PATCH must be an allowed method")
	}
}
