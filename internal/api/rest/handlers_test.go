package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fortuna/scout/internal/api/rest"
	"github.com/fortuna/scout/internal/enrich"
	"github.com/fortuna/scout/internal/ingest/wiki"
	"github.com/fortuna/scout/internal/ingest/wiki/wikitest"
	"github.com/fortuna/scout/internal/session"
	"github.com/fortuna/scout/internal/similarity"
)

// MockBackend implements rest.HealthChecker for testing
type MockBackend struct {
	shouldError bool
}

func (m *MockBackend) HealthCheck(ctx context.Context) error {
	if m.shouldError {
		return errors.New("connection refused")
	}
	return nil
}

type fixture struct {
	handler *rest.Handler
	router  http.Handler
	manager *session.Manager
	wiki    *wikitest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	srv := wikitest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddPlayer("Virgil van Dijk", wikitest.Article{
		Thumbnail: "https://upload.example/vvd.jpg",
		Extract:   "Virgil van Dijk is a Dutch professional footballer who plays as a centre-back for Premier League club Liverpool.",
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	provider := similarity.NewFixtureProvider()
	enricher := enrich.NewEnricher(wiki.NewClient(srv.URL, wiki.NewHTTPFetcher(5*time.Second, "")), enrich.Options{})
	manager := session.NewManager(ctx, provider, enricher)

	h := rest.NewHandler(provider, enricher, manager)
	return &fixture{
		handler: h,
		router:  rest.NewRouter(h, []string{"*"}),
		manager: manager,
		wiki:    srv,
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestHealthCheck_Success(t *testing.T) {
	f := newFixture(t)
	f.handler.AddBackend("redis", &MockBackend{})

	w := f.do(t, "GET", "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]interface{}
	decode(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("expected status healthy, got %v", resp["status"])
	}
}

func TestHealthCheck_BackendDown(t *testing.T) {
	f := newFixture(t)
	f.handler.AddBackend("redis", &MockBackend{shouldError: true})

	w := f.do(t, "GET", "/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestGetPositions(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/v1/positions", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var positions []struct {
		Code  string `json:"code"`
		Label string `json:"label"`
	}
	decode(t, w, &positions)
	if len(positions) != 10 {
		t.Fatalf("expected 10 positions, got %d", len(positions))
	}
	if positions[0].Code != "gk" || positions[0].Label == "" {
		t.Errorf("unexpected first position %+v", positions[0])
	}
}

func TestGetRoster(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantCount  int
	}{
		{"full roster", "/api/v1/positions/cb/players", http.StatusOK, 6},
		{"filtered", "/api/v1/positions/cb/players?q=van+d", http.StatusOK, 1},
		{"no match", "/api/v1/positions/cb/players?q=zzz", http.StatusOK, 0},
		{"legacy alias", "/api/v1/positions/fwd/players", http.StatusOK, 18},
		{"unknown position", "/api/v1/positions/sweeper/players", http.StatusNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, "GET", tt.path, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var resp struct {
				Players []string `json:"players"`
				Count   int      `json:"count"`
			}
			decode(t, w, &resp)
			if resp.Count != tt.wantCount || len(resp.Players) != tt.wantCount {
				t.Errorf("expected %d players, got %d (%v)", tt.wantCount, resp.Count, resp.Players)
			}
		})
	}
}

func TestGetSimilarPlayers(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/v1/players/Virgil%20van%20Dijk/similar", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Player  string                    `json:"player"`
		Similar []similarity.PlayerRecord `json:"similar"`
	}
	decode(t, w, &resp)
	if resp.Player != "Virgil van Dijk" || len(resp.Similar) != 5 {
		t.Errorf("unexpected response %+v", resp)
	}

	w = f.do(t, "GET", "/api/v1/players/Nobody/similar", "")
	decode(t, w, &resp)
	if resp.Similar == nil || len(resp.Similar) != 0 {
		t.Errorf("expected empty list for unknown player, got %v", resp.Similar)
	}
}

func TestGetComparison(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/v1/players/Lionel%20Messi/compare/Mohamed%20Salah", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var cmp similarity.Comparison
	decode(t, w, &cmp)
	if len(cmp.Stats) == 0 {
		t.Error("expected stat rows")
	}

	w = f.do(t, "GET", "/api/v1/players/Lionel%20Messi/compare/Nobody", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestGetUniqueTraits(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/v1/players/Virgil%20van%20Dijk/traits", "")
	var resp struct {
		Traits []similarity.TraitDelta `json:"traits"`
	}
	decode(t, w, &resp)
	if len(resp.Traits) != 10 {
		t.Errorf("expected 10 traits, got %d", len(resp.Traits))
	}
}

func TestGetPlayerInfo(t *testing.T) {
	f := newFixture(t)
	f.wiki.Fail("Kevin De Bruyne")

	tests := []struct {
		name      string
		path      string
		wantImage *string
		wantTeam  *string
	}{
		{"found", "/api/v1/players/Virgil%20van%20Dijk/info", strPtr("https://upload.example/vvd.jpg"), strPtr("Liverpool")},
		{"not found", "/api/v1/players/Nobody/info", nil, nil},
		{"upstream error", "/api/v1/players/Kevin%20De%20Bruyne/info", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, "GET", tt.path, "")
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}

			var r enrich.Result
			decode(t, w, &r)
			if !sameString(r.ImageURL, tt.wantImage) || !sameString(r.Team, tt.wantTeam) {
				t.Errorf("unexpected result image=%v team=%v", deref(r.ImageURL), deref(r.Team))
			}
		})
	}
}

func TestCreateSelection_Errors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"missing player", `{"position":"cb"}`, http.StatusBadRequest},
		{"unknown position", `{"position":"sweeper","player":"Virgil van Dijk"}`, http.StatusNotFound},
		{"not in roster", `{"position":"gk","player":"Virgil van Dijk"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, "POST", "/api/v1/session", tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestSelection_StartAndWait(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, "GET", "/api/v1/session", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 before any selection, got %d", w.Code)
	}

	w = f.do(t, "POST", "/api/v1/session", `{"position":"cb","player":"Virgil van Dijk"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", w.Code)
	}
	var initial session.Snapshot
	decode(t, w, &initial)
	if initial.ID != 1 || initial.Pending != 6 || initial.PositionLabel == "" {
		t.Errorf("unexpected initial snapshot id=%d pending=%d", initial.ID, initial.Pending)
	}

	w = f.do(t, "GET", "/api/v1/session?wait=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var final session.Snapshot
	decode(t, w, &final)
	if !final.Done || final.ID != initial.ID {
		t.Errorf("expected completed selection %d, got id=%d done=%v", initial.ID, final.ID, final.Done)
	}
	if final.Player.ImageURL != "https://upload.example/vvd.jpg" || final.Player.Team != "Liverpool" {
		t.Errorf("main player not enriched: %+v", final.Player)
	}
	for _, p := range final.Similar {
		// the fake API knows none of the similar players
		if p.ImageURL != "" || p.Team != "" {
			t.Errorf("expected %s to stay unenriched, got %+v", p.Name, p)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest("OPTIONS", "/api/v1/session", nil)
	req.Header.Set("Origin", "https://ui.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("expected Access-Control-Allow-Origin on preflight response")
	}
	if w.Code == http.StatusMethodNotAllowed {
		t.Error("preflight must not reach the method router")
	}
}

func strPtr(s string) *string { return &s }

func deref(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
