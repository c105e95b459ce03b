package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/scout/internal/enrich"
	"github.com/fortuna/scout/internal/ingest/wiki"
	"github.com/fortuna/scout/internal/ingest/wiki/wikitest"
	"github.com/fortuna/scout/internal/similarity"
)

// gatedEnricher answers lookups with a fixed image per name. Lookups for
// names in gates block until the gate channel is closed.
type gatedEnricher struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func newGatedEnricher() *gatedEnricher {
	return &gatedEnricher{gates: make(map[string]chan struct{})}
}

func (g *gatedEnricher) hold(name string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[name] = ch
	return ch
}

func (g *gatedEnricher) Lookup(ctx context.Context, name string) enrich.Result {
	g.mu.Lock()
	gate := g.gates[name]
	g.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return enrich.Result{}
		}
	}

	img := "https://upload.example/" + name + ".jpg"
	team := "Team of " + name
	return enrich.Result{ImageURL: &img, Team: &team}
}

func (g *gatedEnricher) EnrichRoster(ctx context.Context, players []similarity.PlayerRecord, apply func(i int, r enrich.Result)) []enrich.Result {
	results := make([]enrich.Result, len(players))
	var wg sync.WaitGroup
	for i, p := range players {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = g.Lookup(ctx, name)
			apply(i, results[i])
		}(i, p.Name)
	}
	wg.Wait()
	return results
}

func newManager(t *testing.T, e Enricher) *Manager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return NewManager(ctx, similarity.NewFixtureProvider(), e)
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestSelect_Validation(t *testing.T) {
	m := newManager(t, newGatedEnricher())
	ctx := context.Background()

	tests := []struct {
		name     string
		position string
		player   string
		want     error
	}{
		{"missing position", "", "Lionel Messi", ErrMissingSelection},
		{"missing player", "cf", "  ", ErrMissingSelection},
		{"unknown position", "sweeper", "Lionel Messi", ErrUnknownPosition},
		{"player not in roster", "gk", "Lionel Messi", ErrPlayerNotInRoster},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Select(ctx, tt.position, tt.player)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, ok := m.Current(); ok {
		t.Error("failed selections must not create a current selection")
	}
}

func TestSelect_EnrichesAllSlots(t *testing.T) {
	m := newManager(t, newGatedEnricher())

	snap, err := m.Select(context.Background(), "cb", "Virgil van Dijk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.ID != 1 || len(snap.Similar) != 5 || snap.Pending != 6 {
		t.Fatalf("unexpected initial snapshot: id=%d similar=%d pending=%d", snap.ID, len(snap.Similar), snap.Pending)
	}
	if len(snap.Comparisons) != 5 || len(snap.UniqueTraits) != 10 {
		t.Errorf("expected comparisons and unique traits to be loaded")
	}

	final, err := m.Wait(waitCtx(t), snap.ID)
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if !final.Done || final.Pending != 0 || final.Version != 6 {
		t.Errorf("unexpected final state: done=%v pending=%d version=%d", final.Done, final.Pending, final.Version)
	}
	if final.Player.ImageURL == "" {
		t.Error("expected main player image")
	}
	for _, p := range final.Similar {
		if p.ImageURL != "https://upload.example/"+p.Name+".jpg" || p.Team != "Team of "+p.Name {
			t.Errorf("slot for %s holds %+v", p.Name, p)
		}
	}
}

func TestSelect_NoFixtureStillEnrichesMainPlayer(t *testing.T) {
	m := newManager(t, newGatedEnricher())

	snap, err := m.Select(context.Background(), "gk", "Ederson")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snap.Similar) != 0 || snap.Pending != 1 {
		t.Fatalf("expected empty similar list, got %+v", snap)
	}

	final, err := m.Wait(waitCtx(t), snap.ID)
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	if final.Player.Team != "Team of Ederson" {
		t.Errorf("unexpected main player %+v", final.Player)
	}
}

func TestSelect_MainPlayerNotGatedByRoster(t *testing.T) {
	e := newGatedEnricher()
	gate := e.hold("Mohamed Salah")
	defer close(gate)

	m := newManager(t, e)
	updates := make(chan Snapshot, 16)
	m.OnUpdate(func(s Snapshot) { updates <- s })

	if _, err := m.Select(context.Background(), "cf", "Lionel Messi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case s := <-updates:
			if s.Player.ImageURL != "" {
				if s.Done {
					t.Error("selection should not be done while a roster lookup is held")
				}
				return
			}
		case <-deadline:
			t.Fatal("main player was not enriched while roster lookup was pending")
		}
	}
}

func TestSelect_StaleResultsIgnored(t *testing.T) {
	e := newGatedEnricher()
	gates := []chan struct{}{e.hold("Lionel Messi")}
	for _, n := range []string{"Mohamed Salah", "Kevin De Bruyne", "Neymar Jr", "Bernardo Silva"} {
		gates = append(gates, e.hold(n))
	}

	m := newManager(t, e)
	var mu sync.Mutex
	var events []ResultEvent
	m.OnResult(func(ev ResultEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})

	first, err := m.Select(context.Background(), "cf", "Lionel Messi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := m.Select(context.Background(), "cb", "Virgil van Dijk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("selection ids must increase: %d then %d", first.ID, second.ID)
	}

	if _, err := m.Wait(waitCtx(t), first.ID); !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded waiting on old selection, got %v", err)
	}

	final, err := m.Wait(waitCtx(t), second.ID)
	if err != nil {
		t.Fatalf("wait failed: %v", err)
	}

	// release the stale lookups and give them time to land
	for _, g := range gates {
		close(g)
	}
	time.Sleep(100 * time.Millisecond)

	cur, _ := m.Current()
	if cur.ID != second.ID || cur.Player.Name != "Virgil van Dijk" {
		t.Fatalf("current selection changed: %+v", cur.Player)
	}
	if cur.Version != final.Version {
		t.Errorf("stale results changed the current selection: version %d -> %d", final.Version, cur.Version)
	}
	if cur.Player.ImageURL != "https://upload.example/Virgil van Dijk.jpg" {
		t.Errorf("main player image overwritten: %q", cur.Player.ImageURL)
	}
	for _, p := range cur.Similar {
		if p.ImageURL != "https://upload.example/"+p.Name+".jpg" {
			t.Errorf("slot %s holds stale data %q", p.Name, p.ImageURL)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, ev := range events {
		if ev.SelectionID == first.ID {
			t.Errorf("stale result for %s was published", ev.Player)
		}
	}
}

func TestSelect_SlowListenerCannotReorderSelections(t *testing.T) {
	e := newGatedEnricher()
	similar, _ := similarity.NewFixtureProvider().FindSimilar(context.Background(), "Lionel Messi")
	var gates []chan struct{}
	for _, p := range similar {
		gates = append(gates, e.hold(p.Name))
	}
	defer func() {
		for _, g := range gates {
			close(g)
		}
	}()

	m := newManager(t, e)

	type delivery struct {
		kind string
		id   uint64
	}
	var mu sync.Mutex
	var seen []delivery
	record := func(kind string, id uint64) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, delivery{kind, id})
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	m.OnResult(func(ev ResultEvent) {
		record("result", ev.SelectionID)
		if ev.SelectionID == 1 {
			once.Do(func() { close(entered) })
			<-release
		}
	})
	m.OnUpdate(func(s Snapshot) { record("update", s.ID) })

	if _, err := m.Select(context.Background(), "cf", "Lionel Messi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("main player result never reached the listener")
	}

	selected := make(chan Snapshot, 1)
	go func() {
		snap, err := m.Select(context.Background(), "cb", "Virgil van Dijk")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		selected <- snap
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)

	second := <-selected
	if _, err := m.Wait(waitCtx(t), second.ID); err != nil {
		t.Fatalf("wait failed: %v", err)
	}
	// the final update is delivered after Wait returns
	m.notifyMu.Lock()
	m.notifyMu.Unlock()

	mu.Lock()
	defer mu.Unlock()

	firstNew := -1
	for i, d := range seen {
		if d.id == second.ID {
			firstNew = i
			break
		}
	}
	if firstNew < 0 {
		t.Fatal("no deliveries for the new selection")
	}
	for _, d := range seen[firstNew:] {
		if d.id != second.ID {
			t.Errorf("%s for selection %d delivered after selection %d began", d.kind, d.id, second.ID)
		}
	}
	if last := seen[len(seen)-1]; last.kind != "update" || last.id != second.ID {
		t.Errorf("last delivery %+v does not belong to selection %d", last, second.ID)
	}
}

func TestSelect_ShutdownSettlesPendingSlots(t *testing.T) {
	srv := wikitest.NewServer()
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := enrich.NewEnricher(wiki.NewClient(srv.URL, wiki.NewHTTPFetcher(time.Second, "")), enrich.Options{Concurrency: 1})
	m := NewManager(ctx, similarity.NewFixtureProvider(), e)

	snap, err := m.Select(context.Background(), "cf", "Lionel Messi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final, err := m.Wait(waitCtx(t), snap.ID)
	if err != nil {
		t.Fatalf("wait failed after shutdown: %v", err)
	}
	if !final.Done || final.Pending != 0 {
		t.Errorf("expected every slot settled, done=%v pending=%d", final.Done, final.Pending)
	}
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	m := newManager(t, newGatedEnricher())
	snap, _ := m.Select(context.Background(), "cf", "Lionel Messi")
	m.Wait(waitCtx(t), snap.ID)

	cur, _ := m.Current()
	cur.Similar[0].Name = "Mutated"

	again, _ := m.Current()
	if again.Similar[0].Name == "Mutated" {
		t.Error("Current must return an independent copy")
	}
}

func TestWait_NoSelection(t *testing.T) {
	m := newManager(t, newGatedEnricher())
	if _, err := m.Wait(context.Background(), 1); !errors.Is(err, ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
	if m.CurrentID() != 0 {
		t.Errorf("expected id 0, got %d", m.CurrentID())
	}
}
