package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/scout/internal/catalog"
	"github.com/fortuna/scout/internal/enrich"
	"github.com/fortuna/scout/internal/similarity"
)

var (
	// ErrMissingSelection is returned when position or player is empty
	ErrMissingSelection = errors.New("select both a position and a player to compare")

	// ErrUnknownPosition is returned for position codes without a roster
	ErrUnknownPosition = errors.New("unknown position")

	// ErrPlayerNotInRoster is returned when the player is not listed for the position
	ErrPlayerNotInRoster = errors.New("player not in position roster")

	// ErrSuperseded is returned by Wait when a newer selection replaced the awaited one
	ErrSuperseded = errors.New("selection superseded")

	// ErrNoSelection is returned by Wait before anything was selected
	ErrNoSelection = errors.New("no active selection")
)

// Enricher is the lookup surface used by the manager
type Enricher interface {
	Lookup(ctx context.Context, name string) enrich.Result
	EnrichRoster(ctx context.Context, players []similarity.PlayerRecord, apply func(i int, r enrich.Result)) []enrich.Result
}

// ResultEvent describes one enrichment result applied to the current selection
type ResultEvent struct {
	SelectionID uint64        `json:"selection_id"`
	Player      string        `json:"player"`
	Result      enrich.Result `json:"result"`
}

// state is the mutable selection guarded by Manager.mu
type state struct {
	snap Snapshot
	done chan struct{}
	// replaced is closed when a newer selection takes over
	replaced chan struct{}
}

// Manager owns the current selection. Every Select gets a new, strictly
// increasing id; enrichment results are applied only while their id is
// still current.
type Manager struct {
	provider similarity.Provider
	enricher Enricher
	ctx      context.Context

	// notifyMu orders listener calls with selection changes; taken before mu
	notifyMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	current *state

	listenersMu sync.RWMutex
	onUpdate    []func(Snapshot)
	onResult    []func(ResultEvent)
}

// NewManager creates a manager. Enrichment runs under ctx and stops when it is done.
func NewManager(ctx context.Context, provider similarity.Provider, enricher Enricher) *Manager {
	return &Manager{
		provider: provider,
		enricher: enricher,
		ctx:      ctx,
	}
}

// OnUpdate registers a callback run after every change to the current selection
func (m *Manager) OnUpdate(fn func(Snapshot)) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.onUpdate = append(m.onUpdate, fn)
}

// OnResult registers a callback run for every applied enrichment result
func (m *Manager) OnResult(fn func(ResultEvent)) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.onResult = append(m.onResult, fn)
}

// Select starts a new selection for player at position. Fixture data is
// loaded fresh, enrichment of the player and of every similar player starts
// in the background, and the initial snapshot is returned.
func (m *Manager) Select(ctx context.Context, position, player string) (Snapshot, error) {
	position = strings.TrimSpace(position)
	player = strings.TrimSpace(player)

	if position == "" || player == "" {
		return Snapshot{}, ErrMissingSelection
	}
	if !catalog.Known(position) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownPosition, position)
	}
	if !catalog.Contains(position, player) {
		return Snapshot{}, fmt.Errorf("%w: %s is not listed for %s", ErrPlayerNotInRoster, player, position)
	}

	snap, err := m.load(ctx, position, player)
	if err != nil {
		return Snapshot{}, err
	}

	st := &state{snap: snap, done: make(chan struct{}), replaced: make(chan struct{})}

	m.notifyMu.Lock()
	m.mu.Lock()
	m.nextID++
	st.snap.ID = m.nextID
	if m.current != nil {
		close(m.current.replaced)
	}
	m.current = st
	initial := st.snap.clone()
	m.mu.Unlock()

	log.Printf("[session] selection %d: %s (%s), %d similar players", initial.ID, player, position, len(initial.Similar))
	m.notify(initial, nil)
	m.notifyMu.Unlock()

	m.startEnrichment(initial.ID, player, initial.Similar)

	return initial, nil
}

// load reads the fixtures for a selection
func (m *Manager) load(ctx context.Context, position, player string) (Snapshot, error) {
	similar, err := m.provider.FindSimilar(ctx, player)
	if err != nil {
		return Snapshot{}, fmt.Errorf("finding similar players: %w", err)
	}

	comparisons := make(map[string]*similarity.Comparison, len(similar))
	for _, other := range similar {
		c, ok, err := m.provider.GetComparisonStats(ctx, player, other.Name)
		if err != nil {
			return Snapshot{}, fmt.Errorf("loading comparison with %s: %w", other.Name, err)
		}
		if ok {
			comparisons[other.Name] = c
		}
	}

	unique, err := m.provider.UniqueTraits(ctx, player)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading unique traits: %w", err)
	}

	label, _ := catalog.Label(position)

	return Snapshot{
		Position:      position,
		PositionLabel: label,
		Player:        similarity.PlayerRecord{Name: player, Similarity: 100},
		Similar:       similar,
		Comparisons:   comparisons,
		UniqueTraits:  unique,
		Pending:       len(similar) + 1,
		StartedAt:     time.Now(),
	}, nil
}

// startEnrichment looks up the selected player and the similar players
// independently; neither waits for the other.
func (m *Manager) startEnrichment(id uint64, player string, similar []similarity.PlayerRecord) {
	go func() {
		r := m.enricher.Lookup(m.ctx, player)
		m.apply(id, -1, player, r)
	}()

	if len(similar) == 0 {
		return
	}

	go func() {
		m.enricher.EnrichRoster(m.ctx, similar, func(i int, r enrich.Result) {
			m.apply(id, i, similar[i].Name, r)
		})
	}()
}

// apply writes one result into slot (-1 for the selected player) if id is
// still the current selection. Listeners for id are done before a newer
// selection is announced.
func (m *Manager) apply(id uint64, slot int, name string, r enrich.Result) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	if m.current == nil || m.current.snap.ID != id {
		m.mu.Unlock()
		log.Printf("[session] dropping stale result for %s (selection %d)", name, id)
		return
	}

	st := m.current
	if slot < 0 {
		enrich.Apply(&st.snap.Player, r)
	} else if slot < len(st.snap.Similar) {
		enrich.Apply(&st.snap.Similar[slot], r)
	}

	st.snap.Pending--
	st.snap.Version++
	if st.snap.Pending == 0 {
		st.snap.Done = true
		close(st.done)
		log.Printf("[session] selection %d enrichment complete", id)
	}
	snap := st.snap.clone()
	m.mu.Unlock()

	m.notify(snap, &ResultEvent{SelectionID: id, Player: name, Result: r})
}

func (m *Manager) notify(snap Snapshot, ev *ResultEvent) {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()

	if ev != nil {
		for _, fn := range m.onResult {
			fn(*ev)
		}
	}
	for _, fn := range m.onUpdate {
		fn(snap)
	}
}

// Current returns a copy of the current selection; ok is false before the first Select
func (m *Manager) Current() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Snapshot{}, false
	}
	return m.current.snap.clone(), true
}

// CurrentID returns the id of the current selection, 0 before the first Select
func (m *Manager) CurrentID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return 0
	}
	return m.current.snap.ID
}

// Wait blocks until enrichment of selection id completes and returns the
// final snapshot. It fails with ErrSuperseded when another selection
// replaced id, before or while waiting.
func (m *Manager) Wait(ctx context.Context, id uint64) (Snapshot, error) {
	m.mu.Lock()
	st := m.current
	var currentID uint64
	if st != nil {
		currentID = st.snap.ID
	}
	m.mu.Unlock()

	if st == nil {
		return Snapshot{}, ErrNoSelection
	}
	if currentID != id {
		return Snapshot{}, ErrSuperseded
	}

	select {
	case <-st.done:
	case <-st.replaced:
		return Snapshot{}, ErrSuperseded
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != st {
		return Snapshot{}, ErrSuperseded
	}
	return st.snap.clone(), nil
}
