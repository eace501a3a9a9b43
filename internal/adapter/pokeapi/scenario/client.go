// Package scenario provides a deterministic PokemonClient driven by a YAML
// fixture. It stands in for the live API in tests and offline runs, including
// per-id error injection and simulated latency.
package scenario

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"pokedex-service/internal/domain/entity"
	domainService "pokedex-service/internal/domain/service"
	"pokedex-service/internal/pkg/neterr"
)

// Compile-time check
var _ domainService.PokemonClient = (*Client)(nil)

// Fixture describes one scripted API behavior.
type Fixture struct {
	Count   int            `yaml:"count"`
	Entries []EntryFixture `yaml:"entries"`
	Errors  ErrorsFixture  `yaml:"errors"`
	Latency time.Duration  `yaml:"latency"`
}

// EntryFixture is one scripted Pokemon record.
type EntryFixture struct {
	ID        int           `yaml:"id"`
	Name      string        `yaml:"name"`
	SpriteURL string        `yaml:"sprite_url"`
	Types     []string      `yaml:"types"`
	Abilities []string      `yaml:"abilities"`
	Moves     []string      `yaml:"moves"`
	Stats     []StatFixture `yaml:"stats"`
}

// StatFixture is one scripted base stat.
type StatFixture struct {
	Name   string `yaml:"name"`
	Base   int    `yaml:"base"`
	Effort int    `yaml:"effort"`
}

// ErrorsFixture scripts failures: a kind name for the summary call and a
// kind name per Pokemon id for detail calls.
type ErrorsFixture struct {
	Summary string         `yaml:"summary"`
	Details map[int]string `yaml:"details"`
}

// Client is a scripted PokemonClient.
type Client struct {
	fixture Fixture
	byID    map[int]EntryFixture

	summaryCalls atomic.Int64
	detailCalls  atomic.Int64

	mu      sync.Mutex
	handles map[uint64]context.CancelFunc
	nextID  atomic.Uint64
}

// Load reads a fixture file and builds a scripted client from it.
func Load(path string) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario fixture %s: %w", path, err)
	}
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenario fixture %s: %w", path, err)
	}
	return New(f), nil
}

// New builds a scripted client from an in-memory fixture.
func New(f Fixture) *Client {
	byID := make(map[int]EntryFixture, len(f.Entries))
	for _, e := range f.Entries {
		byID[e.ID] = e
	}
	if f.Count == 0 {
		f.Count = len(f.Entries)
	}
	return &Client{
		fixture: f,
		byID:    byID,
		handles: make(map[uint64]context.CancelFunc),
	}
}

// FetchCollectionSummary returns the scripted listing, or the scripted
// summary failure.
func (c *Client) FetchCollectionSummary(ctx context.Context) (entity.Summary, error) {
	c.summaryCalls.Add(1)

	ctx, done := c.register(ctx)
	defer done()

	if err := c.sleep(ctx); err != nil {
		return entity.Summary{}, err
	}
	if kind := c.summaryError(); kind != "" {
		return entity.Summary{}, kindError(kind)
	}

	results := make([]entity.SummaryEntry, 0, len(c.fixture.Entries))
	for _, e := range c.fixture.Entries {
		results = append(results, entity.SummaryEntry{
			Name: e.Name,
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", e.ID),
		})
	}
	return entity.Summary{Count: c.fixture.Count, Results: results}, nil
}

// FetchPokemonDetail returns the scripted record for id, or its scripted failure.
func (c *Client) FetchPokemonDetail(ctx context.Context, id int) (entity.Pokemon, error) {
	c.detailCalls.Add(1)

	ctx, done := c.register(ctx)
	defer done()

	if err := c.sleep(ctx); err != nil {
		return entity.Pokemon{}, err
	}
	if kind, ok := c.detailError(id); ok {
		return entity.Pokemon{}, kindError(kind)
	}

	e, ok := c.byID[id]
	if !ok {
		return entity.Pokemon{}, neterr.RequestFailed(404)
	}
	return e.toPokemon(), nil
}

// CancelAll cancels every scripted call still sleeping on its latency.
func (c *Client) CancelAll() {
	c.mu.Lock()
	for id, cancel := range c.handles {
		cancel()
		delete(c.handles, id)
	}
	c.mu.Unlock()
}

// ClearErrors drops every scripted failure, simulating a fault that has
// cleared between calls.
func (c *Client) ClearErrors() {
	c.mu.Lock()
	c.fixture.Errors = ErrorsFixture{}
	c.mu.Unlock()
}

func (c *Client) summaryError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fixture.Errors.Summary
}

func (c *Client) detailError(id int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kind, ok := c.fixture.Errors.Details[id]
	return kind, ok
}

// SummaryCalls returns how many summary fetches were issued.
func (c *Client) SummaryCalls() int {
	return int(c.summaryCalls.Load())
}

// DetailCalls returns how many detail fetches were issued.
func (c *Client) DetailCalls() int {
	return int(c.detailCalls.Load())
}

func (c *Client) register(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	id := c.nextID.Add(1)
	c.mu.Lock()
	c.handles[id] = cancel
	c.mu.Unlock()
	return ctx, func() {
		c.mu.Lock()
		delete(c.handles, id)
		c.mu.Unlock()
		cancel()
	}
}

func (c *Client) sleep(ctx context.Context) error {
	if c.fixture.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.fixture.Latency):
		return nil
	}
}

func (e EntryFixture) toPokemon() entity.Pokemon {
	types := make([]entity.TypeSlot, len(e.Types))
	for i, name := range e.Types {
		types[i] = entity.TypeSlot{Slot: i + 1, Name: name}
	}
	abilities := make([]entity.Ability, len(e.Abilities))
	for i, name := range e.Abilities {
		abilities[i] = entity.Ability{Name: name, Slot: i + 1}
	}
	stats := make([]entity.Stat, len(e.Stats))
	for i, s := range e.Stats {
		stats[i] = entity.Stat{Name: s.Name, Base: s.Base, Effort: s.Effort}
	}
	return entity.Pokemon{
		ID:        e.ID,
		Name:      e.Name,
		SpriteURL: e.SpriteURL,
		Types:     types,
		Abilities: abilities,
		Moves:     append([]string(nil), e.Moves...),
		Stats:     stats,
	}
}

// kindError maps a fixture kind name onto the error taxonomy.
func kindError(kind string) error {
	switch kind {
	case "invalid_url":
		return neterr.InvalidURL("scenario")
	case "request_failed":
		return neterr.RequestFailed(400)
	case "decoding_failed":
		return neterr.DecodingFailed("scripted decoding failure", nil)
	case "no_data":
		return neterr.NoData()
	case "no_internet":
		return neterr.NoInternet(nil)
	case "timeout":
		return neterr.Timeout(nil)
	case "server_error":
		return neterr.ServerError(500)
	default:
		return neterr.Unknown(fmt.Sprintf("scripted failure %q", kind), nil)
	}
}
