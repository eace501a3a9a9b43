package pokeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pokedex-service/internal/config"
	domainService "pokedex-service/internal/domain/service"
	"pokedex-service/internal/pkg/neterr"
)

const summaryBody = `{
	"count": 3,
	"results": [
		{"name": "bulbasaur", "url": "https://pokeapi.co/api/v2/pokemon/1/"},
		{"name": "ivysaur", "url": "https://pokeapi.co/api/v2/pokemon/2/"},
		{"name": "venusaur", "url": "https://pokeapi.co/api/v2/pokemon/3/"}
	]
}`

const pikachuBody = `{
	"id": 25,
	"name": "pikachu",
	"types": [{"slot": 1, "type": {"name": "electric", "url": ""}}],
	"sprites": {"front_default": "https://example.com/25.png"},
	"abilities": [
		{"ability": {"name": "static", "url": ""}, "is_hidden": false, "slot": 1},
		{"ability": {"name": "lightning-rod", "url": ""}, "is_hidden": true, "slot": 3}
	],
	"moves": [{"move": {"name": "thunderbolt", "url": ""}}, {"move": {"name": "surf", "url": ""}}],
	"stats": [{"base_stat": 35, "effort": 0, "stat": {"name": "hp", "url": ""}}]
}`

func testClient(t *testing.T, baseURL string) domainService.PokemonClient {
	t.Helper()
	cfg := config.Config{
		API: config.APIConfig{
			BaseURL:        baseURL,
			Timeout:        2 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: time.Millisecond,
		},
		Loader: config.LoaderConfig{ExpectedCount: 3},
	}
	return NewClient(cfg, zap.NewNop())
}

func TestClient_FetchCollectionSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pokemon", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("limit"))
		w.Write([]byte(summaryBody))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	summary, err := c.FetchCollectionSummary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Count)
	require.Len(t, summary.Results, 3)
	assert.Equal(t, "bulbasaur", summary.Results[0].Name)
	assert.Equal(t, "https://pokeapi.co/api/v2/pokemon/1/", summary.Results[0].URL)
}

func TestClient_FetchPokemonDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pokemon/25", r.URL.Path)
		w.Write([]byte(pikachuBody))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	p, err := c.FetchPokemonDetail(context.Background(), 25)
	require.NoError(t, err)

	assert.Equal(t, 25, p.ID)
	assert.Equal(t, "pikachu", p.Name)
	assert.Equal(t, "https://example.com/25.png", p.SpriteURL)
	require.Len(t, p.Types, 1)
	assert.Equal(t, "electric", p.Types[0].Name)
	require.Len(t, p.Abilities, 2)
	assert.True(t, p.Abilities[1].IsHidden)
	assert.Equal(t, []string{"thunderbolt", "surf"}, p.Moves)
	require.Len(t, p.Stats, 1)
	assert.Equal(t, 35, p.Stats[0].Base)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(summaryBody))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	summary, err := c.FetchCollectionSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Count)
	assert.Equal(t, int64(3), calls.Load())
}

func TestClient_ExhaustsRetriesOnPersistentServerError(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchCollectionSummary(context.Background())
	require.Error(t, err)

	ne, ok := neterr.As(err)
	require.True(t, ok)
	assert.Equal(t, neterr.KindServerError, ne.Kind)
	assert.Equal(t, int64(3), calls.Load())
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchPokemonDetail(context.Background(), 9999)
	require.Error(t, err)

	ne, ok := neterr.As(err)
	require.True(t, ok)
	assert.Equal(t, neterr.KindRequestFailed, ne.Kind)
	assert.Equal(t, 404, ne.StatusCode)
	assert.Equal(t, int64(1), calls.Load())
}

func TestClient_DecodingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "not-a-number"`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchPokemonDetail(context.Background(), 1)
	require.Error(t, err)

	ne, ok := neterr.As(err)
	require.True(t, ok)
	assert.Equal(t, neterr.KindDecodingFailed, ne.Kind)
}

func TestClient_EmptyBodyIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchCollectionSummary(context.Background())
	require.Error(t, err)

	ne, ok := neterr.As(err)
	require.True(t, ok)
	assert.Equal(t, neterr.KindNoData, ne.Kind)
}

func TestClient_DetailIDMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(pikachuBody)) // always id 25
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchPokemonDetail(context.Background(), 26)
	require.Error(t, err)

	ne, ok := neterr.As(err)
	require.True(t, ok)
	assert.Equal(t, neterr.KindDecodingFailed, ne.Kind)
}

func TestClient_CancelledContextAbortsRetryLoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := testClient(t, srv.URL)
	_, err := c.FetchCollectionSummary(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClient_CancelAllIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(summaryBody))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	// Safe with nothing in flight, repeatedly.
	c.CancelAll()
	c.CancelAll()

	_, err := c.FetchCollectionSummary(context.Background())
	require.NoError(t, err)
}
