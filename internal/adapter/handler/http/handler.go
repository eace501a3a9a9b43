package http

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"pokedex-service/internal/domain"
	"pokedex-service/internal/domain/entity"
	"pokedex-service/internal/orchestrator"
	"pokedex-service/internal/pkg/neterr"
)

// PokedexHandler exposes the orchestrator to HTTP and websocket clients.
type PokedexHandler struct {
	loader   *orchestrator.Orchestrator
	logger   *zap.Logger
	upgrader websocket.FastHTTPUpgrader
}

func NewPokedexHandler(loader *orchestrator.Orchestrator, logger *zap.Logger) *PokedexHandler {
	return &PokedexHandler{
		loader: loader,
		logger: logger.Named("PokedexHandler"),
	}
}

// GetPokemonList returns the current list state. An idle orchestrator is
// nudged into the cache-preferring load first.
func (h *PokedexHandler) GetPokemonList(ctx *fasthttp.RequestCtx) {
	if h.loader.State().Phase == entity.PhaseIdle {
		go h.loader.LoadCachedOrFetch(context.Background())
	}
	h.writeJSON(ctx, h.loader.State())
}

// GetPokemonByID proxies a single detail fetch, independent of the list
// state machine.
func (h *PokedexHandler) GetPokemonByID(ctx *fasthttp.RequestCtx) {
	idStr, ok := ctx.UserValue("id").(string)
	if !ok {
		ctx.Error("Bad Request: Invalid id format", fasthttp.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		ctx.Error("Bad Request: Invalid id", fasthttp.StatusBadRequest)
		return
	}

	item, err := h.loader.FetchPokemonDetail(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrPokemonNotFound) {
			ctx.Error("Pokemon not found", fasthttp.StatusNotFound)
			return
		}
		h.logger.Error("Failed to fetch pokemon detail", zap.Int("id", id), zap.Error(err))
		ctx.Error(neterr.UserMessage(err), detailStatus(err))
		return
	}
	h.writeJSON(ctx, item)
}

// SearchPokemon sets the search text and returns the filtered view. The
// debounce window means the view may lag the query by up to one window.
func (h *PokedexHandler) SearchPokemon(ctx *fasthttp.RequestCtx) {
	if ctx.QueryArgs().Has("q") {
		h.loader.SetSearchText(string(ctx.QueryArgs().Peek("q")))
	}
	h.writeJSON(ctx, h.loader.FilteredItems())
}

// RefreshPokemon triggers the network-path load. Idempotent while a load is
// already in flight.
func (h *PokedexHandler) RefreshPokemon(ctx *fasthttp.RequestCtx) {
	go h.loader.Fetch(context.Background())
	ctx.SetStatusCode(fasthttp.StatusAccepted)
	h.writeJSON(ctx, h.loader.State())
}

// CancelRequests cancels the in-flight load and all outstanding requests.
func (h *PokedexHandler) CancelRequests(ctx *fasthttp.RequestCtx) {
	h.loader.CancelAllRequests()
	h.writeJSON(ctx, h.loader.State())
}

// GetState returns the currently published load state.
func (h *PokedexHandler) GetState(ctx *fasthttp.RequestCtx) {
	h.writeJSON(ctx, h.loader.State())
}

// StreamState upgrades to a websocket and streams every published state
// snapshot until the client goes away.
func (h *PokedexHandler) StreamState(ctx *fasthttp.RequestCtx) {
	err := h.upgrader.Upgrade(ctx, func(conn *websocket.Conn) {
		defer conn.Close()

		states, unsubscribe := h.loader.Subscribe()
		defer unsubscribe()

		for state := range states {
			if err := conn.WriteJSON(state); err != nil {
				h.logger.Debug("State stream client gone", zap.Error(err))
				return
			}
		}
	})
	if err != nil {
		h.logger.Error("Websocket upgrade failed", zap.Error(err))
	}
}

func (h *PokedexHandler) writeJSON(ctx *fasthttp.RequestCtx, payload interface{}) {
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(payload); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// detailStatus maps a detail-fetch failure onto an HTTP status.
func detailStatus(err error) int {
	ne, ok := neterr.As(err)
	if !ok {
		if errors.Is(err, context.Canceled) {
			return fasthttp.StatusRequestTimeout
		}
		return fasthttp.StatusInternalServerError
	}
	switch ne.Kind {
	case neterr.KindRequestFailed:
		if ne.StatusCode == fasthttp.StatusNotFound {
			return fasthttp.StatusNotFound
		}
		return fasthttp.StatusBadGateway
	case neterr.KindTimeout:
		return fasthttp.StatusGatewayTimeout
	case neterr.KindInvalidURL:
		return fasthttp.StatusInternalServerError
	default:
		return fasthttp.StatusBadGateway
	}
}
