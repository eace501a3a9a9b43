package http

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	handler "pokedex-service/internal/adapter/handler/http"
)

// RegisterRoutes sets up the routes for the pokedex handler and common health checks.
func RegisterRoutes(r *router.Router, h *handler.PokedexHandler, logger *zap.Logger) {
	logger.Info("Setting up application-specific routes...")

	r.GET("/pokemon", h.GetPokemonList)
	r.GET("/pokemon/search", h.SearchPokemon)
	r.GET("/pokemon/{id:[0-9]+}", h.GetPokemonByID)
	r.POST("/pokemon/refresh", h.RefreshPokemon)
	r.POST("/pokemon/cancel", h.CancelRequests)
	r.GET("/state", h.GetState)
	r.GET("/state/stream", h.StreamState)

	logger.Info("Setting up health check route...")
	r.GET("/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("OK")
	})

	logger.Info("All routes registered.")
}
