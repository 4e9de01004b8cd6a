package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"nexus/internal/gateway/handler/rpc"
	"nexus/internal/gateway/middleware"
)

func NewRouter(
	portfolioHandler *rpc.PortfolioHandler,
	contactHandler *rpc.ContactHandler,
	assistantHandler *rpc.AssistantHandler,
	log *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.CORS)
	r.Use(middleware.AccessLog(log))

	// RPC Handlers
	for _, group := range [][]rpc.Route{
		portfolioHandler.Routes(),
		contactHandler.Routes(),
		assistantHandler.Routes(),
	} {
		for _, route := range group {
			r.Handle(route.Path, route.Handler)
		}
	}

	// Streaming
	r.Get("/ws/assistant", assistantHandler.HandleAssistantWS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return r
}
