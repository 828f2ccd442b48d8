package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stroytech/stroybot/internal/api"
	"github.com/stroytech/stroybot/internal/api/handlers"
	"github.com/stroytech/stroybot/internal/api/middleware"
)

type RouterConfig struct {
	ChatHandler     *handlers.ChatHandler
	SearchHandler   *handlers.SearchHandler
	ProductsHandler *handlers.ProductsHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/chat", cfg.ChatHandler.Chat)
	r.Post("/search", cfg.SearchHandler.Search)
	r.Get("/products", cfg.ProductsHandler.List)

	return r
}
