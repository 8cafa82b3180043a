// Package httpapi implements C9: the chi-routed HTTP edge covering the
// public /v1 chat-completions surface and the operator-facing /v0 admin
// surface, wired on top of C1–C8.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/mockllm/mockllm/internal/configstore"
	"github.com/mockllm/mockllm/internal/httpapi/middleware"
	"github.com/mockllm/mockllm/internal/interactive"
	"github.com/mockllm/mockllm/internal/reload"
)

// Server wires the store, the interactive broker, and the reload
// controller into chi handlers.
type Server struct {
	store     *configstore.Store
	broker    *interactive.Broker
	reload    *reload.Controller
	configDir string
	log       zerolog.Logger
	started   time.Time
}

// New creates a Server ready to build its router.
func New(store *configstore.Store, broker *interactive.Broker, ctrl *reload.Controller, configDir string, log zerolog.Logger) *Server {
	return &Server{store: store, broker: broker, reload: ctrl, configDir: configDir, log: log, started: time.Now()}
}

// Router assembles the full chi.Mux: CORS, structured logging, tracing,
// then the public /v1 surface and the admin /v0 surface, each gated by its
// own optional bearer token.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Logger)
	r.Use(middleware.Telemetry)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.RequireBearer(func() string { return s.store.Load().Server.Auth }))
		v1.Post("/chat/completions", s.handleChatCompletions)
		v1.Get("/models", s.handleListModels)
		v1.Get("/models/{id}", s.handleGetModel)
	})

	r.Route("/v0", func(v0 chi.Router) {
		v0.Get("/admin/auth", s.handleAdminAuthStatus)
		v0.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireBearer(func() string { return s.store.Load().Server.AdminAuth }))
			authed.Get("/status", s.handleStatus)
			authed.Post("/reload", s.handleReload)
			authed.Get("/config", s.handleGetConfig)
			authed.Put("/config", s.handlePutConfig)
			authed.Patch("/config", s.handlePatchConfig)
			authed.Get("/models", s.handleGetModelsBundle)
			authed.Put("/models", s.handlePutModelsBundle)
			authed.Get("/scripts", s.handleListScripts)
			authed.Get("/scripts/{name}", s.handleGetScript)
			authed.Put("/scripts/{name}", s.handlePutScript)
			authed.Delete("/scripts/{name}", s.handleDeleteScript)
			authed.Get("/interactive/requests", s.handleInteractiveList)
			authed.Post("/interactive/requests/{id}/reply", s.handleInteractiveReply)
			authed.Get("/interactive/stream", s.handleInteractiveStream)
		})
	})

	return r
}
