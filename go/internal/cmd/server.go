package main

import (
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/quizrunner/go/internal/config"
	"github.com/mcdev12/quizrunner/go/internal/game/control"
	"github.com/mcdev12/quizrunner/go/internal/game/gateway"
)

func setupServer(cfg *config.Config, services *Services, cm *gateway.ConnectionManager) *http.Server {
	mux := http.NewServeMux()

	// Setup CORS middleware
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})

	admin := gateway.NewAdminAuth(cfg.AdminPasswordHash)

	// JSON API and event stream
	gateway.NewAPIHandler(services.Coordinator, admin).RegisterRoutes(mux)
	gateway.NewWebSocketHandler(cm).RegisterRoutes(mux)

	// Control service, admin only
	controlPath, controlHandler := control.NewHandler(control.NewService(services.Coordinator))
	mux.Handle(controlPath, admin.Require(controlHandler))

	setupHealthCheck(mux, services)

	handler := c.Handler(mux)

	// Setup HTTP/2 server
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func setupHealthCheck(mux *http.ServeMux, services *Services) {
	checks := map[string]gateway.HealthCheck{}
	if services.Storage.Redis != nil {
		checks["redis"] = services.Storage.Redis.HealthCheck
	}
	if services.Bus != nil {
		checks["nats"] = services.Bus.HealthCheck
	}
	mux.HandleFunc("GET /health", gateway.HandleHealth(services.Coordinator, checks))
}
