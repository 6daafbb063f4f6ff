package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/schedkit/webhook-relay/call"
	"github.com/schedkit/webhook-relay/sources"
	"github.com/schedkit/webhook-relay/webhook"
)

// Handlers sets up the relay API routes
func Handlers(ctx context.Context, webhookService webhook.UseCase, sourceLoader *sources.Loader, callService call.UseCase, metricsHandler http.Handler) *chi.Mux {
	logger := httplog.NewLogger("webhook-relay", httplog.Options{
		JSON: true,
	})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	// Inbound provider webhooks
	r.Post("/webhooks/{source}", postWebhook(webhookService, sourceLoader).ServeHTTP)

	// Call scheduling API
	r.Route("/v1/calls", func(r chi.Router) {
		r.Post("/", postCall(callService).ServeHTTP)
		r.Get("/{id}", getCall(callService).ServeHTTP)
		r.Put("/{id}", putCall(callService).ServeHTTP)
		r.Delete("/{id}", deleteCall(callService).ServeHTTP)
	})

	return r
}
