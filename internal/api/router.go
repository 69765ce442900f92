// Match Reporter - Voice-driven Soccer Match Event Reporting
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchreporter

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/matchreporter/internal/middleware"
)

// Router wires handlers and middleware onto a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. A nil ChiMiddleware uses the defaults.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Applied to all routes in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())

		r.Route("/events", func(r chi.Router) {
			r.Get("/", router.handler.ListEvents)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.CreateEvent)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", router.handler.GetEvent)
				r.With(router.chiMiddleware.RateLimitWrite()).Delete("/", router.handler.DeleteEvent)
				r.Get("/sync", router.handler.EventSyncStatus)
				r.With(router.chiMiddleware.RateLimitWrite()).Post("/sync/reset", router.handler.ResetEventSync)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", router.handler.ListMatches)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.CreateMatch)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", router.handler.GetMatch)
				r.With(router.chiMiddleware.RateLimitWrite()).Post("/start", router.handler.StartMatch)
				r.With(router.chiMiddleware.RateLimitWrite()).Post("/stop", router.handler.StopMatch)
			})
		})

		r.Route("/voice/logs", func(r chi.Router) {
			r.Get("/", router.handler.ListVoiceLogs)
			r.Post("/", router.handler.CreateVoiceLog)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
