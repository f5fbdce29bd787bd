package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const readinessTimeout = 500 * time.Millisecond

type routerDeps struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     book.Store
	service   *book.Service
	rateLimit *httpx.RateLimitMiddleware
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(d.logger))
	r.Use(httpx.RecoveryMiddleware(d.logger))
	r.Use(httpx.SecurityHeadersMiddleware(d.cfg.HTTP.EnableHSTS))
	r.Use(httpx.CORSMiddleware(d.cfg.CORS.Origins))
	r.Use(httpx.RequestSizeLimitMiddleware(d.cfg.HTTP.MaxBodyBytes))
	if d.rateLimit != nil {
		r.Use(d.rateLimit.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONMessage(w, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONMessage(w, http.StatusOK, "Backend is running successfully!")
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()
		if err := d.store.Ping(ctx); err != nil {
			d.logger.WarnContext(ctx, "readiness check failed", "error", err)
			http.Error(w, "store not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/api/books", book.NewHTTPHandler(d.service).Routes)

	return r
}
