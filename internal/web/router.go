package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/Epistemic-Technology/pdf-mindmap/internal/logger"
)

// NewRouter creates the router with all routes configured
func NewRouter(h *Handler, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	if h.cfg.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(h.cfg.RequestTimeout))
	}

	r.Get("/healthz", h.Health)
	r.Get("/", h.Index)
	r.Post("/generate", h.Generate)

	r.Route("/api", func(r chi.Router) {
		r.Post("/mindmap", h.GenerateJSON)
		r.Post("/render", h.RenderMermaid)
	})

	return r
}

// requestLogger logs one line per request on the project logger
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			reqLog := log
			if id := chimiddleware.GetReqID(r.Context()); id != "" {
				reqLog = log.With("request_id", id)
			}
			reqLog.Info("%s %s -> %d (%d bytes) in %v", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(), time.Since(start))
		})
	}
}
