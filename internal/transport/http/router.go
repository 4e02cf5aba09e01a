package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"

	"github.com/cwrk-planet/presence-service/internal/transport/ws"
	"github.com/cwrk-planet/presence-service/pkg/httputil"
)

func NewRouter(h *Handler, wh *WebhookHandler, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(middlewareChi.RealIP)
	r.Use(httputil.MiddlewareRequestID)
	r.Use(httputil.MiddlewareLogging)
	r.Use(middlewareChi.Recoverer)

	r.Post("/api/webhooks/zoom", wh.Handle)

	r.Route("/api/participants/{meetingID}", func(pr chi.Router) {
		pr.Post("/register", h.Register)
		pr.Post("/sync", h.Sync)
		pr.Get("/", h.Snapshot)
		pr.Delete("/", h.Teardown)
	})

	// Live roster stream
	if wsServer != nil {
		r.Get("/ws/meetings/{meetingID}", wsServer.HandleWS)
	}

	// health
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
