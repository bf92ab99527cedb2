package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Tech-Naruto/Chat-App-Backend/internal/app/server/handlers"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/contracts"
	"github.com/Tech-Naruto/Chat-App-Backend/internal/core/services"
	"github.com/Tech-Naruto/Chat-App-Backend/pkg/middleware"
)

type Server struct {
	mux       *http.ServeMux
	log       *slog.Logger
	name      string
	addr      string
	wsHandler *handlers.WSHandler
}

func NewServer(
	log *slog.Logger,
	name string,
	addr string,
	tokenSvc *services.TokenService,
	sessionSvc services.ISessionService,
	hub contracts.Registry,
) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		log:       log,
		name:      name,
		addr:      addr,
		wsHandler: handlers.NewWSHandler(hub, tokenSvc, sessionSvc),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	logging := middleware.RequestLogger(s.log)
	tracing := middleware.TracerMiddleware(s.name)

	// Auth happens inside the handler, after the upgrade, so rejections can
	// carry WebSocket close codes.
	s.mux.Handle("/ws", logging(tracing(http.HandlerFunc(s.wsHandler.Handler))))

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (s *Server) Start() error {
	server := &http.Server{
		Addr:        s.addr,
		Handler:     s.mux,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would sever long-lived WebSocket sessions.
	}

	s.log.Info("server starting", "addr", s.addr)
	return server.ListenAndServe()
}
