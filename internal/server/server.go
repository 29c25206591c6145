package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/biswa/bingo-signal/internal/config"
	"github.com/biswa/bingo-signal/internal/handlers"
	"github.com/biswa/bingo-signal/internal/models"
	"github.com/biswa/bingo-signal/internal/stats"
	"github.com/biswa/bingo-signal/internal/transport/legacy"
	"github.com/biswa/bingo-signal/internal/transport/socketio"
	"github.com/gorilla/mux"
)

// Transport is a Socket.IO server that also delivers the handler's events.
type Transport interface {
	handlers.Notifier
	Handler() http.Handler
	Close() error
}

type Server struct {
	cfg        config.Config
	logger     *slog.Logger
	httpServer *http.Server
	transport  Transport
	handler    *handlers.Handler
	stats      *stats.Manager

	stopLoop context.CancelFunc
	loopDone chan struct{}
}

func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	handler := handlers.New(models.NewRoomManager(), logger)

	var tr Transport
	switch cfg.Transport {
	case config.TransportV4:
		tr = socketio.New(handler, cfg.ClientOrigin, logger)
	case config.TransportLegacy:
		tr = legacy.New(handler, cfg.ClientOrigin, logger)
	default:
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
	handler.SetNotifier(tr)

	return &Server{
		cfg:       cfg,
		logger:    logger.With("component", "server"),
		transport: tr,
		handler:   handler,
		stats:     stats.New(handler, cfg.StatsInterval, logger),
	}, nil
}

func (s *Server) Start() error {
	s.startLoop()

	if engine, ok := s.transport.(interface{ Serve() error }); ok {
		go func() {
			if err := engine.Serve(); err != nil {
				s.logger.Error("socket.io engine stopped", "error", err)
			}
		}()
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.stats.Start()

	s.logger.Info("bingo signal server started", "addr", s.cfg.Addr(), "transport", s.cfg.Transport, "origin", s.cfg.ClientOrigin)
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown http server: %w", err))
		}
	}

	if err := s.transport.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close socket.io server: %w", err))
	}

	s.stats.Stop()

	if s.stopLoop != nil {
		s.stopLoop()
		select {
		case <-s.loopDone:
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("handler loop: %w", ctx.Err()))
		}
	}

	return errors.Join(errs...)
}

func (s *Server) startLoop() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopLoop = cancel
	s.loopDone = make(chan struct{})
	go func() {
		defer close(s.loopDone)
		s.handler.Run(ctx)
	}()
}

// Router mounts the Socket.IO endpoint and the REST views.
func (s *Server) Router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.cors)

	router.PathPrefix("/socket.io/").Handler(s.transport.Handler())
	// OPTIONS must match for the CORS middleware to see preflights.
	router.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/rooms/{id}", s.getRoom).Methods(http.MethodGet, http.MethodOptions)
	router.HandleFunc("/api/stats", s.getStats).Methods(http.MethodGet, http.MethodOptions)

	return router
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "bingo-signal"})
}

func (s *Server) getRoom(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	view, found, err := s.handler.Room(id)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": handlers.ErrRoomNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	snap, err := s.stats.Latest()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
