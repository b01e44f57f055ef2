package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"vintagefm/config"
	"vintagefm/core/station"
	"vintagefm/logger"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// DriftReporter lists how the music directory changed since startup.
type DriftReporter interface {
	Missing() []string
	Added() []string
}

// Server is the station's HTTP boundary.
type Server struct {
	cfg          *config.Config
	engine       *station.Engine
	catalogFiles int
	drift        DriftReporter
	upgrader     websocket.Upgrader
	router       *mux.Router
}

// New builds the router. drift may be nil.
func New(cfg *config.Config, engine *station.Engine, catalogFiles int, drift DriftReporter) *Server {
	s := &Server{
		cfg:          cfg,
		engine:       engine,
		catalogFiles: catalogFiles,
		drift:        drift,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware, accessLogMiddleware)

	router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/nowplaying", s.handleNowPlaying).Methods(http.MethodGet)
	router.HandleFunc("/stream", s.handleStream).Methods(http.MethodGet)
	router.HandleFunc("/skip", s.handleSkip).Methods(http.MethodPost)
	router.HandleFunc("/ws/nowplaying", s.handleNowPlayingSocket).Methods(http.MethodGet)
	router.HandleFunc("/playlist", s.handlePlaylist).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	return router
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is done, then shuts down gracefully. Open streams
// are cancelled through their request contexts.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Address(),
		Handler:     s.router,
		ReadTimeout: s.cfg.Server.ReadTimeout,
		IdleTimeout: s.cfg.Server.IdleTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			logger.String("addr", srv.Addr),
			logger.String("station", s.cfg.Station.Name))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
