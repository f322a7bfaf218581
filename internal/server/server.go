// Package server provides the websocket transport for the game hub.
// It accepts connections, feeds parsed messages into the hub's
// dispatcher, probes liveness with ping/pong, and tells the hub when a
// connection goes away. Game logic never lives here.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/pong-server/internal/hub"
	"github.com/vovakirdan/pong-server/internal/protocol"
)

// Config holds the transport settings.
type Config struct {
	// Addr is the host:port to listen on (e.g., ":8080").
	Addr string

	// PongWait is how long to wait for a pong before declaring the
	// connection dead. Pings go out every PongWait * 9 / 10.
	PongWait time.Duration

	// WriteWait bounds every outbound write.
	WriteWait time.Duration

	// ReadLimit caps inbound message size in bytes.
	ReadLimit int64
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		PongWait:  60 * time.Second,
		WriteWait: 10 * time.Second,
		ReadLimit: 4096,
	}
}

// Server is the websocket front end for a hub.
type Server struct {
	cfg      Config
	hub      *hub.Hub
	logger   *log.Logger
	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New creates a server fronting the given hub.
func New(cfg Config, h *hub.Hub, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "pongd",
		})
	}

	s := &Server{
		cfg:    cfg,
		hub:    h,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe starts the server and blocks until SIGINT/SIGTERM.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting server", "address", s.cfg.Addr)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-done:
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown stops accepting connections and tears down every session.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.hub.Stop()
	return s.httpSrv.Shutdown(ctx)
}

// handleWS upgrades one connection and runs its read loop.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	conn := newWSConn(raw, s.cfg.WriteWait)
	ctx := protocol.NewConnContext()
	remote := raw.RemoteAddr().String()
	s.logger.Info("connection opened", "remote", remote)

	raw.SetReadLimit(s.cfg.ReadLimit)
	raw.SetReadDeadline(time.Now().Add(s.cfg.PongWait)) //nolint:errcheck
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(s.cfg.PongWait))
	})

	stopPing := make(chan struct{})
	go s.pingLoop(conn, stopPing)

	for {
		msgType, data, err := raw.ReadMessage()
		if err != nil {
			break
		}
		if msgType != websocket.TextMessage {
			continue
		}
		s.hub.Dispatch(conn, ctx, data)
	}

	close(stopPing)
	conn.Close()
	s.hub.Disconnect(conn, ctx)
	s.logger.Info("connection closed", "remote", remote)
}

// pingLoop probes the connection until it closes.
func (s *Server) pingLoop(conn *wsConn, stop <-chan struct{}) {
	period := s.cfg.PongWait * 9 / 10
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}
