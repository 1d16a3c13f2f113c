// Package server exposes the orchestrator over HTTP and websocket for api mode.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/ports"
)

// Reply status values understood by the relay client.
const (
	StatusOK    = "ok"
	StatusError = "erro"
)

const shutdownGrace = 5 * time.Second

// maxBodyBytes caps a POST /comando body and a websocket frame.
const maxBodyBytes = 64 << 10

// Transport labels used in metrics.
const (
	transportHTTP      = "http"
	transportWebsocket = "websocket"
)

// CommandRequest is the body of POST /comando.
type CommandRequest struct {
	Text string `json:"texto"`
}

// CommandReply is returned by POST /comando and relayed verbatim by the bridge.
type CommandReply struct {
	Status  string                `json:"status"`
	Message string                `json:"mensagem"`
	Outcome *domain.OutcomeRecord `json:"outcome,omitempty"`
}

// HealthReply is returned by GET /healthz.
type HealthReply struct {
	Status    string `json:"status"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Processed int    `json:"processed"`
}

// Server serves one shared Processor to every HTTP and websocket client.
type Server struct {
	Processor ports.Processor
	Logger    ports.Logger
	Name      string
	Version   string

	addr      string
	upgrader  websocket.Upgrader
	startTime time.Time
	metrics   *metrics
}

// New creates a server bound to addr. Call Run to start serving.
func New(addr string, processor ports.Processor, logger ports.Logger) *Server {
	return &Server{
		Processor: processor,
		Logger:    logger,
		Name:      domain.DefaultAssistantName,
		addr:      addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		startTime: time.Now(),
		metrics:   newMetrics(),
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/comando", s.commandHandler)
	mux.HandleFunc("/history", s.historyHandler)
	mux.HandleFunc("/healthz", s.healthHandler)
	mux.HandleFunc("/ws", s.wsHandler)
	mux.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return mux
}

// Run listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	s.Logger.Info("api server listening", map[string]interface{}{"addr": listener.Addr().String()})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	s.Logger.Info("api server shutting down", nil)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) commandHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		s.metrics.reject(transportHTTP, "method")
		writeJSON(w, http.StatusMethodNotAllowed, CommandReply{Status: StatusError, Message: "Método não permitido"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.reject(transportHTTP, "size")
			writeJSON(w, http.StatusRequestEntityTooLarge, CommandReply{Status: StatusError, Message: "Comando muito grande"})
			return
		}
		s.Logger.Warn("invalid command body", map[string]interface{}{"error": err.Error()})
		s.metrics.reject(transportHTTP, "body")
		writeJSON(w, http.StatusInternalServerError, CommandReply{Status: StatusError, Message: err.Error()})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		s.metrics.reject(transportHTTP, "empty")
		writeJSON(w, http.StatusBadRequest, CommandReply{Status: StatusError, Message: "Comando vazio"})
		return
	}

	record := s.Processor.Process(r.Context(), text)
	s.metrics.observe(transportHTTP, record)
	writeJSON(w, http.StatusOK, CommandReply{Status: StatusOK, Message: record.Response, Outcome: &record})
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.Processor.History())
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, HealthReply{
		Status:    "healthy",
		Name:      s.Name,
		Version:   s.Version,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Processed: len(s.Processor.History()),
	})
}

// wsHandler treats every text frame as one utterance and answers with the
// outcome record as JSON. Frames on one connection are processed in order.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Warn("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	s.metrics.websockets.Inc()
	defer s.metrics.websockets.Dec()

	remote := r.RemoteAddr
	s.Logger.Debug("websocket connected", map[string]interface{}{"remote": remote})

	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.Logger.Debug("websocket read ended", map[string]interface{}{"remote": remote, "error": err.Error()})
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		text := strings.TrimSpace(string(data))
		var reply interface{}
		if text == "" {
			s.metrics.reject(transportWebsocket, "empty")
			reply = CommandReply{Status: StatusError, Message: "Comando vazio"}
		} else {
			record := s.Processor.Process(r.Context(), text)
			s.metrics.observe(transportWebsocket, record)
			reply = record
		}
		if err := conn.WriteJSON(reply); err != nil {
			s.Logger.Warn("websocket write failed", map[string]interface{}{"remote": remote, "error": err.Error()})
			return
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
