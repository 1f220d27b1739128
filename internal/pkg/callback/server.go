package callback

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/jad7/imouapi/internal/pkg/logging"
	"github.com/jad7/imouapi/pkg/middlewares"
)

// Server receives push notifications from the Imou cloud and fans them
// out to WebSocket subscribers.
type Server struct {
	hub  *hub
	http *http.Server
}

// Config carries the server options.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	LogRequests  bool
}

// NewServer builds the router and the listener; call Run to serve.
func NewServer(cfg Config) *Server {
	s := &Server{
		hub: newHub(),
	}

	r := mux.NewRouter()
	r.Use(middlewares.NewLoggingMw(cfg.LogRequests))
	r.Use(middlewares.NewRecoveryMw())
	r.Use(middlewares.NewCorrelationMw("X-Correlation-ID"))
	r.Use(middlewares.NewCorsMw(cors.Options{AllowedMethods: []string{http.MethodGet, http.MethodPost}}))
	r.HandleFunc("/imou/callback", s.handleCallback).Methods(http.MethodPost)
	r.Handle("/imou/events", s.hub).Methods(http.MethodGet)
	r.HandleFunc("/imou/status", s.handleStatus).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// gracefulTimeout.
func (s *Server) Run(ctx context.Context, gracefulTimeout time.Duration) error {
	errc := make(chan error, 1)
	go func() {
		logging.Logger(nil).Infof("Serving callbacks on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logging.Logger(nil).Info("shutting down")
	s.hub.close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// handleCallback accepts one vendor push message and broadcasts it.
func (s *Server) handleCallback(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(rw, "reading body", http.StatusBadRequest)
		return
	}

	ev, err := parseEvent(body, time.Now().UTC())
	if err != nil {
		logging.Logger(r.Context()).WithError(err).Warn("discarding unparseable push message")
		http.Error(rw, "bad payload", http.StatusBadRequest)
		return
	}

	logging.Logger(r.Context()).WithFields(logrus.Fields{
		"msgType":  ev.MsgType,
		"deviceId": ev.DeviceID,
	}).Info("received push message")

	s.hub.broadcast(ev)
	rw.WriteHeader(http.StatusOK)
	fmt.Fprint(rw, `{}`)
}

// handleStatus reports liveness and the subscriber count.
func (s *Server) handleStatus(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(map[string]interface{}{
		"status":      "ok",
		"subscribers": s.hub.subscriberCount(),
	})
}
