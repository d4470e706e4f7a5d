/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: server.go
Description: Status HTTP server for long-running learning sessions. Exposes the
Prometheus metrics, a JSON snapshot and the latest hypothesis rendering.
*/

package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// StatusServer serves learning status over HTTP
type StatusServer struct {
	collector *MetricsCollector
	logger    *logrus.Logger

	mu         sync.RWMutex
	hypothesis string
	phase      string

	server *http.Server
}

// NewStatusServer creates a status server for a collector
func NewStatusServer(collector *MetricsCollector, logger *logrus.Logger) *StatusServer {
	if logger == nil {
		logger = logrus.New()
	}
	return &StatusServer{collector: collector, logger: logger}
}

// SetHypothesis publishes the latest hypothesis in DOT form
func (s *StatusServer) SetHypothesis(dot string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hypothesis = dot
}

// SetPhase publishes the learner phase
func (s *StatusServer) SetPhase(phase string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
}

// Handler returns the router
func (s *StatusServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(s.collector.Registry(), promhttp.HandlerOpts{}))
	r.Get("/status", s.handleStatus)
	r.Get("/hypothesis", s.handleHypothesis)
	return r
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	phase := s.phase
	s.mu.RUnlock()

	resp := struct {
		Phase string        `json:"phase"`
		Stats LearningStats `json:"stats"`
	}{Phase: phase, Stats: s.collector.Snapshot()}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithError(err).Error("Status response encode failed")
	}
}

func (s *StatusServer) handleHypothesis(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	dot := s.hypothesis
	s.mu.RUnlock()
	if dot == "" {
		http.Error(w, "no hypothesis yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

// Start listens on addr in the background and returns the bound address
func (s *StatusServer) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Status server stopped")
		}
	}()
	s.logger.WithField("addr", ln.Addr().String()).Info("Status server listening")
	return ln.Addr().String(), nil
}

// Shutdown stops the server
func (s *StatusServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
