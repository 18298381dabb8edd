package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/jddeal/go-wsr88d/archive2"
	"github.com/jddeal/go-wsr88d/internal/config"
	"github.com/jddeal/go-wsr88d/internal/observability"
	"github.com/jddeal/go-wsr88d/level3"
	"github.com/jddeal/go-wsr88d/wire"
)

// Server decodes uploaded Level 2 and Level 3 files.
type Server struct {
	httpServer *http.Server
	log        logrus.FieldLogger
	metrics    *observability.Metrics
	maxUpload  int64
}

// New creates a server with /l2/decode, /l3/decode, /healthz and /metrics
// routes. gatherer backs /metrics.
func New(cfg *config.Config, log logrus.FieldLogger, metrics *observability.Metrics, gatherer prometheus.Gatherer) *Server {
	r := mux.NewRouter()

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			WriteTimeout: cfg.WriteTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			IdleTimeout:  time.Second * 60,
			Handler:      r,
		},
		log:       log,
		metrics:   metrics,
		maxUpload: cfg.MaxUploadBytes,
	}

	r.HandleFunc("/l2/decode", s.level2Handler).Methods(http.MethodPost)
	r.HandleFunc("/l3/decode", s.level3Handler).Methods(http.MethodPost)
	r.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("decode server starting")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readUpload reads the whole request body, answering 413 when it is larger
// than the configured limit.
func (s *Server) readUpload(w http.ResponseWriter, req *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, req.Body, s.maxUpload))
	if err == nil {
		return body, true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": err.Error()})
	} else {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return nil, false
}

func (s *Server) level2Handler(w http.ResponseWriter, req *http.Request) {
	body, ok := s.readUpload(w, req)
	if !ok {
		return
	}
	start := time.Now()
	log := s.log.WithField("level", 2)

	ar2, err := archive2.NewArchive2(bytes.NewReader(body), log)
	s.metrics.ObserveDecode("2", start, err)
	if err != nil {
		s.decodeFailed(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, summarizeArchive2(ar2))
}

func (s *Server) level3Handler(w http.ResponseWriter, req *http.Request) {
	body, ok := s.readUpload(w, req)
	if !ok {
		return
	}
	start := time.Now()
	log := s.log.WithField("level", 3)

	f, err := level3.NewFile(bytes.NewReader(body), log)
	s.metrics.ObserveDecode("3", start, err)
	if err != nil {
		s.decodeFailed(w, log, err)
		return
	}

	for _, p := range f.Message.Packets() {
		s.metrics.CountPacket(p.PacketCode())
	}
	writeJSON(w, http.StatusOK, summarizeLevel3(f))
}

func (s *Server) decodeFailed(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	kind := wire.Classify(err)
	log.WithField("kind", kind).Warnf("decode failed: %v", err)
	writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
		"error": err.Error(),
		"kind":  kind,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}
