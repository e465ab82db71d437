package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/video-system/go-hwscan/pkg/hwscan"
)

// DeviceSource is what the server reads devices from; *hwscan.Cache
// implements it.
type DeviceSource interface {
	Devices(ctx context.Context) ([]hwscan.Device, error)
	Invalidate()
	FetchedAt() time.Time
}

// ServerConfig holds API server configuration
type ServerConfig struct {
	Host    string
	Port    int
	Devices DeviceSource
	Logger  *zap.Logger
	Version string
}

// Server is the HTTP API server
type Server struct {
	cfg    ServerConfig
	log    *zap.Logger
	server *http.Server
}

// devicesResponse is the body of GET /api/v1/devices
type devicesResponse struct {
	Devices   []hwscan.Device `json:"devices"`
	ScannedAt time.Time       `json:"scanned_at"`
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string      `json:"error"`
	Kind  hwscan.Kind `json:"kind,omitempty"`
	Code  *int32      `json:"code,omitempty"`
}

// NewServer creates a new API server
func NewServer(cfg ServerConfig) *Server {
	s := &Server{cfg: cfg, log: cfg.Logger}
	if s.log == nil {
		s.log = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/devices", s.handleDevices)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler, for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr is the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the API server and blocks until it stops
func (s *Server) Start() error {
	s.log.Info("API server starting", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the API server
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.log.Warn("API server shutdown", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "go-hwscan",
		"version": s.cfg.Version,
	})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Query().Get("refresh") == "true" {
		s.cfg.Devices.Invalidate()
	}

	devices, err := s.cfg.Devices.Devices(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, devicesResponse{
		Devices:   devices,
		ScannedAt: s.cfg.Devices.FetchedAt(),
	})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var scanErr *hwscan.Error
	if errors.As(err, &scanErr) {
		s.log.Warn("device scan failed", zap.String("kind", string(scanErr.Kind)), zap.Error(err))
		code := int32(scanErr.Code)
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error: err.Error(),
			Kind:  scanErr.Kind,
			Code:  &code,
		})
		return
	}

	status := http.StatusInternalServerError
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusServiceUnavailable
	}
	s.log.Warn("device request failed", zap.Error(err))
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
