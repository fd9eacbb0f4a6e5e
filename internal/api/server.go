package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-switcher/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-switcher/internal/session"
	"github.com/nerrad567/gray-logic-switcher/internal/state"
)

const (
	// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
	// to complete during shutdown.
	gracefulShutdownTimeout = 10 * time.Second

	// defaultRequestTimeout bounds how long a handler waits on the session loop.
	defaultRequestTimeout = 5 * time.Second
)

// Session is the part of *session.Session the API uses.
type Session interface {
	Read(ctx context.Context, canonical string) (state.Value, error)
	ReadRaw(ctx context.Context, raw string) (state.Value, error)
	SetValue(ctx context.Context, canonical string, v state.Value) error
	CollectionOp(ctx context.Context, verb, canonical string, args ...state.Value) error
	WriteLocal(ctx context.Context, canonical string, v state.Value) error
	CaptureLast(ctx context.Context) (session.Captured, error)
	Describe(ctx context.Context) (session.Info, error)
	DerivedOutputs(ctx context.Context) (map[string]state.Value, error)
}

// HealthChecker is implemented by the MQTT and InfluxDB clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Session Session

	// Hub, if set, is used instead of a hub created by the server.
	Hub *Hub

	// Metrics, if set, is served at MetricsPath (default /metrics).
	Metrics     http.Handler
	MetricsPath string

	// Checks are reported by /api/v1/health, keyed by component name.
	Checks map[string]HealthChecker

	RequestTimeout time.Duration
	Version        string
}

// Server is the HTTP API server for the switcher core.
type Server struct {
	cfg            config.APIConfig
	wsCfg          config.WebSocketConfig
	logger         *logging.Logger
	session        Session
	hub            *Hub
	externalHub    bool
	metrics        http.Handler
	metricsPath    string
	checks         map[string]HealthChecker
	requestTimeout time.Duration
	version        string

	server *http.Server
	cancel context.CancelFunc
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Session == nil {
		return nil, fmt.Errorf("session is required")
	}

	s := &Server{
		cfg:            deps.Config,
		wsCfg:          deps.WS,
		logger:         deps.Logger,
		session:        deps.Session,
		metrics:        deps.Metrics,
		metricsPath:    deps.MetricsPath,
		checks:         deps.Checks,
		requestTimeout: deps.RequestTimeout,
		version:        deps.Version,
	}
	if s.metricsPath == "" {
		s.metricsPath = "/metrics"
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}

	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	} else {
		s.hub = NewHub(deps.Logger)
	}

	return s, nil
}

// Hub returns the websocket hub feedback is broadcast through.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.buildRouter()
}

// Start runs the hub and starts listening in the background.
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if !s.externalHub {
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
