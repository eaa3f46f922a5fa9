package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rickgao/delivery-planner/internal/api"
	"github.com/rickgao/delivery-planner/internal/dispatch"
	"github.com/rickgao/delivery-planner/internal/model"
	"github.com/rickgao/delivery-planner/internal/planner"
	"github.com/rickgao/delivery-planner/internal/stream"
)

// PlanService creates and reads plans.
type PlanService interface {
	PlanRoute(ctx context.Context, req planner.Request) (*model.DeliveryPlan, error)
	Get(ctx context.Context, id uuid.UUID) (*model.DeliveryPlan, error)
	ListByAgent(ctx context.Context, agentID string, limit int) ([]*model.DeliveryPlan, error)
}

// DispatchService plans for many agents.
type DispatchService interface {
	Dispatch(ctx context.Context, jobs []dispatch.Job) dispatch.Summary
}

// Check reports the health of one component. It returns a short status
// string, or an error when the component is unhealthy.
type Check func(ctx context.Context) (string, error)

// Config holds server configuration.
type Config struct {
	Port         int
	RateLimit    int           // requests per window per IP
	RateWindow   time.Duration // rate limit window
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MetricsPath  string
	Stream       stream.Config
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:         8080,
		RateLimit:    600,
		RateWindow:   time.Minute,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		MetricsPath:  "/metrics",
		Stream:       stream.DefaultConfig(),
	}
}

// Deps are the services the server routes to.
type Deps struct {
	Planner    PlanService
	Dispatcher DispatchService
	Hub        *stream.Hub
	Checks     map[string]Check
}

// Server is the planner HTTP service.
type Server struct {
	cfg    Config
	deps   Deps
	logger *slog.Logger

	router     chi.Router
	httpServer *http.Server
	listener   net.Listener
	done       chan struct{}
}

// New creates a server and builds its routes.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.RateWindow <= 0 {
		cfg.RateWindow = def.RateWindow
	}
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = def.MetricsPath
	}

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logger.With("component", "server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(Metrics())

	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Method(http.MethodGet, s.cfg.MetricsPath, promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(RateLimit(s.cfg.RateLimit, s.cfg.RateWindow, s.logger))

		r.Post("/plans", s.handleCreatePlan)
		if s.deps.Hub != nil {
			r.Method(http.MethodGet, "/plans/stream", stream.Handler(s.deps.Hub, s.cfg.Stream, s.logger))
		}
		r.Get("/plans/{id}", s.handleGetPlan)
		r.Get("/agents/{id}/plans", s.handleListAgentPlans)
		if s.deps.Dispatcher != nil {
			r.Post("/dispatch", s.handleDispatch)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.logger, http.StatusNotFound, api.CodeNotFound, "route not found")
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening on the configured port.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		// Requests outlive ctx; Stop drains them through Shutdown
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server error", "error", err)
		}
	}()

	s.logger.Info("http server started", "addr", ln.Addr().String())
	return nil
}

// Addr returns the listening address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	start := time.Now()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	select {
	case <-s.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("http server stopped", "duration", time.Since(start))
	return nil
}
