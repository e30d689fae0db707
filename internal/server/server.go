package server

import (
	"context"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jpalmerr/wifiboard/internal/metrics"
	"github.com/jpalmerr/wifiboard/internal/monitor"
	"github.com/jpalmerr/wifiboard/internal/predict"
	"github.com/jpalmerr/wifiboard/internal/stream"
)

const (
	// sseWriteTimeout is the maximum time allowed for a single SSE write operation.
	// This prevents goroutine leaks when clients are slow or disconnected.
	// Must be <= shutdown timeout to ensure clean shutdown.
	sseWriteTimeout = 5 * time.Second

	// defaultTitle is used when no custom title is configured.
	defaultTitle = "WifiBoard"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"
)

// Config carries the server tunables that are not runtime collaborators.
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// Title is the dashboard title ("WifiBoard" when empty).
	Title string

	// Assets is the embedded filesystem holding the dashboard page. May be
	// nil, in which case no dashboard is served.
	Assets fs.FS

	// Metrics, when non-nil, is served at /metrics.
	Metrics *metrics.Set

	// Model, when non-nil, powers location-based predictions.
	Model *predict.Model
}

// Server handles HTTP requests for the WifiBoard dashboard and API.
//
// The server is designed for graceful shutdown via context cancellation.
type Server struct {
	logger  *slog.Logger
	session *monitor.Session
	hub     *stream.Hub
	cfg     Config

	httpServer *http.Server

	// baseCtx is the engine lifetime context captured by Start. Monitoring
	// started over HTTP must outlive the request that started it, so
	// handlers anchor session starts here rather than on r.Context().
	baseCtx context.Context
}

// NewServer creates a new HTTP [Server] fronting session and hub.
//
// The server is not started until [Server.Start] is called. A nil logger
// falls back to slog.Default.
func NewServer(logger *slog.Logger, session *monitor.Session, hub *stream.Hub, cfg Config) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		logger:  logger,
		session: session,
		hub:     hub,
		cfg:     cfg,
		baseCtx: context.Background(),
	}
}

// routes assembles the chi router with all handlers mounted.
func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	// read API
	r.Get("/api/signal", s.handleSignal)
	r.Get("/api/networks", s.handleNetworks)
	r.Get("/api/networks/{ssid}/history", s.handleHistory)
	r.Get("/api/monitor", s.handleMonitorStatus)

	// commands
	r.Post("/api/scan", s.handleScan)
	r.Post("/api/monitor/start", s.handleMonitorStart)
	r.Post("/api/monitor/stop", s.handleMonitorStop)
	r.Post("/api/monitor/select", s.handleSelect)
	r.Post("/api/monitor/refresh", s.handleRefresh)
	r.Post("/api/predict", s.handlePredict)

	// event stream
	r.Get("/api/events", s.handleEvents)

	if s.cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.cfg.Metrics.Handler())
	}
	if s.cfg.Assets != nil {
		r.Get("/", s.handleDashboard)
	}
	return r
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. The server will continue running until the context is
// cancelled, at which point it initiates a graceful shutdown with a 5-second
// timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx = ctx

	// create listener first to verify port availability synchronously
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.cfg.Port, err)
	}

	s.httpServer = &http.Server{
		Handler: s.routes(),
		// BaseContext derives all request contexts from the server context.
		// When ctx is cancelled, all request contexts are also cancelled,
		// enabling graceful shutdown of long-running handlers like SSE.
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	// shutdown on context cancellation
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handleDashboard serves the main dashboard page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.cfg.Assets == nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// read index.html from embedded assets
	content, err := fs.ReadFile(s.cfg.Assets, "assets/index.html")
	if err != nil {
		http.Error(w, "Dashboard not found", http.StatusInternalServerError)
		return
	}

	// apply title substitution with HTML escaping to prevent XSS
	title := s.cfg.Title
	if title == "" {
		title = defaultTitle
	}
	safeTitle := html.EscapeString(title)
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, safeTitle)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err = w.Write([]byte(rendered)); err != nil {
		s.logger.Error("failed to write dashboard response", "error", err)
	}
}
