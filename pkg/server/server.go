package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/jameshartig/sungrowmon/pkg/isolarcloud"
	"github.com/jameshartig/sungrowmon/pkg/log"
	"github.com/jameshartig/sungrowmon/pkg/session"
	"github.com/jameshartig/sungrowmon/pkg/views"
	"github.com/levenlabs/go-lflag"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultListenAddr only binds loopback since the API acts on behalf of the
// signed in desktop user.
const DefaultListenAddr = "127.0.0.1:8765"

// Session is the application state the API exposes.
type Session interface {
	Snapshot() session.View
	State() session.State
	Authenticated() bool
	Login(ctx context.Context, form views.LoginForm) error
	Logout(ctx context.Context)
	LoadPlants(ctx context.Context) error
	SelectPlant(ctx context.Context, psID int) error
	Back()
}

var _ Session = (*session.Controller)(nil)

// Server is the local HTTP JSON API over a Session.
type Server struct {
	session  Session
	registry *prometheus.Registry

	listenAddr string
	httpServer *http.Server
}

// New returns a Server listening on listenAddr.
func New(sess Session, listenAddr string) *Server {
	return &Server{
		session:    sess,
		registry:   MetricsRegistry(),
		listenAddr: listenAddr,
	}
}

// Configured returns a Server configured from flags.
func Configured(sess Session) *Server {
	listenAddr := lflag.String("http-listen", DefaultListenAddr, "HTTP server listen address")

	srv := New(sess, DefaultListenAddr)

	lflag.Do(func() {
		if _, _, err := net.SplitHostPort(*listenAddr); err != nil {
			panic(fmt.Sprintf("invalid http-listen: %v", err))
		}
		srv.listenAddr = *listenAddr
	})

	return srv
}

// MetricsRegistry returns a registry with every collector of the app.
func MetricsRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	for _, c := range isolarcloud.MetricsCollectors() {
		registry.MustRegister(c)
	}
	for _, c := range views.MetricsCollectors() {
		registry.MustRegister(c)
	}
	return registry
}

// URL is the address a browser can open to reach the server.
func (s *Server) URL() string {
	host, port, err := net.SplitHostPort(s.listenAddr)
	if err != nil {
		return "http://" + s.listenAddr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func (s *Server) setupHandler() http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/state", s.handleState)
	apiMux.HandleFunc("GET /api/auth/status", s.handleAuthStatus)
	apiMux.HandleFunc("POST /api/auth/login", s.handleLogin)
	apiMux.HandleFunc("POST /api/auth/logout", s.handleLogout)
	apiMux.HandleFunc("GET /api/login/gateways", s.handleGateways)
	apiMux.HandleFunc("POST /api/plants/refresh", s.handleRefreshPlants)
	apiMux.HandleFunc("POST /api/plants/{psID}/select", s.handleSelectPlant)
	apiMux.HandleFunc("POST /api/back", s.handleBack)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.Handle("/api/", apiMux)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", s.handleHealthz)
	return s.requestIDMiddleware(gziphandler.GzipHandler(s.securityHeadersMiddleware(s.sameOriginMiddleware(mux))))
}

// Run starts the HTTP server and blocks until the context is canceled or an error occurs.
// It also handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:        s.listenAddr,
		Handler:     s.setupHandler(),
		ReadTimeout: 15 * time.Second,
		// no WriteTimeout, a login only responds once the authorization
		// callback arrived or timed out
		IdleTimeout: 15 * time.Second,
	}

	// use a channel to capturing server errors
	errChan := make(chan error, 1)
	go func() {
		defer close(errChan)
		log.Ctx(ctx).InfoContext(ctx, "starting server", slog.String("addr", s.listenAddr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Ctx(ctx).InfoContext(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Ctx(r.Context()).WarnContext(r.Context(), "failed to write response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

func writeJSONError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg}); err != nil {
		slog.Warn("failed to write error response", slog.Any("error", err))
		panic(http.ErrAbortHandler)
	}
}

// handleIndex sends a browser opening the server to the current state.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api/state", http.StatusFound)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ok")); err != nil {
		panic(http.ErrAbortHandler)
	}
}
