// Package assetserver serves a local image directory over HTTP while a
// conversion session is running.
//
// The server binds a loopback address, answers GET and HEAD with the files
// under its root and is shut down when the session closes. Directory
// listings are never served.
package assetserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultAddr is the listen address when none is configured.
const DefaultAddr = "localhost:3000"

// readHeaderTimeout bounds slow clients (gosec G112).
const readHeaderTimeout = 5 * time.Second

// Sentinel errors for server lifecycle.
var (
	ErrStart          = errors.New("failed to start asset server")
	ErrAlreadyStarted = errors.New("asset server already started")
	ErrNotStarted     = errors.New("asset server not started")
)

// Server is a static file server rooted at a directory.
type Server struct {
	root   string
	addr   string
	logger *log.Logger

	mu  sync.Mutex
	srv *http.Server
	ln  net.Listener
}

// New creates a server for root on addr ("" = DefaultAddr, port 0 = any
// free port). A nil logger discards request logs.
func New(root, addr string, logger *log.Logger) *Server {
	if addr == "" {
		addr = DefaultAddr
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{root: root, addr: addr, logger: logger}
}

// Handler returns the router serving root.
func (s *Server) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.root))

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	serve := func(w http.ResponseWriter, req *http.Request) {
		if strings.HasSuffix(req.URL.Path, "/") {
			http.NotFound(w, req)
			return
		}
		files.ServeHTTP(w, req)
	}
	r.Get("/*", serve)
	r.Head("/*", serve)
	return r
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return ErrAlreadyStarted
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrStart, s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	s.srv = srv
	s.ln = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("asset server stopped", "err", err)
		}
	}()

	s.logger.Info("started image server", "root", s.root, "url", s.baseURL())
	return nil
}

// BaseURL returns http://host:port for the bound listener, or "" before
// Start. Wildcard hosts are reported as localhost.
func (s *Server) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL()
}

func (s *Server) baseURL() string {
	if s.ln == nil {
		return ""
	}

	host, _, err := net.SplitHostPort(s.addr)
	if err != nil || host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	port := 0
	if tcp, ok := s.ln.Addr().(*net.TCPAddr); ok {
		port = tcp.Port
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(port))
}

// Close stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if srv == nil {
		return ErrNotStarted
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down asset server: %w", err)
	}
	s.logger.Info("gracefully shut down image server")
	return nil
}

// logRequests logs each request at debug level.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Debug("asset request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond),
		)
	})
}
