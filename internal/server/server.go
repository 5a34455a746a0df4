// Package server is the persistence gateway: it stores the artwork, recipe
// and color tables as opaque JSON arrays in a blob store.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"artdesk/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// table describes one persisted table and the wording of its responses.
type table struct {
	name    string // route suffix: load-<name>, save-<name>
	key     string
	field   string // JSON body field
	noun    string // "rows", "recipes"
	subject string // "data", "recipes"
}

var tables = []table{
	{name: "data", key: storage.KeyArtwork, field: "data", noun: "rows", subject: "data"},
	{name: "recipes", key: storage.KeyRecipes, field: "recipes", noun: "recipes", subject: "recipes"},
	{name: "colors", key: storage.KeyColors, field: "colors", noun: "colors", subject: "colors"},
}

type Options struct {
	// Prefix is prepended to every route, e.g. "/make-server".
	Prefix string
	// Token enables bearer auth when non-empty.
	Token  string
	Logger *zap.Logger
}

type Server struct {
	store  storage.Blobs
	opts   Options
	logger *zap.Logger
	mux    *http.ServeMux
}

func New(store storage.Blobs, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opts.Prefix = strings.TrimRight(opts.Prefix, "/")
	s := &Server{
		store:  store,
		opts:   opts,
		logger: logger,
		mux:    http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	p := s.opts.Prefix
	s.mux.Handle("GET "+p+"/health", s.gate(http.HandlerFunc(s.handleHealth)))
	for _, t := range tables {
		s.mux.Handle("GET "+p+"/load-"+t.name, s.gate(s.handleLoad(t)))
		s.mux.Handle("POST "+p+"/save-"+t.name, s.gate(s.handleSave(t)))
	}
	s.mux.Handle("GET "+p+"/metrics", promhttp.Handler())
}

// gate applies bearer auth to a gateway route.
func (s *Server) gate(next http.Handler) http.Handler {
	return requireToken(s.opts.Token, next)
}

// Handler returns the full middleware chain.
func (s *Server) Handler() http.Handler {
	return cors(s.observe(s.mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("gateway listening", zap.String("addr", ln.Addr().String()), zap.String("prefix", s.opts.Prefix))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("gateway stopped")
	return <-errCh
}
