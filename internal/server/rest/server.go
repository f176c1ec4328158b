// Package rest exposes the link service over HTTP with JSON bodies.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tnyr/internal/logging"
	"github.com/dmitrijs2005/tnyr/internal/server/config"
	"github.com/dmitrijs2005/tnyr/internal/server/models"
	"github.com/dmitrijs2005/tnyr/internal/server/services"
)

// LinkService is what the handlers need from services.LinkService.
type LinkService interface {
	Shorten(ctx context.Context, rawURL string) (string, error)
	StoreClientLink(ctx context.Context, in services.ClientLink) error
	GetClientLink(ctx context.Context, lookupHash string) (*models.Material, error)
	Resolve(ctx context.Context, id string) (*services.Resolution, error)
	Takedown(ctx context.Context, id, token string) (models.Scheme, error)
}

type Server struct {
	address         string
	readTimeout     time.Duration
	writeTimeout    time.Duration
	shutdownTimeout time.Duration
	domain          string

	links  LinkService
	logger logging.Logger
	mux    *http.ServeMux
}

func NewServer(cfg *config.Config, links LinkService, l logging.Logger) *Server {
	s := &Server{
		address:         cfg.EndpointAddrHTTP,
		readTimeout:     cfg.ReadTimeout,
		writeTimeout:    cfg.WriteTimeout,
		shutdownTimeout: cfg.ShutdownTimeout,
		domain:          cfg.DomainName,
		links:           links,
		logger:          l.With("module", "http_server"),
		mux:             http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /shorten-server", s.handleShortenServer)
	s.mux.HandleFunc("POST /shorten", s.handleShortenClient)
	s.mux.HandleFunc("GET /get-encrypted-url", s.handleGetEncryptedURL)
	s.mux.HandleFunc("POST /delete-url", s.handleDeleteURL)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /{id}", s.handleRedirect)
}

// Handler returns the mux wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.accessLog(s.recoverer(cors(s.mux))))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.readTimeout,
		ReadHeaderTimeout: s.readTimeout,
		WriteTimeout:      s.writeTimeout,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
