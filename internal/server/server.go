// Package server exposes the directory, quotes and logos over HTTP.
package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"stocks/internal/directory"
	"stocks/internal/logo"
	"stocks/internal/provider"
)

// LogoFetcher downloads logo images.
type LogoFetcher interface {
	Fetch(ctx context.Context, url string) (logo.Image, error)
}

type Server struct {
	dir     *directory.Directory
	p       provider.Provider
	logos   LogoFetcher
	logger  *slog.Logger
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLogoFetcher enables GET /api/logo/:symbol/image.
func WithLogoFetcher(f LogoFetcher) Option {
	return func(s *Server) { s.logos = f }
}

// WithTimeout bounds the upstream work of a single request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func New(dir *directory.Directory, p provider.Provider, opts ...Option) *Server {
	s := &Server{
		dir:     dir,
		p:       p,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: 15 * time.Second,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router returns the gin engine serving every route.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(
		requestID(),
		accessLog(s.logger),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowHeaders:    []string{"Content-Type", "Authorization", HeaderRequestID},
			ExposeHeaders:   []string{HeaderRequestID},
			MaxAge:          12 * time.Hour,
		}),
		withGzip(),
		recoverPanic(s.logger),
	)

	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	api := r.Group("/api")
	{
		api.GET("/companies", s.companies)
		api.GET("/quote/:symbol", s.quote)
		api.GET("/logo/:symbol", s.logo)
		api.GET("/logo/:symbol/image", s.logoImage)
		api.GET("/movers", s.movers)
	}
	return r
}

// HTTPServer wraps the router with the timeouts used in production.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
