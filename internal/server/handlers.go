package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stocks/internal/aggregate"
	"stocks/internal/board"
	"stocks/internal/directory"
	"stocks/internal/provider"
)

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type quoteResponse struct {
	provider.Quote
	Tone string `json:"tone"`
}

type logoResponse struct {
	Symbol   string `json:"symbol"`
	ImageURL string `json:"imageUrl"`
}

type moversResponse struct {
	aggregate.Summary
	Failures []aggregate.Failure `json:"failures"`
}

func health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) companies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"companies": s.dir.Companies()})
}

// resolve maps a company name or symbol from the directory to its symbol.
// Keys outside the directory pass through as symbols.
func (s *Server) resolve(key string) string {
	key = strings.TrimSpace(key)
	if co, err := s.dir.Lookup(key); err == nil {
		return co.Symbol
	}
	return key
}

func (s *Server) quote(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	q, err := s.p.FetchQuote(ctx, s.resolve(c.Param("symbol")))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{Quote: q, Tone: board.ToneForChange(q.Change).String()})
}

func (s *Server) logo(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	symbol := s.resolve(c.Param("symbol"))
	l, err := s.p.FetchLogo(ctx, symbol)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logoResponse{Symbol: strings.ToUpper(symbol), ImageURL: l.ImageURL})
}

func (s *Server) logoImage(c *gin.Context) {
	if s.logos == nil {
		c.JSON(http.StatusNotImplemented, errorBody{Error: "logo downloads are disabled", RequestID: c.GetString(ctxRequestID)})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	l, err := s.p.FetchLogo(ctx, s.resolve(c.Param("symbol")))
	if err != nil {
		s.fail(c, err)
		return
	}
	img, err := s.logos.Fetch(ctx, l.ImageURL)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func (s *Server) movers(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.timeout)
	defer cancel()

	quotes, failures := aggregate.Collect(ctx, s.p, s.dir.Companies(), aggregate.DefaultConcurrency)
	if len(quotes) == 0 && len(failures) > 0 {
		s.fail(c, failures[0].Err)
		return
	}
	if failures == nil {
		failures = []aggregate.Failure{}
	}
	c.JSON(http.StatusOK, moversResponse{Summary: aggregate.Movers(quotes), Failures: failures})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.WarnContext(c.Request.Context(), "upstream failure", "path", c.Request.URL.Path, "status", status, "err", err)
	}
	c.JSON(status, errorBody{Error: err.Error(), RequestID: c.GetString(ctxRequestID)})
}

// statusFor maps provider errors to HTTP statuses:
// invalid symbol 400, upstream 404 404, other network or decode failures 502.
func statusFor(err error) int {
	var ne *provider.NetworkError
	switch {
	case errors.Is(err, provider.ErrInvalidSymbol):
		return http.StatusBadRequest
	case errors.Is(err, directory.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ne):
		if ne.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case provider.IsDecode(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
