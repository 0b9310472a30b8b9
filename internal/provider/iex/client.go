package iex

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// DefaultBaseURL is the IEX Cloud stable API root.
const DefaultBaseURL = "https://cloud.iexapis.com/stable"

// ErrMissingToken is returned by NewClient when no API token is supplied.
var ErrMissingToken = errors.New("iex: missing API token")

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=iex_test -destination=mock_http_client_test.go -source=client.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a client for the IEX Cloud stock endpoints.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient is the HTTP httpClient.
	httpClient HTTPClient
	// header contains additional headers to be sent with each request.
	header http.Header
	// query carries the API token and is added to every request.
	query url.Values
	logger *slog.Logger
}

// ClientOption is a configuration option for the IEX client.
type ClientOption func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) ClientOption {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new IEX Cloud client authenticated with token.
func NewClient(token string, options ...ClientOption) (*Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	var client = &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	// IEX Cloud authenticates publishable tokens through the query string.
	client.query.Set("token", token)
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// Name identifies the provider in logs and API responses.
func (c *Client) Name() string { return "IEXCloud" }
