// Package logo downloads company logo images referenced by provider.Logo.
package logo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/marstr/collection/v2"
	"golang.org/x/sync/singleflight"

	"stocks/internal/provider"
)

const (
	// DefaultMaxBytes caps a downloaded image.
	DefaultMaxBytes = 2 << 20
	// DefaultCacheItems bounds the number of images kept in memory.
	DefaultCacheItems = 64
	// DefaultTimeout bounds one shared download.
	DefaultTimeout = 30 * time.Second

	op = "logo image"
)

// HTTPClient describes an HTTP client.
//
//go:generate mockgen -package=logo_test -destination=mock_http_client_test.go -source=fetcher.go HTTPClient
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Image is a downloaded logo.
type Image struct {
	URL         string
	ContentType string
	Data        []byte
}

// Fetcher downloads images, coalescing concurrent requests for the same URL
// and remembering recent successful downloads.
type Fetcher struct {
	httpClient HTTPClient
	maxBytes   int64
	timeout    time.Duration
	logger     *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	cache *collection.LRUCache[string, Image]
}

// Option configures a Fetcher.
type Option func(*Fetcher)

func WithHTTPClient(c HTTPClient) Option {
	return func(f *Fetcher) { f.httpClient = c }
}

// WithMaxBytes sets the largest accepted image size. Values <= 0 keep the default.
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

// WithTimeout bounds each download. Values <= 0 keep the default.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithCacheItems sets how many images are kept in memory.
func WithCacheItems(n uint) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.cache = collection.NewLRUCache[string, Image](n)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		httpClient: http.DefaultClient,
		maxBytes:   DefaultMaxBytes,
		timeout:    DefaultTimeout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		cache:      collection.NewLRUCache[string, Image](DefaultCacheItems),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Fetch downloads the image at url. Transport failures and non-200 responses
// yield a *provider.NetworkError; oversize or non-image bodies yield a
// *provider.DecodeError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Image, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Image{}, &provider.NetworkError{Op: op, Err: fmt.Errorf("empty url")}
	}

	f.mu.Lock()
	img, ok := f.cache.Get(url)
	f.mu.Unlock()
	if ok {
		return img, nil
	}

	// The download outlives any single caller; each caller stops waiting on
	// its own context without failing the others.
	ch := f.group.DoChan(url, func() (any, error) {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.timeout)
		defer cancel()
		img, err := f.download(dctx, url)
		if err != nil {
			return Image{}, err
		}
		f.mu.Lock()
		f.cache.Put(url, img)
		f.mu.Unlock()
		return img, nil
	})

	select {
	case <-ctx.Done():
		return Image{}, &provider.NetworkError{Op: op, Symbol: url, Err: fmt.Errorf("waiting for download: %w", ctx.Err())}
	case res := <-ch:
		if res.Shared {
			f.logger.DebugContext(ctx, "logo download shared", "url", url)
		}
		if res.Err != nil {
			return Image{}, res.Err
		}
		return res.Val.(Image), nil
	}
}

func (f *Fetcher) download(ctx context.Context, url string) (Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Image{}, &provider.NetworkError{Op: op, Symbol: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "image/*")

	res, err := f.httpClient.Do(req)
	if err != nil {
		return Image{}, &provider.NetworkError{Op: op, Symbol: url, Err: fmt.Errorf("performing request: %w", err)}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		f.logger.WarnContext(ctx, "logo unexpected status", "url", url, "status", res.StatusCode)
		return Image{}, &provider.NetworkError{
			Op:         op,
			Symbol:     url,
			StatusCode: res.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", res.StatusCode),
		}
	}

	// one extra byte tells an exact fit from an oversize body
	data, err := io.ReadAll(io.LimitReader(res.Body, f.maxBytes+1))
	if err != nil {
		return Image{}, &provider.NetworkError{Op: op, Symbol: url, StatusCode: res.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(data)) > f.maxBytes {
		return Image{}, &provider.DecodeError{Op: op, Symbol: url, Err: fmt.Errorf("image exceeds %d bytes", f.maxBytes)}
	}

	ct := http.DetectContentType(data)
	if strings.HasPrefix(ct, "text/xml") && strings.HasPrefix(res.Header.Get("Content-Type"), "image/svg+xml") {
		// sniffing cannot recognize SVG
		ct = "image/svg+xml"
	}
	if !strings.HasPrefix(ct, "image/") {
		return Image{}, &provider.DecodeError{Op: op, Symbol: url, Err: fmt.Errorf("unexpected content type %q", ct)}
	}
	return Image{URL: url, ContentType: ct, Data: data}, nil
}
