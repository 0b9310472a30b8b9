package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"stocks/internal/app"
	"stocks/internal/config"
	"stocks/internal/directory"
	"stocks/internal/logo"
	"stocks/internal/provider"
)

// manifestEntry describes one company in the output manifest.
type manifestEntry struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	ImageURL    string `json:"imageUrl,omitempty"`
	File        string `json:"file,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	Bytes       int    `json:"bytes,omitempty"`
	Error       string `json:"error,omitempty"`
}

type imageFetcher interface {
	Fetch(ctx context.Context, url string) (logo.Image, error)
}

type dumper struct {
	p           provider.Provider
	images      imageFetcher
	outDir      string
	concurrency int
	maxRetries  int
	timeout     time.Duration
	backoff     time.Duration
	logger      *slog.Logger
}

func main() {
	var (
		outDir      string
		cfgPath     string
		concurrency int
		maxRetries  int
	)
	flag.StringVar(&outDir, "out", "logos", "output directory")
	flag.StringVar(&cfgPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
	flag.IntVar(&concurrency, "concurrency", 4, "number of parallel downloads")
	flag.IntVar(&maxRetries, "retries", 3, "max retries on 429/5xx")
	flag.Parse()

	// Load config/env
	cfg, err := config.Load(cfgPath)
	logger := app.NewLogger(os.Stderr, err == nil && cfg.Debug)
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup", "err", err)
		os.Exit(1)
	}
	defer a.Close()

	d := &dumper{
		p:           a.Provider,
		images:      a.Logos,
		outDir:      outDir,
		concurrency: concurrency,
		maxRetries:  maxRetries,
		timeout:     time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
		backoff:     250 * time.Millisecond,
		logger:      logger,
	}
	entries, err := d.run(ctx, a.Directory.Companies())
	if err != nil {
		logger.Error("dump", "err", err)
		os.Exit(1)
	}
	failed := 0
	for _, e := range entries {
		if e.Error != "" {
			failed++
		}
	}
	logger.Info("done", "out", outDir, "companies", len(entries), "failed", failed)
	if failed == len(entries) {
		os.Exit(1)
	}
}

// run downloads every company's logo into outDir with a worker pool and
// writes manifest.json listing the outcome per company in directory order.
func (d *dumper) run(ctx context.Context, companies []directory.Company) ([]manifestEntry, error) {
	if err := os.MkdirAll(d.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create out: %w", err)
	}
	if d.concurrency <= 0 {
		d.concurrency = 1
	}

	type job struct {
		idx     int
		company directory.Company
	}
	jobs := make(chan job, d.concurrency*2)
	entries := make([]manifestEntry, len(companies))
	wg := sync.WaitGroup{}

	worker := func() {
		defer wg.Done()
		for j := range jobs {
			entries[j.idx] = d.dumpOne(ctx, j.company)
		}
	}
	for i := 0; i < d.concurrency; i++ {
		wg.Add(1)
		go worker()
	}

	// enqueue jobs
	for i, c := range companies {
		jobs <- job{idx: i, company: c}
	}
	close(jobs)
	wg.Wait()

	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(d.outDir, "manifest.json"), b, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	return entries, nil
}

func (d *dumper) dumpOne(ctx context.Context, c directory.Company) manifestEntry {
	e := manifestEntry{Name: c.Name, Symbol: c.Symbol}
	fail := func(err error) manifestEntry {
		d.logger.Warn("logo failed", "symbol", c.Symbol, "err", err)
		e.Error = err.Error()
		return e
	}

	var img logo.Image
	err := d.retry(ctx, func(ctx context.Context) error {
		l, err := d.p.FetchLogo(ctx, c.Symbol)
		if err != nil {
			return err
		}
		e.ImageURL = l.ImageURL
		img, err = d.images.Fetch(ctx, l.ImageURL)
		return err
	})
	if err != nil {
		return fail(err)
	}

	name := c.Symbol + extFor(img.ContentType)
	if err := os.WriteFile(filepath.Join(d.outDir, name), img.Data, 0o644); err != nil {
		return fail(err)
	}
	e.File, e.ContentType, e.Bytes = name, img.ContentType, len(img.Data)
	d.logger.Debug("logo saved", "symbol", c.Symbol, "file", name, "bytes", len(img.Data))
	return e
}

// retry runs fn with a per-attempt timeout, backing off exponentially while
// the upstream answers 429 or 5xx.
func (d *dumper) retry(ctx context.Context, fn func(context.Context) error) error {
	attempt := 0
	for {
		actx, cancel := ctx, context.CancelFunc(func() {})
		if d.timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, d.timeout)
		}
		err := fn(actx)
		cancel()
		if err == nil || !retryable(err) || attempt >= d.maxRetries {
			return err
		}
		back := d.backoff * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(back):
		}
		attempt++
	}
}

func retryable(err error) bool {
	var ne *provider.NetworkError
	if !errors.As(err, &ne) {
		return false
	}
	return ne.StatusCode == http.StatusTooManyRequests || (ne.StatusCode >= 500 && ne.StatusCode < 600)
}

// extFor picks a file extension for an image content type.
func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/svg+xml":
		return ".svg"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}
