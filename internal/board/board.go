// Package board drives a Surface from company selections: it fetches the
// quote and logo for the selected company concurrently and renders the
// results on a single render loop, discarding results of superseded
// selections.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"stocks/internal/directory"
	"stocks/internal/logo"
	"stocks/internal/provider"
)

// LogoLoader downloads the image a logo reference points to.
type LogoLoader interface {
	Fetch(ctx context.Context, url string) (logo.Image, error)
}

// ErrIndexOutOfRange is returned by Select for an index outside the directory.
var ErrIndexOutOfRange = errors.New("board: selection index out of range")

type Board struct {
	dir     *directory.Directory
	p       provider.Provider
	surface Surface
	loader  LogoLoader
	logger  *slog.Logger

	selections chan selection
	results    chan result
}

// Option configures a Board.
type Option func(*Board)

// WithLogoLoader makes the logo worker download the image bytes before the
// logo is rendered. A download failure is reported as a logo failure.
func WithLogoLoader(l LogoLoader) Option {
	return func(b *Board) { b.loader = l }
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func New(dir *directory.Directory, p provider.Provider, surface Surface, opts ...Option) *Board {
	b := &Board{
		dir:        dir,
		p:          p,
		surface:    surface,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		selections: make(chan selection),
		results:    make(chan result),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

type selection struct {
	company directory.Company
	done    chan struct{}
}

type result struct {
	seq   uint64
	part  Part
	quote provider.Quote
	logo  LogoView
	err   error
}

// inflight is the state of the selection currently being fetched.
type inflight struct {
	seq     uint64
	company directory.Company
	cancel  context.CancelFunc
	pending int
	done    chan struct{}
}

func (f *inflight) finish() {
	if f.cancel == nil {
		return
	}
	f.cancel()
	close(f.done)
	*f = inflight{seq: f.seq}
}

// Run is the render loop. Every Surface call happens on the goroutine
// running Run. It returns ctx.Err() once ctx is done.
func (b *Board) Run(ctx context.Context) error {
	var cur inflight
	defer cur.finish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case sel := <-b.selections:
			if cur.cancel != nil {
				b.logger.DebugContext(ctx, "selection superseded", "symbol", cur.company.Symbol, "seq", cur.seq)
			}
			cur.finish()

			fetchCtx, cancel := context.WithCancel(ctx)
			cur = inflight{
				seq:     cur.seq + 1,
				company: sel.company,
				cancel:  cancel,
				pending: 2,
				done:    sel.done,
			}
			b.surface.SetBusy(true)
			b.surface.ShowPlaceholder()

			go b.fetchQuote(fetchCtx, cur.seq, sel.company.Symbol)
			go b.fetchLogo(fetchCtx, cur.seq, sel.company.Symbol)

		case r := <-b.results:
			if r.seq != cur.seq || cur.cancel == nil {
				b.logger.DebugContext(ctx, "stale result discarded", "part", r.part.String(), "seq", r.seq, "current", cur.seq)
				continue
			}
			b.render(ctx, cur.company, r)
			cur.pending--
			if cur.pending == 0 {
				b.surface.SetBusy(false)
				cur.finish()
			}
		}
	}
}

func (b *Board) render(ctx context.Context, c directory.Company, r result) {
	if r.err != nil {
		b.logger.WarnContext(ctx, "fetch failed", "part", r.part.String(), "company", c.Name, "symbol", c.Symbol, "err", r.err)
		b.surface.ShowError(r.part, r.err)
		return
	}
	switch r.part {
	case PartQuote:
		b.surface.ShowQuote(NewQuoteView(r.quote))
	case PartLogo:
		b.surface.ShowLogo(r.logo)
	}
}

// Select starts fetching the company at index. The returned channel is
// closed once the selection has settled or has been superseded by a later
// one. Select blocks until the render loop accepts the selection.
func (b *Board) Select(ctx context.Context, index int) (<-chan struct{}, error) {
	c, ok := b.dir.At(index)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return b.submit(ctx, c)
}

// SelectSymbol is Select for a company looked up by name or symbol.
func (b *Board) SelectSymbol(ctx context.Context, key string) (<-chan struct{}, error) {
	c, err := b.dir.Lookup(key)
	if err != nil {
		return nil, err
	}
	return b.submit(ctx, c)
}

func (b *Board) submit(ctx context.Context, c directory.Company) (<-chan struct{}, error) {
	sel := selection{company: c, done: make(chan struct{})}
	select {
	case b.selections <- sel:
		return sel.done, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *Board) fetchQuote(ctx context.Context, seq uint64, symbol string) {
	q, err := b.p.FetchQuote(ctx, symbol)
	b.post(ctx, result{seq: seq, part: PartQuote, quote: q, err: err})
}

func (b *Board) fetchLogo(ctx context.Context, seq uint64, symbol string) {
	l, err := b.p.FetchLogo(ctx, symbol)
	if err != nil {
		b.post(ctx, result{seq: seq, part: PartLogo, err: err})
		return
	}
	view := LogoView{URL: l.ImageURL}
	if b.loader != nil {
		img, err := b.loader.Fetch(ctx, l.ImageURL)
		if err != nil {
			b.post(ctx, result{seq: seq, part: PartLogo, err: err})
			return
		}
		view.ContentType = img.ContentType
		view.Data = img.Data
	}
	b.post(ctx, result{seq: seq, part: PartLogo, logo: view})
}

// post hands r to the render loop unless the selection was canceled.
func (b *Board) post(ctx context.Context, r result) {
	select {
	case b.results <- r:
	case <-ctx.Done():
	}
}
