package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"stocks/internal/directory"
	"stocks/internal/provider"
)

// DefaultConcurrency bounds in-flight quote requests in Collect.
const DefaultConcurrency = 4

// Failure records a company whose quote could not be fetched.
type Failure struct {
	Company directory.Company `json:"company"`
	Err     error             `json:"-"`
	Message string            `json:"error"`
}

// Collect fetches quotes for companies with at most limit requests in
// flight. A failed company does not abort the batch. Quotes and failures
// both come back in the order of companies.
func Collect(ctx context.Context, p provider.Provider, companies []directory.Company, limit int) ([]provider.Quote, []Failure) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	type outcome struct {
		quote provider.Quote
		err   error
	}
	outcomes := make([]outcome, len(companies))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, c := range companies {
		g.Go(func() error {
			q, err := p.FetchQuote(ctx, c.Symbol)
			outcomes[i] = outcome{quote: q, err: err}
			return nil
		})
	}
	_ = g.Wait()

	quotes := make([]provider.Quote, 0, len(companies))
	var failures []Failure
	for i, o := range outcomes {
		if o.err != nil {
			failures = append(failures, Failure{Company: companies[i], Err: o.err, Message: o.err.Error()})
			continue
		}
		quotes = append(quotes, o.quote)
	}
	return quotes, failures
}
