package provider

import (
	"context"
	"errors"
	"fmt"
)

// Quote is a snapshot of a company's latest trading price and price change.
type Quote struct {
	CompanyName string  `json:"companyName"`
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	Change      float64 `json:"change"`
}

// Logo points to a company's icon image. It is resolved separately from the quote.
type Logo struct {
	ImageURL string `json:"imageUrl"`
}

// Provider fetches quotes and logo references for a ticker symbol.
// Implementations return *NetworkError or *DecodeError on failure.
type Provider interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
	FetchLogo(ctx context.Context, symbol string) (Logo, error)
}

// ErrInvalidSymbol is wrapped by a NetworkError when a symbol cannot be
// embedded into a request URL.
var ErrInvalidSymbol = errors.New("invalid symbol")

// NetworkError reports a transport failure, a request that could not be
// built, or a non-200 response.
type NetworkError struct {
	Op         string
	Symbol     string
	StatusCode int    // 0 when no response was received
	Body       string // leading part of a non-200 body, if any
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		if e.Body != "" {
			return fmt.Sprintf("%s %s: http %d: %s", e.Op, e.Symbol, e.StatusCode, e.Body)
		}
		return fmt.Sprintf("%s %s: http %d", e.Op, e.Symbol, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Symbol, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports a malformed or incomplete response body.
type DecodeError struct {
	Op     string
	Symbol string
	Field  string // empty when the body itself is unusable
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s %s: decoding %q: %v", e.Op, e.Symbol, e.Field, e.Err)
	}
	return fmt.Sprintf("%s %s: decoding body: %v", e.Op, e.Symbol, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is or wraps a *NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsDecode reports whether err is or wraps a *DecodeError.
func IsDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
