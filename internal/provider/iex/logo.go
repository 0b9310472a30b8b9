package iex

import (
	"context"

	"stocks/internal/provider"
)

// FetchLogo retrieves the logo reference for symbol.
func (c *Client) FetchLogo(ctx context.Context, symbol string) (provider.Logo, error) {
	const op = "logo"

	// {"url": "https://storage.googleapis.com/iex/api/logos/AAPL.png"}
	body, err := c.getObject(ctx, op, symbol, "logo")
	if err != nil {
		return provider.Logo{}, err
	}
	u, err := requireValue[string](body, "url")
	if err != nil {
		return provider.Logo{}, &provider.DecodeError{Op: op, Symbol: symbol, Field: "url", Err: err}
	}
	return provider.Logo{ImageURL: u}, nil
}
