package iex

import (
	"context"

	"stocks/internal/provider"
)

// FetchQuote retrieves the latest quote for symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (provider.Quote, error) {
	const op = "quote"

	// {
	//   "companyName": "Apple Inc.",
	//   "symbol": "AAPL",
	//   "latestPrice": 150.25,
	//   "change": -1.5,
	//   ...
	// }
	body, err := c.getObject(ctx, op, symbol, "quote")
	if err != nil {
		return provider.Quote{}, err
	}

	companyName, err := requireValue[string](body, "companyName")
	if err != nil {
		return provider.Quote{}, &provider.DecodeError{Op: op, Symbol: symbol, Field: "companyName", Err: err}
	}
	sym, err := requireValue[string](body, "symbol")
	if err != nil {
		return provider.Quote{}, &provider.DecodeError{Op: op, Symbol: symbol, Field: "symbol", Err: err}
	}
	price, err := requireValue[float64](body, "latestPrice")
	if err != nil {
		return provider.Quote{}, &provider.DecodeError{Op: op, Symbol: symbol, Field: "latestPrice", Err: err}
	}
	change, err := requireValue[float64](body, "change")
	if err != nil {
		return provider.Quote{}, &provider.DecodeError{Op: op, Symbol: symbol, Field: "change", Err: err}
	}

	return provider.Quote{
		CompanyName: companyName,
		Symbol:      sym,
		Price:       price,
		Change:      change,
	}, nil
}
