package iex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"stocks/internal/provider"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// symbols start with a letter or digit so "." and ".." never become path segments
var symbolPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.-]{0,9}$`)

// ValidSymbol reports whether symbol can be embedded into a request path.
func ValidSymbol(symbol string) bool {
	return symbolPattern.MatchString(symbol)
}

// getObject performs GET {baseURL}/stock/{symbol}/{resource} and decodes the
// body into a JSON object.
func (c *Client) getObject(ctx context.Context, op, symbol, resource string) (map[string]any, error) {
	symbol = strings.TrimSpace(symbol)
	if !ValidSymbol(symbol) {
		return nil, &provider.NetworkError{Op: op, Symbol: symbol, Err: fmt.Errorf("%w: %q", provider.ErrInvalidSymbol, symbol)}
	}

	query := maps.Clone(c.query)
	raw := fmt.Sprintf("%s/stock/%s/%s?%s", strings.TrimRight(c.baseURL, "/"), url.PathEscape(symbol), resource, query.Encode())
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &provider.NetworkError{Op: op, Symbol: symbol, Err: fmt.Errorf("building url: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, &provider.NetworkError{Op: op, Symbol: symbol, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header = c.header.Clone()
	req.Header.Set("Accept", "application/json")

	c.logger.DebugContext(ctx, "iex request", "op", op, "symbol", symbol)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &provider.NetworkError{Op: op, Symbol: symbol, Err: fmt.Errorf("performing request: %w", err)}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		c.logger.WarnContext(ctx, "iex unexpected status", "op", op, "symbol", symbol, "status", res.StatusCode)
		return nil, &provider.NetworkError{
			Op:         op,
			Symbol:     symbol,
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(b)),
			Err:        fmt.Errorf("unexpected status code: %d", res.StatusCode),
		}
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &provider.NetworkError{Op: op, Symbol: symbol, StatusCode: res.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}

	var body any
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, &provider.DecodeError{Op: op, Symbol: symbol, Err: err}
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return nil, &provider.DecodeError{Op: op, Symbol: symbol, Err: fmt.Errorf("expected object, got %T", body)}
	}
	return obj, nil
}

// requireValue extracts a mandatory, non-null field of type T.
func requireValue[T any](data map[string]any, key string) (T, error) {
	var zero T
	v, ok := data[key]
	if !ok {
		return zero, fmt.Errorf("missing field")
	}
	if v == nil {
		return zero, fmt.Errorf("null value")
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected type: %T", v)
	}
	return t, nil
}
