// Package aggregate summarizes a batch of quotes.
package aggregate

import (
	"sort"
	"strings"

	"stocks/internal/board"
	"stocks/internal/provider"
)

// Summary splits quotes by the tone of their change.
type Summary struct {
	Gainers   []provider.Quote `json:"gainers"`
	Losers    []provider.Quote `json:"losers"`
	Unchanged []provider.Quote `json:"unchanged"`
}

// Movers collapses quotes by symbol and groups them by tone.
// Rules:
// - Symbols compare case-insensitively after trimming; for duplicates the later input wins.
// - Gainers are ordered by change descending, losers by change ascending,
//   so the biggest move comes first in both. Ties break on symbol.
// - Unchanged quotes (zero or NaN change) are ordered by symbol.
func Movers(quotes []provider.Quote) Summary {
	latest := make(map[string]provider.Quote, len(quotes))
	for _, q := range quotes {
		key := strings.ToUpper(strings.TrimSpace(q.Symbol))
		if key == "" {
			continue
		}
		latest[key] = q
	}

	s := Summary{
		Gainers:   []provider.Quote{},
		Losers:    []provider.Quote{},
		Unchanged: []provider.Quote{},
	}
	for _, q := range latest {
		switch board.ToneForChange(q.Change) {
		case board.Positive:
			s.Gainers = append(s.Gainers, q)
		case board.Negative:
			s.Losers = append(s.Losers, q)
		default:
			s.Unchanged = append(s.Unchanged, q)
		}
	}

	sort.Slice(s.Gainers, func(i, j int) bool {
		a, b := s.Gainers[i], s.Gainers[j]
		if a.Change != b.Change {
			return a.Change > b.Change
		}
		return a.Symbol < b.Symbol
	})
	sort.Slice(s.Losers, func(i, j int) bool {
		a, b := s.Losers[i], s.Losers[j]
		if a.Change != b.Change {
			return a.Change < b.Change
		}
		return a.Symbol < b.Symbol
	})
	sort.Slice(s.Unchanged, func(i, j int) bool { return s.Unchanged[i].Symbol < s.Unchanged[j].Symbol })
	return s
}
