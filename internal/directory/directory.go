// Package directory holds the fixed, ordered list of companies a user can
// pick from.
package directory

import (
	"errors"
	"fmt"
	"strings"
)

// Company pairs a display name with its ticker symbol.
type Company struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// ErrNotFound is returned by Lookup when no company matches.
var ErrNotFound = errors.New("company not found")

// Directory is an ordered, read-only mapping from display name to ticker
// symbol. The zero value is an empty directory.
type Directory struct {
	companies []Company
	byName    map[string]int
	bySymbol  map[string]int
}

// Default returns the companies offered when no list is configured.
func Default() []Company {
	return []Company{
		{Name: "Apple", Symbol: "AAPL"},
		{Name: "Microsoft", Symbol: "MSFT"},
		{Name: "Google", Symbol: "GOOG"},
		{Name: "Amazon", Symbol: "AMZN"},
		{Name: "Facebook", Symbol: "FB"},
		{Name: "Novavax, Inc.", Symbol: "NVAX"},
		{Name: "Koss Corp.", Symbol: "KOSS"},
	}
}

// New builds a directory preserving the order of companies. Names and
// symbols must be non-empty and names must be unique.
func New(companies []Company) (*Directory, error) {
	d := &Directory{
		companies: make([]Company, 0, len(companies)),
		byName:    make(map[string]int, len(companies)),
		bySymbol:  make(map[string]int, len(companies)),
	}
	for i, c := range companies {
		c.Name = strings.TrimSpace(c.Name)
		c.Symbol = strings.ToUpper(strings.TrimSpace(c.Symbol))
		if c.Name == "" {
			return nil, fmt.Errorf("company %d: empty name", i)
		}
		if c.Symbol == "" {
			return nil, fmt.Errorf("company %q: empty symbol", c.Name)
		}
		if _, dup := d.byName[c.Name]; dup {
			return nil, fmt.Errorf("company %q: duplicate name", c.Name)
		}
		d.byName[c.Name] = len(d.companies)
		// First entry wins when two names share a symbol.
		if _, ok := d.bySymbol[c.Symbol]; !ok {
			d.bySymbol[c.Symbol] = len(d.companies)
		}
		d.companies = append(d.companies, c)
	}
	return d, nil
}

// Len returns the number of companies.
func (d *Directory) Len() int { return len(d.companies) }

// At returns the company at index i.
func (d *Directory) At(i int) (Company, bool) {
	if i < 0 || i >= len(d.companies) {
		return Company{}, false
	}
	return d.companies[i], true
}

// Companies returns a copy of the list in display order.
func (d *Directory) Companies() []Company {
	out := make([]Company, len(d.companies))
	copy(out, d.companies)
	return out
}

// Names returns the display names in order.
func (d *Directory) Names() []string {
	out := make([]string, len(d.companies))
	for i, c := range d.companies {
		out[i] = c.Name
	}
	return out
}

// IndexOf resolves a display name (exact) or a ticker symbol
// (case-insensitive) to its position.
func (d *Directory) IndexOf(key string) (int, bool) {
	key = strings.TrimSpace(key)
	if i, ok := d.byName[key]; ok {
		return i, true
	}
	if i, ok := d.bySymbol[strings.ToUpper(key)]; ok {
		return i, true
	}
	return -1, false
}

// Lookup is IndexOf returning the company itself.
func (d *Directory) Lookup(key string) (Company, error) {
	i, ok := d.IndexOf(key)
	if !ok {
		return Company{}, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return d.companies[i], nil
}
