// Package terminal renders the board to a text terminal with lipgloss.
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"stocks/internal/board"
)

// Palette mirrors the tones: green for gains, red for losses, plain for flat.
var (
	positiveColor = lipgloss.Color("#10B981")
	negativeColor = lipgloss.Color("#EF4444")
	mutedColor    = lipgloss.Color("#6B7280")
	accentColor   = lipgloss.Color("#3B82F6")
)

// Surface implements board.Surface. It keeps the latest state of the
// selection and prints a card each time the selection settles.
type Surface struct {
	w io.Writer

	cardStyle  lipgloss.Style
	titleStyle lipgloss.Style
	labelStyle lipgloss.Style
	mutedStyle lipgloss.Style
	errorStyle lipgloss.Style
	toneStyles map[board.Tone]lipgloss.Style

	quote    board.QuoteView
	logo     string
	quoteErr error
	logoErr  error
}

// New creates a Surface writing to w. Colours are chosen for w's terminal
// capabilities and dropped when w is not a terminal.
func New(w io.Writer) *Surface {
	r := lipgloss.NewRenderer(w)
	return &Surface{
		w: w,
		cardStyle: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1),
		titleStyle: r.NewStyle().Bold(true).Foreground(accentColor),
		labelStyle: r.NewStyle().Width(8).Foreground(mutedColor),
		mutedStyle: r.NewStyle().Foreground(mutedColor).Italic(true),
		errorStyle: r.NewStyle().Foreground(negativeColor),
		toneStyles: map[board.Tone]lipgloss.Style{
			board.Positive: r.NewStyle().Foreground(positiveColor).Bold(true),
			board.Negative: r.NewStyle().Foreground(negativeColor).Bold(true),
			board.Neutral:  r.NewStyle(),
		},
		quote: board.PlaceholderView(),
		logo:  board.Placeholder,
	}
}

func (s *Surface) SetBusy(busy bool) {
	if busy {
		fmt.Fprintln(s.w, s.mutedStyle.Render("fetching..."))
		return
	}
	fmt.Fprintln(s.w, s.Card())
}

func (s *Surface) ShowPlaceholder() {
	s.quote = board.PlaceholderView()
	s.logo = board.Placeholder
	s.quoteErr = nil
	s.logoErr = nil
}

func (s *Surface) ShowQuote(q board.QuoteView) {
	s.quote = q
	s.quoteErr = nil
}

func (s *Surface) ShowLogo(l board.LogoView) {
	s.logo = l.URL
	if len(l.Data) > 0 {
		s.logo = fmt.Sprintf("%s (%s, %s)", l.URL, l.ContentType, humanize.Bytes(uint64(len(l.Data))))
	}
	s.logoErr = nil
}

func (s *Surface) ShowError(part board.Part, err error) {
	switch part {
	case board.PartQuote:
		s.quoteErr = err
	case board.PartLogo:
		s.logoErr = err
	}
}

// Card renders the current state.
func (s *Surface) Card() string {
	var b strings.Builder
	b.WriteString(s.titleStyle.Render(s.quote.CompanyName))
	b.WriteString("\n")
	s.row(&b, "Symbol", s.quote.Symbol)
	if s.quoteErr != nil {
		s.row(&b, "Quote", s.errorStyle.Render("unavailable: "+s.quoteErr.Error()))
	} else {
		s.row(&b, "Price", s.quote.Price)
		s.row(&b, "Change", s.toneStyles[s.quote.Tone].Render(s.quote.Change))
	}
	if s.logoErr != nil {
		s.row(&b, "Logo", s.errorStyle.Render("unavailable: "+s.logoErr.Error()))
	} else {
		s.row(&b, "Logo", s.logo)
	}
	return s.cardStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func (s *Surface) row(b *strings.Builder, label, value string) {
	b.WriteString(s.labelStyle.Render(label))
	b.WriteString(value)
	b.WriteString("\n")
}
