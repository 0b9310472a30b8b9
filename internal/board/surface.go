package board

import "stocks/internal/provider"

// Part names the half of a selection that a result or error belongs to.
type Part int

const (
	PartQuote Part = iota
	PartLogo
)

func (p Part) String() string {
	if p == PartLogo {
		return "logo"
	}
	return "quote"
}

// QuoteView is a quote prepared for display.
type QuoteView struct {
	CompanyName string
	Symbol      string
	Price       string
	Change      string
	Tone        Tone
}

// NewQuoteView formats q for display.
func NewQuoteView(q provider.Quote) QuoteView {
	return QuoteView{
		CompanyName: q.CompanyName,
		Symbol:      q.Symbol,
		Price:       FormatNumber(q.Price),
		Change:      FormatNumber(q.Change),
		Tone:        ToneForChange(q.Change),
	}
}

// PlaceholderView is shown while a selection is loading.
func PlaceholderView() QuoteView {
	return QuoteView{
		CompanyName: Placeholder,
		Symbol:      Placeholder,
		Price:       Placeholder,
		Change:      Placeholder,
		Tone:        Neutral,
	}
}

// LogoView is a resolved logo. Data and ContentType are empty when image
// bytes were not downloaded.
type LogoView struct {
	URL         string
	ContentType string
	Data        []byte
}

// Surface is the display the board renders to. All methods are called from
// the goroutine running Board.Run, so implementations need no locking of
// their own for board-driven state.
type Surface interface {
	SetBusy(busy bool)
	ShowPlaceholder()
	ShowQuote(q QuoteView)
	ShowLogo(l LogoView)
	ShowError(part Part, err error)
}
