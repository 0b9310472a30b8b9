package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"stocks/internal/aggregate"
	"stocks/internal/board"
	"stocks/internal/provider"
	"stocks/internal/terminal"
)

// newCompaniesCmd lists the directory. It needs no network access.
func newCompaniesCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "companies",
		Short: "List the companies available for selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tNAME\tSYMBOL")
			for i, c := range st.cfg.Companies {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, c.Name, c.Symbol)
			}
			return tw.Flush()
		},
	}
}

type quoteOutput struct {
	Quote    *provider.Quote `json:"quote,omitempty"`
	Tone     string          `json:"tone,omitempty"`
	Logo     *provider.Logo  `json:"logo,omitempty"`
	QuoteErr string          `json:"quoteError,omitempty"`
	LogoErr  string          `json:"logoError,omitempty"`
}

// newQuoteCmd fetches one company's quote and logo concurrently.
func newQuoteCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote <name|symbol>",
		Short: "Show the latest quote and logo for a company",
		Long: `Show the latest quote and logo for a company. The argument is a company name
from the directory, or any ticker symbol.
Example: stocks quote Apple --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			a, err := st.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			symbol := args[0]
			if c, err := a.Directory.Lookup(symbol); err == nil {
				symbol = c.Symbol
			}

			var (
				q           provider.Quote
				l           provider.Logo
				img         []byte
				contentType string
				qErr, lErr  error
				g           errgroup.Group
			)
			g.Go(func() error {
				q, qErr = a.Provider.FetchQuote(cmd.Context(), symbol)
				return nil
			})
			g.Go(func() error {
				l, lErr = a.Provider.FetchLogo(cmd.Context(), symbol)
				if lErr != nil || !a.Config.Logo.DownloadImages || asJSON {
					return nil
				}
				im, err := a.Logos.Fetch(cmd.Context(), l.ImageURL)
				if err != nil {
					lErr = err
					return nil
				}
				img, contentType = im.Data, im.ContentType
				return nil
			})
			_ = g.Wait()

			if asJSON {
				out := quoteOutput{}
				if qErr == nil {
					out.Quote = &q
					out.Tone = board.ToneForChange(q.Change).String()
				} else {
					out.QuoteErr = qErr.Error()
				}
				if lErr == nil {
					out.Logo = &l
				} else {
					out.LogoErr = lErr.Error()
				}
				if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				s := terminal.New(cmd.OutOrStdout())
				s.ShowPlaceholder()
				if qErr != nil {
					s.ShowError(board.PartQuote, qErr)
				} else {
					s.ShowQuote(board.NewQuoteView(q))
				}
				if lErr != nil {
					s.ShowError(board.PartLogo, lErr)
				} else {
					s.ShowLogo(board.LogoView{URL: l.ImageURL, ContentType: contentType, Data: img})
				}
				fmt.Fprintln(cmd.OutOrStdout(), s.Card())
			}
			return qErr
		},
	}
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}

// newMoversCmd quotes every directory company and groups them by tone.
func newMoversCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movers",
		Short: "Quote every company and list gainers and losers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			a, err := st.build(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			quotes, failures := aggregate.Collect(cmd.Context(), a.Provider, a.Directory.Companies(), concurrency)
			for _, f := range failures {
				st.logger.Warn("quote failed", "company", f.Company.Name, "symbol", f.Company.Symbol, "err", f.Err)
			}
			if len(quotes) == 0 && len(failures) > 0 {
				return fmt.Errorf("no quotes: %w", failures[0].Err)
			}
			summary := aggregate.Movers(quotes)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			return printMovers(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	cmd.Flags().Int("concurrency", aggregate.DefaultConcurrency, "Maximum quote requests in flight")
	return cmd
}

func printMovers(w io.Writer, s aggregate.Summary) error {
	r := lipgloss.NewRenderer(w)
	header := r.NewStyle().Bold(true).Underline(true)
	tones := map[board.Tone]lipgloss.Style{
		board.Positive: r.NewStyle().Foreground(lipgloss.Color("#10B981")),
		board.Negative: r.NewStyle().Foreground(lipgloss.Color("#EF4444")),
		board.Neutral:  r.NewStyle(),
	}

	groups := []struct {
		title  string
		quotes []provider.Quote
	}{
		{"Gainers", s.Gainers},
		{"Losers", s.Losers},
		{"Unchanged", s.Unchanged},
	}
	for _, g := range groups {
		if len(g.quotes) == 0 {
			continue
		}
		fmt.Fprintln(w, header.Render(g.title))
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, q := range g.quotes {
			v := board.NewQuoteView(q)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Symbol, v.CompanyName, v.Price, tones[v.Tone].Render(v.Change))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
