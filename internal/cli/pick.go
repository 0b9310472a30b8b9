package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	"stocks/internal/board"
	stockterm "stocks/internal/terminal"
)

const quitOption = "Quit"

// errQuit ends the pick loop without an error.
var errQuit = errors.New("quit")

// AskFunc presents options and returns the chosen index. defaultIndex is
// the option selected initially.
type AskFunc func(message string, options []string, defaultIndex int) (int, error)

func surveyAsk(message string, options []string, defaultIndex int) (int, error) {
	var idx int
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Help:    "Pick a company to load its latest quote and logo.",
		Default: options[defaultIndex],
	}
	if err := survey.AskOne(prompt, &idx); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return 0, errQuit
		}
		return 0, err
	}
	return idx, nil
}

func newPickCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Pick companies interactively (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.runPick(cmd)
		},
	}
}

// runPick renders the first company, then asks for a company, renders it once
// both fetches settle and asks again until the user quits.
func (st *state) runPick(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := st.build(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	surface := stockterm.New(cmd.OutOrStdout())
	b := board.New(a.Directory, a.Provider, surface, a.BoardOptions()...)

	runErr := make(chan error, 1)
	go func() { runErr <- b.Run(ctx) }()

	// the first company is shown before the first prompt
	if err := selectAndWait(ctx, b, 0); err != nil {
		cancel()
		<-runErr
		return err
	}

	options := append(a.Directory.Names(), quitOption)
	last := 0
	for ctx.Err() == nil {
		idx, err := st.opts.Ask("Company:", options, last)
		if errors.Is(err, errQuit) || (err == nil && idx == len(options)-1) {
			break
		}
		if err != nil {
			cancel()
			<-runErr
			return fmt.Errorf("prompt: %w", err)
		}
		last = idx

		if err := selectAndWait(ctx, b, idx); err != nil {
			cancel()
			<-runErr
			return err
		}
	}

	cancel()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// selectAndWait selects idx and blocks until it has rendered or ctx ends.
func selectAndWait(ctx context.Context, b *board.Board, idx int) error {
	done, err := b.Select(ctx, idx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	select {
	case <-done:
	case <-ctx.Done():
	}
	return nil
}
