// Package cli provides the stocks command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stocks/internal/app"
	"stocks/internal/config"
)

// BuildFunc assembles the application for a command.
type BuildFunc func(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app.App, error)

// Options wires the CLI to its environment. Zero fields use the process
// defaults.
type Options struct {
	Out   io.Writer
	Err   io.Writer
	Build BuildFunc
	// Ask picks an option index for the pick command.
	Ask AskFunc
}

// state is shared by every command of one invocation.
type state struct {
	opts   Options
	cfg    config.Config
	logger *slog.Logger
}

// Run executes the root command and returns the process exit code.
func Run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(Options{}).ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// NewRootCmd creates the root command.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	if opts.Build == nil {
		opts.Build = app.New
	}
	if opts.Ask == nil {
		opts.Ask = surveyAsk
	}
	st := &state{opts: opts}

	var (
		configPath string
		debug      bool
	)
	rootCmd := &cobra.Command{
		Use:   "stocks",
		Short: "Stock quotes and company logos from IEX Cloud",
		Long: `stocks shows the latest price and price change of a company together with
its logo. Pick a company interactively, or query one directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				configPath = os.Getenv("CONFIG_FILE")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if debug {
				cfg.Debug = true
			}
			st.cfg = cfg
			st.logger = app.NewLogger(cmd.ErrOrStderr(), cfg.Debug)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default behavior: interactive picker
			return st.runPick(cmd)
		},
	}
	rootCmd.SetOut(opts.Out)
	rootCmd.SetErr(opts.Err)

	rootCmd.AddCommand(newPickCmd(st))
	rootCmd.AddCommand(newQuoteCmd(st))
	rootCmd.AddCommand(newCompaniesCmd(st))
	rootCmd.AddCommand(newMoversCmd(st))

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file path (default config.json if present)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	return rootCmd
}

func (st *state) build(ctx context.Context) (*app.App, error) {
	return st.opts.Build(ctx, st.cfg, st.logger)
}
