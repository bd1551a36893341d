// Package cli implements the folio command line client.
// Commands open the configured store directly and do not need a running server.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/simaogato/goalfolio-backend/internal/app"
	"github.com/simaogato/goalfolio-backend/internal/config"
	"github.com/simaogato/goalfolio-backend/internal/logging"
)

type globalFlags struct {
	configPath string
	storage    string
	noColor    bool
}

// NewRootCommand builds the folio command tree
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	c := &cobra.Command{
		Use:   "folio",
		Short: "folio tracks a personal investment portfolio",
		Long: `folio tracks cash, equities, digital assets and other holdings,
records the daily total value of the portfolio and keeps a ticker watchlist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.noColor {
				color.NoColor = true
			}
		},
	}
	c.PersistentFlags().StringVar(&g.configPath, "config", os.Getenv("GOALFOLIO_CONFIG"), "config file (default ./goalfolio.yaml)")
	c.PersistentFlags().StringVar(&g.storage, "storage", "", "storage spec, overrides storage.spec (e.g. file:data, sqlite:data/goalfolio.db)")
	c.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "disable colored output")

	c.AddCommand(
		newPositionsCommand(g),
		newTotalCommand(g),
		newAddCommand(g),
		newUpdateCommand(g),
		newRemoveCommand(g),
		newRemoveCategoryCommand(g),
		newHistoryCommand(g),
		newNetWorthCommand(g),
		newTickersCommand(g),
		newExportCommand(g),
	)
	return c
}

// Execute runs the root command and exits non-zero on error
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	c := NewRootCommand()
	err := c.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(c.ErrOrStderr(), "%s\n", err.Error())
		os.Exit(1)
	}
}

// withApp opens the ledger for the duration of fn
func (g *globalFlags) withApp(cmd *cobra.Command, fn func(*app.App) error) (err error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return err
	}
	if g.storage != "" {
		cfg.Storage.Spec = g.storage
	}

	log, err := logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	// stdout belongs to the command; keep stderr for problems
	log = log.Level(max(log.GetLevel(), zerolog.WarnLevel))

	a, err := app.Open(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, a.Close())
	}()
	return fn(a)
}
