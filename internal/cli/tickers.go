package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simaogato/goalfolio-backend/internal/app"
)

func newTickersCommand(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "tickers",
		Short: "manage the ticker watchlist",
	}
	c.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "list saved tickers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return g.withApp(cmd, func(a *app.App) error {
					tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
					for _, t := range a.Watchlist.Tickers() {
						fmt.Fprintf(tw, "%s\t%s\n", t.Symbol, t.Name)
					}
					return tw.Flush()
				})
			},
		},
		&cobra.Command{
			Use:   "save <symbol> [name]",
			Short: "add a ticker to the watchlist",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(cmd *cobra.Command, args []string) error {
				name := args[0]
				if len(args) == 2 {
					name = args[1]
				}
				return g.withApp(cmd, func(a *app.App) error {
					saved, err := a.Watchlist.Save(cmd.Context(), args[0], name)
					if err != nil {
						return err
					}
					if !saved {
						_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is already saved\n", args[0])
						return err
					}
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", args[0])
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "remove <symbol>",
			Short: "remove a ticker from the watchlist",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return g.withApp(cmd, func(a *app.App) error {
					removed, err := a.Watchlist.Remove(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if !removed {
						_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is not saved\n", args[0])
						return err
					}
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "check <symbol>",
			Short: "report whether a ticker is saved",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return g.withApp(cmd, func(a *app.App) error {
					answer := "no"
					if a.Watchlist.IsSaved(args[0]) {
						answer = "yes"
					}
					_, err := fmt.Fprintln(cmd.OutOrStdout(), answer)
					return err
				})
			},
		},
	)
	return c
}
