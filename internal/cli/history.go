package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/goalfolio-backend/internal/app"
)

type historyRunner struct {
	g       *globalFlags
	summary bool
	last    int
}

func newHistoryCommand(g *globalFlags) *cobra.Command {
	r := historyRunner{g: g}
	c := &cobra.Command{
		Use:   "history",
		Short: "print the daily total value history",
		Args:  cobra.NoArgs,
		RunE:  r.execute,
	}
	c.Flags().BoolVarP(&r.summary, "summary", "s", false, "print the first/last/change summary instead of every day")
	c.Flags().IntVarP(&r.last, "last", "n", 0, "only print the last n days")
	return c
}

func (r *historyRunner) execute(cmd *cobra.Command, args []string) error {
	return r.g.withApp(cmd, func(a *app.App) error {
		w := cmd.OutOrStdout()
		if r.summary {
			sum := a.History.Summary()
			if sum.Points == 0 {
				_, err := fmt.Fprintln(w, "No history")
				return err
			}
			fmt.Fprintf(w, "%s .. %s (%d days)\n", sum.FirstKey, sum.LastKey, sum.Points)
			fmt.Fprintf(w, "First: %s\n", formatUSD(decimal.NewFromFloat(sum.First)))
			fmt.Fprintf(w, "Last:  %s\n", formatUSD(decimal.NewFromFloat(sum.Last)))
			fmt.Fprintf(w, "Range: %s .. %s\n", formatUSD(decimal.NewFromFloat(sum.Min)), formatUSD(decimal.NewFromFloat(sum.Max)))
			fmt.Fprint(w, "Change: ")
			writeChange(w, decimal.NewFromFloat(sum.Change), sum.ChangePercent)
			return nil
		}

		series := a.History.Series()
		if r.last > 0 && r.last < len(series) {
			series = series[len(series)-r.last:]
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		for _, p := range series {
			fmt.Fprintf(tw, "%s\t%s\t\n", p.Key, formatUSD(decimal.NewFromFloat(p.Value)))
		}
		return tw.Flush()
	})
}

func newNetWorthCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "networth",
		Short: "print the total split by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				result, err := a.Dashboard.GetNetWorth(cmd.Context())
				if err != nil {
					return err
				}

				w := cmd.OutOrStdout()
				bold.Fprintf(w, "Net worth: %s\n", formatUSD(result.Total))
				fmt.Fprintf(w, "Liquidity: %s\n", formatUSD(result.Liquidity))
				fmt.Fprintf(w, "Invested:  %s\n", formatUSD(result.Invested))

				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "CATEGORY\tPOSITIONS\tVALUE\tWEIGHT")
				for _, ct := range result.ByCategory {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s%%\n", ct.Category, ct.Count, formatUSD(ct.Total), ct.Weight.StringFixed(2))
				}
				return tw.Flush()
			})
		},
	}
}
