package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simaogato/goalfolio-backend/internal/adapter/xlsx"
	"github.com/simaogato/goalfolio-backend/internal/app"
)

func newExportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "write positions and history to an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				snap := xlsx.Snapshot{
					Positions:   a.Ledger.Positions(),
					History:     a.History.Series(),
					GeneratedAt: time.Now(),
				}
				if err := xlsx.WriteFile(args[0], snap); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "Exported %d positions and %d days to %s\n",
					len(snap.Positions), len(snap.History), args[0])
				return err
			})
		},
	}
}
