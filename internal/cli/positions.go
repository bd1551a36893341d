package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/goalfolio-backend/internal/app"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/ledger"
)

type positionsRunner struct {
	g        *globalFlags
	category string
}

func newPositionsCommand(g *globalFlags) *cobra.Command {
	r := positionsRunner{g: g}
	c := &cobra.Command{
		Use:   "positions",
		Short: "list positions",
		Args:  cobra.NoArgs,
		RunE:  r.execute,
	}
	c.Flags().StringVarP(&r.category, "category", "c", "", "only list one category (cash, equities, digitalAssets, other)")
	return c
}

func (r *positionsRunner) execute(cmd *cobra.Command, args []string) error {
	var category domain.Category
	if r.category != "" {
		c, err := domain.ParseCategory(r.category)
		if err != nil {
			return err
		}
		category = c
	}
	return r.g.withApp(cmd, func(a *app.App) error {
		positions := a.Ledger.Positions()
		if category != "" {
			positions = a.Ledger.PositionsIn(category)
		}
		return writePositions(cmd.OutOrStdout(), positions)
	})
}

func newTotalCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "total",
		Short: "print the total market value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withApp(cmd, func(a *app.App) error {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), formatUSD(a.Ledger.TotalMarketValue()))
				return err
			})
		},
	}
}

// addRunner adds one position of a fixed category
type addRunner struct {
	g        *globalFlags
	category domain.Category
	name     string
	price    string
	currency string
	notes    string
}

func newAddCommand(g *globalFlags) *cobra.Command {
	c := &cobra.Command{
		Use:   "add",
		Short: "add a position",
	}
	c.AddCommand(
		newAddSubcommand(g, domain.CategoryCash, "cash <amount>", "add a cash balance", cobra.ExactArgs(1)),
		newAddSubcommand(g, domain.CategoryEquities, "equity <symbol> <shares> <price>", "add an equity holding", cobra.ExactArgs(3)),
		newAddSubcommand(g, domain.CategoryDigitalAssets, "digital <symbol> <units> <price>", "add a digital asset holding", cobra.ExactArgs(3)),
		newAddSubcommand(g, domain.CategoryOther, "other <name> <amount>", "add any other asset", cobra.ExactArgs(2)),
	)
	return c
}

func newAddSubcommand(g *globalFlags, category domain.Category, use, short string, args cobra.PositionalArgs) *cobra.Command {
	r := addRunner{g: g, category: category}
	c := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE:  r.execute,
	}
	r.setupFlags(c)
	return c
}

func (r *addRunner) setupFlags(c *cobra.Command) {
	switch r.category {
	case domain.CategoryEquities, domain.CategoryDigitalAssets:
		c.Flags().StringVar(&r.name, "name", "", "display name (defaults to the symbol)")
	case domain.CategoryOther:
		c.Flags().StringVar(&r.price, "price", "", "unit price (defaults to 1)")
	}
	c.Flags().StringVar(&r.currency, "currency", "", "ISO currency code (defaults to USD)")
	c.Flags().StringVar(&r.notes, "notes", "", "free-form notes")
}

func (r *addRunner) draft(args []string) (ledger.Draft, error) {
	d := ledger.Draft{
		Category: r.category,
		Name:     r.name,
		Currency: r.currency,
		Notes:    r.notes,
	}

	var quantity string
	switch r.category {
	case domain.CategoryCash:
		quantity = args[0]
	case domain.CategoryEquities, domain.CategoryDigitalAssets:
		d.Symbol = args[0]
		quantity = args[1]
		price, err := parseDecimal("price", args[2])
		if err != nil {
			return d, err
		}
		d.UnitPrice = &price
	case domain.CategoryOther:
		d.Name = args[0]
		quantity = args[1]
		if r.price != "" {
			price, err := parseDecimal("price", r.price)
			if err != nil {
				return d, err
			}
			d.UnitPrice = &price
		}
	}

	q, err := parseDecimal("amount", quantity)
	if err != nil {
		return d, err
	}
	d.Quantity = q
	return d, nil
}

func (r *addRunner) execute(cmd *cobra.Command, args []string) error {
	d, err := r.draft(args)
	if err != nil {
		return err
	}
	return r.g.withApp(cmd, func(a *app.App) error {
		p, err := a.Ledger.AddDraft(cmd.Context(), d)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Added %s %s worth %s\n", p.Category, p.ID, formatMoney(p.MarketValue(), p.Currency))
		_, err = fmt.Fprintf(w, "Total: %s\n", formatUSD(a.Ledger.TotalMarketValue()))
		return err
	})
}

type updateRunner struct {
	g                             *globalFlags
	symbol, name, currency, notes string
	quantity, price               string
}

func newUpdateCommand(g *globalFlags) *cobra.Command {
	r := updateRunner{g: g}
	c := &cobra.Command{
		Use:   "update <id>",
		Short: "change fields of a position",
		Long:  `Change fields of a position. Only the flags given are applied; the category cannot be changed.`,
		Args:  cobra.ExactArgs(1),
		RunE:  r.execute,
	}
	r.setupFlags(c)
	return c
}

func (r *updateRunner) setupFlags(c *cobra.Command) {
	c.Flags().StringVar(&r.symbol, "symbol", "", "ticker symbol (empty clears it)")
	c.Flags().StringVar(&r.name, "name", "", "display name")
	c.Flags().StringVar(&r.quantity, "quantity", "", "quantity")
	c.Flags().StringVar(&r.price, "price", "", "unit price")
	c.Flags().StringVar(&r.currency, "currency", "", "ISO currency code")
	c.Flags().StringVar(&r.notes, "notes", "", "free-form notes (empty clears them)")
}

func (r *updateRunner) patch(cmd *cobra.Command) (ledger.Patch, error) {
	var patch ledger.Patch
	flags := cmd.Flags()
	if flags.Changed("symbol") {
		patch.Symbol = &r.symbol
	}
	if flags.Changed("name") {
		patch.Name = &r.name
	}
	if flags.Changed("currency") {
		patch.Currency = &r.currency
	}
	if flags.Changed("notes") {
		patch.Notes = &r.notes
	}
	if flags.Changed("quantity") {
		q, err := parseDecimal("quantity", r.quantity)
		if err != nil {
			return patch, err
		}
		patch.Quantity = &q
	}
	if flags.Changed("price") {
		p, err := parseDecimal("price", r.price)
		if err != nil {
			return patch, err
		}
		patch.UnitPrice = &p
	}
	if patch == (ledger.Patch{}) {
		return patch, errors.New("nothing to update: pass at least one of --symbol, --name, --quantity, --price, --currency, --notes")
	}
	return patch, nil
}

func (r *updateRunner) execute(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	patch, err := r.patch(cmd)
	if err != nil {
		return err
	}
	return r.g.withApp(cmd, func(a *app.App) error {
		p, found, err := a.Ledger.PatchPosition(cmd.Context(), id, patch)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("position %s: %w", id, domain.ErrNotFound)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Updated %s %s, now worth %s\n", p.Category, p.ID, formatMoney(p.MarketValue(), p.Currency))
		_, err = fmt.Fprintf(w, "Total: %s\n", formatUSD(a.Ledger.TotalMarketValue()))
		return err
	})
}

func newRemoveCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "remove a position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return g.withApp(cmd, func(a *app.App) error {
				p, err := a.Ledger.Get(id)
				if err != nil {
					return fmt.Errorf("position %s: %w", id, err)
				}
				if err := a.Ledger.Remove(cmd.Context(), id); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %s (%s)\nTotal: %s\n",
					p.Name, p.Category, formatUSD(a.Ledger.TotalMarketValue()))
				return err
			})
		},
	}
}

func newRemoveCategoryCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-category <category>",
		Short: "remove every position of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := domain.ParseCategory(args[0])
			if err != nil {
				return err
			}
			return g.withApp(cmd, func(a *app.App) error {
				n := len(a.Ledger.PositionsIn(category))
				if err := a.Ledger.RemoveAll(cmd.Context(), category); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d %s positions\nTotal: %s\n",
					n, category, formatUSD(a.Ledger.TotalMarketValue()))
				return err
			})
		},
	}
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", field, s, domain.ErrInvalidPosition)
	}
	return d, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid position id %q", s)
	}
	return id, nil
}
