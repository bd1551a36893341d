package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/simaogato/goalfolio-backend/internal/domain"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
	bold  = color.New(color.Bold)
)

// formatMoney renders amount in currency, e.g. "$2,850.00".
// Unknown currency codes fall back to "2850.00 XYZ".
func formatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	factor := decimal.New(1, int32(cur.Fraction))
	return money.New(amount.Mul(factor).Round(0).IntPart(), cur.Code).Display()
}

func formatUSD(amount decimal.Decimal) string {
	return formatMoney(amount, domain.DefaultCurrency)
}

// writeChange prints a signed change, green when up and red when down
func writeChange(w io.Writer, change decimal.Decimal, percent float64) {
	text := fmt.Sprintf("%s (%.2f%%)", formatUSD(change), percent)
	if change.IsPositive() {
		text = "+" + text
	}
	if change.IsNegative() {
		red.Fprintln(w, text)
		return
	}
	green.Fprintln(w, text)
}

func writePositions(w io.Writer, positions []domain.Position) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCATEGORY\tSYMBOL\tNAME\tQUANTITY\tPRICE\tVALUE")
	for _, p := range positions {
		symbol := "-"
		if p.Symbol != nil {
			symbol = *p.Symbol
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Category, symbol, p.Name,
			p.Quantity.String(),
			formatMoney(p.UnitPrice, p.Currency),
			formatMoney(p.MarketValue(), p.Currency))
	}
	return tw.Flush()
}
