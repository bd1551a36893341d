package dashboard

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/simaogato/goalfolio-backend/internal/domain"
)

// PositionReader exposes the current ledger snapshot
type PositionReader interface {
	Positions() []domain.Position
}

// HistoryReader exposes the valuation history summary
type HistoryReader interface {
	Summary() domain.SeriesSummary
}

// CategoryTotal is the aggregate of one category
type CategoryTotal struct {
	Category domain.Category
	Total    decimal.Decimal
	Count    int
	Weight   decimal.Decimal // share of the net worth in percent, 2 decimal places
}

// NetWorthResult represents the calculated net worth
type NetWorthResult struct {
	Total      decimal.Decimal
	Liquidity  decimal.Decimal
	Invested   decimal.Decimal
	ByCategory []CategoryTotal
}

// DashboardService handles dashboard-related operations
type DashboardService struct {
	Positions PositionReader
	History   HistoryReader
}

// NewDashboardService creates a new DashboardService instance
func NewDashboardService(positions PositionReader, history HistoryReader) *DashboardService {
	return &DashboardService{
		Positions: positions,
		History:   history,
	}
}

// GetNetWorth calculates the total net worth
// Logic:
//   - ByCategory: sum of market values and count per category, in fixed category order
//   - Liquidity: the cash total
//   - Invested: every other category
//   - Total: Liquidity + Invested
//   - Weight: category total / Total * 100, rounded to 2 places (0 when Total is 0)
func (s *DashboardService) GetNetWorth(ctx context.Context) (*NetWorthResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// 1. Aggregate per category
	totals := make(map[domain.Category]decimal.Decimal, len(domain.Categories))
	counts := make(map[domain.Category]int, len(domain.Categories))
	for _, p := range s.Positions.Positions() {
		totals[p.Category] = totals[p.Category].Add(p.MarketValue())
		counts[p.Category]++
	}

	// 2. Split into liquidity and invested
	liquidity := totals[domain.CategoryCash]
	invested := decimal.Zero
	for _, c := range domain.Categories {
		if c != domain.CategoryCash {
			invested = invested.Add(totals[c])
		}
	}

	// 3. Calculate total and weights
	total := liquidity.Add(invested)
	byCategory := make([]CategoryTotal, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		byCategory = append(byCategory, CategoryTotal{
			Category: c,
			Total:    totals[c],
			Count:    counts[c],
			Weight:   weight(totals[c], total),
		})
	}

	return &NetWorthResult{
		Total:      total,
		Liquidity:  liquidity,
		Invested:   invested,
		ByCategory: byCategory,
	}, nil
}

// Performance summarises the valuation history: change since the first
// recorded day and the value range
func (s *DashboardService) Performance(ctx context.Context) domain.SeriesSummary {
	return s.History.Summary()
}

func weight(part, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).Round(2)
}
