package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalfolio-backend/internal/domain"
)

// positionRecord is the stored shape of a position under domain.KeySavedPositions
type positionRecord struct {
	ID        string  `json:"id"`
	Category  string  `json:"category"`
	Symbol    *string `json:"symbol,omitempty"`
	Name      string  `json:"name"`
	Quantity  amount  `json:"quantity"`
	UnitPrice amount  `json:"unitPrice"`
	Currency  string  `json:"currency"`
	Notes     *string `json:"notes,omitempty"`
}

// amount is a decimal written as a bare JSON number with every digit kept.
// Quoted strings are accepted on read.
type amount decimal.Decimal

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).String()), nil
}

func (a *amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*a = amount(d)
	return nil
}

func toRecords(positions []domain.Position) []positionRecord {
	recs := make([]positionRecord, 0, len(positions))
	for _, p := range positions {
		p = p.Clone()
		recs = append(recs, positionRecord{
			ID:        p.ID.String(),
			Category:  string(p.Category),
			Symbol:    p.Symbol,
			Name:      p.Name,
			Quantity:  amount(p.Quantity),
			UnitPrice: amount(p.UnitPrice),
			Currency:  p.Currency,
			Notes:     p.Notes,
		})
	}
	return recs
}

// fromRecords converts stored records back to positions.
// A single malformed record rejects the whole payload.
func fromRecords(recs []positionRecord) ([]domain.Position, error) {
	positions := make([]domain.Position, 0, len(recs))
	for i, r := range recs {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			return nil, fmt.Errorf("record %d: invalid id %q: %w", i, r.ID, err)
		}
		category := domain.Category(r.Category)
		if !category.IsValid() {
			return nil, fmt.Errorf("record %d: %w: %q", i, domain.ErrInvalidCategory, r.Category)
		}
		currency := r.Currency
		if currency == "" {
			currency = domain.DefaultCurrency
		}
		positions = append(positions, domain.Position{
			ID:        id,
			Category:  category,
			Symbol:    r.Symbol,
			Name:      r.Name,
			Quantity:  decimal.Decimal(r.Quantity),
			UnitPrice: decimal.Decimal(r.UnitPrice),
			Currency:  currency,
			Notes:     r.Notes,
		})
	}
	return positions, nil
}
