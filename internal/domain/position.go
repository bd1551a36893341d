package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category represents the asset class a position belongs to
type Category string

const (
	CategoryCash          Category = "cash"
	CategoryEquities      Category = "equities"
	CategoryDigitalAssets Category = "digitalAssets"
	CategoryOther         Category = "other"
)

// DefaultCurrency is used when a position is created without a currency
const DefaultCurrency = "USD"

// Categories lists every category in display order
var Categories = []Category{
	CategoryCash,
	CategoryEquities,
	CategoryDigitalAssets,
	CategoryOther,
}

// IsValid reports whether c is one of the known categories
func (c Category) IsValid() bool {
	switch c {
	case CategoryCash, CategoryEquities, CategoryDigitalAssets, CategoryOther:
		return true
	}
	return false
}

// HasSymbol reports whether positions of this category are expected to carry a ticker symbol
func (c Category) HasSymbol() bool {
	return c == CategoryEquities || c == CategoryDigitalAssets
}

// ParseCategory resolves a category name, accepting any letter case and the
// "digital_assets"/"digital-assets" spellings used by the CLI and HTTP surfaces.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))
	for _, c := range Categories {
		if strings.ToLower(string(c)) == norm {
			return c, nil
		}
	}
	// "digital" is accepted as shorthand for digital assets
	if norm == "digital" {
		return CategoryDigitalAssets, nil
	}
	return "", ErrInvalidCategory
}

// Position represents a single holding in the ledger
type Position struct {
	ID        uuid.UUID
	Category  Category
	Symbol    *string // nil for cash and other assets
	Name      string
	Quantity  decimal.Decimal // shares, units or amount; sign is not enforced
	UnitPrice decimal.Decimal // price per unit in Currency
	Currency  string          // stored as-is, never converted
	Notes     *string
}

// NewPosition builds a position with a fresh ID. An empty currency falls back to DefaultCurrency.
func NewPosition(
	category Category,
	symbol *string,
	name string,
	quantity decimal.Decimal,
	unitPrice decimal.Decimal,
	currency string,
	notes *string,
) Position {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Position{
		ID:        uuid.New(),
		Category:  category,
		Symbol:    symbol,
		Name:      name,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Currency:  currency,
		Notes:     notes,
	}
}

// MarketValue returns Quantity * UnitPrice
func (p Position) MarketValue() decimal.Decimal {
	return p.Quantity.Mul(p.UnitPrice)
}

// SymbolOrEmpty returns the ticker symbol, or "" when the position has none
func (p Position) SymbolOrEmpty() string {
	if p.Symbol == nil {
		return ""
	}
	return *p.Symbol
}

// NotesOrEmpty returns the notes, or "" when the position has none
func (p Position) NotesOrEmpty() string {
	if p.Notes == nil {
		return ""
	}
	return *p.Notes
}

// Clone returns a deep copy; optional fields are copied so callers cannot mutate ledger state
func (p Position) Clone() Position {
	cp := p
	if p.Symbol != nil {
		s := *p.Symbol
		cp.Symbol = &s
	}
	if p.Notes != nil {
		n := *p.Notes
		cp.Notes = &n
	}
	return cp
}

// Validate ensures the position is structurally usable by the ledger.
// Quantity and price signs and the presence of a symbol are conventions, not rules,
// so they are not checked here.
func (p *Position) Validate() error {
	if p.ID == uuid.Nil {
		return errors.Join(ErrInvalidPosition, errors.New("position ID cannot be nil"))
	}
	if !p.Category.IsValid() {
		return errors.Join(ErrInvalidPosition, ErrInvalidCategory)
	}
	return nil
}

// StringPtr returns a pointer to s, or nil when s is empty
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
