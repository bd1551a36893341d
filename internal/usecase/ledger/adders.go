package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/simaogato/goalfolio-backend/internal/domain"
)

type addOptions struct {
	currency  string
	notes     *string
	name      string
	unitPrice *decimal.Decimal
}

// AddOption customises a position built by the convenience adders
type AddOption func(*addOptions)

// WithCurrency sets the currency tag. Defaults to USD.
func WithCurrency(currency string) AddOption {
	return func(o *addOptions) { o.currency = currency }
}

// WithNotes attaches free-form notes
func WithNotes(notes string) AddOption {
	return func(o *addOptions) { o.notes = domain.StringPtr(notes) }
}

// WithName overrides the display name
func WithName(name string) AddOption {
	return func(o *addOptions) { o.name = name }
}

// WithUnitPrice sets the unit price of an AddOther position. Defaults to 1.
func WithUnitPrice(price decimal.Decimal) AddOption {
	return func(o *addOptions) { o.unitPrice = &price }
}

func buildOptions(name string, opts []AddOption) addOptions {
	o := addOptions{currency: domain.DefaultCurrency, name: name}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AddCash adds a cash position valued at one unit per unit of amount
func (s *Service) AddCash(ctx context.Context, amount decimal.Decimal, opts ...AddOption) (domain.Position, error) {
	o := buildOptions("Cash", opts)
	p := domain.NewPosition(domain.CategoryCash, nil, o.name, amount, decimal.NewFromInt(1), o.currency, o.notes)
	return p, s.Add(ctx, p)
}

// AddEquity adds shares of a listed stock or fund. The symbol is upper-cased.
func (s *Service) AddEquity(ctx context.Context, symbol, name string, shares, unitPrice decimal.Decimal, opts ...AddOption) (domain.Position, error) {
	o := buildOptions(name, opts)
	p := domain.NewPosition(domain.CategoryEquities, normalizeSymbol(symbol), o.name, shares, unitPrice, o.currency, o.notes)
	return p, s.Add(ctx, p)
}

// AddDigitalAsset adds units of a crypto asset. The symbol is upper-cased.
func (s *Service) AddDigitalAsset(ctx context.Context, symbol, name string, units, unitPrice decimal.Decimal, opts ...AddOption) (domain.Position, error) {
	o := buildOptions(name, opts)
	p := domain.NewPosition(domain.CategoryDigitalAssets, normalizeSymbol(symbol), o.name, units, unitPrice, o.currency, o.notes)
	return p, s.Add(ctx, p)
}

// AddOther adds an asset that has no ticker, such as property or a bond
func (s *Service) AddOther(ctx context.Context, name string, amount decimal.Decimal, opts ...AddOption) (domain.Position, error) {
	o := buildOptions(name, opts)
	price := decimal.NewFromInt(1)
	if o.unitPrice != nil {
		price = *o.unitPrice
	}
	p := domain.NewPosition(domain.CategoryOther, nil, o.name, amount, price, o.currency, o.notes)
	return p, s.Add(ctx, p)
}
