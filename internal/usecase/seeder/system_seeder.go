package seeder

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/simaogato/goalfolio-backend/internal/domain"
)

// DefaultPositions returns the positions a brand new ledger starts with: one per category.
// Each call returns positions with fresh IDs.
func DefaultPositions() []domain.Position {
	return []domain.Position{
		// Cash
		domain.NewPosition(domain.CategoryCash, nil, "USD Cash",
			decimal.NewFromInt(1000), decimal.NewFromFloat(1.0), domain.DefaultCurrency, nil),
		// Equities
		domain.NewPosition(domain.CategoryEquities, domain.StringPtr("AAPL"), "Apple Inc.",
			decimal.NewFromInt(5), decimal.NewFromInt(180), domain.DefaultCurrency, nil),
		// Digital Assets
		domain.NewPosition(domain.CategoryDigitalAssets, domain.StringPtr("BTC"), "Bitcoin",
			decimal.NewFromFloat(0.01), decimal.NewFromInt(65000), domain.DefaultCurrency, nil),
		// Other
		domain.NewPosition(domain.CategoryOther, nil, "Savings Bond",
			decimal.NewFromInt(1), decimal.NewFromInt(500), domain.DefaultCurrency, nil),
	}
}

// DefaultTickers returns the watchlist a brand new installation starts with
func DefaultTickers() []domain.Ticker {
	return []domain.Ticker{
		{Symbol: "AAPL", Name: "Apple Inc."},
		{Symbol: "GOOGL", Name: "Alphabet Inc."},
		{Symbol: "AMZN", Name: "Amazon.com, Inc."},
		{Symbol: "VOO", Name: "Vanguard S&P 500 ETF"},
	}
}

// KeySeeder writes initial records into a store
type KeySeeder struct {
	Store domain.KeyValueStore
}

// NewKeySeeder creates a new KeySeeder instance
func NewKeySeeder(store domain.KeyValueStore) *KeySeeder {
	return &KeySeeder{
		Store: store,
	}
}

// SeedIfAbsent writes payload under key only if the key has never been written.
// An existing key is left alone even if its content is empty or corrupt, so
// user data is never replaced by seed data.
// Returns true when the payload was written.
func (s *KeySeeder) SeedIfAbsent(ctx context.Context, key string, payload []byte) (bool, error) {
	_, err := s.Store.Get(ctx, key)
	if err == nil {
		// Key exists, no action needed
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}

	if err := s.Store.Set(ctx, key, payload); err != nil {
		return false, err
	}
	return true, nil
}
