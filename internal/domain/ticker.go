package domain

import (
	"errors"
	"strings"
)

// Ticker represents a saved watchlist entry
type Ticker struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Matches reports whether the ticker's symbol equals symbol, ignoring case
func (t Ticker) Matches(symbol string) bool {
	return strings.EqualFold(t.Symbol, symbol)
}

// Validate ensures the ticker has a symbol
func (t *Ticker) Validate() error {
	if strings.TrimSpace(t.Symbol) == "" {
		return errors.New("ticker symbol cannot be empty")
	}
	return nil
}
