package watchlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/record"
	"github.com/simaogato/goalfolio-backend/internal/usecase/seeder"
)

// ErrInvalidTicker is returned when a ticker has a blank symbol
var ErrInvalidTicker = errors.New("invalid ticker")

// Service keeps the list of saved tickers under domain.KeySavedTickers.
// Symbols are unique regardless of letter case and keep the case they were saved with.
type Service struct {
	Store domain.KeyValueStore

	mu      sync.RWMutex
	tickers []domain.Ticker
	log     zerolog.Logger
}

// Option customises a Service
type Option func(*Service)

// WithLogger sets the logger used for load/save failures
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log.With().Str("service", "watchlist").Logger() }
}

// NewService creates the watchlist, seeding the default tickers on first use
func NewService(ctx context.Context, store domain.KeyValueStore, opts ...Option) (*Service, error) {
	s := &Service{
		Store: store,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	defaults := seeder.DefaultTickers()
	payload := record.Encode(s.log, domain.KeySavedTickers, defaults)
	seeded, err := seeder.NewKeySeeder(store).SeedIfAbsent(ctx, domain.KeySavedTickers, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to seed tickers: %w", err)
	}
	if seeded {
		s.tickers = defaults
	}

	data, ok, err := record.Read(ctx, store, domain.KeySavedTickers)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("Failed to read tickers, keeping in-memory state")
	case ok:
		var loaded []domain.Ticker
		if record.Decode(s.log, domain.KeySavedTickers, data, &loaded) {
			s.tickers = loaded
		}
	}
	return s, nil
}

// Tickers returns the saved tickers in the order they were saved
func (s *Service) Tickers() []domain.Ticker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Ticker, len(s.tickers))
	copy(out, s.tickers)
	return out
}

// Save appends a ticker unless one with the same symbol (any case) exists.
// Returns true when the ticker was added.
func (s *Service) Save(ctx context.Context, symbol, name string) (bool, error) {
	t := domain.Ticker{Symbol: strings.TrimSpace(symbol), Name: strings.TrimSpace(name)}
	if err := t.Validate(); err != nil {
		return false, errors.Join(ErrInvalidTicker, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(t.Symbol) >= 0 {
		return false, nil
	}
	s.tickers = append(s.tickers, t)
	return true, s.persist(ctx)
}

// Remove deletes the ticker with the given symbol (any case).
// Returns true when a ticker was removed.
func (s *Service) Remove(ctx context.Context, symbol string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(strings.TrimSpace(symbol))
	if i < 0 {
		return false, nil
	}
	s.tickers = append(s.tickers[:i:i], s.tickers[i+1:]...)
	return true, s.persist(ctx)
}

// IsSaved reports whether a ticker with the given symbol (any case) is saved
func (s *Service) IsSaved(symbol string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(strings.TrimSpace(symbol)) >= 0
}

func (s *Service) indexOf(symbol string) int {
	for i, t := range s.tickers {
		if t.Matches(symbol) {
			return i
		}
	}
	return -1
}

func (s *Service) persist(ctx context.Context) error {
	tickers := s.tickers
	if tickers == nil {
		tickers = []domain.Ticker{}
	}
	return record.Save(ctx, s.Store, s.log, domain.KeySavedTickers, tickers)
}
