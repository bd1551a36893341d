package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/record"
	"github.com/simaogato/goalfolio-backend/internal/usecase/seeder"
	"github.com/simaogato/goalfolio-backend/internal/usecase/valuation"
	"go.uber.org/multierr"
)

// Op names the kind of mutation reported in a Change
type Op string

const (
	OpAdd       Op = "add"
	OpUpdate    Op = "update"
	OpRemove    Op = "remove"
	OpRemoveAll Op = "removeAll"
)

// Change describes one committed mutation of the ledger
type Change struct {
	Version    uint64
	Op         Op
	PositionID uuid.UUID       // uuid.Nil for OpRemoveAll
	Category   domain.Category // set for OpAdd and OpRemoveAll
	Total      decimal.Decimal // total market value after the mutation
}

// Service is the authoritative, ordered list of positions.
// Every mutation persists the full snapshot and records today's total in the
// valuation history before it returns.
type Service struct {
	Store   domain.KeyValueStore
	History *valuation.Service

	mu        sync.RWMutex
	positions []domain.Position
	version   uint64
	log       zerolog.Logger
	seed      func() []domain.Position

	subMu   sync.Mutex
	subs    map[int]func(Change)
	nextSub int
}

// Option customises a Service
type Option func(*Service)

// WithLogger sets the logger used for load/save failures
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log.With().Str("service", "ledger").Logger() }
}

// WithSeed replaces the positions written to an empty store
func WithSeed(positions []domain.Position) Option {
	return func(s *Service) {
		s.seed = func() []domain.Position { return clonePositions(positions) }
	}
}

// NewService creates the ledger and loads its snapshot.
// Logic:
//  1. If the snapshot key was never written, persist the seed positions
//  2. Read and decode the snapshot; a bad payload is logged and the seed (or nothing) is kept
//  3. Backfill the valuation history if it is empty, using the current total as baseline
//  4. Record today's total
func NewService(ctx context.Context, store domain.KeyValueStore, history *valuation.Service, opts ...Option) (*Service, error) {
	s := &Service{
		Store:   store,
		History: history,
		log:     zerolog.Nop(),
		seed:    seeder.DefaultPositions,
		subs:    make(map[int]func(Change)),
	}
	for _, opt := range opts {
		opt(s)
	}

	seed := s.seed()
	payload := record.Encode(s.log, domain.KeySavedPositions, toRecords(seed))
	seeded, err := seeder.NewKeySeeder(store).SeedIfAbsent(ctx, domain.KeySavedPositions, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to seed positions: %w", err)
	}
	if seeded {
		s.log.Info().Int("positions", len(seed)).Msg("Seeded default positions")
		s.positions = seed
	}

	s.load(ctx)

	total := s.TotalMarketValue().InexactFloat64()
	if _, err := history.BackfillIfEmpty(ctx, total); err != nil {
		return nil, err
	}
	if err := history.UpsertToday(ctx, total); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) load(ctx context.Context) {
	data, ok, err := record.Read(ctx, s.Store, domain.KeySavedPositions)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read positions, keeping in-memory state")
		return
	}
	if !ok {
		return
	}

	var recs []positionRecord
	if !record.Decode(s.log, domain.KeySavedPositions, data, &recs) {
		return
	}
	positions, err := fromRecords(recs)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to decode stored positions, keeping in-memory state")
		return
	}
	s.positions = positions
}

// Add appends a position to the end of the ledger
func (s *Service) Add(ctx context.Context, p domain.Position) error {
	if err := p.Validate(); err != nil {
		return err
	}
	p = p.Clone()

	s.mu.Lock()
	if s.indexOf(p.ID) >= 0 {
		s.mu.Unlock()
		return errors.Join(domain.ErrInvalidPosition, fmt.Errorf("position %s already exists", p.ID))
	}
	s.positions = append(s.positions, p)
	change, err := s.commit(ctx, Change{Op: OpAdd, PositionID: p.ID, Category: p.Category})
	s.mu.Unlock()

	s.notify(change)
	return err
}

// Update replaces the position with the same ID, keeping its place in the ledger.
// Every field, the category included, is taken from p; only an empty currency
// falls back to the default.
// An unknown ID is a no-op: nothing is persisted and false is returned.
func (s *Service) Update(ctx context.Context, p domain.Position) (bool, error) {
	if !p.Category.IsValid() {
		return false, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, p.Category)
	}
	p = p.Clone()

	s.mu.Lock()
	i := s.indexOf(p.ID)
	if i < 0 {
		s.mu.Unlock()
		return false, nil
	}
	if p.Currency == "" {
		p.Currency = domain.DefaultCurrency
	}
	s.positions[i] = p
	change, err := s.commit(ctx, Change{Op: OpUpdate, PositionID: p.ID, Category: p.Category})
	s.mu.Unlock()

	s.notify(change)
	return true, err
}

// Remove deletes every position with the given ID.
// The snapshot is persisted even when nothing matched.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	s.positions = s.filter(func(p domain.Position) bool { return p.ID != id })
	change, err := s.commit(ctx, Change{Op: OpRemove, PositionID: id})
	s.mu.Unlock()

	s.notify(change)
	return err
}

// RemoveAll deletes every position of a category
func (s *Service) RemoveAll(ctx context.Context, category domain.Category) error {
	s.mu.Lock()
	s.positions = s.filter(func(p domain.Position) bool { return p.Category != category })
	change, err := s.commit(ctx, Change{Op: OpRemoveAll, Category: category})
	s.mu.Unlock()

	s.notify(change)
	return err
}

// commit persists the snapshot and today's total. Callers hold s.mu.
// Both writes are attempted; their errors are combined.
func (s *Service) commit(ctx context.Context, change Change) (Change, error) {
	s.version++
	total := s.totalLocked()
	change.Version = s.version
	change.Total = total

	var err error
	err = multierr.Append(err, record.Save(ctx, s.Store, s.log, domain.KeySavedPositions, toRecords(s.positions)))
	err = multierr.Append(err, s.History.UpsertToday(ctx, total.InexactFloat64()))
	if err != nil {
		s.log.Error().Err(err).Str("op", string(change.Op)).Msg("Failed to persist ledger change")
	}
	return change, err
}

func (s *Service) indexOf(id uuid.UUID) int {
	for i, p := range s.positions {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Service) filter(keep func(domain.Position) bool) []domain.Position {
	kept := make([]domain.Position, 0, len(s.positions))
	for _, p := range s.positions {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Positions returns a copy of every position in insertion order
func (s *Service) Positions() []domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePositions(s.positions)
}

// PositionsIn returns the positions of one category in insertion order
func (s *Service) PositionsIn(category domain.Category) []domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Position{}
	for _, p := range s.positions {
		if p.Category == category {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (s *Service) CashPositions() []domain.Position {
	return s.PositionsIn(domain.CategoryCash)
}

func (s *Service) EquityPositions() []domain.Position {
	return s.PositionsIn(domain.CategoryEquities)
}

func (s *Service) DigitalAssetPositions() []domain.Position {
	return s.PositionsIn(domain.CategoryDigitalAssets)
}

func (s *Service) OtherPositions() []domain.Position {
	return s.PositionsIn(domain.CategoryOther)
}

// Get returns the position with the given ID
func (s *Service) Get(id uuid.UUID) (domain.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.positions[i].Clone(), nil
	}
	return domain.Position{}, domain.ErrNotFound
}

// TotalMarketValue sums the market value of every position
func (s *Service) TotalMarketValue() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalLocked()
}

func (s *Service) totalLocked() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.positions {
		total = total.Add(p.MarketValue())
	}
	return total
}

// Version increases by one with every mutation
func (s *Service) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn to be called after every committed mutation.
// fn runs on the mutating goroutine, after the ledger lock is released.
// The returned function removes the subscription.
func (s *Service) Subscribe(fn func(Change)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
		})
	}
}

func (s *Service) notify(change Change) {
	s.subMu.Lock()
	fns := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(change)
	}
}

func clonePositions(positions []domain.Position) []domain.Position {
	out := make([]domain.Position, len(positions))
	for i, p := range positions {
		out[i] = p.Clone()
	}
	return out
}

func normalizeSymbol(symbol string) *string {
	return domain.StringPtr(strings.ToUpper(strings.TrimSpace(symbol)))
}
