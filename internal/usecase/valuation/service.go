package valuation

import (
	"context"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/simaogato/goalfolio-backend/internal/daykey"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/record"
)

const (
	// DefaultBackfillDays is the length of the synthetic series generated for an empty history
	DefaultBackfillDays = 30

	// maxDailyDrift bounds the day-over-day change of the synthetic series (+/- 1.5%)
	maxDailyDrift = 0.015

	// minBaseline keeps the synthetic series away from a zero or negative start
	minBaseline = 1.0
)

// Service owns the day-keyed history of total portfolio value
type Service struct {
	Store domain.KeyValueStore

	mu           sync.RWMutex
	history      domain.ValuationHistory
	log          zerolog.Logger
	now          func() time.Time
	rng          *rand.Rand
	loc          *time.Location
	backfillDays int
}

// Option customises a Service
type Option func(*Service)

// WithLogger sets the logger used for load/save failures
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log.With().Str("service", "valuation").Logger() }
}

// WithClock replaces time.Now, mainly for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand sets the random source of the synthetic backfill
func WithRand(r *rand.Rand) Option {
	return func(s *Service) { s.rng = r }
}

// WithLocation sets the zone used to key days. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

// WithBackfillDays sets how many days BackfillIfEmpty generates. Zero disables the backfill.
func WithBackfillDays(days int) Option {
	return func(s *Service) { s.backfillDays = days }
}

// NewService creates a new valuation Service and loads the persisted history.
// A missing or unreadable history leaves the service with an empty one.
func NewService(ctx context.Context, store domain.KeyValueStore, opts ...Option) *Service {
	s := &Service{
		Store:        store,
		history:      make(domain.ValuationHistory),
		log:          zerolog.Nop(),
		now:          time.Now,
		loc:          time.UTC,
		backfillDays: DefaultBackfillDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *Service) load(ctx context.Context) {
	data, ok, err := record.Read(ctx, s.Store, domain.KeyDailyMarketValues)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read valuation history, starting empty")
		return
	}
	if !ok {
		return
	}

	var loaded domain.ValuationHistory
	if record.Decode(s.log, domain.KeyDailyMarketValues, data, &loaded) && loaded != nil {
		s.history = loaded
	}
}

// TodayKey returns the day-key of the current day
func (s *Service) TodayKey() string {
	return daykey.Key(daykey.At(s.now()), daykey.In(s.loc))
}

// UpsertToday records value as today's total and persists the full history.
// Repeated calls on the same day overwrite the entry (last writer wins).
func (s *Service) UpsertToday(ctx context.Context, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[s.TodayKey()] = value
	return record.Save(ctx, s.Store, s.log, domain.KeyDailyMarketValues, s.history)
}

// BackfillIfEmpty generates a synthetic series when no history exists yet.
// Logic:
//  1. Skip if the history already has entries (or the backfill is disabled)
//  2. Build one key per day for the configured number of days, ending today, oldest first
//  3. The oldest day is exactly max(baseline, 1.0)
//  4. Every following day drifts from the previous one by a uniform random +/- 1.5%, floored at 0
//  5. Persist the whole series in one write
//
// Returns true when a series was generated.
func (s *Service) BackfillIfEmpty(ctx context.Context, baseline float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) > 0 || s.backfillDays <= 0 {
		return false, nil
	}

	keys := daykey.Range(s.now(), s.backfillDays, s.loc)
	series := make(domain.ValuationHistory, len(keys))
	running := math.Max(baseline, minBaseline)

	for i, key := range keys {
		// The oldest day is the undrifted baseline
		if i > 0 {
			running = math.Max(0, running*(1.0+s.drift()))
		}
		series[key] = running
	}

	s.history = series
	s.log.Debug().Int("days", len(keys)).Float64("baseline", series[keys[0]]).Msg("Backfilled valuation history")

	if err := record.Save(ctx, s.Store, s.log, domain.KeyDailyMarketValues, s.history); err != nil {
		return true, err
	}
	return true, nil
}

// drift draws a uniform value in [-maxDailyDrift, +maxDailyDrift]
func (s *Service) drift() float64 {
	var u float64
	if s.rng != nil {
		u = s.rng.Float64()
	} else {
		u = rand.Float64()
	}
	return -maxDailyDrift + u*2*maxDailyDrift
}

// History returns a copy of the full day-key to value mapping
func (s *Service) History() domain.ValuationHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.history.Clone()
}

// Value returns the value recorded for a day-key
func (s *Service) Value(key string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.history[key]
	return v, ok
}

// Len returns the number of recorded days
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Series returns the history as points sorted by day, oldest first.
// Keys that are not valid day-keys keep a zero Date but are still returned.
func (s *Service) Series() []domain.ValuePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.history))
	for k := range s.history {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make([]domain.ValuePoint, 0, len(keys))
	for _, k := range keys {
		date, _ := daykey.Parse(k)
		points = append(points, domain.ValuePoint{Key: k, Date: date, Value: s.history[k]})
	}
	return points
}

// Summary compares the latest value of the series against the first one and reports the value range
func (s *Service) Summary() domain.SeriesSummary {
	return Summarize(s.Series())
}

// Summarize computes the SeriesSummary of points already sorted oldest first
func Summarize(points []domain.ValuePoint) domain.SeriesSummary {
	if len(points) == 0 {
		return domain.SeriesSummary{}
	}

	first, last := points[0], points[len(points)-1]
	sum := domain.SeriesSummary{
		Points:   len(points),
		FirstKey: first.Key,
		LastKey:  last.Key,
		First:    first.Value,
		Last:     last.Value,
		Change:   last.Value - first.Value,
		Min:      first.Value,
		Max:      first.Value,
	}
	if first.Value != 0 {
		sum.ChangePercent = sum.Change / first.Value * 100
	}
	for _, p := range points[1:] {
		sum.Min = math.Min(sum.Min, p.Value)
		sum.Max = math.Max(sum.Max, p.Value)
	}
	return sum
}
