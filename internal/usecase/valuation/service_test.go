package valuation

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/simaogato/goalfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockKeyValueStore is a mock implementation of KeyValueStore for testing
type MockKeyValueStore struct {
	mock.Mock
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockKeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

var fixedNow = time.Date(2026, 10, 16, 14, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, store domain.KeyValueStore, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	return NewService(context.Background(), store, append(base, opts...)...)
}

func storedHistory(t *testing.T, store *memory.Store) domain.ValuationHistory {
	t.Helper()
	data, err := store.Get(context.Background(), domain.KeyDailyMarketValues)
	require.NoError(t, err)
	var h domain.ValuationHistory
	require.NoError(t, json.Unmarshal(data, &h))
	return h
}

func TestNewService_EmptyStore(t *testing.T) {
	svc := newTestService(t, memory.NewStore())

	assert.Empty(t, svc.History())
	assert.Equal(t, "2026-10-16", svc.TodayKey())
}

func TestNewService_LoadsPersistedHistory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, domain.KeyDailyMarketValues, []byte(`{"2026-10-14":100.5,"2026-10-15":101}`)))

	svc := newTestService(t, store)

	assert.Equal(t, domain.ValuationHistory{"2026-10-14": 100.5, "2026-10-15": 101}, svc.History())
}

func TestNewService_CorruptPayloadFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, domain.KeyDailyMarketValues, []byte(`not json`)))

	svc := newTestService(t, store)

	assert.Empty(t, svc.History())
}

func TestNewService_ReadErrorFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockKeyValueStore)
	mockStore.On("Get", ctx, domain.KeyDailyMarketValues).Return(nil, errors.New("disk on fire"))

	svc := NewService(ctx, mockStore)

	assert.Empty(t, svc.History())
	mockStore.AssertExpectations(t)
}

func TestUpsertToday(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTestService(t, store)

	// Execute
	require.NoError(t, svc.UpsertToday(ctx, 2850))

	// Assert
	assert.Equal(t, domain.ValuationHistory{"2026-10-16": 2850}, svc.History())
	assert.Equal(t, domain.ValuationHistory{"2026-10-16": 2850}, storedHistory(t, store))
}

func TestUpsertToday_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTestService(t, store)

	require.NoError(t, svc.UpsertToday(ctx, 2850))
	require.NoError(t, svc.UpsertToday(ctx, 2850))
	assert.Equal(t, 1, svc.Len())

	require.NoError(t, svc.UpsertToday(ctx, 3050))

	v, ok := svc.Value("2026-10-16")
	assert.True(t, ok)
	assert.Equal(t, 3050.0, v)
	assert.Equal(t, 1, svc.Len())
}

func TestUpsertToday_KeepsOtherDays(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, domain.KeyDailyMarketValues, []byte(`{"2026-10-15":99}`)))
	svc := newTestService(t, store)

	require.NoError(t, svc.UpsertToday(ctx, 100))

	assert.Equal(t, domain.ValuationHistory{"2026-10-15": 99, "2026-10-16": 100}, storedHistory(t, store))
}

func TestUpsertToday_UnencodableValueWritesEmptyPayload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTestService(t, store)

	// NaN cannot be represented in JSON
	err := svc.UpsertToday(ctx, math.NaN())

	assert.NoError(t, err)
	data, err := store.Get(ctx, domain.KeyDailyMarketValues)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestUpsertToday_StoreErrorIsReturned(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockKeyValueStore)
	mockStore.On("Get", ctx, domain.KeyDailyMarketValues).Return(nil, domain.ErrNotFound)
	mockStore.On("Set", ctx, domain.KeyDailyMarketValues, mock.Anything).Return(errors.New("read-only filesystem"))

	svc := newTestService(t, mockStore)
	err := svc.UpsertToday(ctx, 10)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "read-only filesystem")
	mockStore.AssertExpectations(t)
}

func TestBackfillIfEmpty_FloorsBaseline(t *testing.T) {
	tests := []struct {
		name     string
		baseline float64
		want     float64
	}{
		{"zero baseline", 0, 1.0},
		{"negative baseline", -500, 1.0},
		{"fractional baseline below floor", 0.25, 1.0},
		{"regular baseline", 250, 250.0},
		{"seeded ledger total", 3050, 3050.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(t, memory.NewStore())

			generated, err := svc.BackfillIfEmpty(context.Background(), tt.baseline)

			require.NoError(t, err)
			assert.True(t, generated)
			series := svc.Series()
			require.Len(t, series, DefaultBackfillDays)
			assert.Equal(t, tt.want, series[0].Value, "oldest day must be the undrifted baseline")
		})
	}
}

func TestBackfillIfEmpty_GeneratesThirtyDaysEndingToday(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := newTestService(t, store)

	_, err := svc.BackfillIfEmpty(ctx, 1000)
	require.NoError(t, err)

	series := svc.Series()
	require.Len(t, series, 30)
	assert.Equal(t, "2026-09-17", series[0].Key)
	assert.Equal(t, "2026-10-16", series[29].Key)

	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1].Value, series[i].Value
		assert.GreaterOrEqual(t, cur, 0.0)
		ratio := cur / prev
		assert.GreaterOrEqual(t, ratio, 1-maxDailyDrift-1e-12, "day %s drifted too far down", series[i].Key)
		assert.LessOrEqual(t, ratio, 1+maxDailyDrift+1e-12, "day %s drifted too far up", series[i].Key)
	}

	// Persisted in one write, identical to memory
	assert.Equal(t, svc.History(), storedHistory(t, store))
}

func TestBackfillIfEmpty_NoOpWhenHistoryExists(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, domain.KeyDailyMarketValues, []byte(`{"2026-10-01":42}`)))
	svc := newTestService(t, store)

	generated, err := svc.BackfillIfEmpty(ctx, 2850)

	require.NoError(t, err)
	assert.False(t, generated)
	assert.Equal(t, domain.ValuationHistory{"2026-10-01": 42}, svc.History())
	assert.Equal(t, domain.ValuationHistory{"2026-10-01": 42}, storedHistory(t, store))
}

func TestBackfillIfEmpty_Disabled(t *testing.T) {
	ctx := context.Background()
	mockStore := new(MockKeyValueStore)
	mockStore.On("Get", ctx, domain.KeyDailyMarketValues).Return(nil, domain.ErrNotFound)

	svc := newTestService(t, mockStore, WithBackfillDays(0))
	generated, err := svc.BackfillIfEmpty(ctx, 2850)

	require.NoError(t, err)
	assert.False(t, generated)
	assert.Empty(t, svc.History())
	mockStore.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestBackfillIfEmpty_CustomLength(t *testing.T) {
	svc := newTestService(t, memory.NewStore(), WithBackfillDays(7))

	_, err := svc.BackfillIfEmpty(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, 7, svc.Len())
}

func TestWithLocation_KeysTodayInZone(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	// 15:30 UTC on the 16th is already 00:30 on the 17th in Tokyo
	late := time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)
	svc := NewService(context.Background(), memory.NewStore(),
		WithClock(func() time.Time { return late }),
		WithLocation(tokyo),
	)

	assert.Equal(t, "2026-10-17", svc.TodayKey())
}

func TestSeriesAndSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, domain.KeyDailyMarketValues,
		[]byte(`{"2026-10-16":110,"2026-10-14":100,"2026-10-15":90}`)))
	svc := newTestService(t, store)

	series := svc.Series()
	require.Len(t, series, 3)
	assert.Equal(t, []string{"2026-10-14", "2026-10-15", "2026-10-16"},
		[]string{series[0].Key, series[1].Key, series[2].Key})
	assert.Equal(t, time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC), series[0].Date)

	sum := svc.Summary()
	assert.Equal(t, 3, sum.Points)
	assert.Equal(t, 100.0, sum.First)
	assert.Equal(t, 110.0, sum.Last)
	assert.InDelta(t, 10.0, sum.Change, 1e-9)
	assert.InDelta(t, 10.0, sum.ChangePercent, 1e-9)
	assert.Equal(t, 90.0, sum.Min)
	assert.Equal(t, 110.0, sum.Max)
	assert.True(t, sum.IsUp())
}

func TestSummarize_EdgeCases(t *testing.T) {
	assert.Equal(t, domain.SeriesSummary{}, Summarize(nil))

	sum := Summarize([]domain.ValuePoint{{Key: "2026-10-15", Value: 0}, {Key: "2026-10-16", Value: 5}})
	assert.Equal(t, 0.0, sum.ChangePercent, "percent change from zero is reported as 0")
	assert.Equal(t, 5.0, sum.Change)
}
