package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/goalfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/goalfolio-backend/internal/domain"
	"github.com/simaogato/goalfolio-backend/internal/usecase/valuation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

const today = "2026-10-16"

var decimalEqual = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

// failingStore wraps a memory store and fails every write once armed
type failingStore struct {
	*memory.Store
	setErr error
}

func (f *failingStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Store.Set(ctx, key, value)
}

func newHistory(store domain.KeyValueStore, opts ...valuation.Option) *valuation.Service {
	base := []valuation.Option{valuation.WithClock(func() time.Time { return fixedNow })}
	return valuation.NewService(context.Background(), store, append(base, opts...)...)
}

func newLedger(t *testing.T, store domain.KeyValueStore, opts ...valuation.Option) (*Service, *valuation.Service) {
	t.Helper()
	history := newHistory(store, opts...)
	svc, err := NewService(context.Background(), store, history)
	require.NoError(t, err)
	return svc, history
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	if !decimal.RequireFromString(want).Equal(got) {
		assert.Fail(t, fmt.Sprintf("want %s, got %s", want, got), msgAndArgs...)
	}
}

// assertTodayMatchesTotal checks that today's history entry tracks the ledger total
func assertTodayMatchesTotal(t *testing.T, svc *Service, history *valuation.Service) {
	t.Helper()
	v, ok := history.Value(today)
	require.True(t, ok, "missing history entry for today")
	assert.Equal(t, svc.TotalMarketValue().InexactFloat64(), v)
}

func TestNewService_FreshStoreIsSeeded(t *testing.T) {
	store := memory.NewStore()

	svc, history := newLedger(t, store, valuation.WithBackfillDays(0))

	positions := svc.Positions()
	require.Len(t, positions, 4)
	assert.Equal(t, []string{"USD Cash", "Apple Inc.", "Bitcoin", "Savings Bond"},
		[]string{positions[0].Name, positions[1].Name, positions[2].Name, positions[3].Name})
	assertDecimal(t, "3050", svc.TotalMarketValue())
	assert.Equal(t, domain.ValuationHistory{today: 3050}, history.History())

	// The seed was persisted
	data, err := store.Get(context.Background(), domain.KeySavedPositions)
	require.NoError(t, err)
	var recs []positionRecord
	require.NoError(t, json.Unmarshal(data, &recs))
	assert.Len(t, recs, 4)
}

func TestNewService_FreshStoreBackfillsThirtyDays(t *testing.T) {
	svc, history := newLedger(t, memory.NewStore())

	assert.Equal(t, 30, history.Len())
	series := history.Series()
	assert.Equal(t, 3050.0, series[0].Value, "oldest day is the seeded total")
	assertTodayMatchesTotal(t, svc, history)
}

func TestNewService_DoesNotReseedEmptyLedger(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, domain.KeySavedPositions, []byte(`[]`)))

	svc, _ := newLedger(t, store, valuation.WithBackfillDays(0))

	assert.Empty(t, svc.Positions())
	assertDecimal(t, "0", svc.TotalMarketValue())
}

func TestNewService_CorruptSnapshotKeepsEmptyStateAndPayload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.Set(ctx, domain.KeySavedPositions, []byte(`{"broken`)))

	svc, history := newLedger(t, store)

	assert.Empty(t, svc.Positions())
	// Backfill floors the zero total at 1.0
	assert.Equal(t, 1.0, history.Series()[0].Value)
	assertTodayMatchesTotal(t, svc, history)

	data, err := store.Get(ctx, domain.KeySavedPositions)
	require.NoError(t, err)
	assert.Equal(t, `{"broken`, string(data), "user data is never overwritten by the seed")
}

func TestNewService_InvalidRecordRejectsWholePayload(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	payload := `[{"id":"` + uuid.NewString() + `","category":"cash","name":"Cash","quantity":1,"unitPrice":1,"currency":"USD"},` +
		`{"id":"not-a-uuid","category":"cash","name":"Cash","quantity":1,"unitPrice":1,"currency":"USD"}]`
	require.NoError(t, store.Set(ctx, domain.KeySavedPositions, []byte(payload)))

	svc, _ := newLedger(t, store, valuation.WithBackfillDays(0))

	assert.Empty(t, svc.Positions())
}

func TestNewService_SeedWriteFailure(t *testing.T) {
	store := &failingStore{Store: memory.NewStore(), setErr: errors.New("read-only filesystem")}

	_, err := NewService(context.Background(), store, newHistory(store))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only filesystem")
}

func TestNewService_WithSeed(t *testing.T) {
	seed := []domain.Position{
		domain.NewPosition(domain.CategoryCash, nil, "Wallet", decimal.NewFromInt(42), decimal.NewFromInt(1), "EUR", nil),
	}
	store := memory.NewStore()
	history := newHistory(store, valuation.WithBackfillDays(0))

	svc, err := NewService(context.Background(), store, history, WithSeed(seed))

	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(seed, svc.Positions(), decimalEqual))
}

func TestAddCash_UpdatesTotalAndToday(t *testing.T) {
	ctx := context.Background()
	svc, history := newLedger(t, memory.NewStore())
	before := history.History()

	// Execute
	p, err := svc.AddCash(ctx, decimal.NewFromInt(200))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Cash", p.Name)
	assert.Equal(t, "USD", p.Currency)
	assert.Nil(t, p.Symbol)
	assertDecimal(t, "1", p.UnitPrice)
	assertDecimal(t, "3250", svc.TotalMarketValue())

	after := history.History()
	assert.Equal(t, 3250.0, after[today])
	delete(before, today)
	delete(after, today)
	assert.Equal(t, before, after, "only today's entry may change")
}

func TestConvenienceAdders(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, memory.NewStore(), valuation.WithBackfillDays(0))

	eq, err := svc.AddEquity(ctx, " msft ", "Microsoft", decimal.NewFromInt(2), decimal.NewFromInt(400), WithNotes("core"))
	require.NoError(t, err)
	assert.Equal(t, "MSFT", eq.SymbolOrEmpty())
	assert.Equal(t, "core", eq.NotesOrEmpty())

	da, err := svc.AddDigitalAsset(ctx, "eth", "Ethereum", decimal.RequireFromString("1.5"), decimal.NewFromInt(3000), WithCurrency("EUR"))
	require.NoError(t, err)
	assert.Equal(t, "ETH", da.SymbolOrEmpty())
	assert.Equal(t, "EUR", da.Currency)

	other, err := svc.AddOther(ctx, "Car", decimal.NewFromInt(1), WithUnitPrice(decimal.NewFromInt(12000)))
	require.NoError(t, err)
	assertDecimal(t, "12000", other.MarketValue())

	cash, err := svc.AddCash(ctx, decimal.NewFromInt(10), WithName("Emergency fund"))
	require.NoError(t, err)
	assert.Equal(t, "Emergency fund", cash.Name)

	assert.Len(t, svc.EquityPositions(), 2)
	assert.Len(t, svc.DigitalAssetPositions(), 2)
	assert.Len(t, svc.OtherPositions(), 2)
	assert.Len(t, svc.CashPositions(), 2)

	// 3050 + 800 + 4500 + 12000 + 10
	assertDecimal(t, "20360", svc.TotalMarketValue())
}

func TestAddEquity_BlankSymbolIsStoredAsAbsent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newLedger(t, store, valuation.WithBackfillDays(0))

	p, err := svc.AddEquity(ctx, "  ", "Private share", decimal.NewFromInt(1), decimal.NewFromInt(50))

	require.NoError(t, err)
	assert.Nil(t, p.Symbol)
	data, err := store.Get(ctx, domain.KeySavedPositions)
	require.NoError(t, err)
	var recs []map[string]any
	require.NoError(t, json.Unmarshal(data, &recs))
	assert.NotContains(t, recs[len(recs)-1], "symbol")
}

func TestAdd_RejectsDuplicateAndInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, memory.NewStore(), valuation.WithBackfillDays(0))
	existing := svc.Positions()[0]

	err := svc.Add(ctx, existing)
	assert.ErrorIs(t, err, domain.ErrInvalidPosition)

	err = svc.Add(ctx, domain.Position{ID: uuid.New(), Category: "bonds"})
	assert.ErrorIs(t, err, domain.ErrInvalidPosition)

	assert.Len(t, svc.Positions(), 4)
	assert.Equal(t, uint64(0), svc.Version())
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, history := newLedger(t, store)
	btc := svc.DigitalAssetPositions()[0]

	btc.UnitPrice = decimal.NewFromInt(70000)
	btc.Currency = ""
	updated, err := svc.Update(ctx, btc)

	require.NoError(t, err)
	assert.True(t, updated)
	got, err := svc.Get(btc.ID)
	require.NoError(t, err)
	assertDecimal(t, "70000", got.UnitPrice)
	assert.Equal(t, "USD", got.Currency, "empty currency falls back to the default")
	assert.Equal(t, btc.ID, svc.Positions()[2].ID, "position keeps its place")
	// 3050 - 650 + 700
	assertDecimal(t, "3100", svc.TotalMarketValue())
	assertTodayMatchesTotal(t, svc, history)
}

func TestUpdate_ReplacesCategory(t *testing.T) {
	ctx := context.Background()
	svc, history := newLedger(t, memory.NewStore(), valuation.WithBackfillDays(0))
	btc := svc.DigitalAssetPositions()[0]

	btc.Category = domain.CategoryOther
	updated, err := svc.Update(ctx, btc)

	require.NoError(t, err)
	assert.True(t, updated)
	got, err := svc.Get(btc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOther, got.Category)
	assert.Empty(t, svc.DigitalAssetPositions())
	assert.Len(t, svc.OtherPositions(), 2)

	require.NoError(t, svc.RemoveAll(ctx, domain.CategoryOther))
	_, err = svc.Get(btc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	// 3050 - 650 - 500
	assertDecimal(t, "1900", svc.TotalMarketValue())
	assertTodayMatchesTotal(t, svc, history)
}

func TestUpdate_RejectsInvalidCategory(t *testing.T) {
	svc, _ := newLedger(t, memory.NewStore(), valuation.WithBackfillDays(0))
	version := svc.Version()
	aapl := svc.EquityPositions()[0]

	aapl.Category = "bonds"
	updated, err := svc.Update(context.Background(), aapl)

	assert.ErrorIs(t, err, domain.ErrInvalidCategory)
	assert.False(t, updated)
	assert.Equal(t, version, svc.Version())
	assert.Len(t, svc.EquityPositions(), 1)
}

func TestUpdate_UnknownIDIsNoOp(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: memory.NewStore()}
	svc, _ := newLedger(t, store)
	version := svc.Version()

	// Any write would fail, proving nothing is persisted
	store.setErr = errors.New("unexpected write")
	ghost := domain.NewPosition(domain.CategoryCash, nil, "Ghost", decimal.NewFromInt(1), decimal.NewFromInt(1), "", nil)
	updated, err := svc.Update(ctx, ghost)

	assert.NoError(t, err)
	assert.False(t, updated)
	assert.Equal(t, version, svc.Version())
	assertDecimal(t, "3050", svc.TotalMarketValue())
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc, history := newLedger(t, memory.NewStore())
	aapl := svc.EquityPositions()[0]

	require.NoError(t, svc.Remove(ctx, aapl.ID))

	_, err := svc.Get(aapl.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assertDecimal(t, "2150", svc.TotalMarketValue())
	assertTodayMatchesTotal(t, svc, history)
}

func TestRemove_UnknownIDStillCommits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, memory.NewStore())

	require.NoError(t, svc.Remove(ctx, uuid.New()))

	assert.Len(t, svc.Positions(), 4)
	assert.Equal(t, uint64(1), svc.Version())
}

func TestRemoveAll_RemovesExactlyOneCategory(t *testing.T) {
	ctx := context.Background()
	svc, history := newLedger(t, memory.NewStore())
	_, err := svc.AddEquity(ctx, "MSFT", "Microsoft", decimal.NewFromInt(1), decimal.NewFromInt(400))
	require.NoError(t, err)

	var others []domain.Position
	for _, p := range svc.Positions() {
		if p.Category != domain.CategoryEquities {
			others = append(others, p)
		}
	}

	require.NoError(t, svc.RemoveAll(ctx, domain.CategoryEquities))

	assert.Empty(t, svc.EquityPositions())
	assert.Empty(t, cmp.Diff(others, svc.Positions(), decimalEqual))
	assertDecimal(t, "2150", svc.TotalMarketValue())
	assertTodayMatchesTotal(t, svc, history)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newLedger(t, store)
	_, err := svc.AddEquity(ctx, "VOO", "Vanguard S&P 500 ETF", decimal.RequireFromString("3.25"), decimal.RequireFromString("512.4"), WithNotes("retirement"))
	require.NoError(t, err)
	_, err = svc.AddOther(ctx, "Loan", decimal.NewFromInt(-1), WithUnitPrice(decimal.NewFromInt(300)), WithCurrency("EUR"))
	require.NoError(t, err)

	reloaded, _ := newLedger(t, store)

	if diff := cmp.Diff(svc.Positions(), reloaded.Positions(), decimalEqual); diff != "" {
		t.Errorf("snapshot round-trip mismatch (-saved +loaded):\n%s", diff)
	}
	assert.True(t, svc.TotalMarketValue().Equal(reloaded.TotalMarketValue()))
}

func TestSnapshotRoundTrip_KeepsFullPrecision(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc, _ := newLedger(t, store, valuation.WithBackfillDays(0))
	quantity := decimal.RequireFromString("1.00000000000000000001")
	_, err := svc.AddOther(ctx, "Precise", quantity, WithUnitPrice(decimal.NewFromInt(1000000)))
	require.NoError(t, err)

	reloaded, history := newLedger(t, store, valuation.WithBackfillDays(0))

	assertDecimal(t, "1003050.00000000000001", reloaded.TotalMarketValue())
	assertDecimal(t, "1.00000000000000000001", reloaded.OtherPositions()[1].Quantity)
	assertTodayMatchesTotal(t, reloaded, history)

	// Amounts stay JSON numbers on disk
	data, err := store.Get(ctx, domain.KeySavedPositions)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"quantity":1.00000000000000000001`)
	assert.Contains(t, string(data), `"unitPrice":1000000`)
}

func TestTotalInvariantAfterOperationSequence(t *testing.T) {
	ctx := context.Background()
	svc, history := newLedger(t, memory.NewStore())

	steps := []func() error{
		func() error { _, err := svc.AddCash(ctx, decimal.NewFromInt(250)); return err },
		func() error {
			_, err := svc.AddDigitalAsset(ctx, "ETH", "Ethereum", decimal.RequireFromString("0.5"), decimal.NewFromInt(2400))
			return err
		},
		func() error { return svc.RemoveAll(ctx, domain.CategoryOther) },
		func() error {
			p := svc.CashPositions()[0]
			p.Quantity = decimal.NewFromInt(10)
			_, err := svc.Update(ctx, p)
			return err
		},
		func() error { return svc.Remove(ctx, svc.EquityPositions()[0].ID) },
	}

	for i, step := range steps {
		require.NoError(t, step(), "step %d", i)

		sum := decimal.Zero
		for _, p := range svc.Positions() {
			sum = sum.Add(p.Quantity.Mul(p.UnitPrice))
		}
		assert.True(t, sum.Equal(svc.TotalMarketValue()), "step %d: total drifted", i)
		assertTodayMatchesTotal(t, svc, history)
	}
}

func TestMutation_StoreErrorIsReturnedAndMemoryStaysAuthoritative(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: memory.NewStore()}
	svc, history := newLedger(t, store)

	store.setErr = errors.New("disk full")
	_, err := svc.AddCash(ctx, decimal.NewFromInt(200))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assertDecimal(t, "3250", svc.TotalMarketValue())
	assertTodayMatchesTotal(t, svc, history)
}

func TestQueriesReturnCopies(t *testing.T) {
	svc, _ := newLedger(t, memory.NewStore(), valuation.WithBackfillDays(0))

	positions := svc.Positions()
	positions[1].Name = "changed"
	*positions[1].Symbol = "XXX"

	fresh := svc.EquityPositions()[0]
	assert.Equal(t, "Apple Inc.", fresh.Name)
	assert.Equal(t, "AAPL", fresh.SymbolOrEmpty())
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, memory.NewStore(), valuation.WithBackfillDays(0))

	var changes []Change
	cancel := svc.Subscribe(func(c Change) { changes = append(changes, c) })

	p, err := svc.AddCash(ctx, decimal.NewFromInt(200))
	require.NoError(t, err)
	require.NoError(t, svc.RemoveAll(ctx, domain.CategoryCash))

	cancel()
	cancel()
	require.NoError(t, svc.RemoveAll(ctx, domain.CategoryOther))

	require.Len(t, changes, 2)
	want := Change{Version: 1, Op: OpAdd, PositionID: p.ID, Category: domain.CategoryCash, Total: decimal.NewFromInt(3250)}
	assert.Empty(t, cmp.Diff(want, changes[0], decimalEqual))
	assert.Equal(t, OpRemoveAll, changes[1].Op)
	assert.Equal(t, uint64(2), changes[1].Version)
	assertDecimal(t, "2050", changes[1].Total)
	assert.Equal(t, uint64(3), svc.Version())
}

func TestSubscriberMayReadLedger(t *testing.T) {
	ctx := context.Background()
	svc, _ := newLedger(t, memory.NewStore(), valuation.WithBackfillDays(0))

	var seen decimal.Decimal
	svc.Subscribe(func(Change) { seen = svc.TotalMarketValue() })

	_, err := svc.AddCash(ctx, decimal.NewFromInt(1))
	require.NoError(t, err)
	assertDecimal(t, "3051", seen)
}

func TestConcurrentMutationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc, history := newLedger(t, memory.NewStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddCash(ctx, decimal.NewFromInt(1))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assertDecimal(t, "3100", svc.TotalMarketValue())
	assert.Equal(t, uint64(50), svc.Version())
	assertTodayMatchesTotal(t, svc, history)
}
