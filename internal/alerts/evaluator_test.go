package alerts

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// stubMarket serves canned quotes and bars per symbol.
type stubMarket struct {
	quotes map[string]float64
	bars   map[string][]types.OHLCV
}

func (s *stubMarket) GetQuote(_ context.Context, symbol string) (*types.Quote, error) {
	price, ok := s.quotes[symbol]
	if !ok {
		return nil, errors.New("no quote for " + symbol)
	}
	return &types.Quote{Symbol: symbol, Price: price, Timestamp: time.Now()}, nil
}

func (s *stubMarket) GetBars(_ context.Context, symbol string, _ types.Interval, _ int) ([]types.OHLCV, error) {
	bars, ok := s.bars[symbol]
	if !ok {
		return nil, errors.New("no bars for " + symbol)
	}
	return bars, nil
}

func (s *stubMarket) GetName() string { return "Stub" }

// recordingNotifier captures every message it is asked to send.
type recordingNotifier struct {
	levels   []string
	messages []string
}

func (r *recordingNotifier) SendAlert(level, message string) error {
	r.levels = append(r.levels, level)
	r.messages = append(r.messages, message)
	return nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "insight.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// closes builds daily bars from a close sequence.
func closes(values ...float64) []types.OHLCV {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.OHLCV, len(values))
	for i, v := range values {
		bars[i] = types.OHLCV{
			Open: v, High: v + 1, Low: v - 1, Close: v, Volume: 1000,
			Timestamp: base.AddDate(0, 0, i),
		}
	}
	return bars
}

// fallingCloses yields count bars stepping down from start.
func fallingCloses(start float64, count int) []types.OHLCV {
	values := make([]float64, count)
	for i := range values {
		values[i] = start - float64(i)
	}
	return closes(values...)
}

func TestEvaluator_PriceAbove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alert, err := s.CreateAlert(ctx, "AAPL", store.AlertPriceAbove, 200)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	e := NewEvaluator(s, &stubMarket{quotes: map[string]float64{"AAPL": 201.50}}, notifier, nil)

	triggers, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Equal(t, alert.ID, triggers[0].Alert.ID)
	assert.Equal(t, 201.50, triggers[0].Value)
	assert.Contains(t, triggers[0].Message, "above 200.00")

	// The rule fires once: it is now inactive with a trigger timestamp.
	stored, err := s.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.NotNil(t, stored.TriggeredAt)

	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "AAPL")
}

func TestEvaluator_PriceAbove_NotReached(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alert, err := s.CreateAlert(ctx, "AAPL", store.AlertPriceAbove, 200)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	e := NewEvaluator(s, &stubMarket{quotes: map[string]float64{"AAPL": 199.0}}, notifier, nil)

	triggers, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, triggers)
	assert.Empty(t, notifier.messages)

	stored, err := s.GetAlert(ctx, alert.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active)
}

func TestEvaluator_PriceBelow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateAlert(ctx, "MSFT", store.AlertPriceBelow, 350)
	require.NoError(t, err)

	e := NewEvaluator(s, &stubMarket{quotes: map[string]float64{"MSFT": 342.10}}, &recordingNotifier{}, nil)

	triggers, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Contains(t, triggers[0].Message, "below 350.00")
}

func TestEvaluator_RSIBelow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateAlert(ctx, "AAPL", store.AlertRSIBelow, 30)
	require.NoError(t, err)

	// A straight decline pins RSI at 0.
	e := NewEvaluator(s, &stubMarket{bars: map[string][]types.OHLCV{
		"AAPL": fallingCloses(200, 50),
	}}, &recordingNotifier{}, nil)

	triggers, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Contains(t, triggers[0].Message, "RSI(14)")
	assert.Contains(t, triggers[0].Message, "below 30.0")
	assert.InDelta(t, 0.0, triggers[0].Value, 1e-9)
}

func TestEvaluator_SMACross_Above(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateAlert(ctx, "AAPL", store.AlertSMACross, 5)
	require.NoError(t, err)

	// Flat at 100 then a close at 110: the last bar finishes above SMA(5).
	bars := closes(100, 100, 100, 100, 100, 100, 100, 100, 100, 110)
	e := NewEvaluator(s, &stubMarket{bars: map[string][]types.OHLCV{"AAPL": bars}}, &recordingNotifier{}, nil)

	triggers, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Contains(t, triggers[0].Message, "crossed above SMA(5)")
	assert.Equal(t, 110.0, triggers[0].Value)
}

func TestEvaluator_SMACross_Below(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateAlert(ctx, "AAPL", store.AlertSMACross, 5)
	require.NoError(t, err)

	bars := closes(100, 100, 100, 100, 100, 100, 100, 100, 100, 90)
	e := NewEvaluator(s, &stubMarket{bars: map[string][]types.OHLCV{"AAPL": bars}}, &recordingNotifier{}, nil)

	triggers, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Contains(t, triggers[0].Message, "crossed below SMA(5)")
}

func TestEvaluator_SMACross_NoCross(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateAlert(ctx, "AAPL", store.AlertSMACross, 5)
	require.NoError(t, err)

	// Steadily above the average the whole window: no cross.
	bars := closes(100, 101, 102, 103, 104, 105, 106, 107, 108, 109)
	e := NewEvaluator(s, &stubMarket{bars: map[string][]types.OHLCV{"AAPL": bars}}, &recordingNotifier{}, nil)

	triggers, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, triggers)
}

func TestEvaluator_DataFailureSkipsRule(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateAlert(ctx, "DEAD", store.AlertPriceAbove, 10)
	require.NoError(t, err)
	_, err = s.CreateAlert(ctx, "AAPL", store.AlertPriceAbove, 200)
	require.NoError(t, err)

	e := NewEvaluator(s, &stubMarket{quotes: map[string]float64{"AAPL": 250}}, &recordingNotifier{}, nil)

	triggers, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Len(t, triggers, 1)
	assert.Equal(t, "AAPL", triggers[0].Alert.Symbol)

	// The failing rule is untouched and will be retried next pass.
	alerts, err := s.ListAlerts(ctx, true)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "DEAD", alerts[0].Symbol)
}

func TestEvaluator_TriggeredAlertNotReevaluated(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateAlert(ctx, "AAPL", store.AlertPriceAbove, 200)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	e := NewEvaluator(s, &stubMarket{quotes: map[string]float64{"AAPL": 210}}, notifier, nil)

	first, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := e.EvaluateAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, notifier.messages, 1)
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := newTestStore(t)
	e := NewEvaluator(s, &stubMarket{}, nil, nil)

	sched := NewScheduler(e, "not a cron spec", nil)
	err := sched.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid alert schedule")
}

func TestScheduler_StartStop(t *testing.T) {
	s := newTestStore(t)
	e := NewEvaluator(s, &stubMarket{}, nil, nil)

	// A schedule far in the future; Start and Stop must be clean.
	sched := NewScheduler(e, "0 0 0 1 1 *", nil)
	require.NoError(t, sched.Start())
	sched.Stop()
}

func TestScheduler_RunNow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	_, err := s.CreateAlert(ctx, "AAPL", store.AlertPriceAbove, 200)
	require.NoError(t, err)

	e := NewEvaluator(s, &stubMarket{quotes: map[string]float64{"AAPL": 210}}, &recordingNotifier{}, nil)
	sched := NewScheduler(e, "", nil)

	triggers, err := sched.RunNow(ctx)
	require.NoError(t, err)
	assert.Len(t, triggers, 1)
}
