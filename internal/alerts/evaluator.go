// Package alerts evaluates persisted alert rules against live market data and
// notifies on triggers.
package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
	"github.com/ducminhle1904/stock-insight/internal/indicators"
	"github.com/ducminhle1904/stock-insight/internal/notifications"
	"github.com/ducminhle1904/stock-insight/internal/store"
	"github.com/ducminhle1904/stock-insight/pkg/data"
	"github.com/ducminhle1904/stock-insight/pkg/types"
)

// rsiBars is how much daily history an RSI rule is evaluated over.
const rsiBars = 50

// Trigger records one alert that fired during an evaluation pass.
type Trigger struct {
	Alert   store.Alert `json:"alert"`
	Value   float64     `json:"value"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Evaluator checks every active alert rule against current data. Rules fire
// once: a triggered alert is deactivated in the store.
type Evaluator struct {
	store    *store.Store
	provider data.MarketProvider
	notifier notifications.Notifier
	logger   *slog.Logger
}

func NewEvaluator(st *store.Store, provider data.MarketProvider, notifier notifications.Notifier, logger *slog.Logger) *Evaluator {
	if notifier == nil {
		notifier = notifications.NewNoopNotifier(logger)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{store: st, provider: provider, notifier: notifier, logger: logger}
}

// EvaluateAll runs one pass over the active alerts. Per-alert data failures
// are logged and skipped so one dead symbol cannot stall the rest.
func (e *Evaluator) EvaluateAll(ctx context.Context) ([]Trigger, error) {
	active, err := e.store.ListAlerts(ctx, true)
	if err != nil {
		return nil, err
	}

	triggers := []Trigger{}
	for _, alert := range active {
		fired, value, message, err := e.evaluate(ctx, alert)
		if err != nil {
			e.logger.Warn("alert evaluation failed",
				"alert", alert.ID, "symbol", alert.Symbol, "kind", alert.Kind, "error", err)
			continue
		}
		if !fired {
			continue
		}

		now := time.Now().UTC()
		if err := e.store.MarkTriggered(ctx, alert.ID, now); err != nil {
			e.logger.Error("failed to record alert trigger", "alert", alert.ID, "error", err)
			continue
		}
		if err := e.notifier.SendAlert(notifications.LevelWarning, message); err != nil {
			e.logger.Error("failed to deliver alert notification", "alert", alert.ID, "error", err)
		}
		e.logger.Info("alert triggered", "alert", alert.ID, "symbol", alert.Symbol, "message", message)
		triggers = append(triggers, Trigger{Alert: alert, Value: value, Message: message, At: now})
	}
	return triggers, nil
}

// evaluate checks a single rule. It returns whether the rule fired, the
// observed value, and the notification message.
func (e *Evaluator) evaluate(ctx context.Context, alert store.Alert) (bool, float64, string, error) {
	switch alert.Kind {
	case store.AlertPriceAbove, store.AlertPriceBelow:
		return e.evaluatePrice(ctx, alert)
	case store.AlertRSIAbove, store.AlertRSIBelow:
		return e.evaluateRSI(ctx, alert)
	case store.AlertSMACross:
		return e.evaluateSMACross(ctx, alert)
	default:
		return false, 0, "", apperrors.NewValidationError("alerts", "evaluate", "unknown alert kind: "+string(alert.Kind))
	}
}

func (e *Evaluator) evaluatePrice(ctx context.Context, alert store.Alert) (bool, float64, string, error) {
	quote, err := e.provider.GetQuote(ctx, alert.Symbol)
	if err != nil {
		return false, 0, "", err
	}

	price := quote.Price
	if alert.Kind == store.AlertPriceAbove && price > alert.Threshold {
		return true, price, fmt.Sprintf("%s price %.2f is above %.2f", alert.Symbol, price, alert.Threshold), nil
	}
	if alert.Kind == store.AlertPriceBelow && price < alert.Threshold {
		return true, price, fmt.Sprintf("%s price %.2f is below %.2f", alert.Symbol, price, alert.Threshold), nil
	}
	return false, price, "", nil
}

func (e *Evaluator) evaluateRSI(ctx context.Context, alert store.Alert) (bool, float64, string, error) {
	bars, err := e.provider.GetBars(ctx, alert.Symbol, types.IntervalDaily, rsiBars)
	if err != nil {
		return false, 0, "", err
	}

	rsi, err := indicators.NewRSI(indicators.DefaultRSIPeriod).Calculate(bars)
	if err != nil {
		return false, 0, "", err
	}

	if alert.Kind == store.AlertRSIAbove && rsi > alert.Threshold {
		return true, rsi, fmt.Sprintf("%s RSI(14) %.1f is above %.1f", alert.Symbol, rsi, alert.Threshold), nil
	}
	if alert.Kind == store.AlertRSIBelow && rsi < alert.Threshold {
		return true, rsi, fmt.Sprintf("%s RSI(14) %.1f is below %.1f", alert.Symbol, rsi, alert.Threshold), nil
	}
	return false, rsi, "", nil
}

// evaluateSMACross treats the threshold as the SMA period and fires when the
// close finishes on the opposite side of the average from the previous bar.
func (e *Evaluator) evaluateSMACross(ctx context.Context, alert store.Alert) (bool, float64, string, error) {
	period := int(alert.Threshold)
	if period < 1 {
		return false, 0, "", apperrors.NewValidationError("alerts", "evaluate sma cross",
			fmt.Sprintf("sma_cross threshold must be a period >= 1, got %v", alert.Threshold))
	}

	bars, err := e.provider.GetBars(ctx, alert.Symbol, types.IntervalDaily, period+10)
	if err != nil {
		return false, 0, "", err
	}

	sma, err := indicators.NewSMA(period).Series(bars)
	if err != nil {
		return false, 0, "", err
	}
	if len(sma) < 2 {
		return false, 0, "", apperrors.NewValidationError("alerts", "evaluate sma cross",
			fmt.Sprintf("not enough history for SMA(%d) cross on %s", period, alert.Symbol))
	}

	prevClose := bars[len(bars)-2].Close
	lastClose := bars[len(bars)-1].Close
	prevSMA := sma[len(sma)-2].Value
	lastSMA := sma[len(sma)-1].Value

	if prevClose <= prevSMA && lastClose > lastSMA {
		return true, lastClose, fmt.Sprintf("%s close %.2f crossed above SMA(%d) %.2f",
			alert.Symbol, lastClose, period, lastSMA), nil
	}
	if prevClose >= prevSMA && lastClose < lastSMA {
		return true, lastClose, fmt.Sprintf("%s close %.2f crossed below SMA(%d) %.2f",
			alert.Symbol, lastClose, period, lastSMA), nil
	}
	return false, lastClose, "", nil
}
