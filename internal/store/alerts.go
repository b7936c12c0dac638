package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

var validAlertKinds = map[AlertKind]bool{
	AlertPriceAbove: true,
	AlertPriceBelow: true,
	AlertRSIAbove:   true,
	AlertRSIBelow:   true,
	AlertSMACross:   true,
}

// CreateAlert persists a new alert rule in the active state.
func (s *Store) CreateAlert(ctx context.Context, symbol string, kind AlertKind, threshold float64) (*Alert, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperrors.NewValidationError("store", "create alert", "symbol must not be empty")
	}
	if !validAlertKinds[kind] {
		return nil, apperrors.NewValidationError("store", "create alert", "unknown alert kind: "+string(kind))
	}
	if threshold <= 0 {
		return nil, apperrors.NewValidationError("store", "create alert", "threshold must be positive")
	}

	a := &Alert{
		ID:        NewID(),
		Symbol:    symbol,
		Kind:      kind,
		Threshold: threshold,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (id, symbol, kind, threshold, active, triggered_at, created_at)
		 VALUES (?, ?, ?, ?, 1, NULL, ?)`,
		a.ID, a.Symbol, string(a.Kind), a.Threshold, a.CreatedAt)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "create alert", err)
	}
	return a, nil
}

// GetAlert loads an alert by id.
func (s *Store) GetAlert(ctx context.Context, id string) (*Alert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, kind, threshold, active, triggered_at, created_at
		 FROM alerts WHERE id = ?`, id)
	a, err := scanAlert(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("store", "get alert", "alert not found: "+id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("store", "get alert", err)
	}
	return a, nil
}

// ListAlerts returns alerts newest-first. With activeOnly set, triggered and
// deactivated rules are skipped.
func (s *Store) ListAlerts(ctx context.Context, activeOnly bool) ([]Alert, error) {
	query := `SELECT id, symbol, kind, threshold, active, triggered_at, created_at FROM alerts`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "list alerts", err)
	}
	defer rows.Close()

	alerts := []Alert{}
	for rows.Next() {
		a, err := scanAlert(rows.Scan)
		if err != nil {
			return nil, apperrors.NewStorageError("store", "list alerts", err)
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("store", "list alerts", err)
	}
	return alerts, nil
}

// MarkTriggered deactivates an alert and stamps its trigger time. Alerts fire
// once; re-arming means creating a new rule.
func (s *Store) MarkTriggered(ctx context.Context, id string, at time.Time) error {
	if at.IsZero() {
		at = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE alerts SET active = 0, triggered_at = ? WHERE id = ?`, at, id)
	if err != nil {
		return apperrors.NewStorageError("store", "mark alert triggered", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("store", "mark alert triggered", "alert not found: "+id)
	}
	return nil
}

// DeleteAlert removes an alert rule.
func (s *Store) DeleteAlert(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM alerts WHERE id = ?`, id)
	if err != nil {
		return apperrors.NewStorageError("store", "delete alert", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("store", "delete alert", "alert not found: "+id)
	}
	return nil
}

func scanAlert(scan func(dest ...interface{}) error) (*Alert, error) {
	var (
		a           Alert
		kind        string
		active      int
		triggeredAt sql.NullTime
	)
	err := scan(&a.ID, &a.Symbol, &kind, &a.Threshold, &active, &triggeredAt, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	a.Kind = AlertKind(kind)
	a.Active = active != 0
	if triggeredAt.Valid {
		t := triggeredAt.Time
		a.TriggeredAt = &t
	}
	return &a, nil
}
