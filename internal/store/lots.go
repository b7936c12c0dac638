package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

// AddLot records an acquisition of shares.
func (s *Store) AddLot(ctx context.Context, lot *Lot) error {
	lot.Symbol = strings.ToUpper(strings.TrimSpace(lot.Symbol))
	switch {
	case lot.Symbol == "":
		return apperrors.NewValidationError("store", "add lot", "symbol must not be empty")
	case lot.Quantity <= 0:
		return apperrors.NewValidationError("store", "add lot", "quantity must be positive")
	case lot.CostPerShare <= 0:
		return apperrors.NewValidationError("store", "add lot", "cost per share must be positive")
	}

	lot.ID = NewID()
	if lot.AcquiredAt.IsZero() {
		lot.AcquiredAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO lots (id, symbol, quantity, cost_per_share, acquired_at, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		lot.ID, lot.Symbol, lot.Quantity, lot.CostPerShare, lot.AcquiredAt, lot.Notes)
	if err != nil {
		return apperrors.NewStorageError("store", "add lot", err)
	}
	return nil
}

// GetLot loads a lot by id.
func (s *Store) GetLot(ctx context.Context, id string) (*Lot, error) {
	var lot Lot
	err := s.db.QueryRowContext(ctx,
		`SELECT id, symbol, quantity, cost_per_share, acquired_at, notes
		 FROM lots WHERE id = ?`, id).
		Scan(&lot.ID, &lot.Symbol, &lot.Quantity, &lot.CostPerShare, &lot.AcquiredAt, &lot.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("store", "get lot", "lot not found: "+id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("store", "get lot", err)
	}
	return &lot, nil
}

// ListLots returns all lots ordered by acquisition time. Passing a symbol
// narrows the result to that symbol.
func (s *Store) ListLots(ctx context.Context, symbol string) ([]Lot, error) {
	query := `SELECT id, symbol, quantity, cost_per_share, acquired_at, notes FROM lots`
	var args []interface{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, strings.ToUpper(strings.TrimSpace(symbol)))
	}
	query += ` ORDER BY acquired_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "list lots", err)
	}
	defer rows.Close()

	lots := []Lot{}
	for rows.Next() {
		var lot Lot
		if err := rows.Scan(&lot.ID, &lot.Symbol, &lot.Quantity, &lot.CostPerShare,
			&lot.AcquiredAt, &lot.Notes); err != nil {
			return nil, apperrors.NewStorageError("store", "list lots", err)
		}
		lots = append(lots, lot)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("store", "list lots", err)
	}
	return lots, nil
}

// DeleteLot removes a lot.
func (s *Store) DeleteLot(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lots WHERE id = ?`, id)
	if err != nil {
		return apperrors.NewStorageError("store", "delete lot", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("store", "delete lot", "lot not found: "+id)
	}
	return nil
}
