package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

// JournalFilter narrows ListEntries. Zero value matches everything.
type JournalFilter struct {
	Symbol     string
	OnlyOpen   bool
	OnlyClosed bool
}

const journalColumns = `id, symbol, side, quantity, entry_price, exit_price,
	stop_loss, target, fees, notes, tags, opened_at, closed_at, created_at, updated_at`

// CreateEntry inserts a journal entry, assigning its id and timestamps.
func (s *Store) CreateEntry(ctx context.Context, e *JournalEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}

	now := time.Now().UTC()
	e.ID = NewID()
	e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.OpenedAt.IsZero() {
		e.OpenedAt = now
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO journal_entries
			(id, symbol, side, quantity, entry_price, exit_price, stop_loss, target,
			 fees, notes, tags, opened_at, closed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Symbol, string(e.Side), e.Quantity, e.EntryPrice,
		nullFloat(e.ExitPrice), nullFloat(e.StopLoss), nullFloat(e.Target),
		e.Fees, e.Notes, joinTags(e.Tags), e.OpenedAt, nullTime(e.ClosedAt),
		e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return apperrors.NewStorageError("store", "create journal entry", err)
	}
	return nil
}

// GetEntry loads a journal entry by id.
func (s *Store) GetEntry(ctx context.Context, id string) (*JournalEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+journalColumns+` FROM journal_entries WHERE id = ?`, id)
	e, err := scanEntry(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("store", "get journal entry", "journal entry not found: "+id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("store", "get journal entry", err)
	}
	return e, nil
}

// ListEntries returns journal entries newest-first, optionally filtered.
func (s *Store) ListEntries(ctx context.Context, filter JournalFilter) ([]JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM journal_entries`
	var conds []string
	var args []interface{}
	if filter.Symbol != "" {
		conds = append(conds, "symbol = ?")
		args = append(args, strings.ToUpper(strings.TrimSpace(filter.Symbol)))
	}
	if filter.OnlyOpen {
		conds = append(conds, "closed_at IS NULL")
	}
	if filter.OnlyClosed {
		conds = append(conds, "closed_at IS NOT NULL")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY opened_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "list journal entries", err)
	}
	defer rows.Close()

	entries := []JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows.Scan)
		if err != nil {
			return nil, apperrors.NewStorageError("store", "list journal entries", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("store", "list journal entries", err)
	}
	return entries, nil
}

// UpdateEntry replaces the mutable fields of an existing entry and bumps
// updated_at.
func (s *Store) UpdateEntry(ctx context.Context, e *JournalEntry) error {
	if e.ID == "" {
		return apperrors.NewValidationError("store", "update journal entry", "entry id must not be empty")
	}
	if err := validateEntry(e); err != nil {
		return err
	}

	e.Symbol = strings.ToUpper(strings.TrimSpace(e.Symbol))
	e.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE journal_entries SET
			symbol = ?, side = ?, quantity = ?, entry_price = ?, exit_price = ?,
			stop_loss = ?, target = ?, fees = ?, notes = ?, tags = ?,
			opened_at = ?, closed_at = ?, updated_at = ?
		WHERE id = ?`,
		e.Symbol, string(e.Side), e.Quantity, e.EntryPrice, nullFloat(e.ExitPrice),
		nullFloat(e.StopLoss), nullFloat(e.Target), e.Fees, e.Notes, joinTags(e.Tags),
		e.OpenedAt, nullTime(e.ClosedAt), e.UpdatedAt, e.ID)
	if err != nil {
		return apperrors.NewStorageError("store", "update journal entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("store", "update journal entry", "journal entry not found: "+e.ID)
	}
	return nil
}

// CloseEntry records the exit of an open trade.
func (s *Store) CloseEntry(ctx context.Context, id string, exitPrice float64, closedAt time.Time) (*JournalEntry, error) {
	if exitPrice <= 0 {
		return nil, apperrors.NewValidationError("store", "close journal entry", "exit price must be positive")
	}
	e, err := s.GetEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Closed() {
		return nil, apperrors.NewValidationError("store", "close journal entry", "journal entry already closed: "+id)
	}
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}
	e.ExitPrice = &exitPrice
	e.ClosedAt = &closedAt
	if err := s.UpdateEntry(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// DeleteEntry removes a journal entry.
func (s *Store) DeleteEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM journal_entries WHERE id = ?`, id)
	if err != nil {
		return apperrors.NewStorageError("store", "delete journal entry", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("store", "delete journal entry", "journal entry not found: "+id)
	}
	return nil
}

func validateEntry(e *JournalEntry) error {
	switch {
	case strings.TrimSpace(e.Symbol) == "":
		return apperrors.NewValidationError("store", "validate journal entry", "symbol must not be empty")
	case e.Side != SideLong && e.Side != SideShort:
		return apperrors.NewValidationError("store", "validate journal entry",
			"side must be long or short, got: "+string(e.Side))
	case e.Quantity <= 0:
		return apperrors.NewValidationError("store", "validate journal entry", "quantity must be positive")
	case e.EntryPrice <= 0:
		return apperrors.NewValidationError("store", "validate journal entry", "entry price must be positive")
	case e.Fees < 0:
		return apperrors.NewValidationError("store", "validate journal entry", "fees must not be negative")
	case e.ExitPrice != nil && *e.ExitPrice <= 0:
		return apperrors.NewValidationError("store", "validate journal entry", "exit price must be positive")
	}
	return nil
}

// scanEntry maps one journal row through the nullable columns.
func scanEntry(scan func(dest ...interface{}) error) (*JournalEntry, error) {
	var (
		e         JournalEntry
		side      string
		tags      string
		exitPrice sql.NullFloat64
		stopLoss  sql.NullFloat64
		target    sql.NullFloat64
		closedAt  sql.NullTime
	)
	err := scan(&e.ID, &e.Symbol, &side, &e.Quantity, &e.EntryPrice, &exitPrice,
		&stopLoss, &target, &e.Fees, &e.Notes, &tags, &e.OpenedAt, &closedAt,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Side = TradeSide(side)
	e.Tags = splitTags(tags)
	if exitPrice.Valid {
		e.ExitPrice = &exitPrice.Float64
	}
	if stopLoss.Valid {
		e.StopLoss = &stopLoss.Float64
	}
	if target.Valid {
		e.Target = &target.Float64
	}
	if closedAt.Valid {
		t := closedAt.Time
		e.ClosedAt = &t
	}
	return &e, nil
}

func nullFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

func nullTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
