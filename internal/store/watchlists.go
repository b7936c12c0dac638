package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

// CreateWatchlist creates an empty watchlist with the given name.
func (s *Store) CreateWatchlist(ctx context.Context, name string) (*Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("store", "create watchlist", "watchlist name must not be empty")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM watchlists WHERE name = ?`, name).Scan(&exists)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "create watchlist", err)
	}
	if exists > 0 {
		return nil, apperrors.NewValidationError("store", "create watchlist", "watchlist name already exists: "+name)
	}

	w := &Watchlist{
		ID:        NewID(),
		Name:      name,
		Symbols:   []string{},
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO watchlists (id, name, created_at) VALUES (?, ?, ?)`,
		w.ID, w.Name, w.CreatedAt)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "create watchlist", err)
	}
	return w, nil
}

// GetWatchlist loads a watchlist and its symbols by id.
func (s *Store) GetWatchlist(ctx context.Context, id string) (*Watchlist, error) {
	w := &Watchlist{Symbols: []string{}}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM watchlists WHERE id = ?`, id).
		Scan(&w.ID, &w.Name, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError("store", "get watchlist", "watchlist not found: "+id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("store", "get watchlist", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT symbol FROM watchlist_symbols WHERE watchlist_id = ? ORDER BY symbol`, id)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "get watchlist", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, apperrors.NewStorageError("store", "get watchlist", err)
		}
		w.Symbols = append(w.Symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("store", "get watchlist", err)
	}
	return w, nil
}

// ListWatchlists returns all watchlists, symbols included, ordered by name.
func (s *Store) ListWatchlists(ctx context.Context) ([]Watchlist, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM watchlists ORDER BY name`)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "list watchlists", err)
	}
	defer rows.Close()

	lists := []Watchlist{}
	index := map[string]int{}
	for rows.Next() {
		var w Watchlist
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError("store", "list watchlists", err)
		}
		w.Symbols = []string{}
		index[w.ID] = len(lists)
		lists = append(lists, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("store", "list watchlists", err)
	}

	symRows, err := s.db.QueryContext(ctx,
		`SELECT watchlist_id, symbol FROM watchlist_symbols ORDER BY symbol`)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "list watchlists", err)
	}
	defer symRows.Close()
	for symRows.Next() {
		var wid, sym string
		if err := symRows.Scan(&wid, &sym); err != nil {
			return nil, apperrors.NewStorageError("store", "list watchlists", err)
		}
		if i, ok := index[wid]; ok {
			lists[i].Symbols = append(lists[i].Symbols, sym)
		}
	}
	if err := symRows.Err(); err != nil {
		return nil, apperrors.NewStorageError("store", "list watchlists", err)
	}
	return lists, nil
}

// DeleteWatchlist removes a watchlist and its symbols.
func (s *Store) DeleteWatchlist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlists WHERE id = ?`, id)
	if err != nil {
		return apperrors.NewStorageError("store", "delete watchlist", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("store", "delete watchlist", "watchlist not found: "+id)
	}
	return nil
}

// AddSymbol adds a symbol to a watchlist. Adding an already-present symbol is
// a no-op.
func (s *Store) AddSymbol(ctx context.Context, watchlistID, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return apperrors.NewValidationError("store", "add symbol", "symbol must not be empty")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM watchlists WHERE id = ?`, watchlistID).Scan(&exists)
	if err != nil {
		return apperrors.NewStorageError("store", "add symbol", err)
	}
	if exists == 0 {
		return apperrors.NewNotFoundError("store", "add symbol", "watchlist not found: "+watchlistID)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO watchlist_symbols (watchlist_id, symbol, added_at) VALUES (?, ?, ?)`,
		watchlistID, symbol, time.Now().UTC())
	if err != nil {
		return apperrors.NewStorageError("store", "add symbol", err)
	}
	return nil
}

// RemoveSymbol removes a symbol from a watchlist.
func (s *Store) RemoveSymbol(ctx context.Context, watchlistID, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM watchlist_symbols WHERE watchlist_id = ? AND symbol = ?`,
		watchlistID, symbol)
	if err != nil {
		return apperrors.NewStorageError("store", "remove symbol", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NewNotFoundError("store", "remove symbol",
			"symbol "+symbol+" not on watchlist "+watchlistID)
	}
	return nil
}
