package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/stock-insight/internal/errors"
)

// SetSetting stores a key/value pair, replacing any previous value.
func (s *Store) SetSetting(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperrors.NewValidationError("store", "set setting", "setting key must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return apperrors.NewStorageError("store", "set setting", err)
	}
	return nil
}

// GetSetting returns the value stored under key.
func (s *Store) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.NewNotFoundError("store", "get setting", "setting not found: "+key)
	}
	if err != nil {
		return "", apperrors.NewStorageError("store", "get setting", err)
	}
	return value, nil
}

// GetSettingDefault returns the value under key, or def when the key is not
// set.
func (s *Store) GetSettingDefault(ctx context.Context, key, def string) (string, error) {
	value, err := s.GetSetting(ctx, key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return def, nil
		}
		return "", err
	}
	return value, nil
}

// ListSettings returns all stored settings as a map.
func (s *Store) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, apperrors.NewStorageError("store", "list settings", err)
	}
	defer rows.Close()

	settings := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, apperrors.NewStorageError("store", "list settings", err)
		}
		settings[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("store", "list settings", err)
	}
	return settings, nil
}

// DeleteSetting removes a setting. Deleting a missing key is a no-op.
func (s *Store) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return apperrors.NewStorageError("store", "delete setting", err)
	}
	return nil
}
