package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetSetting возвращает значение настройки приложения.
func (s *Storage) GetSetting(ctx context.Context, key string) (string, error) {
	const op = "storage.GetSetting"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return value, nil
}

// SetSetting сохраняет значение настройки, перезаписывая прежнее.
func (s *Storage) SetSetting(ctx context.Context, key, value string) error {
	const op = "storage.SetSetting"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO app_settings (key, value, updated_at)
			  VALUES ($1, $2, NOW())
			  ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	if _, err := s.DB.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
