package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/interview-billing/internal/models"
)

const profileColumns = `id, external_id, email, full_name, created_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.Profile, error) {
	var p models.Profile
	if err := row.Scan(&p.ID, &p.ExternalID, &p.Email, &p.FullName, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfileByID возвращает профиль по внутреннему идентификатору.
func (s *Storage) GetProfileByID(ctx context.Context, id string) (*models.Profile, error) {
	const op = "storage.GetProfileByID"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// GetProfileByEmail возвращает самый ранний профиль с данным адресом.
func (s *Storage) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	const op = "storage.GetProfileByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + profileColumns + ` FROM profiles
			  WHERE lower(email) = lower($1)
			  ORDER BY created_at
			  LIMIT 1`
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// UpsertProfile создаёт профиль или обновляет email и имя существующего.
func (s *Storage) UpsertProfile(ctx context.Context, profile models.Profile) (*models.Profile, error) {
	const op = "storage.UpsertProfile"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO profiles (id, external_id, email, full_name)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (id) DO UPDATE
			  SET email = EXCLUDED.email, full_name = EXCLUDED.full_name
			  RETURNING ` + profileColumns
	p, err := scanProfile(s.DB.QueryRowContext(ctx, query,
		profile.ID, profile.ExternalID, profile.Email, profile.FullName))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}
