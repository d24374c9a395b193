package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) CreateSessionRow(ctx context.Context, row SessionRow) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO sessions (id, authority, bet_amount, mode, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		row.ID, row.Authority, row.BetAmount, row.Mode, row.Status, row.CreatedAt, row.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID, status string) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE sessions SET status = $1, updated_at = now() WHERE id = $2`,
		status, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) UpdateSessionExpiry(ctx context.Context, sessionID string, expiresAt int64) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE sessions SET expires_at = $1, updated_at = now() WHERE id = $2`,
		expiresAt, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) GetSessionRow(ctx context.Context, sessionID string) (*SessionRow, error) {
	var r SessionRow
	err := s.Pool.QueryRow(ctx, `
		SELECT id, authority, bet_amount, mode, status, created_at, expires_at, updated_at
		FROM sessions WHERE id = $1`,
		sessionID).Scan(&r.ID, &r.Authority, &r.BetAmount, &r.Mode, &r.Status, &r.CreatedAt, &r.ExpiresAt, &r.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &r, nil
}

func (s *Store) ListSessionRows(ctx context.Context, status string, limit, offset int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, authority, bet_amount, mode, status, created_at, expires_at, updated_at
		FROM sessions
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SessionRow, 0, limit)
	for rows.Next() {
		var r SessionRow
		if err := rows.Scan(&r.ID, &r.Authority, &r.BetAmount, &r.Mode, &r.Status, &r.CreatedAt, &r.ExpiresAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
