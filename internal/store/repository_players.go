package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func (s *Store) CreatePlayer(ctx context.Context, p Player) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO players (id, name, identity, api_key_hash, status)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, p.Name, p.Identity, p.APIKeyHash, p.Status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (s *Store) GetPlayerByAPIKeyHash(ctx context.Context, hash string) (*Player, error) {
	var p Player
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, identity, api_key_hash, status, created_at
		FROM players WHERE api_key_hash = $1 AND status = 'active'`,
		hash).Scan(&p.ID, &p.Name, &p.Identity, &p.APIKeyHash, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}

func (s *Store) GetPlayerByIdentity(ctx context.Context, identity string) (*Player, error) {
	var p Player
	err := s.Pool.QueryRow(ctx, `
		SELECT id, name, identity, api_key_hash, status, created_at
		FROM players WHERE identity = $1`,
		identity).Scan(&p.ID, &p.Name, &p.Identity, &p.APIKeyHash, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &p, nil
}
