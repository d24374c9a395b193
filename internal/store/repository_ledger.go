package store

import "context"

type LedgerFilter struct {
	AccountID string
	RefID     string
}

func (s *Store) ListLedgerEntries(ctx context.Context, f LedgerFilter, limit, offset int) ([]LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx, `
		SELECT id, account_id, type, amount, ref_type, ref_id, created_at
		FROM ledger_entries
		WHERE ($1 = '' OR account_id = $1)
		  AND ($2 = '' OR ref_id = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3 OFFSET $4`,
		f.AccountID, f.RefID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LedgerEntry, 0, limit)
	for rows.Next() {
		var e LedgerEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Type, &e.Amount, &e.RefType, &e.RefID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
