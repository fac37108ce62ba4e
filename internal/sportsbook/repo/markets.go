package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// CreateMarket insere um mercado para uma partida, com odd fixa
func (p *Postgres) CreateMarket(ctx context.Context, matchID, marketType string, oddValue float64) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO markets (id, match_id, market_type, odd_value)
		VALUES ($1,$2,$3,$4)`,
		id, matchID, marketType, oddValue,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetMarket retorna um mercado pelo id
func (p *Postgres) GetMarket(ctx context.Context, id string) (*Market, error) {
	var m Market
	err := p.db.QueryRowContext(ctx, `
		SELECT id, match_id, market_type, odd_value, locked, created_at
		FROM markets WHERE id=$1`, id).
		Scan(&m.ID, &m.MatchID, &m.MarketType, &m.OddValue, &m.Locked, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMarketsByMatch retorna os mercados de uma partida
func (p *Postgres) ListMarketsByMatch(ctx context.Context, matchID string) ([]Market, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, match_id, market_type, odd_value, locked, created_at
		FROM markets WHERE match_id=$1 ORDER BY market_type`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Market
	for rows.Next() {
		var m Market
		if err := rows.Scan(&m.ID, &m.MatchID, &m.MarketType, &m.OddValue, &m.Locked, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SetMarketLocked trava/destrava um mercado para novas seleções
func (p *Postgres) SetMarketLocked(ctx context.Context, id string, locked bool) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE markets SET locked=$1 WHERE id=$2`, locked, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
