package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// CreateBet insere a aposta e suas seleções numa única transação.
// As seleções nascem e morrem com a aposta (cascade delete).
func (p *Postgres) CreateBet(ctx context.Context, b *Bet, selections []BetSelection) (string, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, stake_cents, total_odds, potential_win_cents, status)
		VALUES ($1,$2,$3,$4,$5,'PENDING')`,
		id, b.UserID, b.StakeCents, b.TotalOdds, b.PotentialWinCents,
	)
	if err != nil {
		return "", err
	}

	for _, sel := range selections {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO bet_selections (id, bet_id, market_id, odd_value)
			VALUES ($1,$2,$3,$4)`,
			uuid.NewString(), id, sel.MarketID, sel.OddValue,
		)
		if err != nil {
			return "", err
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetBet retorna uma aposta pelo id
func (p *Postgres) GetBet(ctx context.Context, id string) (*Bet, error) {
	var b Bet
	err := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, stake_cents, total_odds, potential_win_cents, status, created_at
		FROM bets WHERE id=$1`, id).
		Scan(&b.ID, &b.UserID, &b.StakeCents, &b.TotalOdds, &b.PotentialWinCents, &b.Status, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBetsByUser retorna as apostas de um usuário
func (p *Postgres) ListBetsByUser(ctx context.Context, userID string) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, stake_cents, total_odds, potential_win_cents, status, created_at
		FROM bets WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBets(rows)
}

// ListPendingBets retorna todas as apostas PENDING do sistema.
// O filtro por partida acontece dentro do loop de settlement, por seleção —
// O(apostas x seleções) por evento, aceitável em escala de demo.
func (p *Postgres) ListPendingBets(ctx context.Context) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, stake_cents, total_odds, potential_win_cents, status, created_at
		FROM bets WHERE status='PENDING' ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBets(rows)
}

// ListSelections retorna as seleções de uma aposta
func (p *Postgres) ListSelections(ctx context.Context, betID string) ([]BetSelection, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, bet_id, market_id, odd_value
		FROM bet_selections WHERE bet_id=$1`, betID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BetSelection
	for rows.Next() {
		var s BetSelection
		if err := rows.Scan(&s.ID, &s.BetID, &s.MarketID, &s.OddValue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ResolveBet aplica o status final via compare-and-swap: só transiciona se a
// aposta ainda estiver PENDING. Retorna false quando outro settlement já a
// resolveu (ou ela não existe) — o chamador então pula o payout.
func (p *Postgres) ResolveBet(ctx context.Context, betID, status string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE bets SET status=$1, updated_at=NOW()
		WHERE id=$2 AND status='PENDING'`,
		status, betID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteBet remove a aposta e, por cascade, suas seleções.
// Permitido para qualquer status; não estorna o stake debitado.
func (p *Postgres) DeleteBet(ctx context.Context, betID string) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id=$1`, betID)
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

func collectBets(rows *sql.Rows) ([]Bet, error) {
	var out []Bet
	for rows.Next() {
		var b Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.StakeCents, &b.TotalOdds, &b.PotentialWinCents, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
