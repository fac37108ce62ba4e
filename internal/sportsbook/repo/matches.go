package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const matchCols = `id, league_id, home_team, away_team, start_time, status,
	home_score, away_score, ht_home_score, ht_away_score, created_at`

// CreateMatch insere uma partida com status UPCOMING
func (p *Postgres) CreateMatch(ctx context.Context, leagueID, homeTeam, awayTeam string, startTime time.Time) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO matches (id, league_id, home_team, away_team, start_time, status)
		VALUES ($1,$2,$3,$4,$5,'UPCOMING')`,
		id, leagueID, homeTeam, awayTeam, startTime,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GetMatch retorna uma partida pelo id
func (p *Postgres) GetMatch(ctx context.Context, id string) (*Match, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+matchCols+` FROM matches WHERE id=$1`, id)
	return scanMatch(row)
}

// ListMatches retorna partidas, opcionalmente filtradas por status
func (p *Postgres) ListMatches(ctx context.Context, status string) ([]Match, error) {
	q := `SELECT ` + matchCols + ` FROM matches`
	args := []any{}
	if status != "" {
		q += ` WHERE status=$1`
		args = append(args, status)
	}
	q += ` ORDER BY start_time`

	rows, err := p.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// ListMatchesByLeague retorna as partidas de uma liga
func (p *Postgres) ListMatchesByLeague(ctx context.Context, leagueID string) ([]Match, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+matchCols+` FROM matches WHERE league_id=$1 ORDER BY start_time`, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// SetLiveScore marca a partida como LIVE com placar parcial
func (p *Postgres) SetLiveScore(ctx context.Context, id string, homeScore, awayScore int) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE matches SET status='LIVE', home_score=$1, away_score=$2, updated_at=NOW()
		WHERE id=$3 AND status <> 'FINISHED'`,
		homeScore, awayScore, id,
	)
	if err != nil {
		return err
	}
	return p.checkMatchAffected(ctx, res, id)
}

// FinishMatch grava o resultado e marca a partida como FINISHED.
// Compare-and-swap no status: uma partida já FINISHED rejeita um segundo
// resultado, evitando re-disparo do settlement com placar diferente.
func (p *Postgres) FinishMatch(ctx context.Context, id string, homeScore, awayScore, htHomeScore, htAwayScore int) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE matches
		SET status='FINISHED', home_score=$1, away_score=$2,
		    ht_home_score=$3, ht_away_score=$4, updated_at=NOW()
		WHERE id=$5 AND status <> 'FINISHED'`,
		homeScore, awayScore, htHomeScore, htAwayScore, id,
	)
	if err != nil {
		return err
	}
	return p.checkMatchAffected(ctx, res, id)
}

// checkMatchAffected distingue partida inexistente de partida já encerrada
func (p *Postgres) checkMatchAffected(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var status string
	err = p.db.QueryRowContext(ctx, `SELECT status FROM matches WHERE id=$1`, id).Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyFinished
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(r rowScanner) (*Match, error) {
	var m Match
	var leagueID sql.NullString
	err := r.Scan(&m.ID, &leagueID, &m.HomeTeam, &m.AwayTeam, &m.StartTime, &m.Status,
		&m.HomeScore, &m.AwayScore, &m.HtHomeScore, &m.HtAwayScore, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m.LeagueID = leagueID.String
	return &m, nil
}
