package repo

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// Postgres implementa os repositórios do sportsbook em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// CreateLeague insere uma liga e retorna o id gerado
func (p *Postgres) CreateLeague(ctx context.Context, name, country string) (string, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO leagues (id, name, country) VALUES ($1,$2,$3)`,
		id, name, country,
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// ListLeagues retorna todas as ligas cadastradas
func (p *Postgres) ListLeagues(ctx context.Context) ([]League, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, country FROM leagues ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []League
	for rows.Next() {
		var l League
		if err := rows.Scan(&l.ID, &l.Name, &l.Country); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
