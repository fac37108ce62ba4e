package events

import "time"

// Evento publicado no tópico "match_finished" quando um resultado é lançado.
// O settlement-worker consome este evento como caminho de recuperação: a
// resolução das apostas é idempotente, então reprocessar é seguro.
type MatchFinished struct {
	MatchID     string    `json:"match_id"`
	HomeScore   int       `json:"home_score"`
	AwayScore   int       `json:"away_score"`
	HtHomeScore int       `json:"ht_home_score"`
	HtAwayScore int       `json:"ht_away_score"`
	FinishedAt  time.Time `json:"finished_at"`
}
