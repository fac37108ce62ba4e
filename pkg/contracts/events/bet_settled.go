package events

import "time"

// Evento emitido pelo settlement para cada aposta resolvida.
type BetSettled struct {
	BetID       string    `json:"bet_id"`
	UserID      string    `json:"user_id"`
	MatchID     string    `json:"match_id"`
	Status      string    `json:"status"` // "WON" | "LOST" | "PUSH"
	PayoutCents int64     `json:"payout_cents"`
	Ts          time.Time `json:"ts"`
}
