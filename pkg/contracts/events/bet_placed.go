package events

// Seleção individual de um acumulador, no momento da aposta.
type PlacedSelection struct {
	MarketID   string  `json:"market_id"`
	MatchID    string  `json:"match_id"`
	MarketType string  `json:"market_type"`
	OddValue   float64 `json:"odd_value"`
}

type BetPlaced struct {
	BetID             string            `json:"bet_id"`
	UserID            string            `json:"user_id"`
	StakeCents        int64             `json:"stake_cents"`
	TotalOdds         float64           `json:"total_odds"`
	PotentialWinCents int64             `json:"potential_win_cents"`
	Selections        []PlacedSelection `json:"selections"`
	TsUnixMs          int64             `json:"ts_unix_ms"`
}
