package dto

import "github.com/radieske/sportsbook-poc/internal/settlement"

type PlaceBetResponse struct {
	BetID             string  `json:"bet_id"`
	Status            string  `json:"status"` // PENDING
	TotalOdds         float64 `json:"total_odds"`
	PotentialWinCents int64   `json:"potential_win_cents"`
}

type BetResponse struct {
	BetID             string              `json:"bet_id"`
	UserID            string              `json:"user_id"`
	StakeCents        int64               `json:"stake_cents"`
	TotalOdds         float64             `json:"total_odds"`
	PotentialWinCents int64               `json:"potential_win_cents"`
	Status            string              `json:"status"`
	Selections        []SelectionResponse `json:"selections,omitempty"`
}

type SelectionResponse struct {
	MarketID string  `json:"market_id"`
	OddValue float64 `json:"odd_value"`
}

type ResultResponse struct {
	MatchID    string              `json:"match_id"`
	Status     string              `json:"status"`
	Settlement *settlement.Summary `json:"settlement"`
}

type WalletResponse struct {
	UserID       string `json:"user_id"`
	WalletID     string `json:"wallet_id"`
	BalanceCents int64  `json:"balance_cents"`
}
