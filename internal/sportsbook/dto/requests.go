package dto

import "github.com/go-playground/validator/v10"

var validate = validator.New()

type SelectionRequest struct {
	MarketID string  `json:"market_id" validate:"required,uuid4"`
	OddValue float64 `json:"odd_value" validate:"required,gt=1"` // odd que o cliente viu
}

type PlaceBetRequest struct {
	UserID     string             `json:"user_id" validate:"required"`
	StakeCents int64              `json:"stake_cents" validate:"required,gt=0"`
	Selections []SelectionRequest `json:"selections" validate:"required,min=1,dive"`
}

func (r *PlaceBetRequest) Validate() error {
	return validate.Struct(r)
}

type CreateLeagueRequest struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country,omitempty"`
}

func (r *CreateLeagueRequest) Validate() error {
	return validate.Struct(r)
}

type CreateMatchRequest struct {
	LeagueID  string                `json:"league_id" validate:"omitempty,uuid4"`
	HomeTeam  string                `json:"home_team" validate:"required"`
	AwayTeam  string                `json:"away_team" validate:"required"`
	StartTime string                `json:"start_time" validate:"required"` // RFC3339
	Markets   []CreateMarketRequest `json:"markets" validate:"omitempty,dive"`
}

func (r *CreateMatchRequest) Validate() error {
	return validate.Struct(r)
}

type CreateMarketRequest struct {
	MarketType string  `json:"market_type" validate:"required"`
	OddValue   float64 `json:"odd_value" validate:"required,gt=1"`
}

type LockMarketRequest struct {
	Locked bool `json:"locked"`
}

type LiveScoreRequest struct {
	HomeScore int `json:"home_score" validate:"gte=0"`
	AwayScore int `json:"away_score" validate:"gte=0"`
}

func (r *LiveScoreRequest) Validate() error {
	return validate.Struct(r)
}

type ResultRequest struct {
	HomeScore   int  `json:"home_score" validate:"gte=0"`
	AwayScore   int  `json:"away_score" validate:"gte=0"`
	HtHomeScore *int `json:"ht_home_score,omitempty" validate:"omitempty,gte=0"`
	HtAwayScore *int `json:"ht_away_score,omitempty" validate:"omitempty,gte=0"`
}

func (r *ResultRequest) Validate() error {
	return validate.Struct(r)
}

type DepositRequest struct {
	UserID      string `json:"user_id" validate:"required"`
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ idempotência simples
}

func (r *DepositRequest) Validate() error {
	return validate.Struct(r)
}
