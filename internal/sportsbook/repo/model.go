package repo

import "time"

// Status de partida.
const (
	MatchStatusUpcoming = "UPCOMING"
	MatchStatusLive     = "LIVE"
	MatchStatusFinished = "FINISHED"
)

// Status de aposta. Transição só PENDING -> {WON, LOST, PUSH}, uma única vez
// (garantida por compare-and-swap no UPDATE).
const (
	BetStatusPending = "PENDING"
	BetStatusWon     = "WON"
	BetStatusLost    = "LOST"
	BetStatusPush    = "PUSH"
)

// League é o modelo persistido no Postgres.
type League struct {
	ID      string
	Name    string
	Country string
}

// Match é o modelo persistido no Postgres. Placares são nulos até o
// resultado ser lançado; settlement só dispara com status FINISHED.
type Match struct {
	ID          string
	LeagueID    string
	HomeTeam    string
	AwayTeam    string
	StartTime   time.Time
	Status      string
	HomeScore   *int
	AwayScore   *int
	HtHomeScore *int
	HtAwayScore *int
	CreatedAt   time.Time
}

// Market é uma oferta de aposta sobre uma partida. A odd é fixada na criação
// e nunca recalculada pelo settlement.
type Market struct {
	ID         string
	MatchID    string
	MarketType string
	OddValue   float64
	Locked     bool
	CreatedAt  time.Time
}

// Bet é uma aposta (acumulador) com uma ou mais seleções. TotalOdds e
// PotentialWinCents são calculados na criação e nunca recalculados.
type Bet struct {
	ID                string
	UserID            string
	StakeCents        int64
	TotalOdds         float64
	PotentialWinCents int64
	Status            string
	CreatedAt         time.Time
}

// BetSelection é uma perna da aposta; a odd é copiada do mercado no momento
// da criação e imutável depois.
type BetSelection struct {
	ID       string
	BetID    string
	MarketID string
	OddValue float64
}
