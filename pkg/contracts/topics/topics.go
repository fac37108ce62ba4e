package topics

const (
	// Partidas
	MatchFinished = "match_finished"

	// Bets
	BetPlaced  = "bet_placed"
	BetSettled = "bet_settled"

	// DLQs
	MatchFinishedDLQ = "match_finished_dlq"
)
