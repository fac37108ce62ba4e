package settlement

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
)

// MatchRepo, MarketRepo e BetRepo são os contratos de persistência que o
// settlement consome. A implementação real é o Postgres do sportsbook; os
// testes usam fakes em memória.
type MatchRepo interface {
	GetMatch(ctx context.Context, id string) (*repo.Match, error)
}

type MarketRepo interface {
	GetMarket(ctx context.Context, id string) (*repo.Market, error)
}

type BetRepo interface {
	ListPendingBets(ctx context.Context) ([]repo.Bet, error)
	ListSelections(ctx context.Context, betID string) ([]repo.BetSelection, error)
	ResolveBet(ctx context.Context, betID, status string) (bool, error)
}

// BetError registra a falha isolada de uma aposta durante o scan.
type BetError struct {
	BetID string `json:"bet_id"`
	Err   string `json:"error"`
}

// Summary é o resultado parcial do settlement de uma partida.
// Falhas por aposta não abortam o scan; aparecem aqui.
type Summary struct {
	MatchID string     `json:"match_id"`
	Scanned int        `json:"scanned"`
	Won     int        `json:"won"`
	Lost    int        `json:"lost"`
	Push    int        `json:"push"`
	Skipped int        `json:"skipped"`
	Errors  []BetError `json:"errors,omitempty"`
}

// Engine executa o settlement quando uma partida vira FINISHED: varre todas
// as apostas PENDING, avalia as seleções ligadas à partida, agrega o status
// final e aplica o payout. Callbacks de métricas seguem o padrão dos workers.
type Engine struct {
	Log     *zap.Logger
	Matches MatchRepo
	Markets MarketRepo
	Bets    BetRepo
	Payout  *PayoutApplier

	OnBetSettled func(status string) // métricas (counter++ por status)
	OnError      func(stage string)  // métricas por fase

	// Após resolver uma aposta, usado para publicar bet_settled e broadcast
	OnAfterSettle func(bet repo.Bet, matchID, status string, payoutCents int64)
}

// SettleMatch roda o settlement completo de uma partida encerrada.
// Retorna erro apenas para falhas que invalidam o evento inteiro (partida
// inexistente ou sem placar); falhas por aposta vão para o Summary.
func (e *Engine) SettleMatch(ctx context.Context, matchID string) (*Summary, error) {
	m, err := e.Matches.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("load match %s: %w", matchID, err)
	}
	if m.Status != repo.MatchStatusFinished {
		return nil, fmt.Errorf("match %s not finished (status=%s)", matchID, m.Status)
	}
	if m.HomeScore == nil || m.AwayScore == nil {
		return nil, fmt.Errorf("match %s finished without score", matchID)
	}

	home, away := *m.HomeScore, *m.AwayScore
	htHome, htAway := 0, 0
	if m.HtHomeScore != nil {
		htHome = *m.HtHomeScore
	}
	if m.HtAwayScore != nil {
		htAway = *m.HtAwayScore
	}

	pending, err := e.Bets.ListPendingBets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending bets: %w", err)
	}

	sum := &Summary{MatchID: matchID, Scanned: len(pending)}
	for _, bet := range pending {
		status, affected, err := e.aggregate(ctx, matchID, bet.ID, home, away, htHome, htAway)
		if err != nil {
			e.Log.Warn("bet aggregation failed",
				zap.String("bet_id", bet.ID), zap.Error(err))
			if e.OnError != nil {
				e.OnError("aggregate")
			}
			sum.Errors = append(sum.Errors, BetError{BetID: bet.ID, Err: err.Error()})
			continue
		}
		if !affected {
			sum.Skipped++
			continue
		}

		applied, err := e.Bets.ResolveBet(ctx, bet.ID, status)
		if err != nil {
			if e.OnError != nil {
				e.OnError("resolve")
			}
			sum.Errors = append(sum.Errors, BetError{BetID: bet.ID, Err: err.Error()})
			continue
		}
		if !applied {
			// outro settlement resolveu primeiro; payout fica com ele
			sum.Skipped++
			continue
		}

		payout, err := e.Payout.Apply(ctx, &bet, status)
		if err != nil {
			e.Log.Error("payout failed",
				zap.String("bet_id", bet.ID), zap.String("status", status), zap.Error(err))
			if e.OnError != nil {
				e.OnError("payout")
			}
			sum.Errors = append(sum.Errors, BetError{BetID: bet.ID, Err: err.Error()})
			continue
		}

		switch status {
		case repo.BetStatusWon:
			sum.Won++
		case repo.BetStatusLost:
			sum.Lost++
		case repo.BetStatusPush:
			sum.Push++
		}
		if e.OnBetSettled != nil {
			e.OnBetSettled(status)
		}
		if e.OnAfterSettle != nil {
			e.OnAfterSettle(bet, matchID, status, payout)
		}

		e.Log.Info("bet settled",
			zap.String("bet_id", bet.ID),
			zap.String("match_id", matchID),
			zap.String("status", status),
			zap.Int64("payout_cents", payout),
		)
	}

	return sum, nil
}

// aggregate percorre as seleções de uma aposta e decide o status final.
// Só avalia seleções cujo mercado pertence à partida recém-encerrada;
// pernas de outras partidas do acumulador não entram neste passe, então um
// acumulador multi-partida é finalizado no primeiro passe que o alcançar.
// Curto-circuito na primeira derrota que não for push.
func (e *Engine) aggregate(ctx context.Context, matchID, betID string, home, away, htHome, htAway int) (status string, affected bool, err error) {
	selections, err := e.Bets.ListSelections(ctx, betID)
	if err != nil {
		return "", false, fmt.Errorf("list selections: %w", err)
	}

	allWon := true
	anyPush := false
	for _, sel := range selections {
		market, err := e.Markets.GetMarket(ctx, sel.MarketID)
		if err != nil {
			return "", false, fmt.Errorf("load market %s: %w", sel.MarketID, err)
		}
		if market.MatchID != matchID {
			continue
		}
		affected = true

		if IsPush(market.MarketType, home, away) {
			anyPush = true
			continue
		}
		if !Evaluate(market.MarketType, home, away, htHome, htAway) {
			allWon = false
			break
		}
	}

	if !affected {
		return "", false, nil
	}

	switch {
	case allWon && anyPush:
		return repo.BetStatusPush, true, nil
	case allWon:
		return repo.BetStatusWon, true, nil
	default:
		return repo.BetStatusLost, true, nil
	}
}
