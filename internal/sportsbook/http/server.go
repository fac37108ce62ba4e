package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/settlement"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/cache"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/dto"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/odds"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/pricing"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/ws"
	"github.com/radieske/sportsbook-poc/pkg/contracts/events"
)

// Publisher é o contrato de publicação de eventos usado pelos handlers
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
	PublishMatchFinished(ctx context.Context, e events.MatchFinished) error
}

// Store agrega os repositórios consumidos pelos handlers.
// Implementado por repo.Postgres; os testes usam um fake em memória.
type Store interface {
	CreateLeague(ctx context.Context, name, country string) (string, error)
	ListLeagues(ctx context.Context) ([]repo.League, error)
	ListMatchesByLeague(ctx context.Context, leagueID string) ([]repo.Match, error)

	CreateMatch(ctx context.Context, leagueID, homeTeam, awayTeam string, startTime time.Time) (string, error)
	GetMatch(ctx context.Context, id string) (*repo.Match, error)
	ListMatches(ctx context.Context, status string) ([]repo.Match, error)
	SetLiveScore(ctx context.Context, id string, homeScore, awayScore int) error
	FinishMatch(ctx context.Context, id string, homeScore, awayScore, htHomeScore, htAwayScore int) error

	CreateMarket(ctx context.Context, matchID, marketType string, oddValue float64) (string, error)
	GetMarket(ctx context.Context, id string) (*repo.Market, error)
	ListMarketsByMatch(ctx context.Context, matchID string) ([]repo.Market, error)
	SetMarketLocked(ctx context.Context, id string, locked bool) error

	CreateBet(ctx context.Context, b *repo.Bet, selections []repo.BetSelection) (string, error)
	GetBet(ctx context.Context, id string) (*repo.Bet, error)
	ListBetsByUser(ctx context.Context, userID string) ([]repo.Bet, error)
	ListSelections(ctx context.Context, betID string) ([]repo.BetSelection, error)
	DeleteBet(ctx context.Context, betID string) error

	GetOrCreateWallet(ctx context.Context, userID string) (string, int64, error)
	Deposit(ctx context.Context, userID string, amount int64, externalRef string) (string, int64, error)
	DebitStake(ctx context.Context, userID string, amount int64, externalRef string) error
}

// Server expõe a API REST do sportsbook: catálogo, apostas, resultados e wallet
type Server struct {
	log    *zap.Logger
	repo   Store
	engine *settlement.Engine
	odds   *odds.Validator
	mcache *cache.MarketCache
	publ   Publisher
	hub    *ws.Hub
}

func NewServer(log *zap.Logger, r Store, eng *settlement.Engine, v *odds.Validator, mc *cache.MarketCache, p Publisher, hub *ws.Hub) *Server {
	return &Server{log: log, repo: r, engine: eng, odds: v, mcache: mc, publ: p, hub: hub}
}

// Router retorna o roteador HTTP com os endpoints REST
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/v1/leagues", s.listLeagues)
	r.Post("/v1/leagues", s.createLeague)
	r.Get("/v1/leagues/{id}/matches", s.listLeagueMatches)

	r.Get("/v1/matches", s.listMatches)
	r.Post("/v1/matches", s.createMatch)
	r.Get("/v1/matches/{id}", s.getMatch)
	r.Get("/v1/matches/{id}/markets", s.listMatchMarkets)
	r.Put("/v1/matches/{id}/score", s.updateLiveScore)
	r.Post("/v1/matches/{id}/result", s.reportResult)

	r.Post("/v1/markets/{id}/lock", s.lockMarket)

	r.Post("/v1/bets", s.placeBet)
	r.Get("/v1/bets", s.listBets)
	r.Get("/v1/bets/{id}", s.getBet)
	r.Delete("/v1/bets/{id}", s.deleteBet)

	r.Get("/v1/wallet", s.getWallet)
	r.Post("/v1/wallet/deposit", s.deposit)

	if s.hub != nil {
		r.Get("/v1/ws", s.hub.HandleWS)
	}

	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// listLeagues retorna todas as ligas
func (s *Server) listLeagues(w http.ResponseWriter, r *http.Request) {
	ls, err := s.repo.ListLeagues(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

// createLeague cria uma liga (admin)
func (s *Server) createLeague(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLeagueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := s.repo.CreateLeague(r.Context(), req.Name, req.Country)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"league_id": id})
}

// listLeagueMatches retorna as partidas de uma liga
func (s *Server) listLeagueMatches(w http.ResponseWriter, r *http.Request) {
	ms, err := s.repo.ListMatchesByLeague(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

// listMatches retorna partidas, com filtro opcional ?status=
func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	ms, err := s.repo.ListMatches(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ms)
}

// getMatch retorna uma partida pelo id
func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.repo.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "match not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// listMatchMarkets retorna os mercados de uma partida
func (s *Server) listMatchMarkets(w http.ResponseWriter, r *http.Request) {
	mk, err := s.repo.ListMarketsByMatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, mk)
}

// createMatch cria uma partida (admin) com mercados opcionais
func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_time must be RFC3339")
		return
	}

	matchID, err := s.repo.CreateMatch(r.Context(), req.LeagueID, req.HomeTeam, req.AwayTeam, start)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	for _, mk := range req.Markets {
		id, err := s.repo.CreateMarket(r.Context(), matchID, mk.MarketType, mk.OddValue)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		// alimenta o cache consultado na validação de odd da aposta
		if err := s.mcache.SetOdd(r.Context(), id, mk.OddValue); err != nil {
			s.log.Warn("market cache set failed", zap.String("market_id", id), zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, map[string]string{"match_id": matchID})
}

// updateLiveScore atualiza o placar parcial e marca a partida como LIVE.
// Não dispara settlement; só o resultado final dispara.
func (s *Server) updateLiveScore(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	var req dto.LiveScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.repo.SetLiveScore(r.Context(), matchID, req.HomeScore, req.AwayScore); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			writeError(w, http.StatusNotFound, "match not found")
		case errors.Is(err, repo.ErrAlreadyFinished):
			writeError(w, http.StatusConflict, "match already finished")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"match_id": matchID, "status": repo.MatchStatusLive})
}

// lockMarket trava ou destrava um mercado (admin). Travar também remove a
// odd do cache, derrubando apostas em voo na validação de odd.
func (s *Server) lockMarket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.LockMarketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}

	if err := s.repo.SetMarketLocked(r.Context(), id, req.Locked); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if req.Locked {
		if err := s.mcache.Invalidate(r.Context(), id); err != nil {
			s.log.Warn("market cache invalidate failed", zap.String("market_id", id), zap.Error(err))
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"market_id": id, "locked": req.Locked})
}

// reportResult lança o placar final, encerra a partida e roda o settlement
// síncrono. Partida já FINISHED rejeita um segundo resultado (409).
func (s *Server) reportResult(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "id")

	var req dto.ResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	htHome, htAway := 0, 0
	if req.HtHomeScore != nil {
		htHome = *req.HtHomeScore
	}
	if req.HtAwayScore != nil {
		htAway = *req.HtAwayScore
	}

	err := s.repo.FinishMatch(r.Context(), matchID, req.HomeScore, req.AwayScore, htHome, htAway)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			writeError(w, http.StatusNotFound, "match not found")
		case errors.Is(err, repo.ErrAlreadyFinished):
			writeError(w, http.StatusConflict, "match already finished")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// Publica antes do passe síncrono: a partida já está FINISHED e um retry
	// do cliente leva 409, então o evento é o único caminho de recuperação se
	// o settlement falhar aqui. Reprocessar no worker é idempotente.
	if err := s.publ.PublishMatchFinished(r.Context(), events.MatchFinished{
		MatchID:     matchID,
		HomeScore:   req.HomeScore,
		AwayScore:   req.AwayScore,
		HtHomeScore: htHome,
		HtAwayScore: htAway,
		FinishedAt:  time.Now(),
	}); err != nil {
		s.log.Warn("publish match_finished failed", zap.String("match_id", matchID), zap.Error(err))
	}

	sum, err := s.engine.SettleMatch(r.Context(), matchID)
	if err != nil {
		s.log.Error("settlement failed", zap.String("match_id", matchID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResultResponse{
		MatchID:    matchID,
		Status:     repo.MatchStatusFinished,
		Settlement: sum,
	})
}

// placeBet cria um acumulador: valida mercados/odds, precifica, debita o
// stake e insere aposta + seleções
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	oddValues := make([]float64, 0, len(req.Selections))
	selections := make([]repo.BetSelection, 0, len(req.Selections))
	placed := make([]events.PlacedSelection, 0, len(req.Selections))

	for _, sel := range req.Selections {
		market, err := s.repo.GetMarket(ctx, sel.MarketID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				writeError(w, http.StatusNotFound, "market not found: "+sel.MarketID)
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if market.Locked {
			writeError(w, http.StatusConflict, repo.ErrMarketLocked.Error()+": "+sel.MarketID)
			return
		}

		match, err := s.repo.GetMatch(ctx, market.MatchID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if match.Status != repo.MatchStatusUpcoming {
			writeError(w, http.StatusConflict, "match not open for betting: "+match.ID)
			return
		}

		// 1) Valida odd atual no cache; sem cache, cai pra odd persistida
		current, ok, err := s.odds.CurrentOdd(ctx, sel.MarketID)
		if err != nil {
			s.log.Warn("odd cache lookup failed", zap.String("market_id", sel.MarketID), zap.Error(err))
		}
		if !ok {
			current = market.OddValue
		}
		if !odds.Matches(sel.OddValue, current) {
			writeError(w, http.StatusConflict, "odd changed for market "+sel.MarketID)
			return
		}

		oddValues = append(oddValues, sel.OddValue)
		selections = append(selections, repo.BetSelection{MarketID: sel.MarketID, OddValue: sel.OddValue})
		placed = append(placed, events.PlacedSelection{
			MarketID:   sel.MarketID,
			MatchID:    market.MatchID,
			MarketType: market.MarketType,
			OddValue:   sel.OddValue,
		})
	}

	// 2) Precifica: odd total e potencial de ganho, fixados na criação
	totalOdds := pricing.TotalOdds(oddValues)
	potentialWin := pricing.PotentialWinCents(req.StakeCents, totalOdds)

	// 3) Cria aposta PENDING com seleções
	betID, err := s.repo.CreateBet(ctx, &repo.Bet{
		UserID:            req.UserID,
		StakeCents:        req.StakeCents,
		TotalOdds:         totalOdds,
		PotentialWinCents: potentialWin,
	}, selections)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// 4) Debita stake da carteira (external_ref = betID)
	if err := s.repo.DebitStake(ctx, req.UserID, req.StakeCents, "bet-stake:"+betID); err != nil {
		_ = s.repo.DeleteBet(ctx, betID)
		switch {
		case errors.Is(err, repo.ErrInsufficientFunds):
			writeError(w, http.StatusConflict, "insufficient funds")
		case errors.Is(err, repo.ErrNotFound):
			writeError(w, http.StatusNotFound, "wallet not found")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	// 5) Publica evento bet_placed
	if err := s.publ.PublishBetPlaced(ctx, events.BetPlaced{
		BetID:             betID,
		UserID:            req.UserID,
		StakeCents:        req.StakeCents,
		TotalOdds:         totalOdds,
		PotentialWinCents: potentialWin,
		Selections:        placed,
	}); err != nil {
		s.log.Warn("publish bet_placed failed", zap.String("bet_id", betID), zap.Error(err))
	}

	writeJSON(w, http.StatusCreated, dto.PlaceBetResponse{
		BetID:             betID,
		Status:            repo.BetStatusPending,
		TotalOdds:         totalOdds,
		PotentialWinCents: potentialWin,
	})
}

// listBets retorna as apostas de um usuário (?user_id=)
func (s *Server) listBets(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	bets, err := s.repo.ListBetsByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, betResponse(&b, nil))
	}
	writeJSON(w, http.StatusOK, out)
}

// getBet retorna uma aposta com suas seleções
func (s *Server) getBet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	b, err := s.repo.GetBet(r.Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sels, err := s.repo.ListSelections(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, betResponse(b, sels))
}

// deleteBet remove uma aposta e suas seleções (qualquer status)
func (s *Server) deleteBet(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.DeleteBet(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			writeError(w, http.StatusNotFound, "bet not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getWallet retorna (ou cria) a carteira e saldo do usuário
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id required")
		return
	}
	walletID, bal, err := s.repo.GetOrCreateWallet(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: userID, WalletID: walletID, BalanceCents: bal})
}

// deposit adiciona saldo à carteira do usuário
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// cria a carteira no primeiro depósito
	if _, _, err := s.repo.GetOrCreateWallet(r.Context(), req.UserID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	walletID, bal, err := s.repo.Deposit(r.Context(), req.UserID, req.AmountCents, req.ExternalRef)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: req.UserID, WalletID: walletID, BalanceCents: bal})
}

func betResponse(b *repo.Bet, sels []repo.BetSelection) dto.BetResponse {
	out := dto.BetResponse{
		BetID:             b.ID,
		UserID:            b.UserID,
		StakeCents:        b.StakeCents,
		TotalOdds:         b.TotalOdds,
		PotentialWinCents: b.PotentialWinCents,
		Status:            b.Status,
	}
	for _, s := range sels {
		out.Selections = append(out.Selections, dto.SelectionResponse{MarketID: s.MarketID, OddValue: s.OddValue})
	}
	return out
}
