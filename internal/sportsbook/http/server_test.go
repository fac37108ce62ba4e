package httpapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/settlement"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
	"github.com/radieske/sportsbook-poc/pkg/contracts/events"
)

// fakeStore implementa Store e os contratos do engine em memória, com erros
// injetáveis nos pontos que interessam aos testes de resultado.
type fakeStore struct {
	match      *repo.Match
	pendingErr error
}

func (f *fakeStore) GetMatch(_ context.Context, id string) (*repo.Match, error) {
	if f.match == nil || f.match.ID != id {
		return nil, repo.ErrNotFound
	}
	return f.match, nil
}

func (f *fakeStore) FinishMatch(_ context.Context, id string, home, away, htHome, htAway int) error {
	if f.match == nil || f.match.ID != id {
		return repo.ErrNotFound
	}
	if f.match.Status == repo.MatchStatusFinished {
		return repo.ErrAlreadyFinished
	}
	f.match.Status = repo.MatchStatusFinished
	f.match.HomeScore, f.match.AwayScore = &home, &away
	f.match.HtHomeScore, f.match.HtAwayScore = &htHome, &htAway
	return nil
}

// Contratos do engine de settlement
func (f *fakeStore) ListPendingBets(context.Context) ([]repo.Bet, error) {
	return nil, f.pendingErr
}
func (f *fakeStore) ResolveBet(context.Context, string, string) (bool, error) { return false, nil }
func (f *fakeStore) CreditPayout(context.Context, string, int64, string, string) error {
	return nil
}

// Demais métodos de Store, não exercitados pelos testes de resultado
func (f *fakeStore) CreateLeague(context.Context, string, string) (string, error) { return "", nil }
func (f *fakeStore) ListLeagues(context.Context) ([]repo.League, error)           { return nil, nil }
func (f *fakeStore) ListMatchesByLeague(context.Context, string) ([]repo.Match, error) {
	return nil, nil
}
func (f *fakeStore) CreateMatch(context.Context, string, string, string, time.Time) (string, error) {
	return "", nil
}
func (f *fakeStore) ListMatches(context.Context, string) ([]repo.Match, error) { return nil, nil }
func (f *fakeStore) SetLiveScore(context.Context, string, int, int) error      { return nil }
func (f *fakeStore) CreateMarket(context.Context, string, string, float64) (string, error) {
	return "", nil
}
func (f *fakeStore) GetMarket(context.Context, string) (*repo.Market, error) {
	return nil, repo.ErrNotFound
}
func (f *fakeStore) ListMarketsByMatch(context.Context, string) ([]repo.Market, error) {
	return nil, nil
}
func (f *fakeStore) SetMarketLocked(context.Context, string, bool) error { return nil }
func (f *fakeStore) CreateBet(context.Context, *repo.Bet, []repo.BetSelection) (string, error) {
	return "", nil
}
func (f *fakeStore) GetBet(context.Context, string) (*repo.Bet, error) { return nil, repo.ErrNotFound }
func (f *fakeStore) ListBetsByUser(context.Context, string) ([]repo.Bet, error) { return nil, nil }
func (f *fakeStore) ListSelections(context.Context, string) ([]repo.BetSelection, error) {
	return nil, nil
}
func (f *fakeStore) DeleteBet(context.Context, string) error { return nil }
func (f *fakeStore) GetOrCreateWallet(context.Context, string) (string, int64, error) {
	return "", 0, nil
}
func (f *fakeStore) Deposit(context.Context, string, int64, string) (string, int64, error) {
	return "", 0, nil
}
func (f *fakeStore) DebitStake(context.Context, string, int64, string) error { return nil }

type fakePublisher struct {
	matchFinished []events.MatchFinished
}

func (p *fakePublisher) PublishBetPlaced(context.Context, events.BetPlaced) error { return nil }
func (p *fakePublisher) PublishMatchFinished(_ context.Context, e events.MatchFinished) error {
	p.matchFinished = append(p.matchFinished, e)
	return nil
}

func newResultServer(store *fakeStore, publ *fakePublisher) *Server {
	log := zap.NewNop()
	engine := &settlement.Engine{
		Log:     log,
		Matches: store,
		Markets: store,
		Bets:    store,
		Payout:  settlement.NewPayoutApplier(log, store),
	}
	return NewServer(log, store, engine, nil, nil, publ, nil)
}

func postResult(t *testing.T, srv *Server, matchID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/matches/"+matchID+"/result", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestReportResultSettlesAndPublishes(t *testing.T) {
	store := &fakeStore{match: &repo.Match{ID: "m1", Status: repo.MatchStatusUpcoming}}
	publ := &fakePublisher{}
	srv := newResultServer(store, publ)

	rec := postResult(t, srv, "m1", `{"home_score":2,"away_score":1}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, repo.MatchStatusFinished, store.match.Status)
	require.Len(t, publ.matchFinished, 1)
	assert.Equal(t, "m1", publ.matchFinished[0].MatchID)
	assert.Equal(t, 2, publ.matchFinished[0].HomeScore)
}

// Falha no passe síncrono não pode engolir o evento: a partida já está
// FINISHED e um retry do cliente leva 409, então match_finished precisa sair
// mesmo assim para o settlement-worker reprocessar.
func TestReportResultPublishesEventWhenSettlementFails(t *testing.T) {
	store := &fakeStore{
		match:      &repo.Match{ID: "m1", Status: repo.MatchStatusUpcoming},
		pendingErr: errors.New("db down"),
	}
	publ := &fakePublisher{}
	srv := newResultServer(store, publ)

	rec := postResult(t, srv, "m1", `{"home_score":2,"away_score":1}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, repo.MatchStatusFinished, store.match.Status)
	require.Len(t, publ.matchFinished, 1)
	assert.Equal(t, "m1", publ.matchFinished[0].MatchID)
}

func TestReportResultSecondResultConflicts(t *testing.T) {
	store := &fakeStore{match: &repo.Match{ID: "m1", Status: repo.MatchStatusUpcoming}}
	publ := &fakePublisher{}
	srv := newResultServer(store, publ)

	first := postResult(t, srv, "m1", `{"home_score":2,"away_score":1}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := postResult(t, srv, "m1", `{"home_score":0,"away_score":0}`)
	assert.Equal(t, http.StatusConflict, second.Code)
	// placar original preservado, nenhum evento extra
	assert.Equal(t, 2, *store.match.HomeScore)
	assert.Len(t, publ.matchFinished, 1)
}

func TestReportResultUnknownMatch(t *testing.T) {
	srv := newResultServer(&fakeStore{}, &fakePublisher{})

	rec := postResult(t, srv, "missing", `{"home_score":1,"away_score":0}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
