package settlement

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
)

// fakeStore implementa em memória os contratos de repositório consumidos
// pelo engine, incluindo a idempotência de crédito por external_ref.
type fakeStore struct {
	matches    map[string]*repo.Match
	markets    map[string]*repo.Market
	bets       map[string]*repo.Bet
	selections map[string][]repo.BetSelection
	balances   map[string]int64
	credits    map[string]int64 // external_ref -> valor creditado
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		matches:    map[string]*repo.Match{},
		markets:    map[string]*repo.Market{},
		bets:       map[string]*repo.Bet{},
		selections: map[string][]repo.BetSelection{},
		balances:   map[string]int64{},
		credits:    map[string]int64{},
	}
}

func (f *fakeStore) GetMatch(_ context.Context, id string) (*repo.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) GetMarket(_ context.Context, id string) (*repo.Market, error) {
	m, ok := f.markets[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return m, nil
}

func (f *fakeStore) ListPendingBets(_ context.Context) ([]repo.Bet, error) {
	var out []repo.Bet
	for _, b := range f.bets {
		if b.Status == repo.BetStatusPending {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSelections(_ context.Context, betID string) ([]repo.BetSelection, error) {
	return f.selections[betID], nil
}

func (f *fakeStore) ResolveBet(_ context.Context, betID, status string) (bool, error) {
	b, ok := f.bets[betID]
	if !ok || b.Status != repo.BetStatusPending {
		return false, nil
	}
	b.Status = status
	return true, nil
}

func (f *fakeStore) CreditPayout(_ context.Context, userID string, amount int64, externalRef, _ string) error {
	if _, done := f.credits[externalRef]; done {
		return nil // já creditado
	}
	f.credits[externalRef] = amount
	f.balances[userID] += amount
	return nil
}

func (f *fakeStore) addFinishedMatch(id string, home, away, htHome, htAway int) {
	f.matches[id] = &repo.Match{
		ID: id, Status: repo.MatchStatusFinished,
		HomeScore: &home, AwayScore: &away,
		HtHomeScore: &htHome, HtAwayScore: &htAway,
	}
}

func (f *fakeStore) addMarket(id, matchID, marketType string, odd float64) {
	f.markets[id] = &repo.Market{ID: id, MatchID: matchID, MarketType: marketType, OddValue: odd}
}

func (f *fakeStore) addBet(id, userID string, stakeCents, potentialWinCents int64, marketIDs ...string) {
	f.bets[id] = &repo.Bet{
		ID: id, UserID: userID,
		StakeCents:        stakeCents,
		PotentialWinCents: potentialWinCents,
		Status:            repo.BetStatusPending,
	}
	for _, mid := range marketIDs {
		f.selections[id] = append(f.selections[id], repo.BetSelection{
			BetID: id, MarketID: mid, OddValue: f.markets[mid].OddValue,
		})
	}
}

func newTestEngine(store *fakeStore) *Engine {
	log := zap.NewNop()
	return &Engine{
		Log:     log,
		Matches: store,
		Markets: store,
		Bets:    store,
		Payout:  NewPayoutApplier(log, store),
	}
}

func TestSettleMatchSingleWinningSelection(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 2, 1, 0, 0)
	store.addMarket("mk1", "m1", Market1, 1.85)
	// stake 10.00 a 1.85 => potencial 18.50
	store.addBet("b1", "u1", 1000, 1850, "mk1")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Won)
	assert.Equal(t, repo.BetStatusWon, store.bets["b1"].Status)
	assert.Equal(t, int64(1850), store.balances["u1"])
	assert.Empty(t, sum.Errors)
}

func TestSettleMatchDrawNoBetPushesStakeBack(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 1, 1, 0, 0)
	store.addMarket("mk1", "m1", MarketDNB1, 1.40)
	store.addBet("b1", "u1", 1000, 1400, "mk1")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Push)
	assert.Equal(t, repo.BetStatusPush, store.bets["b1"].Status)
	// push devolve o stake, não o potencial
	assert.Equal(t, int64(1000), store.balances["u1"])
}

func TestSettleMatchShortCircuitsOnFirstLoss(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 0, 0, 0, 0)
	store.addMarket("mk1", "m1", MarketOver15, 1.70)
	store.addMarket("mk2", "m1", Market1, 1.85)
	store.addBet("b1", "u1", 1000, 3145, "mk1", "mk2")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Lost)
	assert.Equal(t, repo.BetStatusLost, store.bets["b1"].Status)
	assert.Zero(t, store.balances["u1"])
}

func TestSettleMatchWinBothHalvesArithmetic(t *testing.T) {
	store := newFakeStore()
	// intervalo 1-0, final 2-1: 2º tempo 1-1, não venceu os dois tempos
	store.addFinishedMatch("m1", 2, 1, 1, 0)
	store.addMarket("mk1", "m1", MarketWinBothHalves1, 4.50)
	store.addBet("b1", "u1", 1000, 4500, "mk1")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Lost)
	assert.Equal(t, repo.BetStatusLost, store.bets["b1"].Status)
}

func TestSettleMatchUnknownMarketTypeLoses(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 3, 0, 2, 0)
	store.addMarket("mk1", "m1", "FOOBAR", 2.00)
	store.addBet("b1", "u1", 500, 1000, "mk1")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Lost)
	assert.Zero(t, store.balances["u1"])
}

func TestSettleMatchAccumulatorAllLegsWin(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 2, 1, 1, 0)
	store.addMarket("mk1", "m1", Market1, 1.85)
	store.addMarket("mk2", "m1", MarketOver25, 1.95)
	store.addMarket("mk3", "m1", MarketBTTSYes, 1.75)
	store.addBet("b1", "u1", 1000, 6313, "mk1", "mk2", "mk3")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Won)
	assert.Equal(t, int64(6313), store.balances["u1"])
}

func TestSettleMatchPushPlusWinsIsPush(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 1, 1, 1, 1)
	store.addMarket("mk1", "m1", MarketDNB1, 1.40)
	store.addMarket("mk2", "m1", MarketX, 3.40)
	store.addBet("b1", "u1", 1000, 4760, "mk1", "mk2")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	// todas ganharam ou deram push => PUSH, devolve stake
	assert.Equal(t, 1, sum.Push)
	assert.Equal(t, int64(1000), store.balances["u1"])
}

func TestSettleMatchIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 2, 1, 0, 0)
	store.addMarket("mk1", "m1", Market1, 1.85)
	store.addBet("b1", "u1", 1000, 1850, "mk1")

	eng := newTestEngine(store)
	_, err := eng.SettleMatch(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, int64(1850), store.balances["u1"])

	// segundo passe (ex: redelivery do worker): aposta já resolvida,
	// status não muda e nada é creditado de novo
	sum, err := eng.SettleMatch(context.Background(), "m1")
	require.NoError(t, err)
	assert.Zero(t, sum.Won)
	assert.Zero(t, sum.Scanned)
	assert.Equal(t, repo.BetStatusWon, store.bets["b1"].Status)
	assert.Equal(t, int64(1850), store.balances["u1"])
}

// Acumulador com pernas em duas partidas: o passe da primeira partida
// encerrada finaliza a aposta olhando só as pernas dela.
func TestSettleMatchCrossMatchAccumulatorFinalizesEarly(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 2, 0, 0, 0)
	store.matches["m2"] = &repo.Match{ID: "m2", Status: repo.MatchStatusUpcoming}
	store.addMarket("mk1", "m1", Market1, 1.85)
	store.addMarket("mk2", "m2", Market1, 2.10)
	store.addBet("b1", "u1", 1000, 3885, "mk1", "mk2")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	// finalizada como WON antes da m2 terminar, pagando o potencial cheio
	assert.Equal(t, 1, sum.Won)
	assert.Equal(t, repo.BetStatusWon, store.bets["b1"].Status)
	assert.Equal(t, int64(3885), store.balances["u1"])
}

func TestSettleMatchSkipsBetsWithoutAffectedLegs(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 2, 0, 0, 0)
	store.matches["m2"] = &repo.Match{ID: "m2", Status: repo.MatchStatusUpcoming}
	store.addMarket("mk2", "m2", Market1, 2.10)
	store.addBet("b1", "u1", 1000, 2100, "mk2")

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, repo.BetStatusPending, store.bets["b1"].Status)
}

// Falha numa aposta (mercado sumiu) não aborta o settlement das demais.
func TestSettleMatchIsolatesPerBetFailures(t *testing.T) {
	store := newFakeStore()
	store.addFinishedMatch("m1", 2, 1, 0, 0)
	store.addMarket("mk1", "m1", Market1, 1.85)
	store.addBet("b-ok", "u1", 1000, 1850, "mk1")

	store.bets["b-broken"] = &repo.Bet{ID: "b-broken", UserID: "u2", StakeCents: 500, Status: repo.BetStatusPending}
	store.selections["b-broken"] = []repo.BetSelection{{BetID: "b-broken", MarketID: "mk-missing"}}

	sum, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Won)
	require.Len(t, sum.Errors, 1)
	assert.Equal(t, "b-broken", sum.Errors[0].BetID)
	assert.Equal(t, repo.BetStatusWon, store.bets["b-ok"].Status)
	assert.Equal(t, repo.BetStatusPending, store.bets["b-broken"].Status)
}

func TestSettleMatchRejectsUnfinishedMatch(t *testing.T) {
	store := newFakeStore()
	store.matches["m1"] = &repo.Match{ID: "m1", Status: repo.MatchStatusLive}

	_, err := newTestEngine(store).SettleMatch(context.Background(), "m1")
	assert.Error(t, err)

	_, err = newTestEngine(store).SettleMatch(context.Background(), "missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestPayoutApplierAmounts(t *testing.T) {
	store := newFakeStore()
	applier := NewPayoutApplier(zap.NewNop(), store)
	bet := &repo.Bet{ID: "b1", UserID: "u1", StakeCents: 1000, PotentialWinCents: 1850}

	paid, err := applier.Apply(context.Background(), bet, repo.BetStatusWon)
	require.NoError(t, err)
	assert.Equal(t, int64(1850), paid)

	paid, err = applier.Apply(context.Background(), bet, repo.BetStatusLost)
	require.NoError(t, err)
	assert.Zero(t, paid)

	bet2 := &repo.Bet{ID: "b2", UserID: "u1", StakeCents: 700, PotentialWinCents: 980}
	paid, err = applier.Apply(context.Background(), bet2, repo.BetStatusPush)
	require.NoError(t, err)
	assert.Equal(t, int64(700), paid)

	// crédito WON + devolução PUSH, cada um uma vez só
	assert.Equal(t, int64(1850+700), store.balances["u1"])
}
