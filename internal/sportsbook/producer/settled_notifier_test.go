package producer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/ws"
	"github.com/radieske/sportsbook-poc/pkg/contracts/events"
)

type fakeSettledPublisher struct {
	published []events.BetSettled
}

func (f *fakeSettledPublisher) PublishBetSettled(_ context.Context, e events.BetSettled) error {
	f.published = append(f.published, e)
	return nil
}

type fakeRedisPublisher struct {
	channel  string
	payloads [][]byte
}

func (f *fakeRedisPublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	f.channel = channel
	f.payloads = append(f.payloads, message.([]byte))
	return redis.NewIntResult(1, nil)
}

// Qualquer caminho de settlement (síncrono ou worker) passa por aqui: tem que
// sair o evento bet_settled e o broadcast pro canal do hub WebSocket.
func TestSettledNotifierPublishesAndBroadcasts(t *testing.T) {
	publ := &fakeSettledPublisher{}
	rdb := &fakeRedisPublisher{}
	n := &SettledNotifier{
		Log:     zap.NewNop(),
		Publ:    publ,
		Rdb:     rdb,
		Channel: ws.PubSubChannel,
	}

	bet := repo.Bet{ID: "b1", UserID: "u1", StakeCents: 1000, PotentialWinCents: 1850}
	n.AfterSettle(bet, "m1", repo.BetStatusWon, 1850)

	require.Len(t, publ.published, 1)
	assert.Equal(t, "b1", publ.published[0].BetID)
	assert.Equal(t, "m1", publ.published[0].MatchID)
	assert.Equal(t, repo.BetStatusWon, publ.published[0].Status)
	assert.Equal(t, int64(1850), publ.published[0].PayoutCents)

	assert.Equal(t, ws.PubSubChannel, rdb.channel)
	require.Len(t, rdb.payloads, 1)

	var upd ws.SettlementUpdate
	require.NoError(t, json.Unmarshal(rdb.payloads[0], &upd))
	assert.Equal(t, "m1", upd.MatchID)
}
