package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/ws"
	"github.com/radieske/sportsbook-poc/pkg/contracts/events"
)

// BetSettledPublisher é o recorte do publisher usado pelo notifier.
type BetSettledPublisher interface {
	PublishBetSettled(ctx context.Context, e events.BetSettled) error
}

// RedisPublisher é o recorte do cliente Redis usado para broadcast.
// Satisfeito por *redis.Client.
type RedisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// SettledNotifier publica bet_settled no Kafka e faz broadcast do resultado
// no canal Redis consumido pelo hub WebSocket. Usado como hook OnAfterSettle
// do engine nos dois caminhos de settlement: o síncrono do sportsbook-service
// e o de recuperação do settlement-worker.
type SettledNotifier struct {
	Log     *zap.Logger
	Publ    BetSettledPublisher
	Rdb     RedisPublisher
	Channel string
}

func (n *SettledNotifier) AfterSettle(bet repo.Bet, matchID, status string, payoutCents int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	ev := events.BetSettled{
		BetID:       bet.ID,
		UserID:      bet.UserID,
		MatchID:     matchID,
		Status:      status,
		PayoutCents: payoutCents,
		Ts:          time.Now(),
	}
	if err := n.Publ.PublishBetSettled(ctx, ev); err != nil {
		n.Log.Warn("publish bet_settled failed", zap.String("bet_id", bet.ID), zap.Error(err))
	}

	msg := ws.SettlementUpdate{MatchID: matchID, Payload: ev}
	b, _ := json.Marshal(msg)
	if err := n.Rdb.Publish(ctx, n.Channel, b).Err(); err != nil {
		n.Log.Warn("ws broadcast publish failed", zap.String("bet_id", bet.ID), zap.Error(err))
	}
}
