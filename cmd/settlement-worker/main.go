package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/settlement"
	"github.com/radieske/sportsbook-poc/internal/shared/cache"
	"github.com/radieske/sportsbook-poc/internal/shared/config"
	"github.com/radieske/sportsbook-poc/internal/shared/db"
	"github.com/radieske/sportsbook-poc/internal/shared/kafka"
	"github.com/radieske/sportsbook-poc/internal/shared/logger"
	"github.com/radieske/sportsbook-poc/internal/shared/metrics"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/producer"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
	ev "github.com/radieske/sportsbook-poc/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Consome match_finished como caminho de recuperação — o passe síncrono
	// do sportsbook-service normalmente já resolveu tudo; reprocessar é
	// seguro porque a resolução das apostas é idempotente
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchFinished, "settlement-worker")
	defer reader.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicMatchFinishedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchFinishedDLQ)
		defer dlqWriter.Close()
	}

	betSettledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer betSettledWriter.Close()
	publ := &producer.KafkaPublisher{BetSettledWriter: betSettledWriter}

	// Métricas Prometheus
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_worker_events_consumed_total", Help: "eventos match_finished consumidos"})
	betsSettled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_worker_bets_settled_total", Help: "apostas resolvidas por status"}, []string{"status"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_worker_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, betsSettled, errorsBy)

	repository := repo.NewPostgres(pg)

	// Apostas resolvidas aqui (casos de recuperação) notificam igual ao
	// caminho síncrono: bet_settled no Kafka e broadcast pro hub WebSocket
	notifier := &producer.SettledNotifier{
		Log:     log,
		Publ:    publ,
		Rdb:     rdb,
		Channel: cfg.RedisPubSubChannel,
	}

	engine := &settlement.Engine{
		Log:           log,
		Matches:       repository,
		Markets:       repository,
		Bets:          repository,
		Payout:        settlement.NewPayoutApplier(log, repository),
		OnBetSettled:  func(status string) { betsSettled.WithLabelValues(status).Inc() },
		OnError:       func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
		OnAfterSettle: notifier.AfterSettle,
	}

	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicMatchFinished))

	ctx := context.Background()

	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		consumed.Inc()

		var finished ev.MatchFinished
		if jerr := json.Unmarshal(value, &finished); jerr != nil {
			log.Error("unmarshal match_finished", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, log, engine, dlqWriter, &finished); err != nil {
			log.Error("process match", zap.String("matchId", finished.MatchID), zap.Error(err))
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne reexecuta o settlement de uma partida encerrada.
// Retry simples: tenta até 3 vezes antes de enviar para DLQ.
func processOne(
	ctx context.Context,
	log *zap.Logger,
	engine *settlement.Engine,
	dlqWriter *kafka.Writer,
	finished *ev.MatchFinished,
) error {
	sum, err := engine.SettleMatch(ctx, finished.MatchID)
	if err != nil {
		const retries = 3
		for i := 0; i < retries; i++ {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			if sum, err = engine.SettleMatch(ctx, finished.MatchID); err == nil {
				break
			}
		}
		if err != nil {
			if dlqWriter != nil {
				_ = kafka.WriteJSON(ctx, dlqWriter, finished.MatchID, mustJSON(finished))
			}
			return err
		}
	}

	if len(sum.Errors) > 0 {
		log.Warn("settlement finished with partial failures",
			zap.String("matchId", finished.MatchID),
			zap.Int("failed", len(sum.Errors)),
		)
	}
	log.Info("settlement pass done",
		zap.String("matchId", finished.MatchID),
		zap.Int("won", sum.Won), zap.Int("lost", sum.Lost), zap.Int("push", sum.Push),
		zap.Int("skipped", sum.Skipped),
	)
	return nil
}

func mustJSON(v any) []byte {
	b, _ := json.Marshal(v)
	return b
}
