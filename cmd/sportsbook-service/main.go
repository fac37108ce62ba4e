package main

import (
	"context"
	"fmt"
	"net/http"
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
	sbcache "github.com/radieske/sportsbook-poc/internal/sportsbook/cache"
	sbhttp "github.com/radieske/sportsbook-poc/internal/sportsbook/http"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/odds"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/producer"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
	"github.com/radieske/sportsbook-poc/internal/sportsbook/ws"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New("sportsbook-service", cfg.Env)
	defer log.Sync()

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	if err := db.Migrate(pg); err != nil {
		log.Fatal("migrations", zap.Error(err))
	}

	// Redis
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers
	betPlacedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betPlacedWriter.Close()
	matchFinishedWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchFinished)
	defer matchFinishedWriter.Close()
	betSettledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetSettled)
	defer betSettledWriter.Close()

	// deps
	repository := repo.NewPostgres(pg)
	ov := odds.NewValidator(rdb)
	mcache := sbcache.New(rdb, 24*time.Hour)
	publ := &producer.KafkaPublisher{
		BetPlacedWriter:     betPlacedWriter,
		MatchFinishedWriter: matchFinishedWriter,
		BetSettledWriter:    betSettledWriter,
	}

	// Métricas Prometheus do settlement
	betsSettled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_bets_settled_total", Help: "apostas resolvidas por status"}, []string{"status"})
	settleErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sportsbook_settlement_errors_total", Help: "erros de settlement por estágio"}, []string{"stage"})
	prometheus.MustRegister(betsSettled, settleErrors)

	// Após resolver uma aposta, publica bet_settled e faz broadcast pro WS
	notifier := &producer.SettledNotifier{
		Log:     log,
		Publ:    publ,
		Rdb:     rdb,
		Channel: cfg.RedisPubSubChannel,
	}

	// Engine de settlement: roda síncrono no endpoint de resultado
	engine := &settlement.Engine{
		Log:           log,
		Matches:       repository,
		Markets:       repository,
		Bets:          repository,
		Payout:        settlement.NewPayoutApplier(log, repository),
		OnBetSettled:  func(status string) { betsSettled.WithLabelValues(status).Inc() },
		OnError:       func(stage string) { settleErrors.WithLabelValues(stage).Inc() },
		OnAfterSettle: notifier.AfterSettle,
	}

	// WebSocket hub alimentado pelo Redis Pub/Sub
	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ws.StartRedisSubscriber(context.Background(), rdb, hub)

	// HTTP público
	api := sbhttp.NewServer(log, repository, engine, ov, mcache, publ, hub)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return err
		}
		return rdb.Ping(ctx).Err()
	})

	log.Info("sportsbook-service listening", zap.String("addr", fmt.Sprintf(":%s", cfg.HTTPPort)))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
