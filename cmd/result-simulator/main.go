package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/shared/config"
	"github.com/radieske/sportsbook-poc/internal/shared/logger"
	"github.com/radieske/sportsbook-poc/internal/shared/metrics"
)

// Catálogo fixo de confrontos simulados
var fixtureCatalog = [][2]string{
	{"Flamengo", "Palmeiras"},
	{"Grêmio", "Internacional"},
	{"Corinthians", "Santos"},
	{"São Paulo", "Vasco"},
}

// Mercados padrão criados para cada partida simulada
var defaultMarkets = []map[string]any{
	{"market_type": "1", "odd_value": 1.85},
	{"market_type": "X", "odd_value": 3.40},
	{"market_type": "2", "odd_value": 4.20},
	{"market_type": "OVER_2_5", "odd_value": 1.95},
	{"market_type": "UNDER_2_5", "odd_value": 1.85},
	{"market_type": "BTTS_YES", "odd_value": 1.75},
	{"market_type": "DNB_1", "odd_value": 1.40},
	{"market_type": "DC_1X", "odd_value": 1.25},
	{"market_type": "HT_OVER_0_5", "odd_value": 1.55},
}

// Métricas Prometheus
var (
	matchesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_matches_created_total",
		Help: "Partidas criadas via API",
	})
	resultsPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_results_posted_total",
		Help: "Resultados lançados via API",
	})
)

type apiClient struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func (c *apiClient) postJSON(path string, payload any, out any) error {
	b, _ := json.Marshal(payload)
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(b))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("api http " + resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *apiClient) putJSON(path string, payload any) error {
	b, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPut, c.base+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("api http " + resp.Status)
	}
	return nil
}

// createFixtures cria a liga e as partidas do catálogo, com mercados padrão
func (c *apiClient) createFixtures() ([]string, error) {
	var league struct {
		LeagueID string `json:"league_id"`
	}
	if err := c.postJSON("/v1/leagues", map[string]any{"name": "Brasileirão Simulado", "country": "BR"}, &league); err != nil {
		return nil, fmt.Errorf("create league: %w", err)
	}

	var ids []string
	for _, teams := range fixtureCatalog {
		var match struct {
			MatchID string `json:"match_id"`
		}
		payload := map[string]any{
			"league_id":  league.LeagueID,
			"home_team":  teams[0],
			"away_team":  teams[1],
			"start_time": time.Now().Add(time.Minute).Format(time.RFC3339),
			"markets":    defaultMarkets,
		}
		if err := c.postJSON("/v1/matches", payload, &match); err != nil {
			return nil, fmt.Errorf("create match %s x %s: %w", teams[0], teams[1], err)
		}
		matchesCreated.Inc()
		c.log.Info("match created", zap.String("match_id", match.MatchID),
			zap.String("home", teams[0]), zap.String("away", teams[1]))
		ids = append(ids, match.MatchID)
	}
	return ids, nil
}

// postResult gera um placar aleatório plausível (intervalo <= final) e lança
// o resultado no endpoint de settlement
func (c *apiClient) postResult(matchID string) error {
	home := rand.Intn(5)
	away := rand.Intn(4)
	htHome := 0
	if home > 0 {
		htHome = rand.Intn(home + 1)
	}
	htAway := 0
	if away > 0 {
		htAway = rand.Intn(away + 1)
	}

	// placar parcial primeiro: marca a partida como LIVE
	live := map[string]any{"home_score": htHome, "away_score": htAway}
	if err := c.putJSON("/v1/matches/"+matchID+"/score", live); err != nil {
		c.log.Warn("live score update failed", zap.String("match_id", matchID), zap.Error(err))
	}

	payload := map[string]any{
		"home_score":    home,
		"away_score":    away,
		"ht_home_score": htHome,
		"ht_away_score": htAway,
	}
	if err := c.postJSON("/v1/matches/"+matchID+"/result", payload, nil); err != nil {
		return err
	}
	resultsPosted.Inc()
	c.log.Info("result posted", zap.String("match_id", matchID),
		zap.Int("home", home), zap.Int("away", away),
		zap.Int("ht_home", htHome), zap.Int("ht_away", htAway))
	return nil
}

func main() {
	cfg := config.Load()
	log, _ := logger.New("result-simulator", cfg.Env)
	defer log.Sync()

	prometheus.MustRegister(matchesCreated, resultsPosted)

	// Servidor de métricas e health
	metrics.StartMetricsServer(cfg.MetricsPort, func(context.Context) error { return nil })

	client := &apiClient{
		base: cfg.SportsbookURL,
		http: &http.Client{Timeout: 5 * time.Second},
		log:  log,
	}

	// Cria as partidas e espera um pouco para dar tempo de apostar
	matchIDs, err := client.createFixtures()
	if err != nil {
		log.Fatal("create fixtures", zap.Error(err))
	}

	interval := 30 * time.Second
	log.Info("result-simulator started",
		zap.String("target", cfg.SportsbookURL),
		zap.Duration("interval", interval),
		zap.Int("matches", len(matchIDs)),
	)

	// Lança um resultado por intervalo até esgotar o catálogo
	for _, id := range matchIDs {
		time.Sleep(interval)
		if err := client.postResult(id); err != nil {
			log.Error("post result", zap.String("match_id", id), zap.Error(err))
		}
	}

	log.Info("all results posted, simulator idle")
	select {}
}
