package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlaceBetRequestValidate(t *testing.T) {
	valid := PlaceBetRequest{
		UserID:     "user-1",
		StakeCents: 1000,
		Selections: []SelectionRequest{
			{MarketID: "6ba7b811-9dad-41d1-80b4-00c04fd430c8", OddValue: 1.85},
		},
	}
	assert.NoError(t, valid.Validate())

	noSelections := valid
	noSelections.Selections = nil
	assert.Error(t, noSelections.Validate())

	zeroStake := valid
	zeroStake.StakeCents = 0
	assert.Error(t, zeroStake.Validate())

	badOdd := valid
	badOdd.Selections = []SelectionRequest{
		{MarketID: "6ba7b811-9dad-41d1-80b4-00c04fd430c8", OddValue: 1.0},
	}
	assert.Error(t, badOdd.Validate())

	badMarketID := valid
	badMarketID.Selections = []SelectionRequest{{MarketID: "not-a-uuid", OddValue: 1.85}}
	assert.Error(t, badMarketID.Validate())
}

func TestResultRequestValidate(t *testing.T) {
	ht := 1
	ok := ResultRequest{HomeScore: 2, AwayScore: 1, HtHomeScore: &ht}
	assert.NoError(t, ok.Validate())

	// 0x0 é placar válido
	assert.NoError(t, (&ResultRequest{}).Validate())

	negative := ResultRequest{HomeScore: -1}
	assert.Error(t, negative.Validate())
}

func TestCreateMatchRequestValidate(t *testing.T) {
	ok := CreateMatchRequest{
		HomeTeam:  "Flamengo",
		AwayTeam:  "Palmeiras",
		StartTime: "2025-06-01T16:00:00Z",
		Markets:   []CreateMarketRequest{{MarketType: "1", OddValue: 1.85}},
	}
	assert.NoError(t, ok.Validate())

	missingTeam := ok
	missingTeam.AwayTeam = ""
	assert.Error(t, missingTeam.Validate())

	badMarket := ok
	badMarket.Markets = []CreateMarketRequest{{MarketType: "1", OddValue: 0.9}}
	assert.Error(t, badMarket.Validate())
}
