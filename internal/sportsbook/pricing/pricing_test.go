package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTotalOdds(t *testing.T) {
	assert.Equal(t, 1.85, TotalOdds([]float64{1.85}))
	assert.Equal(t, 3.885, TotalOdds([]float64{1.85, 2.10}))
	// produto longo não acumula drift de float
	assert.Equal(t, 6.3131, TotalOdds([]float64{1.85, 1.95, 1.75}))
	assert.Equal(t, 1.0, TotalOdds(nil))
}

func TestPotentialWinCents(t *testing.T) {
	// R$ 10,00 a 1.85 => R$ 18,50
	assert.Equal(t, int64(1850), PotentialWinCents(1000, 1.85))
	assert.Equal(t, int64(3885), PotentialWinCents(1000, 3.885))
	// fração de centavo é truncada, nunca arredondada para cima
	assert.Equal(t, int64(184), PotentialWinCents(100, 1.849))
	assert.Equal(t, int64(0), PotentialWinCents(0, 2.50))
}
