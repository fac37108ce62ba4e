package pricing

import "github.com/shopspring/decimal"

// TotalOdds calcula a odd total de um acumulador: produto das odds das
// seleções, arredondado a 4 casas. Decimal evita o drift de float em
// produtos longos; o valor é gravado na aposta e nunca recalculado.
func TotalOdds(odds []float64) float64 {
	total := decimal.NewFromInt(1)
	for _, o := range odds {
		total = total.Mul(decimal.NewFromFloat(o))
	}
	return total.Round(4).InexactFloat64()
}

// PotentialWinCents calcula stake x odd total, em centavos, arredondando
// para baixo — a casa não paga fração de centavo.
func PotentialWinCents(stakeCents int64, totalOdds float64) int64 {
	win := decimal.NewFromInt(stakeCents).Mul(decimal.NewFromFloat(totalOdds))
	return win.RoundDown(0).IntPart()
}
