package settlement

// Tipos de mercado suportados. A tag é persistida verbatim na tabela markets;
// tags desconhecidas são aceitas no storage mas sempre perdem no settlement.
const (
	Market1 = "1"
	MarketX = "X"
	Market2 = "2"

	MarketOver15  = "OVER_1_5"
	MarketUnder15 = "UNDER_1_5"
	MarketOver25  = "OVER_2_5"
	MarketUnder25 = "UNDER_2_5"
	MarketOver35  = "OVER_3_5"
	MarketUnder35 = "UNDER_3_5"

	MarketBTTSYes = "BTTS_YES"
	MarketBTTSNo  = "BTTS_NO"

	MarketDNB1 = "DNB_1"
	MarketDNB2 = "DNB_2"

	MarketDC1X = "DC_1X"
	MarketDC12 = "DC_12"
	MarketDCX2 = "DC_X2"

	MarketHT1 = "HT_1"
	MarketHTX = "HT_X"
	MarketHT2 = "HT_2"

	MarketHTOver05  = "HT_OVER_0_5"
	MarketHTUnder05 = "HT_UNDER_0_5"
	MarketHTOver15  = "HT_OVER_1_5"
	MarketHTUnder15 = "HT_UNDER_1_5"

	MarketHTBTTSYes = "HT_BTTS_YES"
	MarketHTBTTSNo  = "HT_BTTS_NO"

	MarketHandicap1Minus1 = "HANDICAP_1_MINUS_1"
	MarketHandicap1Minus2 = "HANDICAP_1_MINUS_2"
	MarketHandicap2Minus1 = "HANDICAP_2_MINUS_1"
	MarketHandicap2Minus2 = "HANDICAP_2_MINUS_2"

	MarketWinBothHalves1 = "WIN_BOTH_HALVES_1"
	MarketWinBothHalves2 = "WIN_BOTH_HALVES_2"
	MarketWinEitherHalf1 = "WIN_EITHER_HALF_1"
	MarketWinEitherHalf2 = "WIN_EITHER_HALF_2"
)

// Evaluate decide se uma seleção venceu, dado o placar final e o de
// intervalo. Tipo de mercado desconhecido perde (default fechado, não é erro).
// Os mercados de metade usam a subtração (final - intervalo) para o 2º tempo.
func Evaluate(marketType string, home, away, htHome, htAway int) bool {
	total := home + away
	htTotal := htHome + htAway
	sndHome := home - htHome
	sndAway := away - htAway

	switch marketType {
	case Market1:
		return home > away
	case MarketX:
		return home == away
	case Market2:
		return away > home

	case MarketOver15:
		return total > 1
	case MarketUnder15:
		return total < 2
	case MarketOver25:
		return total > 2
	case MarketUnder25:
		return total < 3
	case MarketOver35:
		return total > 3
	case MarketUnder35:
		return total < 4

	case MarketBTTSYes:
		return home > 0 && away > 0
	case MarketBTTSNo:
		return home == 0 || away == 0

	case MarketDNB1:
		return home > away
	case MarketDNB2:
		return away > home

	case MarketDC1X:
		return home >= away
	case MarketDC12:
		return home != away
	case MarketDCX2:
		return away >= home

	case MarketHT1:
		return htHome > htAway
	case MarketHTX:
		return htHome == htAway
	case MarketHT2:
		return htAway > htHome

	case MarketHTOver05:
		return htTotal > 0
	case MarketHTUnder05:
		return htTotal < 1
	case MarketHTOver15:
		return htTotal > 1
	case MarketHTUnder15:
		return htTotal < 2

	case MarketHTBTTSYes:
		return htHome > 0 && htAway > 0
	case MarketHTBTTSNo:
		return htHome == 0 || htAway == 0

	case MarketHandicap1Minus1:
		return home-1 > away
	case MarketHandicap1Minus2:
		return home-2 > away
	case MarketHandicap2Minus1:
		return home < away-1
	case MarketHandicap2Minus2:
		return home < away-2

	case MarketWinBothHalves1:
		return htHome > htAway && sndHome > sndAway
	case MarketWinBothHalves2:
		return htAway > htHome && sndAway > sndHome
	case MarketWinEitherHalf1:
		return htHome > htAway || sndHome > sndAway
	case MarketWinEitherHalf2:
		return htAway > htHome || sndAway > sndHome
	}

	return false
}

// IsPush indica se a seleção é anulada (stake neutro na agregação).
// Só DNB_1 e DNB_2 podem dar push, exatamente no empate. Handicaps na linha
// exata NÃO dão push — é regra do produto, não bug.
func IsPush(marketType string, home, away int) bool {
	switch marketType {
	case MarketDNB1, MarketDNB2:
		return home == away
	}
	return false
}
