package settlement

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/sportsbook-poc/internal/sportsbook/repo"
)

// WalletRepo é o contrato de carteira consumido pelo payout.
type WalletRepo interface {
	CreditPayout(ctx context.Context, userID string, amount int64, externalRef, betID string) error
}

// PayoutApplier aplica o efeito financeiro do status final de uma aposta.
// WON credita o potential win; PUSH devolve o stake; LOST não mexe em
// saldo, o stake já foi debitado na criação da aposta.
// Os créditos são idempotentes por aposta via external_ref no ledger.
type PayoutApplier struct {
	Log    *zap.Logger
	Wallet WalletRepo
}

func NewPayoutApplier(log *zap.Logger, w WalletRepo) *PayoutApplier {
	return &PayoutApplier{Log: log, Wallet: w}
}

// Apply retorna o valor creditado em centavos (0 para LOST).
func (p *PayoutApplier) Apply(ctx context.Context, bet *repo.Bet, status string) (int64, error) {
	switch status {
	case repo.BetStatusWon:
		if err := p.Wallet.CreditPayout(ctx, bet.UserID, bet.PotentialWinCents, "bet-win:"+bet.ID, bet.ID); err != nil {
			return 0, err
		}
		return bet.PotentialWinCents, nil

	case repo.BetStatusPush:
		if err := p.Wallet.CreditPayout(ctx, bet.UserID, bet.StakeCents, "bet-push:"+bet.ID, bet.ID); err != nil {
			return 0, err
		}
		return bet.StakeCents, nil
	}

	return 0, nil
}
