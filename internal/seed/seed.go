package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"cryptofolio/internal/ledger"
	"cryptofolio/internal/models"
)

// Demo loads the sample portfolio used by demo mode: four coins across
// five buys, including a second BTC purchase that moves the average.
func Demo(ctx context.Context, svc *ledger.Service, logger *zap.Logger) error {
	buys := []ledger.TransactionInput{
		{Symbol: "BTC", CoinID: "bitcoin", Kind: models.TxKindBuy, Quantity: 0.5, PricePerUnit: 45000},
		{Symbol: "ETH", CoinID: "ethereum", Kind: models.TxKindBuy, Quantity: 2.0, PricePerUnit: 3000},
		{Symbol: "SOL", CoinID: "solana", Kind: models.TxKindBuy, Quantity: 10.0, PricePerUnit: 150},
		{Symbol: "ADA", CoinID: "cardano", Kind: models.TxKindBuy, Quantity: 1000.0, PricePerUnit: 0.50},
		{Symbol: "BTC", CoinID: "bitcoin", Kind: models.TxKindBuy, Quantity: 0.1, PricePerUnit: 50000},
	}
	for _, in := range buys {
		if _, err := svc.ApplyTransaction(ctx, in); err != nil {
			return fmt.Errorf("seed %s: %w", in.Symbol, err)
		}
	}
	if logger != nil {
		view := svc.View()
		logger.Info("demo portfolio created",
			zap.Int("holdings", len(view.Holdings)),
			zap.Float64("total_invested", view.TotalInvested))
	}
	return nil
}
