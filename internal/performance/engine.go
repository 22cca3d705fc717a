package performance

import (
	"time"

	"cryptofolio/internal/models"
)

// ComputeSnapshot derives one performance observation from the ledger's
// holdings and a price pass. Pure: no clock and no I/O; now becomes the
// snapshot timestamp.
//
// Active holdings without a usable quote are skipped, not zero-filled:
// they stay out of the breakdown and out of totalCurrentValue. The
// returned slice names them so the caller can log the gap.
//
// totalInvested is the ledger's portfolio total, not a breakdown sum. It
// deliberately covers skipped symbols too, so the P&L percentage keeps
// measuring against all invested capital.
//
// Returns nil when no active holding could be valued.
func ComputeSnapshot(holdings []models.Holding, totalInvested float64, quotes map[string]models.PriceQuote, now time.Time) (*models.Snapshot, []string) {
	var (
		breakdown         []models.CoinPerformance
		totalCurrentValue float64
		skipped           []string
	)

	for _, h := range holdings {
		if !h.Active() {
			continue
		}
		quote, ok := quotes[h.Symbol]
		if !ok {
			skipped = append(skipped, h.Symbol)
			continue
		}

		currentValue := h.TotalQuantity * quote.Price
		pnl := currentValue - h.TotalInvested
		pnlPct := 0.0
		if h.TotalInvested > 0 {
			pnlPct = pnl / h.TotalInvested * 100
		}

		breakdown = append(breakdown, models.CoinPerformance{
			Symbol:        h.Symbol,
			Quantity:      h.TotalQuantity,
			AvgBuyPrice:   h.AverageBuyPrice,
			CurrentPrice:  quote.Price,
			InvestedValue: h.TotalInvested,
			CurrentValue:  currentValue,
			UnrealizedPnl: pnl,
			PnlPercentage: pnlPct,
			Change24h:     quote.Change24h,
		})
		totalCurrentValue += currentValue
	}

	if len(breakdown) == 0 {
		return nil, skipped
	}

	if totalCurrentValue > 0 {
		for i := range breakdown {
			breakdown[i].Allocation = breakdown[i].CurrentValue / totalCurrentValue * 100
		}
	}

	totalPnl := totalCurrentValue - totalInvested
	totalPnlPct := 0.0
	if totalInvested > 0 {
		totalPnlPct = totalPnl / totalInvested * 100
	}

	return &models.Snapshot{
		Timestamp:          now,
		TotalInvested:      totalInvested,
		TotalCurrentValue:  totalCurrentValue,
		TotalUnrealizedPnl: totalPnl,
		TotalPnlPercentage: totalPnlPct,
		HoldingCount:       len(breakdown),
		Breakdown:          breakdown,
	}, skipped
}
