package alert

import (
	"fmt"
	"math"

	"cryptofolio/internal/config"
	"cryptofolio/internal/models"
)

// Evaluate derives the alerts one snapshot warrants. Pure: the same
// snapshot and thresholds always yield the same alerts and nothing is
// remembered between calls, so a condition keeps firing on every cycle
// it still holds.
func Evaluate(snap *models.Snapshot, cfg config.AlertsConfig) []models.Alert {
	if snap == nil {
		return nil
	}

	var alerts []models.Alert

	pct := snap.TotalPnlPercentage
	if pct <= cfg.PortfolioDropThreshold {
		alerts = append(alerts, models.Alert{
			Kind:     models.AlertKindPortfolioDrop,
			Severity: models.AlertSeverityHigh,
			Message:  fmt.Sprintf("Portfolio down %.2f%%", math.Abs(pct)),
			At:       snap.Timestamp,
		})
	}
	if pct >= cfg.PortfolioGainThreshold {
		alerts = append(alerts, models.Alert{
			Kind:     models.AlertKindPortfolioGain,
			Severity: models.AlertSeverityMedium,
			Message:  fmt.Sprintf("Portfolio up %.2f%%", pct),
			At:       snap.Timestamp,
		})
	}

	for _, coin := range snap.Breakdown {
		change := coin.Change24h
		if math.Abs(change) < cfg.IndividualCoinThreshold {
			continue
		}
		direction := "dropped"
		if change > 0 {
			direction = "surged"
		}
		alerts = append(alerts, models.Alert{
			Kind:     models.AlertKindCoinMovement,
			Severity: models.AlertSeverityMedium,
			Symbol:   coin.Symbol,
			Change:   change,
			Message:  fmt.Sprintf("%s %s %.2f%% in 24h", coin.Symbol, direction, math.Abs(change)),
			At:       snap.Timestamp,
		})
	}

	return alerts
}
