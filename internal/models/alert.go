package models

import "time"

const (
	AlertSeverityHigh   = "high"
	AlertSeverityMedium = "medium"
)

const (
	AlertKindPortfolioDrop = "portfolio_drop"
	AlertKindPortfolioGain = "portfolio_gain"
	AlertKindCoinMovement  = "coin_movement"
)

// Alert is a transient observation about one snapshot. Alerts are
// re-derived every cycle and never persisted, so the same condition
// fires again while it holds.
type Alert struct {
	Kind     string
	Severity string

	// Symbol and Change are set for coin-level alerts only.
	Symbol string
	Change float64

	Message string
	At      time.Time
}
