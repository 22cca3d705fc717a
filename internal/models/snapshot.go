package models

import (
	"time"

	"gorm.io/datatypes"
)

// CoinPerformance is one holding's valuation inside a snapshot breakdown.
type CoinPerformance struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	AvgBuyPrice   float64 `json:"avg_buy_price"`
	CurrentPrice  float64 `json:"current_price"`
	InvestedValue float64 `json:"invested_value"`
	CurrentValue  float64 `json:"current_value"`
	UnrealizedPnl float64 `json:"unrealized_pnl"`
	PnlPercentage float64 `json:"pnl_percentage"`
	Change24h     float64 `json:"change_24h"`
	Allocation    float64 `json:"allocation"`
}

// Snapshot is one performance observation over the active holdings.
// Breakdown entries follow holding insertion order; presentation layers
// may re-sort their own copies.
type Snapshot struct {
	Timestamp time.Time

	TotalInvested      float64
	TotalCurrentValue  float64
	TotalUnrealizedPnl float64
	TotalPnlPercentage float64

	HoldingCount int
	Breakdown    []CoinPerformance
}

// SnapshotRecord is the storage row for a Snapshot; the breakdown is
// carried as a JSON document column.
type SnapshotRecord struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"not null;index"`

	TotalInvested      float64 `gorm:"not null"`
	TotalCurrentValue  float64 `gorm:"not null"`
	TotalUnrealizedPnl float64 `gorm:"column:total_unrealized_pnl;not null"`
	TotalPnlPercentage float64 `gorm:"column:total_pnl_percentage;not null"`

	HoldingCount int            `gorm:"not null"`
	Breakdown    datatypes.JSON `gorm:"column:breakdown"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (SnapshotRecord) TableName() string {
	return "snapshots"
}
