package models

import "time"

// Holding is one coin position carried at weighted-average cost.
type Holding struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	Symbol string `gorm:"type:varchar(20);not null;uniqueIndex"`
	CoinID string `gorm:"type:varchar(100);not null"`

	TotalQuantity   float64 `gorm:"not null;default:0"`
	AverageBuyPrice float64 `gorm:"not null;default:0"`
	TotalInvested   float64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Holding) TableName() string {
	return "holdings"
}

// Active reports whether the holding still has units on the books.
// Fully sold holdings stay in the portfolio with zeroed totals.
func (h Holding) Active() bool {
	return h.TotalQuantity > 0
}
