package models

import "time"

const (
	TxKindBuy  = "buy"
	TxKindSell = "sell"
)

// Transaction is one immutable ledger entry. Rows are append-only:
// nothing updates or deletes them once written.
type Transaction struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	TxID   string `gorm:"type:varchar(36);not null;uniqueIndex"`
	Symbol string `gorm:"type:varchar(20);not null;index"`
	CoinID string `gorm:"type:varchar(100);not null"`
	Kind   string `gorm:"type:varchar(10);not null"`

	Quantity     float64 `gorm:"not null"`
	PricePerUnit float64 `gorm:"not null"`
	TotalValue   float64 `gorm:"not null"`

	Timestamp time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// ValidTxKind reports whether kind names a supported transaction type.
func ValidTxKind(kind string) bool {
	return kind == TxKindBuy || kind == TxKindSell
}
