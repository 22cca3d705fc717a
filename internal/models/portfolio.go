package models

import "time"

// Portfolio is the in-memory aggregate the ledger mutates. It is loaded
// once at startup and stays authoritative for the session; persistence
// mirrors it after each successful mutation.
type Portfolio struct {
	TotalInvested float64

	// Holdings is keyed by symbol; Symbols keeps first-touch insertion
	// order, which drives snapshot breakdown ordering.
	Holdings map[string]*Holding
	Symbols  []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewPortfolio(now time.Time) *Portfolio {
	return &Portfolio{
		Holdings:  make(map[string]*Holding),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Holding returns the tracked holding for symbol, or nil.
func (p *Portfolio) Holding(symbol string) *Holding {
	if p == nil {
		return nil
	}
	return p.Holdings[symbol]
}

// Touch returns the holding for symbol, creating a zero holding bound to
// coinID on first reference. The coin id never changes afterward.
func (p *Portfolio) Touch(symbol, coinID string) *Holding {
	if h, ok := p.Holdings[symbol]; ok {
		return h
	}
	h := &Holding{Symbol: symbol, CoinID: coinID}
	p.Holdings[symbol] = h
	p.Symbols = append(p.Symbols, symbol)
	return h
}

// Ordered returns value copies of all holdings in insertion order.
func (p *Portfolio) Ordered() []Holding {
	if p == nil {
		return nil
	}
	out := make([]Holding, 0, len(p.Symbols))
	for _, sym := range p.Symbols {
		if h := p.Holdings[sym]; h != nil {
			out = append(out, *h)
		}
	}
	return out
}

// ActiveHoldings returns value copies of holdings with units on the
// books, in insertion order.
func (p *Portfolio) ActiveHoldings() []Holding {
	if p == nil {
		return nil
	}
	out := make([]Holding, 0, len(p.Symbols))
	for _, sym := range p.Symbols {
		if h := p.Holdings[sym]; h != nil && h.Active() {
			out = append(out, *h)
		}
	}
	return out
}

// PortfolioMeta is the single-row portfolio header mirrored to storage.
type PortfolioMeta struct {
	ID            uint64  `gorm:"primaryKey"`
	TotalInvested float64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (PortfolioMeta) TableName() string {
	return "portfolio_meta"
}
