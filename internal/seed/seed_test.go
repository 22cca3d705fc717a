package seed

import (
	"context"
	"math"
	"testing"

	"cryptofolio/internal/ledger"
)

func TestDemo_SeedsSamplePortfolio(t *testing.T) {
	svc := &ledger.Service{}
	if err := Demo(context.Background(), svc, nil); err != nil {
		t.Fatalf("Demo: %v", err)
	}

	view := svc.View()
	if len(view.Holdings) != 4 {
		t.Fatalf("holdings=%d want 4", len(view.Holdings))
	}
	if math.Abs(view.TotalInvested-35500) > 1e-9 {
		t.Fatalf("total invested=%v want 35500", view.TotalInvested)
	}

	bySymbol := map[string]float64{}
	for _, h := range view.Holdings {
		bySymbol[h.Symbol] = h.TotalInvested
	}
	for sym, want := range map[string]float64{
		"BTC": 27500,
		"ETH": 6000,
		"SOL": 1500,
		"ADA": 500,
	} {
		if math.Abs(bySymbol[sym]-want) > 1e-9 {
			t.Fatalf("%s invested=%v want %v", sym, bySymbol[sym], want)
		}
	}

	// The two BTC buys blend into one weighted average position.
	for _, h := range view.Holdings {
		if h.Symbol != "BTC" {
			continue
		}
		if math.Abs(h.TotalQuantity-0.6) > 1e-9 {
			t.Fatalf("btc quantity=%v want 0.6", h.TotalQuantity)
		}
		if math.Abs(h.AverageBuyPrice-27500.0/0.6) > 1e-6 {
			t.Fatalf("btc avg=%v want %v", h.AverageBuyPrice, 27500.0/0.6)
		}
		if h.CoinID != "bitcoin" {
			t.Fatalf("btc coin id=%q", h.CoinID)
		}
	}
}

func TestDemo_InsertionOrder(t *testing.T) {
	svc := &ledger.Service{}
	if err := Demo(context.Background(), svc, nil); err != nil {
		t.Fatalf("Demo: %v", err)
	}

	want := []string{"BTC", "ETH", "SOL", "ADA"}
	holdings := svc.View().Holdings
	for i, h := range holdings {
		if h.Symbol != want[i] {
			t.Fatalf("holdings[%d]=%s want %s", i, h.Symbol, want[i])
		}
	}
}
