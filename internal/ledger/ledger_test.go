package ledger

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"cryptofolio/internal/models"
)

func mustApply(t *testing.T, s *Service, input TransactionInput) *models.Transaction {
	t.Helper()
	tx, err := s.ApplyTransaction(context.Background(), input)
	if err != nil {
		t.Fatalf("ApplyTransaction(%+v): %v", input, err)
	}
	return tx
}

func buy(symbol, coinID string, qty, price float64) TransactionInput {
	return TransactionInput{Symbol: symbol, CoinID: coinID, Kind: models.TxKindBuy, Quantity: qty, PricePerUnit: price}
}

func sell(symbol string, qty, price float64) TransactionInput {
	return TransactionInput{Symbol: symbol, Kind: models.TxKindSell, Quantity: qty, PricePerUnit: price}
}

func holdingOf(t *testing.T, s *Service, symbol string) models.Holding {
	t.Helper()
	for _, h := range s.View().Holdings {
		if h.Symbol == symbol {
			return h
		}
	}
	t.Fatalf("holding %s not found", symbol)
	return models.Holding{}
}

func TestApplyTransaction_WeightedAverageAcrossBuys(t *testing.T) {
	s := &Service{}
	mustApply(t, s, buy("BTC", "bitcoin", 0.5, 45000))
	mustApply(t, s, buy("BTC", "bitcoin", 0.1, 50000))

	h := holdingOf(t, s, "BTC")
	if math.Abs(h.TotalQuantity-0.6) > 1e-9 {
		t.Fatalf("quantity=%v want=0.6", h.TotalQuantity)
	}
	if math.Abs(h.TotalInvested-27500) > 1e-6 {
		t.Fatalf("invested=%v want=27500", h.TotalInvested)
	}
	if math.Abs(h.AverageBuyPrice-27500.0/0.6) > 0.01 {
		t.Fatalf("avg=%v want=%v", h.AverageBuyPrice, 27500.0/0.6)
	}
	if math.Abs(h.AverageBuyPrice*h.TotalQuantity-h.TotalInvested) > 1e-6*h.TotalInvested {
		t.Fatalf("avg*qty=%v invested=%v", h.AverageBuyPrice*h.TotalQuantity, h.TotalInvested)
	}
	if got := s.View().TotalInvested; math.Abs(got-27500) > 1e-6 {
		t.Fatalf("portfolio invested=%v want=27500", got)
	}
}

func TestApplyTransaction_PartialSellReducesProportionally(t *testing.T) {
	s := &Service{}
	mustApply(t, s, buy("ETH", "ethereum", 2.0, 3000))

	tx := mustApply(t, s, sell("ETH", 0.5, 4000))
	if tx.Kind != models.TxKindSell || math.Abs(tx.TotalValue-2000) > 1e-9 {
		t.Fatalf("tx=%+v want sell with total 2000", tx)
	}

	h := holdingOf(t, s, "ETH")
	if math.Abs(h.TotalQuantity-1.5) > 1e-9 {
		t.Fatalf("quantity=%v want=1.5", h.TotalQuantity)
	}
	if math.Abs(h.TotalInvested-4500) > 1e-9 {
		t.Fatalf("invested=%v want=4500", h.TotalInvested)
	}
	// The average never moves on a sell; the sale price only affects P&L.
	if math.Abs(h.AverageBuyPrice-3000) > 1e-9 {
		t.Fatalf("avg=%v want=3000", h.AverageBuyPrice)
	}
	if got := s.View().TotalInvested; math.Abs(got-4500) > 1e-9 {
		t.Fatalf("portfolio invested=%v want=4500", got)
	}
}

func TestApplyTransaction_FullSellZeroesHolding(t *testing.T) {
	s := &Service{}
	mustApply(t, s, buy("SOL", "solana", 10, 150))
	mustApply(t, s, sell("SOL", 10, 200))

	h := holdingOf(t, s, "SOL")
	if h.TotalQuantity != 0 || h.TotalInvested != 0 {
		t.Fatalf("holding not zeroed: qty=%v invested=%v", h.TotalQuantity, h.TotalInvested)
	}
	if h.Active() {
		t.Fatalf("holding should be inactive after full sell")
	}
	if got := s.View().TotalInvested; got != 0 {
		t.Fatalf("portfolio invested=%v want=0", got)
	}

	// The symbol is still tracked, but selling from it again is an error.
	if _, err := s.ApplyTransaction(context.Background(), sell("SOL", 1, 200)); !errors.Is(err, ErrUnknownSymbolSell) {
		t.Fatalf("err=%v want ErrUnknownSymbolSell", err)
	}

	// Buying again re-opens the position; the original coin id sticks.
	mustApply(t, s, buy("SOL", "some-other-id", 2, 100))
	h = holdingOf(t, s, "SOL")
	if h.CoinID != "solana" {
		t.Fatalf("coin id changed to %q", h.CoinID)
	}
	if math.Abs(h.AverageBuyPrice-100) > 1e-9 {
		t.Fatalf("avg=%v want=100 after re-open", h.AverageBuyPrice)
	}
}

func TestApplyTransaction_DustResidueSnapsToZero(t *testing.T) {
	s := &Service{}
	mustApply(t, s, buy("BTC", "bitcoin", 1.0, 45000))
	mustApply(t, s, sell("BTC", 0.99995, 46000))

	h := holdingOf(t, s, "BTC")
	if h.TotalQuantity != 0 {
		t.Fatalf("quantity=%v want exactly 0", h.TotalQuantity)
	}
	if h.TotalInvested != 0 {
		t.Fatalf("invested=%v want exactly 0", h.TotalInvested)
	}
	if got := s.View().TotalInvested; got != 0 {
		t.Fatalf("portfolio invested=%v want exactly 0", got)
	}
}

func TestApplyTransaction_InvalidInputIsNoOp(t *testing.T) {
	s := &Service{}
	mustApply(t, s, buy("ADA", "cardano", 1000, 0.5))
	before := s.View()

	cases := []struct {
		name  string
		input TransactionInput
	}{
		{"zero quantity", buy("ADA", "cardano", 0, 1)},
		{"negative quantity", buy("ADA", "cardano", -5, 1)},
		{"zero price", buy("ADA", "cardano", 1, 0)},
		{"negative price", buy("ADA", "cardano", 1, -3)},
		{"unknown kind", TransactionInput{Symbol: "ADA", CoinID: "cardano", Kind: "hodl", Quantity: 1, PricePerUnit: 1}},
		{"empty symbol", TransactionInput{Kind: models.TxKindBuy, Quantity: 1, PricePerUnit: 1}},
		{"new symbol without coin id", buy("DOT", "", 1, 7)},
	}
	for _, tc := range cases {
		_, err := s.ApplyTransaction(context.Background(), tc.input)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: err=%v want ErrInvalidInput", tc.name, err)
		}
		if after := s.View(); !reflect.DeepEqual(before, after) {
			t.Fatalf("%s: state changed on failed input", tc.name)
		}
	}
}

func TestApplyTransaction_SellMoreThanHeldIsNoOp(t *testing.T) {
	s := &Service{}
	mustApply(t, s, buy("ETH", "ethereum", 1, 3000))
	before := s.View()

	_, err := s.ApplyTransaction(context.Background(), sell("ETH", 2, 3000))
	if !errors.Is(err, ErrInsufficientQuantity) {
		t.Fatalf("err=%v want ErrInsufficientQuantity", err)
	}
	if after := s.View(); !reflect.DeepEqual(before, after) {
		t.Fatalf("state changed on failed sell")
	}
}

func TestApplyTransaction_SellUnknownSymbol(t *testing.T) {
	s := &Service{}
	_, err := s.ApplyTransaction(context.Background(), sell("XRP", 1, 1))
	if !errors.Is(err, ErrUnknownSymbolSell) {
		t.Fatalf("err=%v want ErrUnknownSymbolSell", err)
	}
}

func TestApplyTransaction_NormalizesSymbolAndKind(t *testing.T) {
	s := &Service{}
	tx := mustApply(t, s, TransactionInput{
		Symbol: " btc ", CoinID: "bitcoin", Kind: "BUY", Quantity: 1, PricePerUnit: 100,
	})
	if tx.Symbol != "BTC" || tx.Kind != models.TxKindBuy {
		t.Fatalf("tx=%+v want normalized BTC/buy", tx)
	}
	if tx.TxID == "" {
		t.Fatalf("transaction id not assigned")
	}
	h := holdingOf(t, s, "BTC")
	if h.Symbol != "BTC" {
		t.Fatalf("holding symbol=%q", h.Symbol)
	}
}

func TestViewKeepsInsertionOrder(t *testing.T) {
	s := &Service{}
	mustApply(t, s, buy("BTC", "bitcoin", 1, 100))
	mustApply(t, s, buy("ETH", "ethereum", 1, 100))
	mustApply(t, s, buy("SOL", "solana", 1, 100))
	mustApply(t, s, buy("ETH", "ethereum", 1, 100))

	var symbols []string
	for _, h := range s.View().Holdings {
		symbols = append(symbols, h.Symbol)
	}
	want := []string{"BTC", "ETH", "SOL"}
	if !reflect.DeepEqual(symbols, want) {
		t.Fatalf("order=%v want=%v", symbols, want)
	}

	// Fully sold symbols stay in order; ActiveHoldings filters them.
	mustApply(t, s, sell("ETH", 2, 100))
	var active []string
	for _, h := range s.ActiveHoldings() {
		active = append(active, h.Symbol)
	}
	if !reflect.DeepEqual(active, []string{"BTC", "SOL"}) {
		t.Fatalf("active=%v want=[BTC SOL]", active)
	}
}
