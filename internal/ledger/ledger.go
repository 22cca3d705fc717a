package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cryptofolio/internal/models"
	"cryptofolio/internal/repository"
)

// DustEpsilon is the residual quantity below which a sell closes the
// holding outright, snapping quantity and invested capital to exactly 0.
const DustEpsilon = 1e-4

var (
	ErrInvalidInput         = errors.New("invalid transaction input")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrUnknownSymbolSell    = errors.New("nothing held for symbol")
)

// TransactionInput describes one buy or sell to apply.
type TransactionInput struct {
	Symbol       string
	CoinID       string
	Kind         string
	Quantity     float64
	PricePerUnit float64

	// Timestamp defaults to now when zero.
	Timestamp time.Time
}

// Service owns the in-memory portfolio for the session. All mutation and
// read-for-copy goes through mu: transaction entry and the poll cycle
// may interleave, and average-cost updates are read-modify-write.
//
// Failed ApplyTransaction calls never touch state. Persistence runs
// after the in-memory mutation and its failures only log: the session
// state stays authoritative.
type Service struct {
	Repo   repository.Repository
	Logger *zap.Logger

	mu        sync.Mutex
	portfolio *models.Portfolio
}

// Load primes the in-memory portfolio from storage. An empty store
// starts a fresh portfolio; so does a failed load (the error is returned
// for logging, but the service is usable either way).
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	s.portfolio = models.NewPortfolio(now)
	if s.Repo == nil {
		return nil
	}

	meta, holdings, err := s.Repo.LoadPortfolio(ctx)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}
	if meta != nil {
		s.portfolio.TotalInvested = meta.TotalInvested
		s.portfolio.CreatedAt = meta.CreatedAt
		s.portfolio.UpdatedAt = meta.UpdatedAt
	}
	for i := range holdings {
		h := holdings[i]
		s.portfolio.Holdings[h.Symbol] = &h
		s.portfolio.Symbols = append(s.portfolio.Symbols, h.Symbol)
	}
	return nil
}

// ApplyTransaction validates and applies one buy or sell, appends the
// immutable transaction record, and mirrors the result to storage.
func (s *Service) ApplyTransaction(ctx context.Context, input TransactionInput) (*models.Transaction, error) {
	if s == nil {
		return nil, ErrInvalidInput
	}

	symbol := strings.ToUpper(strings.TrimSpace(input.Symbol))
	coinID := strings.TrimSpace(input.CoinID)
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}
	if !models.ValidTxKind(kind) {
		return nil, fmt.Errorf("%w: kind must be %q or %q", ErrInvalidInput, models.TxKindBuy, models.TxKindSell)
	}
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidInput)
	}
	if input.PricePerUnit <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.portfolio == nil {
		s.portfolio = models.NewPortfolio(time.Now().UTC())
	}
	p := s.portfolio

	var h *models.Holding
	switch kind {
	case models.TxKindBuy:
		if p.Holding(symbol) == nil && coinID == "" {
			return nil, fmt.Errorf("%w: coin id is required for a new symbol", ErrInvalidInput)
		}
		h = p.Touch(symbol, coinID)
		cost := input.Quantity * input.PricePerUnit
		h.TotalQuantity += input.Quantity
		h.TotalInvested += cost
		h.AverageBuyPrice = h.TotalInvested / h.TotalQuantity
		p.TotalInvested += cost

	case models.TxKindSell:
		h = p.Holding(symbol)
		if h == nil || !h.Active() {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSymbolSell, symbol)
		}
		if input.Quantity > h.TotalQuantity {
			return nil, fmt.Errorf("%w: have %g %s, tried to sell %g",
				ErrInsufficientQuantity, h.TotalQuantity, symbol, input.Quantity)
		}
		reduction := h.TotalInvested * (input.Quantity / h.TotalQuantity)
		h.TotalQuantity -= input.Quantity
		h.TotalInvested -= reduction
		p.TotalInvested -= reduction
		if h.TotalQuantity <= DustEpsilon {
			// Snap dust to a clean zero, residual invested included,
			// so the portfolio total keeps matching the holding sum.
			p.TotalInvested -= h.TotalInvested
			h.TotalQuantity = 0
			h.TotalInvested = 0
		}
	}

	now := time.Now().UTC()
	h.UpdatedAt = now
	p.UpdatedAt = now

	tx := &models.Transaction{
		TxID:         uuid.NewString(),
		Symbol:       symbol,
		CoinID:       h.CoinID,
		Kind:         kind,
		Quantity:     input.Quantity,
		PricePerUnit: input.PricePerUnit,
		TotalValue:   input.Quantity * input.PricePerUnit,
		Timestamp:    ts,
	}
	s.persistLocked(ctx, h, tx)
	return tx, nil
}

// View is a read-only copy of the portfolio for engines and handlers.
type View struct {
	TotalInvested float64
	Holdings      []models.Holding
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// View returns a consistent copy of the portfolio, holdings in
// insertion order.
func (s *Service) View() View {
	if s == nil {
		return View{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.portfolio == nil {
		return View{}
	}
	return View{
		TotalInvested: s.portfolio.TotalInvested,
		Holdings:      s.portfolio.Ordered(),
		CreatedAt:     s.portfolio.CreatedAt,
		UpdatedAt:     s.portfolio.UpdatedAt,
	}
}

// ActiveHoldings returns copies of holdings that still have units, in
// insertion order.
func (s *Service) ActiveHoldings() []models.Holding {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portfolio.ActiveHoldings()
}

// Flush re-persists the whole ledger state. Mutations already persist
// themselves; this is the belt for shutdown and the emergency save path.
func (s *Service) Flush(ctx context.Context) error {
	if s == nil || s.Repo == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.portfolio == nil {
		return nil
	}
	meta := s.metaLocked()
	return s.Repo.PersistState(ctx, meta, s.portfolio.Ordered())
}

func (s *Service) metaLocked() *models.PortfolioMeta {
	return &models.PortfolioMeta{
		ID:            1,
		TotalInvested: s.portfolio.TotalInvested,
		CreatedAt:     s.portfolio.CreatedAt,
		UpdatedAt:     s.portfolio.UpdatedAt,
	}
}

func (s *Service) persistLocked(ctx context.Context, h *models.Holding, tx *models.Transaction) {
	if s.Repo == nil {
		return
	}
	hCopy := *h
	if err := s.Repo.PersistMutation(ctx, s.metaLocked(), &hCopy, tx); err != nil && s.Logger != nil {
		s.Logger.Error("failed to persist ledger mutation",
			zap.String("symbol", h.Symbol),
			zap.String("kind", tx.Kind),
			zap.Error(err))
	}
}
