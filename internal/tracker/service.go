package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"cryptofolio/internal/alert"
	"cryptofolio/internal/client/coingecko"
	"cryptofolio/internal/config"
	"cryptofolio/internal/export"
	"cryptofolio/internal/history"
	"cryptofolio/internal/ledger"
	"cryptofolio/internal/models"
	"cryptofolio/internal/performance"
	"cryptofolio/internal/render"
)

// ErrCyclePanic marks a cycle that blew up unexpectedly. State has
// already been flushed by the time the caller sees it; the caller
// decides whether to keep the process alive.
var ErrCyclePanic = errors.New("tracker cycle panicked")

// PriceSource supplies one cycle's quotes. The CoinGecko client
// satisfies it.
type PriceSource interface {
	SimplePrice(ctx context.Context, ids []string, vsCurrency string) (map[string]coingecko.PriceEntry, error)
}

// Service runs the poll cycle: fetch quotes, compute the snapshot,
// append history, evaluate alerts, render the report. Fetch failures
// are recoverable; the scheduler simply tries again next tick.
type Service struct {
	Ledger   *ledger.Service
	Prices   PriceSource
	History  *history.Store
	Exporter *export.Exporter
	Renderer *render.Renderer
	Logger   *zap.Logger

	Currency     string
	FetchTimeout time.Duration
	Alerts       config.AlertsConfig
}

// CycleResult reports what one cycle saw and produced.
type CycleResult struct {
	ActiveHoldings int
	Quoted         int
	Skipped        []string
	Snapshot       *models.Snapshot
	Alerts         []models.Alert
}

// RunCycle executes one poll cycle. A nil snapshot (empty portfolio or
// no usable quotes) renders the no-data notice and is not an error. A
// panic inside the cycle flushes ledger state and comes back as
// ErrCyclePanic.
func (s *Service) RunCycle(ctx context.Context) (result CycleResult, err error) {
	if s == nil || s.Ledger == nil {
		return CycleResult{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			if s.Logger != nil {
				s.Logger.Error("tracker cycle panicked", zap.Any("panic", r), zap.Stack("stack"))
			}
			s.EmergencyFlush(context.Background())
			err = ErrCyclePanic
		}
	}()

	view := s.Ledger.View()
	active := make([]models.Holding, 0, len(view.Holdings))
	for _, h := range view.Holdings {
		if h.Active() {
			active = append(active, h)
		}
	}
	result.ActiveHoldings = len(active)

	quotes := map[string]models.PriceQuote{}
	if len(active) > 0 && s.Prices != nil {
		ids := coinIDs(active)
		fetchCtx, cancel := context.WithTimeout(ctx, s.fetchTimeout())
		entries, ferr := s.Prices.SimplePrice(fetchCtx, ids, s.Currency)
		cancel()
		if ferr != nil {
			return result, fmt.Errorf("fetch prices: %w", ferr)
		}
		for _, h := range active {
			if entry, ok := entries[h.CoinID]; ok {
				quotes[h.Symbol] = models.PriceQuote{Price: entry.Price, Change24h: entry.Change24h}
			}
		}
	}
	result.Quoted = len(quotes)

	now := time.Now().UTC()
	snap, skipped := performance.ComputeSnapshot(active, view.TotalInvested, quotes, now)
	result.Skipped = skipped
	result.Snapshot = snap

	if snap == nil {
		if s.Renderer != nil {
			s.Renderer.Summary(nil)
		}
		if s.Logger != nil {
			s.Logger.Info("no performance data this cycle",
				zap.Int("active_holdings", len(active)),
				zap.Strings("skipped", skipped))
		}
		return result, nil
	}

	if s.History != nil {
		s.History.Append(ctx, snap)
	}
	result.Alerts = alert.Evaluate(snap, s.Alerts)
	if s.Renderer != nil {
		s.Renderer.Report(snap, result.Alerts)
	}

	if s.Logger != nil {
		s.Logger.Info("cycle complete",
			zap.Int("active_holdings", result.ActiveHoldings),
			zap.Int("quoted", result.Quoted),
			zap.Strings("skipped", skipped),
			zap.Int("alerts", len(result.Alerts)),
			zap.Float64("total_value", snap.TotalCurrentValue))
	}
	return result, nil
}

// ExportLatest writes the newest snapshot to CSV. With no history yet
// the file still gets its header row.
func (s *Service) ExportLatest() (string, error) {
	if s == nil || s.Exporter == nil {
		return "", errors.New("exporter not configured")
	}
	var snap *models.Snapshot
	if s.History != nil {
		snap = s.History.Latest()
	}
	return s.Exporter.Export(snap)
}

// EmergencyFlush re-persists the ledger after an unexpected failure so
// an exit right after loses nothing. History rows are already mirrored
// per append.
func (s *Service) EmergencyFlush(ctx context.Context) {
	if s == nil || s.Ledger == nil {
		return
	}
	if err := s.Ledger.Flush(ctx); err != nil && s.Logger != nil {
		s.Logger.Error("emergency ledger flush failed", zap.Error(err))
	}
}

func (s *Service) fetchTimeout() time.Duration {
	if s.FetchTimeout > 0 {
		return s.FetchTimeout
	}
	return 10 * time.Second
}

// coinIDs collects the quote ids for the active holdings, first
// occurrence wins.
func coinIDs(holdings []models.Holding) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if h.CoinID == "" {
			continue
		}
		if _, ok := seen[h.CoinID]; ok {
			continue
		}
		seen[h.CoinID] = struct{}{}
		out = append(out, h.CoinID)
	}
	return out
}
