package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"cryptofolio/internal/models"
)

// Exporter dumps the latest snapshot breakdown to a timestamped CSV
// under Dir. Files are standalone reports; nothing reads them back.
type Exporter struct {
	Dir    string
	Logger *zap.Logger
}

var csvHeader = []string{
	"timestamp", "symbol", "quantity", "avg_buy_price", "current_price",
	"invested_value", "current_value", "unrealized_pnl", "pnl_percentage",
	"price_change_24h", "allocation_percentage",
}

// Export writes one CSV file and returns its path. A nil snapshot still
// produces a header-only file.
func (e *Exporter) Export(snap *models.Snapshot) (string, error) {
	dir := "exports"
	if e != nil && e.Dir != "" {
		dir = e.Dir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	name := fmt.Sprintf("portfolio_performance_%s.csv", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	w := csv.NewWriter(f)
	err = writeRows(w, snap)
	w.Flush()
	if err == nil {
		err = w.Error()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("write export file: %w", err)
	}
	if e != nil && e.Logger != nil {
		e.Logger.Info("performance exported", zap.String("path", path))
	}
	return path, nil
}

func writeRows(w *csv.Writer, snap *models.Snapshot) error {
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	if snap == nil {
		return nil
	}
	ts := snap.Timestamp.UTC().Format(time.RFC3339)
	for _, row := range snap.Breakdown {
		record := []string{
			ts,
			row.Symbol,
			num(row.Quantity),
			num(row.AvgBuyPrice),
			num(row.CurrentPrice),
			num(row.InvestedValue),
			num(row.CurrentValue),
			num(row.UnrealizedPnl),
			num(row.PnlPercentage),
			num(row.Change24h),
			num(row.Allocation),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// num renders a value with the shortest decimal form that round-trips,
// so spreadsheets see 0.5 rather than 0.500000.
func num(v float64) string {
	return decimal.NewFromFloat(v).String()
}
