package render

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/models"
)

// Renderer prints the cycle report. It owns stdout; log output goes to
// stderr so the report stays readable when both are on a terminal.
type Renderer struct {
	Out io.Writer
}

// Report prints the full cycle output: summary, holdings table,
// allocation chart, then any alerts.
func (r *Renderer) Report(snap *models.Snapshot, alerts []models.Alert) {
	r.Summary(snap)
	r.AllocationChart(snap)
	r.Alerts(alerts)
}

// Summary prints the portfolio totals and the per-holding table.
func (r *Renderer) Summary(snap *models.Snapshot) {
	w := r.writer()
	if snap == nil {
		fmt.Fprintln(w, "No performance data to display")
		return
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 80))
	fmt.Fprintln(w, "CRYPTO PORTFOLIO PERFORMANCE TRACKER")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Last Updated: %s\n", snap.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Total Holdings: %d cryptocurrencies\n", snap.HoldingCount)

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintln(w, "OVERALL PORTFOLIO PERFORMANCE")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Total Invested:      $%s\n", money(snap.TotalInvested, 2))
	fmt.Fprintf(w, "Current Value:       $%s\n", money(snap.TotalCurrentValue, 2))

	tag := "PROFIT"
	if snap.TotalUnrealizedPnl < 0 {
		tag = "LOSS"
	}
	fmt.Fprintf(w, "Unrealized P&L:      $%s (%+.2f%%) [%s]\n",
		money(snap.TotalUnrealizedPnl, 2), snap.TotalPnlPercentage, tag)

	if len(snap.Breakdown) == 0 {
		fmt.Fprintln(w, "\nNo active holdings to display")
		return
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 120))
	fmt.Fprintln(w, "INDIVIDUAL HOLDINGS BREAKDOWN")
	fmt.Fprintln(w, strings.Repeat("=", 120))
	fmt.Fprintf(w, "%-8s %-12s %-10s %-10s %-12s %-12s %-8s %-8s %-8s\n",
		"Symbol", "Quantity", "Avg Buy", "Current", "Value", "P&L", "P&L %", "24h %", "Alloc %")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for _, h := range byAllocation(snap.Breakdown) {
		sign := ""
		if h.UnrealizedPnl >= 0 {
			sign = "+"
		}
		fmt.Fprintf(w, "%-8s %-12.4f $%-9.2f $%-9.2f $%-11.2f %s$%-11.2f %+7.2f%% %+7.2f%% %7.2f%%\n",
			h.Symbol, h.Quantity, h.AvgBuyPrice, h.CurrentPrice, h.CurrentValue,
			sign, h.UnrealizedPnl, h.PnlPercentage, h.Change24h, h.Allocation)
	}
	fmt.Fprintln(w, strings.Repeat("-", 120))
}

// AllocationChart prints a bar per holding, two percent per character,
// capped at fifty characters and never shorter than one.
func (r *Renderer) AllocationChart(snap *models.Snapshot) {
	if snap == nil || len(snap.Breakdown) == 0 {
		return
	}
	w := r.writer()

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 50))
	fmt.Fprintln(w, "PORTFOLIO ALLOCATION")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	for _, h := range byAllocation(snap.Breakdown) {
		filled := int(h.Allocation / 2)
		if filled < 1 {
			filled = 1
		}
		if filled > 50 {
			filled = 50
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", 50-filled)
		fmt.Fprintf(w, "%-8s %6.2f%% |%s| $%s\n", h.Symbol, h.Allocation, bar, money(h.CurrentValue, 0))
	}
}

// Alerts prints the alert block, or nothing when the cycle was quiet.
func (r *Renderer) Alerts(alerts []models.Alert) {
	if len(alerts) == 0 {
		return
	}
	w := r.writer()

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("!", 60))
	fmt.Fprintln(w, "PORTFOLIO ALERTS")
	fmt.Fprintln(w, strings.Repeat("!", 60))
	for _, a := range alerts {
		fmt.Fprintf(w, "[%s] %s\n", strings.ToUpper(a.Severity), a.Message)
	}
	fmt.Fprintln(w, strings.Repeat("!", 60))
}

func (r *Renderer) writer() io.Writer {
	if r != nil && r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

// byAllocation sorts a copy of the breakdown, largest allocation first.
// The snapshot itself keeps holding insertion order.
func byAllocation(breakdown []models.CoinPerformance) []models.CoinPerformance {
	out := make([]models.CoinPerformance, len(breakdown))
	copy(out, breakdown)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Allocation > out[j].Allocation
	})
	return out
}

// money renders a fixed-point amount with thousands separators.
func money(v float64, places int32) string {
	s := decimal.NewFromFloat(v).StringFixed(places)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	b.WriteString(frac)
	return b.String()
}
