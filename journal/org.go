package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/bookkeeper/internal/id"
)

// FormatAssetOrg renders an asset snapshot as an Org-mode heading with the
// figures in a PROPERTIES drawer.
func FormatAssetOrg(a AssetRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Asset: %s %08x (%s)\n", a.TradingDay, a.HolderUID, shortID(a.ID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":ID: %s\n", a.ID)
	fmt.Fprintf(&b, ":TIME: %s\n", rowTime(a.ID))
	fmt.Fprintf(&b, ":LEDGER: %s\n", a.LedgerCategory)
	fmt.Fprintf(&b, ":STATIC_EQUITY: %s\n", money(a.StaticEquity))
	fmt.Fprintf(&b, ":DYNAMIC_EQUITY: %s\n", money(a.DynamicEquity))
	fmt.Fprintf(&b, ":AVAIL: %s\n", money(a.Avail))
	fmt.Fprintf(&b, ":MARGIN: %s\n", money(a.Margin))
	fmt.Fprintf(&b, ":MARKET_VALUE: %s\n", money(a.MarketValue))
	fmt.Fprintf(&b, ":UNREALIZED_PNL: %s\n", money(a.UnrealizedPnl))
	fmt.Fprintf(&b, ":REALIZED_PNL: %s\n", money(a.RealizedPnl))
	b.WriteString(":END:\n")
	return b.String()
}

// FormatPositionsOrg renders position snapshots as one Org table.
func FormatPositionsOrg(rows []PositionRow) string {
	var b strings.Builder
	b.WriteString("| instrument | exchange | direction | volume | yd | avg open | last | margin | pnl |\n")
	b.WriteString("|-\n")
	for _, p := range rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			p.InstrumentID, p.ExchangeID, p.Direction,
			qty(p.Volume), qty(p.YesterdayVolume), qty(p.AvgOpenPrice), qty(p.LastPrice),
			money(p.Margin), money(p.UnrealizedPnl))
	}
	var total decimal.Decimal
	for _, p := range rows {
		total = total.Add(decimal.NewFromFloat(p.UnrealizedPnl))
	}
	b.WriteString("|-\n")
	fmt.Fprintf(&b, "| total | | | | | | | | %s |\n", total.StringFixed(2))
	return b.String()
}

// FormatAssetsOrg renders multiple snapshots separated by blank lines.
func FormatAssetsOrg(rows []AssetRow) string {
	var b strings.Builder
	for i, a := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatAssetOrg(a))
	}
	return b.String()
}

func rowTime(rowID string) string {
	t, err := id.Time(rowID)
	if err != nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
