package journal

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// CSVJournal appends snapshots to two CSV files.
type CSVJournal struct {
	assets    *csv.Writer
	positions *csv.Writer
	af, pf    *os.File
}

var (
	assetHeader = []string{"id", "trading_day", "update_time", "holder_uid", "ledger_category", "source_id", "account_id", "client_id",
		"static_equity", "dynamic_equity", "avail", "margin", "market_value", "frozen_cash", "unrealized_pnl", "realized_pnl"}
	positionHeader = []string{"id", "trading_day", "update_time", "holder_uid", "instrument_id", "exchange_id", "direction",
		"volume", "yesterday_volume", "frozen_total", "last_price", "avg_open_price", "margin", "market_value",
		"position_pnl", "unrealized_pnl", "realized_pnl"}
)

func NewCSV(assetsPath, positionsPath string) (*CSVJournal, error) {
	af, err := os.Create(assetsPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Create(positionsPath)
	if err != nil {
		_ = af.Close()
		return nil, err
	}

	j := &CSVJournal{assets: csv.NewWriter(af), positions: csv.NewWriter(pf), af: af, pf: pf}
	if err := j.write(j.assets, assetHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	if err := j.write(j.positions, positionHeader); err != nil {
		_ = j.Close()
		return nil, err
	}
	return j, nil
}

func (j *CSVJournal) write(w *csv.Writer, row []string) error {
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func (j *CSVJournal) RecordAsset(a AssetRow) error {
	return j.write(j.assets, []string{
		a.ID,
		a.TradingDay,
		strconv.FormatInt(a.UpdateTime, 10),
		strconv.FormatUint(uint64(a.HolderUID), 10),
		a.LedgerCategory.String(),
		a.SourceID,
		a.AccountID,
		a.ClientID,
		money(a.StaticEquity),
		money(a.DynamicEquity),
		money(a.Avail),
		money(a.Margin),
		money(a.MarketValue),
		money(a.FrozenCash),
		money(a.UnrealizedPnl),
		money(a.RealizedPnl),
	})
}

func (j *CSVJournal) RecordPosition(p PositionRow) error {
	return j.write(j.positions, []string{
		p.ID,
		p.TradingDay,
		strconv.FormatInt(p.UpdateTime, 10),
		strconv.FormatUint(uint64(p.HolderUID), 10),
		p.InstrumentID,
		p.ExchangeID,
		p.Direction.String(),
		qty(p.Volume),
		qty(p.YesterdayVolume),
		qty(p.FrozenTotal),
		qty(p.LastPrice),
		qty(p.AvgOpenPrice),
		money(p.Margin),
		money(p.MarketValue),
		money(p.PositionPnl),
		money(p.UnrealizedPnl),
		money(p.RealizedPnl),
	})
}

func (j *CSVJournal) Close() error {
	j.assets.Flush()
	if err := j.assets.Error(); err != nil {
		return err
	}
	j.positions.Flush()
	if err := j.positions.Error(); err != nil {
		return err
	}
	if err := j.af.Close(); err != nil {
		return err
	}
	return j.pf.Close()
}

// money rounds to cents so float noise stays out of the files.
func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func qty(x float64) string {
	return decimal.NewFromFloat(x).String()
}
