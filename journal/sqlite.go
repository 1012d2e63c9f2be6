package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordAsset(a AssetRow) error {
	_, err := j.db.Exec(`
		INSERT INTO assets
		(id, trading_day, update_time, holder_uid, ledger_category, source_id, account_id, client_id,
		 initial_equity, static_equity, dynamic_equity, avail, margin, market_value, frozen_cash,
		 frozen_margin, intraday_fee, accumulated_fee, unrealized_pnl, realized_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.TradingDay, a.UpdateTime, a.HolderUID, a.LedgerCategory, a.SourceID, a.AccountID, a.ClientID,
		a.InitialEquity, a.StaticEquity, a.DynamicEquity, a.Avail, a.Margin, a.MarketValue, a.FrozenCash,
		a.FrozenMargin, a.IntradayFee, a.AccumulatedFee, a.UnrealizedPnl, a.RealizedPnl,
	)
	return err
}

func (j *SQLite) RecordPosition(p PositionRow) error {
	_, err := j.db.Exec(`
		INSERT INTO positions
		(id, trading_day, update_time, holder_uid, ledger_category, source_id, account_id, client_id,
		 instrument_id, exchange_id, direction, instrument_type, volume, yesterday_volume, frozen_total,
		 last_price, avg_open_price, margin, market_value, position_pnl, unrealized_pnl, realized_pnl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.TradingDay, p.UpdateTime, p.HolderUID, p.LedgerCategory, p.SourceID, p.AccountID, p.ClientID,
		p.InstrumentID, p.ExchangeID, p.Direction, p.InstrumentType, p.Volume, p.YesterdayVolume, p.FrozenTotal,
		p.LastPrice, p.AvgOpenPrice, p.Margin, p.MarketValue, p.PositionPnl, p.UnrealizedPnl, p.RealizedPnl,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
