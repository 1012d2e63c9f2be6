package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const assetColumns = `id, trading_day, update_time, holder_uid, ledger_category, source_id, account_id, client_id,
	initial_equity, static_equity, dynamic_equity, avail, margin, market_value, frozen_cash,
	frozen_margin, intraday_fee, accumulated_fee, unrealized_pnl, realized_pnl`

const positionColumns = `id, trading_day, update_time, holder_uid, ledger_category, source_id, account_id, client_id,
	instrument_id, exchange_id, direction, instrument_type, volume, yesterday_volume, frozen_total,
	last_price, avg_open_price, margin, market_value, position_pnl, unrealized_pnl, realized_pnl`

type scanner interface {
	Scan(dest ...any) error
}

func scanAsset(s scanner) (AssetRow, error) {
	var a AssetRow
	err := s.Scan(
		&a.ID, &a.TradingDay, &a.UpdateTime, &a.HolderUID, &a.LedgerCategory, &a.SourceID, &a.AccountID, &a.ClientID,
		&a.InitialEquity, &a.StaticEquity, &a.DynamicEquity, &a.Avail, &a.Margin, &a.MarketValue, &a.FrozenCash,
		&a.FrozenMargin, &a.IntradayFee, &a.AccumulatedFee, &a.UnrealizedPnl, &a.RealizedPnl,
	)
	return a, err
}

func scanPosition(s scanner) (PositionRow, error) {
	var p PositionRow
	err := s.Scan(
		&p.ID, &p.TradingDay, &p.UpdateTime, &p.HolderUID, &p.LedgerCategory, &p.SourceID, &p.AccountID, &p.ClientID,
		&p.InstrumentID, &p.ExchangeID, &p.Direction, &p.InstrumentType, &p.Volume, &p.YesterdayVolume, &p.FrozenTotal,
		&p.LastPrice, &p.AvgOpenPrice, &p.Margin, &p.MarketValue, &p.PositionPnl, &p.UnrealizedPnl, &p.RealizedPnl,
	)
	return p, err
}

// ListAssets returns the asset snapshots of a trading day in publication order.
func (j *SQLite) ListAssets(tradingDay string) ([]AssetRow, error) {
	rows, err := j.db.Query(`SELECT `+assetColumns+` FROM assets WHERE trading_day = ? ORDER BY id ASC`, tradingDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AssetRow
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPositions returns the position snapshots of a trading day in publication order.
func (j *SQLite) ListPositions(tradingDay string) ([]PositionRow, error) {
	rows, err := j.db.Query(`SELECT `+positionColumns+` FROM positions WHERE trading_day = ? ORDER BY id ASC`, tradingDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRow
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// LatestAsset returns the most recent asset snapshot of a holder.
func (j *SQLite) LatestAsset(holderUID uint32) (AssetRow, error) {
	row := j.db.QueryRow(`SELECT `+assetColumns+` FROM assets WHERE holder_uid = ? ORDER BY id DESC LIMIT 1`, holderUID)
	a, err := scanAsset(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AssetRow{}, fmt.Errorf("no asset snapshot for holder %08x", holderUID)
		}
		return AssetRow{}, err
	}
	return a, nil
}
