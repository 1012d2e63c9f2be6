// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS assets (
	id TEXT PRIMARY KEY,
	trading_day TEXT NOT NULL,
	update_time INTEGER NOT NULL,
	holder_uid INTEGER NOT NULL,
	ledger_category INTEGER NOT NULL,
	source_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	client_id TEXT NOT NULL,
	initial_equity REAL NOT NULL,
	static_equity REAL NOT NULL,
	dynamic_equity REAL NOT NULL,
	avail REAL NOT NULL,
	margin REAL NOT NULL,
	market_value REAL NOT NULL,
	frozen_cash REAL NOT NULL,
	frozen_margin REAL NOT NULL,
	intraday_fee REAL NOT NULL,
	accumulated_fee REAL NOT NULL,
	unrealized_pnl REAL NOT NULL,
	realized_pnl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS positions (
	id TEXT PRIMARY KEY,
	trading_day TEXT NOT NULL,
	update_time INTEGER NOT NULL,
	holder_uid INTEGER NOT NULL,
	ledger_category INTEGER NOT NULL,
	source_id TEXT NOT NULL,
	account_id TEXT NOT NULL,
	client_id TEXT NOT NULL,
	instrument_id TEXT NOT NULL,
	exchange_id TEXT NOT NULL,
	direction INTEGER NOT NULL,
	instrument_type INTEGER NOT NULL,
	volume REAL NOT NULL,
	yesterday_volume REAL NOT NULL,
	frozen_total REAL NOT NULL,
	last_price REAL NOT NULL,
	avg_open_price REAL NOT NULL,
	margin REAL NOT NULL,
	market_value REAL NOT NULL,
	position_pnl REAL NOT NULL,
	unrealized_pnl REAL NOT NULL,
	realized_pnl REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assets_day ON assets(trading_day, holder_uid);
CREATE INDEX IF NOT EXISTS idx_positions_day ON positions(trading_day, holder_uid);
`
