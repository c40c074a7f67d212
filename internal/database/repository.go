package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no rows.
var ErrNotFound = errors.New("record not found")

// Repository provides data access for trades, signals and summaries.
type Repository struct {
	db *DB
}

// NewRepository creates a repository over an open DB.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// HealthCheck pings the database.
func (r *Repository) HealthCheck(ctx context.Context) error {
	return r.db.Pool.Ping(ctx)
}

// CreateTrade inserts a newly opened trade.
func (r *Repository) CreateTrade(ctx context.Context, t *TradeRecord) error {
	query := `
		INSERT INTO trades (
			trade_id, instrument, symbol, strike, option_type,
			entry_time, entry_price, entry_candle_low,
			scenario, structure, target_price, sl_price,
			first_candle_entry, re_entry, lot_size,
			pivot_pp, pivot_r1, pivot_r2, pivot_r3, pivot_r4, pivot_r5, pivot_s1
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
		RETURNING created_at
	`
	return r.db.Pool.QueryRow(ctx, query,
		t.TradeID, t.Instrument, t.Symbol, t.Strike, t.OptionType,
		t.EntryTime, t.EntryPrice, t.EntryCandleLow,
		t.Scenario, t.Structure, t.TargetPrice, t.SLPrice,
		t.FirstCandle, t.ReEntry, t.LotSize,
		t.PivotPP, t.PivotR1, t.PivotR2, t.PivotR3, t.PivotR4, t.PivotR5, t.PivotS1,
	).Scan(&t.CreatedAt)
}

// CloseTrade records the exit side of a trade.
func (r *Repository) CloseTrade(ctx context.Context, tradeID string, exitTime time.Time, exitPrice float64, exitReason string, candlesHeld int, pnlPoints, pnlRupees float64) error {
	query := `
		UPDATE trades
		SET exit_time = $2, exit_price = $3, exit_reason = $4,
		    candles_held = $5, pnl_points = $6, pnl_rupees = $7
		WHERE trade_id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, tradeID, exitTime, exitPrice, exitReason, candlesHeld, pnlPoints, pnlRupees)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: trade %s", ErrNotFound, tradeID)
	}
	return nil
}

const tradeColumns = `
	trade_id, instrument, symbol, strike, option_type,
	entry_time, entry_price, entry_candle_low,
	exit_time, exit_price, exit_reason,
	scenario, structure, target_price, sl_price,
	candles_held, first_candle_entry, re_entry,
	pnl_points, pnl_rupees, lot_size,
	pivot_pp, pivot_r1, pivot_r2, pivot_r3, pivot_r4, pivot_r5, pivot_s1,
	created_at
`

func scanTrade(row pgx.Row) (*TradeRecord, error) {
	t := &TradeRecord{}
	err := row.Scan(
		&t.TradeID, &t.Instrument, &t.Symbol, &t.Strike, &t.OptionType,
		&t.EntryTime, &t.EntryPrice, &t.EntryCandleLow,
		&t.ExitTime, &t.ExitPrice, &t.ExitReason,
		&t.Scenario, &t.Structure, &t.TargetPrice, &t.SLPrice,
		&t.CandlesHeld, &t.FirstCandle, &t.ReEntry,
		&t.PnLPoints, &t.PnLRupees, &t.LotSize,
		&t.PivotPP, &t.PivotR1, &t.PivotR2, &t.PivotR3, &t.PivotR4, &t.PivotR5, &t.PivotS1,
		&t.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTradeByID fetches one trade.
func (r *Repository) GetTradeByID(ctx context.Context, tradeID string) (*TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE trade_id = $1`
	return scanTrade(r.db.Pool.QueryRow(ctx, query, tradeID))
}

// GetTradesByDate fetches all trades entered on a calendar date, oldest
// first.
func (r *Repository) GetTradesByDate(ctx context.Context, date time.Time) ([]*TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE entry_time::date = $1::date ORDER BY entry_time`
	rows, err := r.db.Pool.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []*TradeRecord
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

// CreateSignal appends one signal to the audit log, assigning its id.
func (r *Repository) CreateSignal(ctx context.Context, s *SignalRecord) error {
	if s.SignalID == "" {
		s.SignalID = uuid.New().String()
	}
	query := `
		INSERT INTO signals (
			signal_id, time, instrument, symbol, strike, option_type,
			signal_type, scenario, structure,
			candle_open, candle_high, candle_low, candle_close, candle_size_pct,
			pivot_pp, pivot_r1, pivot_r2, pivot_r3, reason
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`
	_, err := r.db.Pool.Exec(ctx, query,
		s.SignalID, s.Time, s.Instrument, s.Symbol, s.Strike, s.OptionType,
		s.SignalType, s.Scenario, s.Structure,
		s.CandleOpen, s.CandleHigh, s.CandleLow, s.CandleClose, s.CandleSizePct,
		s.PivotPP, s.PivotR1, s.PivotR2, s.PivotR3, s.Reason,
	)
	return err
}

// ComputeDailySummary aggregates the day's closed trades into a summary.
func (r *Repository) ComputeDailySummary(ctx context.Context, date time.Time, instrument string) (*DailySummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE pnl_points > 0),
			COUNT(*) FILTER (WHERE pnl_points <= 0),
			COALESCE(SUM(pnl_rupees), 0),
			COUNT(*) FILTER (WHERE scenario = 1),
			COUNT(*) FILTER (WHERE scenario = 2),
			COUNT(*) FILTER (WHERE scenario = 3),
			COUNT(*) FILTER (WHERE first_candle_entry),
			COUNT(*) FILTER (WHERE NOT first_candle_entry),
			COUNT(*) FILTER (WHERE exit_reason = 'STOP_LOSS'),
			COUNT(*) FILTER (WHERE exit_reason = 'TARGET'),
			COUNT(*) FILTER (WHERE exit_reason = 'TIMEOUT'),
			COUNT(*) FILTER (WHERE exit_reason = 'EOD')
		FROM trades
		WHERE entry_time::date = $1::date AND exit_time IS NOT NULL
	`
	s := &DailySummary{Date: date, Instrument: instrument}
	err := r.db.Pool.QueryRow(ctx, query, date).Scan(
		&s.TotalTrades, &s.Wins, &s.Losses, &s.GrossPnL,
		&s.Scenario1Trades, &s.Scenario2Trades, &s.Scenario3Trades,
		&s.FirstCandleEntries, &s.IntradayEntries,
		&s.StopLosses, &s.TargetsHit, &s.Timeouts, &s.EODExits,
	)
	if err != nil {
		return nil, err
	}
	if s.TotalTrades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TotalTrades) * 100
	}
	return s, nil
}

// UpsertDailySummary writes the day's summary row, replacing any previous
// computation for the date.
func (r *Repository) UpsertDailySummary(ctx context.Context, s *DailySummary) error {
	query := `
		INSERT INTO daily_summary (
			date, instrument, total_trades, wins, losses, win_rate, gross_pnl,
			scenario_1_trades, scenario_2_trades, scenario_3_trades,
			first_candle_entries, intraday_entries,
			stop_losses, targets_hit, timeouts, eod_exits
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		ON CONFLICT (date) DO UPDATE SET
			instrument = EXCLUDED.instrument,
			total_trades = EXCLUDED.total_trades,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			win_rate = EXCLUDED.win_rate,
			gross_pnl = EXCLUDED.gross_pnl,
			scenario_1_trades = EXCLUDED.scenario_1_trades,
			scenario_2_trades = EXCLUDED.scenario_2_trades,
			scenario_3_trades = EXCLUDED.scenario_3_trades,
			first_candle_entries = EXCLUDED.first_candle_entries,
			intraday_entries = EXCLUDED.intraday_entries,
			stop_losses = EXCLUDED.stop_losses,
			targets_hit = EXCLUDED.targets_hit,
			timeouts = EXCLUDED.timeouts,
			eod_exits = EXCLUDED.eod_exits
	`
	_, err := r.db.Pool.Exec(ctx, query,
		s.Date, s.Instrument, s.TotalTrades, s.Wins, s.Losses, s.WinRate, s.GrossPnL,
		s.Scenario1Trades, s.Scenario2Trades, s.Scenario3Trades,
		s.FirstCandleEntries, s.IntradayEntries,
		s.StopLosses, s.TargetsHit, s.Timeouts, s.EODExits,
	)
	return err
}

// GetDailySummary fetches the summary row for a date.
func (r *Repository) GetDailySummary(ctx context.Context, date time.Time) (*DailySummary, error) {
	query := `
		SELECT date, instrument, total_trades, wins, losses, win_rate, gross_pnl,
		       scenario_1_trades, scenario_2_trades, scenario_3_trades,
		       first_candle_entries, intraday_entries,
		       stop_losses, targets_hit, timeouts, eod_exits
		FROM daily_summary
		WHERE date = $1::date
	`
	s := &DailySummary{}
	err := r.db.Pool.QueryRow(ctx, query, date).Scan(
		&s.Date, &s.Instrument, &s.TotalTrades, &s.Wins, &s.Losses, &s.WinRate, &s.GrossPnL,
		&s.Scenario1Trades, &s.Scenario2Trades, &s.Scenario3Trades,
		&s.FirstCandleEntries, &s.IntradayEntries,
		&s.StopLosses, &s.TargetsHit, &s.Timeouts, &s.EODExits,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
