package database

import "time"

// TradeRecord mirrors one row of the trades table.
type TradeRecord struct {
	TradeID        string     `json:"trade_id"`
	Instrument     string     `json:"instrument"`
	Symbol         string     `json:"symbol"`
	Strike         int        `json:"strike"`
	OptionType     string     `json:"option_type"`
	EntryTime      time.Time  `json:"entry_time"`
	EntryPrice     float64    `json:"entry_price"`
	EntryCandleLow float64    `json:"entry_candle_low"`
	ExitTime       *time.Time `json:"exit_time,omitempty"`
	ExitPrice      *float64   `json:"exit_price,omitempty"`
	ExitReason     *string    `json:"exit_reason,omitempty"`
	Scenario       int        `json:"scenario"`
	Structure      string     `json:"structure"`
	TargetPrice    float64    `json:"target_price"`
	SLPrice        float64    `json:"sl_price"`
	CandlesHeld    *int       `json:"candles_held,omitempty"`
	FirstCandle    bool       `json:"first_candle_entry"`
	ReEntry        bool       `json:"re_entry"`
	PnLPoints      *float64   `json:"pnl_points,omitempty"`
	PnLRupees      *float64   `json:"pnl_rupees,omitempty"`
	LotSize        int        `json:"lot_size"`
	PivotPP        float64    `json:"pivot_pp"`
	PivotR1        float64    `json:"pivot_r1"`
	PivotR2        float64    `json:"pivot_r2"`
	PivotR3        float64    `json:"pivot_r3"`
	PivotR4        float64    `json:"pivot_r4"`
	PivotR5        float64    `json:"pivot_r5"`
	PivotS1        float64    `json:"pivot_s1"`
	CreatedAt      time.Time  `json:"created_at"`
}

// SignalTypeEntry marks rows of the signals audit log; exits are recorded
// on the trade row itself, not as separate signals.
const SignalTypeEntry = "ENTRY"

// SignalRecord mirrors one row of the signals table.
type SignalRecord struct {
	SignalID      string    `json:"signal_id"` // UUID
	Time          time.Time `json:"time"`
	Instrument    string    `json:"instrument"`
	Symbol        string    `json:"symbol"`
	Strike        int       `json:"strike"`
	OptionType    string    `json:"option_type"`
	SignalType    string    `json:"signal_type"`
	Scenario      int       `json:"scenario"`
	Structure     string    `json:"structure"`
	CandleOpen    float64   `json:"candle_open"`
	CandleHigh    float64   `json:"candle_high"`
	CandleLow     float64   `json:"candle_low"`
	CandleClose   float64   `json:"candle_close"`
	CandleSizePct float64   `json:"candle_size_pct"`
	PivotPP       float64   `json:"pivot_pp"`
	PivotR1       float64   `json:"pivot_r1"`
	PivotR2       float64   `json:"pivot_r2"`
	PivotR3       float64   `json:"pivot_r3"`
	Reason        string    `json:"reason"`
}

// DailySummary mirrors one row of the daily_summary table.
type DailySummary struct {
	Date               time.Time `json:"date"`
	Instrument         string    `json:"instrument"`
	TotalTrades        int       `json:"total_trades"`
	Wins               int       `json:"wins"`
	Losses             int       `json:"losses"`
	WinRate            float64   `json:"win_rate"`
	GrossPnL           float64   `json:"gross_pnl"`
	Scenario1Trades    int       `json:"scenario_1_trades"`
	Scenario2Trades    int       `json:"scenario_2_trades"`
	Scenario3Trades    int       `json:"scenario_3_trades"`
	FirstCandleEntries int       `json:"first_candle_entries"`
	IntradayEntries    int       `json:"intraday_entries"`
	StopLosses         int       `json:"stop_losses"`
	TargetsHit         int       `json:"targets_hit"`
	Timeouts           int       `json:"timeouts"`
	EODExits           int       `json:"eod_exits"`
}
