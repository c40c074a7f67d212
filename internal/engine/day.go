package engine

import (
	"time"

	"pivot-trading-engine/internal/instruments"
	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/pivots"
	"pivot-trading-engine/internal/position"
)

// tradingDay is the per-session context: the contract being traded, its
// pivot levels and the rolling candle window. Rebuilt every morning.
type tradingDay struct {
	date       time.Time
	spot       float64
	atmStrike  int
	strikes    []int
	strike     int
	optionType string
	expiry     time.Time
	symbol     string
	pivots     pivots.Set
	window     *market.Window
}

func (d *tradingDay) instrument(spec instruments.Spec) position.Instrument {
	return position.Instrument{
		Name:       spec.Name,
		Symbol:     d.symbol,
		Strike:     d.strike,
		OptionType: d.optionType,
		LotSize:    spec.LotSize,
	}
}
