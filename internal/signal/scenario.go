// Package signal evaluates entry conditions against pivot levels and the
// rolling candle window.
package signal

import (
	"fmt"

	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/pivots"
)

// Scenario identifies which opening-band breakout rule fired.
type Scenario string

const (
	// ScenarioS1 opens in the PP-S1 band and targets R3.
	ScenarioS1 Scenario = "S1_PP_S1_TO_R1"
	// ScenarioS2 opens in the PP-R1 band and targets R4.
	ScenarioS2 Scenario = "S2_PP_R1_TO_R2"
	// ScenarioS3 opens in the R2-R3 band and targets R5. Never trades the
	// first candle; the opening print is considered too extended.
	ScenarioS3 Scenario = "S3_R2R3_TO_R3"
)

// Number is the short 1/2/3 form used in trade records and alerts.
func (s Scenario) Number() int {
	switch s {
	case ScenarioS1:
		return 1
	case ScenarioS2:
		return 2
	case ScenarioS3:
		return 3
	}
	return 0
}

func (s Scenario) String() string {
	return fmt.Sprintf("Scenario %d", s.Number())
}

// FirstCandleAllowed reports whether the scenario may fire on the day's
// opening candle.
func (s Scenario) FirstCandleAllowed() bool {
	return s != ScenarioS3
}

// match is the outcome of one scenario rule against one candle.
type match struct {
	target float64
	reason string
}

// rule is one scenario's entry condition. The three rules form a closed set
// evaluated in order; their opening bands do not overlap, so the first match
// wins.
type rule interface {
	scenario() Scenario
	evaluate(p pivots.Set, c market.Candle, firstCandle bool) (match, bool)
}

// allRules in evaluation order S1, S2, S3.
func allRules() []rule {
	return []rule{s1Rule{}, s2Rule{}, s3Rule{}}
}

// s1Rule: first candle opens within [S1, PP] and closes above R1; any later
// candle simply closes above R1. Target R3.
type s1Rule struct{}

func (s1Rule) scenario() Scenario { return ScenarioS1 }

func (s1Rule) evaluate(p pivots.Set, c market.Candle, firstCandle bool) (match, bool) {
	if firstCandle {
		if c.Open >= p.S1 && c.Open <= p.PP && c.Close > p.R1 {
			return match{target: p.R3, reason: "first candle: opened PP-S1, closed above R1"}, true
		}
		return match{}, false
	}
	if c.Close > p.R1 {
		return match{target: p.R3, reason: "intraday: closed above R1"}, true
	}
	return match{}, false
}

// s2Rule: first candle opens within [PP, R1] and closes above R2 but below
// R3; intraday a close between R2 and R3 suffices. A close at or above R3
// voids the signal rather than reclassifying as S3. Target R4.
type s2Rule struct{}

func (s2Rule) scenario() Scenario { return ScenarioS2 }

func (s2Rule) evaluate(p pivots.Set, c market.Candle, firstCandle bool) (match, bool) {
	if firstCandle {
		if c.Open >= p.PP && c.Open <= p.R1 && c.Close > p.R2 && c.Close < p.R3 {
			return match{target: p.R4, reason: "first candle: opened PP-R1, closed above R2 below R3"}, true
		}
		return match{}, false
	}
	if c.Close > p.R2 && c.Close < p.R3 {
		return match{target: p.R4, reason: "intraday: closed above R2 below R3"}, true
	}
	return match{}, false
}

// s3Rule: intraday only, opens within [R2, R3] and closes above R3.
// Target R5.
type s3Rule struct{}

func (s3Rule) scenario() Scenario { return ScenarioS3 }

func (s3Rule) evaluate(p pivots.Set, c market.Candle, firstCandle bool) (match, bool) {
	if firstCandle {
		return match{}, false
	}
	if c.Open >= p.R2 && c.Open <= p.R3 && c.Close > p.R3 {
		return match{target: p.R5, reason: "intraday: opened R2-R3, closed above R3"}, true
	}
	return match{}, false
}
