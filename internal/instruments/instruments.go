// Package instruments maps index spot prices to weekly option contracts:
// strike selection, expiry calendars and exchange trading symbols.
package instruments

import (
	"fmt"
	"math"
	"time"
)

// Option types.
const (
	Call = "CE"
	Put  = "PE"
)

// Spec describes one tradable index and its weekly option chain.
type Spec struct {
	Name           string
	StrikeInterval int
	StrikeRange    int // strikes analyzed ATM +/- this many points
	LotSize        int
	ExpiryWeekday  time.Weekday
}

var specs = map[string]Spec{
	"SENSEX": {Name: "SENSEX", StrikeInterval: 100, StrikeRange: 500, LotSize: 20, ExpiryWeekday: time.Thursday},
	"NIFTY":  {Name: "NIFTY", StrikeInterval: 50, StrikeRange: 500, LotSize: 75, ExpiryWeekday: time.Tuesday},
}

// Lookup returns the spec for a supported index name.
func Lookup(name string) (Spec, error) {
	s, ok := specs[name]
	if !ok {
		return Spec{}, fmt.Errorf("unknown instrument %q", name)
	}
	return s, nil
}

// ATMStrike rounds the spot price to the nearest strike.
// Sensex 80150 rounds to 80200, 80140 to 80100.
func (s Spec) ATMStrike(spot float64) int {
	return int(math.Round(spot/float64(s.StrikeInterval))) * s.StrikeInterval
}

// StrikesToAnalyze lists the strikes ATM +/- the analysis range, ascending.
func (s Spec) StrikesToAnalyze(spot float64) []int {
	atm := s.ATMStrike(spot)
	var strikes []int
	for k := atm - s.StrikeRange; k <= atm+s.StrikeRange; k += s.StrikeInterval {
		strikes = append(strikes, k)
	}
	return strikes
}

// ITMStrike picks the in-the-money strike: one interval in on normal days,
// two on expiry day when the nearer strike has no premium cushion left.
// In for a CE is below ATM, for a PE above.
func (s Spec) ITMStrike(atm int, optionType string, daysToExpiry int) int {
	distance := s.StrikeInterval
	if daysToExpiry == 0 {
		distance = 2 * s.StrikeInterval
	}
	if optionType == Call {
		return atm - distance
	}
	return atm + distance
}

// NextExpiry returns the next weekly expiry strictly after from's weekday
// position, rolled backward off exchange holidays.
func (s Spec) NextExpiry(from time.Time, isHoliday func(time.Time) bool) time.Time {
	daysAhead := (int(s.ExpiryWeekday) - int(from.Weekday()) + 7) % 7
	if daysAhead == 0 {
		daysAhead = 7
	}
	expiry := from.AddDate(0, 0, daysAhead)
	if isHoliday != nil {
		for isHoliday(expiry) {
			expiry = expiry.AddDate(0, 0, -1)
		}
	}
	return expiry
}

// DaysToExpiry counts calendar days from from to the next expiry.
func (s Spec) DaysToExpiry(from time.Time, isHoliday func(time.Time) bool) int {
	expiry := s.NextExpiry(from, isHoliday)
	fromDay := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	expiryDay := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, expiry.Location())
	return int(expiryDay.Sub(fromDay).Hours() / 24)
}

// OptionSymbol builds the exchange trading symbol,
// <INSTRUMENT><YYMMDD><STRIKE><CE/PE>, e.g. SENSEX26031281000CE.
func (s Spec) OptionSymbol(strike int, optionType string, expiry time.Time) string {
	return fmt.Sprintf("%s%s%d%s", s.Name, expiry.Format("060102"), strike, optionType)
}
