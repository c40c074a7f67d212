package instruments

import (
	"testing"
	"time"
)

func mustLookup(t *testing.T, name string) Spec {
	t.Helper()
	s, err := Lookup(name)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", name, err)
	}
	return s
}

func TestLookup(t *testing.T) {
	sensex := mustLookup(t, "SENSEX")
	if sensex.StrikeInterval != 100 || sensex.LotSize != 20 || sensex.ExpiryWeekday != time.Thursday {
		t.Errorf("SENSEX spec = %+v", sensex)
	}
	nifty := mustLookup(t, "NIFTY")
	if nifty.StrikeInterval != 50 || nifty.LotSize != 75 || nifty.ExpiryWeekday != time.Tuesday {
		t.Errorf("NIFTY spec = %+v", nifty)
	}
	if _, err := Lookup("BANKNIFTY"); err == nil {
		t.Error("Lookup(BANKNIFTY) accepted, want error")
	}
}

func TestATMStrike(t *testing.T) {
	sensex := mustLookup(t, "SENSEX")
	nifty := mustLookup(t, "NIFTY")

	tests := []struct {
		spec Spec
		spot float64
		want int
	}{
		{sensex, 80140, 80100},
		{sensex, 80160, 80200},
		{sensex, 80150, 80200}, // midpoint rounds up
		{sensex, 81000, 81000},
		{nifty, 24510, 24500},
		{nifty, 24530, 24550},
	}
	for _, tt := range tests {
		if got := tt.spec.ATMStrike(tt.spot); got != tt.want {
			t.Errorf("%s ATMStrike(%v) = %d, want %d", tt.spec.Name, tt.spot, got, tt.want)
		}
	}
}

func TestStrikesToAnalyze(t *testing.T) {
	sensex := mustLookup(t, "SENSEX")
	strikes := sensex.StrikesToAnalyze(80150)
	if len(strikes) != 11 {
		t.Fatalf("SENSEX strike count = %d, want 11", len(strikes))
	}
	if strikes[0] != 79700 || strikes[10] != 80700 {
		t.Errorf("SENSEX strike range = %d..%d, want 79700..80700", strikes[0], strikes[10])
	}

	nifty := mustLookup(t, "NIFTY")
	strikes = nifty.StrikesToAnalyze(24510)
	if len(strikes) != 21 {
		t.Errorf("NIFTY strike count = %d, want 21", len(strikes))
	}
}

func TestITMStrike(t *testing.T) {
	sensex := mustLookup(t, "SENSEX")

	tests := []struct {
		optionType   string
		daysToExpiry int
		want         int
	}{
		{Call, 3, 80900}, // one interval in
		{Call, 0, 80800}, // expiry day goes deeper
		{Put, 3, 81100},
		{Put, 0, 81200},
	}
	for _, tt := range tests {
		if got := sensex.ITMStrike(81000, tt.optionType, tt.daysToExpiry); got != tt.want {
			t.Errorf("ITMStrike(81000, %s, %d) = %d, want %d", tt.optionType, tt.daysToExpiry, got, tt.want)
		}
	}
}

func TestNextExpiry(t *testing.T) {
	sensex := mustLookup(t, "SENSEX")
	nifty := mustLookup(t, "NIFTY")

	monday := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	thursday := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)

	if got := sensex.NextExpiry(monday, nil); !got.Equal(thursday) {
		t.Errorf("SENSEX expiry from Monday = %v, want Thursday %v", got, thursday)
	}
	// On the expiry weekday itself the contract rolls to next week.
	nextThursday := thursday.AddDate(0, 0, 7)
	if got := sensex.NextExpiry(thursday, nil); !got.Equal(nextThursday) {
		t.Errorf("SENSEX expiry from Thursday = %v, want %v", got, nextThursday)
	}

	tuesday := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := nifty.NextExpiry(monday, nil); !got.Equal(tuesday) {
		t.Errorf("NIFTY expiry from Monday = %v, want Tuesday %v", got, tuesday)
	}

	// Holiday on expiry day moves the expiry one day earlier.
	holiday := func(d time.Time) bool { return d.Equal(thursday) }
	wednesday := time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)
	if got := sensex.NextExpiry(monday, holiday); !got.Equal(wednesday) {
		t.Errorf("SENSEX holiday-adjusted expiry = %v, want Wednesday %v", got, wednesday)
	}
}

func TestDaysToExpiry(t *testing.T) {
	sensex := mustLookup(t, "SENSEX")
	monday := time.Date(2026, 3, 9, 10, 30, 0, 0, time.UTC)
	if got := sensex.DaysToExpiry(monday, nil); got != 3 {
		t.Errorf("DaysToExpiry from Monday = %d, want 3", got)
	}
}

func TestOptionSymbol(t *testing.T) {
	sensex := mustLookup(t, "SENSEX")
	expiry := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	if got := sensex.OptionSymbol(81000, Call, expiry); got != "SENSEX26031281000CE" {
		t.Errorf("OptionSymbol = %q, want SENSEX26031281000CE", got)
	}
	nifty := mustLookup(t, "NIFTY")
	expiry = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if got := nifty.OptionSymbol(24500, Put, expiry); got != "NIFTY26031024500PE" {
		t.Errorf("OptionSymbol = %q, want NIFTY26031024500PE", got)
	}
}
