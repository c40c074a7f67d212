package hours

import (
	"testing"
	"time"
)

func testSchedule(t *testing.T, holidays ...string) *Schedule {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Holidays = holidays
	s, err := NewSchedule(cfg)
	if err != nil {
		t.Fatalf("NewSchedule: %v", err)
	}
	return s
}

func ist(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatal(err)
	}
	tm, err := time.ParseInLocation("2006-01-02 15:04", value, loc)
	if err != nil {
		t.Fatal(err)
	}
	return tm
}

func TestIsTradingDay(t *testing.T) {
	s := testSchedule(t, "2026-03-11")

	tests := []struct {
		when string
		want bool
	}{
		{"2026-03-12 10:00", true},  // Thursday
		{"2026-03-14 10:00", false}, // Saturday
		{"2026-03-15 10:00", false}, // Sunday
		{"2026-03-11 10:00", false}, // holiday
		{"2026-03-10 10:00", true},  // Tuesday
	}
	for _, tt := range tests {
		if got := s.IsTradingDay(ist(t, tt.when)); got != tt.want {
			t.Errorf("IsTradingDay(%s) = %v, want %v", tt.when, got, tt.want)
		}
	}
}

func TestIsMarketOpen(t *testing.T) {
	s := testSchedule(t)

	tests := []struct {
		when string
		want bool
	}{
		{"2026-03-12 09:14", false},
		{"2026-03-12 09:15", true}, // open inclusive
		{"2026-03-12 12:00", true},
		{"2026-03-12 15:29", true},
		{"2026-03-12 15:30", false}, // close exclusive
		{"2026-03-14 12:00", false}, // weekend
	}
	for _, tt := range tests {
		if got := s.IsMarketOpen(ist(t, tt.when)); got != tt.want {
			t.Errorf("IsMarketOpen(%s) = %v, want %v", tt.when, got, tt.want)
		}
	}
}

func TestIsFirstCandle(t *testing.T) {
	s := testSchedule(t)

	tests := []struct {
		when string
		want bool
	}{
		{"2026-03-12 09:14", false},
		{"2026-03-12 09:15", true},
		{"2026-03-12 09:20", true},
		{"2026-03-12 09:21", false}, // window end exclusive
		{"2026-03-12 10:00", false},
	}
	for _, tt := range tests {
		if got := s.IsFirstCandle(ist(t, tt.when)); got != tt.want {
			t.Errorf("IsFirstCandle(%s) = %v, want %v", tt.when, got, tt.want)
		}
	}
}

func TestIsAfterEODExit(t *testing.T) {
	s := testSchedule(t)

	if s.IsAfterEODExit(ist(t, "2026-03-12 15:14")) {
		t.Error("15:14 counted as past square-off")
	}
	if !s.IsAfterEODExit(ist(t, "2026-03-12 15:15")) {
		t.Error("15:15 not counted as past square-off")
	}
	if !s.IsAfterEODExit(ist(t, "2026-03-12 15:45")) {
		t.Error("15:45 not counted as past square-off")
	}
}

func TestPreviousTradingDay(t *testing.T) {
	s := testSchedule(t, "2026-03-11")

	tests := []struct {
		when string
		want string
	}{
		{"2026-03-13 10:00", "2026-03-12"}, // Friday -> Thursday
		{"2026-03-16 10:00", "2026-03-13"}, // Monday -> Friday over weekend
		{"2026-03-12 10:00", "2026-03-10"}, // Thursday skips Wednesday holiday
	}
	for _, tt := range tests {
		got := s.PreviousTradingDay(ist(t, tt.when))
		if got.Format("2006-01-02") != tt.want {
			t.Errorf("PreviousTradingDay(%s) = %s, want %s", tt.when, got.Format("2006-01-02"), tt.want)
		}
		if got.Hour() != 0 || got.Minute() != 0 {
			t.Errorf("PreviousTradingDay(%s) not midnight: %v", tt.when, got)
		}
	}
}

func TestNextOpen(t *testing.T) {
	s := testSchedule(t)

	tests := []struct {
		when string
		want string
	}{
		{"2026-03-12 08:00", "2026-03-12 09:15"}, // before open, same day
		{"2026-03-12 09:15", "2026-03-12 09:15"}, // exactly at open
		{"2026-03-12 10:00", "2026-03-13 09:15"}, // after open, next day
		{"2026-03-13 16:00", "2026-03-16 09:15"}, // Friday evening -> Monday
	}
	for _, tt := range tests {
		got := s.NextOpen(ist(t, tt.when))
		if !got.Equal(ist(t, tt.want)) {
			t.Errorf("NextOpen(%s) = %v, want %s", tt.when, got, tt.want)
		}
	}
}

func TestNewScheduleRejectsBadConfig(t *testing.T) {
	bad := []Config{
		{OpenTime: "09:15", CloseTime: "15:30", EODExitTime: "15:15", FirstCandleEnd: "09:21", Timezone: "Mars/Olympus"},
		{OpenTime: "9am", CloseTime: "15:30", EODExitTime: "15:15", FirstCandleEnd: "09:21", Timezone: "Asia/Kolkata"},
		{OpenTime: "15:30", CloseTime: "09:15", EODExitTime: "15:15", FirstCandleEnd: "09:21", Timezone: "Asia/Kolkata"},
		{OpenTime: "09:15", CloseTime: "15:30", EODExitTime: "15:15", FirstCandleEnd: "09:21", Timezone: "Asia/Kolkata", Holidays: []string{"12-03-2026"}},
	}
	for i, cfg := range bad {
		if _, err := NewSchedule(cfg); err == nil {
			t.Errorf("config %d accepted, want error", i)
		}
	}
}
