// Package hours answers calendar and clock questions for the NSE/BSE
// session: trading days, the first-candle window and the end-of-day
// square-off cutoff. All answers are in exchange time.
package hours

import (
	"fmt"
	"time"
)

// Config describes one exchange session. Times are "HH:MM" wall clock in
// the configured timezone; holidays are "2006-01-02" dates.
type Config struct {
	OpenTime       string
	CloseTime      string
	EODExitTime    string
	FirstCandleEnd string
	Timezone       string
	Holidays       []string
}

// DefaultConfig is the regular Indian index-options session.
func DefaultConfig() Config {
	return Config{
		OpenTime:       "09:15",
		CloseTime:      "15:30",
		EODExitTime:    "15:15",
		FirstCandleEnd: "09:21",
		Timezone:       "Asia/Kolkata",
	}
}

// minuteOfDay is wall-clock minutes since midnight.
type minuteOfDay int

func parseClock(s string) (minuteOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("bad clock time %q: %w", s, err)
	}
	return minuteOfDay(t.Hour()*60 + t.Minute()), nil
}

// Schedule answers session-timing queries. Immutable after construction.
type Schedule struct {
	loc            *time.Location
	open           minuteOfDay
	close          minuteOfDay
	eodExit        minuteOfDay
	firstCandleEnd minuteOfDay
	holidays       map[string]bool
}

// NewSchedule builds a schedule from config. Fails on an unknown timezone,
// malformed clock times or holiday dates.
func NewSchedule(cfg Config) (*Schedule, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	s := &Schedule{loc: loc, holidays: make(map[string]bool, len(cfg.Holidays))}
	if s.open, err = parseClock(cfg.OpenTime); err != nil {
		return nil, err
	}
	if s.close, err = parseClock(cfg.CloseTime); err != nil {
		return nil, err
	}
	if s.eodExit, err = parseClock(cfg.EODExitTime); err != nil {
		return nil, err
	}
	if s.firstCandleEnd, err = parseClock(cfg.FirstCandleEnd); err != nil {
		return nil, err
	}
	if s.close <= s.open {
		return nil, fmt.Errorf("close %s not after open %s", cfg.CloseTime, cfg.OpenTime)
	}

	for _, h := range cfg.Holidays {
		if _, err := time.ParseInLocation("2006-01-02", h, loc); err != nil {
			return nil, fmt.Errorf("bad holiday date %q: %w", h, err)
		}
		s.holidays[h] = true
	}
	return s, nil
}

// Location returns the exchange timezone.
func (s *Schedule) Location() *time.Location {
	return s.loc
}

func (s *Schedule) minute(t time.Time) minuteOfDay {
	lt := t.In(s.loc)
	return minuteOfDay(lt.Hour()*60 + lt.Minute())
}

// IsTradingDay reports whether t falls on a weekday that is not a holiday.
func (s *Schedule) IsTradingDay(t time.Time) bool {
	lt := t.In(s.loc)
	if wd := lt.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !s.holidays[lt.Format("2006-01-02")]
}

// IsMarketOpen reports whether t is inside the session on a trading day.
// Open is inclusive, close exclusive.
func (s *Schedule) IsMarketOpen(t time.Time) bool {
	if !s.IsTradingDay(t) {
		return false
	}
	m := s.minute(t)
	return m >= s.open && m < s.close
}

// IsFirstCandle reports whether t is inside the day's opening candle
// window.
func (s *Schedule) IsFirstCandle(t time.Time) bool {
	if !s.IsTradingDay(t) {
		return false
	}
	m := s.minute(t)
	return m >= s.open && m < s.firstCandleEnd
}

// IsAfterEODExit reports whether the square-off cutoff has passed on a
// trading day. The cutoff itself counts as passed.
func (s *Schedule) IsAfterEODExit(t time.Time) bool {
	if !s.IsTradingDay(t) {
		return false
	}
	return s.minute(t) >= s.eodExit
}

// PreviousTradingDay returns the last trading day strictly before t,
// normalized to midnight exchange time.
func (s *Schedule) PreviousTradingDay(t time.Time) time.Time {
	lt := t.In(s.loc)
	day := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, s.loc)
	for {
		day = day.AddDate(0, 0, -1)
		if s.IsTradingDay(day) {
			return day
		}
	}
}

// NextOpen returns the next session open at or after t.
func (s *Schedule) NextOpen(t time.Time) time.Time {
	lt := t.In(s.loc)
	day := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, s.loc)
	openAt := day.Add(time.Duration(s.open) * time.Minute)
	if s.IsTradingDay(day) && !lt.After(openAt) {
		return openAt
	}
	for {
		day = day.AddDate(0, 0, 1)
		if s.IsTradingDay(day) {
			return day.Add(time.Duration(s.open) * time.Minute)
		}
	}
}
