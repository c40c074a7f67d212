// Package pivots derives floor-trader pivot levels and a market-structure
// label from one prior trading session's OHLC.
package pivots

import (
	"errors"
	"fmt"
	"time"
)

// Structure is the directional bias read from pivot asymmetry.
type Structure string

const (
	Bullish Structure = "BULLISH"
	Bearish Structure = "BEARISH"
	Neutral Structure = "NEUTRAL"
)

// DefaultStructureThreshold is the R1-PP vs PP-S1 asymmetry (in price units)
// below which the structure is called NEUTRAL.
const DefaultStructureThreshold = 5.0

// ErrInvalidInput is returned for malformed OHLC data.
var ErrInvalidInput = errors.New("invalid OHLC input")

// SessionOHLC is one prior session's daily bar.
type SessionOHLC struct {
	Open  float64   `json:"open"`
	High  float64   `json:"high"`
	Low   float64   `json:"low"`
	Close float64   `json:"close"`
	Date  time.Time `json:"date"`
}

// Set holds the pivot levels for one instrument/strike/option-type and day.
// Immutable after Calculate.
type Set struct {
	PP float64 `json:"pp"`
	R1 float64 `json:"r1"`
	R2 float64 `json:"r2"`
	R3 float64 `json:"r3"`
	R4 float64 `json:"r4"`
	R5 float64 `json:"r5"`
	S1 float64 `json:"s1"`
	S2 float64 `json:"s2"`
	S3 float64 `json:"s3"`

	Structure Structure `json:"structure"`
}

// Calculate computes standard pivot levels from a prior session's high, low
// and close, and classifies the market structure using threshold.
func Calculate(high, low, close, threshold float64) (Set, error) {
	if high < low {
		return Set{}, fmt.Errorf("%w: high %.2f below low %.2f", ErrInvalidInput, high, low)
	}
	if high <= 0 || low <= 0 || close <= 0 {
		return Set{}, fmt.Errorf("%w: non-positive price (h=%.2f l=%.2f c=%.2f)", ErrInvalidInput, high, low, close)
	}

	pp := (high + low + close) / 3

	s := Set{
		PP: pp,
		R1: 2*pp - low,
		R2: pp + (high - low),
		R3: high + 2*(pp-low),
		S1: 2*pp - high,
		S2: pp - (high - low),
		S3: low - 2*(high-pp),
	}
	s.R4 = s.R3 + (s.R2 - s.R1)
	s.R5 = s.R4 + (s.R3 - s.R2)
	s.Structure = classify(s, threshold)

	return s, nil
}

// FromPreviousSession calculates pivots from a prior session bar, rejecting
// same-day or future data. today is any timestamp within the current day.
func FromPreviousSession(ohlc SessionOHLC, today time.Time, threshold float64) (Set, error) {
	if !ohlc.Date.IsZero() {
		sy, sm, sd := ohlc.Date.Date()
		ty, tm, td := today.Date()
		sessionDay := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
		currentDay := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
		if !sessionDay.Before(currentDay) {
			return Set{}, fmt.Errorf("%w: session date %s is not before %s",
				ErrInvalidInput, sessionDay.Format("2006-01-02"), currentDay.Format("2006-01-02"))
		}
	}
	return Calculate(ohlc.High, ohlc.Low, ohlc.Close, threshold)
}

// classify labels the structure by comparing the R1-PP and PP-S1 distances.
// Differences inside the threshold are NEUTRAL.
func classify(s Set, threshold float64) Structure {
	up := s.R1 - s.PP
	down := s.PP - s.S1

	diff := up - down
	if diff < 0 {
		diff = -diff
	}
	if diff < threshold {
		return Neutral
	}
	if up > down {
		return Bullish
	}
	return Bearish
}
