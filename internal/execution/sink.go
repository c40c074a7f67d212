// Package execution carries entry and exit decisions to an order sink.
// The decision loop treats the sink as the source of truth for fills: a
// position only changes state once the sink acknowledges.
package execution

import (
	"context"
	"errors"
	"time"
)

// ErrRejected is returned when the sink refuses an order.
var ErrRejected = errors.New("order rejected")

// OpenOrder asks the sink to buy one lot of an option.
type OpenOrder struct {
	TradeID  string
	Symbol   string
	Quantity int // lot size multiples
	Price    float64
	Scenario int
	Time     time.Time
}

// CloseOrder asks the sink to sell out the open position.
type CloseOrder struct {
	TradeID  string
	Symbol   string
	Quantity int
	Price    float64
	Reason   string
	Time     time.Time
}

// Fill is the sink's acknowledgement of an executed order.
type Fill struct {
	TradeID  string
	Symbol   string
	Price    float64
	Quantity int
	Time     time.Time
}

// Sink executes orders. Implementations must be idempotent on TradeID so a
// retried close after a partial failure does not double-sell.
type Sink interface {
	Open(ctx context.Context, o OpenOrder) (Fill, error)
	Close(ctx context.Context, o CloseOrder) (Fill, error)
}
