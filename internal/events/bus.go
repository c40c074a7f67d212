// Package events carries engine lifecycle events to in-process listeners
// such as the websocket hub and the notification manager.
package events

import (
	"sync"
	"time"
)

// EventType identifies a kind of engine event.
type EventType string

const (
	EventDayStarted   EventType = "DAY_STARTED"
	EventDayEnded     EventType = "DAY_ENDED"
	EventSignal       EventType = "SIGNAL"
	EventTradeOpened  EventType = "TRADE_OPENED"
	EventTradeClosed  EventType = "TRADE_CLOSED"
	EventCycleSkipped EventType = "CYCLE_SKIPPED"
	EventDailySummary EventType = "DAILY_SUMMARY"
	EventError        EventType = "ERROR"
)

// Event is one engine event.
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// Subscriber handles events. Subscribers run on their own goroutine per
// event and must not assume ordering across event types.
type Subscriber func(Event)

// EventBus fans events out to subscribers.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	allSubs     []Subscriber
}

// NewEventBus creates an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
	}
}

// Subscribe registers a subscriber for one event type.
func (eb *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// SubscribeAll registers a subscriber for every event.
func (eb *EventBus) SubscribeAll(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.allSubs = append(eb.allSubs, subscriber)
}

// Publish delivers an event. Each subscriber runs on its own goroutine so a
// slow notifier cannot stall the decision loop.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	for _, sub := range eb.subscribers[event.Type] {
		go sub(event)
	}
	for _, sub := range eb.allSubs {
		go sub(event)
	}
}

// PublishSignal publishes an accepted entry signal.
func (eb *EventBus) PublishSignal(symbol string, scenario int, entryPrice, stopLoss, target float64, firstCandle bool) {
	eb.Publish(Event{
		Type: EventSignal,
		Data: map[string]interface{}{
			"symbol":       symbol,
			"scenario":     scenario,
			"entry_price":  entryPrice,
			"stop_loss":    stopLoss,
			"target":       target,
			"first_candle": firstCandle,
		},
	})
}

// PublishTradeOpened publishes a confirmed entry fill.
func (eb *EventBus) PublishTradeOpened(tradeID, symbol string, scenario int, entryPrice, stopLoss, target float64) {
	eb.Publish(Event{
		Type: EventTradeOpened,
		Data: map[string]interface{}{
			"trade_id":    tradeID,
			"symbol":      symbol,
			"scenario":    scenario,
			"entry_price": entryPrice,
			"stop_loss":   stopLoss,
			"target":      target,
		},
	})
}

// PublishTradeClosed publishes a confirmed exit fill.
func (eb *EventBus) PublishTradeClosed(tradeID, symbol, reason string, entryPrice, exitPrice, pnlPoints, pnlRupees float64) {
	eb.Publish(Event{
		Type: EventTradeClosed,
		Data: map[string]interface{}{
			"trade_id":    tradeID,
			"symbol":      symbol,
			"exit_reason": reason,
			"entry_price": entryPrice,
			"exit_price":  exitPrice,
			"pnl_points":  pnlPoints,
			"pnl_rupees":  pnlRupees,
		},
	})
}

// PublishCycleSkipped publishes a skipped decision cycle with its cause.
func (eb *EventBus) PublishCycleSkipped(reason string) {
	eb.Publish(Event{
		Type: EventCycleSkipped,
		Data: map[string]interface{}{"reason": reason},
	})
}

// PublishError publishes a non-fatal engine error.
func (eb *EventBus) PublishError(source string, err error) {
	eb.Publish(Event{
		Type: EventError,
		Data: map[string]interface{}{
			"source": source,
			"error":  err.Error(),
		},
	})
}
