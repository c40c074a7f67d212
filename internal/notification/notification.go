// Package notification sends trade alerts to external channels. Providers
// implement Notifier; the Manager fans one message out to all of them.
package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pivot-trading-engine/internal/database"
	"pivot-trading-engine/internal/logging"
	"pivot-trading-engine/internal/position"
)

// NotificationType classifies outbound messages.
type NotificationType string

const (
	NotifySignal     NotificationType = "signal"
	NotifyTradeOpen  NotificationType = "trade_open"
	NotifyTradeClose NotificationType = "trade_close"
	NotifySummary    NotificationType = "summary"
	NotifyError      NotificationType = "error"
	NotifyInfo       NotificationType = "info"
)

// Notification is one outbound message.
type Notification struct {
	Type      NotificationType
	Title     string
	Message   string
	Timestamp time.Time
}

// Notifier is a delivery channel for notifications.
type Notifier interface {
	Send(notification *Notification) error
	Name() string
	IsEnabled() bool
}

// Manager fans notifications out to all enabled providers.
type Manager struct {
	notifiers []Notifier
	log       *logging.Logger
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{log: logging.WithComponent("notification")}
}

// AddNotifier registers a provider.
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Send delivers to every enabled provider. A failing provider is logged
// and does not block the others; the last error is returned.
func (m *Manager) Send(n *Notification) error {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	var lastErr error
	for _, notifier := range m.notifiers {
		if !notifier.IsEnabled() {
			continue
		}
		if err := notifier.Send(n); err != nil {
			m.log.Warn("Notification delivery failed", "provider", notifier.Name(), "error", err)
			lastErr = err
		}
	}
	return lastErr
}

// SendEntrySignal announces a confirmed entry.
func (m *Manager) SendEntrySignal(pos position.Position, sizePct float64) error {
	entryType := "Intraday"
	if pos.FirstCandleEntry {
		entryType = "First Candle"
	}

	risk := (pos.EntryPrice - pos.StopLoss) * float64(pos.LotSize)
	reward := (pos.Target - pos.EntryPrice) * float64(pos.LotSize)

	msg := fmt.Sprintf(
		"Symbol: `%s`\nStrike: %d %s\nEntry: Rs %.2f (%s, %s)\n"+
			"Stop Loss: Rs %.2f | Target: Rs %.2f\nLot Size: %d\n"+
			"Pivots: PP %.2f | R1 %.2f | R2 %.2f | R3 %.2f\n"+
			"Candle Size: %.2f%%\nRisk: Rs %.2f | Reward: Rs %.2f\nTrade ID: `%s`",
		pos.Symbol, pos.Strike, pos.OptionType, pos.EntryPrice, pos.Scenario, entryType,
		pos.StopLoss, pos.Target, pos.LotSize,
		pos.Pivots.PP, pos.Pivots.R1, pos.Pivots.R2, pos.Pivots.R3,
		sizePct, risk, reward, pos.TradeID,
	)

	return m.Send(&Notification{
		Type:    NotifySignal,
		Title:   fmt.Sprintf("🚀 Entry: %s", pos.Symbol),
		Message: msg,
	})
}

// SendExitSignal announces a confirmed exit.
func (m *Manager) SendExitSignal(trade position.ClosedTrade) error {
	emoji := "✅"
	outcome := "PROFIT"
	if trade.PnLPoints <= 0 {
		emoji = "❌"
		outcome = "LOSS"
	}

	duration := trade.ExitTime.Sub(trade.EntryTime).Round(time.Minute)
	msg := fmt.Sprintf(
		"Symbol: `%s`\nEntry: Rs %.2f @ %s\nExit: Rs %.2f @ %s\n"+
			"Duration: %s (%d candles)\nP&L: %+.2f points / Rs %+.2f\n"+
			"Reason: %s\nTrade ID: `%s`",
		trade.Symbol,
		trade.EntryPrice, trade.EntryTime.Format("15:04:05"),
		trade.ExitPrice, trade.ExitTime.Format("15:04:05"),
		duration, trade.CandlesHeld, trade.PnLPoints, trade.PnLRupees,
		strings.ReplaceAll(string(trade.ExitReason), "_", " "), trade.TradeID,
	)

	return m.Send(&Notification{
		Type:    NotifyTradeClose,
		Title:   fmt.Sprintf("%s Exit %s: %s", emoji, outcome, trade.Symbol),
		Message: msg,
	})
}

// SendDailySummary announces the end-of-day statistics.
func (m *Manager) SendDailySummary(s *database.DailySummary) error {
	emoji := "➖"
	if s.GrossPnL > 0 {
		emoji = "✅"
	} else if s.GrossPnL < 0 {
		emoji = "❌"
	}

	msg := fmt.Sprintf(
		"Date: %s\nTrades: %d (W %d / L %d, %.1f%%)\nGross P&L: Rs %+.2f\n"+
			"Scenarios: S1 %d | S2 %d | S3 %d\n"+
			"Entries: first candle %d, intraday %d\n"+
			"Exits: target %d, stop %d, timeout %d, EOD %d",
		s.Date.Format("2006-01-02"),
		s.TotalTrades, s.Wins, s.Losses, s.WinRate, s.GrossPnL,
		s.Scenario1Trades, s.Scenario2Trades, s.Scenario3Trades,
		s.FirstCandleEntries, s.IntradayEntries,
		s.TargetsHit, s.StopLosses, s.Timeouts, s.EODExits,
	)

	return m.Send(&Notification{
		Type:    NotifySummary,
		Title:   fmt.Sprintf("📊 Daily Summary %s", emoji),
		Message: msg,
	})
}

// SendError announces a non-fatal engine error.
func (m *Manager) SendError(title, message string) error {
	return m.Send(&Notification{
		Type:    NotifyError,
		Title:   fmt.Sprintf("⚠️ %s", title),
		Message: message,
	})
}

// TelegramNotifier delivers notifications through the Telegram bot API.
type TelegramNotifier struct {
	botToken string
	chatID   string
	enabled  bool
	baseURL  string
	client   *http.Client
}

// TelegramConfig holds Telegram credentials.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	Enabled  bool
}

// NewTelegramNotifier creates a Telegram provider. Missing credentials
// silently disable it.
func NewTelegramNotifier(cfg TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		enabled:  cfg.Enabled && cfg.BotToken != "" && cfg.ChatID != "",
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

func (t *TelegramNotifier) IsEnabled() bool { return t.enabled }

// Send posts the notification as a Markdown message.
func (t *TelegramNotifier) Send(n *Notification) error {
	if !t.enabled {
		return nil
	}

	payload := map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       fmt.Sprintf("*%s*\n\n%s", n.Title, n.Message),
		"parse_mode": "Markdown",
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	resp, err := t.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}
	return nil
}
