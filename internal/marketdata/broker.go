package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pivot-trading-engine/internal/market"
	"pivot-trading-engine/internal/pivots"
)

// BrokerFeed fetches market data over the broker's REST API. The broker
// authenticates with an api key plus a daily access token obtained through
// the separate login flow.
type BrokerFeed struct {
	apiKey      string
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewBrokerFeed creates a feed against the broker REST endpoint.
func NewBrokerFeed(apiKey, accessToken, baseURL string) *BrokerFeed {
	return &BrokerFeed{
		apiKey:      apiKey,
		accessToken: accessToken,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

var _ Feed = (*BrokerFeed)(nil)

// brokerCandle is one bar in the broker's historical-data response.
type brokerCandle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

type candlesResponse struct {
	Status string `json:"status"`
	Data   struct {
		Candles []brokerCandle `json:"candles"`
	} `json:"data"`
}

type quoteResponse struct {
	Status string                        `json:"status"`
	Data   map[string]struct {
		LastPrice float64 `json:"last_price"`
	} `json:"data"`
}

func (f *BrokerFeed) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	u := fmt.Sprintf("%s%s?%s", f.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", f.apiKey, f.accessToken))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("broker returned %d for %s: %s", resp.StatusCode, endpoint, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (f *BrokerFeed) candles(ctx context.Context, symbol, interval string, from, to time.Time) ([]brokerCandle, error) {
	params := url.Values{}
	params.Set("from", from.Format("2006-01-02 15:04:05"))
	params.Set("to", to.Format("2006-01-02 15:04:05"))

	var out candlesResponse
	endpoint := fmt.Sprintf("/instruments/historical/%s/%s", url.PathEscape(symbol), interval)
	if err := f.get(ctx, endpoint, params, &out); err != nil {
		return nil, err
	}
	return out.Data.Candles, nil
}

// PreviousSessionOHLC fetches the daily bar for the given trading day.
func (f *BrokerFeed) PreviousSessionOHLC(ctx context.Context, symbol string, day time.Time) (pivots.SessionOHLC, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24 * time.Hour)

	bars, err := f.candles(ctx, symbol, "day", from, to)
	if err != nil {
		return pivots.SessionOHLC{}, err
	}
	if len(bars) == 0 {
		return pivots.SessionOHLC{}, fmt.Errorf("%w: no daily bar for %s on %s", ErrNoData, symbol, day.Format("2006-01-02"))
	}

	b := bars[len(bars)-1]
	return pivots.SessionOHLC{
		Open: b.Open, High: b.High, Low: b.Low, Close: b.Close,
		Date: day,
	}, nil
}

// LatestCandle fetches the most recent completed intraday candle. The
// lookback spans two intervals so a request right after a bar closes still
// finds it.
func (f *BrokerFeed) LatestCandle(ctx context.Context, symbol string, interval time.Duration) (market.Candle, error) {
	now := time.Now()
	bars, err := f.candles(ctx, symbol, intervalName(interval), now.Add(-2*interval), now)
	if err != nil {
		return market.Candle{}, err
	}
	if len(bars) == 0 {
		return market.Candle{}, fmt.Errorf("%w: no %s candle for %s", ErrNoData, intervalName(interval), symbol)
	}

	b := bars[len(bars)-1]
	return market.Candle{
		Open: b.Open, High: b.High, Low: b.Low, Close: b.Close,
		Timestamp: b.Timestamp,
	}, nil
}

// SpotPrice returns the index LTP.
func (f *BrokerFeed) SpotPrice(ctx context.Context, index string) (float64, error) {
	return f.LastTradedPrice(ctx, index)
}

// LastTradedPrice returns the instrument LTP via the quote endpoint.
func (f *BrokerFeed) LastTradedPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("i", symbol)

	var out quoteResponse
	if err := f.get(ctx, "/quote/ltp", params, &out); err != nil {
		return 0, err
	}
	q, ok := out.Data[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: no quote for %s", ErrNoData, symbol)
	}
	return q.LastPrice, nil
}

// intervalName maps a duration onto the broker's interval labels.
func intervalName(d time.Duration) string {
	switch d {
	case time.Minute:
		return "minute"
	case 3 * time.Minute:
		return "3minute"
	case 5 * time.Minute:
		return "5minute"
	case 15 * time.Minute:
		return "15minute"
	case time.Hour:
		return "60minute"
	default:
		return fmt.Sprintf("%dminute", int(d.Minutes()))
	}
}
