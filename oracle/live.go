// oracle/live.go
package oracle

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultLiveURL is the public spot ticker endpoint used when no override
// is configured.
const DefaultLiveURL = "https://api.binance.com"

// LiveProvider fetches spot quotes keyed by symbol + quote currency.
// It is best-effort and non-authoritative: every error is returned to the
// Oracle, which masks it with the deterministic generator.
type LiveProvider struct {
	baseURL    string
	quoteCcy   string
	httpClient *http.Client
}

// NewLiveProvider builds a provider against baseURL (DefaultLiveURL when
// empty). Quotes are requested as <SYMBOL><quoteCcy> pairs, e.g. BTCUSDT.
func NewLiveProvider(baseURL, quoteCcy string) *LiveProvider {
	if baseURL == "" {
		baseURL = DefaultLiveURL
	}
	if quoteCcy == "" {
		quoteCcy = "USDT"
	}
	return &LiveProvider{
		baseURL:  baseURL,
		quoteCcy: quoteCcy,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Quote returns the last traded price for symbol against the provider's
// quote currency.
func (lp *LiveProvider) Quote(symbol string) (float64, error) {
	u := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s",
		lp.baseURL, url.QueryEscape(symbol+lp.quoteCcy))

	resp, err := lp.httpClient.Get(u)
	if err != nil {
		return 0, fmt.Errorf("fetch ticker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("ticker %s: HTTP %d", symbol, resp.StatusCode)
	}

	var tr tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return 0, fmt.Errorf("decode ticker: %w", err)
	}

	px, err := strconv.ParseFloat(tr.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ticker price %q: %w", tr.Price, err)
	}
	if px <= 0 {
		return 0, fmt.Errorf("ticker %s: non-positive price %v", symbol, px)
	}
	return px, nil
}
