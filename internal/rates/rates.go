// Package rates converts catalog prices into the payment currency using the
// National Bank of Ukraine official rate.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"flowerstream/internal/cache"
	applog "flowerstream/internal/log"

	"github.com/shopspring/decimal"
)

var ErrNoRate = errors.New("rate not present in response")

type Client struct {
	URL      string
	Currency string // ISO code looked up in the response, e.g. EUR
	Fallback decimal.Decimal
	TTL      time.Duration
	Cache    cache.Cache // optional
	HTTP     *http.Client
}

func NewClient(url, currency string, fallback float64, ttl time.Duration, c cache.Cache) *Client {
	return &Client{
		URL:      url,
		Currency: strings.ToUpper(currency),
		Fallback: decimal.NewFromFloat(fallback),
		TTL:      ttl,
		Cache:    c,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
	}
}

type nbuRate struct {
	CC   string  `json:"cc"`
	Rate float64 `json:"rate"`
}

// Rate returns units of base currency per one unit of payment currency. Any failure
// to fetch or parse yields the fallback rate.
func (c *Client) Rate(ctx context.Context) decimal.Decimal {
	key := "rate:" + c.Currency
	var cached string
	if c.Cache != nil && c.Cache.Get(ctx, key, &cached) {
		if d, err := decimal.NewFromString(cached); err == nil && d.IsPositive() {
			return d
		}
	}

	rate, err := c.fetch(ctx)
	if err != nil {
		applog.Error(nil, "rates.fetch", err, map[string]any{"currency": c.Currency, "fallback": c.Fallback.String()})
		return c.Fallback
	}
	if c.Cache != nil {
		if err := c.Cache.Set(ctx, key, rate.String(), c.TTL); err != nil {
			applog.Error(nil, "rates.cache.set", err, nil)
		}
	}
	return rate
}

func (c *Client) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rate endpoint returned %d", resp.StatusCode)
	}

	var body []nbuRate
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("decode rate: %w", err)
	}
	for _, r := range body {
		if strings.EqualFold(r.CC, c.Currency) && r.Rate > 0 {
			return decimal.NewFromFloat(r.Rate), nil
		}
	}
	// single-currency queries carry one entry; accept it when cc is omitted
	if len(body) == 1 && body[0].CC == "" && body[0].Rate > 0 {
		return decimal.NewFromFloat(body[0].Rate), nil
	}
	return decimal.Zero, ErrNoRate
}

// MinorUnits converts a base-currency price into integer minor units of the payment
// currency: price / rate rounded to 2 decimals, times 100.
func MinorUnits(price, rate decimal.Decimal) int64 {
	if !rate.IsPositive() {
		return 0
	}
	return price.Div(rate).Round(2).Mul(decimal.NewFromInt(100)).IntPart()
}
