// Package eastmoney is a fallback quote provider backed by the
// push2.eastmoney.com snapshot API. It carries fewer fields than Sina
// (no order-book ladder, no bid/ask), so it only serves when Sina is down.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"stockquote/internal/httpx"
	"stockquote/internal/quote"
)

type Config struct {
	Name     string
	Endpoint string
}

type Provider struct {
	cfg    Config
	client *httpx.Client
}

func New(cfg Config, hc *httpx.Client) *Provider {
	if cfg.Name == "" {
		cfg.Name = "Eastmoney"
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://push2.eastmoney.com/api/qt/stock/get"
	}
	return &Provider{cfg: cfg, client: hc}
}

func (p *Provider) Name() string { return p.cfg.Name }

type apiResponse struct {
	Data *apiData `json:"data"`
}

type apiData struct {
	Name      string          `json:"f58"`
	Code      string          `json:"f57"`
	Price     decimal.Decimal `json:"f43"`
	High      decimal.Decimal `json:"f44"`
	Low       decimal.Decimal `json:"f45"`
	Open      decimal.Decimal `json:"f46"`
	Volume    int64           `json:"f47"`
	PrevClose decimal.Decimal `json:"f60"`
	Turnover  decimal.Decimal `json:"f48"`
}

func (p *Provider) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	secid, err := toSecID(symbol)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(p.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	q := u.Query()
	q.Set("secid", secid)
	q.Set("fields", "f43,f44,f45,f46,f47,f48,f57,f58,f60")
	q.Set("ut", "fa5fd1943c7b386f172d6893dbfba10b")
	q.Set("fltt", "2")
	q.Set("invt", "2")
	u.RawQuery = q.Encode()

	res, err := p.client.Get(ctx, u.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", quote.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: GET %s -> %d", quote.ErrNetwork, u.String(), res.StatusCode)
	}

	var payload apiResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", quote.ErrParse, err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("%w: empty response data for %s", quote.ErrParse, symbol)
	}
	if !payload.Data.Price.IsPositive() {
		return nil, fmt.Errorf("%w: no price for %s", quote.ErrParse, symbol)
	}

	return &quote.Quote{
		Symbol:     symbol,
		Name:       payload.Data.Name,
		Open:       payload.Data.Open,
		PrevClose:  payload.Data.PrevClose,
		Price:      payload.Data.Price,
		High:       payload.Data.High,
		Low:        payload.Data.Low,
		Volume:     payload.Data.Volume,
		Turnover:   payload.Data.Turnover,
		Source:     p.cfg.Name,
		ReceivedAt: time.Now().UTC(),
	}, nil
}

// toSecID maps sh/sz symbols to Eastmoney security ids: 1.<code> for
// Shanghai, 0.<code> for Shenzhen.
func toSecID(symbol string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if code, ok := strings.CutPrefix(s, "sh"); ok {
		return "1." + code, nil
	}
	if code, ok := strings.CutPrefix(s, "sz"); ok {
		return "0." + code, nil
	}
	return "", fmt.Errorf("%w: %q", quote.ErrInvalidTicker, symbol)
}
