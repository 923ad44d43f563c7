package main

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"stockquote/internal/quote"
)

type fakeProvider struct {
	q   *quote.Quote
	err error
}

func (f fakeProvider) Name() string { return "fake" }
func (f fakeProvider) Fetch(_ context.Context, _ string) (*quote.Quote, error) {
	return f.q, f.err
}

func TestWriteQuote(t *testing.T) {
	p := fakeProvider{q: &quote.Quote{
		Symbol:    "sh601006",
		Name:      "大秦铁路",
		Price:     decimal.RequireFromString("26.91"),
		PrevClose: decimal.RequireFromString("27.25"),
		Source:    "Sina",
	}}

	rr := httptest.NewRecorder()
	writeQuote(context.Background(), rr, p, "sh601006", 5*time.Second)
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var resp quoteResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Quote == nil || resp.Quote.Symbol != "sh601006" {
		t.Fatalf("unexpected quote: %+v", resp.Quote)
	}
	if resp.Change != "-0.34" || resp.ChangePercent != "-1.25" {
		t.Fatalf("unexpected change fields: %q %q", resp.Change, resp.ChangePercent)
	}
}

func TestWriteQuote_ZeroPrevCloseOmitsChange(t *testing.T) {
	p := fakeProvider{q: &quote.Quote{
		Symbol: "sh601006",
		Name:   "大秦铁路",
		Price:  decimal.RequireFromString("26.91"),
		Source: "Sina",
	}}

	rr := httptest.NewRecorder()
	writeQuote(context.Background(), rr, p, "sh601006", 5*time.Second)
	if rr.Code != 200 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	var raw map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := raw["change"]; ok {
		t.Fatalf("change should be omitted, got %v", raw["change"])
	}
}

func TestWriteQuote_InvalidSymbol(t *testing.T) {
	rr := httptest.NewRecorder()
	writeQuote(context.Background(), rr, fakeProvider{}, "601006", 5*time.Second)
	if rr.Code != 400 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestWriteQuote_UpstreamFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	writeQuote(context.Background(), rr, fakeProvider{err: quote.ErrNetwork}, "sh601006", 5*time.Second)
	if rr.Code != 502 {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}
