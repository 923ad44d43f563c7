package quote

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Error kinds reported by the fetch/format pipeline. Callers match them with errors.Is.
var (
	ErrInvalidTicker = errors.New("invalid ticker")
	ErrNetwork       = errors.New("quote request failed")
	ErrParse         = errors.New("malformed quote payload")
	ErrZeroPrevClose = errors.New("previous close is zero")
)

// Level is one rung of the order-book ladder: volume in shares at a price.
type Level struct {
	Volume int64           `json:"volume"`
	Price  decimal.Decimal `json:"price"`
}

// Quote is the normalized snapshot shape returned by all providers.
// Prices are decimals to avoid float rounding on money values.
type Quote struct {
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	Open       decimal.Decimal `json:"open"`
	PrevClose  decimal.Decimal `json:"prev_close"`
	Price      decimal.Decimal `json:"price"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Bid        decimal.Decimal `json:"bid"`
	Ask        decimal.Decimal `json:"ask"`
	Volume     int64           `json:"volume"`
	Turnover   decimal.Decimal `json:"turnover"`
	Bids       []Level         `json:"bids,omitempty"`
	Asks       []Level         `json:"asks,omitempty"`
	Date       string          `json:"date,omitempty"`
	Time       string          `json:"time,omitempty"`
	Source     string          `json:"source"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Change returns Price - PrevClose. ErrZeroPrevClose when there is no
// previous close to compare against (new listings, suspended tickers).
func (q *Quote) Change() (decimal.Decimal, error) {
	if !q.PrevClose.IsPositive() {
		return decimal.Decimal{}, ErrZeroPrevClose
	}
	return q.Price.Sub(q.PrevClose), nil
}

// ChangePercent returns the change as a percentage of the previous close.
func (q *Quote) ChangePercent() (decimal.Decimal, error) {
	change, err := q.Change()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return change.Div(q.PrevClose).Mul(decimal.NewFromInt(100)), nil
}

type Provider interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (*Quote, error)
}
