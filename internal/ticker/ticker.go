// Package ticker validates market-prefixed A-share symbols.
package ticker

import (
	"fmt"
	"regexp"

	"stockquote/internal/quote"
)

type Exchange string

const (
	Shanghai Exchange = "sh"
	Shenzhen Exchange = "sz"
)

func (e Exchange) String() string {
	switch e {
	case Shanghai:
		return "Shanghai"
	case Shenzhen:
		return "Shenzhen"
	}
	return string(e)
}

// Ticker is a validated symbol like sh601006 or sz000001.
type Ticker struct {
	Symbol   string
	Code     string
	Exchange Exchange
}

var symbolPattern = regexp.MustCompile(`^(sh|sz)(\d+)$`)

// Parse validates s against the sh/sz + digits format.
func Parse(s string) (Ticker, error) {
	m := symbolPattern.FindStringSubmatch(s)
	if m == nil {
		return Ticker{}, fmt.Errorf("%w: %q (want sh or sz followed by digits)", quote.ErrInvalidTicker, s)
	}
	return Ticker{Symbol: s, Exchange: Exchange(m[1]), Code: m[2]}, nil
}
