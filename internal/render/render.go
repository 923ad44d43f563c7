// Package render turns a Quote snapshot into the human-readable report.
package render

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"stockquote/internal/quote"
	"stockquote/internal/ticker"
)

// groups prints integers with thousands separators (22,114,263).
var groups = message.NewPrinter(language.English)

const rule = "--------------------------------------------------"

// Detail writes the full report: header, price block, computed change,
// both order-book ladders, volume and turnover. A quote without a positive
// previous close gets N/A change rows instead of an error.
func Detail(w io.Writer, q *quote.Quote) {
	header := fmt.Sprintf("%s (%s)", q.Name, q.Symbol)
	if tk, err := ticker.Parse(q.Symbol); err == nil {
		header += " " + tk.Exchange.String()
	}
	fmt.Fprintln(w, header)
	if q.Date != "" || q.Time != "" {
		fmt.Fprintf(w, "%s %s\n", q.Date, q.Time)
	}
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "%-12s%s\n", "Current:", q.Price.StringFixed(2))
	fmt.Fprintf(w, "%-12s%s\n", "Open:", q.Open.StringFixed(2))
	fmt.Fprintf(w, "%-12s%s\n", "Prev Close:", q.PrevClose.StringFixed(2))
	fmt.Fprintf(w, "%-12s%s\n", "High:", q.High.StringFixed(2))
	fmt.Fprintf(w, "%-12s%s\n", "Low:", q.Low.StringFixed(2))

	changeStr, pctStr := changeStrings(q)
	fmt.Fprintf(w, "%-12s%s\n", "Change:", changeStr)
	fmt.Fprintf(w, "%-12s%s\n", "Change %:", pctStr)

	if len(q.Bids) > 0 || len(q.Asks) > 0 {
		fmt.Fprintln(w, rule)
		writeLadder(w, "Bids", "bid", q.Bids)
		writeLadder(w, "Asks", "ask", q.Asks)
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-12s%s shares\n", "Volume:", groups.Sprintf("%d", q.Volume))
	fmt.Fprintf(w, "%-12s%s yuan\n", "Turnover:", money(q.Turnover))
}

// Brief writes the one-line report: name, price, signed change percent.
func Brief(w io.Writer, q *quote.Quote) {
	_, pctStr := changeStrings(q)
	fmt.Fprintf(w, "%s: %s %s\n", q.Name, q.Price.StringFixed(2), pctStr)
}

func changeStrings(q *quote.Quote) (string, string) {
	change, err := q.Change()
	if errors.Is(err, quote.ErrZeroPrevClose) {
		return "N/A", "N/A"
	}
	pct, _ := q.ChangePercent()
	return signedFixed(change), signedFixed(pct) + "%"
}

// signedFixed renders with an explicit + on non-negative values,
// matching the convention of the report.
func signedFixed(d decimal.Decimal) string {
	s := d.StringFixed(2)
	if !d.IsNegative() {
		s = "+" + s
	}
	return s
}

func writeLadder(w io.Writer, title, prefix string, levels []quote.Level) {
	if len(levels) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for i, l := range levels {
		if l.Volume == 0 && l.Price.IsZero() {
			continue
		}
		fmt.Fprintf(w, "  %s%d: %s shares @ %s\n", prefix, i+1, groups.Sprintf("%d", l.Volume), l.Price.StringFixed(2))
	}
}

func money(d decimal.Decimal) string {
	whole := d.Truncate(0)
	s := groups.Sprintf("%d", whole.IntPart())
	if frac := d.Sub(whole).Abs(); !frac.IsZero() {
		s += strings.TrimPrefix(frac.String(), "0")
	}
	if d.IsNegative() && whole.IsZero() {
		s = "-" + s
	}
	return s
}
