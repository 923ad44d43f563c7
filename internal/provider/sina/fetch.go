package sina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
	"stockquote/internal/quote"
)

// minFields is the shortest payload worth parsing: name, four price fields,
// best bid/ask, volume, turnover, five bid levels, five ask levels, date, time.
const minFields = 32

const maxBodyBytes = 1 << 20

// Fetch retrieves the snapshot for one symbol.
// The endpoint answers GET <base>/list=<symbol> with a GBK-encoded
// javascript assignment: var hq_str_<symbol>="field0,field1,...";
func (c *Client) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	body, err := c.Raw(ctx, symbol)
	if err != nil {
		return nil, err
	}
	q, err := parsePayload(symbol, body)
	if err != nil {
		return nil, err
	}
	q.Source = c.Name()
	q.ReceivedAt = time.Now().UTC()
	return q, nil
}

// Raw returns the UTF-8 decoded response body without parsing it.
func (c *Client) Raw(ctx context.Context, symbol string) (string, error) {
	url := fmt.Sprintf("%s/list=%s", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	for key, values := range c.header {
		for _, value := range values {
			if req.Header.Get(key) == "" {
				req.Header.Set(key, value)
			}
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", quote.ErrNetwork, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: GET %s -> %d", quote.ErrNetwork, url, res.StatusCode)
	}

	// The body is GBK; convert to UTF-8 before parsing.
	decoded := transform.NewReader(io.LimitReader(res.Body, maxBodyBytes), simplifiedchinese.GBK.NewDecoder())
	b, err := io.ReadAll(decoded)
	if err != nil {
		return "", fmt.Errorf("%w: decoding body: %v", quote.ErrParse, err)
	}
	return string(b), nil
}

func parsePayload(symbol, body string) (*quote.Quote, error) {
	line := strings.TrimSpace(body)
	preamble := "var hq_str_" + symbol + "="
	if !strings.HasPrefix(line, preamble) {
		return nil, fmt.Errorf("%w: unexpected preamble %q", quote.ErrParse, truncate(line, 48))
	}
	payload := strings.TrimPrefix(line, preamble)
	payload = strings.TrimSuffix(payload, ";")
	payload = strings.Trim(payload, "\"")
	if payload == "" {
		// Suspended or unlisted tickers come back as var hq_str_x="".
		return nil, fmt.Errorf("%w: empty quote payload for %s", quote.ErrParse, symbol)
	}

	fields := strings.Split(payload, ",")
	if len(fields) < minFields {
		return nil, fmt.Errorf("%w: got %d fields, want at least %d", quote.ErrParse, len(fields), minFields)
	}

	p := &fieldParser{fields: fields}
	q := &quote.Quote{
		Symbol:    symbol,
		Name:      fields[0],
		Open:      p.dec(1, "open"),
		PrevClose: p.dec(2, "prev close"),
		Price:     p.dec(3, "price"),
		High:      p.dec(4, "high"),
		Low:       p.dec(5, "low"),
		Bid:       p.dec(6, "bid"),
		Ask:       p.dec(7, "ask"),
		Volume:    p.int64(8, "volume"),
		Turnover:  p.dec(9, "turnover"),
		Date:      fields[30],
		Time:      fields[31],
	}
	for i := 0; i < 5; i++ {
		q.Bids = append(q.Bids, quote.Level{
			Volume: p.int64(10+2*i, fmt.Sprintf("bid%d volume", i+1)),
			Price:  p.dec(11+2*i, fmt.Sprintf("bid%d price", i+1)),
		})
		q.Asks = append(q.Asks, quote.Level{
			Volume: p.int64(20+2*i, fmt.Sprintf("ask%d volume", i+1)),
			Price:  p.dec(21+2*i, fmt.Sprintf("ask%d price", i+1)),
		})
	}
	if p.err != nil {
		return nil, p.err
	}
	return q, nil
}

// fieldParser converts positional payload fields, keeping the first error.
type fieldParser struct {
	fields []string
	err    error
}

func (p *fieldParser) dec(i int, name string) decimal.Decimal {
	if p.err != nil {
		return decimal.Decimal{}
	}
	v, err := decimal.NewFromString(strings.TrimSpace(p.fields[i]))
	if err != nil {
		p.err = fmt.Errorf("%w: field %s: %q", quote.ErrParse, name, p.fields[i])
		return decimal.Decimal{}
	}
	return v
}

func (p *fieldParser) int64(i int, name string) int64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(p.fields[i]), 10, 64)
	if err != nil {
		p.err = fmt.Errorf("%w: field %s: %q", quote.ErrParse, name, p.fields[i])
		return 0
	}
	return v
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
