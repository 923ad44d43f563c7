// Package failover chains providers, returning the first successful snapshot.
package failover

import (
	"context"
	"fmt"
	"strings"

	"stockquote/internal/quote"
)

type Provider struct {
	providers []quote.Provider
}

func New(providers ...quote.Provider) *Provider {
	return &Provider{providers: providers}
}

func (f *Provider) Name() string {
	names := make([]string, 0, len(f.providers))
	for _, p := range f.providers {
		names = append(names, p.Name())
	}
	return strings.Join(names, "+")
}

func (f *Provider) Fetch(ctx context.Context, symbol string) (*quote.Quote, error) {
	if len(f.providers) == 0 {
		return nil, fmt.Errorf("no providers configured")
	}
	var lastErr error
	for _, p := range f.providers {
		q, err := p.Fetch(ctx, symbol)
		if err == nil {
			return q, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}
