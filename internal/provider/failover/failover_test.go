package failover_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"stockquote/internal/provider/failover"
	"stockquote/internal/quote"
)

type stubProvider struct {
	name  string
	q     *quote.Quote
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Fetch(_ context.Context, _ string) (*quote.Quote, error) {
	s.calls++
	return s.q, s.err
}

func TestFetch_FirstSuccessWins(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: "primary", q: &quote.Quote{Symbol: "sh601006", Source: "primary"}}
	fallback := &stubProvider{name: "fallback", q: &quote.Quote{Symbol: "sh601006", Source: "fallback"}}

	q, err := failover.New(primary, fallback).Fetch(context.Background(), "sh601006")
	require.NoError(t, err)
	require.Equal(t, "primary", q.Source)
	require.Zero(t, fallback.calls)
}

func TestFetch_FallsThrough(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: "primary", err: quote.ErrNetwork}
	fallback := &stubProvider{name: "fallback", q: &quote.Quote{Symbol: "sh601006", Source: "fallback"}}

	q, err := failover.New(primary, fallback).Fetch(context.Background(), "sh601006")
	require.NoError(t, err)
	require.Equal(t, "fallback", q.Source)
	require.Equal(t, 1, primary.calls)
}

func TestFetch_AllFail(t *testing.T) {
	t.Parallel()

	primary := &stubProvider{name: "primary", err: quote.ErrNetwork}
	fallback := &stubProvider{name: "fallback", err: errors.New("also down")}

	_, err := failover.New(primary, fallback).Fetch(context.Background(), "sh601006")
	require.EqualError(t, err, "also down")
}

func TestName(t *testing.T) {
	t.Parallel()

	f := failover.New(&stubProvider{name: "Sina"}, &stubProvider{name: "Eastmoney"})
	require.Equal(t, "Sina+Eastmoney", f.Name())
}
