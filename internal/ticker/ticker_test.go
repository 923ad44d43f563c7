package ticker_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
	"stockquote/internal/quote"
	"stockquote/internal/ticker"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tk, err := ticker.Parse("sh601006")
	require.NoError(t, err)
	require.Equal(t, "sh601006", tk.Symbol)
	require.Equal(t, "601006", tk.Code)
	require.Equal(t, ticker.Shanghai, tk.Exchange)
	require.Equal(t, "Shanghai", tk.Exchange.String())

	tk, err = ticker.Parse("sz000001")
	require.NoError(t, err)
	require.Equal(t, ticker.Shenzhen, tk.Exchange)
	require.Equal(t, "Shenzhen", tk.Exchange.String())
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"",
		"601006",
		"sh",
		"sz",
		"SH601006",
		"bj430047",
		"sh60100a",
		"sh601006 ",
		" sh601006",
		"shsz601006",
		"sh-601006",
	} {
		_, err := ticker.Parse(s)
		require.ErrorIsf(t, err, quote.ErrInvalidTicker, "input %q", s)
	}
}

func TestParse_AcceptsAllWellFormedSymbols(t *testing.T) {
	t.Parallel()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("every sh/sz + digits symbol parses", prop.ForAll(
		func(prefix string, digits []uint8) bool {
			symbol := prefix
			for _, d := range digits {
				symbol += string(rune('0' + d%10))
			}
			tk, err := ticker.Parse(symbol)
			return err == nil && tk.Symbol == symbol && string(tk.Exchange) == prefix
		},
		gen.OneConstOf("sh", "sz"),
		gen.SliceOf(gen.UInt8()).SuchThat(func(v []uint8) bool { return len(v) > 0 }),
	))

	properties.TestingRun(t)
}
