package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	require.InDelta(t, 3000.0, LineTotal(3, 1000, 0), 0.001)
	require.InDelta(t, 1600.0, LineTotal(2, 1000, 200), 0.001)
	require.InDelta(t, 0.0, LineTotal(4, 100, 500), 0.001, "discount capped at unit price")
	require.InDelta(t, 0.30, LineTotal(3, 0.10, 0), 0.001, "no float drift on cents")
}

func TestSaleTotal(t *testing.T) {
	require.InDelta(t, 2500.0, SaleTotal([]float64{1600, 1000}, 100), 0.001)
	require.InDelta(t, 0.0, SaleTotal(nil, 0), 0.001)
}

func TestEffectiveDiscount(t *testing.T) {
	require.InDelta(t, 200.0, EffectiveDiscount(1000, 200), 0.001)
	require.InDelta(t, 100.0, EffectiveDiscount(100, 500), 0.001)
}

func TestRound(t *testing.T) {
	require.InDelta(t, 10.01, Round(10.006), 0.0001)
	require.InDelta(t, 10.0, Round(10.004), 0.0001)
}
