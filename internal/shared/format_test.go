package shared

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestFormatPeso(t *testing.T) {
	require.Equal(t, "₱50.00", FormatPeso(decimal.NewFromInt(50)))
	require.Equal(t, "₱1,250.50", FormatPeso(decimal.NewFromFloat(1250.5)))
	require.Equal(t, "₱12,505.00", FormatPeso(decimal.NewFromInt(12505)))
	require.Equal(t, "₱0.00", FormatPeso(decimal.Zero))
}

func TestFormatQuantity(t *testing.T) {
	require.Equal(t, "5", FormatQuantity(5))
	require.Equal(t, "2.5", FormatQuantity(2.5))
	require.Equal(t, "0.25", FormatQuantity(0.25))
	require.Equal(t, "0", FormatQuantity(0))
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, 3, 14, 15, 4, 0, 0, time.UTC)
	require.Equal(t, ts.Local().Format("Jan 2, 2006 3:04 PM"), FormatDate(ts))
}
