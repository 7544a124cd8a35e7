package cardano

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToLovelace(t *testing.T) {
	cases := []struct {
		in   string
		want uint64
	}{
		{"1", 1_000_000},
		{"0.5", 500_000},
		{"1.234567", 1_234_567},
		{"1.2345678", 1_234_567}, // truncated, never rounded
		{"0.0000019", 1},
		{"0", 0},
	}
	for _, tc := range cases {
		ada, err := decimal.NewFromString(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ToLovelace(ada), "input %s", tc.in)
	}
}

func TestToAda(t *testing.T) {
	assert.True(t, ToAda(1_500_000).Equal(decimal.RequireFromString("1.5")))
	assert.True(t, ToAda(1).Equal(decimal.RequireFromString("0.000001")))
}
