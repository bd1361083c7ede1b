package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	cases := []struct {
		name        string
		part, whole int64
		want        string
	}{
		{"zero whole", 500, 0, "0"},
		{"exact", 80000, 100000, "80"},
		{"over", 120000, 100000, "120"},
		{"third rounds up", 1, 3, "33.33"},
		{"two thirds", 2, 3, "66.67"},
		{"half-up on fifth digit", 12345, 100000000, "0.01"},
		{"negative away from zero", -1, 3, "-33.33"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Percent(Money{Cents: tc.part}, Money{Cents: tc.whole})
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestDivideMoney(t *testing.T) {
	assert.Equal(t, int64(97), DivideMoney(Money{Cents: 3000}, 31).Cents)  // 96.77 -> 97
	assert.Equal(t, int64(100), DivideMoney(Money{Cents: 3000}, 30).Cents) // exact
	assert.Equal(t, int64(3), DivideMoney(Money{Cents: 5}, 2).Cents)       // 2.5 -> 3
	assert.Equal(t, int64(0), DivideMoney(Money{Cents: 100}, 0).Cents)
}

func TestFormatPercentOneDecimal(t *testing.T) {
	assert.Equal(t, "20.0", FormatPercentOneDecimal(decimal.NewFromInt(20)))
	assert.Equal(t, "33.3", FormatPercentOneDecimal(decimal.RequireFromString("33.33")))
	assert.Equal(t, "66.7", FormatPercentOneDecimal(decimal.RequireFromString("66.65")))
}
