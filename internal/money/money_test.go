package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFloat(t *testing.T) {
	tests := []struct {
		name    string
		dollars float64
		want    Cents
	}{
		{"zero", 0, 0},
		{"exact cents", 3.10, 310},
		{"sub dollar", 0.75, 75},
		{"large", 12.99, 1299},
		{"float drift", 0.1 + 0.2, 30},
		{"three decimals rounds up", 1.006, 101},
		{"three decimals rounds down", 1.004, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromFloat(tt.dollars))
		})
	}
}

func TestCents_Mul(t *testing.T) {
	// 2 x $3.10 + 1 x $1.25 must come out exact, never 7.449999...
	assert.Equal(t, Cents(620), Cents(310).Mul(2))
	assert.Equal(t, Cents(125), Cents(125).Mul(1))
	assert.Equal(t, Cents(745), Cents(310).Mul(2)+Cents(125).Mul(1))
}

func TestCents_Percent(t *testing.T) {
	tests := []struct {
		name string
		c    Cents
		rate int
		want Cents
	}{
		{"13 percent of 7.45 rounds up", 745, 13, 97},   // 96.85
		{"13 percent of 1.00", 100, 13, 13},
		{"zero rate", 745, 0, 0},
		{"half cent rounds up", 50, 13, 7},              // 6.5
		{"zero amount", 0, 13, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Percent(tt.rate))
		})
	}
}

func TestCents_Formatting(t *testing.T) {
	assert.Equal(t, "7.45", Cents(745).String())
	assert.Equal(t, "$7.45", Cents(745).Display())
	assert.Equal(t, "0.00", Cents(0).String())
	assert.Equal(t, "0.05", Cents(5).String())
	assert.Equal(t, "3.10", Cents(310).String())
	assert.Equal(t, "-1.25", Cents(-125).String())
}

func TestCents_JSON(t *testing.T) {
	data, err := json.Marshal(Cents(310))
	require.NoError(t, err)
	assert.Equal(t, "3.10", string(data))

	var c Cents
	require.NoError(t, json.Unmarshal([]byte("3.10"), &c))
	assert.Equal(t, Cents(310), c)

	require.NoError(t, json.Unmarshal([]byte(`"7.45"`), &c))
	assert.Equal(t, Cents(745), c)

	assert.Error(t, json.Unmarshal([]byte(`"not money"`), &c))
}
