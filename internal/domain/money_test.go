package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivRoundHalfEven(t *testing.T) {
	tests := []struct {
		n, d, want int64
	}{
		{10, 4, 2},  // 2.5 -> 2
		{14, 4, 4},  // 3.5 -> 4
		{11, 4, 3},  // 2.75 -> 3
		{9, 4, 2},   // 2.25 -> 2
		{-10, 4, -2},
		{-14, 4, -4},
		{-11, 4, -3},
		{12, 4, 3},
		{7, -2, -4}, // -3.5 -> -4
	}
	for _, tc := range tests {
		require.Equalf(t, tc.want, DivRoundHalfEven(tc.n, tc.d), "%d/%d", tc.n, tc.d)
	}
}

func TestMoney_MulBasisPoints(t *testing.T) {
	require.Equal(t, Money(12500), Money(10000).MulBasisPoints(12500))
	// 0.05 * 8.25% = 0.4125 cents
	require.Equal(t, Money(0), Money(5).MulBasisPoints(825))
	// 2.50 * 1.5 = 3.75
	require.Equal(t, Money(375), Money(250).MulBasisPoints(15000))
}

func TestMoney_StringAndJSON(t *testing.T) {
	require.Equal(t, "1234.50", Money(123450).String())
	require.Equal(t, "-0.05", Money(-5).String())

	b, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: 700})
	require.NoError(t, err)
	require.JSONEq(t, `{"total": 7.00}`, string(b))
	require.Contains(t, string(b), "7.00")

	var out struct {
		Total Money `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total": 12.5}`), &out))
	require.Equal(t, Money(1250), out.Total)
}

func TestParseMoney(t *testing.T) {
	m, err := ParseMoney("99")
	require.NoError(t, err)
	require.Equal(t, Dollars(99, 0), m)

	m, err = ParseMoney("-3.07")
	require.NoError(t, err)
	require.Equal(t, Money(-307), m)

	_, err = ParseMoney("1.234")
	require.Error(t, err)
	_, err = ParseMoney("abc")
	require.Error(t, err)
	_, err = ParseMoney("")
	require.Error(t, err)

	for _, bad := range []string{"1.-5", "1.+5", "--5", "+5", "-+5", ".50", "1. 5"} {
		_, err = ParseMoney(bad)
		require.Errorf(t, err, "input %q", bad)
	}

	m, err = ParseMoney("0.5")
	require.NoError(t, err)
	require.Equal(t, Money(50), m)
}
