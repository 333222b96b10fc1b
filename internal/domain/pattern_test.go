package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCachePattern(t *testing.T) {
	loc := NewDeliveryLocation("123 Main St, Reno, NV")

	require.True(t, CompilePattern("").Matches(loc.Fingerprint, loc.Normalized))
	require.True(t, CompilePattern("*").All())
	require.True(t, CompilePattern("*reno*").Matches(loc.Fingerprint, loc.Normalized))
	require.True(t, CompilePattern("123 MAIN  st*").Matches(loc.Fingerprint, loc.Normalized))
	require.True(t, CompilePattern(loc.Fingerprint).Matches(loc.Fingerprint, loc.Normalized))
	require.False(t, CompilePattern("*sparks*").Matches(loc.Fingerprint, loc.Normalized))
	require.False(t, CompilePattern("12?").Matches(loc.Fingerprint, loc.Normalized))
}

func TestCachePattern_SQLLike(t *testing.T) {
	require.Equal(t, "%", CompilePattern("*").SQLLike())
	require.Equal(t, "%reno%", CompilePattern("*Reno*").SQLLike())
	require.Equal(t, `100\% main_`, CompilePattern("100% MAIN?").SQLLike())
}
