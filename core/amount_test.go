package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint256Valid(t *testing.T) {
	v, ok := ParseUint256("1000000000000")
	require.True(t, ok)
	require.Equal(t, uint64(1000000000000), v.Uint64())
}

func TestParseUint256Invalid(t *testing.T) {
	_, ok := ParseUint256("not-a-number")
	require.False(t, ok)
}
