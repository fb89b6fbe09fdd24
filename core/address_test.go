package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAddressRoundTrip(t *testing.T) {
	const s = "0x0000000000000000000000000000000000000001"
	a, err := ParseAddress(s)
	require.NoError(t, err)
	require.Equal(t, s, a.Hex())
	require.Equal(t, byte(1), a[19])
}

func TestParseAddressAcceptsUppercasePrefix(t *testing.T) {
	a, err := ParseAddress("0X00000000000000000000000000000000000000AA")
	require.NoError(t, err)
	require.Equal(t, byte(0xAA), a[19])
}

func TestParseAddressNativeSentinel(t *testing.T) {
	a, err := ParseAddress("0xeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	require.NoError(t, err)
	require.True(t, a.IsNative())
	require.Equal(t, NativeTokenSentinel, a)
}

func TestParseAddressRejectsWrongLength(t *testing.T) {
	_, err := ParseAddress("0x00")
	require.Error(t, err)
}

func TestParseAddressRejectsInvalidHex(t *testing.T) {
	_, err := ParseAddress("0xzz00000000000000000000000000000000000001")
	require.Error(t, err)
}
