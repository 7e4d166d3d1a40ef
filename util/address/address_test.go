package address

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodePrincipal_KnownValues(t *testing.T) {
	require.Equal(t, "2vxsx-fae", EncodePrincipal([]byte{0x04}))
	require.Equal(t, "aaaaa-aa", EncodePrincipal(nil))
}

func TestDecodePrincipal_RoundTrip(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	text := EncodePrincipal(raw)

	got, err := DecodePrincipal(text)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}

func TestDecodePrincipal_Rejects(t *testing.T) {
	for _, in := range []string{"", "not a principal", "2vxsx-fab", "2VXSX-FAE-"} {
		_, err := DecodePrincipal(in)
		require.ErrorIs(t, err, ErrInvalidPrincipal, in)
	}
}

func TestFromPrincipal_Anonymous(t *testing.T) {
	a, err := FromPrincipal("2vxsx-fae", DefaultSubaccount)
	require.NoError(t, err)
	require.Equal(t, "1c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79", a.Hex())

	parsed, err := ParseHex(a.Hex())
	require.NoError(t, err)
	require.Equal(t, a, parsed)
}

func TestFromPrincipal_SubaccountChangesAddress(t *testing.T) {
	var sub Subaccount
	sub[31] = 1

	a, err := FromPrincipal("2vxsx-fae", DefaultSubaccount)
	require.NoError(t, err)
	b, err := FromPrincipal("2vxsx-fae", sub)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestParseHex_BadChecksum(t *testing.T) {
	_, err := ParseHex("0c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79")
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = ParseHex("abcd")
	require.ErrorIs(t, err, ErrInvalidAddress)
}

func TestEqual(t *testing.T) {
	a, err := FromPrincipal("2vxsx-fae", DefaultSubaccount)
	require.NoError(t, err)
	b, err := FromPrincipal(EncodePrincipal([]byte{9, 9, 9}), DefaultSubaccount)
	require.NoError(t, err)

	require.True(t, Equal(a.Bytes(), append([]byte(nil), a.Bytes()...)))
	require.False(t, Equal(a.Bytes(), b.Bytes()))
	require.False(t, Equal(nil, nil))
	require.False(t, Equal(a.Bytes(), a.Bytes()[:31]))
}
