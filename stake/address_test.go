// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	hexStr := "0x0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f20"

	addr, err := ParseAddress(hexStr)
	require.NoError(t, err)
	assert.Equal(t, hexStr, addr.String())
	assert.Equal(t, byte(1), addr[0])
	assert.Equal(t, byte(0x20), addr[31])
	assert.Equal(t, "0x01020304…1d1e1f20", addr.AbbrevString())

	noPrefix, err := ParseAddress(hexStr[2:])
	require.NoError(t, err)
	assert.Equal(t, addr, noPrefix)

	_, err = ParseAddress("0x1234")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("zz" + hexStr[2:])
	assert.EqualError(t, err, "invalid prefix")

	assert.Panics(t, func() { MustParseAddress("bad") })
}

func TestAddressJSON(t *testing.T) {
	addr := BytesToAddress([]byte("alice"))

	data, err := json.Marshal(struct {
		Owner Address `json:"owner"`
	}{addr})
	require.NoError(t, err)
	assert.Equal(t, `{"owner":"`+addr.String()+`"}`, string(data))

	var decoded struct {
		Owner Address `json:"owner"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, addr, decoded.Owner)

	assert.Error(t, json.Unmarshal([]byte(`{"owner":"0x00"}`), &decoded))
}

func TestBytesToAddress(t *testing.T) {
	short := BytesToAddress([]byte{0xaa})
	assert.Equal(t, byte(0xaa), short[31])
	assert.False(t, short.IsZero())
	assert.True(t, Address{}.IsZero())

	long := make([]byte, 40)
	long[39] = 0xbb
	long[0] = 0xcc
	cropped := BytesToAddress(long)
	assert.Equal(t, byte(0xbb), cropped[31])
	assert.Equal(t, byte(0), cropped[0])
}

func TestDerivedAddresses(t *testing.T) {
	policy := PolicyAddress()
	assert.Equal(t, policy, PolicyAddress())

	asset := BytesToAddress([]byte("asset"))
	other := BytesToAddress([]byte("other"))
	assert.NotEqual(t, CustodyAddress(asset, policy), CustodyAddress(other, policy))
	assert.NotEqual(t, RewardMintAddress(policy), policy)

	owner := BytesToAddress([]byte("owner"))
	assert.NotEqual(t, HoldingAddress(owner, asset), HoldingAddress(asset, owner))
	assert.NotEqual(t, UserAddress(owner), owner)

	assert.Equal(t, Blake2b([]byte("ab")), Blake2b([]byte("a"), []byte("b")))
}
