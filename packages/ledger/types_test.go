package ledger

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyboard/mintwatch/packages/amount"
)

func TestAddress_FromHex(t *testing.T) {
	address, err := AddressFromHex("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	require.NoError(t, err)
	assert.Equal(t, "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", address.String())
	assert.False(t, address.IsZero())
	assert.True(t, ZeroAddress.IsZero())

	_, err = AddressFromHex("0x1234")
	assert.True(t, errors.Is(err, ErrInvalidAddress))

	_, err = AddressFromHex("0xzz0b86991c6218b36c1d19D4a2e9Eb0cE3606eB4")
	assert.True(t, errors.Is(err, ErrInvalidAddress))
}

func TestAddress_Word(t *testing.T) {
	address, err := AddressFromHex("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)

	word := address.Word()
	require.Len(t, word, amount.WordSize)
	assert.Equal(t, byte(0xaa), word[31])

	decoded, err := AddressFromWord(word)
	require.NoError(t, err)
	assert.Equal(t, address, decoded)
}

func TestMintAction_JSON(t *testing.T) {
	recipient, err := AddressFromHex("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)

	encoded, err := json.Marshal(NewMintAction(recipient, amount.New(2500000)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"recipient":"0x00000000000000000000000000000000000000aa","amount":"2500000"}`, string(encoded))

	var decoded MintAction
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, recipient, decoded.Recipient)
	assert.Equal(t, "2500000", decoded.Amount.String())
}

func TestTxHash_FromHex(t *testing.T) {
	hash, err := TxHashFromHex("0xab" + strings.Repeat("00", TxHashLength-1))
	require.NoError(t, err)
	assert.Equal(t, byte(0xab), hash[0])
	assert.False(t, hash.IsEmpty())
	assert.True(t, EmptyTxHash.IsEmpty())

	_, err = TxHashFromHex("0xab")
	assert.True(t, errors.Is(err, ErrInvalidHash))
}
