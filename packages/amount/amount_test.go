package amount

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmount_ParseUnits(t *testing.T) {
	for _, testCase := range []struct {
		input    string
		decimals uint8
		expected string
		err      error
	}{
		{"12.5", 6, "12500000", nil},
		{"0.000001", 6, "1", nil},
		{".5", 6, "500000", nil},
		{"100", 6, "100000000", nil},
		{"100", 0, "100", nil},
		{"1.0000001", 6, "", ErrMalformed},
		{"-1", 6, "", ErrNegative},
		{"abc", 6, "", ErrMalformed},
		{".", 6, "", ErrMalformed},
	} {
		parsed, err := ParseUnits(testCase.input, testCase.decimals)
		if testCase.err != nil {
			assert.True(t, errors.Is(err, testCase.err), "input %q: %v", testCase.input, err)
			continue
		}
		require.NoError(t, err, testCase.input)
		assert.Equal(t, testCase.expected, parsed.String(), testCase.input)
	}
}

func TestAmount_Format(t *testing.T) {
	assert.Equal(t, "12.5", New(12500000).Format(6))
	assert.Equal(t, "0.000001", New(1).Format(6))
	assert.Equal(t, "3", New(3000000).Format(6))
	assert.Equal(t, "0", Amount{}.Format(6))
	assert.Equal(t, "42", New(42).Format(0))
}

func TestAmount_JSONKeepsPrecision(t *testing.T) {
	huge, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)
	a, err := FromBig(huge)
	require.NoError(t, err)

	encoded, err := json.Marshal(struct {
		Value Amount `json:"value"`
	}{a})
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"115792089237316195423570985008687907853269984665640564039457584007913129639935"}`, string(encoded))

	var decoded struct {
		Value Amount `json:"value"`
	}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, 0, decoded.Value.Cmp(a))
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`1000000`), &a))
	assert.Equal(t, "1000000", a.String())

	assert.Error(t, json.Unmarshal([]byte(`1.5`), &a))
	assert.Error(t, json.Unmarshal([]byte(`true`), &a))
	assert.Error(t, json.Unmarshal([]byte(`"-3"`), &a))
}

func TestAmount_Overflow(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 256)
	_, err := FromBig(tooBig)
	assert.True(t, errors.Is(err, ErrOverflow))
}

func TestAmount_Word(t *testing.T) {
	word := New(0x0102).Word()
	require.Len(t, word, WordSize)
	assert.Equal(t, byte(0x01), word[30])
	assert.Equal(t, byte(0x02), word[31])

	decoded, err := FromWord(word)
	require.NoError(t, err)
	assert.Equal(t, "258", decoded.String())

	_, err = FromWord(word[1:])
	assert.True(t, errors.Is(err, ErrMalformed))
}
