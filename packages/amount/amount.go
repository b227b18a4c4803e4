// Package amount contains the codec for token amounts that exceed the precision of the native numeric types.
//
// Amounts travel as decimal strings at every API boundary. The codec is applied explicitly by the types that embed an
// Amount, so no process-wide serialization behavior is changed.
package amount

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
)

// WordSize is the size of an ABI encoded uint256 in bytes.
const WordSize = 32

var (
	// ErrNegative is returned when a negative value is handed in as an Amount.
	ErrNegative = errors.New("amount must not be negative")
	// ErrOverflow is returned when a value does not fit into an uint256.
	ErrOverflow = errors.New("amount exceeds 256 bits")
	// ErrMalformed is returned when a string can not be parsed as an Amount.
	ErrMalformed = errors.New("malformed amount")

	maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
)

// region Amount ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Amount is a non-negative integer amount of token base units that fits into an uint256.
//
// The zero value is a valid Amount of 0.
type Amount struct {
	value *big.Int
}

// New returns an Amount of the given number of base units.
func New(units uint64) Amount {
	return Amount{value: new(big.Int).SetUint64(units)}
}

// FromBig returns an Amount from a copy of the given big.Int.
func FromBig(value *big.Int) (amount Amount, err error) {
	if value == nil {
		return Amount{}, nil
	}
	if value.Sign() < 0 {
		return Amount{}, errors.Wrapf(ErrNegative, "%s", value.String())
	}
	if value.Cmp(maxUint256) > 0 {
		return Amount{}, errors.Wrapf(ErrOverflow, "%s", value.String())
	}

	return Amount{value: new(big.Int).Set(value)}, nil
}

// Parse parses a decimal string of base units.
func Parse(s string) (amount Amount, err error) {
	s = strings.TrimSpace(s)
	value, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, errors.Wrapf(ErrMalformed, "%q", s)
	}

	return FromBig(value)
}

// ParseUnits parses a human readable decimal like "12.5" into base units of a token with the given number of
// decimals. More fractional digits than decimals are rejected instead of being truncated.
func ParseUnits(s string, decimals uint8) (amount Amount, err error) {
	s = strings.TrimSpace(s)
	whole, fraction, hasFraction := strings.Cut(s, ".")
	if whole == "" && (!hasFraction || fraction == "") {
		return Amount{}, errors.Wrapf(ErrMalformed, "%q", s)
	}
	if len(fraction) > int(decimals) {
		return Amount{}, errors.Wrapf(ErrMalformed, "%q has more than %d decimals", s, decimals)
	}
	if whole == "" {
		whole = "0"
	}

	return Parse(whole + fraction + strings.Repeat("0", int(decimals)-len(fraction)))
}

// FromWord decodes an ABI encoded uint256.
func FromWord(word []byte) (amount Amount, err error) {
	if len(word) != WordSize {
		return Amount{}, errors.Wrapf(ErrMalformed, "word has %d bytes", len(word))
	}

	return Amount{value: new(big.Int).SetBytes(word)}, nil
}

// Big returns a copy of the underlying value.
func (a Amount) Big() *big.Int {
	if a.value == nil {
		return new(big.Int)
	}

	return new(big.Int).Set(a.value)
}

// IsZero returns true if the Amount is 0.
func (a Amount) IsZero() bool {
	return a.value == nil || a.value.Sign() == 0
}

// Cmp compares two Amounts and returns -1, 0 or +1.
func (a Amount) Cmp(other Amount) int {
	return a.Big().Cmp(other.Big())
}

// Word returns the Amount as a big endian, left padded uint256.
func (a Amount) Word() []byte {
	word := make([]byte, WordSize)
	a.Big().FillBytes(word)

	return word
}

// Format renders the Amount as a human readable decimal of a token with the given number of decimals.
func (a Amount) Format(decimals uint8) string {
	digits := a.String()
	if decimals == 0 {
		return digits
	}
	if len(digits) <= int(decimals) {
		digits = strings.Repeat("0", int(decimals)-len(digits)+1) + digits
	}

	whole, fraction := digits[:len(digits)-int(decimals)], strings.TrimRight(digits[len(digits)-int(decimals):], "0")
	if fraction == "" {
		return whole
	}

	return whole + "." + fraction
}

// String returns the decimal representation of the base units.
func (a Amount) String() string {
	return a.Big().String()
}

// MarshalJSON encodes the Amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes the Amount from a decimal string or a bare JSON number without fraction.
func (a *Amount) UnmarshalJSON(data []byte) (err error) {
	var raw interface{}
	decoder := json.NewDecoder(strings.NewReader(string(data)))
	decoder.UseNumber()
	if err = decoder.Decode(&raw); err != nil {
		return errors.Wrap(ErrMalformed, err.Error())
	}

	var parsed Amount
	switch typed := raw.(type) {
	case string:
		parsed, err = Parse(typed)
	case json.Number:
		parsed, err = Parse(typed.String())
	default:
		err = errors.Wrapf(ErrMalformed, "unexpected JSON value %s", string(data))
	}
	if err != nil {
		return err
	}
	*a = parsed

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
