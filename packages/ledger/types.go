package ledger

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/bountyboard/mintwatch/packages/amount"
)

// region Address //////////////////////////////////////////////////////////////////////////////////////////////////////

// AddressLength contains the amount of bytes of an Address.
const AddressLength = 20

// Address is the identifier of an account or a contract on the ledger.
type Address [AddressLength]byte

// ZeroAddress is the null originator of mint transfers.
var ZeroAddress Address

// AddressFromHex parses a hex encoded Address with optional 0x prefix.
func AddressFromHex(s string) (address Address, err error) {
	decoded, err := decodeHex(s, AddressLength)
	if err != nil {
		return address, errors.Wrapf(ErrInvalidAddress, "%q: %s", s, err)
	}
	copy(address[:], decoded)

	return address, nil
}

// AddressFromWord returns the Address that is right aligned in an ABI encoded 32 byte word.
func AddressFromWord(word []byte) (address Address, err error) {
	if len(word) != amount.WordSize {
		return address, errors.Wrapf(ErrInvalidAddress, "word has %d bytes", len(word))
	}
	copy(address[:], word[amount.WordSize-AddressLength:])

	return address, nil
}

// Word returns the Address left padded to an ABI encoded 32 byte word.
func (a Address) Word() []byte {
	word := make([]byte, amount.WordSize)
	copy(word[amount.WordSize-AddressLength:], a[:])

	return word
}

// IsZero returns true if the Address is the ZeroAddress.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String returns the lower case, 0x prefixed hex representation of the Address.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalJSON encodes the Address as a hex string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes the Address from a hex string.
func (a *Address) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err = json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(ErrInvalidAddress, err.Error())
	}
	*a, err = AddressFromHex(s)

	return err
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region TxHash ///////////////////////////////////////////////////////////////////////////////////////////////////////

// TxHashLength contains the amount of bytes of a TxHash.
const TxHashLength = 32

// TxHash is the submission handle that the ledger issues once it accepted a transaction.
type TxHash [TxHashLength]byte

// EmptyTxHash is the zero value of a TxHash and marks an absent handle.
var EmptyTxHash TxHash

// TxHashFromHex parses a hex encoded TxHash with optional 0x prefix.
func TxHashFromHex(s string) (hash TxHash, err error) {
	decoded, err := decodeHex(s, TxHashLength)
	if err != nil {
		return hash, errors.Wrapf(ErrInvalidHash, "%q: %s", s, err)
	}
	copy(hash[:], decoded)

	return hash, nil
}

// IsEmpty returns true if no handle was issued.
func (t TxHash) IsEmpty() bool {
	return t == EmptyTxHash
}

// String returns the 0x prefixed hex representation of the TxHash.
func (t TxHash) String() string {
	return "0x" + hex.EncodeToString(t[:])
}

// MarshalJSON encodes the TxHash as a hex string.
func (t TxHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes the TxHash from a hex string.
func (t *TxHash) UnmarshalJSON(data []byte) (err error) {
	var s string
	if err = json.Unmarshal(data, &s); err != nil {
		return errors.Wrap(ErrInvalidHash, err.Error())
	}
	*t, err = TxHashFromHex(s)

	return err
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region MintAction ///////////////////////////////////////////////////////////////////////////////////////////////////

// MintAction is the write operation that credits newly minted tokens to a recipient.
type MintAction struct {
	// Recipient is the actor that receives the minted tokens.
	Recipient Address `json:"recipient"`

	// Amount is the number of token base units to mint.
	Amount amount.Amount `json:"amount"`
}

// NewMintAction is the constructor of the MintAction.
func NewMintAction(recipient Address, value amount.Amount) *MintAction {
	return &MintAction{
		Recipient: recipient,
		Amount:    value,
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Receipt //////////////////////////////////////////////////////////////////////////////////////////////////////

const (
	// ReceiptStatusFailed is the status of a Receipt whose transaction was reverted.
	ReceiptStatusFailed uint64 = 0
	// ReceiptStatusSuccessful is the status of a Receipt whose transaction was executed.
	ReceiptStatusSuccessful uint64 = 1
)

// Receipt is the ledger's confirmation that a transaction was included.
type Receipt struct {
	TxHash      TxHash `json:"transactionHash"`
	BlockNumber uint64 `json:"blockNumber"`
	Status      uint64 `json:"status"`
	GasUsed     uint64 `json:"gasUsed"`
}

// Successful returns true if the transaction was executed without being reverted.
func (r *Receipt) Successful() bool {
	return r.Status == ReceiptStatusSuccessful
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

func decodeHex(s string, length int) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if len(s) != 2*length {
		return nil, errors.Errorf("expected %d hex characters but got %d", 2*length, len(s))
	}

	return hex.DecodeString(s)
}
