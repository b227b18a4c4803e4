package ledger

import (
	"golang.org/x/crypto/sha3"
)

const (
	// MintSignature is the signature of the token method that mints new units to a recipient.
	MintSignature = "mint(address,uint256)"
	// TransferSignature is the signature of the ERC-20 event that is emitted for every transfer, including mints.
	TransferSignature = "Transfer(address,address,uint256)"
)

var (
	// MintSelector contains the 4 byte method selector of MintSignature.
	MintSelector = MethodSelector(MintSignature)
	// TransferTopic contains the topic that identifies logs of TransferSignature.
	TransferTopic = EventTopic(TransferSignature)
)

// Keccak256 returns the legacy Keccak-256 digest that the ledger uses for selectors and topics.
func Keccak256(data ...[]byte) []byte {
	hasher := sha3.NewLegacyKeccak256()
	for _, chunk := range data {
		hasher.Write(chunk)
	}

	return hasher.Sum(nil)
}

// MethodSelector returns the 4 byte selector of a method signature.
func MethodSelector(signature string) []byte {
	return Keccak256([]byte(signature))[:4]
}

// EventTopic returns the 32 byte topic of an event signature.
func EventTopic(signature string) (topic TxHash) {
	copy(topic[:], Keccak256([]byte(signature)))

	return topic
}

// EncodeMintCall returns the call data of a mint of the given MintAction.
func EncodeMintCall(action *MintAction) []byte {
	data := make([]byte, 0, len(MintSelector)+2*32)
	data = append(data, MintSelector...)
	data = append(data, action.Recipient.Word()...)
	data = append(data, action.Amount.Word()...)

	return data
}
