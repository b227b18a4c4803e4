// Package feed contains the event feed that observes token transfers independently of the submitted transactions.
package feed

import (
	"fmt"

	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

// region TransferEvent ////////////////////////////////////////////////////////////////////////////////////////////////

// TransferEvent is a decoded Transfer log of a token contract.
type TransferEvent struct {
	Token       ledger.Address `json:"token"`
	From        ledger.Address `json:"from"`
	To          ledger.Address `json:"to"`
	Value       amount.Amount  `json:"value"`
	TxHash      ledger.TxHash  `json:"txHash"`
	LogIndex    uint64         `json:"logIndex"`
	BlockNumber uint64         `json:"blockNumber"`
}

// IsMint returns true if the transfer created new units, which is signaled by the null originator.
func (t *TransferEvent) IsMint() bool {
	return t.From.IsZero()
}

// Key returns the identifier of the log that emitted the TransferEvent.
func (t *TransferEvent) Key() string {
	return fmt.Sprintf("%s:%d", t.TxHash, t.LogIndex)
}

func (t *TransferEvent) String() string {
	return fmt.Sprintf("TransferEvent(%s -> %s, %s, tx %s#%d)", t.From, t.To, t.Value, t.TxHash, t.LogIndex)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Filter ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Filter selects the TransferEvents a Subscription is interested in. Zero values match everything.
type Filter struct {
	// Recipient restricts the events to transfers towards the given Address.
	Recipient ledger.Address

	// Token restricts the events to transfers of the given token contract.
	Token ledger.Address

	// MintsOnly restricts the events to transfers from the ZeroAddress.
	MintsOnly bool
}

// MintsTo returns a Filter for mints towards the given recipient.
func MintsTo(recipient ledger.Address) Filter {
	return Filter{Recipient: recipient, MintsOnly: true}
}

// WithToken returns a copy of the Filter that is restricted to the given token contract.
func (f Filter) WithToken(token ledger.Address) Filter {
	f.Token = token

	return f
}

// Matches returns true if the TransferEvent passes the Filter.
func (f Filter) Matches(transfer *TransferEvent) bool {
	if transfer == nil {
		return false
	}
	if !f.Recipient.IsZero() && transfer.To != f.Recipient {
		return false
	}
	if !f.Token.IsZero() && transfer.Token != f.Token {
		return false
	}

	return !f.MintsOnly || transfer.IsMint()
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
