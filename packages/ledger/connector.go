// Package ledger contains the client side of the ledger that mints the stablecoin: the Connector that talks to a
// node, and the Watcher that turns a submitted MintAction into a stream of direct outcome events.
package ledger

import (
	"context"

	"github.com/cockroachdb/errors"
)

var (
	// ErrInvalidAddress is returned when an Address can not be parsed.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidHash is returned when a TxHash can not be parsed.
	ErrInvalidHash = errors.New("invalid transaction hash")
	// ErrReceiptNotFound is returned by a Connector while a transaction is not included yet.
	ErrReceiptNotFound = errors.New("receipt not found")
	// ErrTransactionReverted is the direct outcome of a transaction that was included but reverted.
	ErrTransactionReverted = errors.New("transaction reverted")
	// ErrReceiptTimeout is the direct outcome of a transaction whose receipt did not arrive in time.
	ErrReceiptTimeout = errors.New("timed out waiting for receipt")
	// ErrWatcherShutdown is returned when a Submission is handed to a Watcher that was shut down.
	ErrWatcherShutdown = errors.New("watcher is shut down")
)

// Connector represents an interface that defines how the Watcher interacts with the ledger. It can either be backed by
// a remote node or by an in-memory fake in tests.
type Connector interface {
	// SendMint submits the MintAction and returns the handle of the accepted transaction.
	SendMint(ctx context.Context, action *MintAction) (txHash TxHash, err error)

	// TransactionReceipt returns the Receipt of an included transaction or ErrReceiptNotFound.
	TransactionReceipt(ctx context.Context, txHash TxHash) (receipt *Receipt, err error)
}
