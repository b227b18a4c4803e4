package reconciler

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/bountyboard/mintwatch/packages/ledger"
)

var (
	// ErrPrecondition is returned by Start if the attempt can not be made, for example because no actor is known.
	ErrPrecondition = errors.New("precondition failed")

	// ErrSubmissionRejected is the sentinel of SubmissionErrors.
	ErrSubmissionRejected = errors.New("submission rejected")

	// ErrDirectChannel is the sentinel of DirectChannelErrors.
	ErrDirectChannel = errors.New("direct channel failed")

	// ErrShutdown is returned by operations on a Reconciler that was shut down.
	ErrShutdown = errors.New("reconciler shut down")
)

// region SubmissionError //////////////////////////////////////////////////////////////////////////////////////////////

// SubmissionError is the outcome of an attempt whose transaction was refused by the ledger before a handle was issued.
type SubmissionError struct {
	// Reason contains the message reported by the ledger.
	Reason string

	cause error
}

func newSubmissionError(cause error) *SubmissionError {
	return &SubmissionError{Reason: cause.Error(), cause: cause}
}

// Error returns the reason reported by the ledger.
func (s *SubmissionError) Error() string {
	return s.Reason
}

// Unwrap returns ErrSubmissionRejected.
func (s *SubmissionError) Unwrap() error {
	return ErrSubmissionRejected
}

// Cause returns the error that was reported by the ledger client.
func (s *SubmissionError) Cause() error {
	return s.cause
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region DirectChannelError ///////////////////////////////////////////////////////////////////////////////////////////

// DirectChannelError is the outcome of an attempt whose confirmation channel failed after the ledger issued a handle.
type DirectChannelError struct {
	// Handle is the transaction that was accepted by the ledger.
	Handle ledger.TxHash

	// Reason contains the message reported by the confirmation channel.
	Reason string

	cause error
}

func newDirectChannelError(handle ledger.TxHash, cause error) *DirectChannelError {
	return &DirectChannelError{Handle: handle, Reason: cause.Error(), cause: cause}
}

// Error returns the reason reported by the confirmation channel.
func (d *DirectChannelError) Error() string {
	return d.Reason
}

// Unwrap returns ErrDirectChannel.
func (d *DirectChannelError) Unwrap() error {
	return ErrDirectChannel
}

// Cause returns the error that was reported by the ledger client.
func (d *DirectChannelError) Cause() error {
	return d.cause
}

// Format includes the handle in the verbose representation.
func (d *DirectChannelError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		_, _ = fmt.Fprintf(s, "%s (tx %s)", d.Reason, d.Handle)
		return
	}

	_, _ = fmt.Fprint(s, d.Reason)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
