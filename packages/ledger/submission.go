package ledger

import (
	"context"
	"sync"

	"github.com/iotaledger/hive.go/generics/event"
)

// region Submission ///////////////////////////////////////////////////////////////////////////////////////////////////

// Submission tracks a single MintAction from the moment it is handed to a Watcher until it reaches its direct outcome.
//
// Exactly one of the following sequences is triggered: Rejected, or Accepted followed by at most one of Confirmed and
// Failed. Closures need to be attached before the Submission is handed to the Watcher.
type Submission struct {
	// Events contains the dictionary of events that are triggered by the Submission.
	Events *SubmissionEvents

	action   *MintAction
	txHash   TxHash
	resolved  bool
	cancelled bool
	cancel    context.CancelFunc
	mutex     sync.Mutex
}

// NewSubmission creates a Submission for the given MintAction.
func NewSubmission(action *MintAction) *Submission {
	return &Submission{
		Events: newSubmissionEvents(),
		action: action,
	}
}

// Action returns the MintAction that is submitted.
func (s *Submission) Action() *MintAction {
	return s.action
}

// TxHash returns the handle of the accepted transaction (EmptyTxHash before acceptance).
func (s *Submission) TxHash() TxHash {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.txHash
}

// Cancel stops watching the Submission. A Submission that was not resolved yet fails with context.Canceled. Cancelling
// before the Submission reaches a Watcher keeps it from ever being sent.
func (s *Submission) Cancel() {
	s.mutex.Lock()
	s.cancelled = true
	cancel := s.cancel
	s.mutex.Unlock()

	if cancel != nil {
		cancel()
	}
}

// IsCancelled returns true if Cancel was called.
func (s *Submission) IsCancelled() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.cancelled
}

// setCancel registers the CancelFunc of the watch. It returns false (and cancels right away) if the Submission was
// cancelled before.
func (s *Submission) setCancel(cancel context.CancelFunc) bool {
	s.mutex.Lock()
	s.cancel = cancel
	cancelled := s.cancelled
	s.mutex.Unlock()

	if cancelled {
		cancel()
	}

	return !cancelled
}

// Accept records the handle that the ledger issued for the transaction and triggers Accepted.
func (s *Submission) Accept(txHash TxHash) {
	s.mutex.Lock()
	if s.resolved || !s.txHash.IsEmpty() {
		s.mutex.Unlock()
		return
	}
	s.txHash = txHash
	s.mutex.Unlock()

	s.Events.Accepted.Trigger(txHash)
}

// Reject resolves a Submission that was not accepted and triggers Rejected.
func (s *Submission) Reject(err error) {
	if !s.resolve(false) {
		return
	}

	s.Events.Rejected.Trigger(err)
}

// Confirm resolves an accepted Submission with a successful Receipt.
func (s *Submission) Confirm(receipt *Receipt) {
	if !s.resolve(true) {
		return
	}

	s.Events.Confirmed.Trigger(receipt)
}

// Fail resolves an accepted Submission whose confirmation channel reported an error.
func (s *Submission) Fail(err error) {
	if !s.resolve(true) {
		return
	}

	s.Events.Failed.Trigger(err)
}

// resolve marks the Submission as resolved and returns false if it was resolved before or if the acceptance state does
// not match.
func (s *Submission) resolve(accepted bool) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.resolved || accepted == s.txHash.IsEmpty() {
		return false
	}
	s.resolved = true

	return true
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region SubmissionEvents /////////////////////////////////////////////////////////////////////////////////////////////

// SubmissionEvents is a container that acts as a dictionary for the events of a Submission.
type SubmissionEvents struct {
	// Accepted is triggered when the ledger issued a handle for the transaction.
	Accepted *event.Event[TxHash]

	// Rejected is triggered when the ledger refused the transaction before issuing a handle.
	Rejected *event.Event[error]

	// Confirmed is triggered when a successful Receipt was observed.
	Confirmed *event.Event[*Receipt]

	// Failed is triggered when the confirmation channel of an accepted transaction reports a failure.
	Failed *event.Event[error]
}

func newSubmissionEvents() *SubmissionEvents {
	return &SubmissionEvents{
		Accepted:  event.New[TxHash](),
		Rejected:  event.New[error](),
		Confirmed: event.New[*Receipt](),
		Failed:    event.New[error](),
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
