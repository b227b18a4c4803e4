package reconciler

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

// region Phase ////////////////////////////////////////////////////////////////////////////////////////////////////////

// Phase is the derived outcome of the current attempt.
type Phase uint8

const (
	// PhaseIdle is the Phase when no attempt is in flight.
	PhaseIdle Phase = iota

	// PhasePending is the Phase while neither channel produced an outcome that can be shown.
	PhasePending

	// PhaseConfirmed is the terminal Phase of an attempt that was confirmed by either channel.
	PhaseConfirmed

	// PhaseFailed is the terminal Phase of an attempt whose error was revealed.
	PhaseFailed
)

// IsTerminal returns true for the Phases that an attempt never leaves.
func (p Phase) IsTerminal() bool {
	return p == PhaseConfirmed || p == PhaseFailed
}

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// MarshalText encodes the Phase as its name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a Phase from its name.
func (p *Phase) UnmarshalText(text []byte) error {
	for candidate := PhaseIdle; candidate <= PhaseFailed; candidate++ {
		if candidate.String() == string(text) {
			*p = candidate
			return nil
		}
	}

	return errors.Errorf("unknown phase %q", text)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Status ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Status is a snapshot of the current attempt.
type Status struct {
	Phase     Phase
	Epoch     uint64
	Actor     ledger.Address
	Amount    amount.Amount
	Handle    ledger.TxHash
	Err       error
	StartedAt time.Time
}

// IsPending returns true while the attempt has no outcome that can be shown.
func (s Status) IsPending() bool {
	return s.Phase == PhasePending
}

// IsConfirmed returns true if either channel confirmed the attempt.
func (s Status) IsConfirmed() bool {
	return s.Phase == PhaseConfirmed
}

// Reason returns the reason of a failed attempt or an empty string.
func (s Status) Reason() string {
	if s.Phase != PhaseFailed || s.Err == nil {
		return ""
	}

	return s.Err.Error()
}

func (s Status) String() string {
	if s.Phase == PhaseFailed {
		return fmt.Sprintf("Status(%s, epoch %d, %q)", s.Phase, s.Epoch, s.Reason())
	}

	return fmt.Sprintf("Status(%s, epoch %d)", s.Phase, s.Epoch)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
