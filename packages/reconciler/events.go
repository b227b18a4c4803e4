package reconciler

import (
	"github.com/iotaledger/hive.go/generics/event"

	"github.com/bountyboard/mintwatch/packages/ledger"
)

// Events is a container that acts as a dictionary for the events of a Reconciler.
//
// The events are triggered after the state of the Reconciler was updated, so closures can read the Status or start and
// reset attempts.
type Events struct {
	// StatusChanged is triggered whenever the Phase or the attempt changes.
	StatusChanged *event.Event[*StatusChangedEvent]

	// GraceArmed is triggered when a direct channel error is withheld.
	GraceArmed *event.Event[*GraceEvent]

	// GraceCancelled is triggered when a withheld error was discarded, either because the feed confirmed the attempt
	// or because the attempt was superseded.
	GraceCancelled *event.Event[*GraceEvent]

	// GraceExpired is triggered when a withheld error was revealed.
	GraceExpired *event.Event[*GraceEvent]
}

func newEvents() *Events {
	return &Events{
		StatusChanged:  event.New[*StatusChangedEvent](),
		GraceArmed:     event.New[*GraceEvent](),
		GraceCancelled: event.New[*GraceEvent](),
		GraceExpired:   event.New[*GraceEvent](),
	}
}

// StatusChangedEvent is the payload of the StatusChanged event.
type StatusChangedEvent struct {
	Epoch    uint64
	Previous Status
	Current  Status
}

// GraceEvent is the payload of the grace timer events.
type GraceEvent struct {
	Epoch  uint64
	Handle ledger.TxHash
	Err    error
}
