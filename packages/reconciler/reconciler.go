// Package reconciler derives a single outcome for a mint from two racing channels: the receipt of the submitted
// transaction and the transfer feed that may observe the mint indirectly.
//
// A direct channel error is withheld for a grace period. If the feed observes a mint for the actor before the period
// ends, the attempt is confirmed and the error is discarded. Otherwise the error is revealed and the attempt stays
// failed, even if a matching transfer arrives later.
package reconciler

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"

	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

// Ledger hands the Submission of an attempt to the ledger. The outcome is reported through the events of the
// Submission.
type Ledger interface {
	Submit(ctx context.Context, submission *ledger.Submission)
}

// Feed delivers the transfers that can confirm an attempt indirectly.
type Feed interface {
	Subscribe(filter feed.Filter, callback func(transfer *feed.TransferEvent)) *feed.Subscription
}

// region Reconciler ///////////////////////////////////////////////////////////////////////////////////////////////////

// Reconciler tracks a single mint attempt at a time and exposes its derived Status.
type Reconciler struct {
	// Events contains the dictionary of events that are triggered by the Reconciler.
	Events *Events

	ledger  Ledger
	feed    Feed
	options *options
	log     *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	epoch    uint64
	attempt  *attempt
	changed  chan struct{}
	shutdown bool
	mutex    sync.Mutex

	subscription    *feed.Subscription
	subscribedActor ledger.Address
}

// New creates a Reconciler that submits through the Ledger and watches the Feed for indirect confirmations.
func New(ledgerClient Ledger, transferFeed Feed, opts ...Option) *Reconciler {
	options := newOptions(opts...)
	ctx, cancel := context.WithCancel(context.Background())

	return &Reconciler{
		Events:  newEvents(),
		ledger:  ledgerClient,
		feed:    transferFeed,
		options: options,
		log:     options.log,
		ctx:     ctx,
		cancel:  cancel,
		changed: make(chan struct{}),
	}
}

// Start supersedes the current attempt and mints the amount to the actor. It returns without waiting for any outcome.
func (r *Reconciler) Start(actor ledger.Address, value amount.Amount) (status Status, err error) {
	if actor.IsZero() {
		return r.Status(), errors.Wrap(ErrPrecondition, "no actor address")
	}
	if value.IsZero() {
		return r.Status(), errors.Wrap(ErrPrecondition, "amount must be positive")
	}

	r.mutex.Lock()
	if r.shutdown {
		r.mutex.Unlock()
		return r.Status(), ErrShutdown
	}

	r.subscribeLocked(actor)
	previous := r.statusLocked()
	notifications := r.supersedeLocked()

	r.epoch++
	r.attempt = newAttempt(r.epoch, actor, value, r.options.clock())
	r.attachLocked(r.attempt)
	submission := r.attempt.submission

	notifications = append(notifications, r.commitLocked(previous)...)
	r.mutex.Unlock()

	r.log.Infow("attempt started", "epoch", previous.Epoch+1, "actor", actor, "amount", value)
	trigger(notifications)

	r.ledger.Submit(r.ctx, submission)

	return r.Status(), nil
}

// Reset discards the current attempt, including a pending grace timer, and returns to PhaseIdle.
func (r *Reconciler) Reset() {
	r.mutex.Lock()
	if r.attempt == nil {
		r.mutex.Unlock()
		return
	}

	previous := r.statusLocked()
	notifications := r.supersedeLocked()
	notifications = append(notifications, r.commitLocked(previous)...)
	r.mutex.Unlock()

	r.log.Infow("attempt reset", "epoch", previous.Epoch, "phase", previous.Phase)
	trigger(notifications)
}

// Status returns a snapshot of the current attempt.
func (r *Reconciler) Status() Status {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.statusLocked()
}

// Await blocks until the attempt that is current when Await is called leaves PhasePending, either by reaching a
// terminal Phase or by being superseded.
func (r *Reconciler) Await(ctx context.Context) (status Status, err error) {
	r.mutex.Lock()
	epoch := r.epoch
	r.mutex.Unlock()

	for {
		r.mutex.Lock()
		status, changed, shutdown := r.statusLocked(), r.changed, r.shutdown
		r.mutex.Unlock()

		if status.Phase != PhasePending || status.Epoch != epoch {
			return status, nil
		}
		if shutdown {
			return status, ErrShutdown
		}

		select {
		case <-ctx.Done():
			return status, errors.WithStack(ctx.Err())
		case <-changed:
		}
	}
}

// Shutdown stops the grace timers, the receipt watch of the current attempt and the feed subscription.
func (r *Reconciler) Shutdown() {
	r.mutex.Lock()
	if r.shutdown {
		r.mutex.Unlock()
		return
	}
	r.shutdown = true

	var notifications []func()
	if r.attempt != nil {
		notifications = r.cancelGraceLocked(r.attempt)
		r.attempt.submission.Cancel()
	}
	if r.subscription != nil {
		r.subscription.Cancel()
		r.subscription = nil
	}
	r.wakeLocked()
	r.mutex.Unlock()

	r.cancel()
	r.options.scheduler.Shutdown()
	trigger(notifications)
}

// subscribeLocked makes sure that the long-lived feed subscription observes mints to the actor. It runs under the
// same lock as the attempt swap, so the subscribed actor always belongs to the current attempt.
func (r *Reconciler) subscribeLocked(actor ledger.Address) {
	if r.subscription != nil && r.subscribedActor == actor {
		return
	}

	if r.subscription != nil {
		r.subscription.Cancel()
	}
	r.subscription = r.feed.Subscribe(feed.MintsTo(actor).WithToken(r.options.token), r.onTransfer)
	r.subscribedActor = actor
	r.log.Debugw("subscribed to mints", "actor", actor)
}

func (r *Reconciler) attachLocked(a *attempt) {
	epoch := a.epoch
	a.submission.Events.Accepted.Hook(event.NewClosure(func(handle ledger.TxHash) { r.onAccepted(epoch, handle) }))
	a.submission.Events.Rejected.Hook(event.NewClosure(func(err error) { r.onRejected(epoch, err) }))
	a.submission.Events.Confirmed.Hook(event.NewClosure(func(receipt *ledger.Receipt) { r.onConfirmed(epoch, receipt) }))
	a.submission.Events.Failed.Hook(event.NewClosure(func(err error) { r.onFailed(epoch, err) }))
}

func (r *Reconciler) onAccepted(epoch uint64, handle ledger.TxHash) {
	r.update(epoch, "accepted", func(a *attempt) []func() {
		a.handle = handle
		r.log.Debugw("submission accepted", "epoch", epoch, "handle", handle)

		return nil
	})
}

func (r *Reconciler) onRejected(epoch uint64, err error) {
	r.update(epoch, "rejected", func(a *attempt) []func() {
		if phase := a.phase(); phase.IsTerminal() {
			r.log.Debugw("ignoring rejection of a resolved attempt", "epoch", epoch, "phase", phase, "err", err)
			return nil
		}

		a.directErr = newSubmissionError(err)
		a.errorRevealed = true
		r.log.Errorw("attempt failed", "epoch", epoch, "reason", a.directErr)

		return nil
	})
}

func (r *Reconciler) onConfirmed(epoch uint64, receipt *ledger.Receipt) {
	r.update(epoch, "confirmed", func(a *attempt) []func() {
		if phase := a.phase(); phase.IsTerminal() {
			r.log.Debugw("ignoring receipt of a resolved attempt", "epoch", epoch, "phase", phase, "block", receipt.BlockNumber)
			return nil
		}

		a.directConfirmed = true
		r.log.Infow("attempt confirmed by receipt", "epoch", epoch, "handle", a.handle, "block", receipt.BlockNumber)

		return r.cancelGraceLocked(a)
	})
}

func (r *Reconciler) onFailed(epoch uint64, err error) {
	r.update(epoch, "failed", func(a *attempt) []func() {
		if phase := a.phase(); phase.IsTerminal() {
			r.log.Debugw("ignoring direct channel error of a resolved attempt", "epoch", epoch, "phase", phase, "err", err)
			return nil
		}

		a.directErr = newDirectChannelError(a.handle, err)
		a.graceTimer = r.options.scheduler.ExecuteAfter(func() { r.onGraceExpired(epoch) }, r.options.gracePeriod)
		r.log.Warnw("withholding direct channel error", "epoch", epoch, "handle", a.handle, "gracePeriod", r.options.gracePeriod, "err", err)

		graceEvent := a.graceEvent()
		return []func(){func() { r.Events.GraceArmed.Trigger(graceEvent) }}
	})
}

func (r *Reconciler) onGraceExpired(epoch uint64) {
	r.update(epoch, "grace period", func(a *attempt) []func() {
		if a.graceTimer == nil {
			return nil
		}

		a.graceTimer = nil
		a.errorRevealed = true
		r.log.Errorw("attempt failed", "epoch", epoch, "handle", a.handle, "reason", a.directErr)

		graceEvent := a.graceEvent()
		return []func(){func() { r.Events.GraceExpired.Trigger(graceEvent) }}
	})
}

func (r *Reconciler) onTransfer(transfer *feed.TransferEvent) {
	r.mutex.Lock()
	a := r.attempt
	if r.shutdown || a == nil {
		r.mutex.Unlock()
		r.log.Debugw("ignoring transfer while idle", "to", transfer.To, "txHash", transfer.TxHash)
		return
	}
	if transfer.To != a.actor || !transfer.IsMint() {
		r.mutex.Unlock()
		return
	}

	switch phase := a.phase(); phase {
	case PhaseFailed:
		r.mutex.Unlock()
		r.log.Warnw("ignoring transfer after the error was revealed", "epoch", a.epoch, "txHash", transfer.TxHash)
		return
	case PhaseConfirmed:
		r.mutex.Unlock()
		return
	}

	previous := r.statusLocked()
	a.feedMatched = true
	a.submission.Cancel()
	notifications := r.cancelGraceLocked(a)
	notifications = append(notifications, r.commitLocked(previous)...)
	r.mutex.Unlock()

	r.log.Infow("attempt confirmed by feed", "epoch", a.epoch, "txHash", transfer.TxHash, "ownTransaction", transfer.TxHash == previous.Handle)
	trigger(notifications)
}

// update applies the mutation to the attempt of the given epoch. Callbacks of superseded attempts are dropped.
func (r *Reconciler) update(epoch uint64, source string, mutation func(a *attempt) []func()) {
	r.mutex.Lock()
	if r.shutdown || r.attempt == nil || r.attempt.epoch != epoch {
		r.mutex.Unlock()
		r.log.Warnw("ignoring stale callback", "source", source, "epoch", epoch)
		return
	}

	previous := r.statusLocked()
	notifications := mutation(r.attempt)
	notifications = append(notifications, r.commitLocked(previous)...)
	r.mutex.Unlock()

	trigger(notifications)
}

// supersedeLocked drops the current attempt and stops everything that could still act on it.
func (r *Reconciler) supersedeLocked() (notifications []func()) {
	if r.attempt == nil {
		return nil
	}

	notifications = r.cancelGraceLocked(r.attempt)
	r.attempt.submission.Cancel()
	r.attempt = nil

	return notifications
}

func (r *Reconciler) cancelGraceLocked(a *attempt) (notifications []func()) {
	if a.graceTimer == nil {
		return nil
	}

	a.graceTimer.Cancel()
	a.graceTimer = nil
	r.log.Debugw("grace timer cancelled", "epoch", a.epoch)

	graceEvent := a.graceEvent()
	return []func(){func() { r.Events.GraceCancelled.Trigger(graceEvent) }}
}

// commitLocked wakes up waiting callers and returns the StatusChanged notification if the Phase or the attempt changed.
func (r *Reconciler) commitLocked(previous Status) (notifications []func()) {
	r.wakeLocked()

	current := r.statusLocked()
	if current.Phase == previous.Phase && current.Epoch == previous.Epoch {
		return nil
	}

	statusChangedEvent := &StatusChangedEvent{Epoch: current.Epoch, Previous: previous, Current: current}
	return []func(){func() { r.Events.StatusChanged.Trigger(statusChangedEvent) }}
}

func (r *Reconciler) wakeLocked() {
	close(r.changed)
	r.changed = make(chan struct{})
}

func (r *Reconciler) statusLocked() Status {
	if r.attempt == nil {
		return Status{Phase: PhaseIdle, Epoch: r.epoch}
	}

	return r.attempt.status()
}

func trigger(notifications []func()) {
	for _, notification := range notifications {
		notification()
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region attempt //////////////////////////////////////////////////////////////////////////////////////////////////////

type attempt struct {
	epoch      uint64
	actor      ledger.Address
	amount     amount.Amount
	startedAt  time.Time
	submission *ledger.Submission
	handle     ledger.TxHash

	directConfirmed bool
	directErr       error
	feedMatched     bool
	errorRevealed   bool
	graceTimer      Task
}

func newAttempt(epoch uint64, actor ledger.Address, value amount.Amount, startedAt time.Time) *attempt {
	return &attempt{
		epoch:      epoch,
		actor:      actor,
		amount:     value,
		startedAt:  startedAt,
		submission: ledger.NewSubmission(ledger.NewMintAction(actor, value)),
	}
}

func (a *attempt) phase() Phase {
	switch {
	case a.feedMatched || a.directConfirmed:
		return PhaseConfirmed
	case a.errorRevealed:
		return PhaseFailed
	default:
		return PhasePending
	}
}

func (a *attempt) status() Status {
	status := Status{
		Phase:     a.phase(),
		Epoch:     a.epoch,
		Actor:     a.actor,
		Amount:    a.amount,
		Handle:    a.handle,
		StartedAt: a.startedAt,
	}
	if status.Phase == PhaseFailed {
		status.Err = a.directErr
	}

	return status
}

func (a *attempt) graceEvent() *GraceEvent {
	return &GraceEvent{Epoch: a.epoch, Handle: a.handle, Err: a.directErr}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
