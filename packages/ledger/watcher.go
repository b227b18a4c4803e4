package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/logger"
	"github.com/panjf2000/ants/v2"
)

// Watcher submits MintActions through a Connector and polls for their Receipts in the background.
type Watcher struct {
	connector Connector
	pool      *ants.Pool
	options   *options
	log       *logger.Logger

	shutdownSignal chan struct{}
	shutdownOnce   sync.Once
	shutdownMutex  sync.RWMutex
	inFlight       sync.WaitGroup
}

// NewWatcher is the constructor of the Watcher.
func NewWatcher(connector Connector, opts ...Option) (*Watcher, error) {
	options := newOptions(opts...)

	pool, err := ants.NewPool(options.workerCount, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create receipt watcher pool")
	}

	return &Watcher{
		connector:      connector,
		pool:           pool,
		options:        options,
		log:            options.log,
		shutdownSignal: make(chan struct{}),
	}, nil
}

// Submit hands the Submission to the ledger and returns immediately. All outcomes are delivered through the events of
// the Submission.
func (w *Watcher) Submit(ctx context.Context, submission *Submission) {
	w.shutdownMutex.RLock()
	select {
	case <-w.shutdownSignal:
		w.shutdownMutex.RUnlock()
		submission.Reject(ErrWatcherShutdown)
		return
	default:
	}
	w.inFlight.Add(1)
	w.shutdownMutex.RUnlock()

	ctx, cancel := context.WithCancel(ctx)
	if !submission.setCancel(cancel) {
		w.inFlight.Done()

		submission.Reject(errors.WithStack(context.Canceled))
		return
	}

	if err := w.pool.Submit(func() {
		defer w.inFlight.Done()
		defer cancel()

		w.process(ctx, submission)
	}); err != nil {
		w.inFlight.Done()
		cancel()

		submission.Reject(errors.Wrap(err, "failed to schedule submission"))
	}
}

// Running returns the number of Submissions that are currently being processed.
func (w *Watcher) Running() int {
	return w.pool.Running()
}

// Shutdown cancels all in-flight Submissions and waits for their workers to return.
func (w *Watcher) Shutdown() {
	w.shutdownOnce.Do(func() {
		w.shutdownMutex.Lock()
		close(w.shutdownSignal)
		w.shutdownMutex.Unlock()

		w.inFlight.Wait()
		w.pool.Release()
	})
}

func (w *Watcher) process(ctx context.Context, submission *Submission) {
	stopped := make(chan struct{})
	defer close(stopped)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-w.shutdownSignal:
			cancel()
		case <-stopped:
		}
	}()

	action := submission.Action()
	if submission.IsCancelled() || ctx.Err() != nil {
		w.log.Debugw("mint cancelled before it was sent", "recipient", action.Recipient, "amount", action.Amount)
		submission.Reject(errors.WithStack(context.Canceled))
		return
	}

	txHash, err := w.connector.SendMint(ctx, action)
	if err != nil {
		w.log.Infow("mint rejected", "recipient", action.Recipient, "amount", action.Amount, "err", err)
		submission.Reject(err)
		return
	}

	w.log.Debugw("mint accepted", "recipient", action.Recipient, "txHash", txHash)
	submission.Accept(txHash)

	w.awaitReceipt(ctx, submission, txHash)
}

func (w *Watcher) awaitReceipt(ctx context.Context, submission *Submission, txHash TxHash) {
	timeout := time.NewTimer(w.options.receiptTimeout)
	defer timeout.Stop()
	ticker := time.NewTicker(w.options.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			submission.Fail(errors.Wrapf(ctx.Err(), "stopped waiting for receipt of %s", txHash))
			return
		case <-timeout.C:
			submission.Fail(errors.Wrapf(ErrReceiptTimeout, "%s after %s", txHash, w.options.receiptTimeout))
			return
		case <-ticker.C:
			receipt, err := w.connector.TransactionReceipt(ctx, txHash)
			if errors.Is(err, ErrReceiptNotFound) {
				continue
			}
			if err != nil {
				w.log.Warnw("failed to retrieve receipt", "txHash", txHash, "err", err)
				submission.Fail(errors.Wrapf(err, "failed to retrieve receipt of %s", txHash))
				return
			}
			if !receipt.Successful() {
				submission.Fail(errors.Wrapf(ErrTransactionReverted, "%s in block %d", txHash, receipt.BlockNumber))
				return
			}

			w.log.Debugw("mint confirmed", "txHash", txHash, "block", receipt.BlockNumber)
			submission.Confirm(receipt)
			return
		}
	}
}
