package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyboard/mintwatch/packages/amount"
)

var log = logger.NewExampleLogger("ledger")

// region mockedConnector //////////////////////////////////////////////////////////////////////////////////////////////

type mockedConnector struct {
	sendErr    error
	txHash     TxHash
	receipt    *Receipt
	receiptErr error
	sends      int
	polls      int
	mutex      sync.Mutex
}

func (m *mockedConnector) SendMint(ctx context.Context, _ *MintAction) (TxHash, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.sends++
	if m.sendErr != nil {
		return EmptyTxHash, m.sendErr
	}

	return m.txHash, nil
}

func (m *mockedConnector) TransactionReceipt(ctx context.Context, _ TxHash) (*Receipt, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.polls++
	if m.receiptErr != nil {
		return nil, m.receiptErr
	}
	if m.receipt == nil {
		return nil, ErrReceiptNotFound
	}

	return m.receipt, nil
}

func (m *mockedConnector) setReceipt(receipt *Receipt) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.receipt = receipt
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region recorder /////////////////////////////////////////////////////////////////////////////////////////////////////

type recorder struct {
	accepted  chan TxHash
	rejected  chan error
	confirmed chan *Receipt
	failed    chan error
}

func record(submission *Submission) *recorder {
	r := &recorder{
		accepted:  make(chan TxHash, 1),
		rejected:  make(chan error, 1),
		confirmed: make(chan *Receipt, 1),
		failed:    make(chan error, 1),
	}
	submission.Events.Accepted.Hook(event.NewClosure(func(txHash TxHash) { r.accepted <- txHash }))
	submission.Events.Rejected.Hook(event.NewClosure(func(err error) { r.rejected <- err }))
	submission.Events.Confirmed.Hook(event.NewClosure(func(receipt *Receipt) { r.confirmed <- receipt }))
	submission.Events.Failed.Hook(event.NewClosure(func(err error) { r.failed <- err }))

	return r
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

func newTestWatcher(t *testing.T, connector Connector, opts ...Option) *Watcher {
	watcher, err := NewWatcher(connector, append([]Option{
		WithPollInterval(5 * time.Millisecond),
		WithReceiptTimeout(time.Second),
		WithWorkerCount(4),
		WithLogger(log),
	}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(watcher.Shutdown)

	return watcher
}

func testAction(t *testing.T) *MintAction {
	recipient, err := AddressFromHex("0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)

	return NewMintAction(recipient, amount.New(1000000))
}

func TestWatcher_Confirmed(t *testing.T) {
	connector := &mockedConnector{txHash: TxHash{1}}
	watcher := newTestWatcher(t, connector)

	submission := NewSubmission(testAction(t))
	events := record(submission)
	watcher.Submit(context.Background(), submission)

	assert.Equal(t, TxHash{1}, <-events.accepted)
	assert.Equal(t, TxHash{1}, submission.TxHash())

	connector.setReceipt(&Receipt{TxHash: TxHash{1}, BlockNumber: 7, Status: ReceiptStatusSuccessful})
	select {
	case receipt := <-events.confirmed:
		assert.Equal(t, uint64(7), receipt.BlockNumber)
	case err := <-events.failed:
		t.Fatalf("unexpected failure: %s", err)
	case <-time.After(time.Second):
		t.Fatal("receipt was not observed")
	}
	assert.Empty(t, events.rejected)
}

func TestWatcher_Rejected(t *testing.T) {
	watcher := newTestWatcher(t, &mockedConnector{sendErr: errors.New("insufficient funds")})

	submission := NewSubmission(testAction(t))
	events := record(submission)
	watcher.Submit(context.Background(), submission)

	select {
	case err := <-events.rejected:
		assert.EqualError(t, err, "insufficient funds")
	case <-time.After(time.Second):
		t.Fatal("rejection was not observed")
	}
	assert.Empty(t, events.accepted)
	assert.True(t, submission.TxHash().IsEmpty())
}

func TestWatcher_Reverted(t *testing.T) {
	watcher := newTestWatcher(t, &mockedConnector{txHash: TxHash{2}, receipt: &Receipt{TxHash: TxHash{2}, Status: ReceiptStatusFailed}})

	submission := NewSubmission(testAction(t))
	events := record(submission)
	watcher.Submit(context.Background(), submission)

	select {
	case err := <-events.failed:
		assert.True(t, errors.Is(err, ErrTransactionReverted))
	case <-time.After(time.Second):
		t.Fatal("revert was not observed")
	}
}

func TestWatcher_ReceiptTimeout(t *testing.T) {
	watcher := newTestWatcher(t, &mockedConnector{txHash: TxHash{3}}, WithReceiptTimeout(30*time.Millisecond))

	submission := NewSubmission(testAction(t))
	events := record(submission)
	watcher.Submit(context.Background(), submission)

	select {
	case err := <-events.failed:
		assert.True(t, errors.Is(err, ErrReceiptTimeout))
	case <-time.After(time.Second):
		t.Fatal("timeout was not observed")
	}
}

func TestWatcher_ReceiptError(t *testing.T) {
	watcher := newTestWatcher(t, &mockedConnector{txHash: TxHash{4}, receiptErr: errors.New("connection reset")})

	submission := NewSubmission(testAction(t))
	events := record(submission)
	watcher.Submit(context.Background(), submission)

	select {
	case err := <-events.failed:
		assert.Contains(t, err.Error(), "connection reset")
	case <-time.After(time.Second):
		t.Fatal("failure was not observed")
	}
}

func TestWatcher_Cancel(t *testing.T) {
	watcher := newTestWatcher(t, &mockedConnector{txHash: TxHash{5}})

	submission := NewSubmission(testAction(t))
	events := record(submission)
	watcher.Submit(context.Background(), submission)
	<-events.accepted

	submission.Cancel()
	select {
	case err := <-events.failed:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("cancellation was not observed")
	}
}

func TestWatcher_CancelledBeforeSubmit(t *testing.T) {
	connector := &mockedConnector{txHash: TxHash{8}}
	watcher := newTestWatcher(t, connector)

	submission := NewSubmission(testAction(t))
	events := record(submission)
	submission.Cancel()
	assert.True(t, submission.IsCancelled())

	watcher.Submit(context.Background(), submission)
	select {
	case err := <-events.rejected:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(time.Second):
		t.Fatal("cancellation was not observed")
	}

	watcher.Shutdown()
	connector.mutex.Lock()
	defer connector.mutex.Unlock()
	assert.Zero(t, connector.sends)
	assert.Empty(t, events.accepted)
}

func TestWatcher_SubmitAfterShutdown(t *testing.T) {
	watcher := newTestWatcher(t, &mockedConnector{txHash: TxHash{6}})
	watcher.Shutdown()

	submission := NewSubmission(testAction(t))
	events := record(submission)
	watcher.Submit(context.Background(), submission)

	assert.True(t, errors.Is(<-events.rejected, ErrWatcherShutdown))
}

func TestSubmission_ResolvesOnce(t *testing.T) {
	submission := NewSubmission(testAction(t))
	events := record(submission)

	submission.Confirm(&Receipt{})
	assert.Empty(t, events.confirmed, "confirmation without acceptance must be ignored")

	submission.Accept(TxHash{7})
	submission.Reject(errors.New("late rejection"))
	submission.Fail(errors.New("first failure"))
	submission.Fail(errors.New("second failure"))
	submission.Confirm(&Receipt{})

	assert.Len(t, events.accepted, 1)
	assert.Empty(t, events.rejected)
	assert.EqualError(t, <-events.failed, "first failure")
	assert.Empty(t, events.confirmed)
}
