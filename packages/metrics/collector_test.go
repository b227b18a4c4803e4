package metrics

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/ledger"
	"github.com/bountyboard/mintwatch/packages/reconciler"
)

type mockedLedger struct {
	submissions chan *ledger.Submission
}

func (m *mockedLedger) Submit(_ context.Context, submission *ledger.Submission) {
	m.submissions <- submission
}

func TestCollector_Reconciler(t *testing.T) {
	hub, err := feed.NewHub(time.Minute)
	require.NoError(t, err)
	defer hub.Shutdown()

	scheduler := reconciler.NewManualScheduler(time.Now())
	ledgerMock := &mockedLedger{submissions: make(chan *ledger.Submission, 2)}
	r := reconciler.New(ledgerMock, hub, reconciler.WithScheduler(scheduler))
	defer r.Shutdown()

	collector := NewCollector()
	collector.AttachReconciler(r)
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.phase.WithLabelValues("idle")))

	actor := ledger.Address{0xa1}
	_, err = r.Start(actor, amount.New(1))
	require.NoError(t, err)
	submission := <-ledgerMock.submissions
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.phase.WithLabelValues("pending")))
	assert.Equal(t, 0.0, testutil.ToFloat64(collector.phase.WithLabelValues("idle")))

	submission.Accept(ledger.TxHash{1})
	submission.Fail(errors.New("timeout"))
	scheduler.Advance(reconciler.DefaultGracePeriod)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.attempts.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.outcomes.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.graceTimers.WithLabelValues("armed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.graceTimers.WithLabelValues("expired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.phase.WithLabelValues("failed")))

	_, err = r.Start(actor, amount.New(1))
	require.NoError(t, err)
	<-ledgerMock.submissions
	hub.Events.TransferObserved.Trigger(&feed.TransferEvent{To: actor})

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.attempts.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.outcomes.WithLabelValues("confirmed")))
}

func TestCollector_Handler(t *testing.T) {
	hub, err := feed.NewHub(time.Minute)
	require.NoError(t, err)
	defer hub.Shutdown()
	hub.Publish(&feed.TransferEvent{TxHash: ledger.TxHash{1}})
	hub.Publish(&feed.TransferEvent{TxHash: ledger.TxHash{1}})

	collector := NewCollector()
	collector.CollectHub(hub)
	collector.CollectConnection(func() bool { return true })
	collector.CollectWatches(func() int { return 3 })

	recorder := httptest.NewRecorder()
	collector.Handler().ServeHTTP(recorder, httptest.NewRequest("GET", "/metrics", nil))

	body := recorder.Body.String()
	assert.Contains(t, body, "mintwatch_feed_transfers_published 1")
	assert.Contains(t, body, "mintwatch_feed_transfers_duplicate 1")
	assert.Contains(t, body, "mintwatch_feed_connected 1")
	assert.Contains(t, body, "mintwatch_receipt_watches_active 3")
}
