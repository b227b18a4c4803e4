package feed

import (
	"sync"
	"time"

	"github.com/ReneKroon/ttlcache/v2"
	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/paulbellamy/ratecounter"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	// DefaultDedupeTTL is the time a published log is remembered to drop redeliveries.
	DefaultDedupeTTL = 10 * time.Minute

	rateInterval = time.Minute
)

// region Hub //////////////////////////////////////////////////////////////////////////////////////////////////////////

// Hub fans the TransferEvents of all feed sources out to long-lived Subscriptions. Logs that were already published
// within the dedupe TTL are dropped, so reconnecting sources can safely replay.
type Hub struct {
	// Events contains the dictionary of events that are triggered by the Hub.
	Events *HubEvents

	seen          *ttlcache.Cache
	seenMutex     sync.Mutex
	rate          *ratecounter.RateCounter
	published     *atomic.Uint64
	duplicates    *atomic.Uint64
	subscriptions *atomic.Int64
	log           *logger.Logger
}

// NewHub creates a Hub that remembers published logs for dedupeTTL.
func NewHub(dedupeTTL time.Duration, log ...*logger.Logger) (*Hub, error) {
	seen := ttlcache.NewCache()
	seen.SkipTTLExtensionOnHit(true)
	if err := seen.SetTTL(dedupeTTL); err != nil {
		return nil, errors.WithStack(err)
	}

	h := &Hub{
		Events:        newHubEvents(),
		seen:          seen,
		rate:          ratecounter.NewRateCounter(rateInterval),
		published:     atomic.NewUint64(0),
		duplicates:    atomic.NewUint64(0),
		subscriptions: atomic.NewInt64(0),
		log:           zap.NewNop().Sugar(),
	}
	if len(log) > 0 {
		h.log = log[0]
	}

	return h, nil
}

// Publish hands a TransferEvent to all Subscriptions unless the same log was published before. It returns false for
// duplicates.
func (h *Hub) Publish(transfer *TransferEvent) (published bool) {
	if !h.markSeen(transfer.Key()) {
		h.duplicates.Inc()
		h.log.Debugw("dropped duplicate transfer", "txHash", transfer.TxHash, "logIndex", transfer.LogIndex)
		return false
	}

	h.published.Inc()
	h.rate.Incr(1)
	h.log.Debugw("transfer observed", "to", transfer.To, "from", transfer.From, "value", transfer.Value, "txHash", transfer.TxHash)
	h.Events.TransferObserved.Trigger(transfer)

	return true
}

// Subscribe registers the callback for all future TransferEvents that match the Filter.
func (h *Hub) Subscribe(filter Filter, callback func(transfer *TransferEvent)) *Subscription {
	subscription := &Subscription{
		hub:    h,
		filter: filter,
	}
	subscription.closure = event.NewClosure(func(transfer *TransferEvent) {
		if filter.Matches(transfer) {
			callback(transfer)
		}
	})

	h.subscriptions.Inc()
	h.Events.TransferObserved.Hook(subscription.closure)

	return subscription
}

// Stats returns a snapshot of the counters of the Hub.
func (h *Hub) Stats() Stats {
	return Stats{
		Published:     h.published.Load(),
		Duplicates:    h.duplicates.Load(),
		PerMinute:     h.rate.Rate(),
		Subscriptions: h.subscriptions.Load(),
	}
}

// Shutdown releases the dedupe cache.
func (h *Hub) Shutdown() {
	if err := h.seen.Close(); err != nil {
		h.log.Errorw("failed to close dedupe cache", "err", err)
	}
}

func (h *Hub) markSeen(key string) bool {
	h.seenMutex.Lock()
	defer h.seenMutex.Unlock()

	if _, err := h.seen.Get(key); err == nil {
		return false
	} else if !errors.Is(err, ttlcache.ErrNotFound) {
		h.log.Warnw("dedupe cache unavailable", "err", err)
		return true
	}

	if err := h.seen.Set(key, struct{}{}); err != nil {
		h.log.Warnw("failed to remember transfer", "key", key, "err", err)
	}

	return true
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Subscription /////////////////////////////////////////////////////////////////////////////////////////////////

// Subscription is the handle of a callback that was registered with Hub.Subscribe.
type Subscription struct {
	hub        *Hub
	filter     Filter
	closure    *event.Closure[*TransferEvent]
	cancelOnce sync.Once
}

// Filter returns the Filter of the Subscription.
func (s *Subscription) Filter() Filter {
	return s.filter
}

// Cancel stops the delivery of TransferEvents. It can be called multiple times.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		s.hub.Events.TransferObserved.Detach(s.closure)
		s.hub.subscriptions.Dec()
	})
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Stats ////////////////////////////////////////////////////////////////////////////////////////////////////////

// Stats contains the counters of a Hub.
type Stats struct {
	Published     uint64 `json:"published"`
	Duplicates    uint64 `json:"duplicates"`
	PerMinute     int64  `json:"perMinute"`
	Subscriptions int64  `json:"subscriptions"`
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region HubEvents ////////////////////////////////////////////////////////////////////////////////////////////////////

// HubEvents is a container that acts as a dictionary for the events of a Hub.
type HubEvents struct {
	// TransferObserved is triggered for every TransferEvent that was not published before.
	TransferObserved *event.Event[*TransferEvent]
}

func newHubEvents() *HubEvents {
	return &HubEvents{
		TransferObserved: event.New[*TransferEvent](),
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
