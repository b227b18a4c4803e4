// Package metrics exposes the state of the reconciler and its collaborators as prometheus metrics.
package metrics

import (
	"net/http"
	"sync"

	"github.com/iotaledger/hive.go/generics/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/reconciler"
)

const namespace = "mintwatch"

// Collector owns the prometheus registry of the daemon. Event driven metrics are updated as the events fire, sampled
// metrics are refreshed by the collect functions before every scrape.
type Collector struct {
	Registry *prometheus.Registry

	attempts      *prometheus.CounterVec
	outcomes      *prometheus.CounterVec
	graceTimers   *prometheus.CounterVec
	phase         *prometheus.GaugeVec
	feedPublished prometheus.Gauge
	feedDupes     prometheus.Gauge
	feedRate      prometheus.Gauge
	feedConnected prometheus.Gauge
	watchesActive prometheus.Gauge

	collects      []func()
	collectsMutex sync.Mutex
}

// NewCollector creates a Collector with all metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		Registry: prometheus.NewRegistry(),

		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Number of started mint attempts.",
		}, []string{"superseded"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempt_outcomes_total",
			Help:      "Number of attempts that reached a terminal phase.",
		}, []string{"phase"}),
		graceTimers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grace_timers_total",
			Help:      "Lifecycle events of the grace timers.",
		}, []string{"event"}),
		phase: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "attempt_phase",
			Help:      "Phase of the current attempt (1 for the active phase).",
		}, []string{"phase"}),
		feedPublished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_transfers_published",
			Help:      "Number of transfers that were published by the feed.",
		}),
		feedDupes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_transfers_duplicate",
			Help:      "Number of transfers that were dropped as duplicates.",
		}),
		feedRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_transfers_per_minute",
			Help:      "Number of transfers published within the last minute.",
		}),
		feedConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_connected",
			Help:      "1 while the log subscription is established.",
		}),
		watchesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "receipt_watches_active",
			Help:      "Number of submissions whose receipt is being watched.",
		}),
	}

	c.Registry.MustRegister(
		c.attempts,
		c.outcomes,
		c.graceTimers,
		c.phase,
		c.feedPublished,
		c.feedDupes,
		c.feedRate,
		c.feedConnected,
		c.watchesActive,
	)
	c.setPhase(reconciler.PhaseIdle)

	return c
}

// AttachReconciler updates the attempt metrics whenever the Reconciler triggers an event.
func (c *Collector) AttachReconciler(r *reconciler.Reconciler) {
	r.Events.StatusChanged.Hook(event.NewClosure(func(statusChangedEvent *reconciler.StatusChangedEvent) {
		current, previous := statusChangedEvent.Current, statusChangedEvent.Previous

		if current.Epoch != previous.Epoch {
			c.attempts.WithLabelValues(boolLabel(previous.Phase == reconciler.PhasePending)).Inc()
		}
		if current.Phase.IsTerminal() {
			c.outcomes.WithLabelValues(current.Phase.String()).Inc()
		}
		c.setPhase(current.Phase)
	}))

	r.Events.GraceArmed.Hook(event.NewClosure(func(*reconciler.GraceEvent) {
		c.graceTimers.WithLabelValues("armed").Inc()
	}))
	r.Events.GraceCancelled.Hook(event.NewClosure(func(*reconciler.GraceEvent) {
		c.graceTimers.WithLabelValues("cancelled").Inc()
	}))
	r.Events.GraceExpired.Hook(event.NewClosure(func(*reconciler.GraceEvent) {
		c.graceTimers.WithLabelValues("expired").Inc()
	}))
}

// CollectHub samples the Stats of the Hub before every scrape.
func (c *Collector) CollectHub(hub *feed.Hub) {
	c.AddCollect(func() {
		stats := hub.Stats()
		c.feedPublished.Set(float64(stats.Published))
		c.feedDupes.Set(float64(stats.Duplicates))
		c.feedRate.Set(float64(stats.PerMinute))
	})
}

// CollectConnection samples whether the feed source is connected before every scrape.
func (c *Collector) CollectConnection(isConnected func() bool) {
	c.AddCollect(func() {
		if isConnected() {
			c.feedConnected.Set(1)
			return
		}
		c.feedConnected.Set(0)
	})
}

// CollectWatches samples the number of active receipt watches before every scrape.
func (c *Collector) CollectWatches(running func() int) {
	c.AddCollect(func() {
		c.watchesActive.Set(float64(running()))
	})
}

// AddCollect registers a function that refreshes sampled metrics.
func (c *Collector) AddCollect(collect func()) {
	c.collectsMutex.Lock()
	defer c.collectsMutex.Unlock()

	c.collects = append(c.collects, collect)
}

// Collect refreshes all sampled metrics.
func (c *Collector) Collect() {
	c.collectsMutex.Lock()
	defer c.collectsMutex.Unlock()

	for _, collect := range c.collects {
		collect()
	}
}

// Handler returns the http.Handler that serves the metrics in the exposition format.
func (c *Collector) Handler() http.Handler {
	handler := promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.Collect()
		handler.ServeHTTP(w, r)
	})
}

func (c *Collector) setPhase(active reconciler.Phase) {
	for _, phase := range []reconciler.Phase{reconciler.PhaseIdle, reconciler.PhasePending, reconciler.PhaseConfirmed, reconciler.PhaseFailed} {
		value := 0.0
		if phase == active {
			value = 1
		}
		c.phase.WithLabelValues(phase.String()).Set(value)
	}
}

func boolLabel(value bool) string {
	if value {
		return "true"
	}

	return "false"
}
