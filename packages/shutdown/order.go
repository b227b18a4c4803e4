package shutdown

// Background workers are shut down in the reverse order of their priority: the web API stops accepting requests first
// and the ledger watcher releases its workers last.
const (
	PriorityLedger = iota
	PriorityReconciler
	PriorityFeed
	PriorityPrometheus
	PriorityHealthz
	PriorityWebAPI
)
