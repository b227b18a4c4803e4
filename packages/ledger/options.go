package ledger

import (
	"time"

	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is the interval in which the Watcher asks for a Receipt.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultReceiptTimeout is the time the Watcher waits for a Receipt before it gives up.
	DefaultReceiptTimeout = 150 * time.Second
	// DefaultWorkerCount is the number of Submissions that can be watched at the same time.
	DefaultWorkerCount = 64
)

// region Options //////////////////////////////////////////////////////////////////////////////////////////////////////

// WithPollInterval is an Option for the Watcher that configures how often a Receipt is requested.
func WithPollInterval(pollInterval time.Duration) Option {
	return func(options *options) {
		options.pollInterval = pollInterval
	}
}

// WithReceiptTimeout is an Option for the Watcher that configures how long an accepted transaction may stay without
// Receipt before its Submission fails with ErrReceiptTimeout.
func WithReceiptTimeout(receiptTimeout time.Duration) Option {
	return func(options *options) {
		options.receiptTimeout = receiptTimeout
	}
}

// WithWorkerCount is an Option for the Watcher that configures the size of its worker pool.
func WithWorkerCount(workerCount int) Option {
	return func(options *options) {
		options.workerCount = workerCount
	}
}

// WithLogger is an Option for the Watcher that configures its logger.
func WithLogger(log *logger.Logger) Option {
	return func(options *options) {
		options.log = log
	}
}

// Option represents the return type of optional parameters that can be handed into the constructor of the Watcher.
type Option func(*options)

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region options //////////////////////////////////////////////////////////////////////////////////////////////////////

type options struct {
	pollInterval   time.Duration
	receiptTimeout time.Duration
	workerCount    int
	log            *logger.Logger
}

func newOptions(option ...Option) (new *options) {
	new = &options{
		pollInterval:   DefaultPollInterval,
		receiptTimeout: DefaultReceiptTimeout,
		workerCount:    DefaultWorkerCount,
	}
	for _, opt := range option {
		opt(new)
	}
	if new.log == nil {
		new.log = zap.NewNop().Sugar()
	}

	return new
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
