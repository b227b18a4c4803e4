package reconciler

import (
	"time"

	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/zap"

	"github.com/bountyboard/mintwatch/packages/ledger"
)

// DefaultGracePeriod is the time a direct channel error is withheld to give the feed a chance to confirm the attempt.
const DefaultGracePeriod = 60 * time.Second

// WithGracePeriod sets the time a direct channel error is withheld.
func WithGracePeriod(gracePeriod time.Duration) Option {
	return func(o *options) {
		o.gracePeriod = gracePeriod
	}
}

// WithScheduler sets the Scheduler that runs the grace timers.
func WithScheduler(scheduler Scheduler) Option {
	return func(o *options) {
		o.scheduler = scheduler
	}
}

// WithClock sets the source of the StartedAt timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithToken restricts feed matches to transfers of the given token contract.
func WithToken(token ledger.Address) Option {
	return func(o *options) {
		o.token = token
	}
}

// WithLogger sets the logger of the Reconciler.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Option represents the return type of optional parameters that can be handed into the constructor of the Reconciler.
type Option func(*options)

type options struct {
	gracePeriod time.Duration
	scheduler   Scheduler
	clock       func() time.Time
	token       ledger.Address
	log         *logger.Logger
}

func newOptions(option ...Option) (new *options) {
	new = &options{
		gracePeriod: DefaultGracePeriod,
		clock:       time.Now,
		log:         zap.NewNop().Sugar(),
	}

	for _, o := range option {
		o(new)
	}

	if new.scheduler == nil {
		new.scheduler = NewTimedScheduler(1)
	}

	return new
}
