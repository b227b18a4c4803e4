package reconciler

import (
	flag "github.com/spf13/pflag"

	"github.com/bountyboard/mintwatch/packages/reconciler"
)

const (
	// CfgReconcilerGracePeriod defines the config flag of the time a direct channel error is withheld.
	CfgReconcilerGracePeriod = "reconciler.gracePeriod"
	// CfgReconcilerTimerWorkers defines the config flag of the number of workers that execute expired grace timers.
	CfgReconcilerTimerWorkers = "reconciler.timerWorkers"
)

func init() {
	flag.Duration(CfgReconcilerGracePeriod, reconciler.DefaultGracePeriod, "the time a direct channel error is withheld to give the feed a chance to confirm the attempt")
	flag.Int(CfgReconcilerTimerWorkers, 1, "the number of workers that execute expired grace timers")
}
