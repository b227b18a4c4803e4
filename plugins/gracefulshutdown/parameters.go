package gracefulshutdown

import (
	"time"

	flag "github.com/spf13/pflag"
)

const (
	// CfgWaitToKillTime defines the config flag of the maximum amount of time to wait for background processes to
	// terminate.
	CfgWaitToKillTime = "gracefulShutdown.waitToKillTime"
)

func init() {
	flag.Duration(CfgWaitToKillTime, 10*time.Second, "the maximum amount of time to wait for background processes to terminate")
}
