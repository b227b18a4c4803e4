// Package gracefulshutdown shuts the daemon down on SIGINT and SIGTERM and kills it if the background workers do not
// terminate in time.
package gracefulshutdown

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/node"
	"github.com/spf13/viper"
	"go.uber.org/dig"
)

// PluginName is the name of the graceful shutdown plugin.
const PluginName = "Graceful Shutdown"

var (
	// Plugin is the plugin instance of the graceful shutdown plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

type dependencies struct {
	dig.In

	Settings *viper.Viper
}

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, run)
}

func run(plugin *node.Plugin) {
	waitToKillTime := deps.Settings.GetDuration(CfgWaitToKillTime)

	gracefulStop := make(chan os.Signal, 1)
	signal.Notify(gracefulStop, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		<-gracefulStop

		plugin.LogWarnf("Received shutdown request - waiting (max %s) to finish processing ...", waitToKillTime)

		go func() {
			start := time.Now()
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			for x := range ticker.C {
				elapsed := x.Sub(start)
				if elapsed > waitToKillTime {
					plugin.LogError("Background processes did not terminate in time! Forcing shutdown ...")
					os.Exit(1)
				}

				processList := ""
				if runningBackgroundWorkers := daemon.GetRunningBackgroundWorkers(); len(runningBackgroundWorkers) >= 1 {
					processList = "(" + strings.Join(runningBackgroundWorkers, ", ") + ") "
				}
				plugin.LogWarnf("Received shutdown request - waiting (max %s) to finish processing %s...", (waitToKillTime - elapsed).Round(time.Second), processList)
			}
		}()

		daemon.Shutdown()
	}()
}
