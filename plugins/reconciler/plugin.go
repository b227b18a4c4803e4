// Package reconciler provides the Reconciler that derives the outcome of the current mint attempt.
package reconciler

import (
	"context"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"github.com/spf13/viper"
	"go.uber.org/dig"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/ledger"
	"github.com/bountyboard/mintwatch/packages/reconciler"
	"github.com/bountyboard/mintwatch/packages/shutdown"
	ledgerplugin "github.com/bountyboard/mintwatch/plugins/ledger"
)

// PluginName is the name of the reconciler plugin.
const PluginName = "Reconciler"

var (
	// Plugin is the plugin instance of the reconciler plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

type dependencies struct {
	dig.In

	Reconciler *reconciler.Reconciler
}

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Hook(event.NewClosure(func(event *node.InitEvent) {
		if err := event.Container.Provide(newReconciler); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func newReconciler(settings *viper.Viper, watcher *ledger.Watcher, hub *feed.Hub, accounts *ledgerplugin.Accounts) *reconciler.Reconciler {
	return reconciler.New(watcher, hub,
		reconciler.WithGracePeriod(settings.GetDuration(CfgReconcilerGracePeriod)),
		reconciler.WithScheduler(reconciler.NewTimedScheduler(settings.GetInt(CfgReconcilerTimerWorkers))),
		reconciler.WithToken(accounts.Token),
		reconciler.WithLogger(logger.NewLogger(PluginName)),
	)
}

func configure(plugin *node.Plugin) {
	deps.Reconciler.Events.StatusChanged.Hook(event.NewClosure(func(statusChangedEvent *reconciler.StatusChangedEvent) {
		current := statusChangedEvent.Current
		switch current.Phase {
		case reconciler.PhaseConfirmed:
			plugin.LogInfof("Attempt %d confirmed: %s minted to %s", current.Epoch, current.Amount, current.Actor)
		case reconciler.PhaseFailed:
			plugin.LogErrorf("Attempt %d failed: %s", current.Epoch, current.Reason())
		}
	}))
}

func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker(PluginName, func(ctx context.Context) {
		<-ctx.Done()

		plugin.LogInfo("Stopping Reconciler ...")
		deps.Reconciler.Shutdown()
		plugin.LogInfo("Stopping Reconciler ... done")
	}, shutdown.PriorityReconciler); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}
