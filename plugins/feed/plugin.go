// Package feed provides the transfer Hub and keeps its websocket log subscription running.
package feed

import (
	"context"

	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"github.com/spf13/viper"
	"go.uber.org/dig"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/feed/wsfeed"
	"github.com/bountyboard/mintwatch/packages/shutdown"
	ledgerplugin "github.com/bountyboard/mintwatch/plugins/ledger"
)

// PluginName is the name of the feed plugin.
const PluginName = "Feed"

var (
	// Plugin is the plugin instance of the feed plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

type dependencies struct {
	dig.In

	Settings *viper.Viper
	Hub      *feed.Hub
	Client   *wsfeed.Client
}

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, configure, run)

	Plugin.Events.Init.Hook(event.NewClosure(func(event *node.InitEvent) {
		if err := event.Container.Provide(newHub); err != nil {
			Plugin.Panic(err)
		}
		if err := event.Container.Provide(newClient); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func newHub(settings *viper.Viper) (*feed.Hub, error) {
	return feed.NewHub(settings.GetDuration(CfgFeedDedupeTTL), logger.NewLogger("Hub"))
}

func newClient(settings *viper.Viper, accounts *ledgerplugin.Accounts, hub *feed.Hub) *wsfeed.Client {
	return wsfeed.New(settings.GetString(CfgFeedEndpoint), accounts.Token, hub,
		wsfeed.WithReconnectDelay(settings.GetDuration(CfgFeedReconnectDelay)),
		wsfeed.WithLogger(logger.NewLogger("LogSubscription")),
	)
}

func configure(plugin *node.Plugin) {
	deps.Client.Events.Connected.Hook(event.NewClosure(func(subscriptionID string) {
		plugin.LogInfof("Subscribed to transfer logs with subscription %s", subscriptionID)
	}))
	deps.Client.Events.Disconnected.Hook(event.NewClosure(func(endpoint string) {
		plugin.LogWarnf("Lost transfer log subscription at %s", endpoint)
	}))
}

func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker("Transfer Feed", func(ctx context.Context) {
		defer deps.Hub.Shutdown()

		if deps.Settings.GetString(CfgFeedEndpoint) == "" {
			plugin.LogWarnf("%s is empty, attempts can only be confirmed by their receipt", CfgFeedEndpoint)
			<-ctx.Done()
			return
		}

		plugin.LogInfo("Starting Transfer Feed ... done")
		deps.Client.Run(ctx)
		plugin.LogInfo("Stopping Transfer Feed ... done")
	}, shutdown.PriorityFeed); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}
