package plugins

import (
	"testing"

	"github.com/iotaledger/hive.go/node"
	"github.com/labstack/echo"
	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/feed/wsfeed"
	"github.com/bountyboard/mintwatch/packages/ledger"
	"github.com/bountyboard/mintwatch/packages/metrics"
	"github.com/bountyboard/mintwatch/packages/reconciler"
	"github.com/bountyboard/mintwatch/plugins/config"
	feedplugin "github.com/bountyboard/mintwatch/plugins/feed"
	ledgerplugin "github.com/bountyboard/mintwatch/plugins/ledger"
	"github.com/bountyboard/mintwatch/plugins/logger"
	"github.com/bountyboard/mintwatch/plugins/prometheus"
	reconcilerplugin "github.com/bountyboard/mintwatch/plugins/reconciler"
	"github.com/bountyboard/mintwatch/plugins/webapi"
)

func TestCore_ResolvesDependencies(t *testing.T) {
	settings, err := config.Load(flag.CommandLine, []string{
		"--skip-config",
		"--ledger.token", "0x00000000000000000000000000000000000000c0",
		"--ledger.minter", "0x00000000000000000000000000000000000000d0",
		"--logger.outputPaths", "stderr",
	})
	require.NoError(t, err)

	container := dig.New()
	require.NoError(t, container.Provide(func() *viper.Viper { return settings }))

	for _, plugin := range []*node.Plugin{
		logger.Plugin,
		ledgerplugin.Plugin,
		feedplugin.Plugin,
		reconcilerplugin.Plugin,
		prometheus.Plugin,
		webapi.Plugin,
	} {
		plugin.Events.Init.Trigger(&node.InitEvent{Plugin: plugin, Container: container})
	}

	require.NoError(t, container.Invoke(func(accounts *ledgerplugin.Accounts, watcher *ledger.Watcher, hub *feed.Hub,
		client *wsfeed.Client, r *reconciler.Reconciler, collector *metrics.Collector, server *echo.Echo,
	) {
		defer watcher.Shutdown()
		defer hub.Shutdown()
		defer r.Shutdown()

		assert.Equal(t, ledger.Address{19: 0xc0}, accounts.Token)
		assert.Equal(t, ledger.Address{19: 0xd0}, accounts.Minter)
		assert.False(t, client.IsConnected())
		assert.Equal(t, reconciler.PhaseIdle, r.Status().Phase)
		assert.NotNil(t, collector)
		assert.NotNil(t, server)
	}))
}
