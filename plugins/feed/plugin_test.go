package feed

import (
	"sync"
	"testing"
	"time"

	"github.com/iotaledger/hive.go/configuration"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/feed/wsfeed"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

func TestConfigure_LogsSubscription(t *testing.T) {
	config := configuration.New()
	require.NoError(t, config.Set(logger.ConfigurationKeyOutputPaths, []string{"stderr"}))
	require.NoError(t, config.Set(logger.ConfigurationKeyDisableEvents, false))
	require.NoError(t, logger.InitGlobalLogger(config))

	var mutex sync.Mutex
	var messages []string
	record := event.NewClosure(func(logEvent *logger.LogEvent) {
		if logEvent.Name != PluginName {
			return
		}

		mutex.Lock()
		defer mutex.Unlock()
		messages = append(messages, logEvent.Msg)
	})
	logger.Events.AnyMsg.Hook(record)
	defer logger.Events.AnyMsg.Detach(record)

	hub, err := feed.NewHub(time.Minute)
	require.NoError(t, err)
	defer hub.Shutdown()

	deps.Client = wsfeed.New("ws://localhost:8546", ledger.Address{19: 0xc0}, hub)
	configure(Plugin)

	deps.Client.Events.Connected.Trigger("0xabc")
	deps.Client.Events.Disconnected.Trigger("ws://localhost:8546")

	mutex.Lock()
	defer mutex.Unlock()
	assert.Equal(t, []string{
		"Subscribed to transfer logs with subscription 0xabc",
		"Lost transfer log subscription at ws://localhost:8546",
	}, messages)
}
