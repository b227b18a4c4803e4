// Package ledger provides the receipt Watcher that submits mint transactions to the ledger node.
package ledger

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/iotaledger/hive.go/daemon"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/node"
	"github.com/spf13/viper"
	"go.uber.org/dig"

	"github.com/bountyboard/mintwatch/packages/ledger"
	"github.com/bountyboard/mintwatch/packages/ledger/jsonrpc"
	"github.com/bountyboard/mintwatch/packages/shutdown"
)

// PluginName is the name of the ledger plugin.
const PluginName = "Ledger"

var (
	// Plugin is the plugin instance of the ledger plugin.
	Plugin *node.Plugin
	deps   = new(dependencies)
)

// Accounts contains the parsed addresses of the ledger parameters.
type Accounts struct {
	Token  ledger.Address
	Minter ledger.Address
}

type dependencies struct {
	dig.In

	Watcher *ledger.Watcher
}

func init() {
	Plugin = node.NewPlugin(PluginName, deps, node.Enabled, run)

	Plugin.Events.Init.Hook(event.NewClosure(func(event *node.InitEvent) {
		if err := event.Container.Provide(newAccounts); err != nil {
			Plugin.Panic(err)
		}
		if err := event.Container.Provide(newWatcher); err != nil {
			Plugin.Panic(err)
		}
	}))
}

func newAccounts(settings *viper.Viper) (*Accounts, error) {
	token, err := ledger.AddressFromHex(settings.GetString(CfgLedgerToken))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", CfgLedgerToken)
	}
	if token.IsZero() {
		return nil, errors.Wrapf(ledger.ErrInvalidAddress, "%s must not be the zero address", CfgLedgerToken)
	}

	minter, err := ledger.AddressFromHex(settings.GetString(CfgLedgerMinter))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", CfgLedgerMinter)
	}

	return &Accounts{Token: token, Minter: minter}, nil
}

func newWatcher(settings *viper.Viper, accounts *Accounts) (*ledger.Watcher, error) {
	connector := jsonrpc.NewConnector(settings.GetString(CfgLedgerEndpoint), accounts.Token, accounts.Minter)

	return ledger.NewWatcher(connector,
		ledger.WithPollInterval(settings.GetDuration(CfgLedgerPollInterval)),
		ledger.WithReceiptTimeout(settings.GetDuration(CfgLedgerReceiptTimeout)),
		ledger.WithWorkerCount(settings.GetInt(CfgLedgerWorkerCount)),
		ledger.WithLogger(logger.NewLogger("Watcher")),
	)
}

func run(plugin *node.Plugin) {
	if err := daemon.BackgroundWorker("Receipt Watcher", func(ctx context.Context) {
		plugin.LogInfo("Starting Receipt Watcher ... done")
		<-ctx.Done()

		plugin.LogInfo("Stopping Receipt Watcher ...")
		deps.Watcher.Shutdown()
		plugin.LogInfo("Stopping Receipt Watcher ... done")
	}, shutdown.PriorityLedger); err != nil {
		plugin.Panicf("Failed to start as daemon: %s", err)
	}
}
