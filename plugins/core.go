// Package plugins lists the plugins that make up a mintwatch daemon.
package plugins

import (
	"github.com/iotaledger/hive.go/node"

	"github.com/bountyboard/mintwatch/plugins/config"
	"github.com/bountyboard/mintwatch/plugins/feed"
	"github.com/bountyboard/mintwatch/plugins/gracefulshutdown"
	"github.com/bountyboard/mintwatch/plugins/ledger"
	"github.com/bountyboard/mintwatch/plugins/logger"
	"github.com/bountyboard/mintwatch/plugins/prometheus"
	"github.com/bountyboard/mintwatch/plugins/reconciler"
	"github.com/bountyboard/mintwatch/plugins/webapi"
)

// Core contains the plugins of a mintwatch daemon in the order they are initialized, configured and run. The config
// plugin has to come first because every other plugin reads its parameters from it, and the logger plugin has to
// follow before any plugin logs.
var Core = node.Plugins(
	config.Plugin,
	logger.Plugin,
	gracefulshutdown.Plugin,
	ledger.Plugin,
	feed.Plugin,
	reconciler.Plugin,
	prometheus.Plugin,
	webapi.Plugin,
)
