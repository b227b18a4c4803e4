package feed

import (
	flag "github.com/spf13/pflag"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/feed/wsfeed"
)

const (
	// CfgFeedEndpoint defines the config flag of the websocket endpoint that serves the log subscription.
	CfgFeedEndpoint = "feed.endpoint"
	// CfgFeedDedupeTTL defines the config flag of the time a transfer is remembered for de-duplication.
	CfgFeedDedupeTTL = "feed.dedupeTTL"
	// CfgFeedReconnectDelay defines the config flag of the time to wait before a lost subscription is re-established.
	CfgFeedReconnectDelay = "feed.reconnectDelay"
)

func init() {
	flag.String(CfgFeedEndpoint, "ws://127.0.0.1:8546", "the websocket endpoint of the ledger node (empty disables the feed)")
	flag.Duration(CfgFeedDedupeTTL, feed.DefaultDedupeTTL, "the time a transfer is remembered for de-duplication")
	flag.Duration(CfgFeedReconnectDelay, wsfeed.DefaultReconnectDelay, "the time to wait before a lost subscription is re-established")
}
