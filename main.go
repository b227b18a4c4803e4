package main

import (
	"github.com/iotaledger/hive.go/node"

	"github.com/bountyboard/mintwatch/plugins"
)

func main() {
	node.Run(plugins.Core)
}
