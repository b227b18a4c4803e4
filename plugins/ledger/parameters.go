package ledger

import (
	flag "github.com/spf13/pflag"

	"github.com/bountyboard/mintwatch/packages/ledger"
)

const (
	// CfgLedgerEndpoint defines the config flag of the JSON-RPC endpoint of the ledger node.
	CfgLedgerEndpoint = "ledger.endpoint"
	// CfgLedgerToken defines the config flag of the token contract that is minted.
	CfgLedgerToken = "ledger.token"
	// CfgLedgerMinter defines the config flag of the account that sends the mint transactions.
	CfgLedgerMinter = "ledger.minter"
	// CfgLedgerPollInterval defines the config flag of the receipt poll interval.
	CfgLedgerPollInterval = "ledger.pollInterval"
	// CfgLedgerReceiptTimeout defines the config flag of the time to wait for a receipt.
	CfgLedgerReceiptTimeout = "ledger.receiptTimeout"
	// CfgLedgerWorkerCount defines the config flag of the number of receipts that are watched at the same time.
	CfgLedgerWorkerCount = "ledger.workerCount"
)

func init() {
	flag.String(CfgLedgerEndpoint, "http://127.0.0.1:8545", "the JSON-RPC endpoint of the ledger node")
	flag.String(CfgLedgerToken, "", "the address of the token contract")
	flag.String(CfgLedgerMinter, "", "the address of the account that sends the mint transactions")
	flag.Duration(CfgLedgerPollInterval, ledger.DefaultPollInterval, "the interval in which receipts are requested")
	flag.Duration(CfgLedgerReceiptTimeout, ledger.DefaultReceiptTimeout, "the time to wait for the receipt of an accepted transaction")
	flag.Int(CfgLedgerWorkerCount, ledger.DefaultWorkerCount, "the number of receipts that are watched at the same time")
}
