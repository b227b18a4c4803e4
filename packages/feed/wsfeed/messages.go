package wsfeed

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

// ErrNotATransfer is returned for logs that are not ERC-20 Transfer logs.
var ErrNotATransfer = errors.New("log is not a transfer")

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type logFilter struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
}

type response struct {
	ID     uint64         `json:"id"`
	Result string         `json:"result"`
	Error  *responseError `json:"error"`
}

type responseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type notification struct {
	Method string              `json:"method"`
	Params *notificationParams `json:"params"`
}

type notificationParams struct {
	Subscription string    `json:"subscription"`
	Result       *logEntry `json:"result"`
}

// logEntry is the JSON representation of a contract log.
type logEntry struct {
	Address         string   `json:"address"`
	Topics          []string `json:"topics"`
	Data            string   `json:"data"`
	BlockNumber     string   `json:"blockNumber"`
	TransactionHash string   `json:"transactionHash"`
	LogIndex        string   `json:"logIndex"`
	Removed         bool     `json:"removed"`
}

func (l *logEntry) toTransferEvent() (transfer *feed.TransferEvent, err error) {
	if len(l.Topics) != 3 || !strings.EqualFold(l.Topics[0], ledger.TransferTopic.String()) {
		return nil, ErrNotATransfer
	}

	transfer = &feed.TransferEvent{}
	if transfer.Token, err = ledger.AddressFromHex(l.Address); err != nil {
		return nil, err
	}
	if transfer.From, err = topicAddress(l.Topics[1]); err != nil {
		return nil, errors.Wrap(err, "invalid from topic")
	}
	if transfer.To, err = topicAddress(l.Topics[2]); err != nil {
		return nil, errors.Wrap(err, "invalid to topic")
	}

	data, err := hex.DecodeString(strings.TrimPrefix(l.Data, "0x"))
	if err != nil {
		return nil, errors.Wrap(err, "invalid data")
	}
	if transfer.Value, err = amount.FromWord(data); err != nil {
		return nil, err
	}

	if transfer.TxHash, err = ledger.TxHashFromHex(l.TransactionHash); err != nil {
		return nil, err
	}
	if transfer.LogIndex, err = parseQuantity(l.LogIndex); err != nil {
		return nil, errors.Wrap(err, "invalid logIndex")
	}
	if transfer.BlockNumber, err = parseQuantity(l.BlockNumber); err != nil {
		return nil, errors.Wrap(err, "invalid blockNumber")
	}

	return transfer, nil
}

// topicAddress decodes an Address from an indexed event parameter.
func topicAddress(topic string) (ledger.Address, error) {
	word, err := ledger.TxHashFromHex(topic)
	if err != nil {
		return ledger.ZeroAddress, err
	}

	return ledger.AddressFromWord(word[:])
}

func parseQuantity(quantity string) (uint64, error) {
	if quantity == "" {
		return 0, nil
	}

	return strconv.ParseUint(strings.TrimPrefix(quantity, "0x"), 16, 64)
}
