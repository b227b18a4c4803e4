// Package jsonrpc implements the ledger.Connector on top of the JSON-RPC interface of an Ethereum compatible node.
package jsonrpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"go.uber.org/atomic"

	"github.com/bountyboard/mintwatch/packages/ledger"
)

const (
	methodSendTransaction       = "eth_sendTransaction"
	methodGetTransactionReceipt = "eth_getTransactionReceipt"

	defaultRequestTimeout = 10 * time.Second
)

// ErrUnexpectedResponse is returned when the node answers with something that is not a JSON-RPC response.
var ErrUnexpectedResponse = errors.New("unexpected JSON-RPC response")

// region Connector ////////////////////////////////////////////////////////////////////////////////////////////////////

// Connector is a ledger.Connector that mints through a node that manages the key of the minter account.
type Connector struct {
	client   *resty.Client
	endpoint string
	token    ledger.Address
	minter   ledger.Address
	nextID   *atomic.Uint64
}

// NewConnector returns a Connector that sends mints of the given token contract from the minter account.
func NewConnector(endpoint string, token, minter ledger.Address, httpClient ...*resty.Client) *Connector {
	client := resty.New().SetTimeout(defaultRequestTimeout).SetHeader("Content-Type", "application/json")
	if len(httpClient) > 0 {
		client = httpClient[0]
	}

	return &Connector{
		client:   client,
		endpoint: endpoint,
		token:    token,
		minter:   minter,
		nextID:   atomic.NewUint64(0),
	}
}

// SendMint submits the mint call and returns the hash of the accepted transaction.
func (c *Connector) SendMint(ctx context.Context, action *ledger.MintAction) (txHash ledger.TxHash, err error) {
	var result string
	if err = c.call(ctx, methodSendTransaction, &result, transactionArgs{
		From: c.minter.String(),
		To:   c.token.String(),
		Data: "0x" + hex.EncodeToString(ledger.EncodeMintCall(action)),
	}); err != nil {
		return ledger.EmptyTxHash, err
	}

	return ledger.TxHashFromHex(result)
}

// TransactionReceipt returns the Receipt of the transaction or ledger.ErrReceiptNotFound if it is not included yet.
func (c *Connector) TransactionReceipt(ctx context.Context, txHash ledger.TxHash) (receipt *ledger.Receipt, err error) {
	var result *receiptResult
	if err = c.call(ctx, methodGetTransactionReceipt, &result, txHash.String()); err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ledger.ErrReceiptNotFound
	}

	return result.toReceipt()
}

func (c *Connector) call(ctx context.Context, method string, result interface{}, params ...interface{}) error {
	if params == nil {
		params = []interface{}{}
	}

	response := &responseEnvelope{}
	res, err := c.client.R().
		SetContext(ctx).
		SetBody(&requestEnvelope{
			JSONRPC: "2.0",
			ID:      c.nextID.Inc(),
			Method:  method,
			Params:  params,
		}).
		SetResult(response).
		SetError(response).
		Post(c.endpoint)
	if err != nil {
		return errors.Wrapf(err, "%s failed", method)
	}
	if response.Error != nil {
		return response.Error
	}
	if res.IsError() {
		return errors.Wrapf(ErrUnexpectedResponse, "%s returned HTTP status %d", method, res.StatusCode())
	}
	if len(response.Result) == 0 {
		return errors.Wrapf(ErrUnexpectedResponse, "%s returned neither result nor error", method)
	}

	if err = json.Unmarshal(response.Result, result); err != nil {
		return errors.Wrapf(ErrUnexpectedResponse, "failed to decode result of %s: %s", method, err)
	}

	return nil
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region RPCError /////////////////////////////////////////////////////////////////////////////////////////////////////

// RPCError is the error object of a JSON-RPC response. Its message is the reason reported by the node.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error returns the reason reported by the node.
func (r *RPCError) Error() string {
	return r.Message
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region wire types ///////////////////////////////////////////////////////////////////////////////////////////////////

type requestEnvelope struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type responseEnvelope struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

type transactionArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
	Data string `json:"data"`
}

type receiptResult struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     string `json:"blockNumber"`
	Status          string `json:"status"`
	GasUsed         string `json:"gasUsed"`
}

func (r *receiptResult) toReceipt() (receipt *ledger.Receipt, err error) {
	receipt = &ledger.Receipt{}
	if receipt.TxHash, err = ledger.TxHashFromHex(r.TransactionHash); err != nil {
		return nil, err
	}
	if receipt.BlockNumber, err = parseQuantity(r.BlockNumber); err != nil {
		return nil, errors.Wrap(err, "invalid blockNumber")
	}
	if receipt.Status, err = parseQuantity(r.Status); err != nil {
		return nil, errors.Wrap(err, "invalid status")
	}
	if receipt.GasUsed, err = parseQuantity(r.GasUsed); err != nil {
		return nil, errors.Wrap(err, "invalid gasUsed")
	}

	return receipt, nil
}

// parseQuantity decodes a 0x prefixed hex quantity. An empty quantity is 0.
func parseQuantity(quantity string) (uint64, error) {
	if quantity == "" {
		return 0, nil
	}
	if !strings.HasPrefix(quantity, "0x") {
		return 0, errors.Newf("quantity %q is missing the 0x prefix", quantity)
	}

	return strconv.ParseUint(quantity[2:], 16, 64)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
