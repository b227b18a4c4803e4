package jsonrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyboard/mintwatch/packages/amount"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

var (
	token  = mustAddress("0x00000000000000000000000000000000000000c0")
	minter = mustAddress("0x00000000000000000000000000000000000000d0")
	actor  = mustAddress("0x00000000000000000000000000000000000000aa")
	txHash = "0x" + strings.Repeat("11", ledger.TxHashLength)
)

func mustAddress(hex string) ledger.Address {
	address, err := ledger.AddressFromHex(hex)
	if err != nil {
		panic(err)
	}

	return address
}

// node replies to every request with the response returned by the handler.
func node(t *testing.T, handler func(request *requestEnvelope) string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		request := &requestEnvelope{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(request))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(handler(request)))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestConnector_SendMint(t *testing.T) {
	requests := make(chan *requestEnvelope, 1)
	server := node(t, func(request *requestEnvelope) string {
		requests <- request
		return `{"jsonrpc":"2.0","id":1,"result":"` + txHash + `"}`
	})

	hash, err := NewConnector(server.URL, token, minter).SendMint(context.Background(), ledger.NewMintAction(actor, amount.New(5)))
	require.NoError(t, err)
	assert.Equal(t, txHash, hash.String())

	received := <-requests
	assert.Equal(t, methodSendTransaction, received.Method)
	require.Len(t, received.Params, 1)
	args := received.Params[0].(map[string]interface{})
	assert.Equal(t, minter.String(), args["from"])
	assert.Equal(t, token.String(), args["to"])
	assert.True(t, strings.HasPrefix(args["data"].(string), "0x40c10f19"))
	assert.Len(t, args["data"].(string), 2+2*(4+64))
}

func TestConnector_SendMint_RPCError(t *testing.T) {
	server := node(t, func(*requestEnvelope) string {
		return `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"insufficient funds"}}`
	})

	_, err := NewConnector(server.URL, token, minter).SendMint(context.Background(), ledger.NewMintAction(actor, amount.New(5)))
	require.Error(t, err)
	assert.EqualError(t, err, "insufficient funds")

	var rpcErr *RPCError
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, -32000, rpcErr.Code)
}

func TestConnector_TransactionReceipt(t *testing.T) {
	server := node(t, func(request *requestEnvelope) string {
		assert.Equal(t, methodGetTransactionReceipt, request.Method)
		return `{"jsonrpc":"2.0","id":1,"result":{"transactionHash":"` + txHash + `","blockNumber":"0x1b4","status":"0x1","gasUsed":"0x5208"}}`
	})

	hash, err := ledger.TxHashFromHex(txHash)
	require.NoError(t, err)

	receipt, err := NewConnector(server.URL, token, minter).TransactionReceipt(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, hash, receipt.TxHash)
	assert.Equal(t, uint64(436), receipt.BlockNumber)
	assert.Equal(t, uint64(21000), receipt.GasUsed)
	assert.True(t, receipt.Successful())
}

func TestConnector_TransactionReceipt_Pending(t *testing.T) {
	server := node(t, func(*requestEnvelope) string {
		return `{"jsonrpc":"2.0","id":1,"result":null}`
	})

	_, err := NewConnector(server.URL, token, minter).TransactionReceipt(context.Background(), ledger.TxHash{1})
	assert.True(t, errors.Is(err, ledger.ErrReceiptNotFound))
}

func TestConnector_UnexpectedResponse(t *testing.T) {
	server := node(t, func(*requestEnvelope) string {
		return `{"jsonrpc":"2.0","id":1}`
	})

	_, err := NewConnector(server.URL, token, minter).TransactionReceipt(context.Background(), ledger.TxHash{1})
	assert.True(t, errors.Is(err, ErrUnexpectedResponse))
}

func TestParseQuantity(t *testing.T) {
	for quantity, expected := range map[string]uint64{"": 0, "0x0": 0, "0x1": 1, "0xff": 255} {
		parsed, err := parseQuantity(quantity)
		require.NoError(t, err, quantity)
		assert.Equal(t, expected, parsed, quantity)
	}

	_, err := parseQuantity("12")
	assert.Error(t, err)
}
