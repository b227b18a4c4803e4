package wsfeed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

const subscriptionID = "0x9cef478923ff08bf67fde6c64013158d"

var (
	token = ledger.Address{0xc0}
	alice = ledger.Address{0xa1}

	upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
)

func word(address ledger.Address) string {
	return "0x" + strings.Repeat("00", 12) + strings.TrimPrefix(address.String(), "0x")
}

func transferLog(from, to ledger.Address, txByte byte, removed bool) string {
	return fmt.Sprintf(`{"jsonrpc":"2.0","method":"eth_subscription","params":{"subscription":%q,"result":{`+
		`"address":%q,"topics":[%q,%q,%q],"data":"0x%s","blockNumber":"0x10",`+
		`"transactionHash":"0x%s","logIndex":"0x0","removed":%t}}}`,
		subscriptionID, token, ledger.TransferTopic, word(from), word(to), strings.Repeat("00", 31)+"64",
		strings.Repeat(fmt.Sprintf("%02x", txByte), ledger.TxHashLength), removed)
}

// node accepts log subscriptions and sends the given messages on every connection before it hangs up.
func node(t *testing.T, subscriptions chan<- *request, messages ...string) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		req := &request{}
		if err := conn.ReadJSON(req); err != nil {
			return
		}
		select {
		case subscriptions <- req:
		default:
		}

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":1,"result":"`+subscriptionID+`"}`)); err != nil {
			return
		}
		for _, message := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(message)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func TestClient_PublishesMints(t *testing.T) {
	subscriptions := make(chan *request, 10)
	server := node(t, subscriptions,
		transferLog(ledger.ZeroAddress, alice, 0x01, false),
		transferLog(ledger.ZeroAddress, alice, 0x02, true),
		transferLog(ledger.ZeroAddress, alice, 0x01, false),
		`{"jsonrpc":"2.0","method":"eth_subscription","params":{"subscription":"0xother","result":{}}}`,
	)

	hub, err := feed.NewHub(time.Minute)
	require.NoError(t, err)
	defer hub.Shutdown()

	var mutex sync.Mutex
	var mints []*feed.TransferEvent
	hub.Subscribe(feed.MintsTo(alice), func(transfer *feed.TransferEvent) {
		mutex.Lock()
		defer mutex.Unlock()
		mints = append(mints, transfer)
	})

	client := New("ws"+strings.TrimPrefix(server.URL, "http"), token, hub,
		WithReconnectDelay(10*time.Millisecond),
		WithLogger(logger.NewExampleLogger("wsfeed")),
	)
	connected := make(chan string, 10)
	client.Events.Connected.Hook(event.NewClosure(func(id string) {
		select {
		case connected <- id:
		default:
		}
	}))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		client.Run(ctx)
	}()

	subscription := <-subscriptions
	assert.Equal(t, "eth_subscribe", subscription.Method)
	require.Len(t, subscription.Params, 2)
	assert.Equal(t, "logs", subscription.Params[0])
	assert.Equal(t, subscriptionID, <-connected)

	// the node hangs up after every batch, the replay after the reconnect must be deduplicated
	<-subscriptions
	assert.Eventually(t, func() bool {
		return hub.Stats().Duplicates >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-stopped
	assert.False(t, client.IsConnected())

	mutex.Lock()
	defer mutex.Unlock()
	require.Len(t, mints, 1)
	assert.Equal(t, ledger.ZeroAddress, mints[0].From)
	assert.Equal(t, alice, mints[0].To)
	assert.Equal(t, token, mints[0].Token)
	assert.Equal(t, "100", mints[0].Value.String())
	assert.Equal(t, uint64(16), mints[0].BlockNumber)
}

func TestClient_StopsRetryingWhenCancelled(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	hub, err := feed.NewHub(time.Minute)
	require.NoError(t, err)
	defer hub.Shutdown()

	client := New(endpoint, token, hub, WithReconnectDelay(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		client.Run(ctx)
	}()

	// let the first dial fail so that the client waits for the next attempt
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-stopped:
	case <-time.After(backoffDelay / 2):
		t.Fatal("Run did not return after the context was cancelled")
	}
	assert.False(t, client.IsConnected())
}

func TestLogEntry_ToTransferEvent(t *testing.T) {
	entry := &logEntry{
		Address:         token.String(),
		Topics:          []string{ledger.TransferTopic.String(), word(ledger.ZeroAddress), word(alice)},
		Data:            "0x" + strings.Repeat("00", 31) + "0a",
		TransactionHash: "0x" + strings.Repeat("ab", ledger.TxHashLength),
		LogIndex:        "0x3",
	}

	transfer, err := entry.toTransferEvent()
	require.NoError(t, err)
	assert.True(t, transfer.IsMint())
	assert.Equal(t, alice, transfer.To)
	assert.Equal(t, "10", transfer.Value.String())
	assert.Equal(t, uint64(3), transfer.LogIndex)

	entry.Topics = entry.Topics[:2]
	_, err = entry.toTransferEvent()
	assert.ErrorIs(t, err, ErrNotATransfer)
}
