// Package wsfeed observes the Transfer logs of a token contract through a websocket log subscription and publishes them
// to a feed.Hub.
package wsfeed

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/iotaledger/hive.go/backoff"
	"github.com/iotaledger/hive.go/generics/event"
	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/atomic"

	"github.com/bountyboard/mintwatch/packages/feed"
	"github.com/bountyboard/mintwatch/packages/ledger"
)

const (
	dialRetries  = 10
	backoffDelay = 500 * time.Millisecond

	writeTimeout = 5 * time.Second
)

var dialRetryPolicy = backoff.ConstantBackOff(backoffDelay).With(backoff.MaxRetries(dialRetries))

// ErrSubscriptionRefused is returned when the node does not accept the log subscription.
var ErrSubscriptionRefused = errors.New("log subscription refused")

// region Client ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Client keeps a log subscription for the Transfer events of a token contract open and publishes every decoded
// TransferEvent to the Hub. Lost connections are re-established after the reconnect delay.
type Client struct {
	// Events contains the dictionary of events that are triggered by the Client.
	Events *Events

	endpoint  string
	token     ledger.Address
	hub       *feed.Hub
	options   *options
	connected *atomic.Bool
	log       *logger.Logger
}

// New creates a Client for the Transfer logs of token that are served by the websocket endpoint.
func New(endpoint string, token ledger.Address, hub *feed.Hub, opts ...Option) *Client {
	options := newOptions(opts...)

	return &Client{
		Events:    newEvents(),
		endpoint:  endpoint,
		token:     token,
		hub:       hub,
		options:   options,
		connected: atomic.NewBool(false),
		log:       options.log,
	}
}

// IsConnected returns true while a log subscription is active.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Run keeps the subscription alive until the context is done.
func (c *Client) Run(ctx context.Context) {
	for {
		if !c.connect(ctx) {
			return
		}

		c.log.Infof("disconnected from %s - will retry reconnecting after %v", c.endpoint, c.options.reconnectDelay)
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.options.reconnectDelay):
		}
	}
}

// connect serves a single connection and returns true if a reconnect should be attempted.
func (c *Client) connect(ctx context.Context) (retry bool) {
	conn, err := c.dial(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		c.log.Warn(err)
		return true
	}

	connectionClosed := make(chan struct{})
	defer close(connectionClosed)
	go func() {
		select {
		case <-ctx.Done():
		case <-connectionClosed:
		}
		_ = conn.Close()
	}()

	subscriptionID, err := c.subscribe(conn)
	if err != nil {
		c.log.Errorw("failed to subscribe to transfer logs", "endpoint", c.endpoint, "err", err)
		return ctx.Err() == nil
	}

	c.connected.Store(true)
	defer c.connected.Store(false)
	c.log.Infow("subscribed to transfer logs", "endpoint", c.endpoint, "token", c.token, "subscription", subscriptionID)
	c.Events.Connected.Trigger(subscriptionID)
	defer c.Events.Disconnected.Trigger(c.endpoint)

	for {
		msg := &notification{}
		if err := conn.ReadJSON(msg); err != nil {
			if ctx.Err() != nil {
				return false
			}
			c.log.Warnw("lost connection", "endpoint", c.endpoint, "err", err)
			return true
		}

		c.handleNotification(subscriptionID, msg)
	}
}

// dial connects to the endpoint and retries according to the dial retry policy. It gives up as soon as the context is
// done, also while waiting for the next attempt.
func (c *Client) dial(ctx context.Context) (conn *websocket.Conn, err error) {
	policy := dialRetryPolicy.New()
	for {
		if conn, _, err = c.options.dialer.DialContext(ctx, c.endpoint, nil); err == nil {
			return conn, nil
		}
		err = errors.Wrapf(err, "can't connect to %s", c.endpoint)

		delay := policy.NextBackOff()
		if delay == backoff.Stop {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, errors.WithStack(ctx.Err())
		case <-time.After(delay):
		}
	}
}

func (c *Client) subscribe(conn *websocket.Conn) (subscriptionID string, err error) {
	if err = conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return "", errors.WithStack(err)
	}
	if err = conn.WriteJSON(&request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "eth_subscribe",
		Params: []interface{}{"logs", &logFilter{
			Address: c.token.String(),
			Topics:  []string{ledger.TransferTopic.String()},
		}},
	}); err != nil {
		return "", errors.Wrap(err, "failed to send subscription request")
	}

	res := &response{}
	if err = conn.ReadJSON(res); err != nil {
		return "", errors.Wrap(err, "failed to read subscription response")
	}
	if res.Error != nil {
		return "", errors.Wrapf(ErrSubscriptionRefused, "%d: %s", res.Error.Code, res.Error.Message)
	}
	if res.Result == "" {
		return "", errors.Wrap(ErrSubscriptionRefused, "empty subscription id")
	}

	return res.Result, nil
}

func (c *Client) handleNotification(subscriptionID string, n *notification) {
	if n.Method != "eth_subscription" || n.Params == nil || n.Params.Result == nil || n.Params.Subscription != subscriptionID {
		c.log.Debugw("ignoring unrelated message", "method", n.Method)
		return
	}
	if n.Params.Result.Removed {
		c.log.Debugw("ignoring removed log", "txHash", n.Params.Result.TransactionHash)
		return
	}

	transfer, err := n.Params.Result.toTransferEvent()
	if err != nil {
		c.log.Warnw("failed to decode transfer log", "txHash", n.Params.Result.TransactionHash, "err", err)
		return
	}

	c.hub.Publish(transfer)
}

func (c *Client) String() string {
	return fmt.Sprintf("wsfeed.Client(%s, token %s)", c.endpoint, c.token)
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////

// region Events ///////////////////////////////////////////////////////////////////////////////////////////////////////

// Events is a container that acts as a dictionary for the events of a Client.
type Events struct {
	// Connected is triggered with the subscription id when a log subscription was established.
	Connected *event.Event[string]

	// Disconnected is triggered with the endpoint when an established subscription was lost.
	Disconnected *event.Event[string]
}

func newEvents() *Events {
	return &Events{
		Connected:    event.New[string](),
		Disconnected: event.New[string](),
	}
}

// endregion ///////////////////////////////////////////////////////////////////////////////////////////////////////////
