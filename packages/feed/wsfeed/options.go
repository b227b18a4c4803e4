package wsfeed

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/iotaledger/hive.go/logger"
	"go.uber.org/zap"
)

// DefaultReconnectDelay is the time the Client waits before it re-establishes a lost connection.
const DefaultReconnectDelay = 8 * time.Second

// WithReconnectDelay sets the time the Client waits before it re-establishes a lost connection.
func WithReconnectDelay(delay time.Duration) Option {
	return func(o *options) {
		o.reconnectDelay = delay
	}
}

// WithDialer sets the websocket.Dialer that is used to connect.
func WithDialer(dialer *websocket.Dialer) Option {
	return func(o *options) {
		o.dialer = dialer
	}
}

// WithLogger sets the logger of the Client.
func WithLogger(log *logger.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Option represents the return type of optional parameters that can be handed into the constructor of the Client.
type Option func(*options)

type options struct {
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	log            *logger.Logger
}

func newOptions(option ...Option) (new *options) {
	new = &options{
		reconnectDelay: DefaultReconnectDelay,
		dialer:         websocket.DefaultDialer,
		log:            zap.NewNop().Sugar(),
	}

	for _, o := range option {
		o(new)
	}

	return new
}
